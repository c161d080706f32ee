package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"digital-goods-store/internal/model"
	"digital-goods-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CheckoutItem struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type OrderService interface {
	// Checkout creates the order, snapshots the products and fulfills
	// premium lines by claiming one secret per unit. Payment itself is
	// mocked; the order reflects fulfillment outcome only.
	Checkout(ctx context.Context, userID string, items []CheckoutItem) (*model.Order, error)
	Get(ctx context.Context, orderID, requesterID string, isAdmin bool) (*model.Order, error)
	List(ctx context.Context, page, limit int) ([]*model.Order, int64, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	// RevealDelivery decrypts the secret assigned to a purchased item for
	// the order's owner (or an admin).
	RevealDelivery(ctx context.Context, orderID string, itemID uint, requesterID string, isAdmin bool) (*SecretView, error)
}

type orderServiceImpl struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	secrets     SecretService
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	secrets SecretService,
) OrderService {
	return &orderServiceImpl{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		secrets:     secrets,
	}
}

func (s *orderServiceImpl) Checkout(ctx context.Context, userID string, items []CheckoutItem) (*model.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty order", ErrValidation)
	}

	order := &model.Order{
		ID:     uuid.NewString(),
		UserID: userID,
		Status: model.OrderStatusPending,
	}

	total := decimal.Zero
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
		}
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsAvailable || product.Status != model.ProductStatusActive {
			return nil, fmt.Errorf("%w: product %s is not available", ErrValidation, product.Slug)
		}

		order.Items = append(order.Items, model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Type:      product.Type,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	order.TotalAmount = total

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	s.appendLog(ctx, order.ID, model.OrderStatusPending, "order created")

	// Fulfillment: one secret per premium unit. Each claim is an atomic
	// flip; losing a race just means trying the next free secret.
	for i := range order.Items {
		item := &order.Items[i]
		if item.Type != model.ProductTypePremium {
			continue
		}
		for n := int32(0); n < item.Quantity; n++ {
			secret, err := s.secrets.AssignNextFree(ctx, item.ProductID, order.ID)
			if errors.Is(err, repository.ErrNoFreeSecret) {
				s.appendLog(ctx, order.ID, model.OrderStatusFailed,
					fmt.Sprintf("no stock left for %s", item.Name))
				if uerr := s.orderRepo.UpdateStatus(ctx, order.ID, model.OrderStatusFailed); uerr != nil {
					return nil, uerr
				}
				return s.orderRepo.FindByID(ctx, order.ID)
			}
			if err != nil {
				return nil, err
			}
			// Remember only the first secret per line as the delivery
			// reference; every claimed secret still points back via
			// assigned_order_id.
			if item.SecretID == nil {
				if err := s.orderRepo.SetItemSecret(ctx, item.ID, secret.ID); err != nil {
					return nil, err
				}
				item.SecretID = &secret.ID
			}
			s.appendLog(ctx, order.ID, "delivered",
				fmt.Sprintf("assigned secret for %s", item.Name))
		}
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, model.OrderStatusCompleted); err != nil {
		return nil, err
	}
	s.appendLog(ctx, order.ID, model.OrderStatusCompleted, "order completed")

	return s.orderRepo.FindByID(ctx, order.ID)
}

func (s *orderServiceImpl) Get(ctx context.Context, orderID, requesterID string, isAdmin bool) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *orderServiceImpl) List(ctx context.Context, page, limit int) ([]*model.Order, int64, error) {
	return s.orderRepo.List(ctx, page, limit)
}

func (s *orderServiceImpl) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *orderServiceImpl) RevealDelivery(ctx context.Context, orderID string, itemID uint, requesterID string, isAdmin bool) (*SecretView, error) {
	order, err := s.Get(ctx, orderID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}

	for _, item := range order.Items {
		if item.ID != itemID {
			continue
		}
		if item.SecretID == nil {
			return nil, fmt.Errorf("%w: item has no delivery attached", ErrValidation)
		}
		return s.secrets.Reveal(ctx, *item.SecretID)
	}
	return nil, repository.ErrNotFound
}

// appendLog writes the audit trail; a logging failure never fails the order.
func (s *orderServiceImpl) appendLog(ctx context.Context, orderID, status, message string) {
	if err := s.orderRepo.AppendLog(ctx, orderID, status, message); err != nil {
		log.Println("append order log:", err)
	}
}
