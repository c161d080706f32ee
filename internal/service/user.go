package service

import (
	"context"
	"fmt"
	"strings"

	"digital-goods-store/internal/model"
	"digital-goods-store/internal/repository"
)

type UserService interface {
	Get(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, name, email *string) (*model.User, error)
	DeleteAccount(ctx context.Context, userID string) error

	GetCart(ctx context.Context, userID string) ([]*model.CartItem, error)
	SetCartItem(ctx context.Context, userID, productID string, quantity int32) error
	RemoveCartItem(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error

	// Admin role management.
	ListUsers(ctx context.Context, page, limit int) ([]*model.User, int64, error)
	UpdateRole(ctx context.Context, targetID string, role model.Role, permissions []string) (*model.User, error)
}

type userServiceImpl struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
}

func NewUserService(userRepo repository.UserRepository, productRepo repository.ProductRepository) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

func (s *userServiceImpl) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID string, name, email *string) (*model.User, error) {
	fields := map[string]interface{}{}
	if name != nil {
		fields["name"] = strings.TrimSpace(*name)
	}
	if email != nil {
		e := strings.ToLower(strings.TrimSpace(*email))
		if e == "" || !strings.Contains(e, "@") {
			return nil, fmt.Errorf("%w: valid email is required", ErrValidation)
		}
		fields["email"] = e
	}

	if len(fields) > 0 {
		if err := s.userRepo.Updates(ctx, userID, fields); err != nil {
			return nil, err
		}
	}
	return s.userRepo.FindByID(ctx, userID)
}

func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID string) error {
	return s.userRepo.Delete(ctx, userID)
}

func (s *userServiceImpl) GetCart(ctx context.Context, userID string) ([]*model.CartItem, error) {
	return s.userRepo.GetCart(ctx, userID)
}

func (s *userServiceImpl) SetCartItem(ctx context.Context, userID, productID string, quantity int32) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return err
	}
	return s.userRepo.UpsertCartItem(ctx, &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

func (s *userServiceImpl) RemoveCartItem(ctx context.Context, userID, productID string) error {
	return s.userRepo.RemoveCartItem(ctx, userID, productID)
}

func (s *userServiceImpl) ClearCart(ctx context.Context, userID string) error {
	return s.userRepo.ClearCart(ctx, userID)
}

func (s *userServiceImpl) ListUsers(ctx context.Context, page, limit int) ([]*model.User, int64, error) {
	return s.userRepo.List(ctx, page, limit)
}

func (s *userServiceImpl) UpdateRole(ctx context.Context, targetID string, role model.Role, permissions []string) (*model.User, error) {
	switch role {
	case model.RoleCustomer, model.RoleAdmin, model.RoleLimitedAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	// Never demote the last remaining admin.
	if target.Role == model.RoleAdmin && role != model.RoleAdmin {
		admins, err := s.userRepo.CountByRole(ctx, model.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, fmt.Errorf("%w: cannot demote the last admin", ErrValidation)
		}
	}

	fields := map[string]interface{}{
		"role":        role,
		"permissions": model.StringList(permissions),
	}
	if err := s.userRepo.Updates(ctx, targetID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, targetID)
}
