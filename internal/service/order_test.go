package service

import (
	"context"
	"testing"

	"digital-goods-store/internal/model"
	"digital-goods-store/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orders  OrderService
	secrets SecretService
	catalog CatalogService
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()
	db := newTestDB(t)
	productRepo := repository.NewProductRepository(db)
	secretRepo := repository.NewSecretRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	secrets := NewSecretService(secretRepo, productRepo, newTestCipher(t))
	catalog := NewCatalogService(productRepo, secretRepo, &fakeImageHost{}, &fakeFileStore{})
	return orderFixture{
		orders:  NewOrderService(orderRepo, productRepo, secrets),
		secrets: secrets,
		catalog: catalog,
	}
}

func (f orderFixture) sellablePremium(t *testing.T, slug string, codes ...string) *model.Product {
	t.Helper()
	ctx := context.Background()
	product, err := f.catalog.Create(ctx, model.ProductTypePremium, map[string]string{
		"name": "Premium " + slug, "slug": slug, "platform": "streamify",
		"duration": "1 month", "licenseType": "key",
		"price": "9.99", "isAvailable": "true",
	})
	require.NoError(t, err)
	if len(codes) > 0 {
		_, err = f.secrets.AddBulkCodes(ctx, product.ID, codes)
		require.NoError(t, err)
	}
	return product
}

func (f orderFixture) sellableEbook(t *testing.T, slug string) *model.Product {
	t.Helper()
	product, err := f.catalog.Create(context.Background(), model.ProductTypeEbook, map[string]string{
		"name": "Ebook " + slug, "slug": slug, "author": "a",
		"price": "12.50", "isAvailable": "true",
	})
	require.NoError(t, err)
	return product
}

func TestCheckoutFulfillsPremiumLines(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	premium := f.sellablePremium(t, "stream", "CODE-1", "CODE-2", "CODE-3")
	ebook := f.sellableEbook(t, "dune")

	order, err := f.orders.Checkout(ctx, "user-1", []CheckoutItem{
		{ProductID: premium.ID, Quantity: 2},
		{ProductID: ebook.ID, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusCompleted, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("32.48")))
	require.Len(t, order.Items, 2)

	var premiumItem, ebookItem *model.OrderItem
	for i := range order.Items {
		switch order.Items[i].Type {
		case model.ProductTypePremium:
			premiumItem = &order.Items[i]
		case model.ProductTypeEbook:
			ebookItem = &order.Items[i]
		}
	}
	require.NotNil(t, premiumItem)
	require.NotNil(t, ebookItem)
	assert.NotNil(t, premiumItem.SecretID, "premium line carries its delivery reference")
	assert.Nil(t, ebookItem.SecretID)

	// Two of three codes are consumed, both by this order.
	views, err := f.secrets.ListByProduct(ctx, premium.ID, model.SecretKindCode)
	require.NoError(t, err)
	var assigned int
	for _, v := range views {
		if v.IsAssigned {
			assigned++
			require.NotNil(t, v.AssignedOrderID)
			assert.Equal(t, order.ID, *v.AssignedOrderID)
		}
	}
	assert.Equal(t, 2, assigned)

	// Audit trail covers creation through completion.
	require.NotEmpty(t, order.Logs)
	assert.Equal(t, model.OrderStatusPending, order.Logs[0].Status)
	assert.Equal(t, model.OrderStatusCompleted, order.Logs[len(order.Logs)-1].Status)
}

func TestCheckoutFailsOnExhaustedStock(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	premium := f.sellablePremium(t, "scarce", "ONLY-ONE")

	order, err := f.orders.Checkout(ctx, "user-1", []CheckoutItem{
		{ProductID: premium.ID, Quantity: 2},
	})
	require.NoError(t, err, "exhaustion is an order outcome, not a transport error")
	assert.Equal(t, model.OrderStatusFailed, order.Status)

	var failureLogged bool
	for _, l := range order.Logs {
		if l.Status == model.OrderStatusFailed {
			failureLogged = true
		}
	}
	assert.True(t, failureLogged, "failure must be recorded in the order logs")
}

func TestCheckoutValidation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.orders.Checkout(ctx, "user-1", nil)
	assert.ErrorIs(t, err, ErrValidation)

	ebook := f.sellableEbook(t, "dune")
	_, err = f.orders.Checkout(ctx, "user-1", []CheckoutItem{{ProductID: ebook.ID, Quantity: 0}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.Checkout(ctx, "user-1", []CheckoutItem{{ProductID: "missing", Quantity: 1}})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Unavailable products cannot be bought.
	_, err = f.catalog.Update(ctx, ebook.ID, map[string]string{"isAvailable": "false"})
	require.NoError(t, err)
	_, err = f.orders.Checkout(ctx, "user-1", []CheckoutItem{{ProductID: ebook.ID, Quantity: 1}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderOwnershipAndDeliveryReveal(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	premium := f.sellablePremium(t, "stream", "CODE-1")
	order, err := f.orders.Checkout(ctx, "owner", []CheckoutItem{{ProductID: premium.ID, Quantity: 1}})
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusCompleted, order.Status)

	// Strangers see neither the order nor the delivery.
	_, err = f.orders.Get(ctx, order.ID, "stranger", false)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.orders.RevealDelivery(ctx, order.ID, order.Items[0].ID, "stranger", false)
	assert.ErrorIs(t, err, ErrForbidden)

	// The owner gets the plaintext back; so does an admin.
	view, err := f.orders.RevealDelivery(ctx, order.ID, order.Items[0].ID, "owner", false)
	require.NoError(t, err)
	assert.Equal(t, "CODE-1", view.Code)

	view, err = f.orders.RevealDelivery(ctx, order.ID, order.Items[0].ID, "any-admin", true)
	require.NoError(t, err)
	assert.Equal(t, "CODE-1", view.Code)

	_, err = f.orders.RevealDelivery(ctx, order.ID, 9999, "owner", false)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
