package service

import (
	"context"
	"testing"

	"digital-goods-store/internal/model"
	"digital-goods-store/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) (UserService, CatalogService, repository.UserRepository) {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	secretRepo := repository.NewSecretRepository(db)
	catalog := NewCatalogService(productRepo, secretRepo, &fakeImageHost{}, &fakeFileStore{})
	return NewUserService(userRepo, productRepo), catalog, userRepo
}

func TestCartLifecycle(t *testing.T) {
	users, catalog, userRepo := newUserFixture(t)
	ctx := context.Background()

	customer := seedUser(t, userRepo, "c@test", true, 0)
	product, err := catalog.Create(ctx, model.ProductTypeEbook, map[string]string{
		"name": "Dune", "author": "a", "price": "10",
	})
	require.NoError(t, err)

	err = users.SetCartItem(ctx, customer.ID, product.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	err = users.SetCartItem(ctx, customer.ID, "missing", 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, users.SetCartItem(ctx, customer.ID, product.ID, 1))
	// Setting the same product again replaces the quantity.
	require.NoError(t, users.SetCartItem(ctx, customer.ID, product.ID, 3))

	cart, err := users.GetCart(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.EqualValues(t, 3, cart[0].Quantity)

	require.NoError(t, users.RemoveCartItem(ctx, customer.ID, product.ID))
	cart, err = users.GetCart(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestUpdateProfilePartial(t *testing.T) {
	users, _, userRepo := newUserFixture(t)
	ctx := context.Background()

	customer := seedUser(t, userRepo, "old@test", true, 0)

	name := "New Name"
	updated, err := users.UpdateProfile(ctx, customer.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "old@test", updated.Email, "email untouched when omitted")

	bad := "no-at-sign"
	_, err = users.UpdateProfile(ctx, customer.ID, nil, &bad)
	assert.ErrorIs(t, err, ErrValidation)

	email := "NEW@Test"
	updated, err = users.UpdateProfile(ctx, customer.ID, nil, &email)
	require.NoError(t, err)
	assert.Equal(t, "new@test", updated.Email)
}

func TestUpdateRoleGuardsLastAdmin(t *testing.T) {
	users, _, userRepo := newUserFixture(t)
	ctx := context.Background()

	admin := seedUser(t, userRepo, "admin@test", true, 0)
	require.NoError(t, userRepo.Updates(ctx, admin.ID, map[string]interface{}{"role": model.RoleAdmin}))
	customer := seedUser(t, userRepo, "c@test", true, 0)

	_, err := users.UpdateRole(ctx, customer.ID, "superuser", nil)
	assert.ErrorIs(t, err, ErrValidation)

	// The only admin cannot be demoted.
	_, err = users.UpdateRole(ctx, admin.ID, model.RoleCustomer, nil)
	assert.ErrorIs(t, err, ErrValidation)

	promoted, err := users.UpdateRole(ctx, customer.ID, model.RoleLimitedAdmin, []string{"manage_products"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleLimitedAdmin, promoted.Role)
	assert.True(t, promoted.Permissions.Contains("manage_products"))

	// With a second admin in place the demotion goes through.
	_, err = users.UpdateRole(ctx, customer.ID, model.RoleAdmin, nil)
	require.NoError(t, err)
	demoted, err := users.UpdateRole(ctx, admin.ID, model.RoleCustomer, nil)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, demoted.Role)
}

func TestDeleteAccountClearsCart(t *testing.T) {
	users, catalog, userRepo := newUserFixture(t)
	ctx := context.Background()

	customer := seedUser(t, userRepo, "c@test", true, 0)
	product, err := catalog.Create(ctx, model.ProductTypeEbook, map[string]string{
		"name": "Dune", "author": "a", "price": "10",
	})
	require.NoError(t, err)
	require.NoError(t, users.SetCartItem(ctx, customer.ID, product.ID, 1))

	require.NoError(t, users.DeleteAccount(ctx, customer.ID))

	_, err = users.Get(ctx, customer.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	cart, err := users.GetCart(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}
