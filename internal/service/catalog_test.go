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

func newCatalog(t *testing.T) (CatalogService, repository.SecretRepository) {
	t.Helper()
	db := newTestDB(t)
	productRepo := repository.NewProductRepository(db)
	secretRepo := repository.NewSecretRepository(db)
	svc := NewCatalogService(productRepo, secretRepo, &fakeImageHost{}, &fakeFileStore{})
	return svc, secretRepo
}

func TestCreateEbookCoercesFormStrings(t *testing.T) {
	svc, _ := newCatalog(t)

	product, err := svc.Create(context.Background(), model.ProductTypeEbook, map[string]string{
		"name":        "Dune",
		"author":      "Frank Herbert",
		"price":       "12.5",
		"isAvailable": "true",
		"pageCount":   "412",
		"tags":        "scifi, classic, scifi",
	})
	require.NoError(t, err)

	assert.True(t, product.Price.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, product.IsAvailable)
	assert.Equal(t, 412, product.PageCount)
	assert.Equal(t, model.StringList{"scifi", "classic"}, product.Tags, "tags deduplicated")
	assert.Equal(t, "dune", product.Slug, "slug derived from name")
	assert.Equal(t, model.ProductStatusActive, product.Status)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.ProductTypeEbook, map[string]string{
		"name": "Dune", "author": "Frank Herbert", "slug": "dune", "price": "10",
	})
	require.NoError(t, err)

	cases := []struct {
		name   string
		ptype  model.ProductType
		values map[string]string
	}{
		{
			// Validation must reject the negative price before the slug
			// collision is ever probed.
			name:   "negative price on taken slug",
			ptype:  model.ProductTypeEbook,
			values: map[string]string{"name": "Dune2", "author": "x", "slug": "dune", "price": "-5"},
		},
		{
			name:   "missing name",
			ptype:  model.ProductTypeEbook,
			values: map[string]string{"author": "x", "price": "1"},
		},
		{
			name:   "ebook without author",
			ptype:  model.ProductTypeEbook,
			values: map[string]string{"name": "NoAuthor", "price": "1"},
		},
		{
			name:   "premium without platform",
			ptype:  model.ProductTypePremium,
			values: map[string]string{"name": "P", "price": "1", "duration": "1m", "licenseType": "key"},
		},
		{
			name:   "premium bad license type",
			ptype:  model.ProductTypePremium,
			values: map[string]string{"name": "P", "price": "1", "platform": "x", "duration": "1m", "licenseType": "rental"},
		},
		{
			name:   "price not a number",
			ptype:  model.ProductTypeEbook,
			values: map[string]string{"name": "X", "author": "y", "price": "cheap"},
		},
		{
			name:   "bool not a bool",
			ptype:  model.ProductTypeEbook,
			values: map[string]string{"name": "X", "author": "y", "price": "1", "isAvailable": "maybe"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.ptype, tc.values)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateDuplicateSlugConflicts(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.ProductTypeEbook, map[string]string{
		"name": "Dune", "author": "a", "slug": "dune", "price": "10",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, model.ProductTypePremium, map[string]string{
		"name": "Dune Premium", "platform": "p", "duration": "1m",
		"licenseType": "key", "slug": "dune", "price": "10",
	})
	assert.ErrorIs(t, err, repository.ErrSlugTaken)
}

func TestUpdateIsPartial(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, model.ProductTypeEbook, map[string]string{
		"name": "Dune", "author": "Frank Herbert", "price": "12.5", "tags": "scifi",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, product.ID, map[string]string{"price": "9.99"})
	require.NoError(t, err)

	assert.True(t, updated.Price.Equal(decimal.RequireFromString("9.99")))
	assert.Equal(t, "Frank Herbert", updated.Author)
	assert.Equal(t, model.StringList{"scifi"}, updated.Tags)

	_, err = svc.Update(ctx, product.ID, map[string]string{"price": "-1"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, "missing", map[string]string{"price": "1"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteRefusedWhileSecretsAssigned(t *testing.T) {
	svc, secretRepo := newCatalog(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, model.ProductTypePremium, map[string]string{
		"name": "Stream", "platform": "streamify", "duration": "1m",
		"licenseType": "login", "price": "10",
	})
	require.NoError(t, err)

	secret := &model.PremiumSecret{
		ID: "s1", ProductID: product.ID,
		Kind: model.SecretKindCode, EncryptedPayload: "aa:bb",
	}
	require.NoError(t, secretRepo.CreateBatch(ctx, []*model.PremiumSecret{secret}))
	require.NoError(t, secretRepo.Assign(ctx, secret.ID, "order-1"))

	err = svc.Delete(ctx, product.ID)
	assert.ErrorIs(t, err, repository.ErrSecretAlreadyAssigned)

	_, err = svc.Get(ctx, product.ID)
	assert.NoError(t, err, "product must survive the refused delete")
}

func TestDeleteRemovesRemoteAssets(t *testing.T) {
	db := newTestDB(t)
	productRepo := repository.NewProductRepository(db)
	secretRepo := repository.NewSecretRepository(db)
	images := &fakeImageHost{}
	files := &fakeFileStore{}
	svc := NewCatalogService(productRepo, secretRepo, images, files)
	ctx := context.Background()

	product, err := svc.Create(ctx, model.ProductTypeEbook, map[string]string{
		"name": "Dune", "author": "a", "price": "1",
		"thumbnailPublicId": "pub-1", "fileId": "file-1", "fileName": "dune.epub",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, product.ID))
	assert.Equal(t, []string{"pub-1"}, images.destroys)
	assert.Equal(t, []string{"file-1"}, files.deletes)
}
