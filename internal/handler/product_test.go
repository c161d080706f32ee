package handler

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"digital-goods-store/internal/client"
	"digital-goods-store/internal/model"
	"digital-goods-store/internal/repository"
	"digital-goods-store/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingImageHost struct {
	uploads  []string
	destroys []string
}

func (f *recordingImageHost) Upload(_ context.Context, _ []byte, filename string) (*client.ImageUploadResult, error) {
	f.uploads = append(f.uploads, filename)
	return &client.ImageUploadResult{
		URL:      "https://img.test/" + filename,
		PublicID: "pub-" + filename,
	}, nil
}

func (f *recordingImageHost) Destroy(_ context.Context, publicID string) error {
	f.destroys = append(f.destroys, publicID)
	return nil
}

type recordingFileStore struct {
	uploads []string
	deletes []string
}

func (f *recordingFileStore) Upload(_ context.Context, _ []byte, filename, _ string) (*client.FileUploadResult, error) {
	f.uploads = append(f.uploads, filename)
	return &client.FileUploadResult{
		FileID:   "file-" + filename,
		FileName: filename,
		BucketID: "bucket-1",
	}, nil
}

func (f *recordingFileStore) Delete(_ context.Context, fileID, _ string) error {
	f.deletes = append(f.deletes, fileID)
	return nil
}

func newProductHandler(t *testing.T) (*ProductHandler, *recordingImageHost, *recordingFileStore) {
	t.Helper()

	dsn := fmt.Sprintf("file:hdl_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Product{}, &model.PremiumSecret{}))

	images := &recordingImageHost{}
	files := &recordingFileStore{}
	productRepo := repository.NewProductRepository(db)
	secretRepo := repository.NewSecretRepository(db)
	catalog := service.NewCatalogService(productRepo, secretRepo, images, files)
	uploads := service.NewUploadService(images, files)
	return NewProductHandler(catalog, uploads), images, files
}

// multipartRequest builds a form with the given fields plus an uploaded file
// carrying an explicit MIME type.
func multipartRequest(t *testing.T, fields map[string]string, fileField, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}

	if fileField != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filename))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/premium", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func TestCreateRejectionDiscardsUploadedAssets(t *testing.T) {
	h, images, _ := newProductHandler(t)

	// Platform is missing, so the catalog refuses the premium product after
	// the thumbnail has already been pushed.
	req := multipartRequest(t, map[string]string{
		"name": "Stream", "duration": "1 month", "licenseType": "key", "price": "9.99",
	}, "thumbnail", "cover.png", "image/png", []byte("png-bytes"))
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	err := h.CreatePremium(c)
	require.ErrorIs(t, err, service.ErrValidation)

	require.Len(t, images.uploads, 1)
	assert.Equal(t, []string{"pub-cover.png"}, images.destroys,
		"a refused create must not strand the uploaded thumbnail")
}

func TestCreateWithUploadsSucceeds(t *testing.T) {
	h, images, files := newProductHandler(t)

	req := multipartRequest(t, map[string]string{
		"name": "Dune", "author": "Frank Herbert", "price": "12.50",
	}, "ebook", "dune.pdf", "application/pdf", []byte("%PDF-1.7"))
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.CreateEbook(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, []string{"dune.pdf"}, files.uploads)
	assert.Empty(t, files.deletes)
	assert.Empty(t, images.destroys)
}
