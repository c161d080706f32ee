package service

import (
	"context"
	"fmt"
	"log"

	"digital-goods-store/internal/client"
)

const (
	maxImageSize    = 2 << 20  // 2MB
	maxDocumentSize = 50 << 20 // 50MB
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var allowedDocumentTypes = map[string]bool{
	"application/pdf":                true,
	"application/epub+zip":           true,
	"application/x-mobipocket-ebook": true,
}

type UploadService interface {
	// UploadImage validates the buffer, best-effort deletes the previous
	// asset, then uploads. Validation failures never reach the provider.
	UploadImage(ctx context.Context, data []byte, filename, contentType, oldPublicID string) (*client.ImageUploadResult, error)
	UploadDocument(ctx context.Context, data []byte, filename, contentType, oldFileID, oldFileName string) (*client.FileUploadResult, error)
	// RemoveImage and RemoveDocument discard an already-uploaded asset, used
	// to back out uploads when the rest of the request is rejected.
	RemoveImage(ctx context.Context, publicID string) error
	RemoveDocument(ctx context.Context, fileID, fileName string) error
}

type uploadServiceImpl struct {
	imageHost client.ImageHost
	fileStore client.FileStore
}

func NewUploadService(imageHost client.ImageHost, fileStore client.FileStore) UploadService {
	return &uploadServiceImpl{
		imageHost: imageHost,
		fileStore: fileStore,
	}
}

func (s *uploadServiceImpl) UploadImage(ctx context.Context, data []byte, filename, contentType, oldPublicID string) (*client.ImageUploadResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrValidation)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("%w: image exceeds 2MB", ErrValidation)
	}
	if !allowedImageTypes[contentType] {
		return nil, fmt.Errorf("%w: image must be jpeg, png or webp", ErrValidation)
	}

	if oldPublicID != "" {
		if err := s.imageHost.Destroy(ctx, oldPublicID); err != nil {
			log.Println("delete previous thumbnail:", err)
		}
	}

	result, err := s.imageHost.Upload(ctx, data, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return result, nil
}

func (s *uploadServiceImpl) UploadDocument(ctx context.Context, data []byte, filename, contentType, oldFileID, oldFileName string) (*client.FileUploadResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrValidation)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("%w: document exceeds 50MB", ErrValidation)
	}
	if !allowedDocumentTypes[contentType] {
		return nil, fmt.Errorf("%w: document must be pdf, epub or mobi", ErrValidation)
	}

	if oldFileID != "" {
		if err := s.fileStore.Delete(ctx, oldFileID, oldFileName); err != nil {
			log.Println("delete previous file version:", err)
		}
	}

	result, err := s.fileStore.Upload(ctx, data, filename, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return result, nil
}

func (s *uploadServiceImpl) RemoveImage(ctx context.Context, publicID string) error {
	return s.imageHost.Destroy(ctx, publicID)
}

func (s *uploadServiceImpl) RemoveDocument(ctx context.Context, fileID, fileName string) error {
	return s.fileStore.Delete(ctx, fileID, fileName)
}
