package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"digital-goods-store/internal/crypto"
	"digital-goods-store/internal/model"
	"digital-goods-store/internal/repository"

	"github.com/google/uuid"
)

// SecretView is the admin-facing decrypted representation of one stored
// secret. DecryptError is set instead of failing the whole listing when a
// single row's ciphertext is corrupt.
type SecretView struct {
	ID              string                   `json:"id"`
	ProductID       string                   `json:"productId"`
	Kind            model.SecretKind         `json:"kind"`
	Code            string                   `json:"code,omitempty"`
	Credential      *model.CredentialPayload `json:"credential,omitempty"`
	IsAssigned      bool                     `json:"isAssigned"`
	AssignedOrderID *string                  `json:"assignedToOrderId,omitempty"`
	DecryptError    string                   `json:"decryptError,omitempty"`
}

type SecretService interface {
	// AddBulkCodes encrypts each code with a fresh IV and inserts the batch
	// all-or-nothing. Returns the number inserted.
	AddBulkCodes(ctx context.Context, productID string, codes []string) (int, error)
	AddCredentials(ctx context.Context, productID string, creds []model.CredentialPayload) (int, error)
	ListByProduct(ctx context.Context, productID string, kind model.SecretKind) ([]SecretView, error)
	// ListByKind pages through every stored secret of one kind, across all
	// products.
	ListByKind(ctx context.Context, kind model.SecretKind, page, limit int) ([]SecretView, int64, error)
	Delete(ctx context.Context, id string) error
	// AssignNextFree claims an unassigned secret of the product for the
	// order, exactly once per secret.
	AssignNextFree(ctx context.Context, productID, orderID string) (*model.PremiumSecret, error)
	// Reveal decrypts a single secret for delivery.
	Reveal(ctx context.Context, id string) (*SecretView, error)
}

type secretServiceImpl struct {
	secretRepo  repository.SecretRepository
	productRepo repository.ProductRepository
	cipher      *crypto.Cipher
}

func NewSecretService(
	secretRepo repository.SecretRepository,
	productRepo repository.ProductRepository,
	cipher *crypto.Cipher,
) SecretService {
	return &secretServiceImpl{
		secretRepo:  secretRepo,
		productRepo: productRepo,
		cipher:      cipher,
	}
}

func (s *secretServiceImpl) AddBulkCodes(ctx context.Context, productID string, codes []string) (int, error) {
	if len(codes) == 0 {
		return 0, fmt.Errorf("%w: no codes provided", ErrValidation)
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return 0, err
	}

	secrets := make([]*model.PremiumSecret, 0, len(codes))
	for _, code := range codes {
		if strings.TrimSpace(code) == "" {
			return 0, fmt.Errorf("%w: blank code in batch", ErrValidation)
		}
		encrypted, err := s.cipher.Encrypt(code)
		if err != nil {
			return 0, fmt.Errorf("encrypt code: %w", err)
		}
		secrets = append(secrets, &model.PremiumSecret{
			ID:               uuid.NewString(),
			ProductID:        productID,
			Kind:             model.SecretKindCode,
			EncryptedPayload: encrypted,
		})
	}

	if err := s.secretRepo.CreateBatch(ctx, secrets); err != nil {
		return 0, err
	}
	return len(secrets), nil
}

func (s *secretServiceImpl) AddCredentials(ctx context.Context, productID string, creds []model.CredentialPayload) (int, error) {
	if len(creds) == 0 {
		return 0, fmt.Errorf("%w: no credentials provided", ErrValidation)
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return 0, err
	}

	secrets := make([]*model.PremiumSecret, 0, len(creds))
	for _, cred := range creds {
		if cred.Email == "" || cred.Password == "" {
			return 0, fmt.Errorf("%w: credential needs email and password", ErrValidation)
		}
		payload, err := json.Marshal(cred)
		if err != nil {
			return 0, fmt.Errorf("marshal credential: %w", err)
		}
		encrypted, err := s.cipher.Encrypt(string(payload))
		if err != nil {
			return 0, fmt.Errorf("encrypt credential: %w", err)
		}
		secrets = append(secrets, &model.PremiumSecret{
			ID:               uuid.NewString(),
			ProductID:        productID,
			Kind:             model.SecretKindCredential,
			EncryptedPayload: encrypted,
		})
	}

	if err := s.secretRepo.CreateBatch(ctx, secrets); err != nil {
		return 0, err
	}
	return len(secrets), nil
}

func (s *secretServiceImpl) ListByProduct(ctx context.Context, productID string, kind model.SecretKind) ([]SecretView, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	secrets, err := s.secretRepo.ListByProduct(ctx, productID, kind)
	if err != nil {
		return nil, err
	}

	views := make([]SecretView, 0, len(secrets))
	for _, secret := range secrets {
		views = append(views, s.decryptView(secret))
	}
	return views, nil
}

func (s *secretServiceImpl) ListByKind(ctx context.Context, kind model.SecretKind, page, limit int) ([]SecretView, int64, error) {
	secrets, total, err := s.secretRepo.ListByKind(ctx, kind, page, limit)
	if err != nil {
		return nil, 0, err
	}

	views := make([]SecretView, 0, len(secrets))
	for _, secret := range secrets {
		views = append(views, s.decryptView(secret))
	}
	return views, total, nil
}

func (s *secretServiceImpl) Delete(ctx context.Context, id string) error {
	return s.secretRepo.Delete(ctx, id)
}

func (s *secretServiceImpl) AssignNextFree(ctx context.Context, productID, orderID string) (*model.PremiumSecret, error) {
	return s.secretRepo.AssignNextFree(ctx, productID, orderID)
}

func (s *secretServiceImpl) Reveal(ctx context.Context, id string) (*SecretView, error) {
	secret, err := s.secretRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.decryptView(secret)
	return &view, nil
}

// decryptView never fails; corrupt ciphertext is surfaced per row.
func (s *secretServiceImpl) decryptView(secret *model.PremiumSecret) SecretView {
	view := SecretView{
		ID:              secret.ID,
		ProductID:       secret.ProductID,
		Kind:            secret.Kind,
		IsAssigned:      secret.IsAssigned,
		AssignedOrderID: secret.AssignedOrderID,
	}

	plaintext, err := s.cipher.Decrypt(secret.EncryptedPayload)
	if err != nil {
		view.DecryptError = "corrupt secret: " + err.Error()
		return view
	}

	switch secret.Kind {
	case model.SecretKindCredential:
		var cred model.CredentialPayload
		if err := json.Unmarshal([]byte(plaintext), &cred); err != nil {
			view.DecryptError = "corrupt credential payload"
			return view
		}
		view.Credential = &cred
	default:
		view.Code = plaintext
	}
	return view
}
