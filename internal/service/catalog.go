package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"digital-goods-store/internal/client"
	"digital-goods-store/internal/model"
	"digital-goods-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogService interface {
	Create(ctx context.Context, ptype model.ProductType, values map[string]string) (*model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	// Update applies only the keys present in values; everything else keeps
	// its prior value. String form values are coerced to their column types.
	Update(ctx context.Context, id string, values map[string]string) (*model.Product, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter repository.ProductFilter) ([]*model.Product, int64, error)
}

type catalogServiceImpl struct {
	productRepo repository.ProductRepository
	secretRepo  repository.SecretRepository
	imageHost   client.ImageHost
	fileStore   client.FileStore
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	secretRepo repository.SecretRepository,
	imageHost client.ImageHost,
	fileStore client.FileStore,
) CatalogService {
	return &catalogServiceImpl{
		productRepo: productRepo,
		secretRepo:  secretRepo,
		imageHost:   imageHost,
		fileStore:   fileStore,
	}
}

func (s *catalogServiceImpl) Create(ctx context.Context, ptype model.ProductType, values map[string]string) (*model.Product, error) {
	if ptype != model.ProductTypeEbook && ptype != model.ProductTypePremium {
		return nil, fmt.Errorf("%w: unknown product type %q", ErrValidation, ptype)
	}

	fields, err := coerceProductValues(values)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		ID:          uuid.NewString(),
		Type:        ptype,
		IsAvailable: true,
		Status:      model.ProductStatusActive,
	}
	applyProductFields(product, fields)

	if product.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if product.Slug == "" {
		product.Slug = slugify(product.Name)
	}
	if product.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}

	switch ptype {
	case model.ProductTypeEbook:
		if product.Author == "" {
			return nil, fmt.Errorf("%w: author is required for ebooks", ErrValidation)
		}
	case model.ProductTypePremium:
		if product.Platform == "" {
			return nil, fmt.Errorf("%w: platform is required for premium accounts", ErrValidation)
		}
		if product.Duration == "" {
			return nil, fmt.Errorf("%w: duration is required for premium accounts", ErrValidation)
		}
		if err := validateLicenseType(product.LicenseType); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogServiceImpl) Get(ctx context.Context, id string) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogServiceImpl) Update(ctx context.Context, id string, values map[string]string) (*model.Product, error) {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	fields, err := coerceProductValues(values)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return s.productRepo.FindByID(ctx, id)
	}

	if price, ok := fields["price"]; ok {
		if price.(decimal.Decimal).IsNegative() {
			return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
		}
	}
	if lt, ok := fields["license_type"]; ok {
		if err := validateLicenseType(model.LicenseType(lt.(string))); err != nil {
			return nil, err
		}
	}

	return s.productRepo.Updates(ctx, id, fields)
}

func (s *catalogServiceImpl) Delete(ctx context.Context, id string) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	// Sold inventory keeps its audit trail; refuse while any secret of this
	// product has been handed out.
	secrets, err := s.secretRepo.ListByProduct(ctx, id, "")
	if err != nil {
		return err
	}
	for _, secret := range secrets {
		if secret.IsAssigned {
			return repository.ErrSecretAlreadyAssigned
		}
	}
	for _, secret := range secrets {
		if err := s.secretRepo.Delete(ctx, secret.ID); err != nil {
			return err
		}
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	// Remote assets go best-effort; a provider hiccup must not resurrect the
	// catalog row.
	if product.ThumbnailPublicID != "" {
		if err := s.imageHost.Destroy(ctx, product.ThumbnailPublicID); err != nil {
			log.Println("delete thumbnail:", err)
		}
	}
	if product.FileID != "" {
		if err := s.fileStore.Delete(ctx, product.FileID, product.FileName); err != nil {
			log.Println("delete remote file:", err)
		}
	}
	return nil
}

func (s *catalogServiceImpl) List(ctx context.Context, filter repository.ProductFilter) ([]*model.Product, int64, error) {
	return s.productRepo.List(ctx, filter)
}

func validateLicenseType(lt model.LicenseType) error {
	switch lt {
	case model.LicenseTypeKey, model.LicenseTypeLogin, model.LicenseTypeSerial:
		return nil
	default:
		return fmt.Errorf("%w: license type must be key, login or serial", ErrValidation)
	}
}

// coerceProductValues turns multipart form strings into typed column values.
// Only keys present in the input appear in the result, which is what makes
// partial updates partial.
func coerceProductValues(values map[string]string) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(values))

	for key, raw := range values {
		switch key {
		case "name", "slug", "description", "language", "deliveryFormat",
			"thumbnailUrl", "thumbnailPublicId", "fileId", "fileName", "bucketId",
			"author", "isbn", "publisher", "edition", "fileFormat",
			"platform", "duration", "licenseType", "status":
			fields[columnFor(key)] = strings.TrimSpace(raw)

		case "price":
			price, err := decimal.NewFromString(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("%w: price %q is not a number", ErrValidation, raw)
			}
			fields["price"] = price

		case "isAvailable":
			b, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("%w: isAvailable %q is not a boolean", ErrValidation, raw)
			}
			fields["is_available"] = b

		case "pageCount":
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("%w: pageCount %q is not an integer", ErrValidation, raw)
			}
			fields["page_count"] = n

		case "fileSize":
			n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: fileSize %q is not an integer", ErrValidation, raw)
			}
			fields["file_size"] = n

		case "publicationDate":
			t, err := parseDate(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("%w: publicationDate %q is not a date", ErrValidation, raw)
			}
			fields["publication_date"] = t

		case "tags":
			fields["tags"] = parseTags(raw)

		default:
			// Unknown form fields are ignored, same as unknown JSON keys.
		}
	}
	return fields, nil
}

var columnNames = map[string]string{
	"name":              "name",
	"slug":              "slug",
	"description":       "description",
	"language":          "language",
	"deliveryFormat":    "delivery_format",
	"thumbnailUrl":      "thumbnail_url",
	"thumbnailPublicId": "thumbnail_public_id",
	"fileId":            "file_id",
	"fileName":          "file_name",
	"bucketId":          "bucket_id",
	"author":            "author",
	"isbn":              "isbn",
	"publisher":         "publisher",
	"edition":           "edition",
	"fileFormat":        "file_format",
	"platform":          "platform",
	"duration":          "duration",
	"licenseType":       "license_type",
	"status":            "status",
}

func columnFor(key string) string {
	return columnNames[key]
}

// parseTags accepts a JSON array or a comma-separated list and returns the
// deduplicated set.
func parseTags(raw string) model.StringList {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	seen := make(map[string]struct{}, len(tags))
	out := make(model.StringList, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

func applyProductFields(p *model.Product, fields map[string]interface{}) {
	for key, val := range fields {
		switch key {
		case "name":
			p.Name = val.(string)
		case "slug":
			p.Slug = val.(string)
		case "description":
			p.Description = val.(string)
		case "price":
			p.Price = val.(decimal.Decimal)
		case "is_available":
			p.IsAvailable = val.(bool)
		case "status":
			p.Status = model.ProductStatus(val.(string))
		case "tags":
			p.Tags = val.(model.StringList)
		case "language":
			p.Language = val.(string)
		case "thumbnail_url":
			p.ThumbnailURL = val.(string)
		case "thumbnail_public_id":
			p.ThumbnailPublicID = val.(string)
		case "delivery_format":
			p.DeliveryFormat = val.(string)
		case "file_id":
			p.FileID = val.(string)
		case "file_name":
			p.FileName = val.(string)
		case "bucket_id":
			p.BucketID = val.(string)
		case "author":
			p.Author = val.(string)
		case "isbn":
			p.ISBN = val.(string)
		case "publication_date":
			t := val.(time.Time)
			p.PublicationDate = &t
		case "publisher":
			p.Publisher = val.(string)
		case "edition":
			p.Edition = val.(string)
		case "page_count":
			p.PageCount = val.(int)
		case "file_size":
			p.FileSize = val.(int64)
		case "file_format":
			p.FileFormat = val.(string)
		case "platform":
			p.Platform = val.(string)
		case "duration":
			p.Duration = val.(string)
		case "license_type":
			p.LicenseType = model.LicenseType(val.(string))
		}
	}
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
