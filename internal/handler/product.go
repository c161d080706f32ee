package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"digital-goods-store/internal/dto"
	"digital-goods-store/internal/model"
	"digital-goods-store/internal/repository"
	"digital-goods-store/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalogService service.CatalogService
	uploadService  service.UploadService
}

func NewProductHandler(catalogService service.CatalogService, uploadService service.UploadService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		uploadService:  uploadService,
	}
}

// formValues flattens the submitted form into the string map the catalog
// service coerces. Only submitted keys appear, which drives partial updates.
func formValues(c echo.Context) (map[string]string, error) {
	params, err := c.FormParams()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form body")
	}
	values := make(map[string]string, len(params))
	for key := range params {
		values[key] = params.Get(key)
	}
	return values, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Header.Get("Content-Type"), nil
}

// uploadedAssets remembers the provider handles pushed for one request so a
// later rejection can back them out.
type uploadedAssets struct {
	imagePublicID string
	fileID        string
	fileName      string
}

// handleUploads pushes any submitted thumbnail/ebook file to its provider
// and folds the returned handles into the field map. old is nil on create.
func (h *ProductHandler) handleUploads(c echo.Context, values map[string]string, old *model.Product) (uploadedAssets, error) {
	ctx := c.Request().Context()
	var up uploadedAssets

	if fh, err := c.FormFile("thumbnail"); err == nil {
		data, contentType, err := readUpload(fh)
		if err != nil {
			return up, echo.NewHTTPError(http.StatusBadRequest, "unreadable thumbnail upload")
		}
		oldPublicID := ""
		if old != nil {
			oldPublicID = old.ThumbnailPublicID
		}
		result, err := h.uploadService.UploadImage(ctx, data, fh.Filename, contentType, oldPublicID)
		if err != nil {
			return up, err
		}
		up.imagePublicID = result.PublicID
		values["thumbnailUrl"] = result.URL
		values["thumbnailPublicId"] = result.PublicID
	}

	if fh, err := c.FormFile("ebook"); err == nil {
		data, contentType, err := readUpload(fh)
		if err != nil {
			h.discardUploads(c, up)
			return up, echo.NewHTTPError(http.StatusBadRequest, "unreadable ebook upload")
		}
		oldFileID, oldFileName := "", ""
		if old != nil {
			oldFileID, oldFileName = old.FileID, old.FileName
		}
		result, err := h.uploadService.UploadDocument(ctx, data, fh.Filename, contentType, oldFileID, oldFileName)
		if err != nil {
			h.discardUploads(c, up)
			return up, err
		}
		up.fileID = result.FileID
		up.fileName = result.FileName
		values["fileId"] = result.FileID
		values["fileName"] = result.FileName
		values["bucketId"] = result.BucketID
		values["fileSize"] = strconv.Itoa(len(data))
	}
	return up, nil
}

// discardUploads removes assets uploaded for a request the catalog refused,
// so the rejection does not strand remote files. Best effort.
func (h *ProductHandler) discardUploads(c echo.Context, up uploadedAssets) {
	ctx := c.Request().Context()
	if up.imagePublicID != "" {
		if err := h.uploadService.RemoveImage(ctx, up.imagePublicID); err != nil {
			c.Logger().Error("discard uploaded thumbnail: ", err)
		}
	}
	if up.fileID != "" {
		if err := h.uploadService.RemoveDocument(ctx, up.fileID, up.fileName); err != nil {
			c.Logger().Error("discard uploaded file: ", err)
		}
	}
}

func (h *ProductHandler) create(c echo.Context, ptype model.ProductType) error {
	values, err := formValues(c)
	if err != nil {
		return err
	}
	up, err := h.handleUploads(c, values, nil)
	if err != nil {
		return err
	}

	product, err := h.catalogService.Create(c.Request().Context(), ptype, values)
	if err != nil {
		h.discardUploads(c, up)
		return err
	}
	return c.JSON(http.StatusCreated, dto.OK(product))
}

func (h *ProductHandler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	old, err := h.catalogService.Get(ctx, id)
	if err != nil {
		return err
	}

	values, err := formValues(c)
	if err != nil {
		return err
	}
	up, err := h.handleUploads(c, values, old)
	if err != nil {
		return err
	}

	product, err := h.catalogService.Update(ctx, id, values)
	if err != nil {
		h.discardUploads(c, up)
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(product))
}

// Create is the generic variant; the form's "type" field picks the
// discriminator. The typed routes are the usual path.
func (h *ProductHandler) Create(c echo.Context) error {
	return h.create(c, model.ProductType(c.FormValue("type")))
}

func (h *ProductHandler) CreateEbook(c echo.Context) error {
	return h.create(c, model.ProductTypeEbook)
}

func (h *ProductHandler) CreatePremium(c echo.Context) error {
	return h.create(c, model.ProductTypePremium)
}

func (h *ProductHandler) Update(c echo.Context) error {
	return h.update(c)
}

func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.catalogService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(product))
}

func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.catalogService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OKMessage("product deleted"))
}

func (h *ProductHandler) List(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return err
	}

	products, total, err := h.catalogService.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(dto.NewPage(products, filter.Page, filter.Limit, total)))
}

func (h *ProductHandler) ListEbooks(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	filter.Type = model.ProductTypeEbook

	products, total, err := h.catalogService.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(dto.NewPage(products, filter.Page, filter.Limit, total)))
}

func (h *ProductHandler) ListPremium(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	filter.Type = model.ProductTypePremium

	products, total, err := h.catalogService.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(dto.NewPage(products, filter.Page, filter.Limit, total)))
}

func filterFromQuery(c echo.Context) (repository.ProductFilter, error) {
	filter := repository.ProductFilter{
		Type:        model.ProductType(c.QueryParam("type")),
		Platform:    c.QueryParam("platform"),
		Duration:    c.QueryParam("duration"),
		LicenseType: c.QueryParam("licenseType"),
		Language:    c.QueryParam("language"),
		FileFormat:  c.QueryParam("format"),
		Tag:         c.QueryParam("tag"),
		Status:      c.QueryParam("status"),
	}

	var err error
	if filter.Page, filter.Limit, err = pagination(c); err != nil {
		return filter, err
	}

	if raw := c.QueryParam("priceMin"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "priceMin is not a number")
		}
		filter.PriceMin = &min
	}
	if raw := c.QueryParam("priceMax"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "priceMax is not a number")
		}
		filter.PriceMax = &max
	}
	return filter, nil
}

func pagination(c echo.Context) (page, limit int, err error) {
	page, limit = 1, 20
	if raw := c.QueryParam("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "page must be a positive integer")
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
	}
	return page, limit, nil
}
