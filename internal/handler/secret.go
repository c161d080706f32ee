package handler

import (
	"net/http"

	"digital-goods-store/internal/dto"
	"digital-goods-store/internal/model"
	"digital-goods-store/internal/service"

	"github.com/labstack/echo/v4"
)

type SecretHandler struct {
	secretService service.SecretService
}

func NewSecretHandler(secretService service.SecretService) *SecretHandler {
	return &SecretHandler{secretService: secretService}
}

func (h *SecretHandler) AddBulkCodes(c echo.Context) error {
	var req dto.BulkCodesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "productId is required")
	}

	count, err := h.secretService.AddBulkCodes(c.Request().Context(), req.ProductID, req.Codes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.OK(map[string]int{"added": count}))
}

func (h *SecretHandler) ListCodesForProduct(c echo.Context) error {
	views, err := h.secretService.ListByProduct(c.Request().Context(), c.Param("id"), model.SecretKindCode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(views))
}

func (h *SecretHandler) DeleteCode(c echo.Context) error {
	if err := h.secretService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OKMessage("code deleted"))
}

func (h *SecretHandler) AddCredentials(c echo.Context) error {
	var req dto.BulkCredentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "productId is required")
	}

	creds := make([]model.CredentialPayload, 0, len(req.Credentials))
	for _, in := range req.Credentials {
		creds = append(creds, model.CredentialPayload{
			Email:           in.Email,
			Password:        in.Password,
			AdditionalNotes: in.AdditionalNotes,
		})
	}

	count, err := h.secretService.AddCredentials(c.Request().Context(), req.ProductID, creds)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.OK(map[string]int{"added": count}))
}

func (h *SecretHandler) ListCredentials(c echo.Context) error {
	page, limit, err := pagination(c)
	if err != nil {
		return err
	}

	views, total, err := h.secretService.ListByKind(c.Request().Context(),
		model.SecretKindCredential, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(dto.NewPage(views, page, limit, total)))
}

func (h *SecretHandler) ListCredentialsForProduct(c echo.Context) error {
	views, err := h.secretService.ListByProduct(c.Request().Context(), c.Param("id"), model.SecretKindCredential)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(views))
}

func (h *SecretHandler) DeleteCredential(c echo.Context) error {
	if err := h.secretService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OKMessage("credential deleted"))
}
