package handler

import (
	"net/http"
	"time"

	"digital-goods-store/internal/dto"
	"digital-goods-store/internal/middleware"
	"digital-goods-store/internal/service"
	"digital-goods-store/internal/token"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService  service.AuthService
	userService  service.UserService
	tokens       *token.Manager
	cookieSecure bool
}

func NewAuthHandler(authService service.AuthService, userService service.UserService, tokens *token.Manager, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userService:  userService,
		tokens:       tokens,
		cookieSecure: cookieSecure,
	}
}

func (h *AuthHandler) setTokenCookie(c echo.Context, value string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	user, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.OK(user))
}

func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req dto.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.authService.VerifyOTP(c.Request().Context(), req.Email, req.OTP); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OKMessage("account verified"))
}

func (h *AuthHandler) ResendOTP(c echo.Context) error {
	var req dto.EmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.authService.ResendOTP(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OKMessage("verification code sent"))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	signed, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setTokenCookie(c, signed, time.Now().Add(h.tokens.Expiry()))
	return c.JSON(http.StatusOK, dto.OK(map[string]interface{}{
		"token": signed,
		"user":  user,
	}))
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.setTokenCookie(c, "loggedout", time.Now().Add(time.Minute))
	return c.JSON(http.StatusOK, dto.OKMessage("logged out"))
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req dto.EmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	// Always the same answer; do not leak which emails exist.
	return c.JSON(http.StatusOK, dto.OKMessage("if the account exists, a reset code was sent"))
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OKMessage("password reset"))
}

func (h *AuthHandler) Data(c echo.Context) error {
	user, err := h.userService.Get(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(user))
}

func (h *AuthHandler) IsAuth(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.OK(map[string]bool{"authenticated": true}))
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), middleware.UserID(c), req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(user))
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req dto.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.authService.ChangePassword(c.Request().Context(), middleware.UserID(c),
		req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OKMessage("password changed"))
}

func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	if err := h.userService.DeleteAccount(c.Request().Context(), middleware.UserID(c)); err != nil {
		return err
	}
	h.setTokenCookie(c, "loggedout", time.Now().Add(time.Minute))
	return c.JSON(http.StatusOK, dto.OKMessage("account deleted"))
}

func (h *AuthHandler) GetCart(c echo.Context) error {
	items, err := h.userService.GetCart(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(items))
}

func (h *AuthHandler) SetCartItem(c echo.Context) error {
	var req dto.CartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.userService.SetCartItem(c.Request().Context(), middleware.UserID(c),
		req.ProductID, req.Quantity); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OKMessage("cart updated"))
}

func (h *AuthHandler) RemoveCartItem(c echo.Context) error {
	if err := h.userService.RemoveCartItem(c.Request().Context(), middleware.UserID(c),
		c.Param("productID")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OKMessage("item removed"))
}

func (h *AuthHandler) ClearCart(c echo.Context) error {
	if err := h.userService.ClearCart(c.Request().Context(), middleware.UserID(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OKMessage("cart cleared"))
}
