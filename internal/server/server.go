package server

import (
	"errors"
	"net/http"

	"digital-goods-store/internal/dto"
	"digital-goods-store/internal/handler"
	appmw "digital-goods-store/internal/middleware"
	"digital-goods-store/internal/repository"
	"digital-goods-store/internal/service"
	"digital-goods-store/internal/token"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo             *echo.Echo
	productHandler   *handler.ProductHandler
	secretHandler    *handler.SecretHandler
	orderHandler     *handler.OrderHandler
	authHandler      *handler.AuthHandler
	rolesHandler     *handler.RolesHandler
	analyticsHandler *handler.AnalyticsHandler

	tokens   *token.Manager
	userRepo repository.UserRepository
}

type Deps struct {
	CatalogService   service.CatalogService
	UploadService    service.UploadService
	SecretService    service.SecretService
	OrderService     service.OrderService
	AuthService      service.AuthService
	UserService      service.UserService
	AnalyticsService service.AnalyticsService
	Tokens           *token.Manager
	UserRepo         repository.UserRepository
	CORSOrigin       string
	CookieSecure     bool
}

func NewServer(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	if deps.CORSOrigin != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{deps.CORSOrigin},
			AllowCredentials: true,
		}))
	} else {
		e.Use(middleware.CORS())
	}

	s := &Server{
		echo:             e,
		productHandler:   handler.NewProductHandler(deps.CatalogService, deps.UploadService),
		secretHandler:    handler.NewSecretHandler(deps.SecretService),
		orderHandler:     handler.NewOrderHandler(deps.OrderService),
		authHandler:      handler.NewAuthHandler(deps.AuthService, deps.UserService, deps.Tokens, deps.CookieSecure),
		rolesHandler:     handler.NewRolesHandler(deps.UserService),
		analyticsHandler: handler.NewAnalyticsHandler(deps.AnalyticsService),
		tokens:           deps.Tokens,
		userRepo:         deps.UserRepo,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	auth := appmw.RequireAuth(s.tokens, s.userRepo)
	manageProducts := appmw.RequireAdmin("manage_products")
	manageSecrets := appmw.RequireAdmin("manage_secrets")
	manageRoles := appmw.RequireAdmin("manage_roles")
	viewAnalytics := appmw.RequireAdmin("view_analytics")

	// -------- catalog --------
	products := api.Group("/products")
	products.GET("", s.productHandler.List)
	products.GET("/:id", s.productHandler.Get)
	products.POST("", s.productHandler.Create, auth, manageProducts)
	products.PUT("/:id", s.productHandler.Update, auth, manageProducts)
	products.DELETE("/:id", s.productHandler.Delete, auth, manageProducts)

	ebooks := api.Group("/productEbook")
	ebooks.GET("", s.productHandler.ListEbooks)
	ebooks.GET("/:id", s.productHandler.Get)
	ebooks.POST("", s.productHandler.CreateEbook, auth, manageProducts)
	ebooks.PUT("/:id", s.productHandler.Update, auth, manageProducts)
	ebooks.DELETE("/:id", s.productHandler.Delete, auth, manageProducts)

	premium := api.Group("/premium")
	premium.GET("", s.productHandler.ListPremium)
	premium.GET("/:id", s.productHandler.Get)
	premium.POST("", s.productHandler.CreatePremium, auth, manageProducts)
	premium.PUT("/:id", s.productHandler.Update, auth, manageProducts)
	premium.DELETE("/:id", s.productHandler.Delete, auth, manageProducts)

	// -------- premium secrets --------
	premium.POST("/codes/bulk", s.secretHandler.AddBulkCodes, auth, manageSecrets)
	premium.GET("/codes/product/:id", s.secretHandler.ListCodesForProduct, auth, manageSecrets)
	premium.DELETE("/codes/:id", s.secretHandler.DeleteCode, auth, manageSecrets)

	credentials := api.Group("/premium-credentials", auth, manageSecrets)
	credentials.POST("", s.secretHandler.AddCredentials)
	credentials.GET("", s.secretHandler.ListCredentials)
	credentials.GET("/product/:id", s.secretHandler.ListCredentialsForProduct)
	credentials.DELETE("/:id", s.secretHandler.DeleteCredential)

	// -------- orders --------
	orders := api.Group("/orders", auth)
	orders.POST("", s.orderHandler.Checkout)
	orders.GET("", s.orderHandler.List)
	orders.GET("/:id", s.orderHandler.Get)
	orders.GET("/:id/items/:itemID/delivery", s.orderHandler.RevealDelivery)

	// -------- user / auth --------
	user := api.Group("/user")
	user.POST("/register", s.authHandler.Register)
	user.POST("/login", s.authHandler.Login)
	user.POST("/logout", s.authHandler.Logout)
	user.POST("/verify-otp", s.authHandler.VerifyOTP)
	user.POST("/resend-otp", s.authHandler.ResendOTP)
	user.POST("/forgot-password", s.authHandler.ForgotPassword)
	user.POST("/reset-password", s.authHandler.ResetPassword)

	authGroup := api.Group("/auth", auth)
	authGroup.GET("/data", s.authHandler.Data)
	authGroup.GET("/is-auth", s.authHandler.IsAuth)
	authGroup.PUT("/update-profile", s.authHandler.UpdateProfile)
	authGroup.PUT("/change-password", s.authHandler.ChangePassword)
	authGroup.DELETE("/delete-account", s.authHandler.DeleteAccount)

	cart := api.Group("/cart", auth)
	cart.GET("", s.authHandler.GetCart)
	cart.POST("", s.authHandler.SetCartItem)
	cart.DELETE("", s.authHandler.ClearCart)
	cart.DELETE("/:productID", s.authHandler.RemoveCartItem)

	// -------- admin --------
	roles := api.Group("/roles", auth, manageRoles)
	roles.GET("/users", s.rolesHandler.ListUsers)
	roles.PUT("/users/:id", s.rolesHandler.UpdateRole)

	analytics := api.Group("/analytics", auth)
	analytics.POST("/events", s.analyticsHandler.Track)
	analytics.GET("/summary", s.analyticsHandler.Summary, viewAnalytics)
}

// errorHandler maps domain errors onto the normalized response envelope.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	case errors.Is(err, service.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, repository.ErrSlugTaken),
		errors.Is(err, repository.ErrEmailTaken),
		errors.Is(err, repository.ErrSecretAlreadyAssigned),
		errors.Is(err, repository.ErrNoFreeSecret):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrNotVerified),
		errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, token.ErrInvalidToken):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrProvider):
		status, message = http.StatusBadGateway, err.Error()
	}

	if jsonErr := c.JSON(status, dto.Fail(message)); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
