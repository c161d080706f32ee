package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digital-goods-store/internal/client"
	"digital-goods-store/internal/config"
	"digital-goods-store/internal/crypto"
	"digital-goods-store/internal/repository"
	"digital-goods-store/internal/server"
	"digital-goods-store/internal/service"
	"digital-goods-store/internal/token"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitDB(cfg.DatabaseURL)
	rdb := client.InitRedisClient(cfg.RedisAddr)

	cipher, err := crypto.NewCipher(cfg.Crypto.AESKeyHex)
	if err != nil {
		log.Fatal("invalid AES key:", err)
	}

	imageHost := client.NewCloudinaryClient(&cfg.Cloudinary)
	fileStore := client.NewB2Client(&cfg.Backblaze)
	mailer := client.NewSMTPMailer(&cfg.SMTP)
	otpStore := client.NewRedisOTPStore(rdb)
	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	productRepo := repository.NewProductRepository(db)
	secretRepo := repository.NewSecretRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	catalogService := service.NewCatalogService(productRepo, secretRepo, imageHost, fileStore)
	uploadService := service.NewUploadService(imageHost, fileStore)
	secretService := service.NewSecretService(secretRepo, productRepo, cipher)
	orderService := service.NewOrderService(orderRepo, productRepo, secretService)
	authService := service.NewAuthService(userRepo, otpStore, mailer, tokens)
	userService := service.NewUserService(userRepo, productRepo)
	analyticsService := service.NewAnalyticsService(analyticsRepo, orderRepo)
	cleanupService := service.NewCleanupService(userRepo)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(server.Deps{
		CatalogService:   catalogService,
		UploadService:    uploadService,
		SecretService:    secretService,
		OrderService:     orderService,
		AuthService:      authService,
		UserService:      userService,
		AnalyticsService: analyticsService,
		Tokens:           tokens,
		UserRepo:         userRepo,
		CORSOrigin:       cfg.CORSOrigin,
		CookieSecure:     cfg.JWT.CookieSecure,
	})

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go cleanupService.Run(cleanupCtx, time.Hour)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")
	cleanupCancel()

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
