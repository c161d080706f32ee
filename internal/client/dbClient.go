package client

import (
	"log"
	"strings"
	"time"

	"digital-goods-store/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the database behind DATABASE_URL. A DSN containing "@tcp("
// is treated as MySQL; anything else is an SQLite file path (local dev).
func InitDB(databaseURL string) *gorm.DB {
	var dialector gorm.Dialector
	if strings.Contains(databaseURL, "@tcp(") {
		dialector = mysql.Open(databaseURL)
	} else {
		dialector = sqlite.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Product{},
		&model.PremiumSecret{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderLog{},
		&model.User{},
		&model.CartItem{},
		&model.AnalyticsEvent{},
	); err != nil {
		log.Fatal(err)
	}

	return db
}
