package repository

import (
	"fmt"
	"testing"

	"digital-goods-store/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a named in-memory database so every connection in the pool
// sees the same data.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.PremiumSecret{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderLog{},
		&model.User{},
		&model.CartItem{},
		&model.AnalyticsEvent{},
	))
	return db
}
