// Package testutil opens throwaway databases and seeds fixtures for package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a migrated sqlite database in the test's temp dir. One connection
// keeps concurrent tests honest about transaction boundaries.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := filepath.Join(tb.TempDir(), "test.db") + "?_busy_timeout=10000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

// Product inserts an active product with the given price and stock.
func Product(tb testing.TB, db *gorm.DB, name, price string, stock int) models.Product {
	tb.Helper()
	p := models.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: true,
	}
	if err := db.Create(&p).Error; err != nil {
		tb.Fatalf("failed to create product %s: %v", name, err)
	}
	return p
}

// User inserts a customer record.
func User(tb testing.TB, db *gorm.DB, id string) models.User {
	tb.Helper()
	u := models.User{ID: id, Email: fmt.Sprintf("%s@example.com", id), Name: "Test " + id, Phone: "+255700000000"}
	if err := db.Create(&u).Error; err != nil {
		tb.Fatalf("failed to create user %s: %v", id, err)
	}
	return u
}

// Stock reads the current stock of a product.
func Stock(tb testing.TB, db *gorm.DB, productID uint) int {
	tb.Helper()
	var p models.Product
	if err := db.Select("stock").First(&p, productID).Error; err != nil {
		tb.Fatalf("failed to read stock of %d: %v", productID, err)
	}
	return p.Stock
}
