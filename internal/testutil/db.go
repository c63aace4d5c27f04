// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"onlyanon/internal/database"
	"onlyanon/internal/models"
)

// NewDB returns a migrated, isolated in-memory SQLite database
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	return NewDBWithLogger(t, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// NewDBWithLogger is NewDB with the query log routed to logger
func NewDBWithLogger(t testing.TB, logger *slog.Logger) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.ConnectSQLite(dsn, logger)
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// SeedCreator inserts a creator with the given handle
func SeedCreator(t testing.TB, db *gorm.DB, handle, wallet string) *models.Creator {
	t.Helper()

	creator := &models.Creator{
		WalletAddress: wallet,
		Handle:        handle,
		DisplayName:   handle,
		AvatarURL:     "https://cdn.example.com/" + handle + ".png",
	}
	if err := db.Create(creator).Error; err != nil {
		t.Fatalf("failed to seed creator: %v", err)
	}
	return creator
}

// SeedOffering inserts an active SOL offering for creator
func SeedOffering(t testing.TB, db *gorm.DB, creator *models.Creator, title, price string) *models.Offering {
	t.Helper()

	offering := &models.Offering{
		CreatorID: creator.ID,
		Title:     title,
		Price:     decimal.RequireFromString(price),
		Token:     models.TokenSOL,
		IsActive:  true,
	}
	if err := db.Create(offering).Error; err != nil {
		t.Fatalf("failed to seed offering: %v", err)
	}
	offering.Creator = *creator
	return offering
}
