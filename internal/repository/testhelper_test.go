package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func createTestProfile(t *testing.T, db *gorm.DB, email, role string) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		Email:        email,
		PasswordHash: "x",
		FullName:     email,
		Role:         role,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	return profile
}

func createTestBook(t *testing.T, db *gorm.DB, sellerID uint, title, subject, price string, available bool) *models.Book {
	t.Helper()
	book := &models.Book{
		SellerID:    sellerID,
		Title:       title,
		Author:      "Author of " + title,
		Subject:     subject,
		Condition:   constants.BookConditionGood,
		BasePrice:   models.MustMoney(price),
		IsAvailable: available,
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("create book failed: %v", err)
	}
	return book
}
