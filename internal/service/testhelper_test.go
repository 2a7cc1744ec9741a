package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/campusbooks/internal/cart"
	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type serviceFixture struct {
	db          *gorm.DB
	store       *cart.Store
	bookRepo    *repository.GormBookRepository
	orderRepo   *repository.GormOrderRepository
	attemptRepo *repository.GormCheckoutAttemptRepository
	profileRepo *repository.GormProfileRepository
}

func setupServiceTest(t *testing.T) *serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	saved := models.DB
	models.DB = db
	t.Cleanup(func() {
		models.DB = saved
		_ = sqlDB.Close()
	})

	return &serviceFixture{
		db:          db,
		store:       cart.NewStore(cart.NewMemoryStorage()),
		bookRepo:    repository.NewBookRepository(db),
		orderRepo:   repository.NewOrderRepository(db),
		attemptRepo: repository.NewCheckoutAttemptRepository(db),
		profileRepo: repository.NewProfileRepository(db),
	}
}

func (f *serviceFixture) checkoutService(reserve bool) *CheckoutService {
	return NewCheckoutService(config.OrderConfig{ReserveBooksOnCheckout: reserve}, f.store, f.orderRepo, f.bookRepo, f.attemptRepo, nil)
}

func (f *serviceFixture) orderService(reserve bool) *OrderService {
	return NewOrderService(config.OrderConfig{ReserveBooksOnCheckout: reserve}, f.orderRepo, f.bookRepo)
}

func (f *serviceFixture) cartService() *CartService {
	return NewCartService(f.store, f.bookRepo)
}

func (f *serviceFixture) createProfile(t *testing.T, email, role string) *Session {
	t.Helper()
	profile := &models.Profile{Email: email, PasswordHash: "x", FullName: email, Role: role}
	if err := f.db.Create(profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	return &Session{UserID: profile.ID, Email: profile.Email, Role: profile.Role}
}

func (f *serviceFixture) createBook(t *testing.T, sellerID uint, title, price string) *models.Book {
	t.Helper()
	book := &models.Book{
		SellerID:    sellerID,
		Title:       title,
		Author:      "Author of " + title,
		Subject:     "Physics",
		Condition:   constants.BookConditionGood,
		BasePrice:   models.MustMoney(price),
		IsAvailable: true,
	}
	if err := f.db.Create(book).Error; err != nil {
		t.Fatalf("create book failed: %v", err)
	}
	return book
}

func (f *serviceFixture) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := f.db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count rows failed: %v", err)
	}
	return count
}

func (f *serviceFixture) reloadBook(t *testing.T, id uint) models.Book {
	t.Helper()
	var book models.Book
	if err := f.db.First(&book, id).Error; err != nil {
		t.Fatalf("reload book failed: %v", err)
	}
	return book
}
