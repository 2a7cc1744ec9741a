package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/campusbooks/internal/cart"
	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/repository"

	"gorm.io/gorm"
)

type failingItemsOrderRepo struct {
	repository.OrderRepository
}

func (r failingItemsOrderRepo) WithTx(tx *gorm.DB) repository.OrderRepository {
	return failingItemsOrderRepo{OrderRepository: r.OrderRepository.WithTx(tx)}
}

func (r failingItemsOrderRepo) CreateItems(orderID uint, items []models.OrderItem) error {
	return errors.New("forced item insert failure")
}

// cartTouchingOrderRepo 写入订单项时模拟另一台设备往购物车加书
type cartTouchingOrderRepo struct {
	repository.OrderRepository
	touch func()
}

func (r cartTouchingOrderRepo) WithTx(tx *gorm.DB) repository.OrderRepository {
	return cartTouchingOrderRepo{OrderRepository: r.OrderRepository.WithTx(tx), touch: r.touch}
}

func (r cartTouchingOrderRepo) CreateItems(orderID uint, items []models.OrderItem) error {
	r.touch()
	return r.OrderRepository.CreateItems(orderID, items)
}

func fillCart(t *testing.T, f *serviceFixture, sess *Session, books ...*models.Book) {
	t.Helper()
	svc := f.cartService()
	for _, book := range books {
		if _, err := svc.Add(context.Background(), sess, book.ID); err != nil {
			t.Fatalf("add to cart failed: %v", err)
		}
	}
}

func TestCheckoutCreatesOrderWithItemsAndClearsCart(t *testing.T) {
	f := setupServiceTest(t)
	ctx := context.Background()
	seller := f.createProfile(t, "senior@campus.edu", constants.RoleSenior)
	buyer := f.createProfile(t, "junior@campus.edu", constants.RoleJunior)
	bookA := f.createBook(t, seller.UserID, "A", "100")
	bookB := f.createBook(t, seller.UserID, "B", "50")

	fillCart(t, f, buyer, bookA, bookB)
	if _, err := f.cartService().UpdateQuantity(ctx, buyer, bookA.ID, 2); err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}

	result, err := f.checkoutService(true).Checkout(ctx, buyer, CheckoutInput{
		DeliveryLocation: "Library entrance",
		PaymentMethod:    "COD",
		IdempotencyKey:   "key-1",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	order := result.Order
	if result.Replayed {
		t.Fatalf("first checkout should not be a replay")
	}
	if order.TotalAmount.String() != "250.00" {
		t.Fatalf("total want 250.00 got %s", order.TotalAmount.String())
	}
	if !strings.HasPrefix(order.OrderNo, constants.OrderNoPrefix) {
		t.Fatalf("order no want prefix %s got %s", constants.OrderNoPrefix, order.OrderNo)
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("unexpected statuses: %s/%s", order.Status, order.PaymentStatus)
	}
	if order.PaymentMethod != constants.PaymentMethodCOD {
		t.Fatalf("payment method want cod got %s", order.PaymentMethod)
	}

	stored, err := f.orderRepo.GetByID(order.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("items want 2 got %d", len(stored.Items))
	}
	if stored.Items[0].BookID != bookA.ID || stored.Items[0].Quantity != 2 {
		t.Fatalf("first item want book %d qty 2 got %+v", bookA.ID, stored.Items[0])
	}
	if stored.Items[1].BookID != bookB.ID || stored.Items[1].Quantity != 1 {
		t.Fatalf("second item want book %d qty 1 got %+v", bookB.ID, stored.Items[1])
	}
	sum := models.Money{}
	for _, item := range stored.Items {
		sum = sum.Plus(item.Subtotal())
	}
	if !sum.Equal(stored.TotalAmount.Decimal) {
		t.Fatalf("total %s does not match items sum %s", stored.TotalAmount, sum)
	}

	if items := f.store.Get(ctx, cart.ScopeForUser(buyer.UserID)); len(items) != 0 {
		t.Fatalf("cart should be empty after checkout, got %d items", len(items))
	}
	if f.reloadBook(t, bookA.ID).IsAvailable || f.reloadBook(t, bookB.ID).IsAvailable {
		t.Fatalf("books should be reserved after checkout")
	}
	if got := f.countRows(t, &models.CheckoutAttempt{}); got != 1 {
		t.Fatalf("checkout attempts want 1 got %d", got)
	}
}

func TestCheckoutItemInsertFailureLeavesNoOrder(t *testing.T) {
	f := setupServiceTest(t)
	ctx := context.Background()
	seller := f.createProfile(t, "senior@campus.edu", constants.RoleSenior)
	buyer := f.createProfile(t, "junior@campus.edu", constants.RoleJunior)
	bookA := f.createBook(t, seller.UserID, "A", "100")
	bookB := f.createBook(t, seller.UserID, "B", "50")
	fillCart(t, f, buyer, bookA, bookB)

	svc := NewCheckoutService(f.checkoutService(true).cfg, f.store, failingItemsOrderRepo{OrderRepository: f.orderRepo}, f.bookRepo, f.attemptRepo, nil)
	_, err := svc.Checkout(ctx, buyer, CheckoutInput{
		DeliveryLocation: "Hostel B",
		PaymentMethod:    constants.PaymentMethodUPI,
		IdempotencyKey:   "key-fail",
	})
	if !errors.Is(err, ErrOrderCreateFailed) {
		t.Fatalf("want ErrOrderCreateFailed got %v", err)
	}
	var stepErr *CheckoutStepError
	if !errors.As(err, &stepErr) || stepErr.Step != CheckoutStepItems {
		t.Fatalf("want failing step %s got %v", CheckoutStepItems, err)
	}

	if got := f.countRows(t, &models.Order{}); got != 0 {
		t.Fatalf("orders want 0 got %d", got)
	}
	if got := f.countRows(t, &models.OrderItem{}); got != 0 {
		t.Fatalf("order items want 0 got %d", got)
	}
	if got := f.countRows(t, &models.CheckoutAttempt{}); got != 0 {
		t.Fatalf("checkout attempts want 0 got %d", got)
	}
	if items := f.store.Get(ctx, cart.ScopeForUser(buyer.UserID)); len(items) != 2 {
		t.Fatalf("cart should be retained, got %d items", len(items))
	}
	if !f.reloadBook(t, bookA.ID).IsAvailable {
		t.Fatalf("reservation should be rolled back")
	}
}

func TestCheckoutPreconditionsInOrder(t *testing.T) {
	f := setupServiceTest(t)
	ctx := context.Background()
	seller := f.createProfile(t, "senior@campus.edu", constants.RoleSenior)
	buyer := f.createProfile(t, "junior@campus.edu", constants.RoleJunior)
	svc := f.checkoutService(true)
	input := CheckoutInput{DeliveryLocation: "Gate 1", PaymentMethod: constants.PaymentMethodCOD}

	cases := []struct {
		name string
		sess *Session
		want error
	}{
		{name: "no session", sess: nil, want: ErrAuthRequired},
		{name: "empty session", sess: &Session{}, want: ErrAuthRequired},
		{name: "senior with empty cart", sess: seller, want: ErrRoleDenied},
		{name: "junior with empty cart", sess: buyer, want: ErrCartEmpty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Checkout(ctx, tc.sess, input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
			// 参数为空时前置检查结果不变
			if _, err := svc.Checkout(ctx, tc.sess, CheckoutInput{}); !errors.Is(err, tc.want) {
				t.Fatalf("zero input want %v got %v", tc.want, err)
			}
			if err := svc.Precheck(ctx, tc.sess); !errors.Is(err, tc.want) {
				t.Fatalf("precheck want %v got %v", tc.want, err)
			}
		})
	}
	fillCart(t, f, buyer, f.createBook(t, seller.UserID, "A", "100"))
	if err := svc.Precheck(ctx, buyer); err != nil {
		t.Fatalf("precheck with items want nil got %v", err)
	}
	if got := f.countRows(t, &models.Order{}); got != 0 {
		t.Fatalf("orders want 0 got %d", got)
	}
}

func TestCheckoutValidatesDeliveryAndPayment(t *testing.T) {
	f := setupServiceTest(t)
	ctx := context.Background()
	seller := f.createProfile(t, "senior@campus.edu", constants.RoleSenior)
	buyer := f.createProfile(t, "junior@campus.edu", constants.RoleJunior)
	fillCart(t, f, buyer, f.createBook(t, seller.UserID, "A", "100"))
	svc := f.checkoutService(true)

	if _, err := svc.Checkout(ctx, buyer, CheckoutInput{DeliveryLocation: "  ", PaymentMethod: "cod"}); !errors.Is(err, ErrDeliveryLocationRequired) {
		t.Fatalf("want ErrDeliveryLocationRequired got %v", err)
	}
	if _, err := svc.Checkout(ctx, buyer, CheckoutInput{DeliveryLocation: "Gate 1", PaymentMethod: "card"}); !errors.Is(err, ErrPaymentMethodInvalid) {
		t.Fatalf("want ErrPaymentMethodInvalid got %v", err)
	}
	longKey := strings.Repeat("k", constants.IdempotencyKeyMaxLen+1)
	if _, err := svc.Checkout(ctx, buyer, CheckoutInput{DeliveryLocation: "Gate 1", PaymentMethod: "cod", IdempotencyKey: longKey}); !errors.Is(err, ErrIdempotencyKeyInvalid) {
		t.Fatalf("want ErrIdempotencyKeyInvalid got %v", err)
	}
	if got := f.countRows(t, &models.Order{}); got != 0 {
		t.Fatalf("orders want 0 got %d", got)
	}
}

func TestCheckoutReplaysSameIdempotencyKey(t *testing.T) {
	f := setupServiceTest(t)
	ctx := context.Background()
	seller := f.createProfile(t, "senior@campus.edu", constants.RoleSenior)
	buyer := f.createProfile(t, "junior@campus.edu", constants.RoleJunior)
	book := f.createBook(t, seller.UserID, "A", "100")
	fillCart(t, f, buyer, book)
	scope := cart.ScopeForUser(buyer.UserID)
	snapshot := f.store.Get(ctx, scope)

	svc := f.checkoutService(true)
	input := CheckoutInput{DeliveryLocation: "Gate 1", PaymentMethod: "cod", IdempotencyKey: "retry-1"}
	first, err := svc.Checkout(ctx, buyer, input)
	if err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}

	// 模拟清空购物车失败后的重复提交
	if err := f.store.Replace(ctx, scope, snapshot); err != nil {
		t.Fatalf("restore cart failed: %v", err)
	}
	second, err := svc.Checkout(ctx, buyer, input)
	if err != nil {
		t.Fatalf("replayed checkout failed: %v", err)
	}
	if !second.Replayed || second.Order.ID != first.Order.ID {
		t.Fatalf("want replay of order %d got %+v", first.Order.ID, second)
	}
	if got := f.countRows(t, &models.Order{}); got != 1 {
		t.Fatalf("orders want 1 got %d", got)
	}
	if items := f.store.Get(ctx, scope); len(items) != 0 {
		t.Fatalf("cart should be cleared on replay, got %d items", len(items))
	}

	changed := []models.CartItem{snapshot[0]}
	changed[0].Quantity = 3
	if err := f.store.Replace(ctx, scope, changed); err != nil {
		t.Fatalf("replace cart failed: %v", err)
	}
	if _, err := svc.Checkout(ctx, buyer, input); !errors.Is(err, ErrIdempotencyConflict) {
		t.Fatalf("want ErrIdempotencyConflict got %v", err)
	}
	if got := f.countRows(t, &models.Order{}); got != 1 {
		t.Fatalf("orders want 1 got %d", got)
	}
}

func TestCheckoutRejectsUnavailableBook(t *testing.T) {
	f := setupServiceTest(t)
	ctx := context.Background()
	seller := f.createProfile(t, "senior@campus.edu", constants.RoleSenior)
	buyer := f.createProfile(t, "junior@campus.edu", constants.RoleJunior)
	bookA := f.createBook(t, seller.UserID, "A", "100")
	bookB := f.createBook(t, seller.UserID, "B", "50")
	fillCart(t, f, buyer, bookA, bookB)

	if err := f.db.Model(&models.Book{}).Where("id = ?", bookB.ID).Update("is_available", false).Error; err != nil {
		t.Fatalf("mark book sold failed: %v", err)
	}

	_, err := f.checkoutService(true).Checkout(ctx, buyer, CheckoutInput{DeliveryLocation: "Gate 1", PaymentMethod: "upi"})
	if !errors.Is(err, ErrBookUnavailable) {
		t.Fatalf("want ErrBookUnavailable got %v", err)
	}
	if got := f.countRows(t, &models.Order{}); got != 0 {
		t.Fatalf("orders want 0 got %d", got)
	}
	if !f.reloadBook(t, bookA.ID).IsAvailable {
		t.Fatalf("book A reservation should be rolled back")
	}
}

func TestCheckoutWithoutReservationKeepsBooksListed(t *testing.T) {
	f := setupServiceTest(t)
	ctx := context.Background()
	seller := f.createProfile(t, "senior@campus.edu", constants.RoleSenior)
	buyer := f.createProfile(t, "junior@campus.edu", constants.RoleJunior)
	book := f.createBook(t, seller.UserID, "A", "100")
	fillCart(t, f, buyer, book)

	if _, err := f.checkoutService(false).Checkout(ctx, buyer, CheckoutInput{DeliveryLocation: "Gate 1", PaymentMethod: "cod"}); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if !f.reloadBook(t, book.ID).IsAvailable {
		t.Fatalf("book should stay available when reservation is disabled")
	}
}

func TestCheckoutFingerprintIgnoresLineOrder(t *testing.T) {
	a := models.CartItem{BookID: 1, Price: models.MustMoney("10"), Quantity: 1}
	b := models.CartItem{BookID: 2, Price: models.MustMoney("20"), Quantity: 2}
	first := checkoutFingerprint([]models.CartItem{a, b}, "Gate", "cod")
	second := checkoutFingerprint([]models.CartItem{b, a}, "Gate", "cod")
	if first != second {
		t.Fatalf("fingerprint should not depend on line order")
	}
	if first == checkoutFingerprint([]models.CartItem{a, b}, "Gate", "upi") {
		t.Fatalf("fingerprint should change with payment method")
	}
}

func TestGenerateOrderNoFormat(t *testing.T) {
	no := generateOrderNo()
	if len(no) != len(constants.OrderNoPrefix)+14+6 {
		t.Fatalf("unexpected order no length: %s", no)
	}
	if !strings.HasPrefix(no, constants.OrderNoPrefix) {
		t.Fatalf("order no want prefix %s got %s", constants.OrderNoPrefix, no)
	}
}

func TestCheckoutKeepsCartChangedDuringCommit(t *testing.T) {
	f := setupServiceTest(t)
	ctx := context.Background()
	seller := f.createProfile(t, "senior@campus.edu", constants.RoleSenior)
	buyer := f.createProfile(t, "junior@campus.edu", constants.RoleJunior)
	first := f.createBook(t, seller.UserID, "A", "100")
	late := f.createBook(t, seller.UserID, "B", "50")
	fillCart(t, f, buyer, first)

	scope := cart.ScopeForUser(buyer.UserID)
	repo := cartTouchingOrderRepo{OrderRepository: f.orderRepo, touch: func() {
		if err := f.store.Add(ctx, scope, models.CartItem{BookID: late.ID, Title: late.Title, Price: late.BasePrice}); err != nil {
			t.Errorf("concurrent add failed: %v", err)
		}
	}}
	svc := NewCheckoutService(config.OrderConfig{ReserveBooksOnCheckout: true}, f.store, repo, f.bookRepo, f.attemptRepo, nil)

	result, err := svc.Checkout(ctx, buyer, CheckoutInput{DeliveryLocation: "Gate 1", PaymentMethod: constants.PaymentMethodCOD})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if len(result.Order.Items) != 1 || result.Order.TotalAmount.String() != "100.00" {
		t.Fatalf("order should hold the snapshot only: %+v", result.Order)
	}
	items := f.store.Get(ctx, scope)
	if len(items) != 2 {
		t.Fatalf("cart changed during checkout should be kept, got %d items", len(items))
	}
}
