package service

import (
	"errors"

	"github.com/campusbooks/internal/cart"
)

var (
	// 会话与权限
	ErrAuthRequired  = errors.New("authentication required")
	ErrRoleDenied    = errors.New("role not allowed")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenRevoked  = errors.New("token revoked")
	ErrRoleInvalid   = errors.New("invalid role")
	ErrNotFound      = errors.New("not found")
	ErrInvalidEmail  = errors.New("invalid email")
	ErrEmailExists   = errors.New("email already registered")
	ErrWeakPassword  = errors.New("weak password")
	ErrFullNameEmpty = errors.New("full name required")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrProfileNotFound    = errors.New("profile not found")

	// 书籍
	ErrBookNotFound         = errors.New("book not found")
	ErrBookInvalid          = errors.New("invalid book")
	ErrBookConditionInvalid = errors.New("invalid book condition")
	ErrBookPriceInvalid     = errors.New("invalid book price")
	ErrSellingPriceTooHigh  = errors.New("selling price above base price")
	ErrBookNotOwner         = errors.New("book belongs to another seller")
	ErrBookUnavailable      = errors.New("book unavailable")
	ErrOwnBookInCart        = errors.New("cannot buy own book")

	// 购物车
	ErrAlreadyInCart   = cart.ErrAlreadyInCart
	ErrCartItemInvalid = cart.ErrInvalidItem
	ErrCartEmpty       = errors.New("cart is empty")

	// 结算与订单
	ErrDeliveryLocationRequired = errors.New("delivery location required")
	ErrPaymentMethodInvalid     = errors.New("invalid payment method")
	ErrIdempotencyKeyInvalid    = errors.New("invalid idempotency key")
	ErrIdempotencyConflict      = errors.New("idempotency key reused with different checkout")
	ErrOrderCreateFailed        = errors.New("order create failed")
	ErrOrderNotFound            = errors.New("order not found")
	ErrOrderStatusInvalid       = errors.New("order status transition not allowed")
)

// 结算写入阶段
const (
	CheckoutStepReserve = "books_reserve"
	CheckoutStepOrder   = "order_insert"
	CheckoutStepItems   = "items_insert"
	CheckoutStepAttempt = "attempt_insert"
)

// CheckoutStepError 结算事务中某一步写入失败，事务已整体回滚
type CheckoutStepError struct {
	Step string
	Err  error
}

func (e *CheckoutStepError) Error() string {
	return "checkout " + e.Step + " failed: " + e.Err.Error()
}

func (e *CheckoutStepError) Unwrap() error {
	return e.Err
}

// Is 归类为下单失败
func (e *CheckoutStepError) Is(target error) bool {
	return target == ErrOrderCreateFailed
}
