package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/campusbooks/internal/cart"
	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/logger"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/queue"
	"github.com/campusbooks/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckoutService 结算下单
type CheckoutService struct {
	cfg         config.OrderConfig
	store       *cart.Store
	orderRepo   repository.OrderRepository
	bookRepo    repository.BookRepository
	attemptRepo repository.CheckoutAttemptRepository
	queueClient *queue.Client
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(cfg config.OrderConfig, store *cart.Store, orderRepo repository.OrderRepository, bookRepo repository.BookRepository, attemptRepo repository.CheckoutAttemptRepository, queueClient *queue.Client) *CheckoutService {
	return &CheckoutService{
		cfg:         cfg,
		store:       store,
		orderRepo:   orderRepo,
		bookRepo:    bookRepo,
		attemptRepo: attemptRepo,
		queueClient: queueClient,
	}
}

// CheckoutInput 结算参数
type CheckoutInput struct {
	DeliveryLocation string
	PaymentMethod    string
	IdempotencyKey   string
}

// CheckoutResult 结算结果，Replayed 表示命中幂等键返回的已有订单
type CheckoutResult struct {
	Order    *models.Order
	Replayed bool
}

// Checkout 把购物车转换为订单
// 订单、订单项与幂等记录在同一事务内写入；提交后购物车未被改动才清空
func (s *CheckoutService) Checkout(ctx context.Context, sess *Session, input CheckoutInput) (*CheckoutResult, error) {
	scope, items, err := s.precheck(ctx, sess)
	if err != nil {
		return nil, err
	}

	location := strings.TrimSpace(input.DeliveryLocation)
	if location == "" {
		return nil, ErrDeliveryLocationRequired
	}
	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	if !isValidPaymentMethod(method) {
		return nil, ErrPaymentMethodInvalid
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	if len(key) > constants.IdempotencyKeyMaxLen {
		return nil, ErrIdempotencyKeyInvalid
	}
	if key == "" {
		key = uuid.NewString()
	}
	fingerprint := checkoutFingerprint(items, location, method)

	var order *models.Order
	replayed := false
	err = models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attemptRepo := s.attemptRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		existing, err := attemptRepo.GetByKey(sess.UserID, key)
		if err != nil {
			return err
		}
		if existing != nil {
			found, err := s.replayAttempt(orderRepo, existing, sess.UserID, fingerprint)
			if err != nil {
				return err
			}
			order = found
			replayed = true
			return nil
		}

		if err := s.checkBooks(s.bookRepo.WithTx(tx), sess.UserID, items); err != nil {
			return err
		}

		created := &models.Order{
			OrderNo:          generateOrderNo(),
			BuyerID:          sess.UserID,
			Status:           constants.OrderStatusPending,
			PaymentMethod:    method,
			PaymentStatus:    constants.PaymentStatusPending,
			DeliveryLocation: location,
			TotalAmount:      cart.Total(items),
		}
		if err := orderRepo.CreateOrder(created); err != nil {
			return &CheckoutStepError{Step: CheckoutStepOrder, Err: err}
		}
		orderItems := buildOrderItems(items)
		if err := orderRepo.CreateItems(created.ID, orderItems); err != nil {
			return &CheckoutStepError{Step: CheckoutStepItems, Err: err}
		}
		created.Items = orderItems

		if err := attemptRepo.Create(&models.CheckoutAttempt{
			BuyerID:        sess.UserID,
			IdempotencyKey: key,
			Fingerprint:    fingerprint,
			OrderID:        created.ID,
		}); err != nil {
			return &CheckoutStepError{Step: CheckoutStepAttempt, Err: err}
		}
		order = created
		return nil
	})
	if err != nil {
		// 并发提交同一幂等键时，后到的事务会失败，此时返回先提交的订单
		if found, replayErr := s.replayCommitted(sess.UserID, key, fingerprint); replayErr == nil && found != nil {
			order = found
			replayed = true
		} else {
			var stepErr *CheckoutStepError
			if errors.As(err, &stepErr) {
				logger.Errorw("checkout_step_failed",
					"buyer_id", sess.UserID,
					"step", stepErr.Step,
					"error", stepErr.Err,
				)
			}
			return nil, err
		}
	}

	if cleared, err := s.store.ClearIfUnchanged(ctx, scope, items); err != nil {
		logger.Warnw("checkout_cart_clear_failed", "buyer_id", sess.UserID, "order_id", order.ID, "error", err)
	} else if !cleared {
		logger.Infow("checkout_cart_changed_kept", "buyer_id", sess.UserID, "order_id", order.ID)
	}
	if replayed {
		logger.Infow("checkout_replayed", "buyer_id", sess.UserID, "order_no", order.OrderNo)
		return &CheckoutResult{Order: order, Replayed: true}, nil
	}

	logger.Infow("checkout_order_created",
		"buyer_id", sess.UserID,
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"total_amount", order.TotalAmount.String(),
		"items", len(order.Items),
	)
	s.enqueueAudit(order.ID)
	return &CheckoutResult{Order: order}, nil
}

// Precheck 依次校验登录、买家身份与购物车非空，不读取请求参数
func (s *CheckoutService) Precheck(ctx context.Context, sess *Session) error {
	_, _, err := s.precheck(ctx, sess)
	return err
}

func (s *CheckoutService) precheck(ctx context.Context, sess *Session) (string, []models.CartItem, error) {
	if err := requireJunior(sess); err != nil {
		return "", nil, err
	}
	scope := cart.ScopeForUser(sess.UserID)
	items := s.store.Get(ctx, scope)
	if len(items) == 0 {
		return "", nil, ErrCartEmpty
	}
	return scope, items, nil
}

func (s *CheckoutService) replayAttempt(orderRepo repository.OrderRepository, attempt *models.CheckoutAttempt, buyerID uint, fingerprint string) (*models.Order, error) {
	if attempt.Fingerprint != fingerprint {
		return nil, ErrIdempotencyConflict
	}
	order, err := orderRepo.GetByIDAndBuyer(attempt.OrderID, buyerID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *CheckoutService) replayCommitted(buyerID uint, key, fingerprint string) (*models.Order, error) {
	attempt, err := s.attemptRepo.GetByKey(buyerID, key)
	if err != nil || attempt == nil {
		return nil, err
	}
	return s.replayAttempt(s.orderRepo, attempt, buyerID, fingerprint)
}

// checkBooks 校验书籍可售，按配置占用库存
func (s *CheckoutService) checkBooks(bookRepo repository.BookRepository, buyerID uint, items []models.CartItem) error {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.BookID)
	}
	books, err := bookRepo.ListByIDs(ids)
	if err != nil {
		return err
	}
	byID := make(map[uint]models.Book, len(books))
	for _, book := range books {
		byID[book.ID] = book
	}
	for _, item := range items {
		book, ok := byID[item.BookID]
		if !ok || !book.IsAvailable {
			return fmt.Errorf("%w: book %d", ErrBookUnavailable, item.BookID)
		}
		if book.SellerID == buyerID {
			return fmt.Errorf("%w: book %d", ErrOwnBookInCart, item.BookID)
		}
	}
	if !s.cfg.ReserveBooksOnCheckout {
		return nil
	}
	for _, item := range items {
		affected, err := bookRepo.Reserve(item.BookID)
		if err != nil {
			return &CheckoutStepError{Step: CheckoutStepReserve, Err: err}
		}
		if affected == 0 {
			return fmt.Errorf("%w: book %d", ErrBookUnavailable, item.BookID)
		}
	}
	return nil
}

func (s *CheckoutService) enqueueAudit(orderID uint) {
	if s.queueClient == nil {
		return
	}
	delay := time.Duration(s.cfg.AuditDelaySeconds) * time.Second
	if err := s.queueClient.EnqueueOrderAudit(queue.OrderAuditPayload{OrderID: orderID}, delay); err != nil {
		logger.Warnw("checkout_enqueue_audit_failed", "order_id", orderID, "error", err)
	}
}

func buildOrderItems(items []models.CartItem) []models.OrderItem {
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			BookID:   item.BookID,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return orderItems
}

// checkoutFingerprint 购物车行与交付信息的摘要，行顺序不影响结果
func checkoutFingerprint(items []models.CartItem, location, method string) string {
	lines := make([]string, 0, len(items)+2)
	for _, item := range items {
		lines = append(lines, strconv.FormatUint(uint64(item.BookID), 10)+"x"+strconv.Itoa(item.Quantity)+"@"+item.Price.String())
	}
	sort.Strings(lines)
	lines = append(lines, "location="+location, "method="+method)
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

func isValidPaymentMethod(method string) bool {
	return method == constants.PaymentMethodCOD || method == constants.PaymentMethodUPI
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return constants.OrderNoPrefix + now + randNumeric(6)
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(strconv.FormatInt(n.Int64(), 10))
	}
	return b.String()
}
