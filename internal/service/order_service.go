package service

import (
	"context"
	"strings"
	"time"

	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/logger"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/repository"

	"gorm.io/gorm"
)

const defaultOrphanSweepLimit = 100

// OrderService 订单查询与完整性核查
type OrderService struct {
	cfg       config.OrderConfig
	orderRepo repository.OrderRepository
	bookRepo  repository.BookRepository
}

// NewOrderService 创建订单服务
func NewOrderService(cfg config.OrderConfig, orderRepo repository.OrderRepository, bookRepo repository.BookRepository) *OrderService {
	return &OrderService{cfg: cfg, orderRepo: orderRepo, bookRepo: bookRepo}
}

// OrderQuery 订单列表参数
type OrderQuery struct {
	Status   string
	Page     int
	PageSize int
}

// ListMine 买家订单列表，最新在前
func (s *OrderService) ListMine(sess *Session, query OrderQuery) ([]models.Order, int64, error) {
	if err := requireJunior(sess); err != nil {
		return nil, 0, err
	}
	status, err := normalizeStatusFilter(query.Status)
	if err != nil {
		return nil, 0, err
	}
	return s.orderRepo.ListByBuyer(repository.OrderListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		BuyerID:  sess.UserID,
		Status:   status,
	})
}

// GetMine 买家订单详情
func (s *OrderService) GetMine(sess *Session, orderID uint) (*models.Order, error) {
	if err := requireJunior(sess); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByIDAndBuyer(orderID, sess.UserID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListForSeller 包含卖家书籍的订单，只读
func (s *OrderService) ListForSeller(sess *Session, query OrderQuery) ([]models.Order, int64, error) {
	if err := requireSenior(sess); err != nil {
		return nil, 0, err
	}
	status, err := normalizeStatusFilter(query.Status)
	if err != nil {
		return nil, 0, err
	}
	return s.orderRepo.ListBySeller(repository.OrderListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		SellerID: sess.UserID,
		Status:   status,
	})
}

// AuditOrder 核查订单是否有订单项，没有则取消
// 返回 true 表示本次取消了该订单
func (s *OrderService) AuditOrder(ctx context.Context, orderID uint) (bool, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return false, err
	}
	if order == nil {
		logger.Warnw("order_audit_missing", "order_id", orderID)
		return false, nil
	}
	if order.Status != constants.OrderStatusPending {
		return false, nil
	}
	count, err := s.orderRepo.CountItems(order.ID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if err := s.cancelOrder(ctx, order, "orphan"); err != nil {
		return false, err
	}
	return true, nil
}

// SweepOrphanOrders 批量取消创建超过 olderThan 仍无订单项的待处理订单
func (s *OrderService) SweepOrphanOrders(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	if limit <= 0 {
		limit = defaultOrphanSweepLimit
	}
	orders, err := s.orderRepo.ListWithoutItems(time.Now().Add(-olderThan), constants.OrderStatusPending, limit)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for i := range orders {
		if err := s.cancelOrder(ctx, &orders[i], "orphan_sweep"); err != nil {
			logger.Warnw("order_sweep_cancel_failed", "order_id", orders[i].ID, "error", err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// cancelOrder 取消订单；开启结算占用时释放订单项占用的书籍
func (s *OrderService) cancelOrder(ctx context.Context, order *models.Order, reason string) error {
	if !isTransitionAllowed(order.Status, constants.OrderStatusCancelled) {
		return ErrOrderStatusInvalid
	}
	now := time.Now()
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.orderRepo.WithTx(tx).UpdateStatus(order.ID, order.Status, constants.OrderStatusCancelled, map[string]interface{}{
			"cancelled_at": now,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderStatusInvalid
		}
		if !s.cfg.ReserveBooksOnCheckout {
			return nil
		}
		bookRepo := s.bookRepo.WithTx(tx)
		for _, item := range order.Items {
			if _, err := bookRepo.Release(item.BookID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infow("order_cancelled", "order_id", order.ID, "order_no", order.OrderNo, "reason", reason)
	order.Status = constants.OrderStatusCancelled
	order.CancelledAt = &now
	return nil
}

func normalizeStatusFilter(status string) (string, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return "", nil
	}
	if !isValidOrderStatus(status) {
		return "", ErrOrderStatusInvalid
	}
	return status, nil
}
