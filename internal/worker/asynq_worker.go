package worker

import (
	"context"
	"errors"
	"time"

	"github.com/campusbooks/internal/logger"
	"github.com/campusbooks/internal/provider"
	"github.com/campusbooks/internal/queue"
	"github.com/campusbooks/internal/service"

	"github.com/hibiken/asynq"
)

type orderAuditor interface {
	AuditOrder(ctx context.Context, orderID uint) (bool, error)
	SweepOrphanOrders(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	orders orderAuditor
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	if c == nil || c.OrderService == nil {
		return &Consumer{}
	}
	return &Consumer{orders: c.OrderService}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderAudit, c.handleOrderAudit)
}

// handleOrderAudit 核查订单是否完整写入，孤儿订单直接取消
func (c *Consumer) handleOrderAudit(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_audit_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderAuditPayload(task)
	if err != nil {
		logger.Warnw("worker_order_audit_invalid_payload", "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}
	if c.orders == nil {
		logger.Warnw("worker_order_audit_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	cancelled, err := c.orders.AuditOrder(ctx, payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderStatusInvalid):
			logger.Debugw("worker_order_audit_skip_status_changed", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_order_audit_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	if cancelled {
		logger.Warnw("worker_order_audit_cancelled_orphan", "order_id", payload.OrderID)
	}
	return nil
}
