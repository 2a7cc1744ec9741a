package worker

import (
	"context"
	"errors"
	"time"

	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/logger"
	"github.com/campusbooks/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultOrphanSweepInterval = 10 * time.Minute
	orphanSweepBatch           = 100
)

// Service 异步队列服务
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	sweepInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, orderCfg config.OrderConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:          "worker",
		server:        server,
		mux:           mux,
		consumer:      consumer,
		sweepInterval: sweepInterval(orderCfg),
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.orders != nil {
		go s.runOrphanSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runOrphanSweepLoop 兜底清理漏掉核查任务的孤儿订单
func (s *Service) runOrphanSweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.consumer.sweepOnce(ctx, s.sweepInterval)
		}
	}
}

func (c *Consumer) sweepOnce(ctx context.Context, olderThan time.Duration) int {
	if c == nil || c.orders == nil {
		return 0
	}
	cancelled, err := c.orders.SweepOrphanOrders(ctx, olderThan, orphanSweepBatch)
	if err != nil {
		logger.Warnw("worker_orphan_sweep_failed", "error", err)
		return cancelled
	}
	if cancelled > 0 {
		logger.Warnw("worker_orphan_sweep_cancelled", "count", cancelled)
	}
	return cancelled
}

func sweepInterval(cfg config.OrderConfig) time.Duration {
	if cfg.AuditSweepMinutes <= 0 {
		return defaultOrphanSweepInterval
	}
	return time.Duration(cfg.AuditSweepMinutes) * time.Minute
}
