package worker

import (
	"context"
	"errors"
	"time"

	"github.com/hevea-next/internal/config"
	"github.com/hevea-next/internal/logger"
	"github.com/hevea-next/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultSweepInterval = time.Hour

// Service 异步队列服务
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	sweepInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	sweepInterval := defaultSweepInterval
	if cfg.Custody.SweepIntervalMinutes > 0 {
		sweepInterval = time.Duration(cfg.Custody.SweepIntervalMinutes) * time.Minute
	}
	return &Service{
		name:          "worker",
		server:        server,
		mux:           mux,
		consumer:      consumer,
		sweepInterval: sweepInterval,
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
	if s.consumer != nil && s.consumer.CustodyService != nil {
		go s.runOverdueSweepLoop(ctx)
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

// runOverdueSweepLoop 逾期扫描周期循环：单轮失败仅记日志，等待下一轮
func (s *Service) runOverdueSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.CustodyService == nil {
		return
	}
	runOnce := func() {
		result, err := s.consumer.CustodyService.SweepOverdue(time.Now())
		if err != nil {
			logger.Warnw("worker_overdue_sweep_loop_failed", "error", err)
			return
		}
		if result.Reclassified > 0 || result.Failed > 0 {
			logger.Infow("worker_overdue_sweep_loop_done",
				"scanned", result.Scanned,
				"reclassified", result.Reclassified,
				"failed", result.Failed,
			)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
