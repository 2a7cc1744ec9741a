package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type stubService struct {
	name     string
	startErr error
	mu       sync.Mutex
	stopped  bool
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *stubService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *stubService) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	boom := errors.New("listen failed")
	failing := &stubService{name: "http", startErr: boom}
	healthy := &stubService{name: "worker"}

	var order []string
	runner := NewRunner(failing, healthy)
	runner.OnShutdown(
		func() error { order = append(order, "queue"); return nil },
		func() error { order = append(order, "redis"); return nil },
	)

	err := runner.Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("want start error got %v", err)
	}
	if !failing.isStopped() || !healthy.isStopped() {
		t.Fatalf("all services should be stopped")
	}
	if len(order) != 2 || order[0] != "redis" || order[1] != "queue" {
		t.Fatalf("closers should run in reverse order, got %v", order)
	}
}

func TestRunnerCancelledContextReturnsNil(t *testing.T) {
	svc := &stubService{name: "http"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewRunner(svc).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run want nil got %v", err)
	}
	if !svc.isStopped() {
		t.Fatalf("service should be stopped")
	}
}

func TestBuildRunnerRequiresConfig(t *testing.T) {
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("nil config should fail")
	}
}

func TestIsValidMode(t *testing.T) {
	for _, mode := range []string{ModeAll, ModeAPI, ModeWorker} {
		if !isValidMode(mode) {
			t.Fatalf("mode %s should be valid", mode)
		}
	}
	if isValidMode("cron") {
		t.Fatalf("unknown mode should be rejected")
	}
}
