package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"logistics-service/internal/domain"
	"logistics-service/internal/services"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingWorker struct {
	runs atomic.Int32
	done chan struct{}
}

func (w *countingWorker) Name() string     { return "counting" }
func (w *countingWorker) Schedule() string { return "@every 1s" }

func (w *countingWorker) Execute(context.Context) error {
	if w.runs.Add(1) == 1 {
		close(w.done)
	}
	return nil
}

func TestOrchestratorRunsWorkersAndStops(t *testing.T) {
	w := &countingWorker{done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- NewOrchestrator(zap.NewNop(), w).Run(ctx) }()

	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never ran")
	}

	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestOrchestratorRejectsBadSchedule(t *testing.T) {
	bad := NewReassignmentWorker(&services.ReassignmentAudit{}, "every now and then")
	if _, err := NewOrchestrator(zap.NewNop(), bad).Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

type listerFunc func(context.Context) ([]*domain.Dispatch, error)

func (f listerFunc) ListNeedingReassignment(ctx context.Context) ([]*domain.Dispatch, error) {
	return f(ctx)
}

func TestReassignmentWorkerExecute(t *testing.T) {
	called := false
	audit := &services.ReassignmentAudit{Dispatches: listerFunc(func(context.Context) ([]*domain.Dispatch, error) {
		called = true
		return nil, nil
	})}

	w := NewReassignmentWorker(audit, "@every 15m")
	if w.Schedule() != "@every 15m" || w.Name() == "" {
		t.Fatalf("unexpected worker identity %q %q", w.Name(), w.Schedule())
	}
	if err := w.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !called {
		t.Fatal("audit did not query dispatches")
	}
}
