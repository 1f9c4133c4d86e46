package service

import (
	"context"
	"sync"
	"time"

	"github.com/aldenair/storefront-backend/pkg/cart"
	"github.com/aldenair/storefront-backend/pkg/logger"
)

type snapshotJob struct {
	action cart.Action
	state  cart.State
}

// snapshotWriter persists cart snapshots off the request path. A session has
// at most one writer goroutine; snapshots queued while it is busy replace
// each other, so only the newest one is written.
type snapshotWriter struct {
	persister CartPersister
	timeout   time.Duration

	mu      sync.Mutex
	pending map[string]snapshotJob
	running map[string]chan struct{}
}

func newSnapshotWriter(persister CartPersister, timeout time.Duration) *snapshotWriter {
	return &snapshotWriter{
		persister: persister,
		timeout:   timeout,
		pending:   make(map[string]snapshotJob),
		running:   make(map[string]chan struct{}),
	}
}

// enqueue never blocks on the persister
func (w *snapshotWriter) enqueue(sessionID string, action cart.Action, state cart.State) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[sessionID] = snapshotJob{action: action, state: state}
	if _, busy := w.running[sessionID]; busy {
		return
	}
	done := make(chan struct{})
	w.running[sessionID] = done
	go w.drain(sessionID, done)
}

func (w *snapshotWriter) drain(sessionID string, done chan struct{}) {
	defer close(done)
	for {
		w.mu.Lock()
		job, ok := w.pending[sessionID]
		if !ok {
			delete(w.running, sessionID)
			w.mu.Unlock()
			return
		}
		delete(w.pending, sessionID)
		w.mu.Unlock()

		w.write(sessionID, job)
	}
}

func (w *snapshotWriter) write(sessionID string, job snapshotJob) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	var err error
	if _, cleared := job.action.(cart.ClearCart); cleared {
		err = w.persister.Delete(ctx, sessionID)
	} else {
		err = w.persister.Save(ctx, sessionID, job.state)
	}
	if err != nil {
		logger.Warn("Failed to persist cart snapshot", map[string]interface{}{
			"session_id": sessionID,
			"action":     cart.ActionName(job.action),
			"error":      err.Error(),
		})
	}
}

// settle waits until the session has no write in flight
func (w *snapshotWriter) settle(ctx context.Context, sessionID string) error {
	w.mu.Lock()
	done, busy := w.running[sessionID]
	w.mu.Unlock()
	if !busy {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// flush waits until every queued snapshot has been written
func (w *snapshotWriter) flush(ctx context.Context) error {
	for {
		var done chan struct{}
		w.mu.Lock()
		for _, ch := range w.running {
			done = ch
			break
		}
		w.mu.Unlock()

		if done == nil {
			return nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
