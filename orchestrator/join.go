package orchestrator

import (
	"context"
	"sync"
)

const (
	branchPersist  = "audio_persisted"
	branchFeedback = "feedback_done"
)

// turnJoin is the per-turn join record: a fresh instance tracks the named
// branches of one turn and releases waiters once every branch has reported.
// Branches may report in any order; reporting the same branch twice is a
// no-op.
type turnJoin struct {
	mu      sync.Mutex
	pending map[string]bool
	done    chan struct{}
}

func newTurnJoin(branches ...string) *turnJoin {
	pending := make(map[string]bool, len(branches))
	for _, b := range branches {
		pending[b] = true
	}
	return &turnJoin{
		pending: pending,
		done:    make(chan struct{}),
	}
}

// report marks one branch as finished.
func (j *turnJoin) report(branch string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.pending[branch] {
		return
	}
	delete(j.pending, branch)
	if len(j.pending) == 0 {
		close(j.done)
	}
}

// wait blocks until every branch has reported or the context is cancelled.
func (j *turnJoin) wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
