package assessment

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SaveFunc persists a batch of pending responses for a session.
type SaveFunc func(ctx context.Context, sessionID string, responses []Response, step int)

// Autosaver implements the deferred-save contract: each armed answer resets
// the session's debounce timer, and only the state present when the window
// quiets gets persisted. Cancel guarantees no save fires afterwards.
type Autosaver struct {
	window time.Duration
	save   SaveFunc
	log    *zap.Logger

	mu      sync.Mutex
	pending map[string]*pendingSave
	closed  bool
}

type pendingSave struct {
	timer     *time.Timer
	responses []Response
	step      int
}

func NewAutosaver(window time.Duration, save SaveFunc, log *zap.Logger) *Autosaver {
	return &Autosaver{
		window:  window,
		save:    save,
		log:     log,
		pending: map[string]*pendingSave{},
	}
}

// Arm merges the response into the session's pending batch and (re)starts
// the debounce timer. Pending state lives only in memory until the timer
// fires or Flush is called.
func (a *Autosaver) Arm(sessionID string, r Response, step int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	p, ok := a.pending[sessionID]
	if !ok {
		p = &pendingSave{}
		a.pending[sessionID] = p
	}
	p.responses = UpsertResponse(p.responses, r)
	if step > p.step {
		p.step = step
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(a.window, func() { a.fire(sessionID, p) })
}

// fire persists the batch if it is still the session's current pending
// entry; a Flush or Cancel that raced in first wins.
func (a *Autosaver) fire(sessionID string, p *pendingSave) {
	a.mu.Lock()
	cur, ok := a.pending[sessionID]
	if !ok || cur != p {
		a.mu.Unlock()
		return
	}
	delete(a.pending, sessionID)
	responses, step := p.responses, p.step
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.save(ctx, sessionID, responses, step)
}

// Flush persists any pending batch immediately (question navigation and
// submit paths) and disarms the timer. Returns false if nothing was pending.
func (a *Autosaver) Flush(ctx context.Context, sessionID string) bool {
	a.mu.Lock()
	p, ok := a.pending[sessionID]
	if ok {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(a.pending, sessionID)
	}
	a.mu.Unlock()
	if !ok {
		return false
	}
	a.save(ctx, sessionID, p.responses, p.step)
	return true
}

// Cancel drops any pending batch without saving. Mandatory on session
// teardown; callers needing durability must Flush first.
func (a *Autosaver) Cancel(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.pending[sessionID]; ok {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(a.pending, sessionID)
	}
}

// Close cancels every pending save. No save fires after Close returns.
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	for id, p := range a.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(a.pending, id)
	}
	if a.log != nil {
		a.log.Debug("autosaver closed")
	}
}
