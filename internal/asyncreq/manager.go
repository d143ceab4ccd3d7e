// internal/asyncreq/manager.go
package asyncreq

import (
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskhand/api/schemas"
)

// Work is a deferred computation producing one wire result. It runs on the
// manager's single worker goroutine, outside the state lock.
type Work func() schemas.Result

const (
	idLength   = 8
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	// resultTTL is how long terminal entries stay pollable before the next
	// Submit evicts them.
	resultTTL = 5 * time.Minute
)

type request struct {
	id          string
	status      schemas.RequestStatus
	work        Work
	cancelFlag  bool
	result      schemas.Result
	completedAt time.Time
}

// Manager serializes long-running work behind opaque request ids. One worker
// goroutine drains a FIFO queue; the browser polls for results.
type Manager struct {
	mu       sync.Mutex
	cond     *sync.Cond
	requests map[string]*request
	queue    []*request
	running  bool
	done     chan struct{}
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the manager's time source. Tests use this to drive TTL
// eviction without waiting.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager starts the worker goroutine and returns a ready manager.
func NewManager(logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		requests: make(map[string]*request),
		running:  true,
		done:     make(chan struct{}),
		now:      time.Now,
		logger:   logger.Named("asyncreq"),
	}
	m.cond = sync.NewCond(&m.mu)
	for _, opt := range opts {
		opt(m)
	}
	go m.workerLoop()
	return m
}

// Submit enqueues work and returns its request id immediately. Terminal
// entries past their TTL are evicted first.
func (m *Manager) Submit(work Work) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cleanupStale()

	req := &request{
		id:     m.generateID(),
		status: schemas.StatusQueued,
		work:   work,
	}
	m.requests[req.id] = req
	m.queue = append(m.queue, req)
	m.cond.Signal()

	m.logger.Debug("request queued", zap.String("request_id", req.id), zap.Int("queue_len", len(m.queue)))
	return req.id
}

// Poll reports the status of a request, including the full result (with
// actions and error lifted to the top level) once it completed or errored.
func (m *Manager) Poll(id string) schemas.Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return schemas.Result{"request_id": id, "status": string(schemas.StatusNotFound)}
	}

	resp := schemas.Result{"request_id": id, "status": string(req.status)}
	if req.status == schemas.StatusComplete || req.status == schemas.StatusError {
		resp["result"] = req.result
		if actions, ok := req.result["actions"]; ok {
			resp["actions"] = actions
		}
		if errText, ok := req.result["error"]; ok {
			resp["error"] = errText
		}
	}
	return resp
}

// Cancel transitions a queued request to cancelled immediately, flags an
// in-flight request for discard on completion, and leaves terminal states
// untouched. The returned status reflects the state after the call.
func (m *Manager) Cancel(id string) schemas.Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return schemas.Result{"request_id": id, "status": string(schemas.StatusNotFound)}
	}

	switch req.status {
	case schemas.StatusQueued:
		req.status = schemas.StatusCancelled
		req.completedAt = m.now()
	case schemas.StatusProcessing:
		// The worker checks the flag when the work returns.
		req.cancelFlag = true
	}

	return schemas.Result{"request_id": id, "status": string(req.status)}
}

// Shutdown stops the worker and waits for it to exit. Queued entries are
// abandoned; in-flight work runs to completion.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.cond.Broadcast()
	m.mu.Unlock()

	<-m.done
}

func (m *Manager) workerLoop() {
	defer close(m.done)
	m.logger.Debug("worker started")

	for {
		m.mu.Lock()
		for m.running && len(m.queue) == 0 {
			m.cond.Wait()
		}
		if !m.running {
			m.mu.Unlock()
			break
		}

		req := m.queue[0]
		m.queue = m.queue[1:]

		if req.status == schemas.StatusCancelled {
			m.mu.Unlock()
			continue
		}
		req.status = schemas.StatusProcessing
		m.mu.Unlock()

		result := runWork(req.work)

		m.mu.Lock()
		switch {
		case req.cancelFlag:
			req.status = schemas.StatusCancelled
		case result.Succeeded():
			req.status = schemas.StatusComplete
			req.result = result
		default:
			req.status = schemas.StatusError
			req.result = result
		}
		req.completedAt = m.now()
		m.logger.Debug("request finished", zap.String("request_id", req.id), zap.String("status", string(req.status)))
		m.mu.Unlock()
	}

	m.logger.Debug("worker stopped")
}

// runWork executes the closure, converting a panic into an error result.
func runWork(work Work) (result schemas.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = schemas.Failf("%v", r)
		}
	}()
	return work()
}

// cleanupStale evicts terminal entries older than the TTL. Caller holds mu.
func (m *Manager) cleanupStale() {
	cutoff := m.now().Add(-resultTTL)
	for id, req := range m.requests {
		if req.status.Terminal() && req.completedAt.Before(cutoff) {
			delete(m.requests, id)
		}
	}
}

// generateID returns a fresh 8-character id, retrying on the (vanishingly
// rare) collision. Caller holds mu.
func (m *Manager) generateID() string {
	for {
		buf := make([]byte, idLength)
		for i := range buf {
			buf[i] = idAlphabet[rand.IntN(len(idAlphabet))]
		}
		id := string(buf)
		if _, exists := m.requests[id]; !exists {
			return id
		}
	}
}
