// internal/asyncreq/manager_test.go
package asyncreq_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskhand/api/schemas"
	"github.com/xkilldash9x/deskhand/internal/asyncreq"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// pollUntil polls id until done reports true for its status, failing the
// test if the deadline expires first.
func pollUntil(t *testing.T, m *asyncreq.Manager, id string, done func(string) bool) schemas.Result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		r := m.Poll(id)
		if done(r["status"].(string)) {
			return r
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("request %s never reached the expected state", id)
	return nil
}

func terminal(status string) bool {
	return schemas.RequestStatus(status).Terminal()
}

func TestSubmit_IDShape(t *testing.T) {
	m := asyncreq.NewManager(zap.NewNop())
	defer m.Shutdown()

	id := m.Submit(func() schemas.Result { return schemas.OK() })
	require.Len(t, id, 8)
	for _, r := range id {
		assert.True(t, (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'), "id must be lowercase alphanumeric: %q", id)
	}
}

func TestLifecycle_Complete(t *testing.T) {
	m := asyncreq.NewManager(zap.NewNop())
	defer m.Shutdown()

	id := m.Submit(func() schemas.Result {
		return schemas.Result{"success": true, "actions": []schemas.Action{{Action: "wait"}}}
	})

	r := pollUntil(t, m, id, terminal)
	assert.Equal(t, "complete", r["status"])
	assert.Contains(t, r, "result")
	assert.Contains(t, r, "actions", "actions must be lifted to the top level")
	assert.Equal(t, id, r["request_id"])
}

func TestLifecycle_Error(t *testing.T) {
	m := asyncreq.NewManager(zap.NewNop())
	defer m.Shutdown()

	id := m.Submit(func() schemas.Result { return schemas.Fail("provider melted") })

	r := pollUntil(t, m, id, terminal)
	assert.Equal(t, "error", r["status"])
	assert.Equal(t, "provider melted", r["error"], "error must be lifted to the top level")
}

func TestLifecycle_PanicBecomesError(t *testing.T) {
	m := asyncreq.NewManager(zap.NewNop())
	defer m.Shutdown()

	id := m.Submit(func() schemas.Result { panic("boom") })

	r := pollUntil(t, m, id, terminal)
	assert.Equal(t, "error", r["status"])
	assert.Contains(t, r["error"], "boom")
}

func TestPoll_NotFound(t *testing.T) {
	m := asyncreq.NewManager(zap.NewNop())
	defer m.Shutdown()

	r := m.Poll("zzzzzzzz")
	assert.Equal(t, "not_found", r["status"])
}

func TestFIFO_SingleFlight(t *testing.T) {
	m := asyncreq.NewManager(zap.NewNop())
	defer m.Shutdown()

	type span struct{ start, end time.Time }
	var mu sync.Mutex

	const n = 5
	done := make([]span, n)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		i := i
		id := m.Submit(func() schemas.Result {
			s := span{start: time.Now()}
			time.Sleep(10 * time.Millisecond)
			s.end = time.Now()
			mu.Lock()
			done[i] = s
			mu.Unlock()
			return schemas.OK()
		})
		ids = append(ids, id)
	}

	for _, id := range ids {
		pollUntil(t, m, id, terminal)
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < n; i++ {
		assert.False(t, done[i].start.Before(done[i-1].end),
			"request %d started before request %d finished", i, i-1)
	}
}

func TestCancel_BeforeStartDrops(t *testing.T) {
	m := asyncreq.NewManager(zap.NewNop())
	defer m.Shutdown()

	// Occupy the worker so the next submit stays queued.
	gate := make(chan struct{})
	blocker := m.Submit(func() schemas.Result {
		<-gate
		return schemas.OK()
	})

	ran := false
	victim := m.Submit(func() schemas.Result {
		ran = true
		return schemas.OK()
	})

	r := m.Cancel(victim)
	assert.Equal(t, "cancelled", r["status"])

	ranAfter := false
	survivor := m.Submit(func() schemas.Result {
		ranAfter = true
		return schemas.OK()
	})

	close(gate)
	pollUntil(t, m, blocker, terminal)
	pollUntil(t, m, survivor, terminal)

	assert.False(t, ran, "a cancelled queued request must never run")
	assert.True(t, ranAfter, "later submissions run normally")

	r = m.Poll(victim)
	assert.Equal(t, "cancelled", r["status"])
	assert.NotContains(t, r, "result")
}

func TestCancel_InFlightDiscardsResult(t *testing.T) {
	m := asyncreq.NewManager(zap.NewNop())
	defer m.Shutdown()

	started := make(chan struct{})
	gate := make(chan struct{})
	id := m.Submit(func() schemas.Result {
		close(started)
		<-gate
		return schemas.Result{"success": true, "actions": []schemas.Action{{Action: "wait"}}}
	})

	<-started
	r := m.Cancel(id)
	assert.Equal(t, "processing", r["status"], "in-flight work is not pre-empted")

	close(gate)
	r = pollUntil(t, m, id, terminal)
	assert.Equal(t, "cancelled", r["status"])
	assert.NotContains(t, r, "result", "a discarded result must not leak through Poll")
	assert.NotContains(t, r, "actions")
}

func TestCancel_TerminalIsNoop(t *testing.T) {
	m := asyncreq.NewManager(zap.NewNop())
	defer m.Shutdown()

	id := m.Submit(func() schemas.Result { return schemas.OK() })
	pollUntil(t, m, id, terminal)

	r := m.Cancel(id)
	assert.Equal(t, "complete", r["status"], "cancel after completion reports the terminal status unchanged")
}

func TestCancel_NotFound(t *testing.T) {
	m := asyncreq.NewManager(zap.NewNop())
	defer m.Shutdown()

	r := m.Cancel("nope1234")
	assert.Equal(t, "not_found", r["status"])
}

func TestTTL_Eviction(t *testing.T) {
	now := time.Now()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	m := asyncreq.NewManager(zap.NewNop(), asyncreq.WithClock(clock))
	defer m.Shutdown()

	id := m.Submit(func() schemas.Result { return schemas.OK() })
	pollUntil(t, m, id, terminal)

	// Within the TTL the entry survives further submissions.
	m.Submit(func() schemas.Result { return schemas.OK() })
	assert.Equal(t, "complete", m.Poll(id)["status"])

	mu.Lock()
	now = now.Add(5*time.Minute + time.Second)
	mu.Unlock()

	// The next submit evicts the stale entry.
	m.Submit(func() schemas.Result { return schemas.OK() })
	assert.Equal(t, "not_found", m.Poll(id)["status"])
}

func TestShutdown_AbandonsQueued(t *testing.T) {
	m := asyncreq.NewManager(zap.NewNop())

	gate := make(chan struct{})
	started := make(chan struct{})
	m.Submit(func() schemas.Result {
		close(started)
		<-gate
		return schemas.OK()
	})

	ran := false
	m.Submit(func() schemas.Result {
		ran = true
		return schemas.OK()
	})

	<-started
	close(gate)
	m.Shutdown()

	assert.False(t, ran, "queued work must be abandoned on shutdown")

	// Shutdown is idempotent.
	m.Shutdown()
}
