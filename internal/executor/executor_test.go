// internal/executor/executor_test.go
package executor_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskhand/api/schemas"
	"github.com/xkilldash9x/deskhand/internal/asyncreq"
	"github.com/xkilldash9x/deskhand/internal/config"
	"github.com/xkilldash9x/deskhand/internal/credentials"
	"github.com/xkilldash9x/deskhand/internal/executor"
	"github.com/xkilldash9x/deskhand/internal/input"
	"github.com/xkilldash9x/deskhand/internal/provider"
	"github.com/xkilldash9x/deskhand/internal/screen"
	"github.com/xkilldash9x/deskhand/internal/uitree"
)

// nullSynth swallows all input events but counts them.
type nullSynth struct {
	clicks int
	chars  int
	keys   int
	wheels int
}

func (s *nullSynth) MouseMove(x, y int) {}
func (s *nullSynth) MouseButton(btn schemas.MouseButton, down bool) {
	if down {
		s.clicks++
	}
}
func (s *nullSynth) Wheel(units int)           { s.wheels++ }
func (s *nullSynth) Key(code uint16, down bool) { s.keys++ }
func (s *nullSynth) Char(r rune, down bool)     { s.chars++ }
func (s *nullSynth) LayoutKey(ch rune) uint16   { return uint16(ch) }

// failingCapturer simulates a refused capture subsystem.
type failingCapturer struct{}

func (failingCapturer) Initialize() error             { return errors.New("duplication refused") }
func (failingCapturer) Capture() (screen.Frame, error) { return screen.Frame{}, errors.New("no surface") }
func (failingCapturer) Dimensions() (int, int)        { return 0, 0 }

type harness struct {
	exec  *executor.Executor
	synth *nullSynth
	creds *credentials.Store
	async *asyncreq.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()

	synth := &nullSynth{}
	controller := input.NewController(synth, logger)
	controller.SetSleeper(func(time.Duration) {})

	creds := credentials.NewStore(credentials.NewMemoryBackend(), logger)
	router := provider.NewRouter(config.ProvidersConfig{
		Ollama: config.OllamaConfig{BaseURL: "http://127.0.0.1:1", ProbeTimeout: 200 * time.Millisecond, Timeout: time.Second},
	}, creds, logger)

	async := asyncreq.NewManager(logger)
	t.Cleanup(async.Shutdown)

	capturer := screen.NewStubCapturer(800, 600, logger)
	tree := uitree.NewStubProvider(800, 600, logger)

	exec := executor.New(capturer, tree, controller, creds, router, async,
		config.LimitsConfig{MaxRequestChars: 5000, MaxKeyChars: 500, RequestsPerMinute: 1000}, logger)
	require.NoError(t, exec.Initialize())

	return &harness{exec: exec, synth: synth, creds: creds, async: async}
}

func actionMsg(obj map[string]any) map[string]any {
	return map[string]any{"action": "execute_action", "params": obj}
}

func TestExecuteAction_Click(t *testing.T) {
	h := newHarness(t)

	r := h.exec.ExecuteAction(actionMsg(map[string]any{
		"action": "click",
		"params": map[string]any{"x": float64(100), "y": float64(100)},
	}))

	require.True(t, r.Succeeded(), "unexpected failure: %v", r)
	assert.Equal(t, "click", r["action"])
	assert.Equal(t, 1, h.synth.clicks)
}

func TestExecuteAction_ClickOutOfBounds(t *testing.T) {
	h := newHarness(t)

	cases := []map[string]any{
		{"x": float64(-1), "y": float64(5)},
		{"x": float64(5), "y": float64(-1)},
		{"x": float64(800), "y": float64(5)},  // width boundary is exclusive
		{"x": float64(5), "y": float64(600)},  // height boundary is exclusive
	}
	for _, params := range cases {
		r := h.exec.ExecuteAction(actionMsg(map[string]any{"action": "click", "params": params}))
		assert.False(t, r.Succeeded())
		assert.Equal(t, "Coordinates out of screen bounds", r.ErrorText())
	}
	assert.Zero(t, h.synth.clicks, "rejected clicks must not reach the synthesizer")
}

func TestExecuteAction_ClickMissingCoordinates(t *testing.T) {
	h := newHarness(t)

	r := h.exec.ExecuteAction(actionMsg(map[string]any{"action": "click", "params": map[string]any{"x": float64(5)}}))
	assert.Equal(t, "Missing x or y coordinates", r.ErrorText())
}

func TestExecuteAction_TypeTooLong(t *testing.T) {
	h := newHarness(t)

	long := make([]byte, 10001)
	for i := range long {
		long[i] = 'a'
	}
	r := h.exec.ExecuteAction(actionMsg(map[string]any{"action": "type", "params": map[string]any{"text": string(long)}}))

	assert.False(t, r.Succeeded())
	assert.Equal(t, "Text too long (max 10000 chars)", r.ErrorText())
	assert.Zero(t, h.synth.chars)
}

func TestExecuteAction_WaitRange(t *testing.T) {
	h := newHarness(t)

	r := h.exec.ExecuteAction(actionMsg(map[string]any{"action": "wait", "params": map[string]any{"ms": float64(31000)}}))
	assert.Equal(t, "Wait duration must be 0-30000ms", r.ErrorText())

	r = h.exec.ExecuteAction(actionMsg(map[string]any{"action": "wait", "params": map[string]any{"ms": float64(10)}}))
	assert.True(t, r.Succeeded())
}

func TestExecuteAction_UnknownType(t *testing.T) {
	h := newHarness(t)

	r := h.exec.ExecuteAction(actionMsg(map[string]any{"action": "teleport"}))
	assert.Equal(t, "Unknown action type: teleport", r.ErrorText())
}

func TestExecuteAction_MissingParams(t *testing.T) {
	h := newHarness(t)

	r := h.exec.ExecuteAction(map[string]any{"action": "execute_action"})
	assert.Equal(t, "Missing params", r.ErrorText())
}

func TestExecuteActions_BatchHaltsOnFailure(t *testing.T) {
	h := newHarness(t)

	msg := map[string]any{
		"action": "execute_actions",
		"params": map[string]any{
			"actions": []any{
				map[string]any{"action": "wait", "params": map[string]any{"ms": float64(1)}},
				map[string]any{"action": "click", "params": map[string]any{"x": float64(-1), "y": float64(5)}},
				map[string]any{"action": "type", "params": map[string]any{"text": "never typed"}},
			},
		},
	}

	r := h.exec.ExecuteActions(msg)

	// Top-level success stays true; callers inspect per-action results.
	require.True(t, r.Succeeded())
	results := r["results"].([]schemas.Result)
	require.Len(t, results, 2, "the batch must halt after the first failure")
	assert.True(t, results[0].Succeeded())
	assert.False(t, results[1].Succeeded())
	assert.Zero(t, h.synth.chars, "the action after the failure must never execute")
}

func TestExecuteActions_MissingArray(t *testing.T) {
	h := newHarness(t)

	r := h.exec.ExecuteActions(map[string]any{"action": "execute_actions", "params": map[string]any{}})
	assert.Equal(t, "Missing actions array", r.ErrorText())
}

func TestCaptureScreen(t *testing.T) {
	h := newHarness(t)

	r := h.exec.CaptureScreen(nil)
	require.True(t, r.Succeeded())
	assert.Equal(t, 800, r["width"])
	assert.Equal(t, 600, r["height"])
	assert.NotEmpty(t, r["screenshot"])
}

func TestGetUITree(t *testing.T) {
	h := newHarness(t)

	r := h.exec.GetUITree(nil)
	require.True(t, r.Succeeded())
	tree, ok := r["uiTree"].(*schemas.UINode)
	require.True(t, ok)
	assert.Equal(t, "Desktop", tree.Name)
}

func TestCapabilities(t *testing.T) {
	h := newHarness(t)

	r := h.exec.Capabilities(nil)
	require.True(t, r.Succeeded())
	caps := r["capabilities"].(map[string]any)
	assert.Equal(t, true, caps["screen_capture"])
	assert.Equal(t, true, caps["ui_automation"])
	assert.Equal(t, true, caps["input_control"])
	assert.Equal(t, false, caps["local_llm"], "no Ollama in the test environment")
}

func TestInitialize_FailureIsFatal(t *testing.T) {
	logger := zap.NewNop()
	controller := input.NewController(&nullSynth{}, logger)
	creds := credentials.NewStore(credentials.NewMemoryBackend(), logger)
	router := provider.NewRouter(config.ProvidersConfig{}, creds, logger)
	async := asyncreq.NewManager(logger)
	defer async.Shutdown()

	exec := executor.New(failingCapturer{}, uitree.NewStubProvider(1, 1, logger), controller,
		creds, router, async, config.LimitsConfig{}, logger)

	assert.Error(t, exec.Initialize())
}
