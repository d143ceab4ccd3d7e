// internal/executor/executor.go
package executor

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/deskhand/api/schemas"
	"github.com/xkilldash9x/deskhand/internal/asyncreq"
	"github.com/xkilldash9x/deskhand/internal/config"
	"github.com/xkilldash9x/deskhand/internal/credentials"
	"github.com/xkilldash9x/deskhand/internal/input"
	"github.com/xkilldash9x/deskhand/internal/provider"
	"github.com/xkilldash9x/deskhand/internal/screen"
	"github.com/xkilldash9x/deskhand/internal/uitree"
)

// Executor orchestrates the host's subsystems: capture, accessibility tree,
// input injection, credentials, the provider router, and the async manager.
// Every public method returns a wire Result; Go errors stay internal.
type Executor struct {
	capturer screen.Capturer
	tree     uitree.Provider
	input    *input.Controller
	creds    *credentials.Store
	router   *provider.Router
	async    *asyncreq.Manager
	limiter  *rate.Limiter
	limits   config.LimitsConfig
	logger   *zap.Logger

	initialized bool
}

// New wires an executor. Initialize must succeed before any handler runs.
func New(
	capturer screen.Capturer,
	tree uitree.Provider,
	inputCtl *input.Controller,
	creds *credentials.Store,
	router *provider.Router,
	async *asyncreq.Manager,
	limits config.LimitsConfig,
	logger *zap.Logger,
) *Executor {
	perSecond := rate.Limit(limits.RequestsPerMinute / 60)
	if limits.RequestsPerMinute <= 0 {
		perSecond = rate.Inf
	}
	return &Executor{
		capturer: capturer,
		tree:     tree,
		input:    inputCtl,
		creds:    creds,
		router:   router,
		async:    async,
		limiter:  rate.NewLimiter(perSecond, int(max(limits.RequestsPerMinute, 1))),
		limits:   limits,
		logger:   logger.Named("executor"),
	}
}

// Initialize acquires the capture and UI automation subsystems. A failure
// here is fatal for the host.
func (e *Executor) Initialize() error {
	if e.initialized {
		return nil
	}
	if err := e.capturer.Initialize(); err != nil {
		return fmt.Errorf("executor: screen capture init: %w", err)
	}
	if err := e.tree.Initialize(); err != nil {
		return fmt.Errorf("executor: ui automation init: %w", err)
	}
	e.initialized = true
	e.logger.Info("executor initialized")
	return nil
}

// Shutdown stops the async worker. In-flight work runs to completion.
func (e *Executor) Shutdown() {
	e.async.Shutdown()
}

// Capabilities reports the subsystem snapshot plus the live Ollama probe.
func (e *Executor) Capabilities(map[string]any) schemas.Result {
	detail := e.router.CheckLocalLLM()
	available, _ := detail["available"].(bool)
	return schemas.Result{
		"success": true,
		"capabilities": map[string]any{
			"screen_capture": e.initialized,
			"ui_automation":  e.initialized,
			"input_control":  true,
			"local_llm":      available,
		},
		"local_llm_detail": detail,
	}
}

// CaptureScreen grabs the desktop and returns it as base64 PNG plus
// dimensions.
func (e *Executor) CaptureScreen(map[string]any) schemas.Result {
	if !e.initialized {
		return schemas.Fail("Action executor not initialized")
	}

	frame, err := e.capturer.Capture()
	if err != nil {
		e.logger.Error("screen capture failed", zap.Error(err))
		return schemas.Fail("Failed to capture screen")
	}
	encoded, err := screen.EncodePNG(frame)
	if err != nil {
		e.logger.Error("png encode failed", zap.Error(err))
		return schemas.Fail("Failed to encode screenshot")
	}

	return schemas.Result{
		"success":    true,
		"screenshot": encoded,
		"width":      frame.Width,
		"height":     frame.Height,
	}
}

// GetUITree enumerates the bounded accessibility tree.
func (e *Executor) GetUITree(map[string]any) schemas.Result {
	if !e.initialized {
		return schemas.Fail("Action executor not initialized")
	}

	root, err := e.tree.Root()
	if err != nil {
		e.logger.Error("ui tree enumeration failed", zap.Error(err))
		return schemas.Failf("UI tree enumeration failed: %v", err)
	}
	return schemas.Result{"success": true, "uiTree": uitree.Build(root)}
}

// CheckLocalLLM is the direct probe handler.
func (e *Executor) CheckLocalLLM(map[string]any) schemas.Result {
	return e.router.CheckLocalLLM()
}

// GetProviderStatus reports key presence and local availability.
func (e *Executor) GetProviderStatus(map[string]any) schemas.Result {
	return e.router.ProviderStatus()
}
