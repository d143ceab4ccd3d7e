// cmd/host.go
package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskhand/api/schemas"
	"github.com/xkilldash9x/deskhand/internal/asyncreq"
	"github.com/xkilldash9x/deskhand/internal/credentials"
	"github.com/xkilldash9x/deskhand/internal/dispatch"
	"github.com/xkilldash9x/deskhand/internal/executor"
	"github.com/xkilldash9x/deskhand/internal/framing"
	"github.com/xkilldash9x/deskhand/internal/input"
	"github.com/xkilldash9x/deskhand/internal/observability"
	"github.com/xkilldash9x/deskhand/internal/provider"
	"github.com/xkilldash9x/deskhand/internal/screen"
	"github.com/xkilldash9x/deskhand/internal/uitree"
)

// protocolVersion is the wire version reported by ping. Pinned by the
// browser-side contract, independent of the build version.
const protocolVersion = "1.0.0"

// runHost wires every subsystem and drives the frame loop until EOF.
// Subsystem initialization failures propagate (exit 1); protocol errors on
// an established stream are logged and swallowed (exit 0).
func runHost() error {
	logger := observability.GetLogger()

	backend, err := newSecretBackend()
	if err != nil {
		return fmt.Errorf("credential backend: %w", err)
	}
	creds := credentials.NewStore(backend, logger)
	router := provider.NewRouter(cfg.Providers, creds, logger)
	async := asyncreq.NewManager(logger)

	capturer := screen.NewStubCapturer(cfg.Screen.Width, cfg.Screen.Height, logger)
	tree := uitree.NewStubProvider(cfg.Screen.Width, cfg.Screen.Height, logger)
	controller := input.NewController(input.NewLoggingSynthesizer(logger), logger)

	exec := executor.New(capturer, tree, controller, creds, router, async, cfg.Limits, logger)
	if err := exec.Initialize(); err != nil {
		return err
	}
	defer exec.Shutdown()

	codec := framing.NewCodec(os.Stdin, os.Stdout)
	messaging := dispatch.NewMessaging(codec, logger)
	registerHandlers(messaging, exec)

	if err := messaging.Run(); err != nil {
		logger.Error("message loop terminated on protocol error", zap.Error(err))
	}
	return nil
}

func newSecretBackend() (credentials.Backend, error) {
	if cfg.Credentials.Backend == "memory" {
		return credentials.NewMemoryBackend(), nil
	}
	return credentials.NewFileBackend(cfg.Credentials.Path)
}

// registerHandlers binds every wire action to its executor method.
func registerHandlers(m *dispatch.Messaging, exec *executor.Executor) {
	m.RegisterHandler("ping", func(map[string]any) schemas.Result {
		return schemas.Result{"success": true, "message": "pong", "version": protocolVersion}
	})
	m.RegisterHandler("get_capabilities", exec.Capabilities)
	m.RegisterHandler("capture_screen", exec.CaptureScreen)
	m.RegisterHandler("inspect_ui", exec.GetUITree)
	m.RegisterHandler("execute_action", exec.ExecuteAction)
	m.RegisterHandler("execute_actions", exec.ExecuteActions)
	m.RegisterHandler("check_local_llm", exec.CheckLocalLLM)
	m.RegisterHandler("get_actions", exec.RequestActions)
	m.RegisterHandler("poll", exec.PollRequest)
	m.RegisterHandler("cancel", exec.CancelRequest)
	m.RegisterHandler("store_api_key", exec.StoreApiKey)
	m.RegisterHandler("delete_api_key", exec.DeleteApiKey)
	m.RegisterHandler("get_provider_status", exec.GetProviderStatus)
}
