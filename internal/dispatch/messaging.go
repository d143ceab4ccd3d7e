// internal/dispatch/messaging.go
package dispatch

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskhand/api/schemas"
	"github.com/xkilldash9x/deskhand/internal/framing"
)

// Handler processes one inbound message and produces one response.
type Handler func(msg map[string]any) schemas.Result

// Messaging maps inbound action names to handlers and runs the frame loop:
// read one frame, dispatch, write one frame.
type Messaging struct {
	codec    *framing.Codec
	handlers map[string]Handler
	logger   *zap.Logger
}

// NewMessaging returns a dispatcher over the given codec.
func NewMessaging(codec *framing.Codec, logger *zap.Logger) *Messaging {
	return &Messaging{
		codec:    codec,
		handlers: make(map[string]Handler),
		logger:   logger.Named("dispatch"),
	}
}

// RegisterHandler binds an action name to a handler.
func (m *Messaging) RegisterHandler(action string, handler Handler) {
	m.handlers[action] = handler
	m.logger.Debug("registered handler", zap.String("action", action))
}

// Run drives the message loop until EOF or a protocol error. EOF before a
// frame is a clean shutdown (nil). A malformed frame produces one error
// frame and then terminates the loop with the protocol error.
func (m *Messaging) Run() error {
	m.logger.Info("message loop started")

	for {
		msg, err := m.codec.ReadMessage()
		if errors.Is(err, io.EOF) {
			m.logger.Info("browser disconnected, exiting")
			return nil
		}
		if err != nil {
			m.logger.Error("protocol error", zap.Error(err))
			// Best effort: tell the peer before giving up on the stream.
			if werr := m.codec.WriteMessage(schemas.Fail(err.Error())); werr != nil {
				m.logger.Error("failed to send protocol error frame", zap.Error(werr))
			}
			return err
		}

		response := m.ProcessMessage(msg)
		if err := m.codec.WriteMessage(response); err != nil {
			m.logger.Error("failed to send response", zap.Error(err))
			return err
		}
	}
}

// ProcessMessage routes one decoded message to its handler. Dispatcher and
// handler failures are reported in-band; only the codec can stop the loop.
func (m *Messaging) ProcessMessage(msg map[string]any) schemas.Result {
	actionName, ok := msg["action"].(string)
	if !ok {
		return schemas.Fail("Missing 'action' field")
	}

	handler, ok := m.handlers[actionName]
	if !ok {
		return schemas.Failf("Unknown action: %s", actionName)
	}

	return m.invoke(actionName, handler, msg)
}

// invoke runs a handler with panic containment.
func (m *Messaging) invoke(actionName string, handler Handler, msg map[string]any) (result schemas.Result) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("handler panicked",
				zap.String("action", actionName),
				zap.Any("panic_value", r),
				zap.Stack("stack"))
			result = schemas.Fail(fmt.Sprintf("Handler error: %v", r))
		}
	}()
	return handler(msg)
}
