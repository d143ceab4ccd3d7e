// internal/input/synthesizer.go
package input

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskhand/api/schemas"
)

// Synthesizer is the platform layer that emits synthetic input events.
// Real implementations wrap SendInput / CGEvent / XTest; the host core only
// depends on this interface.
type Synthesizer interface {
	// MouseMove positions the cursor at screen coordinates.
	MouseMove(x, y int)
	// MouseButton presses or releases a button at the current position.
	MouseButton(btn schemas.MouseButton, down bool)
	// Wheel scrolls by the given wheel units (one notch = 120 units).
	Wheel(units int)
	// Key presses or releases a virtual key by scancode. Code 0 is a no-op.
	Key(code uint16, down bool)
	// Char emits a Unicode key event for a single rune.
	Char(r rune, down bool)
	// LayoutKey resolves a printable character through the active keyboard
	// layout. Returns 0 when the layout has no key for it.
	LayoutKey(ch rune) uint16
}

// LoggingSynthesizer is the portable fallback: it records nothing on the OS
// and narrates every event to the log. Useful headless and in development.
type LoggingSynthesizer struct {
	logger *zap.Logger
}

// NewLoggingSynthesizer returns a synthesizer that only logs.
func NewLoggingSynthesizer(logger *zap.Logger) *LoggingSynthesizer {
	return &LoggingSynthesizer{logger: logger.Named("input")}
}

func (s *LoggingSynthesizer) MouseMove(x, y int) {
	s.logger.Debug("mouse move", zap.Int("x", x), zap.Int("y", y))
}

func (s *LoggingSynthesizer) MouseButton(btn schemas.MouseButton, down bool) {
	s.logger.Debug("mouse button", zap.Int("button", int(btn)), zap.Bool("down", down))
}

func (s *LoggingSynthesizer) Wheel(units int) {
	s.logger.Debug("mouse wheel", zap.Int("units", units))
}

func (s *LoggingSynthesizer) Key(code uint16, down bool) {
	if code == 0 {
		return
	}
	s.logger.Debug("key", zap.Uint16("code", code), zap.Bool("down", down))
}

func (s *LoggingSynthesizer) Char(r rune, down bool) {
	s.logger.Debug("char", zap.String("rune", string(r)), zap.Bool("down", down))
}

func (s *LoggingSynthesizer) LayoutKey(ch rune) uint16 {
	// ASCII identity mapping stands in for the OS layout lookup.
	if ch < 0x80 {
		return uint16(ch)
	}
	return 0
}
