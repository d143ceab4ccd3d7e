// internal/input/controller.go
package input

import (
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskhand/api/schemas"
)

// Event pacing. Injection is deliberately slow: the desktop needs time to
// deliver each synthetic event before the next one lands.
const (
	moveSettle   = 10 * time.Millisecond
	clickGap     = 50 * time.Millisecond
	chordHold    = 50 * time.Millisecond
	keySettle    = 10 * time.Millisecond
	typeCharGap  = 20 * time.Millisecond
	wheelDelta   = 120
)

// Controller translates validated actions into platform input events.
// All operations block until the last event has been emitted.
type Controller struct {
	synth  Synthesizer
	logger *zap.Logger
	sleep  func(time.Duration)
}

// NewController wires a controller over the given synthesizer.
func NewController(synth Synthesizer, logger *zap.Logger) *Controller {
	return &Controller{
		synth:  synth,
		logger: logger.Named("input"),
		sleep:  time.Sleep,
	}
}

// SetSleeper replaces the delay function. Tests use this to run at full speed.
func (c *Controller) SetSleeper(sleep func(time.Duration)) {
	c.sleep = sleep
}

// Click moves to (x, y) and presses the given button. Double-clicks are two
// full clicks separated by one click gap.
func (c *Controller) Click(x, y int, btn schemas.MouseButton, double bool) {
	c.click(x, y, btn)
	if double {
		c.sleep(clickGap)
		c.click(x, y, btn)
	}
}

func (c *Controller) click(x, y int, btn schemas.MouseButton) {
	c.synth.MouseMove(x, y)
	c.sleep(moveSettle)
	c.synth.MouseButton(btn, true)
	c.sleep(clickGap)
	c.synth.MouseButton(btn, false)
	c.sleep(clickGap)
}

// Scroll turns delta notches on the wheel, optionally moving first. The
// caller passes hasPos=false when no coordinates were supplied.
func (c *Controller) Scroll(delta int, x, y int, hasPos bool) {
	if hasPos {
		c.synth.MouseMove(x, y)
		c.sleep(moveSettle)
	}
	c.synth.Wheel(delta * wheelDelta)
	c.sleep(clickGap)
}

// TypeText emits text as Unicode key events with a fixed per-character
// cadence. Newlines and carriage returns become Enter, tabs become Tab.
func (c *Controller) TypeText(text string) {
	for _, r := range text {
		switch r {
		case '\n', '\r':
			c.pressKey(vkReturn)
		case '\t':
			c.pressKey(vkTab)
		default:
			c.synth.Char(r, true)
			c.synth.Char(r, false)
		}
		c.sleep(typeCharGap)
	}
}

func (c *Controller) pressKey(code uint16) {
	c.synth.Key(code, true)
	c.sleep(keySettle)
	c.synth.Key(code, false)
	c.sleep(keySettle)
}

// PressKeys plays a chord: every key down in order, a hold, then releases
// in reverse order.
func (c *Controller) PressKeys(names []string) {
	codes := make([]uint16, len(names))
	for i, name := range names {
		codes[i] = c.resolveKey(name)
	}

	for _, code := range codes {
		c.synth.Key(code, true)
		c.sleep(keySettle)
	}
	c.sleep(chordHold)
	for i := len(codes) - 1; i >= 0; i-- {
		c.synth.Key(codes[i], false)
		c.sleep(keySettle)
	}
}

// Wait blocks for the given number of milliseconds.
func (c *Controller) Wait(ms int) {
	c.sleep(time.Duration(ms) * time.Millisecond)
}
