// internal/screen/capture.go
package screen

import (
	"fmt"

	"go.uber.org/zap"
)

// Frame is one captured screen image: raw BGRA pixels, row-major, no padding.
type Frame struct {
	BGRA   []byte
	Width  int
	Height int
}

// Capturer is the platform capture layer. Real implementations wrap GPU
// desktop duplication; the host core only depends on this interface.
type Capturer interface {
	// Initialize acquires the capture subsystem. A failure here is fatal for
	// the host (exit 1).
	Initialize() error
	// Capture grabs the current desktop as a BGRA frame.
	Capture() (Frame, error)
	// Dimensions reports the screen size in pixels.
	Dimensions() (width, height int)
}

// StubCapturer is the portable fallback used when no platform capturer is
// wired: fixed dimensions, uniform dark pixels. It keeps the full pipeline
// (encode, providers, bounds checks) exercisable on any OS.
type StubCapturer struct {
	width  int
	height int
	logger *zap.Logger
}

// NewStubCapturer returns a stub with the configured fallback dimensions.
func NewStubCapturer(width, height int, logger *zap.Logger) *StubCapturer {
	return &StubCapturer{width: width, height: height, logger: logger.Named("screen")}
}

func (s *StubCapturer) Initialize() error {
	if s.width <= 0 || s.height <= 0 {
		return fmt.Errorf("screen: invalid stub dimensions %dx%d", s.width, s.height)
	}
	s.logger.Info("stub capturer active", zap.Int("width", s.width), zap.Int("height", s.height))
	return nil
}

func (s *StubCapturer) Capture() (Frame, error) {
	pixels := make([]byte, s.width*s.height*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i+0] = 0x20 // B
		pixels[i+1] = 0x20 // G
		pixels[i+2] = 0x20 // R
		pixels[i+3] = 0xFF // A
	}
	return Frame{BGRA: pixels, Width: s.width, Height: s.height}, nil
}

func (s *StubCapturer) Dimensions() (int, int) {
	return s.width, s.height
}
