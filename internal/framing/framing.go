// internal/framing/framing.go
package framing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// MaxFrameSize caps a single frame body at 1 MiB, matching the browser's
// native-messaging limit for host-bound messages.
const MaxFrameSize = 1 << 20

var (
	// ErrEmptyFrame is returned for a declared length of zero.
	ErrEmptyFrame = errors.New("framing: zero-length frame")
	// ErrFrameTooLarge is returned for a declared or serialized length above MaxFrameSize.
	ErrFrameTooLarge = errors.New("framing: frame exceeds 1 MiB limit")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Codec reads and writes length-prefixed JSON frames: a 4-byte little-endian
// unsigned length followed by exactly that many bytes of UTF-8 JSON.
type Codec struct {
	r io.Reader
	w io.Writer
}

// NewCodec returns a codec over the given stream pair. Writes are issued
// directly against w; callers hand in unbuffered handles (os.Stdout) so each
// response frame is delivered immediately.
func NewCodec(r io.Reader, w io.Writer) *Codec {
	return &Codec{r: r, w: w}
}

// ReadMessage reads one frame and decodes it. A clean EOF before any length
// byte returns io.EOF; EOF inside a frame, an out-of-range length, or a JSON
// parse failure is a fatal frame error.
func (c *Codec) ReadMessage() (map[string]any, error) {
	var header [4]byte
	if _, err := io.ReadFull(c.r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("framing: short length prefix: %w", err)
	}

	length := binary.LittleEndian.Uint32(header[:])
	if length == 0 {
		return nil, ErrEmptyFrame
	}
	if length > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(c.r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("framing: short frame body: %w", err)
	}

	var msg map[string]any
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("framing: invalid JSON frame: %w", err)
	}
	return msg, nil
}

// WriteMessage serializes v and emits it as one frame. The serialized size
// is held to the same (0, 1 MiB] window the reader enforces.
func (c *Codec) WriteMessage(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("framing: marshal response: %w", err)
	}
	if len(body) == 0 {
		return ErrEmptyFrame
	}
	if len(body) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(body)))
	if _, err := c.w.Write(header[:]); err != nil {
		return fmt.Errorf("framing: write length prefix: %w", err)
	}
	if _, err := c.w.Write(body); err != nil {
		return fmt.Errorf("framing: write frame body: %w", err)
	}
	return nil
}
