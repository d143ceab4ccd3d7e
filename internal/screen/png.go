// internal/screen/png.go
package screen

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
)

// EncodePNG converts a BGRA frame into a base64-encoded PNG, the form the
// wire protocol and the provider APIs both expect.
func EncodePNG(f Frame) (string, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return "", fmt.Errorf("screen: invalid frame dimensions %dx%d", f.Width, f.Height)
	}
	if want := f.Width * f.Height * 4; len(f.BGRA) != want {
		return "", fmt.Errorf("screen: pixel buffer is %d bytes, want %d", len(f.BGRA), want)
	}

	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i := 0; i < len(f.BGRA); i += 4 {
		// BGRA to RGBA swizzle.
		img.Pix[i+0] = f.BGRA[i+2]
		img.Pix[i+1] = f.BGRA[i+1]
		img.Pix[i+2] = f.BGRA[i+0]
		img.Pix[i+3] = f.BGRA[i+3]
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("screen: png encode: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
