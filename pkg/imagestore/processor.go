package imagestore

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	// Every stored image is normalized to a LogoSize square JPEG.
	LogoSize    = 300
	jpegQuality = 80
)

// Normalize decodes an uploaded image, crops it to cover a LogoSize square
// and re-encodes it as JPEG.
func Normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img = imaging.Fill(img, LogoSize, LogoSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
