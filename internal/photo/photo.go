package photo

import (
	"bytes"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// MIMEType is the content type of every normalized photo
const MIMEType = "image/jpeg"

// Photo is a normalized JPEG capture
type Photo struct {
	Data   []byte
	Width  int
	Height int
}

// Normalize decodes a captured image, applies EXIF orientation, shrinks it
// so neither edge exceeds maxEdge (0 disables resizing) and re-encodes it as JPEG.
func Normalize(raw []byte, maxEdge int) (*Photo, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty photo")
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}

	b := img.Bounds()
	if maxEdge > 0 && (b.Dx() > maxEdge || b.Dy() > maxEdge) {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode photo: %w", err)
	}

	b = img.Bounds()
	return &Photo{
		Data:   buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}
