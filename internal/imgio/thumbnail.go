package imgio

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// ThumbnailPNG downsizes a Mat to the given width (preserving aspect) and
// encodes it as PNG, for embedding previews in the HTML report.
func ThumbnailPNG(img gocv.Mat, width int) ([]byte, error) {
	if img.Empty() {
		return nil, fmt.Errorf("thumbnail: empty matrix")
	}
	goImg, err := img.ToImage()
	if err != nil {
		return nil, fmt.Errorf("thumbnail: %w", err)
	}
	thumb := imaging.Resize(goImg, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("thumbnail encode: %w", err)
	}
	return buf.Bytes(), nil
}
