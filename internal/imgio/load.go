// Package imgio loads photographs into OpenCV matrices and writes
// diagnostic rasters.
package imgio

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	_ "github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageLoadError reports an input that could not be decoded. It is fatal:
// the pipeline produces no output table for the frame.
type ImageLoadError struct {
	Path string
	Err  error
}

func (e *ImageLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load image %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("load image %s: undecodable or empty", e.Path)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// LoadFrame decodes an image file into a BGR Mat. OpenCV's reader handles
// the common formats; anything it rejects (webp, bmp, some tiff flavors)
// goes through the registered pure-Go decoders instead.
// The caller owns the returned Mat.
func LoadFrame(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if !img.Empty() {
		return img, nil
	}
	img.Close()

	f, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), &ImageLoadError{Path: path, Err: err}
	}
	defer f.Close()

	decoded, _, err := image.Decode(f)
	if err != nil {
		return gocv.NewMat(), &ImageLoadError{Path: path, Err: err}
	}

	rgb, err := gocv.ImageToMatRGB(decoded)
	if err != nil {
		return gocv.NewMat(), &ImageLoadError{Path: path, Err: err}
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgb, &bgr, gocv.ColorBGRToRGB) // symmetric channel swap
	return bgr, nil
}

// WriteDebug writes a diagnostic raster into dir, creating it if needed.
// Debug output failures are reported but never fatal to an analysis run.
func WriteDebug(dir, name string, img gocv.Mat) error {
	if img.Empty() {
		return fmt.Errorf("debug image %s: empty matrix", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("debug dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("write %s failed", path)
	}
	return nil
}
