package imgio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestLoadFrameMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFrame(filepath.Join(t.TempDir(), "missing.jpg"))
	var loadErr *ImageLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Path, "missing.jpg")
}

func TestLoadFrameUndecodable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := LoadFrame(path)
	var loadErr *ImageLoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestLoadFramePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solid.png")

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	frame, err := LoadFrame(path)
	require.NoError(t, err)
	defer frame.Close()

	require.Equal(t, 8, frame.Cols())
	require.Equal(t, 8, frame.Rows())

	// BGR storage: blue channel first.
	mean := frame.Mean()
	assert.InDelta(t, 50, mean.Val1, 1)
	assert.InDelta(t, 100, mean.Val2, 1)
	assert.InDelta(t, 200, mean.Val3, 1)
}

func TestWriteDebugCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "debug", "run1")

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 10, 10, gocv.MatTypeCV8UC3)
	defer img.Close()

	require.NoError(t, WriteDebug(dir, "frame.png", img))
	assert.FileExists(t, filepath.Join(dir, "frame.png"))
}

func TestWriteDebugRejectsEmptyMat(t *testing.T) {
	t.Parallel()

	empty := gocv.NewMat()
	defer empty.Close()
	assert.Error(t, WriteDebug(t.TempDir(), "empty.png", empty))
}

func TestThumbnailPNG(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(30, 60, 90, 0), 100, 200, gocv.MatTypeCV8UC3)
	defer img.Close()

	data, err := ThumbnailPNG(img, 50)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 50, decoded.Bounds().Dx())
}
