package imageio

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgbmorph/internal/models"
)

// createTestRaster creates a raster with a distinct colour per pixel
func createTestRaster(width, height int) *models.Raster {
	r := models.NewRaster(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r.Set(x, y, models.Pixel{R: uint8(x * 20), G: uint8(y * 30), B: uint8(x*y + 7)})
		}
	}
	return r
}

func TestLosslessFormats(t *testing.T) {
	dir := t.TempDir()
	src := createTestRaster(7, 5)

	for _, name := range []string{"out.png", "out.bmp", "out.tiff"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, src))

			got, err := Load(path)
			require.NoError(t, err)
			assert.True(t, src.Equal(got), "%s did not preserve pixels", name)
		})
	}
}

func TestJPEGKeepsSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "out.jpg")
	require.NoError(t, Save(path, createTestRaster(16, 8)))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, got.Width())
	assert.Equal(t, 8, got.Height())
}

func TestFromImageOffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 3, color.RGBA{R: 9, G: 8, B: 7, A: 255})
	sub := img.SubImage(image.Rect(1, 1, 4, 4))

	r := FromImage(sub)
	assert.Equal(t, 3, r.Width())
	assert.Equal(t, 3, r.Height())
	assert.Equal(t, models.Pixel{R: 9, G: 8, B: 7}, r.At(1, 2))
}

func TestToImageOpaque(t *testing.T) {
	img := ToImage(createTestRaster(2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, uint8(0xff), img.NRGBAAt(x, y).A)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.png")
	_, err := Load(missing)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to open "+missing)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0644))
	_, err = Load(garbage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode "+garbage)
}

func TestSaveAll(t *testing.T) {
	dir := t.TempDir()
	outputs := []Output{
		{Path: filepath.Join(dir, "a.png"), Raster: createTestRaster(3, 3)},
		{Path: filepath.Join(dir, "b.bmp"), Raster: createTestRaster(4, 2)},
	}
	require.NoError(t, SaveAll(context.Background(), outputs))

	for _, out := range outputs {
		got, err := Load(out.Path)
		require.NoError(t, err)
		assert.True(t, out.Raster.Equal(got))
	}
}

func TestSaveAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "never.png")
	err := SaveAll(ctx, []Output{{Path: path, Raster: createTestRaster(1, 1)}})
	require.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "parallel_erosion_case3.png", ResultName("parallel", models.Erosion, 3, "png"))
	assert.Equal(t, "sequential_dilation_case1.jpg", ResultName("sequential", models.Dilation, 1, "jpeg"))

	assert.Equal(t, "jpeg", FormatFromPath("a/B.JPEG"))
	assert.Equal(t, "tiff", FormatFromPath("x.tif"))
	assert.Equal(t, "bmp", FormatFromPath("x.bmp"))
	assert.Equal(t, "png", FormatFromPath("x.unknown"))
	assert.Equal(t, ".tiff", Extension("tif"))
}
