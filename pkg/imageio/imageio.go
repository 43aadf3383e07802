// Package imageio converts between encoded image files and models.Raster.
// PNG, JPEG, BMP and TIFF can be read and written; WebP can be read.
package imageio

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"rgbmorph/internal/models"
)

// JPEGQuality is the quality used when writing JPEG results
const JPEGQuality = 90

// FromImage copies img into a new raster. Alpha is discarded after
// un-premultiplying, so a fully transparent pixel becomes black.
func FromImage(img image.Image) *models.Raster {
	bounds := img.Bounds()
	r := models.NewRaster(bounds.Dx(), bounds.Dy())

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			r.Set(x, y, models.Pixel{R: c.R, G: c.G, B: c.B})
		}
	}

	return r
}

// ToImage copies r into an opaque NRGBA image
func ToImage(r *models.Raster) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width(), r.Height()))
	for y := 0; y < r.Height(); y++ {
		for x := 0; x < r.Width(); x++ {
			p := r.At(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i] = p.R
			img.Pix[i+1] = p.G
			img.Pix[i+2] = p.B
			img.Pix[i+3] = 0xff
		}
	}
	return img
}

// Load decodes the image file at path
func Load(path string) (*models.Raster, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return FromImage(img), nil
}

// FormatFromPath derives the encoding from the file extension.
// Unknown extensions map to png.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	default:
		return "png"
	}
}

// Extension returns the file extension, including the dot, for format
func Extension(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return ".jpg"
	case "bmp":
		return ".bmp"
	case "tiff", "tif":
		return ".tiff"
	default:
		return ".png"
	}
}

// ResultName builds the file name of a result image, e.g.
// "parallel_erosion_case3.png"
func ResultName(mode string, op models.Operation, caseID int, format string) string {
	return fmt.Sprintf("%s_%s_case%d%s", mode, op, caseID, Extension(format))
}

// Save encodes r into path using the format implied by its extension.
// Parent directories are created as needed.
func Save(path string, r *models.Raster) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	img := ToImage(r)
	switch FormatFromPath(path) {
	case "jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: JPEGQuality})
	case "bmp":
		err = bmp.Encode(file, img)
	case "tiff":
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = png.Encode(file, img)
	}
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to encode image %s: %w", path, err)
	}

	return file.Close()
}

// Output pairs a destination path with the raster to write there
type Output struct {
	Path   string
	Raster *models.Raster
}

// SaveAll encodes every output concurrently and returns the first error.
// Outputs not yet started are skipped once ctx is cancelled or a write fails.
func SaveAll(ctx context.Context, outputs []Output) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, out := range outputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return Save(out.Path, out.Raster)
		})
	}
	return g.Wait()
}
