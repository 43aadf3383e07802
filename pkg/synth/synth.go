// Package synth generates synthetic RGB test images.
// Randomness always comes from the caller's generator so output is reproducible.
package synth

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"rgbmorph/internal/models"
)

// Noise selects the pixel pattern
type Noise string

const (
	// Random draws every channel uniformly from [0,255]
	Random Noise = "random"
	// Gradient is a smooth colour ramp with no randomness
	Gradient Noise = "gradient"
	// Patterns alternates bright and dark 10px stripes per channel with jitter
	Patterns Noise = "patterns"
	// Mixed is Gradient plus ±50 uniform jitter per channel
	Mixed Noise = "mixed"
	// Gray draws one random level per pixel shared by all channels
	Gray Noise = "gray"
)

// Noises returns every supported noise type
func Noises() []Noise {
	return []Noise{Random, Gradient, Patterns, Mixed, Gray}
}

// ParseNoise converts a name into a Noise
func ParseNoise(s string) (Noise, error) {
	n := Noise(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Noises() {
		if n == known {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown noise %q", s)
}

// NewRand returns a PCG generator seeded with seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate builds a width x height raster of the given noise
func Generate(width, height int, noise Noise, rng *rand.Rand) (*models.Raster, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("image size must be positive, got %dx%d", width, height)
	}
	if _, err := ParseNoise(string(noise)); err != nil {
		return nil, err
	}

	r := models.NewRaster(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r.Set(x, y, pixel(x, y, width, height, noise, rng))
		}
	}
	return r, nil
}

func pixel(x, y, width, height int, noise Noise, rng *rand.Rand) models.Pixel {
	switch noise {
	case Gradient:
		return gradient(x, y, width, height)

	case Patterns:
		return models.Pixel{
			R: stripe((x/10)%2 == 0, rng),
			G: stripe((y/10)%2 == 0, rng),
			B: stripe(((x+y)/10)%2 == 0, rng),
		}

	case Mixed:
		base := gradient(x, y, width, height)
		return models.Pixel{
			R: jitter(base.R, rng),
			G: jitter(base.G, rng),
			B: jitter(base.B, rng),
		}

	case Gray:
		v := uint8(rng.IntN(256))
		return models.Pixel{R: v, G: v, B: v}

	default:
		return models.Pixel{
			R: uint8(rng.IntN(256)),
			G: uint8(rng.IntN(256)),
			B: uint8(rng.IntN(256)),
		}
	}
}

func gradient(x, y, width, height int) models.Pixel {
	return models.Pixel{
		R: uint8(x * 255 / width),
		G: uint8(y * 255 / height),
		B: uint8((x + y) * 255 / (width + height)),
	}
}

// stripe returns a bright value in [200,255] when on, a dark one in [0,99] otherwise
func stripe(on bool, rng *rand.Rand) uint8 {
	if on {
		return uint8(200 + rng.IntN(56))
	}
	return uint8(rng.IntN(100))
}

func jitter(v uint8, rng *rand.Rand) uint8 {
	return uint8(min(255, max(0, int(v)+rng.IntN(100)-50)))
}
