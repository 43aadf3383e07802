package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/golang/glog"

	"rgbmorph/pkg/imageio"
	"rgbmorph/pkg/synth"
)

func main() {
	width := flag.Int("width", 1000, "Image width in pixels")
	height := flag.Int("height", 1000, "Image height in pixels")
	noise := flag.String("noise", string(synth.Mixed), "Noise type: random, gradient, patterns, mixed or gray")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
	output := flag.String("output", "input.png", "Output image path")
	flag.Parse()

	n, err := synth.ParseNoise(*noise)
	if err != nil {
		flag.Usage()
		glog.Exitf("Invalid noise: %v", err)
	}

	start := time.Now()
	fmt.Printf("Generating %dx%d image (%s noise, seed %d)...\n", *width, *height, n, *seed)
	img, err := synth.Generate(*width, *height, n, synth.NewRand(*seed))
	if err != nil {
		glog.Exitf("Generation failed: %v", err)
	}

	if err := imageio.Save(*output, img); err != nil {
		glog.Exitf("Failed to save image: %v", err)
	}
	fmt.Printf("Image saved to %s in %d ms\n", *output, time.Since(start).Milliseconds())
}
