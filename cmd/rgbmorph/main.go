package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/golang/glog"

	"rgbmorph/internal/models"
	"rgbmorph/pkg/config"
	"rgbmorph/pkg/imageio"
	"rgbmorph/pkg/morphology"
	"rgbmorph/pkg/report"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "Optional YAML configuration file")
	writeConfig := flag.String("write-config", "", "Write the default configuration to this path and exit")
	input := flag.String("input", "", "Image to process (png, jpeg, bmp, tiff, webp)")
	operation := flag.String("operation", "", "Morphology operation: erosion or dilation")
	caseID := flag.Int("case", 0, "Structuring element case (1-6)")
	workers := flag.Int("workers", 0, "Parallel workers (default: number of CPUs)")
	maxWorkers := flag.Int("max-workers", 0, "Refuse to start more than this many workers (0 = no limit)")
	mode := flag.String("mode", "", "Run mode: sequential, parallel or both")
	runs := flag.Int("runs", 0, "Repeat each executor this many times and average the timings")
	outputDir := flag.String("output-dir", "", "Directory for result images")
	format := flag.String("format", "", "Result image format: png, jpeg, bmp or tiff")
	noSave := flag.Bool("no-save", false, "Do not write result images")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			glog.Exitf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *writeConfig)
		return
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			glog.Exitf("Failed to load config: %v", err)
		}
	}

	// Flags given explicitly override the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input.Path = *input
		case "operation":
			cfg.Processing.Operation = *operation
		case "case":
			cfg.Processing.Case = *caseID
		case "workers":
			cfg.Processing.Workers = *workers
		case "max-workers":
			cfg.Processing.MaxWorkers = *maxWorkers
		case "mode":
			cfg.Processing.Mode = *mode
		case "runs":
			cfg.Processing.Runs = *runs
		case "output-dir":
			cfg.Output.Dir = *outputDir
		case "format":
			cfg.Output.Format = *format
		case "no-save":
			cfg.Output.Save = !*noSave
		}
	})

	if err := cfg.Validate(); err != nil {
		flag.Usage()
		glog.Exitf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		glog.Exitf("Processing failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	op, err := cfg.Operation()
	if err != nil {
		return err
	}

	src, err := imageio.Load(cfg.Input.Path)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}

	warnUnsupportedCase(os.Stderr, cfg.Processing.Case)
	element := morphology.Build(cfg.Processing.Case)

	fmt.Println("================================")
	fmt.Println("RGB MORPHOLOGY: SEQUENTIAL VS PARALLEL")
	fmt.Println("================================")
	fmt.Printf("Image:     %s (%dx%d)\n", cfg.Input.Path, src.Width(), src.Height())
	fmt.Printf("Operation: %s\n", op)
	fmt.Printf("Mode:      %s\n", cfg.Mode())
	fmt.Printf("Element:   %s\n", element)

	mode := cfg.Mode()
	var (
		seqTimes, parTimes   []time.Duration
		seqResult, parResult *models.Raster
		outputs              []imageio.Output
		workers              int
	)

	if mode == config.ModeSequential || mode == config.ModeBoth {
		seqResult, seqTimes, err = repeat(ctx, morphology.NewSequential(), src, op, element, cfg.Processing.Runs)
		if err != nil {
			return fmt.Errorf("sequential processing failed: %w", err)
		}
		fmt.Printf("Sequential processing: %d ms\n", seqTimes[len(seqTimes)-1].Milliseconds())
		outputs = append(outputs, resultOutput(cfg, config.ModeSequential, op, element, seqResult))
	}

	if mode == config.ModeParallel || mode == config.ModeBoth {
		par, err := morphology.NewParallel(cfg.Processing.Workers, morphology.WithMaxWorkers(cfg.Processing.MaxWorkers))
		if err != nil {
			return err
		}
		workers = par.Workers()
		parResult, parTimes, err = repeat(ctx, par, src, op, element, cfg.Processing.Runs)
		if err != nil {
			return fmt.Errorf("parallel processing failed: %w", err)
		}
		fmt.Printf("Parallel processing (%d workers): %d ms\n", workers, parTimes[len(parTimes)-1].Milliseconds())
		outputs = append(outputs, resultOutput(cfg, config.ModeParallel, op, element, parResult))
	}

	if cfg.Output.Save {
		if err := imageio.SaveAll(ctx, outputs); err != nil {
			return fmt.Errorf("failed to save results: %w", err)
		}
		for _, out := range outputs {
			fmt.Printf("Result saved to: %s\n", out.Path)
		}
	}

	if mode != config.ModeBoth {
		return nil
	}

	fmt.Println()
	if err := report.NewComparison(workers, seqTimes, parTimes).Write(os.Stdout); err != nil {
		return err
	}

	if cfg.Verify.Compare {
		diff, err := report.Diff(seqResult, parResult)
		if err != nil {
			return err
		}
		if err := report.WriteDiff(os.Stdout, diff); err != nil {
			return err
		}
		if !diff.Identical() {
			return fmt.Errorf("parallel result differs from sequential result in %d pixels", diff.Mismatched)
		}
	}

	return nil
}

// warnUnsupportedCase tells the user that caseID is replaced by the default
// shape. It reports whether a warning was written.
func warnUnsupportedCase(w io.Writer, caseID int) bool {
	if morphology.IsSupportedCase(caseID) {
		return false
	}
	fallback := morphology.Build(morphology.DefaultCase)
	fmt.Fprintf(w, "Warning: structuring element case %d is not supported (valid: %v), using case %d (%s)\n",
		caseID, morphology.Cases(), fallback.Case(), fallback.Name())
	return true
}

// repeat runs p the given number of times and returns the last raster with every timing
func repeat(ctx context.Context, p morphology.Processor, src models.Source, op models.Operation,
	element *morphology.StructuringElement, runs int) (*models.Raster, []time.Duration, error) {
	var (
		last  *models.Raster
		times []time.Duration
	)
	for i := 0; i < runs; i++ {
		res, err := p.Process(ctx, src, op, element)
		if err != nil {
			return nil, nil, err
		}
		glog.V(1).Infof("run %d/%d: %v", i+1, runs, res.Elapsed)
		last = res.Raster
		times = append(times, res.Elapsed)
	}
	return last, times, nil
}

func resultOutput(cfg *config.Config, mode string, op models.Operation, element *morphology.StructuringElement, r *models.Raster) imageio.Output {
	name := imageio.ResultName(mode, op, element.Case(), cfg.Output.Format)
	return imageio.Output{Path: filepath.Join(cfg.Output.Dir, name), Raster: r}
}
