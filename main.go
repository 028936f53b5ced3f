// Command beangauge measures particles photographed on a printed reference
// sheet and writes a per-particle table plus optional reports.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"beangauge/internal/config"
	"beangauge/internal/pipeline"
	"beangauge/internal/report"
	"beangauge/internal/segment"
	"beangauge/internal/sheet"
	"beangauge/internal/store"
	"beangauge/internal/version"
)

const appName = "beangauge"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	settings := config.Defaults()
	if path := configPath(os.Args[1:]); path != "" {
		var err error
		settings, err = config.Load(path)
		if err != nil {
			log.Fatal(err)
		}
	}

	flag.String("config", "", "Path to TOML settings file")
	sheetName := flag.String("sheet", settings.Sheet, "Reference sheet: letter or a4")
	scale := flag.Float64("scale", settings.Scale, "Rectified resolution in pixels per millimeter")
	ruler := flag.Float64("ruler", settings.RulerMM, "Measured length of the printed ruler in millimeters")
	mode := flag.String("mode", settings.Mode, "Segmentation mode: coarse (beans) or fine (grind)")
	minArea := flag.Int("min-area", settings.MinArea, "Minimum particle area in pixels (-1 for the mode default)")
	threshold := flag.Float64("threshold", settings.Threshold, "Foreground threshold (-1 for the mode default)")
	workers := flag.Int("workers", settings.Workers, "Concurrent images in batch mode")
	out := flag.String("out", settings.Out, "Output path: CSV file for one image, directory for a batch")
	debugDir := flag.String("debug", settings.Debug, "Directory for diagnostic images (empty disables)")
	history := flag.String("history", settings.History, "Path to sqlite history database (empty disables)")
	htmlOut := flag.Bool("html", settings.HTML, "Write an interactive HTML report next to the CSV")
	plots := flag.Bool("plots", settings.Plots, "Write PNG charts next to the CSV")
	area := flag.Bool("area", false, "Include the area_px column in the table")
	flag.Parse()

	images := flag.Args()
	if len(images) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] image [image ...]\n", appName)
		flag.PrintDefaults()
		os.Exit(1)
	}

	opts, err := buildOptions(*sheetName, *scale, *ruler, *mode, *minArea, *threshold, *debugDir, len(images) > 1)
	if err != nil {
		log.Fatal(err)
	}

	var hist *store.Store
	if *history != "" {
		hist, err = store.Open(*history)
		if err != nil {
			log.Fatal(err)
		}
		defer hist.Close()
	}

	log.Printf("%s v%s: %d image(s), sheet %s, mode %s", appName, version.String(), len(images), *sheetName, opts.Segmentation.Mode)

	emit := emitter{
		out:         *out,
		batch:       len(images) > 1,
		includeArea: *area,
		html:        *htmlOut,
		plots:       *plots,
		history:     hist,
		opts:        opts,
		debugRoot:   *debugDir,
	}

	if emit.batch {
		if *out != "" {
			if err := os.MkdirAll(*out, 0o755); err != nil {
				log.Fatal(err)
			}
		}
		if !runBatch(images, opts, *workers, emit) {
			os.Exit(1)
		}
		return
	}

	res, err := pipeline.Run(images[0], opts)
	if err != nil {
		log.Fatal(err)
	}
	if err := emit.write(res); err != nil {
		log.Fatal(err)
	}
}

// configPath finds the -config flag ahead of the full parse so the file can
// seed the remaining flag defaults.
func configPath(args []string) string {
	for i, a := range args {
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "-config="):
			return strings.TrimPrefix(a, "-config=")
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

func buildOptions(sheetName string, scale, ruler float64, mode string, minArea int, threshold float64, debugDir string, batch bool) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()

	g, err := sheet.ByName(sheetName)
	if err != nil {
		return opts, err
	}
	opts.Geometry = g
	opts.Scale = scale
	opts.RulerMM = ruler
	opts.DebugDir = debugDir

	m, err := segment.ParseMode(mode)
	if err != nil {
		return opts, err
	}
	opts.Segmentation = segment.DefaultOptions(m)
	if minArea >= 0 {
		opts.Segmentation.MinAreaPx = minArea
	}
	if threshold >= 0 {
		opts.Segmentation.Threshold = float32(threshold)
	}

	if batch && debugDir != "" {
		// Per-image subdirectories are assigned in the batch loop.
		opts.DebugDir = ""
	}
	return opts, nil
}

// runBatch analyzes images concurrently with a bounded pool. Every image is
// attempted; the return value reports whether all succeeded.
func runBatch(images []string, opts pipeline.Options, workers int, emit emitter) bool {
	if workers < 1 {
		workers = 1
	}

	var (
		wg   sync.WaitGroup
		sem  = make(chan struct{}, workers)
		mu   sync.Mutex
		fail bool
	)
	for _, path := range images {
		wg.Add(1)
		sem <- struct{}{}
		go func(path string) {
			defer wg.Done()
			defer func() { <-sem }()

			imgOpts := opts
			if emit.debugRoot != "" {
				imgOpts.DebugDir = filepath.Join(emit.debugRoot, baseName(path))
			}

			res, err := pipeline.Run(path, imgOpts)
			if err == nil {
				// Serialize output so history inserts and log lines stay
				// readable.
				mu.Lock()
				err = emit.write(res)
				mu.Unlock()
			}
			if err != nil {
				log.Printf("%s: %v", path, err)
				mu.Lock()
				fail = true
				mu.Unlock()
			}
		}(path)
	}
	wg.Wait()
	return !fail
}

// emitter writes the outputs for one finished run.
type emitter struct {
	out         string
	batch       bool
	includeArea bool
	html        bool
	plots       bool
	history     *store.Store
	opts        pipeline.Options
	debugRoot   string
}

func (e emitter) write(res *pipeline.Result) error {
	sum := report.Summarize(res.Measurements)
	log.Printf("%s: %s", res.Source, sum)

	csvPath, stem := e.paths(res.Source)
	if csvPath == "" {
		if err := report.WriteTable(os.Stdout, res.Measurements, e.includeArea); err != nil {
			return err
		}
	} else if err := report.WriteTableFile(csvPath, res.Measurements, e.includeArea); err != nil {
		return err
	}

	if e.html {
		if err := report.SaveHTML(res.Measurements, sum, stem+"_report.html"); err != nil {
			return err
		}
	}
	if e.plots && len(res.Measurements) > 0 {
		if err := report.SaveSizeHistogram(res.Measurements, stem+"_sizes.png"); err != nil {
			return err
		}
		if err := report.SaveSizeScatter(res.Measurements, stem+"_axes.png"); err != nil {
			return err
		}
		if err := report.SaveCurvePlot(res.Calibration.Curves, stem+"_curves.png"); err != nil {
			return err
		}
	}

	if e.history != nil {
		runID, err := e.history.RecordRun(res.Source, e.opts.Geometry.Version,
			e.opts.Segmentation.Mode.String(), e.opts.RulerMM, e.opts.Scale,
			sum, res.Measurements)
		if err != nil {
			return fmt.Errorf("record history: %w", err)
		}
		log.Printf("%s: recorded run %s", res.Source, runID)
	}
	return nil
}

// paths resolves the CSV path and the stem used for sibling artifacts. An
// empty CSV path means stdout; sibling artifacts then land next to the
// source image.
func (e emitter) paths(source string) (csvPath, stem string) {
	switch {
	case e.batch:
		stem = filepath.Join(e.out, baseName(source))
		return stem + ".csv", stem
	case e.out != "":
		return e.out, strings.TrimSuffix(e.out, filepath.Ext(e.out))
	default:
		return "", strings.TrimSuffix(source, filepath.Ext(source))
	}
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
