// Package pipeline runs the full analysis for one frame: fiducial
// location, rectification, photometric calibration, segmentation and
// measurement. Every fatal condition stops the run at the stage boundary
// that produced it; no partial rectification or calibration is used
// downstream.
package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"beangauge/internal/imgio"
	"beangauge/internal/markers"
	"beangauge/internal/measure"
	"beangauge/internal/photometric"
	"beangauge/internal/rectify"
	"beangauge/internal/segment"
	"beangauge/internal/sheet"
	"beangauge/pkg/geometry"
)

// Options configures one analysis run. Constructed once and threaded
// through every stage.
type Options struct {
	Geometry     sheet.Geometry
	Scale        float64 // canonical scale, pixels per millimeter
	RulerMM      float64 // physically measured length of the printed ruler
	Markers      markers.Options
	Segmentation segment.Options

	// DebugDir enables diagnostic rasters when non-empty. Debug output is
	// best-effort and never fails a run; on marker-detection failure a
	// binarized view is still written to aid troubleshooting.
	DebugDir string
}

// DefaultOptions returns the standard coarse-mode configuration for the
// Letter sheet.
func DefaultOptions() Options {
	g := sheet.Letter()
	return Options{
		Geometry:     g,
		Scale:        6,
		RulerMM:      g.RulerLengthMM,
		Markers:      markers.DefaultOptions(),
		Segmentation: segment.DefaultOptions(segment.ModeCoarse),
	}
}

// Result is the output of one successful run. A run with zero particles is
// a valid, non-error result.
type Result struct {
	Source          string
	Measurements    []measure.Measurement
	Particles       []segment.Particle
	Calibration     *photometric.Calibration
	Homography      geometry.Homography
	RulerCorrection float64
}

// Run loads the image at path and analyzes it.
func Run(path string, opts Options) (*Result, error) {
	frame, err := imgio.LoadFrame(path)
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	res, err := Analyze(frame, opts)
	if err != nil {
		return nil, err
	}
	res.Source = path
	return res, nil
}

// Analyze runs the pipeline over an already-decoded BGR frame. The frame
// is never mutated.
func Analyze(frame gocv.Mat, opts Options) (*Result, error) {
	g := opts.Geometry
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("sheet geometry: %w", err)
	}
	if opts.Scale <= 0 {
		return nil, fmt.Errorf("non-positive canonical scale %v", opts.Scale)
	}

	rulerCorrection := 1.0
	if opts.RulerMM > 0 {
		rulerCorrection = opts.RulerMM / g.RulerLengthMM
	}

	required := make([]int, len(sheet.RequiredMarkerIDs))
	for i, id := range sheet.RequiredMarkerIDs {
		required[i] = int(id)
	}

	if opts.DebugDir != "" {
		writeThumbnail(opts.DebugDir, frame)
	}

	detections := markers.Detect(frame, opts.Markers)
	found, err := markers.SelectRequired(detections, required)
	if err != nil {
		if opts.DebugDir != "" {
			bin := markers.DebugBinarization(frame)
			writeDebug(opts.DebugDir, "markers_binarized.png", bin)
			bin.Close()
		}
		return nil, fmt.Errorf("locate markers: %w", err)
	}
	if opts.DebugDir != "" {
		vis := markers.Annotate(frame, detections)
		writeDebug(opts.DebugDir, "markers.png", vis)
		vis.Close()
	}

	rectified, hom, err := rectify.Rectify(frame, found, g, opts.Scale)
	if err != nil {
		return nil, fmt.Errorf("rectify: %w", err)
	}
	defer rectified.Close()
	if opts.DebugDir != "" {
		writeDebug(opts.DebugDir, "warped.png", rectified)
	}

	cal, err := photometric.Calibrate(rectified, g, opts.Scale)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}
	if opts.DebugDir != "" {
		vis := photometric.Annotate(rectified, g, opts.Scale)
		writeDebug(opts.DebugDir, "warped_annotated.png", vis)
		vis.Close()
	}

	seg, err := segment.Segment(rectified, g, opts.Scale, opts.Segmentation)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	defer seg.Close()
	if opts.DebugDir != "" {
		writeDebug(opts.DebugDir, "stage_highpass.png", seg.HighPass)
		writeDebug(opts.DebugDir, "stage_mask.png", seg.Mask)
		vis := segment.Annotate(seg.Stage, seg.Particles)
		writeDebug(opts.DebugDir, "stage_analyzed.png", vis)
		vis.Close()
	}

	measurements := measure.All(seg.Particles, cal, opts.Scale, rulerCorrection)
	log.Printf("pipeline: %d particles measured (ruler correction %.4f)", len(measurements), rulerCorrection)

	return &Result{
		Measurements:    measurements,
		Particles:       seg.Particles,
		Calibration:     cal,
		Homography:      hom,
		RulerCorrection: rulerCorrection,
	}, nil
}

func writeDebug(dir, name string, img gocv.Mat) {
	if err := imgio.WriteDebug(dir, name, img); err != nil {
		log.Printf("pipeline: %v", err)
	}
}

// writeThumbnail saves a small preview of the source frame so a debug
// directory is identifiable at a glance.
func writeThumbnail(dir string, frame gocv.Mat) {
	data, err := imgio.ThumbnailPNG(frame, 480)
	if err == nil {
		err = os.MkdirAll(dir, 0o755)
	}
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, "source_thumb.png"), data, 0o644)
	}
	if err != nil {
		log.Printf("pipeline: thumbnail: %v", err)
	}
}
