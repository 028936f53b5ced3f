package segment

import (
	"image"

	"gocv.io/x/gocv"
)

// Strategy turns the stage brightness image into a binary foreground mask.
// Implementations also return the intermediate high-pass image for
// diagnostics. Both returned Mats are owned by the caller.
type Strategy interface {
	Name() string
	Foreground(gray gocv.Mat, opts Options) (mask, highPass gocv.Mat)
}

func strategyFor(m Mode) Strategy {
	if m == ModeFine {
		return fineStrategy{}
	}
	return coarseStrategy{}
}

// coarseStrategy detects blob-scale particles: denoise, subtract a
// wide-blur estimate of the illumination trend, threshold, then
// morphological closing to merge fragments and opening to drop speckle.
type coarseStrategy struct{}

func (coarseStrategy) Name() string { return "coarse" }

func (coarseStrategy) Foreground(gray gocv.Mat, opts Options) (gocv.Mat, gocv.Mat) {
	denoised := gocv.NewMat()
	defer denoised.Close()
	k := opts.DenoiseKernel
	if k < 3 {
		k = 3
	}
	gocv.GaussianBlur(gray, &denoised, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	background := gocv.NewMat()
	defer background.Close()
	gocv.GaussianBlur(denoised, &background, image.Pt(0, 0), opts.BackgroundSigma, opts.BackgroundSigma, gocv.BorderDefault)

	// Dark particles on light paper: background minus image is positive
	// where the foreground sits.
	highPass := gocv.NewMat()
	gocv.Subtract(background, denoised, &highPass)
	gocv.Normalize(highPass, &highPass, 0, 255, gocv.NormMinMax)

	mask := gocv.NewMat()
	gocv.Threshold(highPass, &mask, opts.Threshold, 255, gocv.ThresholdBinary)

	mk := opts.MorphKernel
	if mk < 3 {
		mk = 3
	}
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(mk, mk))
	defer kernel.Close()
	gocv.MorphologyExWithParams(mask, &mask, gocv.MorphClose, kernel, 2, gocv.BorderConstant)
	gocv.MorphologyExWithParams(mask, &mask, gocv.MorphOpen, kernel, 1, gocv.BorderConstant)

	return mask, highPass
}

// fineStrategy detects sub-millimeter specks with a Difference-of-Gaussians
// band-pass. No morphological cleanup, so single-pixel components survive.
type fineStrategy struct{}

func (fineStrategy) Name() string { return "fine" }

func (fineStrategy) Foreground(gray gocv.Mat, opts Options) (gocv.Mat, gocv.Mat) {
	narrow := gocv.NewMat()
	defer narrow.Close()
	gocv.GaussianBlur(gray, &narrow, image.Pt(0, 0), opts.DoGSigmaNarrow, opts.DoGSigmaNarrow, gocv.BorderDefault)

	wide := gocv.NewMat()
	defer wide.Close()
	gocv.GaussianBlur(gray, &wide, image.Pt(0, 0), opts.DoGSigmaWide, opts.DoGSigmaWide, gocv.BorderDefault)

	// Dark specks pull the narrow blur below the wide one; the saturating
	// 8-bit subtract discards the negative band.
	highPass := gocv.NewMat()
	gocv.Subtract(wide, narrow, &highPass)
	gocv.Normalize(highPass, &highPass, 0, 255, gocv.NormMinMax)

	mask := gocv.NewMat()
	gocv.Threshold(highPass, &mask, opts.Threshold, 255, gocv.ThresholdBinary)

	return mask, highPass
}
