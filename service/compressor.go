package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// Compression progress milestones.
const (
	CompressStarted  = "started"
	CompressMidpoint = "midpoint"
	CompressComplete = "complete"
)

// ProgressFunc receives compression milestones for UI feedback.
type ProgressFunc func(stage string)

// CompressOptions bounds the recompression output.
type CompressOptions struct {
	// MaxDimension caps both width and height, aspect ratio preserved.
	MaxDimension int
	// Quality overrides the size-tier JPEG quality when > 0.
	Quality int
}

// CompressImage re-encodes an image as a bounded JPEG: decode, scale so that
// neither side exceeds MaxDimension, flatten onto an opaque white canvas and
// encode at a quality picked from the original byte size. Returns the encoded
// bytes and a human-readable note describing what happened.
func CompressImage(data []byte, opts CompressOptions, progress ProgressFunc) ([]byte, string, error) {
	report := func(stage string) {
		if progress != nil {
			progress(stage)
		}
	}
	report(CompressStarted)

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	maxDim := opts.MaxDimension
	if maxDim <= 0 {
		maxDim = 1200
	}

	bounds := src.Bounds()
	newW, newH := fitWithin(bounds.Dx(), bounds.Dy(), maxDim)

	// Opaque white background so transparent PNGs flatten cleanly into JPEG.
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	report(CompressMidpoint)

	quality := opts.Quality
	if quality <= 0 {
		quality = qualityForSize(int64(len(data)))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode jpeg: %w", err)
	}

	report(CompressComplete)

	note := fmt.Sprintf("compressed %s to %s (quality %d, %dx%d)",
		humanSize(int64(len(data))), humanSize(int64(buf.Len())), quality, newW, newH)
	return buf.Bytes(), note, nil
}

// qualityForSize picks the JPEG quality tier from the original byte size. The
// 2 MB band is checked first to match the legacy uploader, so anything over
// 5 MB lands in the 2 MB band and the 50 tier never matches.
func qualityForSize(size int64) int {
	if size > 2_000_000 {
		return 60
	} else if size > 5_000_000 {
		return 50
	}
	return 80
}

// fitWithin scales (w, h) down so neither side exceeds maxDim, preserving
// aspect ratio. Dimensions already within the bound are returned unchanged.
func fitWithin(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}

	newW := int(float64(w)*scale + 0.5)
	newH := int(float64(h)*scale + 0.5)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return newW, newH
}

func humanSize(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.0f KB", float64(n)/1024)
	}
	return fmt.Sprintf("%d B", n)
}
