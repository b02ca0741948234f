// Package preprocess cleans raster page images ahead of recognition.
//
// The pipeline runs in a fixed order: grayscale conversion, adaptive local
// thresholding, light dilation of glyph strokes, then a median denoise pass.
// Preprocessing is best-effort: any internal failure degrades to returning
// the input image unchanged so a page is never lost to cleanup.
package preprocess

import (
	"image"
	"log/slog"

	"golang.org/x/image/draw"
)

const (
	// thresholdWindow is the side of the square neighborhood used for
	// adaptive thresholding. Window-based rather than global so uneven
	// scan lighting does not blow out text.
	thresholdWindow = 25

	// thresholdBias shifts the local mean before the cutoff; higher
	// values push ambiguous pixels toward white.
	thresholdBias = 10
)

// Run applies the cleanup pipeline when enabled. Disabled, or on any
// internal failure, the raw image passes through unchanged.
func Run(img image.Image, enabled bool, logger *slog.Logger) (out image.Image) {
	if logger == nil {
		logger = slog.Default()
	}
	if !enabled || img == nil {
		return img
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("image preprocessing failed, using raw image", "panic", r)
			out = img
		}
	}()

	return Clean(img)
}

// Clean runs the full pipeline: grayscale, adaptive threshold, dilation,
// denoise. No stage is conditionally skipped.
func Clean(img image.Image) image.Image {
	gray := Grayscale(img)
	bin := AdaptiveThreshold(gray, thresholdWindow, thresholdBias)
	dilated := Dilate(bin)
	return Denoise(dilated)
}

// Grayscale converts any image to 8-bit grayscale.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// AdaptiveThreshold binarizes the image against a windowed local mean
// computed from an integral image, not a single global cutoff.
func AdaptiveThreshold(gray *image.Gray, window, bias int) *image.Gray {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gray
	}

	// Integral image with one row/column of zero padding.
	integral := make([]uint64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum uint64
		for x := 0; x < w; x++ {
			rowSum += uint64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			integral[(y+1)*(w+1)+(x+1)] = integral[y*(w+1)+(x+1)] + rowSum
		}
	}

	half := window / 2
	out := image.NewGray(bounds)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := max(0, x-half), max(0, y-half)
			x1, y1 := min(w-1, x+half), min(h-1, y+half)
			area := uint64((x1 - x0 + 1) * (y1 - y0 + 1))

			sum := integral[(y1+1)*(w+1)+(x1+1)] -
				integral[y0*(w+1)+(x1+1)] -
				integral[(y1+1)*(w+1)+x0] +
				integral[y0*(w+1)+x0]
			mean := int(sum / area)

			v := int(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			if v > mean-bias {
				out.Pix[y*out.Stride+x] = 255
			} else {
				out.Pix[y*out.Stride+x] = 0
			}
		}
	}
	return out
}

// Dilate grows dark glyph strokes by one pixel along a cross-shaped
// kernel, recovering thin or broken strokes after thresholding.
func Dilate(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)

	offsets := [][2]int{{0, 0}, {-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			minV := uint8(255)
			for _, off := range offsets {
				nx, ny := x+off[0], y+off[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				if v := gray.Pix[ny*gray.Stride+nx]; v < minV {
					minV = v
				}
			}
			out.Pix[y*out.Stride+x] = minV
		}
	}
	return out
}

// Denoise applies a 3x3 median filter, suppressing speckle without
// destroying stroke edges.
func Denoise(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)

	var neighborhood [9]uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					neighborhood[n] = gray.Pix[ny*gray.Stride+nx]
					n++
				}
			}
			out.Pix[y*out.Stride+x] = median(neighborhood[:n])
		}
	}
	return out
}

// median selects the middle value by insertion sort over at most 9 values.
func median(vals []uint8) uint8 {
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j-1] > vals[j]; j-- {
			vals[j-1], vals[j] = vals[j], vals[j-1]
		}
	}
	return vals[len(vals)/2]
}
