// Package chart renders the emotional trajectory of a run as an image.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/gen2brain/webp"

	"fabula/pkg/valence"
)

const (
	width   = 960
	height  = 540
	marginX = 60
	marginY = 50
)

var (
	background = color.RGBA{24, 24, 28, 255}
	axisColor  = color.RGBA{110, 110, 120, 255}
	lineColor  = color.RGBA{70, 130, 180, 255}
	markColor  = color.RGBA{200, 60, 60, 255}
	avgColor   = color.RGBA{220, 180, 80, 255}
)

// smoothWindow is the moving-average window for the trend overlay.
const smoothWindow = 3

// EmotionalJourney renders the valence series as a line chart, marking
// every swing above the significance threshold, and writes it as webp.
func EmotionalJourney(history []float64, threshold float64, path string) error {
	b, err := Render(history, threshold)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}

// Render draws the chart and returns the encoded webp bytes.
func Render(history []float64, threshold float64) ([]byte, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("empty valence history")
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, background)
		}
	}

	// Axes: the zero line and the plot frame.
	zeroY := plotY(0)
	for x := marginX; x <= width-marginX; x++ {
		img.Set(x, zeroY, axisColor)
		img.Set(x, plotY(1), axisColor)
		img.Set(x, plotY(-1), axisColor)
	}
	for y := plotY(1); y <= plotY(-1); y++ {
		img.Set(marginX, y, axisColor)
		img.Set(width-marginX, y, axisColor)
	}

	// Significant swings get a vertical marker.
	for i := 1; i < len(history); i++ {
		if math.Abs(history[i]-history[i-1]) > threshold {
			x := plotX(i, len(history))
			for y := plotY(1); y <= plotY(-1); y++ {
				img.Set(x, y, markColor)
			}
		}
	}

	// Trend overlay: a moving average aligned so each smoothed point
	// sits on the last chapter of its window.
	smoothed := valence.MovingAverage(history, smoothWindow)
	offset := len(history) - len(smoothed)
	for i := 1; i < len(smoothed); i++ {
		drawLine(img,
			plotX(offset+i-1, len(history)), plotY(smoothed[i-1]),
			plotX(offset+i, len(history)), plotY(smoothed[i]),
			avgColor,
		)
	}

	for i := 1; i < len(history); i++ {
		drawLine(img,
			plotX(i-1, len(history)), plotY(history[i-1]),
			plotX(i, len(history)), plotY(history[i]),
			lineColor,
		)
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, webp.Options{Lossless: false, Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func plotX(i, n int) int {
	if n <= 1 {
		return marginX
	}
	return marginX + i*(width-2*marginX)/(n-1)
}

func plotY(v float64) int {
	// v in [-1, 1] maps top to bottom.
	usable := float64(height - 2*marginY)
	return marginY + int((1-v)/2*usable)
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
