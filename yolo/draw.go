package yolo

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawDetections returns a copy of img with boxes and "class score" labels
// drawn on it. With no detections the copy is returned unchanged.
func DrawDetections(img image.Image, detections []Detection, opts *DetectionOptions) *image.RGBA {
	if opts == nil {
		opts = DefaultDetectionOptions()
	}

	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	boxColor := color.RGBA{255, 0, 0, 255}
	if c, ok := ParseColor(opts.BoxColor); ok {
		boxColor = c
	}
	labelColor := color.RGBA{255, 255, 255, 255}
	if c, ok := ParseColor(opts.LabelColor); ok {
		labelColor = c
	}

	lineWidth := opts.LineWidth
	if lineWidth < 1 {
		lineWidth = 1
	}

	for _, d := range detections {
		if opts.DrawBoxes {
			drawBBox(out, d.Box, boxColor, lineWidth)
		}
		if opts.DrawLabels {
			label := fmt.Sprintf("%s %.2f", d.Class, d.Score)
			drawLabel(out, label, int(d.Box[0]), int(d.Box[1]), boxColor, labelColor)
		}
	}

	return out
}

// drawBBox draws a rectangle clamped to the image bounds.
func drawBBox(img *image.RGBA, box [4]float32, lineColor color.Color, lineWidth int) {
	b := img.Bounds()
	clamp := func(v float32, lo, hi int) int {
		return int(max(float32(lo), min(float32(hi-1), v)))
	}
	x1 := clamp(box[0], b.Min.X, b.Max.X)
	y1 := clamp(box[1], b.Min.Y, b.Max.Y)
	x2 := clamp(box[2], b.Min.X, b.Max.X)
	y2 := clamp(box[3], b.Min.Y, b.Max.Y)

	for i := 0; i < lineWidth; i++ {
		for x := x1; x <= x2; x++ {
			img.Set(x, y1+i, lineColor)
			img.Set(x, y2-i, lineColor)
		}
		for y := y1; y <= y2; y++ {
			img.Set(x1+i, y, lineColor)
			img.Set(x2-i, y, lineColor)
		}
	}
}

// drawLabel draws label on a filled background just above (x, top), or
// inside the box when there is no room above it.
func drawLabel(img *image.RGBA, label string, x, top int, background, foreground color.Color) {
	face := basicfont.Face7x13
	b := img.Bounds()

	textWidth := font.MeasureString(face, label).Ceil()
	textHeight := face.Metrics().Height.Ceil()
	padding := 2

	y := top - textHeight - 2*padding
	if y < b.Min.Y {
		y = top
	}
	if x+textWidth+2*padding > b.Max.X {
		x = b.Max.X - textWidth - 2*padding
	}
	if x < b.Min.X {
		x = b.Min.X
	}

	rect := image.Rect(x, y, x+textWidth+2*padding, y+textHeight+2*padding).Intersect(b)
	draw.Draw(img, rect, image.NewUniform(background), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(foreground),
		Face: face,
		Dot:  fixed.P(x+padding, y+padding+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(label)
}

// ParseColor resolves a colour name used in configuration.
func ParseColor(name string) (color.RGBA, bool) {
	switch strings.ToLower(name) {
	case "red":
		return color.RGBA{255, 0, 0, 255}, true
	case "green":
		return color.RGBA{0, 255, 0, 255}, true
	case "blue":
		return color.RGBA{0, 0, 255, 255}, true
	case "yellow":
		return color.RGBA{255, 255, 0, 255}, true
	case "cyan":
		return color.RGBA{0, 255, 255, 255}, true
	case "magenta":
		return color.RGBA{255, 0, 255, 255}, true
	case "white":
		return color.RGBA{255, 255, 255, 255}, true
	case "black":
		return color.RGBA{0, 0, 0, 255}, true
	case "orange":
		return color.RGBA{255, 165, 0, 255}, true
	case "purple":
		return color.RGBA{128, 0, 128, 255}, true
	default:
		return color.RGBA{}, false
	}
}
