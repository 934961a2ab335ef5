// Package cameratest provides in-memory capture devices and displays.
package cameratest

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/Cubiaa/oculus-check/camera"
)

// Frame returns a solid w x h frame.
func Frame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// Capture serves Frames in order, then ErrNoFrame. Zero Frames means
// the device never produces a frame.
type Capture struct {
	Frames []image.Image

	mu     sync.Mutex
	reads  int
	closed bool
	width  int
	height int
}

func (c *Capture) Read() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("cameratest: read after close")
	}
	if c.reads >= len(c.Frames) {
		return nil, camera.ErrNoFrame
	}
	img := c.Frames[c.reads]
	c.reads++
	return img, nil
}

func (c *Capture) SetResolution(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
}

func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether the capture is closed.
func (c *Capture) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Resolution last requested resolution.
func (c *Capture) Resolution() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Reads number of successful reads.
func (c *Capture) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Bench maps device indices to captures; indices not present fail to open.
// Opening a closed capture reopens it and keeps its frame position.
type Bench struct {
	Devices map[int]*Capture

	mu     sync.Mutex
	opened []int
}

// Opener implements camera.Opener over the bench.
func (b *Bench) Opener() camera.Opener {
	return func(index int) (camera.Capture, error) {
		b.mu.Lock()
		b.opened = append(b.opened, index)
		b.mu.Unlock()

		c, ok := b.Devices[index]
		if !ok {
			return nil, errors.New("cameratest: no device")
		}
		c.mu.Lock()
		c.closed = false
		c.mu.Unlock()
		return c, nil
	}
}

// Opened indices passed to the opener, in call order.
func (b *Bench) Opened() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.opened...)
}

// Display records shown frames and replays Keys from WaitKey; once Keys is
// exhausted WaitKey returns -1.
type Display struct {
	Title string
	Keys  []int

	mu     sync.Mutex
	shown  []image.Image
	waits  []int
	closed bool
}

func (d *Display) Show(img image.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown = append(d.shown, img)
	return nil
}

func (d *Display) WaitKey(delay int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waits = append(d.waits, delay)
	if len(d.Keys) == 0 {
		return -1
	}
	key := d.Keys[0]
	d.Keys = d.Keys[1:]
	return key
}

func (d *Display) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *Display) Shown() []image.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]image.Image(nil), d.shown...)
}

func (d *Display) Waits() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.waits...)
}

func (d *Display) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
