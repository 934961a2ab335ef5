// Package camera opens capture devices by index and shows frames in
// OpenCV windows.
package camera

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrNoFrame is returned by Capture.Read when the device yields no frame.
var ErrNoFrame = errors.New("camera: no frame")

// Capture an opened capture device.
type Capture interface {
	Read() (image.Image, error)
	SetResolution(width, height int)
	Close() error
}

// Opener opens the capture device at index.
type Opener func(index int) (Capture, error)

// Display a window frames can be shown in.
type Display interface {
	Show(img image.Image) error
	// WaitKey waits up to delay milliseconds (0 = forever) and returns the
	// pressed key code, or -1.
	WaitKey(delay int) int
	Close() error
}

// Backend names accepted by NewOpener.
const (
	BackendGoCV  = "gocv"
	BackendVidio = "vidio"
)

// NewOpener returns the opener of the named backend.
func NewOpener(backend string) (Opener, error) {
	switch strings.ToLower(backend) {
	case "", BackendGoCV:
		return OpenGoCV, nil
	case BackendVidio:
		return OpenVidio, nil
	default:
		return nil, fmt.Errorf("unknown camera backend %q", backend)
	}
}

// Probe opens index, reads a single frame and releases the device.
func Probe(open Opener, index int) bool {
	c, err := open(index)
	if err != nil {
		return false
	}
	defer c.Close()

	_, err = c.Read()
	return err == nil
}

// Scan probes indices 0..count-1 and returns those that produced a frame.
func Scan(open Opener, count int, found func(index int, available []int)) []int {
	var available []int
	for index := 0; index < count; index++ {
		if !Probe(open, index) {
			continue
		}
		available = append(available, index)
		if found != nil {
			found(index, available)
		}
	}
	return available
}
