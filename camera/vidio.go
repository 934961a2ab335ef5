package camera

import (
	"fmt"
	"image"

	vidio "github.com/AlexEidt/Vidio"
)

// vidioCapture reads a webcam through FFmpeg.
type vidioCapture struct {
	cam *vidio.Camera
}

// OpenVidio opens a device through Vidio, which needs ffmpeg on PATH.
func OpenVidio(index int) (Capture, error) {
	cam, err := vidio.NewCamera(index)
	if err != nil {
		return nil, fmt.Errorf("open device %d: %w", index, err)
	}
	return &vidioCapture{cam: cam}, nil
}

func (c *vidioCapture) Read() (image.Image, error) {
	if !c.cam.Read() {
		return nil, ErrNoFrame
	}

	// Vidio reuses its frame buffer between reads.
	img := image.NewRGBA(image.Rect(0, 0, c.cam.Width(), c.cam.Height()))
	copy(img.Pix, c.cam.FrameBuffer())
	return img, nil
}

// SetResolution is a no-op: Vidio streams at the device's default mode.
func (c *vidioCapture) SetResolution(width, height int) {}

func (c *vidioCapture) Close() error {
	c.cam.Close()
	return nil
}
