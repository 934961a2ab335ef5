package camera

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

type gocvCapture struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

// OpenGoCV opens a device through OpenCV's VideoCapture.
func OpenGoCV(index int) (Capture, error) {
	vc, err := gocv.VideoCaptureDevice(index)
	if err != nil {
		return nil, fmt.Errorf("open device %d: %w", index, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open device %d: not opened", index)
	}

	return &gocvCapture{vc: vc, mat: gocv.NewMat()}, nil
}

func (c *gocvCapture) Read() (image.Image, error) {
	if ok := c.vc.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, ErrNoFrame
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	return img, nil
}

func (c *gocvCapture) SetResolution(width, height int) {
	c.vc.Set(gocv.VideoCaptureFrameWidth, float64(width))
	c.vc.Set(gocv.VideoCaptureFrameHeight, float64(height))
}

func (c *gocvCapture) Close() error {
	c.mat.Close()
	return c.vc.Close()
}

// Window an OpenCV highgui window.
type Window struct {
	w *gocv.Window
}

// NewWindow opens a window titled title.
func NewWindow(title string) *Window {
	return &Window{w: gocv.NewWindow(title)}
}

// NewDisplay is NewWindow as a Display.
func NewDisplay(title string) Display {
	return NewWindow(title)
}

func (w *Window) Show(img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	w.w.IMShow(mat)
	return nil
}

func (w *Window) WaitKey(delay int) int {
	return w.w.WaitKey(delay)
}

func (w *Window) Close() error {
	return w.w.Close()
}

// ShowUntilKey shows img in a new window and blocks until a key is pressed.
func ShowUntilKey(title string, img image.Image) error {
	w := NewWindow(title)
	defer w.Close()

	if err := w.Show(img); err != nil {
		return err
	}
	w.WaitKey(0)
	return nil
}

// OpenCVVersion version of the linked OpenCV library.
func OpenCVVersion() string {
	return gocv.OpenCVVersion()
}
