// Package probe holds the webcam and detection console checks. Each check
// prints status lines to its writer and reports success as a bool.
package probe

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/Cubiaa/oculus-check/camera"
	"github.com/Cubiaa/oculus-check/yolo"
)

const webcamWindowTitle = "Oculus - Test Webcam"

// WebcamProbe scans capture indices and runs an interactive capture loop.
type WebcamProbe struct {
	Out     io.Writer
	Open    camera.Opener
	Display func(title string) camera.Display
	Version func() string

	Devices       int
	Width, Height int
	// ScreenshotDir receives screenshot_<n>.png; empty means the working
	// directory.
	ScreenshotDir string
}

// NewWebcamProbe wires the gocv window and the configured capture backend.
func NewWebcamProbe(out io.Writer, cfg *yolo.WebcamConfig) (*WebcamProbe, error) {
	open, err := camera.NewOpener(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return &WebcamProbe{
		Out:     out,
		Open:    open,
		Display: camera.NewDisplay,
		Version: camera.OpenCVVersion,
		Devices: cfg.Devices,
		Width:   cfg.Width,
		Height:  cfg.Height,
	}, nil
}

// CheckOpenCV prints the linked OpenCV version. A build that reports no
// version is treated as unusable.
func (w *WebcamProbe) CheckOpenCV() bool {
	version := w.Version()
	if version == "" {
		fmt.Fprintln(w.Out, "OpenCV error: no version reported")
		return false
	}
	fmt.Fprintf(w.Out, "OpenCV version: %s\n", version)
	return true
}

// FindCamera returns the first index in 0..Devices-1 that yields a frame,
// or false and -1.
func (w *WebcamProbe) FindCamera() (bool, int) {
	fmt.Fprintln(w.Out, "\nSearching for available webcams...")

	available := camera.Scan(w.Open, w.Devices, func(index int, so []int) {
		fmt.Fprintf(w.Out, "Available cameras at index %d: %v\n", index, so)
	})

	if len(available) == 0 {
		fmt.Fprintln(w.Out, "No cameras available")
		return false, -1
	}
	return true, available[0]
}

// Capture shows frames from index until 'q' is pressed or a read fails.
// 's' saves the current frame.
func (w *WebcamProbe) Capture(index int) bool {
	fmt.Fprintf(w.Out, "Testing webcam %d...\n", index)
	fmt.Fprintln(w.Out, "Press 'q' for quit or 's' for screenshot")

	c, err := w.Open(index)
	if err != nil {
		fmt.Fprintf(w.Out, "Could not open webcam at index %d: %v\n", index, err)
		return false
	}
	defer c.Close()

	c.SetResolution(w.Width, w.Height)

	display := w.Display(webcamWindowTitle)
	defer display.Close()

	frameCount := 0
	screenshotCount := 0

	for {
		frame, err := c.Read()
		if err != nil {
			fmt.Fprintln(w.Out, "Error while reading webcam")
			break
		}

		frameCount++
		annotated := overlayFrame(frame, frameCount)

		if err := display.Show(annotated); err != nil {
			fmt.Fprintf(w.Out, "Error while showing frame: %v\n", err)
			break
		}

		key := display.WaitKey(1) & 0xFF
		if key == 'q' {
			fmt.Fprintln(w.Out, "Quit")
			break
		}
		if key == 's' {
			screenshotCount++
			path := filepath.Join(w.ScreenshotDir, fmt.Sprintf("screenshot_%d.png", screenshotCount))
			if err := imaging.Save(annotated, path); err != nil {
				fmt.Fprintf(w.Out, "Screenshot failed: %v\n", err)
				continue
			}
			fmt.Fprintln(w.Out, "Screenshot saved")
		}
	}

	return true
}

// overlayFrame copies frame and draws the three status lines on it.
func overlayFrame(frame image.Image, frameCount int) image.Image {
	img := imaging.Clone(frame)

	camera.PutText(img, "Oculus - Test OpenCV", 10, 30, camera.Green)
	camera.PutText(img, fmt.Sprintf("Frame: %d", frameCount), 10, 60, camera.White)
	camera.PutText(img, "Press 'q' pour quit, 's' for screenshot", 10, 450, camera.Yellow)

	return img
}

// Run performs the whole webcam check. in supplies the Enter key press
// between the scan and the capture loop.
func (w *WebcamProbe) Run(in io.Reader) bool {
	fmt.Fprintln(w.Out, "Testing OpenCV import...")
	fmt.Fprintln(w.Out, "========================================")

	if !w.CheckOpenCV() {
		fmt.Fprintln(w.Out, "OpenCV import error")
		return false
	}

	found, index := w.FindCamera()
	if !found {
		fmt.Fprintln(w.Out, "Webcam not found")
		return false
	}

	fmt.Fprintln(w.Out, "Launching capture...")
	fmt.Fprint(w.Out, "Press Enter to continue...")
	if in != nil {
		bufio.NewReader(in).ReadString('\n')
	}

	if !w.Capture(index) {
		fmt.Fprintln(w.Out, "Webcam not found at index", index)
		return false
	}

	fmt.Fprintln(w.Out, "OpenCV & Webcam OK")
	return true
}
