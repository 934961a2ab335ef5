package probe

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/Cubiaa/oculus-check/camera"
	"github.com/Cubiaa/oculus-check/yolo"
)

const detectionWindowTitle = "Oculus - Test YOLO Detection"

// ErrNoTestImage no test image could be downloaded or found locally.
var ErrNoTestImage = errors.New("test image not found")

// Detector runs one inference pass over an image.
type Detector interface {
	Detect(img image.Image) ([]yolo.Detection, error)
	Close()
}

// DetectionProbe loads the model, fetches a sample image and runs one
// detection over it.
type DetectionProbe struct {
	Out io.Writer
	// Dir is where the test image, the fallback images and the result
	// live; empty means the working directory.
	Dir string

	ModelPath  string
	ImageURL   string
	ImagePath  string
	ResultPath string

	Client  *http.Client
	Options *yolo.DetectionOptions

	RuntimeVersion func() (string, error)
	LoadDetector   func(modelPath string) (Detector, error)
	// Show displays the result until a key press; nil skips the window.
	Show func(title string, img image.Image) error
}

// NewDetectionProbe wires the onnxruntime detector and the gocv window from
// the loaded configuration.
func NewDetectionProbe(out io.Writer, cm *yolo.ConfigManager) *DetectionProbe {
	cfg := cm.Config().Detection
	yoloConfig := cm.GetYOLOConfig()
	options := cm.GetDetectionOptions()

	p := &DetectionProbe{
		Out:        out,
		ModelPath:  cfg.ModelPath,
		ImageURL:   cfg.ImageURL,
		ImagePath:  cfg.ImagePath,
		ResultPath: cfg.ResultPath,
		Client:     &http.Client{Timeout: cfg.DownloadTimeout},
		Options:    options,
		RuntimeVersion: func() (string, error) {
			return yolo.RuntimeVersion(yoloConfig.LibraryPath)
		},
		LoadDetector: func(modelPath string) (Detector, error) {
			detector, err := yolo.NewYOLO(modelPath, cfg.ClassesPath, yoloConfig)
			if err != nil {
				return nil, err
			}
			detector.SetRuntimeConfig(options)
			return detector, nil
		},
	}
	if cfg.ShowResult {
		p.Show = camera.ShowUntilKey
	}
	return p
}

func (p *DetectionProbe) path(name string) string {
	if p.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.Dir, name)
}

// CheckImport loads the onnxruntime library and prints its version.
func (p *DetectionProbe) CheckImport() bool {
	version, err := p.RuntimeVersion()
	if err != nil {
		fmt.Fprintf(p.Out, "Error importing onnxruntime: %v\n", err)
		return false
	}
	fmt.Fprintf(p.Out, "ONNX Runtime version: %s\n", version)
	return true
}

// LoadModel returns nil when the model cannot be loaded.
func (p *DetectionProbe) LoadModel() Detector {
	fmt.Fprintln(p.Out, "Loading model YOLOv8n...")
	detector, err := p.LoadDetector(p.path(p.ModelPath))
	if err != nil {
		fmt.Fprintf(p.Out, "Error loading model: %v\n", err)
		return nil
	}
	fmt.Fprintln(p.Out, "Model loaded")
	return detector
}

// FetchTestImage returns the local test image, downloading it when absent.
// When the download fails it falls back to the first *.jpg, then *.png, in
// Dir.
func (p *DetectionProbe) FetchTestImage(ctx context.Context) (string, error) {
	target := p.path(p.ImagePath)
	if _, err := os.Stat(target); err == nil {
		fmt.Fprintf(p.Out, "Test image found at %s\n", p.ImagePath)
		return target, nil
	}

	fmt.Fprintln(p.Out, "Downloading test image...")
	err := p.download(ctx, target)
	if err == nil {
		fmt.Fprintf(p.Out, "Test image downloaded and saved to %s\n", p.ImagePath)
		return target, nil
	}
	fmt.Fprintf(p.Out, "Error downloading test image: %v\n", err)

	for _, pattern := range []string{"*.jpg", "*.png"} {
		matches, _ := filepath.Glob(p.path(pattern))
		if len(matches) > 0 {
			fmt.Fprintf(p.Out, "Test image: %s\n", matches[0])
			return matches[0], nil
		}
	}

	fmt.Fprintln(p.Out, "Test image not found")
	return "", ErrNoTestImage
}

func (p *DetectionProbe) download(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ImageURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GET %s: %s", p.ImageURL, resp.Status)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(target)
		return fmt.Errorf("write %s: %w", target, err)
	}
	return f.Close()
}

// DetectOnImage runs detector over imagePath, prints every detection and
// writes the annotated image to ResultPath, even when nothing was found.
func (p *DetectionProbe) DetectOnImage(detector Detector, imagePath string) bool {
	if _, err := os.Stat(imagePath); err != nil {
		fmt.Fprintf(p.Out, "Image not found: %s\n", imagePath)
		return false
	}

	fmt.Fprintf(p.Out, "Detecting on image %s\n", imagePath)

	img, err := imaging.Open(imagePath)
	if err != nil {
		fmt.Fprintf(p.Out, "Image not found: %s\n", imagePath)
		return false
	}
	bounds := img.Bounds()
	fmt.Fprintf(p.Out, "Image shape: %dx%d\n", bounds.Dx(), bounds.Dy())

	detections, err := detector.Detect(img)
	if err != nil {
		fmt.Fprintf(p.Out, "Error running detection: %v\n", err)
		return false
	}

	fmt.Fprintf(p.Out, "Found %d detections\n", len(detections))
	for _, d := range detections {
		fmt.Fprintf(p.Out, "Detection %s: %.2f%%\n", d.Class, d.Score*100)
	}
	if len(detections) == 0 {
		fmt.Fprintln(p.Out, "No detection found")
	}

	annotated := yolo.DrawDetections(img, detections, p.Options)
	if err := imaging.Save(annotated, p.path(p.ResultPath)); err != nil {
		fmt.Fprintf(p.Out, "Error saving result: %v\n", err)
		return false
	}
	fmt.Fprintf(p.Out, "Detection saved to %s\n", p.ResultPath)

	if p.Show != nil {
		fmt.Fprintln(p.Out, "\n👀 Print result")
		if err := p.Show(detectionWindowTitle, annotated); err != nil {
			fmt.Fprintf(p.Out, "Error printing result: %v\n", err)
			return false
		}
	}

	return true
}

// Run performs the whole detection check.
func (p *DetectionProbe) Run(ctx context.Context) bool {
	fmt.Fprintln(p.Out, "Oculus - Test YOLO Detection")
	fmt.Fprintln(p.Out, "========================================")

	if !p.CheckImport() {
		return false
	}

	detector := p.LoadModel()
	if detector == nil {
		return false
	}
	defer detector.Close()

	imagePath, err := p.FetchTestImage(ctx)
	if err != nil {
		return false
	}

	if !p.DetectOnImage(detector, imagePath) {
		return false
	}

	fmt.Fprintln(p.Out, "\n SUCCESS YOLO Detection is available")
	return true
}
