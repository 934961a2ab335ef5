package probe

import (
	"bytes"
	"context"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cubiaa/oculus-check/camera"
	"github.com/Cubiaa/oculus-check/camera/cameratest"
	"github.com/Cubiaa/oculus-check/yolo"
)

type fakeDetector struct {
	detections []yolo.Detection
	err        error
	seen       image.Rectangle
	closed     bool
}

func (f *fakeDetector) Detect(img image.Image) ([]yolo.Detection, error) {
	f.seen = img.Bounds()
	return f.detections, f.err
}

func (f *fakeDetector) Close() { f.closed = true }

func newDetectionProbe(t *testing.T, detector *fakeDetector) (*DetectionProbe, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	cfg := yolo.DefaultAppConfig().Detection
	return &DetectionProbe{
		Out:        out,
		Dir:        t.TempDir(),
		ModelPath:  cfg.ModelPath,
		ImageURL:   "http://127.0.0.1:1/bus.jpg",
		ImagePath:  cfg.ImagePath,
		ResultPath: cfg.ResultPath,
		Client:     &http.Client{},
		RuntimeVersion: func() (string, error) {
			return "1.21.0", nil
		},
		LoadDetector: func(string) (Detector, error) {
			return detector, nil
		},
	}, out
}

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, imaging.Save(cameratest.Frame(w, h, camera.Green), path))
}

func TestFetchTestImageReusesLocalFile(t *testing.T) {
	p, out := newDetectionProbe(t, &fakeDetector{})
	writeImage(t, filepath.Join(p.Dir, "test_image.jpg"), 32, 32)

	path, err := p.FetchTestImage(context.Background())

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.Dir, "test_image.jpg"), path)
	assert.Equal(t, "Test image found at test_image.jpg\n", out.String())
}

func TestFetchTestImageDownloads(t *testing.T) {
	var body bytes.Buffer
	require.NoError(t, imaging.Encode(&body, cameratest.Frame(48, 24, camera.White), imaging.JPEG))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/bus.jpg", r.URL.Path)
		w.Write(body.Bytes())
	}))
	defer server.Close()

	p, out := newDetectionProbe(t, &fakeDetector{})
	p.ImageURL = server.URL + "/images/bus.jpg"
	p.Client = server.Client()

	path, err := p.FetchTestImage(context.Background())

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body.Bytes(), data)
	assert.Contains(t, out.String(), "Test image downloaded and saved to test_image.jpg\n")
}

func TestFetchTestImageFallsBackOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	p, out := newDetectionProbe(t, &fakeDetector{})
	p.ImageURL = server.URL
	p.Client = server.Client()
	writeImage(t, filepath.Join(p.Dir, "b.png"), 8, 8)
	writeImage(t, filepath.Join(p.Dir, "a.jpg"), 8, 8)

	path, err := p.FetchTestImage(context.Background())

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.Dir, "a.jpg"), path)
	assert.Contains(t, out.String(), "Error downloading test image: ")
	assert.Contains(t, out.String(), "404")
	assert.NoFileExists(t, filepath.Join(p.Dir, "test_image.jpg"))
}

func TestFetchTestImageFallsBackToPNG(t *testing.T) {
	p, _ := newDetectionProbe(t, &fakeDetector{})
	writeImage(t, filepath.Join(p.Dir, "frame.png"), 8, 8)

	path, err := p.FetchTestImage(context.Background())

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.Dir, "frame.png"), path)
}

func TestFetchTestImageNotFound(t *testing.T) {
	p, out := newDetectionProbe(t, &fakeDetector{})

	_, err := p.FetchTestImage(context.Background())

	assert.ErrorIs(t, err, ErrNoTestImage)
	assert.True(t, strings.HasSuffix(out.String(), "Test image not found\n"))
}

func TestFetchTestImageHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	}))
	defer server.Close()

	p, _ := newDetectionProbe(t, &fakeDetector{})
	p.ImageURL = server.URL
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.FetchTestImage(ctx)
	assert.ErrorIs(t, err, ErrNoTestImage)
}

func TestDetectOnImageReportsDetections(t *testing.T) {
	detector := &fakeDetector{detections: []yolo.Detection{
		{Box: [4]float32{4, 4, 40, 30}, Score: 0.8734, ClassID: 5, Class: "bus"},
		{Box: [4]float32{10, 10, 20, 20}, Score: 0.5, ClassID: 0, Class: "person"},
	}}
	p, out := newDetectionProbe(t, detector)
	imagePath := filepath.Join(p.Dir, "test_image.jpg")
	writeImage(t, imagePath, 64, 48)

	var shownTitle string
	p.Show = func(title string, img image.Image) error {
		shownTitle = title
		return nil
	}

	require.True(t, p.DetectOnImage(detector, imagePath))

	s := out.String()
	assert.Contains(t, s, "Image shape: 64x48\n")
	assert.Contains(t, s, "Found 2 detections\n")
	assert.Contains(t, s, "Detection bus: 87.34%\n")
	assert.Contains(t, s, "Detection person: 50.00%\n")
	assert.NotContains(t, s, "No detection found")
	assert.Contains(t, s, "Detection saved to detection_result.png\n")
	assert.Equal(t, "Oculus - Test YOLO Detection", shownTitle)
	assert.Equal(t, image.Rect(0, 0, 64, 48), detector.seen)

	result, err := imaging.Open(filepath.Join(p.Dir, "detection_result.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 48), result.Bounds())
}

func TestDetectOnImageZeroDetectionsStillWritesResult(t *testing.T) {
	detector := &fakeDetector{}
	p, out := newDetectionProbe(t, detector)
	imagePath := filepath.Join(p.Dir, "empty.png")
	writeImage(t, imagePath, 16, 16)

	assert.True(t, p.DetectOnImage(detector, imagePath))

	assert.Contains(t, out.String(), "Found 0 detections\nNo detection found\n")
	assert.FileExists(t, filepath.Join(p.Dir, "detection_result.png"))
	assert.NotContains(t, out.String(), "Print result")
}

func TestDetectOnImageMissingFile(t *testing.T) {
	detector := &fakeDetector{}
	p, out := newDetectionProbe(t, detector)

	assert.False(t, p.DetectOnImage(detector, filepath.Join(p.Dir, "nope.jpg")))
	assert.Contains(t, out.String(), "Image not found: ")
}

func TestDetectOnImageDetectorError(t *testing.T) {
	detector := &fakeDetector{err: errors.New("inference: bad shape")}
	p, out := newDetectionProbe(t, detector)
	imagePath := filepath.Join(p.Dir, "img.png")
	writeImage(t, imagePath, 16, 16)

	assert.False(t, p.DetectOnImage(detector, imagePath))
	assert.Contains(t, out.String(), "inference: bad shape")
	assert.NoFileExists(t, filepath.Join(p.Dir, "detection_result.png"))
}

func TestCheckImportFailure(t *testing.T) {
	p, out := newDetectionProbe(t, &fakeDetector{})
	p.RuntimeVersion = func() (string, error) {
		return "", errors.New("libonnxruntime.so: cannot open shared object file")
	}

	assert.False(t, p.Run(context.Background()))
	assert.Contains(t, out.String(), "Error importing onnxruntime: libonnxruntime.so")
	assert.NotContains(t, out.String(), "Loading model")
}

func TestLoadModelFailure(t *testing.T) {
	p, out := newDetectionProbe(t, nil)
	p.LoadDetector = func(path string) (Detector, error) {
		return nil, errors.New("load model yolov8n.onnx: no such file")
	}

	assert.Nil(t, p.LoadModel())
	assert.Equal(t, "Loading model YOLOv8n...\nError loading model: load model yolov8n.onnx: no such file\n", out.String())
}

func TestDetectionRun(t *testing.T) {
	detector := &fakeDetector{detections: []yolo.Detection{
		{Box: [4]float32{1, 1, 10, 10}, Score: 0.9, ClassID: 2, Class: "car"},
	}}
	p, out := newDetectionProbe(t, detector)
	writeImage(t, filepath.Join(p.Dir, "test_image.jpg"), 32, 32)

	var loaded string
	p.LoadDetector = func(path string) (Detector, error) {
		loaded = path
		return detector, nil
	}

	assert.True(t, p.Run(context.Background()))

	assert.Equal(t, filepath.Join(p.Dir, "yolov8n.onnx"), loaded)
	assert.True(t, detector.closed)
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "Oculus - Test YOLO Detection\n"))
	assert.Contains(t, s, "ONNX Runtime version: 1.21.0\n")
	assert.Contains(t, s, "Model loaded\n")
	assert.True(t, strings.HasSuffix(s, "SUCCESS YOLO Detection is available\n"))
}

func TestNewDetectionProbeFromConfig(t *testing.T) {
	cm := yolo.NewConfigManager(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, cm.LoadOrDefault())
	cm.Config().Detection.ShowResult = false

	p := NewDetectionProbe(&bytes.Buffer{}, cm)

	assert.Equal(t, "yolov8n.onnx", p.ModelPath)
	assert.Equal(t, "https://ultralytics.com/images/bus.jpg", p.ImageURL)
	assert.Equal(t, "test_image.jpg", p.ImagePath)
	assert.Equal(t, "detection_result.png", p.ResultPath)
	assert.Equal(t, float32(0.25), p.Options.ConfThreshold)
	assert.Nil(t, p.Show)
	assert.NotZero(t, p.Client.Timeout)
}
