package yolo

// YOLOConfig detector-level settings, fixed when the session is created.
type YOLOConfig struct {
	InputSize   int    // square input side, used when InputWidth/InputHeight are unset
	InputWidth  int    // non-square input width
	InputHeight int    // non-square input height
	UseGPU      bool   // try the CUDA execution provider
	GPUDeviceID int    // CUDA device, only read when UseGPU is set
	LibraryPath string // onnxruntime shared library
}

// DetectionOptions per-run detection and drawing options.
type DetectionOptions struct {
	ConfThreshold float32
	IOUThreshold  float32
	DrawBoxes     bool
	DrawLabels    bool
	BoxColor      string
	LabelColor    string
	LineWidth     int
}

// DefaultConfig 640x640 CPU detector.
func DefaultConfig() *YOLOConfig {
	return &YOLOConfig{
		InputSize: 640,
	}
}

// WithInputSize sets a square input and clears any non-square dimensions.
func (c *YOLOConfig) WithInputSize(size int) *YOLOConfig {
	c.InputSize = size
	c.InputWidth = 0
	c.InputHeight = 0
	return c
}

// WithInputDimensions sets a non-square input.
func (c *YOLOConfig) WithInputDimensions(width, height int) *YOLOConfig {
	c.InputWidth = width
	c.InputHeight = height
	c.InputSize = 0
	return c
}

func (c *YOLOConfig) WithGPU(use bool) *YOLOConfig {
	c.UseGPU = use
	return c
}

func (c *YOLOConfig) WithGPUDeviceID(deviceID int) *YOLOConfig {
	c.GPUDeviceID = deviceID
	return c
}

func (c *YOLOConfig) WithLibraryPath(path string) *YOLOConfig {
	c.LibraryPath = path
	return c
}

// inputDimensions returns the model input width and height.
func (c *YOLOConfig) inputDimensions() (int, int) {
	if c.InputWidth > 0 && c.InputHeight > 0 {
		return c.InputWidth, c.InputHeight
	}
	return c.InputSize, c.InputSize
}

// DefaultDetectionOptions matches the ultralytics predict defaults closely
// enough for a smoke test.
func DefaultDetectionOptions() *DetectionOptions {
	return &DetectionOptions{
		ConfThreshold: 0.25,
		IOUThreshold:  0.45,
		DrawBoxes:     true,
		DrawLabels:    true,
		BoxColor:      "red",
		LabelColor:    "white",
		LineWidth:     2,
	}
}

func (o *DetectionOptions) WithConfThreshold(threshold float32) *DetectionOptions {
	o.ConfThreshold = threshold
	return o
}

func (o *DetectionOptions) WithIOUThreshold(threshold float32) *DetectionOptions {
	o.IOUThreshold = threshold
	return o
}

func (o *DetectionOptions) WithDrawBoxes(draw bool) *DetectionOptions {
	o.DrawBoxes = draw
	return o
}

func (o *DetectionOptions) WithDrawLabels(draw bool) *DetectionOptions {
	o.DrawLabels = draw
	return o
}

func (o *DetectionOptions) WithBoxColor(color string) *DetectionOptions {
	o.BoxColor = color
	return o
}

func (o *DetectionOptions) WithLabelColor(color string) *DetectionOptions {
	o.LabelColor = color
	return o
}

func (o *DetectionOptions) WithLineWidth(width int) *DetectionOptions {
	o.LineWidth = width
	return o
}
