package yolo

import (
	"fmt"
	"image"
	"runtime"
	"sort"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"
)

// Detection one box produced by the model.
type Detection struct {
	Box     [4]float32 // x1, y1, x2, y2 in source image pixels
	Score   float32
	ClassID int
	Class   string
}

// YOLO a YOLOv8 ONNX detector.
type YOLO struct {
	config        *YOLOConfig
	session       *ort.DynamicAdvancedSession
	runtimeConfig *DetectionOptions
	classes       []string

	inputShape  ort.Shape
	outputShape ort.Shape
}

// NewYOLO loads modelPath. classesPath may be empty, in which case the COCO
// label set is used.
func NewYOLO(modelPath, classesPath string, config ...*YOLOConfig) (*YOLO, error) {
	var yoloConfig *YOLOConfig
	if len(config) > 0 && config[0] != nil {
		yoloConfig = config[0]
	} else {
		yoloConfig = DefaultConfig()
	}

	classes := COCOClasses
	if classesPath != "" {
		loaded, err := LoadClasses(classesPath)
		if err != nil {
			return nil, err
		}
		classes = loaded
	}

	if err := InitializeRuntime(yoloConfig.LibraryPath); err != nil {
		return nil, err
	}

	sessionOptions, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer sessionOptions.Destroy()

	threads := runtime.NumCPU()
	if threads > 8 {
		threads = threads * 3 / 4
	}
	if err := sessionOptions.SetIntraOpNumThreads(threads); err != nil {
		fmt.Printf("⚠️  Could not set intra-op threads: %v\n", err)
	}
	if err := sessionOptions.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		fmt.Printf("⚠️  Could not enable graph optimizations: %v\n", err)
	}

	if yoloConfig.UseGPU {
		appendCUDAProvider(sessionOptions, yoloConfig.GPUDeviceID)
	}

	width, height := yoloConfig.inputDimensions()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid input size %dx%d", width, height)
	}

	inputInfos, outputInfos, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", modelPath, err)
	}
	if len(inputInfos) == 0 || len(outputInfos) == 0 {
		return nil, fmt.Errorf("model %s has no inputs or outputs", modelPath)
	}
	if err := checkOutputShape(outputInfos[0].Dimensions, len(classes)); err != nil {
		return nil, fmt.Errorf("model %s: %w", modelPath, err)
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{inputInfos[0].Name}, []string{outputInfos[0].Name}, sessionOptions)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelPath, err)
	}

	return &YOLO{
		config:      yoloConfig,
		session:     session,
		classes:     classes,
		inputShape:  ort.NewShape(1, 3, int64(height), int64(width)),
		outputShape: ort.NewShape(1, int64(4+len(classes)), int64(anchorCount(width, height))),
	}, nil
}

// appendCUDAProvider falls back to the CPU provider on any failure; a
// runtime built without CUDA panics instead of returning an error.
func appendCUDAProvider(options *ort.SessionOptions, deviceID int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("⚠️  CUDA provider panicked: %v, using CPU\n", r)
		}
	}()

	cudaOptions, err := ort.NewCUDAProviderOptions()
	if err != nil {
		fmt.Printf("⚠️  CUDA unavailable: %v, using CPU\n", err)
		return
	}
	defer cudaOptions.Destroy()

	err = cudaOptions.Update(map[string]string{"device_id": fmt.Sprintf("%d", deviceID)})
	if err == nil {
		err = options.AppendExecutionProviderCUDA(cudaOptions)
	}
	if err != nil {
		fmt.Printf("⚠️  CUDA unavailable: %v, using CPU\n", err)
		return
	}
	fmt.Println("✅ CUDA execution provider enabled")
}

// checkOutputShape rejects a [1, 4+C, anchors] output whose C differs from
// the label set. Dynamic (-1) dimensions are not checked.
func checkOutputShape(dims ort.Shape, classes int) error {
	if len(dims) != 3 {
		return fmt.Errorf("output has %d dimensions, want 3", len(dims))
	}
	if dims[1] > 0 && int(dims[1]) != 4+classes {
		return fmt.Errorf("output has %d classes but %d class names are configured", dims[1]-4, classes)
	}
	return nil
}

// anchorCount number of candidate boxes of a YOLOv8 head (strides 8, 16, 32).
func anchorCount(width, height int) int {
	total := 0
	for _, stride := range []int{8, 16, 32} {
		total += (width / stride) * (height / stride)
	}
	return total
}

func (y *YOLO) Close() {
	if y.session != nil {
		y.session.Destroy()
		y.session = nil
	}
}

func (y *YOLO) SetRuntimeConfig(options *DetectionOptions) {
	y.runtimeConfig = options
}

func (y *YOLO) options() *DetectionOptions {
	if y.runtimeConfig == nil {
		y.runtimeConfig = DefaultDetectionOptions()
	}
	return y.runtimeConfig
}

// Classes label set the detector maps class ids to.
func (y *YOLO) Classes() []string {
	return y.classes
}

// DetectImage runs Detect on the image file at imagePath.
func (y *YOLO) DetectImage(imagePath string) ([]Detection, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", imagePath, err)
	}
	return y.Detect(img)
}

// Detect runs one inference pass and returns the boxes that survive the
// confidence threshold and NMS, in source image coordinates.
func (y *YOLO) Detect(img image.Image) ([]Detection, error) {
	if y.session == nil {
		return nil, fmt.Errorf("detector closed")
	}
	opts := y.options()

	width, height := y.config.inputDimensions()
	inputTensor, err := ort.NewTensor(y.inputShape, preprocess(img, width, height))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](y.outputShape)
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := y.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}

	detections := parseDetections(outputTensor.GetData(), outputTensor.GetShape(), opts.ConfThreshold, y.classes)

	bounds := img.Bounds()
	scaleX := float32(bounds.Dx()) / float32(width)
	scaleY := float32(bounds.Dy()) / float32(height)
	for i := range detections {
		detections[i].Box[0] *= scaleX
		detections[i].Box[1] *= scaleY
		detections[i].Box[2] *= scaleX
		detections[i].Box[3] *= scaleY
	}

	return nonMaxSuppression(detections, opts.IOUThreshold), nil
}

// preprocess resizes img to the model input and lays it out as planar
// RGB [1, 3, height, width] normalised to [0, 1].
func preprocess(img image.Image, width, height int) []float32 {
	resized := imaging.Resize(img, width, height, imaging.Linear)

	plane := width * height
	data := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := resized.PixOffset(x, y)
			data[0*plane+y*width+x] = float32(resized.Pix[i]) / 255.0
			data[1*plane+y*width+x] = float32(resized.Pix[i+1]) / 255.0
			data[2*plane+y*width+x] = float32(resized.Pix[i+2]) / 255.0
		}
	}

	return data
}

// parseDetections decodes a [1, 4+classes, anchors] output, keeping the best
// class per anchor when it reaches confThreshold.
func parseDetections(output []float32, shape []int64, confThreshold float32, classes []string) []Detection {
	if len(shape) != 3 || shape[0] != 1 {
		return nil
	}

	numFeatures := int(shape[1])
	numAnchors := int(shape[2])
	numClasses := numFeatures - 4
	if numClasses <= 0 || len(output) < numFeatures*numAnchors {
		return nil
	}

	var detections []Detection
	for i := 0; i < numAnchors; i++ {
		var bestScore float32
		bestID := 0
		for c := 0; c < numClasses; c++ {
			score := output[(4+c)*numAnchors+i]
			if score > bestScore {
				bestScore = score
				bestID = c
			}
		}

		if bestScore < confThreshold {
			continue
		}

		cx := output[0*numAnchors+i]
		cy := output[1*numAnchors+i]
		w := output[2*numAnchors+i]
		h := output[3*numAnchors+i]

		className := "unknown"
		if bestID < len(classes) {
			className = classes[bestID]
		}

		detections = append(detections, Detection{
			Box:     [4]float32{cx - w/2, cy - h/2, cx + w/2, cy + h/2},
			Score:   bestScore,
			ClassID: bestID,
			Class:   className,
		})
	}

	return detections
}

func iou(box1, box2 [4]float32) float32 {
	interXMin := max(box1[0], box2[0])
	interYMin := max(box1[1], box2[1])
	interXMax := min(box1[2], box2[2])
	interYMax := min(box1[3], box2[3])

	interArea := max(0, interXMax-interXMin) * max(0, interYMax-interYMin)
	area1 := (box1[2] - box1[0]) * (box1[3] - box1[1])
	area2 := (box2[2] - box2[0]) * (box2[3] - box2[1])

	return interArea / (area1 + area2 - interArea + 1e-6)
}

// nonMaxSuppression class-aware greedy NMS, highest score first.
func nonMaxSuppression(detections []Detection, iouThreshold float32) []Detection {
	if len(detections) == 0 {
		return detections
	}

	sort.Slice(detections, func(i, j int) bool {
		return detections[i].Score > detections[j].Score
	})

	var keep []Detection
	for _, current := range detections {
		suppressed := false
		for _, kept := range keep {
			if kept.ClassID == current.ClassID && iou(current.Box, kept.Box) > iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			keep = append(keep, current)
		}
	}

	return keep
}
