package yolo

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read by every command unless -config is given.
const DefaultConfigPath = "oculus.yaml"

// AppConfig configuration shared by the oculus check commands.
type AppConfig struct {
	Runtime   RuntimeConfig   `yaml:"runtime"`
	Detection DetectionConfig `yaml:"detection"`
	Webcam    WebcamConfig    `yaml:"webcam"`
	Interface InterfaceConfig `yaml:"interface"`
}

// RuntimeConfig onnxruntime settings.
type RuntimeConfig struct {
	LibraryPath string `yaml:"library_path"`
	UseGPU      bool   `yaml:"use_gpu"`
	GPUDeviceID int    `yaml:"gpu_device_id"`
	InputSize   int    `yaml:"input_size"`
}

// DetectionConfig detection probe settings.
type DetectionConfig struct {
	ModelPath       string        `yaml:"model_path"`
	ClassesPath     string        `yaml:"classes_path"`
	ImageURL        string        `yaml:"image_url"`
	ImagePath       string        `yaml:"image_path"`
	ResultPath      string        `yaml:"result_path"`
	ConfThreshold   float32       `yaml:"conf_threshold"`
	IOUThreshold    float32       `yaml:"iou_threshold"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	ShowResult      bool          `yaml:"show_result"`
}

// WebcamConfig webcam probe settings.
type WebcamConfig struct {
	Backend string `yaml:"backend"`
	Devices int    `yaml:"devices"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
}

// InterfaceConfig interface smoke test settings.
type InterfaceConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Width        int           `yaml:"width"`
	Height       int           `yaml:"height"`
}

// DefaultAppConfig values used when no configuration file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Runtime: RuntimeConfig{
			InputSize: 640,
		},
		Detection: DetectionConfig{
			ModelPath:       "yolov8n.onnx",
			ImageURL:        "https://ultralytics.com/images/bus.jpg",
			ImagePath:       "test_image.jpg",
			ResultPath:      "detection_result.png",
			ConfThreshold:   0.25,
			IOUThreshold:    0.45,
			DownloadTimeout: 30 * time.Second,
			ShowResult:      true,
		},
		Webcam: WebcamConfig{
			Backend: "gocv",
			Devices: 5,
			Width:   640,
			Height:  480,
		},
		Interface: InterfaceConfig{
			TickInterval: 100 * time.Millisecond,
			Width:        800,
			Height:       600,
		},
	}
}

// ConfigManager loads and saves AppConfig as YAML.
type ConfigManager struct {
	config *AppConfig
	path   string
}

func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		path: configPath,
	}
}

// LoadConfig reads the file over the defaults, so a partial file only
// overrides the keys it names.
func (cm *ConfigManager) LoadConfig() error {
	data, err := os.ReadFile(cm.path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", cm.path, err)
	}

	config := DefaultAppConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parse config %s: %w", cm.path, err)
	}

	cm.config = config
	return nil
}

// LoadOrDefault is LoadConfig that treats a missing file as empty.
func (cm *ConfigManager) LoadOrDefault() error {
	err := cm.LoadConfig()
	if errors.Is(err, os.ErrNotExist) {
		cm.config = DefaultAppConfig()
		return nil
	}
	return err
}

func (cm *ConfigManager) SaveConfig() error {
	data, err := yaml.Marshal(cm.Config())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cm.path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", cm.path, err)
	}

	return nil
}

// CreateDefaultConfig writes the defaults to the manager's path.
func (cm *ConfigManager) CreateDefaultConfig() error {
	cm.config = DefaultAppConfig()
	return cm.SaveConfig()
}

func (cm *ConfigManager) Config() *AppConfig {
	if cm.config == nil {
		cm.config = DefaultAppConfig()
	}
	return cm.config
}

// GetYOLOConfig detector settings derived from the runtime section.
func (cm *ConfigManager) GetYOLOConfig() *YOLOConfig {
	rt := cm.Config().Runtime
	config := DefaultConfig().
		WithGPU(rt.UseGPU).
		WithGPUDeviceID(rt.GPUDeviceID).
		WithLibraryPath(rt.LibraryPath)
	if rt.InputSize > 0 {
		config.WithInputSize(rt.InputSize)
	}
	return config
}

// GetDetectionOptions thresholds from the detection section.
func (cm *ConfigManager) GetDetectionOptions() *DetectionOptions {
	d := cm.Config().Detection
	return DefaultDetectionOptions().
		WithConfThreshold(d.ConfThreshold).
		WithIOUThreshold(d.IOUThreshold)
}

func (cm *ConfigManager) GetWebcamConfig() *WebcamConfig {
	return &cm.Config().Webcam
}

func (cm *ConfigManager) GetInterfaceConfig() *InterfaceConfig {
	return &cm.Config().Interface
}
