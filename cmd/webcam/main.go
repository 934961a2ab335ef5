// Command webcam checks OpenCV, finds a capture device and shows its frames
// until 'q' is pressed.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/Cubiaa/oculus-check/probe"
	"github.com/Cubiaa/oculus-check/yolo"
)

func main() {
	configPath := flag.String("config", yolo.DefaultConfigPath, "YAML configuration file")
	backend := flag.String("backend", "", "capture backend: gocv or vidio (overrides config)")
	flag.Parse()

	cm := yolo.NewConfigManager(*configPath)
	if err := cm.LoadOrDefault(); err != nil {
		log.Fatalf("load config: %v", err)
	}

	cfg := cm.GetWebcamConfig()
	if *backend != "" {
		cfg.Backend = *backend
	}

	webcam, err := probe.NewWebcamProbe(os.Stdout, cfg)
	if err != nil {
		log.Fatalf("webcam probe: %v", err)
	}

	if !webcam.Run(os.Stdin) {
		os.Exit(1)
	}
}
