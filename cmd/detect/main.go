// Command detect loads a YOLOv8 ONNX model and runs it on a sample image.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/Cubiaa/oculus-check/probe"
	"github.com/Cubiaa/oculus-check/yolo"
)

func main() {
	configPath := flag.String("config", yolo.DefaultConfigPath, "YAML configuration file")
	modelPath := flag.String("model", "", "ONNX model (overrides config)")
	imagePath := flag.String("image", "", "test image (overrides config)")
	flag.Parse()

	cm := yolo.NewConfigManager(*configPath)
	if err := cm.LoadOrDefault(); err != nil {
		log.Fatalf("load config: %v", err)
	}

	cfg := &cm.Config().Detection
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}
	if *imagePath != "" {
		cfg.ImagePath = *imagePath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ok := probe.NewDetectionProbe(os.Stdout, cm).Run(ctx)
	stop()
	yolo.DestroyEnvironment()

	if ok {
		fmt.Println("SUCCESS")
		os.Exit(0)
	}
	fmt.Println("FAIL")
	os.Exit(1)
}
