// Command envcheck verifies the Go toolchain and the onnxruntime shared
// library.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Cubiaa/oculus-check/probe/env"
	"github.com/Cubiaa/oculus-check/yolo"
)

func main() {
	configPath := flag.String("config", yolo.DefaultConfigPath, "YAML configuration file")
	flag.Parse()

	cm := yolo.NewConfigManager(*configPath)
	if err := cm.LoadOrDefault(); err != nil {
		log.Fatalf("load config: %v", err)
	}

	if env.New(os.Stdout, cm.Config().Runtime.LibraryPath).Run() {
		fmt.Println("\nReady to start development!")
		os.Exit(0)
	}
	fmt.Println("\nPlease check your installation")
	os.Exit(1)
}
