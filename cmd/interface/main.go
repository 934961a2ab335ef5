// Command interface opens the oculus control panel with simulated detection
// statistics.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"fyne.io/fyne/v2/app"

	"github.com/Cubiaa/oculus-check/gui"
	"github.com/Cubiaa/oculus-check/yolo"
)

func main() {
	configPath := flag.String("config", yolo.DefaultConfigPath, "YAML configuration file")
	flag.Parse()

	cm := yolo.NewConfigManager(*configPath)
	if err := cm.LoadOrDefault(); err != nil {
		log.Fatalf("load config: %v", err)
	}

	fmt.Println("🎯 OCULUS - Test Interface (Fyne)")
	fmt.Println(strings.Repeat("=", 50))

	if run(cm.GetInterfaceConfig()) {
		fmt.Println("\n🎉 SUCCESS !")
		os.Exit(0)
	}
	fmt.Println("\n💥 ERROR")
	os.Exit(1)
}

// run blocks until the window is closed. A panic from the event loop is
// reported as failure.
func run(cfg *yolo.InterfaceConfig) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("❌ Error interface: %v\n", r)
			ok = false
		}
	}()

	panel := gui.NewControlPanel(app.New(), cfg)
	fmt.Println("✅ Interface started")
	panel.Run()
	fmt.Println("✅ Interface closed")
	return true
}
