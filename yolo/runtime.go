package yolo

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// onnxruntime allows one environment per process.
var (
	ortInitialized bool
	ortMutex       sync.Mutex
)

// InitializeRuntime loads the onnxruntime shared library and creates the
// environment. Calls after the first successful one are no-ops.
func InitializeRuntime(libraryPath string) error {
	ortMutex.Lock()
	defer ortMutex.Unlock()

	if ortInitialized {
		return nil
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	ortInitialized = true
	return nil
}

// RuntimeVersion initializes the runtime if needed and reports the version
// of the loaded library.
func RuntimeVersion(libraryPath string) (string, error) {
	if err := InitializeRuntime(libraryPath); err != nil {
		return "", err
	}
	return ort.GetVersion(), nil
}

// DestroyEnvironment releases the environment once every detector is closed.
func DestroyEnvironment() {
	ortMutex.Lock()
	defer ortMutex.Unlock()
	if ortInitialized {
		ort.DestroyEnvironment()
		ortInitialized = false
	}
}
