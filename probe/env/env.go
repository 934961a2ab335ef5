// Package env checks that the Go toolchain and the onnxruntime shared
// library are usable. It links neither OpenCV nor Fyne, so it still runs
// on a machine where those are missing.
package env

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/Cubiaa/oculus-check/yolo"
)

// Check a required dependency; Version fails when it is unusable.
type Check struct {
	Name    string
	Version func() (string, error)
}

// GoCheck reports the Go runtime.
func GoCheck() Check {
	return Check{
		Name: "Go version",
		Version: func() (string, error) {
			return fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH), nil
		},
	}
}

// OnnxRuntimeCheck loads the onnxruntime shared library.
func OnnxRuntimeCheck(libraryPath string) Check {
	return Check{
		Name: "ONNX Runtime version",
		Version: func() (string, error) {
			return yolo.RuntimeVersion(libraryPath)
		},
	}
}

// StackModules third-party modules listed after the checks.
var StackModules = []string{
	"github.com/yalue/onnxruntime_go",
	"gocv.io/x/gocv",
	"fyne.io/fyne/v2",
	"github.com/AlexEidt/Vidio",
	"github.com/disintegration/imaging",
}

// Probe runs Checks in order and stops at the first failure.
type Probe struct {
	Out     io.Writer
	Checks  []Check
	Modules []string

	// BuildInfo defaults to debug.ReadBuildInfo.
	BuildInfo func() (*debug.BuildInfo, bool)
}

func New(out io.Writer, libraryPath string) *Probe {
	return &Probe{
		Out:       out,
		Checks:    []Check{GoCheck(), OnnxRuntimeCheck(libraryPath)},
		Modules:   StackModules,
		BuildInfo: debug.ReadBuildInfo,
	}
}

func (p *Probe) Run() bool {
	fmt.Fprintln(p.Out, "Go environment ready!")

	for _, check := range p.Checks {
		version, err := check.Version()
		if err != nil {
			fmt.Fprintf(p.Out, "Import error: %v\n", err)
			return false
		}
		fmt.Fprintf(p.Out, "%s: %s\n", check.Name, version)
	}

	p.printModules()

	fmt.Fprintln(p.Out, "\nEnvironment setup successful!")
	return true
}

// printModules lists the linked versions of Modules; informational only.
func (p *Probe) printModules() {
	if len(p.Modules) == 0 || p.BuildInfo == nil {
		return
	}
	info, ok := p.BuildInfo()
	if !ok {
		return
	}

	versions := make(map[string]string, len(info.Deps))
	for _, dep := range info.Deps {
		v := dep.Version
		if dep.Replace != nil {
			v = dep.Replace.Version
		}
		versions[dep.Path] = v
	}

	for _, module := range p.Modules {
		v, ok := versions[module]
		if !ok {
			v = "not linked"
		}
		fmt.Fprintf(p.Out, "  %s %s\n", module, v)
	}
}
