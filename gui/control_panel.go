package gui

import (
	"fmt"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/Cubiaa/oculus-check/simulation"
	"github.com/Cubiaa/oculus-check/yolo"
)

const (
	windowTitle      = "Oculus Test"
	videoPlaceholder = "Video flux with detection"
)

// ControlPanel the interface check window: a control panel with simulated
// statistics next to a video placeholder.
type ControlPanel struct {
	app    fyne.App
	window fyne.Window

	sim  *simulation.Simulator
	loop *simulation.Loop

	startButton      *widget.Button
	screenshotButton *widget.Button
	settingsButton   *widget.Button

	fpsLabel        *widget.Label
	objectsLabel    *widget.Label
	processingLabel *widget.Label
	progressBar     *widget.ProgressBar
	logText         *widget.Entry
	videoLabel      *widget.Label
}

// NewControlPanel builds the window on app. Nothing ticks until Start is
// pressed.
func NewControlPanel(a fyne.App, cfg *yolo.InterfaceConfig) *ControlPanel {
	p := &ControlPanel{
		app: a,
		sim: simulation.New(),
	}
	p.loop = simulation.NewLoop(p.sim, cfg.TickInterval, func(s simulation.Stats) {
		fyne.Do(func() { p.applyTick(s) })
	})
	p.sim.OnLog = p.appendLog

	p.createWindow(cfg)
	return p
}

func (p *ControlPanel) createWindow(cfg *yolo.InterfaceConfig) {
	p.window = p.app.NewWindow(windowTitle)
	p.window.Resize(fyne.NewSize(float32(cfg.Width), float32(cfg.Height)))

	p.window.SetContent(container.NewBorder(nil, nil,
		container.NewGridWrap(fyne.NewSize(300, 0), p.createControls()),
		nil,
		p.createVideoPanel(),
	))

	p.window.SetOnClosed(p.loop.Stop)
}

func (p *ControlPanel) createControls() fyne.CanvasObject {
	p.startButton = widget.NewButton("Start", p.toggleDetection)
	p.screenshotButton = widget.NewButton("Screenshot", func() { p.sim.Screenshot() })
	p.settingsButton = widget.NewButton("Settings", p.sim.Settings)

	p.fpsLabel = widget.NewLabel("FPS: 0")
	p.objectsLabel = widget.NewLabel("Objects: 0")
	p.processingLabel = widget.NewLabel("Processing: 0ms")
	p.progressBar = widget.NewProgressBar()
	p.progressBar.Min = 0
	p.progressBar.Max = 100

	p.logText = widget.NewMultiLineEntry()
	p.logText.Wrapping = fyne.TextWrapWord
	p.logText.Disable()

	stats := widget.NewCard("Stats", "", container.NewVBox(
		p.fpsLabel, p.objectsLabel, p.processingLabel, p.progressBar,
	))
	logs := widget.NewCard("Log", "", container.NewGridWrap(fyne.NewSize(280, 150), p.logText))

	return widget.NewCard("Control Panel", "", container.NewVBox(
		p.startButton, p.screenshotButton, p.settingsButton, stats, logs,
	))
}

func (p *ControlPanel) createVideoPanel() fyne.CanvasObject {
	background := canvas.NewRectangle(color.NRGBA{0x1e, 0x1e, 0x1e, 0xff})
	background.StrokeColor = color.NRGBA{0x55, 0x55, 0x55, 0xff}
	background.StrokeWidth = 2
	background.SetMinSize(fyne.NewSize(480, 360))

	p.videoLabel = widget.NewLabelWithStyle(videoPlaceholder, fyne.TextAlignCenter, fyne.TextStyle{})

	return widget.NewCard("Video", "", container.NewStack(background, container.NewCenter(p.videoLabel)))
}

// toggleDetection runs on the UI goroutine.
func (p *ControlPanel) toggleDetection() {
	if p.loop.Toggle() {
		p.startButton.SetText("Stop")
		p.startButton.Importance = widget.DangerImportance
	} else {
		p.startButton.SetText("Start Détection")
		p.startButton.Importance = widget.SuccessImportance
	}
	p.startButton.Refresh()
}

// applyTick runs on the UI goroutine. A tick queued before Stop arrives
// after the detecting flag is cleared and is dropped.
func (p *ControlPanel) applyTick(s simulation.Stats) {
	if !p.sim.Detecting() {
		return
	}
	p.applyStats(s)
}

func (p *ControlPanel) applyStats(s simulation.Stats) {
	p.fpsLabel.SetText(fmt.Sprintf("FPS: %d", s.FPS))
	p.objectsLabel.SetText(fmt.Sprintf("Objects detected: %d", s.Objects))
	p.processingLabel.SetText(fmt.Sprintf("Time process: %dms", s.ProcessingMs))
	p.progressBar.SetValue(float64(s.Progress))
	p.videoLabel.SetText(simulation.StatusText(s))
}

// appendLog adds line and keeps the newest line in view.
func (p *ControlPanel) appendLog(line string) {
	p.logText.Append(line + "\n")
	p.logText.CursorRow = strings.Count(p.logText.Text, "\n")
	p.logText.Refresh()
}

func (p *ControlPanel) Window() fyne.Window {
	return p.window
}

// Run shows the window and blocks until the app quits.
func (p *ControlPanel) Run() {
	defer p.loop.Stop()
	p.window.ShowAndRun()
}
