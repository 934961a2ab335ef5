package gui

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cubiaa/oculus-check/simulation"
	"github.com/Cubiaa/oculus-check/yolo"
)

func newTestPanel(t *testing.T) *ControlPanel {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	cfg := yolo.DefaultAppConfig().Interface
	cfg.TickInterval = time.Hour

	p := NewControlPanel(a, &cfg)
	t.Cleanup(p.loop.Stop)
	return p
}

func TestControlPanelInitialState(t *testing.T) {
	p := newTestPanel(t)

	assert.Equal(t, "Oculus Test", p.Window().Title())
	assert.Equal(t, "Start", p.startButton.Text)
	assert.Equal(t, "FPS: 0", p.fpsLabel.Text)
	assert.Equal(t, "Video flux with detection", p.videoLabel.Text)
	assert.True(t, p.logText.Disabled())
	assert.False(t, p.loop.Running())
}

func TestStartStopToggle(t *testing.T) {
	p := newTestPanel(t)

	test.Tap(p.startButton)
	assert.True(t, p.sim.Detecting())
	assert.True(t, p.loop.Running())
	assert.Equal(t, "Stop", p.startButton.Text)
	assert.Equal(t, widget.DangerImportance, p.startButton.Importance)

	test.Tap(p.startButton)
	assert.False(t, p.sim.Detecting())
	assert.False(t, p.loop.Running())
	assert.Equal(t, "Start Détection", p.startButton.Text)
	assert.Equal(t, widget.SuccessImportance, p.startButton.Importance)

	assert.Equal(t, "[0000] Detection started\n[0000] Detection stopped\n", p.logText.Text)
}

func TestApplyStats(t *testing.T) {
	p := newTestPanel(t)

	p.applyStats(simulation.StatsFor(7))

	assert.Equal(t, "FPS: 22", p.fpsLabel.Text)
	assert.Equal(t, "Objects detected: 8", p.objectsLabel.Text)
	assert.Equal(t, "Time process: 82ms", p.processingLabel.Text)
	assert.InDelta(t, 21.0, p.progressBar.Value, 1e-9)
	assert.Equal(t, "DETECTION ACTIV\n\nFrame: 7\nObjets: 8\nFPS: 22", p.videoLabel.Text)
}

func TestScreenshotAndSettingsButtonsLog(t *testing.T) {
	p := newTestPanel(t)

	test.Tap(p.screenshotButton)
	test.Tap(p.settingsButton)

	assert.Equal(t, "[0000] screenshot_0000.jpg saved\n[0000] Settings\n", p.logText.Text)
	require.Len(t, p.sim.Lines(), 2)
	assert.Equal(t, 2, p.logText.CursorRow)
}

func TestTickAfterStopIsDropped(t *testing.T) {
	p := newTestPanel(t)

	test.Tap(p.startButton)
	p.applyTick(simulation.StatsFor(3))
	assert.Equal(t, "FPS: 18", p.fpsLabel.Text)

	test.Tap(p.startButton)
	p.applyTick(simulation.StatsFor(4))
	assert.Equal(t, "FPS: 18", p.fpsLabel.Text)
	assert.Equal(t, "Objects detected: 4", p.objectsLabel.Text)
	assert.Equal(t, "Start Détection", p.startButton.Text)
}
