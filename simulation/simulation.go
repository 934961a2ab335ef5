// Package simulation drives the cosmetic detection statistics shown by the
// interface check. Nothing here touches a camera or a model.
package simulation

import (
	"fmt"
	"sync"
)

// Stats display values for one frame index.
type Stats struct {
	Frame        uint64
	FPS          int
	Objects      int
	ProcessingMs int
	Progress     int
}

// StatsFor derives the display values of frame n.
func StatsFor(n uint64) Stats {
	return Stats{
		Frame:        n,
		FPS:          15 + int(n%10),
		Objects:      int(n%8) + 1,
		ProcessingMs: 75 + int(n%30),
		Progress:     int((n * 3) % 100),
	}
}

// StatusText block shown in the video placeholder while detecting.
func StatusText(s Stats) string {
	return fmt.Sprintf("DETECTION ACTIV\n\nFrame: %d\nObjets: %d\nFPS: %d", s.Frame, s.Objects, s.FPS)
}

// ScreenshotName placeholder file name for frame n.
func ScreenshotName(n uint64) string {
	return fmt.Sprintf("screenshot_%04d.jpg", n)
}

// Simulator holds the frame counter and the detecting toggle. The log is
// append-only and lives for the process lifetime.
type Simulator struct {
	mu        sync.Mutex
	frame     uint64
	detecting bool
	lines     []string

	// OnLog, when set, receives every appended log line.
	OnLog func(line string)
}

func New() *Simulator {
	return &Simulator{}
}

// Toggle flips the detecting state and returns the new one.
func (s *Simulator) Toggle() bool {
	s.mu.Lock()
	s.detecting = !s.detecting
	detecting := s.detecting
	s.mu.Unlock()

	if detecting {
		s.Log("Detection started")
	} else {
		s.Log("Detection stopped")
	}
	return detecting
}

// Tick advances the frame counter. It is a no-op returning false while
// not detecting.
func (s *Simulator) Tick() (Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.detecting {
		return StatsFor(s.frame), false
	}
	s.frame++
	return StatsFor(s.frame), true
}

// Screenshot logs the placeholder file name of the current frame and
// returns it. No image is written.
func (s *Simulator) Screenshot() string {
	s.mu.Lock()
	name := ScreenshotName(s.frame)
	line, onLog := s.appendLocked(name + " saved")
	s.mu.Unlock()

	if onLog != nil {
		onLog(line)
	}
	return name
}

func (s *Simulator) Settings() {
	s.Log("Settings")
}

// Log appends msg prefixed with the current frame index and returns the line.
func (s *Simulator) Log(msg string) string {
	s.mu.Lock()
	line, onLog := s.appendLocked(msg)
	s.mu.Unlock()

	if onLog != nil {
		onLog(line)
	}
	return line
}

func (s *Simulator) appendLocked(msg string) (string, func(string)) {
	line := fmt.Sprintf("[%04d] %s", s.frame, msg)
	s.lines = append(s.lines, line)
	return line, s.OnLog
}

func (s *Simulator) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *Simulator) FrameCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

func (s *Simulator) Detecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detecting
}

// Stats values of the current frame.
func (s *Simulator) Stats() Stats {
	return StatsFor(s.FrameCount())
}
