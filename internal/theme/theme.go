// Package theme holds the light/dark/auto color mode and the color tokens
// for each appearance.
package theme

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
	Auto  Mode = "auto"
)

// Default is the mode used when nothing is configured.
const Default = Auto

// ParseMode accepts "light", "dark" or "auto" in any case. Empty input
// yields Default.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return Default, nil
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	case Auto:
		return Auto, nil
	}
	return Default, fmt.Errorf("unknown theme %q (want light, dark or auto)", s)
}

// Next is the mode Toggle moves to: light → dark → auto → light.
func (m Mode) Next() Mode {
	switch m {
	case Light:
		return Dark
	case Dark:
		return Auto
	default:
		return Light
	}
}

// Label is the short text shown next to the toggle.
func (m Mode) Label() string {
	switch m {
	case Light:
		return "Light"
	case Dark:
		return "Dark"
	default:
		return "Auto"
	}
}

// State is the process-wide theme. Build one at startup and pass it to
// whatever renders; it is safe for concurrent use.
type State struct {
	mu       sync.RWMutex
	mode     Mode
	hostDark bool
}

func New(initial Mode, hostDark bool) *State {
	if initial == "" {
		initial = Default
	}
	return &State{mode: initial, hostDark: hostDark}
}

// DetectHostDark asks the terminal whether its background is dark.
func DetectHostDark() bool {
	return lipgloss.HasDarkBackground()
}

func (s *State) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *State) SetMode(m Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// Toggle advances the mode and returns the new one.
func (s *State) Toggle() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = s.mode.Next()
	return s.mode
}

// SetHostDark records the host color-scheme signal. It only matters in Auto.
func (s *State) SetHostDark(dark bool) {
	s.mu.Lock()
	s.hostDark = dark
	s.mu.Unlock()
}

func (s *State) IsDark() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode == Dark || (s.mode == Auto && s.hostDark)
}

func (s *State) Palette() Palette {
	if s.IsDark() {
		return DarkPalette
	}
	return LightPalette
}
