package config

import (
	"fmt"
	"strings"
)

// Mode is a tri-state switch for terminal features.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeOn   Mode = "on"
	ModeOff  Mode = "off"
)

// ParseMode accepts auto|on|off; the empty string means auto.
func ParseMode(value string) (Mode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return ModeAuto, nil
	case "on":
		return ModeOn, nil
	case "off":
		return ModeOff, nil
	default:
		return "", fmt.Errorf("invalid mode %q (expected auto|on|off)", value)
	}
}

// Enabled resolves the mode; tty decides auto.
func (m Mode) Enabled(tty bool) bool {
	switch m {
	case ModeOn:
		return true
	case ModeOff:
		return false
	default:
		return tty
	}
}
