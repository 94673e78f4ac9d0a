// Package detector provides environment detection for output mode selection.
package detector

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// OutputMode represents the rendering mode for the application.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeRich renders colored progress for an interactive terminal.
	ModeRich
	// ModePlain renders uncolored progress for CI logs and pipes.
	ModePlain
	// ModeJSON disables progress rendering and logs as JSON lines.
	ModeJSON
)

// ErrUnknownMode is returned when an output mode flag is not recognized.
var ErrUnknownMode = zerr.New("unknown output mode")

// String returns the flag value of the mode.
func (m OutputMode) String() string {
	switch m {
	case ModeRich:
		return "rich"
	case ModePlain:
		return "plain"
	case ModeJSON:
		return "json"
	default:
		return "auto"
	}
}

// ParseMode parses a user-supplied mode flag. An empty flag is ModeAuto.
func ParseMode(flag string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "", "auto":
		return ModeAuto, nil
	case "rich", "tui":
		return ModeRich, nil
	case "plain", "linear", "ci":
		return ModePlain, nil
	case "json":
		return ModeJSON, nil
	default:
		return ModeAuto, zerr.With(zerr.Wrap(ErrUnknownMode, flag), "mode", flag)
	}
}

// DetectEnvironment returns the recommended output mode based on the environment.
// It checks if stdout is a TTY and if CI environment variables are set.
func DetectEnvironment() OutputMode {
	return detect(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv)
}

func detect(isTTY bool, getenv func(string) string) OutputMode {
	ci := getenv("CI")
	isCI := ci == "true" || ci == "1"
	if !isTTY || isCI {
		return ModePlain
	}
	return ModeRich
}

// ResolveMode applies the user's explicit choice over auto-detection.
func ResolveMode(autoDetected, user OutputMode) OutputMode {
	if user == ModeAuto {
		return autoDetected
	}
	return user
}

// ColorProfile returns the color profile for the mode. NO_COLOR always disables colors.
func (m OutputMode) ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" || m != ModeRich {
		return termenv.Ascii
	}
	return termenv.ANSI
}
