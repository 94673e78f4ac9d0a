// Package output builds the termenv outputs shared by the logger and the
// interactive renderer.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Profile is the color profile for log output: Ascii when NO_COLOR is set,
// otherwise whatever the environment advertises.
func Profile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// New returns an output on w rendering with profile. A nil w means stderr.
//
// The output always claims a TTY so that profile alone decides whether
// escape sequences are written, including when w is a pipe or a buffer.
func New(w io.Writer, profile termenv.Profile) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(profile), termenv.WithTTY(true))
}
