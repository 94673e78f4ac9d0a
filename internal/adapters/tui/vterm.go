package tui

import (
	"bytes"
	"sync"

	"github.com/vito/midterm"
)

// Vterm is a scrollable virtual terminal holding one task's output.
// Offset is the first visible row.
type Vterm struct {
	vt      *midterm.Terminal
	Offset  int
	Height  int
	Width   int
	Prefix  string
	viewBuf bytes.Buffer
	mu      sync.Mutex
}

// NewVterm creates an empty Vterm.
func NewVterm() *Vterm {
	return &Vterm{vt: midterm.NewAutoResizingTerminal()}
}

// Write feeds raw output, ANSI sequences included, to the terminal. A view
// scrolled to the bottom keeps following new output.
func (v *Vterm) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.atBottom()
	n, err := v.vt.Write(p)
	if follow {
		v.Offset = v.maxOffset()
	}
	return n, err
}

// SetHeight sets the number of visible rows, at least one.
func (v *Vterm) SetHeight(h int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.atBottom()
	v.Height = max(h, 1)
	if follow {
		v.Offset = v.maxOffset()
	}
	v.clamp()
}

// SetWidth sets the visible width. Prefix is drawn inside it.
func (v *Vterm) SetWidth(w int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.Width = max(w, 1)
	v.vt.ResizeX(max(v.Width-len(v.Prefix), 1))
}

// UsedHeight returns the number of rows written so far.
func (v *Vterm) UsedHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vt.UsedHeight()
}

// Scroll moves the view for a navigation key and reports whether the key
// was one.
func (v *Vterm) Scroll(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch key {
	case "up", "k":
		v.Offset--
	case "down", "j":
		v.Offset++
	case "pgup":
		v.Offset -= v.Height
	case "pgdown":
		v.Offset += v.Height
	case "home":
		v.Offset = 0
	case "end":
		v.Offset = v.maxOffset()
	default:
		return false
	}
	v.clamp()
	return true
}

// View renders the visible rows.
func (v *Vterm) View() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.clamp()
	v.viewBuf.Reset()
	for i := range v.Height {
		row := v.Offset + i
		if row >= v.vt.UsedHeight() {
			break
		}
		if i > 0 {
			_ = v.viewBuf.WriteByte('\n')
		}
		_, _ = v.viewBuf.WriteString(v.Prefix)
		_ = v.vt.RenderLine(&v.viewBuf, row)
	}
	return v.viewBuf.String()
}

func (v *Vterm) atBottom() bool {
	return v.Offset >= v.maxOffset()
}

func (v *Vterm) clamp() {
	v.Offset = min(max(v.Offset, 0), v.maxOffset())
}

func (v *Vterm) maxOffset() int {
	return max(v.vt.UsedHeight()-v.Height, 0)
}
