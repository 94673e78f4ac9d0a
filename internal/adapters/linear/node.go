package linear

import (
	"io"

	"github.com/muesli/termenv"
)

// Node builds renderers for the app.
type Node struct{}

// NewNode creates a new Node.
func NewNode() *Node {
	return &Node{}
}

// Renderer returns a Renderer on the given streams using profile.
// Nil writers default to the process streams.
func (n *Node) Renderer(stdout, stderr io.Writer, profile termenv.Profile) *Renderer {
	return NewRenderer(stdout, stderr).WithProfile(profile)
}
