package detector

// Node is the graft node for dependency injection.
// The detector has no dependencies.
type Node struct{}

// NewNode creates a new Node.
func NewNode() *Node {
	return &Node{}
}

// Mode resolves the output mode for a user flag against the detected environment.
func (n *Node) Mode(flag string) (OutputMode, error) {
	user, err := ParseMode(flag)
	if err != nil {
		return ModeAuto, err
	}
	return ResolveMode(DetectEnvironment(), user), nil
}
