package tui

// AssignDepths exposes assignDepths for testing.
var AssignDepths = assignDepths

// MaxOffset exposes the private maxOffset method for testing.
func (v *Vterm) MaxOffset() int {
	return v.maxOffset()
}
