package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of change a WatchEvent reports.
type WatchOp int

const (
	// OpWrite reports modified file contents.
	OpWrite WatchOp = iota
	// OpCreate reports a new file or directory.
	OpCreate
	// OpRemove reports a deleted file or directory.
	OpRemove
	// OpRename reports a file or directory moved away.
	OpRename
)

// WatchEvent is a single file system change.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

// Watcher observes a directory tree for changes.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching root recursively until ctx is done or Stop is called.
	Start(ctx context.Context, root string) error
	// Stop releases the watcher. Events ends after Stop.
	Stop() error
	// Events yields changes in arrival order.
	Events() iter.Seq[WatchEvent]
}
