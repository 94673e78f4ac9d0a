// Package patch applies exact-text edits to files inside a sandbox.
package patch

import (
	"context"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
)

// Applier replaces snippets of code in sandbox files.
type Applier struct {
	logger ports.Logger
	dmp    *diffmatchpatch.DiffMatchPatch
}

// NewApplier creates a new Applier.
func NewApplier(logger ports.Logger) *Applier {
	return &Applier{
		logger: logger,
		dmp:    diffmatchpatch.New(),
	}
}

// Apply replaces the first occurrence of original in the file at path with replacement.
//
// Both snippets must be non-empty. When original does not occur verbatim the file is
// left untouched and a *domain.NoMatchError carrying an alignment diagnostic is returned.
func (a *Applier) Apply(ctx context.Context, sb ports.Sandbox, path, original, replacement string) error {
	if original == "" || replacement == "" {
		return zerr.With(zerr.Wrap(domain.ErrEmptySnippet, path), "path", path)
	}

	content, err := sb.ReadFile(ctx, path)
	if err != nil {
		return err
	}

	idx := strings.Index(content, original)
	if idx < 0 {
		return &domain.NoMatchError{
			Path:       path,
			Diagnostic: Align(content, original),
		}
	}

	updated := content[:idx] + replacement + content[idx+len(original):]

	added, removed := a.diffStat(original, replacement)
	a.logger.Info(fmt.Sprintf("sandbox %s: edit %s (+%d -%d)", sb.ID(), path, added, removed))

	return sb.WriteFile(ctx, path, updated)
}

// diffStat counts added and removed lines between two snippets.
func (a *Applier) diffStat(before, after string) (added, removed int) {
	chars1, chars2, lines := a.dmp.DiffLinesToChars(before, after)
	diffs := a.dmp.DiffCharsToLines(a.dmp.DiffMain(chars1, chars2, false), lines)

	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		if !strings.HasSuffix(d.Text, "\n") {
			n++
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			removed += n
		case diffmatchpatch.DiffEqual:
		}
	}
	return added, removed
}
