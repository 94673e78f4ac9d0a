// Package codesearch selects code related to a task by lexical term overlap.
package codesearch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unicode"

	"go.trai.ch/patchwork/internal/adapters/fs"
	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	windowLines = 20
	maxFileSize = 256 << 10
	concurrency = 8
	minTermLen  = 3
)

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true, "this": true,
	"from": true, "into": true, "each": true, "when": true, "then": true, "else": true,
	"return": true, "should": true, "must": true, "will": true, "are": true, "not": true,
}

// Searcher implements ports.CodeContextProvider.
type Searcher struct {
	walker      *fs.Walker
	maxFiles    int
	maxSnippets int
	ignore      []string
}

// New creates a Searcher.
func New(walker *fs.Walker, settings domain.ContextSettings) *Searcher {
	return &Searcher{
		walker:      walker,
		maxFiles:    max(settings.MaxFiles, 0),
		maxSnippets: max(settings.MaxSnippetsPerFile, 1),
		ignore:      settings.Ignore,
	}
}

type fileMatch struct {
	path     string
	score    int
	hits     int
	snippets []ports.Snippet
}

// SelectRelatedCode implements ports.CodeContextProvider.
// Files are ranked by the number of distinct query terms they contain,
// then by total hits, then by path.
func (s *Searcher) SelectRelatedCode(ctx context.Context, root, query string, exclude []string) ([]ports.Snippet, error) {
	terms := Terms(query)
	if len(terms) == 0 || s.maxFiles == 0 {
		return nil, nil
	}

	skip := make(map[string]bool, len(exclude))
	for _, p := range exclude {
		skip[filepath.ToSlash(filepath.Clean(p))] = true
	}

	var (
		mu      sync.Mutex
		matches []fileMatch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for rel := range s.walker.WalkFiles(root, s.ignore) {
		if skip[rel] {
			continue
		}
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, ok := s.scoreFile(root, rel, terms)
			if !ok {
				return nil
			}
			mu.Lock()
			matches = append(matches, m)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "select related code"), "root", root)
	}
	if err := ctx.Err(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "select related code"), "root", root)
	}

	slices.SortFunc(matches, func(a, b fileMatch) int {
		if a.score != b.score {
			return b.score - a.score
		}
		if a.hits != b.hits {
			return b.hits - a.hits
		}
		return strings.Compare(a.path, b.path)
	})
	if len(matches) > s.maxFiles {
		matches = matches[:s.maxFiles]
	}

	var snippets []ports.Snippet
	for _, m := range matches {
		snippets = append(snippets, m.snippets...)
	}
	return snippets, nil
}

// scoreFile reads a text file and returns its best windows.
// Unreadable, oversized, binary and unrelated files report ok=false.
func (s *Searcher) scoreFile(root, rel string, terms []string) (fileMatch, bool) {
	abs := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil || info.Size() > maxFileSize {
		return fileMatch{}, false
	}
	data, err := os.ReadFile(abs) //nolint:gosec // path comes from walking root
	if err != nil || bytes.IndexByte(data[:min(len(data), 512)], 0) >= 0 {
		return fileMatch{}, false
	}

	lines := strings.Split(string(data), "\n")
	type window struct {
		start, score, hits int
	}
	var windows []window
	seen := make(map[string]bool)
	total := 0

	for start := 0; start < len(lines); start += windowLines {
		end := min(start+windowLines, len(lines))
		text := strings.ToLower(strings.Join(lines[start:end], "\n"))
		w := window{start: start}
		for _, term := range terms {
			if n := strings.Count(text, term); n > 0 {
				w.score++
				w.hits += n
				seen[term] = true
			}
		}
		if w.score > 0 {
			windows = append(windows, w)
			total += w.hits
		}
	}
	if len(windows) == 0 {
		return fileMatch{}, false
	}

	slices.SortStableFunc(windows, func(a, b window) int {
		if a.score != b.score {
			return b.score - a.score
		}
		return b.hits - a.hits
	})
	windows = windows[:min(len(windows), s.maxSnippets)]
	slices.SortFunc(windows, func(a, b window) int { return a.start - b.start })

	m := fileMatch{path: rel, score: len(seen), hits: total}
	for _, w := range windows {
		end := min(w.start+windowLines, len(lines))
		m.snippets = append(m.snippets, ports.Snippet{
			Path:      rel,
			StartLine: w.start + 1,
			Content:   strings.Join(lines[w.start:end], "\n"),
		})
	}
	return m, true
}

// Terms extracts the distinct lowercase search terms of text in first-seen order.
// Identifiers are also split at camelCase and snake_case boundaries.
func Terms(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(w string) {
		w = strings.ToLower(w)
		if len(w) < minTermLen || stopwords[w] || seen[w] {
			return
		}
		seen[w] = true
		out = append(out, w)
	}

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	for _, word := range words {
		add(word)
		for _, part := range splitIdentifier(word) {
			if part != word {
				add(part)
			}
		}
	}
	return out
}

func splitIdentifier(word string) []string {
	var parts []string
	for _, chunk := range strings.Split(word, "_") {
		runes := []rune(chunk)
		start := 0
		for i := 1; i < len(runes); i++ {
			if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
				parts = append(parts, string(runes[start:i]))
				start = i
			}
		}
		if start < len(runes) {
			parts = append(parts, string(runes[start:]))
		}
	}
	return parts
}
