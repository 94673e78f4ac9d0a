package ports

import "context"

// Snippet is an excerpt of a file.
type Snippet struct {
	Path      string
	StartLine int
	Content   string
}

// CodeContextProvider selects code related to a query.
//
//go:generate mockgen -source=code_context.go -destination=mocks/mock_code_context.go -package=mocks
type CodeContextProvider interface {
	// SelectRelatedCode returns snippets under root ranked by relevance to query.
	// Files listed in exclude are skipped.
	SelectRelatedCode(ctx context.Context, root, query string, exclude []string) ([]Snippet, error)
}
