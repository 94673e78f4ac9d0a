package domain

import "fmt"

// NoSimilarSnippet is the diagnostic text used when the aligner finds no candidate.
const NoSimilarSnippet = "no similar snippet found"

// NoMatchDiagnostic explains why an edit's original code was not found.
// It describes the closest candidate in the file and where it diverges.
type NoMatchDiagnostic struct {
	// Found is false when the first token of the snippet does not occur in the file.
	Found bool
	// Offset is the rune offset of the best candidate in the file.
	Offset int
	// Score is the fraction of runes of the snippet matched at equal index.
	Score float64
	// Context is the shared text right before the divergence point.
	Context string
	// Provided is the snippet text starting at the divergence point.
	Provided string
	// Actual is the file text starting at the divergence point.
	Actual string
}

// String renders the diagnostic as fed back to the content generator.
func (d NoMatchDiagnostic) String() string {
	if !d.Found {
		return NoSimilarSnippet
	}
	return fmt.Sprintf("diverges after %q: provided %q, actual %q", d.Context, d.Provided, d.Actual)
}

// NoMatchError is returned when an edit's original code is not a substring of the file.
type NoMatchError struct {
	Path       string
	Diagnostic NoMatchDiagnostic
}

// Error implements error.
func (e *NoMatchError) Error() string {
	return fmt.Sprintf("%s in %s: %s", ErrNoMatch.Error(), e.Path, e.Diagnostic)
}

// Unwrap returns ErrNoMatch so callers can match with errors.Is.
func (e *NoMatchError) Unwrap() error {
	return ErrNoMatch
}
