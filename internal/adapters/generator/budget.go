package generator

import (
	"github.com/pandodao/tokenizer-go"
	"go.trai.ch/patchwork/internal/core/ports"
)

// countTokens is replaced in tests.
var countTokens = tokenizer.MustCalToken

// trimContext keeps snippets in order while their total token count fits budget.
// A budget of zero or less keeps everything.
func trimContext(snippets []ports.Snippet, budget int) []ports.Snippet {
	if budget <= 0 {
		return snippets
	}
	kept := make([]ports.Snippet, 0, len(snippets))
	used := 0
	for _, s := range snippets {
		n := countTokens(s.Content)
		if used+n > budget {
			continue
		}
		used += n
		kept = append(kept, s)
	}
	return kept
}
