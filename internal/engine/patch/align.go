package patch

import (
	"strings"

	"go.trai.ch/patchwork/internal/core/domain"
)

const (
	contextWidth = 20
	excerptWidth = 10
	ellipsis     = "..."
)

// Align locates the region of file that most resembles original and reports
// where the two diverge.
//
// Candidate regions start wherever the first whitespace-delimited token of
// original occurs in file, shifted back by the token's offset in original.
// Each candidate is scored by the fraction of positions that agree with
// original; positions before the start or past the end of file never agree.
// The earliest candidate wins ties.
func Align(file, original string) domain.NoMatchDiagnostic {
	fields := strings.Fields(original)
	if len(fields) == 0 {
		return domain.NoMatchDiagnostic{}
	}
	token := fields[0]

	fileRunes := []rune(file)
	origRunes := []rune(original)
	tokenRunes := []rune(token)
	tokenOffset := len([]rune(original[:strings.Index(original, token)]))

	best := domain.NoMatchDiagnostic{Score: -1}
	bestStart, bestDiverge := 0, 0

	for _, occ := range runeOccurrences(fileRunes, tokenRunes) {
		start := occ - tokenOffset
		matches, diverge := compareWindow(fileRunes, start, origRunes)
		score := float64(matches) / float64(len(origRunes))
		if score > best.Score {
			best.Score = score
			bestStart, bestDiverge = start, diverge
			best.Found = true
		}
	}

	if !best.Found {
		return domain.NoMatchDiagnostic{}
	}

	at := min(max(bestStart+bestDiverge, 0), len(fileRunes))
	best.Offset = at
	best.Context = leading(origRunes, bestDiverge)
	best.Provided = excerpt(origRunes, bestDiverge)
	best.Actual = excerpt(fileRunes, at)
	return best
}

// runeOccurrences returns the rune offsets of every occurrence of token in text.
func runeOccurrences(text, token []rune) []int {
	var out []int
	for i := 0; i+len(token) <= len(text); i++ {
		if equalRunes(text[i:i+len(token)], token) {
			out = append(out, i)
		}
	}
	return out
}

// compareWindow lays original over file starting at rune offset start, counts
// the positions that agree and returns the index of the first disagreement.
// start may be negative.
func compareWindow(file []rune, start int, original []rune) (matches, diverge int) {
	diverge = -1
	for i, r := range original {
		at := start + i
		if at >= 0 && at < len(file) && file[at] == r {
			matches++
			continue
		}
		if diverge < 0 {
			diverge = i
		}
	}
	if diverge < 0 {
		diverge = len(original)
	}
	return matches, diverge
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// leading returns up to contextWidth runes of text ending at at, prefixed with
// an ellipsis when truncated.
func leading(text []rune, at int) string {
	from := at - contextWidth
	if from <= 0 {
		return string(text[:at])
	}
	return ellipsis + string(text[from:at])
}

// excerpt returns up to excerptWidth runes starting at from.
func excerpt(text []rune, from int) string {
	if from >= len(text) {
		return ""
	}
	to := min(from+excerptWidth, len(text))
	return string(text[from:to])
}
