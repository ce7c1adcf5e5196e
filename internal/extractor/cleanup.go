package extractor

import (
	"strings"

	"github.com/pdf2tree/go/internal/models"
	"github.com/pdf2tree/go/internal/text"
)

type CleanupOpts struct {
	Normalize      bool
	CollapseSpaces bool
	Trim           bool
	BrokenUnicode  bool
}

var DefaultCleanup = CleanupOpts{
	Normalize:      true,
	CollapseSpaces: true,
	Trim:           true,
	BrokenUnicode:  true,
}

// CleanupTexts returns a cleaned copy of every fragment. Positions are untouched,
// so cleaned fragments land in the same cells as the originals.
func CleanupTexts(texts []models.Text, opts CleanupOpts) []models.Text {
	out := make([]models.Text, len(texts))
	for i, t := range texts {
		t.S = cleanupText(t.S, opts)
		out[i] = t
	}
	return out
}

func cleanupText(input string, opts CleanupOpts) string {
	if input == "" {
		return ""
	}

	if opts.BrokenUnicode {
		input = text.Repair(input)
	}

	if opts.Normalize {
		input = text.Normalize(text.JoinHyphenated(input))
	}

	if opts.CollapseSpaces {
		for strings.Contains(input, "  ") {
			input = strings.ReplaceAll(input, "  ", " ")
		}
	}

	if opts.Trim {
		input = strings.TrimSpace(input)
	}

	return input
}
