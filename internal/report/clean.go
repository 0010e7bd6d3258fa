// Package report renders a record file into a paginated PDF compilation:
// a title page, then one entry per heading with its explanation split into
// readable paragraphs and a source line.
package report

import (
	"regexp"
	"strings"
)

var (
	glyphs = strings.NewReplacer(
		"•", "", "▪", "", "▫", "", "◦", "", "‣", "", "⁃", "", "■", "", "●", "",
		"○", "", "◆", "", "◇", "", "✓", "", "✗", "", "→", "", "←", "", "↑", "", "↓", "",
	)
	quotes = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`,
		"‘", "'", "’", "'", "‚", "'",
	)
	spacing = strings.NewReplacer(" , ", ", ", " . ", ". ")

	urls            = regexp.MustCompile(`https?://\S+`)
	whitespace      = regexp.MustCompile(`\s+`)
	trailingNumbers = regexp.MustCompile(`\s*\d+\s*$`)
	leadingNumbers  = regexp.MustCompile(`^\d+\s*`)
)

// Clean prepares a field for print: bullet glyphs and URLs are removed,
// typographic quotes folded to ASCII, whitespace collapsed, and stray page
// numbers at either end dropped.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = glyphs.Replace(text)
	text = quotes.Replace(text)
	text = urls.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	text = spacing.Replace(text)
	text = trailingNumbers.ReplaceAllString(text, "")
	text = leadingNumbers.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// sourceLabel is the document name without its .pdf extension.
func sourceLabel(source string) string {
	return strings.TrimSuffix(source, ".pdf")
}
