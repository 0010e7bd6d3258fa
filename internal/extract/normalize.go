package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// bulletGlyphs are marker glyphs removed from every line. U+F0B7, U+F0A7 and
// U+F0D8 are the private-use bullets emitted for Symbol/Wingdings fonts.
const bulletGlyphs = "•▪▫◦‣⁃■●○◆◇✓✗→←↑↓\uF0B7\uF0A7\uF0D8"

var (
	glyphPattern      = regexp.MustCompile("[" + bulletGlyphs + "]")
	urlPattern        = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	leadingPageNumber = regexp.MustCompile(`^\d{1,4}\s+(\p{Lu})`)
	trailingPageNum   = regexp.MustCompile(`\s+\d{1,4}$`)
)

// Normalize cleans a string: Unicode compatibility folding, bullet glyph and
// URL removal, whitespace collapsing and removal of stray page numbers at the
// start or end. Lines that are themselves page artifacts ("Page 4", "12")
// are returned without number trimming. Normalize never fails.
func Normalize(raw string) string {
	text, _ := normalizeLine(raw)
	return text
}

// Lines splits page text into normalized lines. Indexes follow the raw line
// positions, so blank lines keep their slot.
func Lines(pageText string) []Line {
	if pageText == "" {
		return nil
	}
	pageText = strings.ReplaceAll(pageText, "\r\n", "\n")
	pageText = strings.ReplaceAll(pageText, "\r", "\n")

	raw := strings.Split(pageText, "\n")
	lines := make([]Line, len(raw))
	for i, r := range raw {
		text, bulleted := normalizeLine(r)
		lines[i] = Line{Index: i, Text: text, Bulleted: bulleted}
	}
	return lines
}

func normalizeLine(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	s := norm.NFKC.String(raw)

	trimmed := strings.TrimSpace(s)
	bulleted := trimmed != "" && strings.ContainsRune(bulletGlyphs, []rune(trimmed)[0])

	s = glyphPattern.ReplaceAllString(s, " ")
	s = urlPattern.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" || isPageArtifact(s) {
		return s, bulleted
	}

	s = leadingPageNumber.ReplaceAllString(s, "$1")
	s = trailingPageNum.ReplaceAllString(s, "")
	return s, bulleted
}
