package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// inlinePattern is one connector shape. Both groups are required: 1 is the
// term, 2 the definition.
type inlinePattern struct {
	name string
	re   *regexp.Regexp
}

// inlinePatterns are tried in order; the first match wins. Labelled and
// punctuated shapes come before the bare connector verbs so that
// "Contract: an agreement that is binding" keys on "Contract".
var inlinePatterns = []inlinePattern{
	{"definition-label", regexp.MustCompile(`(?i)^definitions?\s*[:\-–—]?\s*(.+?)\s*(?::|\s[-–—])\s+(.+)$`)},
	{"question", regexp.MustCompile(`(?i)^what\s+(?:is|are)\s+(?:an?\s+|the\s+)?(.+?)\?\s*(?:[:\-–—]\s*)?(.+)$`)},
	{"colon", regexp.MustCompile(`^([^:]{3,60}?)\s*(?::|\s[-–—])\s+(.+)$`)},
	{"article", regexp.MustCompile(`(?i)^(?:an?|the)\s+(.+?)\s+(?:is|means?|refers?\s+to)\s+(.+)$`)},
	{"described-as", regexp.MustCompile(`(?i)^(.+?)\s+can\s+be\s+(?:described|explained|defined)\s+as\s+(.+)$`)},
	{"connector", regexp.MustCompile(`(?i)^(.+?)\s+(?:is\s+defined\s+as|defined\s+as|described\s+as|refers?\s+to|means?|consists\s+of|comprises|involves|includes|is|are)\s+(.+)$`)},
}

// citationPatterns match case-name shapes anywhere in a line.
var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z][a-zA-Z]+ v\.? [A-Z][a-zA-Z]+(?:\s*[\[(]\d{4}[\])])?`),
	regexp.MustCompile(`\b[A-Z][a-zA-Z]+ [Vv][Ss]?\.? [A-Z][a-zA-Z]+(?:\s*[\[(]\d{4}[\])])?`),
	regexp.MustCompile(`\b[A-Z][a-zA-Z]+ and [A-Z][a-zA-Z]+(?:\s*[\[(]\d{4}[\])])?`),
}

var (
	pageArtifactPattern = regexp.MustCompile(`(?i)^(?:page\s+\d+(?:\s+of\s+\d+)?|p\.\s*\d+|\d+|\[\d{4}\]|(?:section|chapter)\b.*)$`)

	listMarkerPattern  = regexp.MustCompile(`^(?:[-*–—]+\s*|\d+[.)]\s*|\(?[a-zA-Z0-9]{1,3}\)\s+)`)
	markerStripPattern = regexp.MustCompile(`^(?:[-*–—]+\s*|\d+[.)]\s*|\d+\s+|\(?[a-zA-Z0-9]{1,3}\)\s*)+`)

	yearPattern          = regexp.MustCompile(`\b\d{4}\b`)
	referenceWordPattern = regexp.MustCompile(`(?i)\b(?:page|section|chapter|act|law)\b`)
	trailingStopWord     = regexp.MustCompile(`(?i)\b(?:the|a|an|and|or|but|of|in|on|at|to|for|with|by|from|up|about|into|through|during|before|after|above|below|between|among|under|over)$`)
	definitionCue        = regexp.MustCompile(`(?i)\b(?:is|are|means|refers|defined|described)\b`)
	connectorWord        = regexp.MustCompile(`(?i)\b(?:and|but|or|so|because|since|however|therefore|also|in addition|furthermore)\b`)
)

// inlineTermStopwords are terms an inline match never yields.
var inlineTermStopwords = map[string]bool{
	"it": true, "this": true, "that": true, "these": true, "those": true,
	"there": true, "here": true, "they": true, "he": true, "she": true,
	"we": true, "you": true, "i": true, "what": true, "which": true,
	"who": true, "where": true, "when": true, "such": true, "each": true,
	"all": true, "note": true, "example": true, "see": true,
}

func isPageArtifact(text string) bool {
	return pageArtifactPattern.MatchString(text)
}

// hasListMarker reports whether the line starts with a bullet or numbering.
func hasListMarker(line Line) bool {
	return line.Bulleted || listMarkerPattern.MatchString(line.Text)
}

// stripMarker removes leading bullets and numbering plus surrounding
// separator punctuation.
func stripMarker(text string) string {
	text = markerStripPattern.ReplaceAllString(text, "")
	return strings.Trim(text, " :-–—")
}

func endsSentence(text string) bool {
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case '.', '?', '!', ';', ',':
		return true
	}
	return false
}

func startsUpper(text string) bool {
	for _, r := range text {
		return unicode.IsUpper(r)
	}
	return false
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func charCount(text string) int {
	return len([]rune(text))
}

// cleanTerm trims quotes and separator punctuation from an extracted term.
func cleanTerm(term string) string {
	term = Normalize(term)
	return strings.Trim(term, " \"'“”‘’:-–—,;")
}
