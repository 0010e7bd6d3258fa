package report

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitParagraphs breaks text into paragraphs of at most limit characters.
// Sentences are kept together where they fit; a sentence longer than limit is
// split on clause boundaries (after , or ;), and a clause still too long is
// split between words. Only a single word longer than limit can exceed it.
func SplitParagraphs(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if limit <= 0 {
		return []string{text}
	}

	var (
		paras  []string
		cur    []string
		curLen int
	)
	flush := func() {
		if len(cur) > 0 {
			paras = append(paras, strings.Join(cur, " "))
			cur, curLen = nil, 0
		}
	}
	add := func(piece string) {
		n := utf8.RuneCountInString(piece)
		if len(cur) > 0 && curLen+n+1 > limit {
			flush()
		}
		cur = append(cur, piece)
		curLen += n + 1
	}

	for _, sentence := range splitAfter(text, ".!?") {
		if utf8.RuneCountInString(sentence) <= limit {
			add(sentence)
			continue
		}
		flush()
		for _, clause := range splitAfter(sentence, ",;") {
			if utf8.RuneCountInString(clause) <= limit {
				add(clause)
				continue
			}
			for _, word := range strings.Fields(clause) {
				add(word)
			}
		}
	}
	flush()
	return paras
}

// splitAfter splits text after any of the punctuation runes when they are
// followed by whitespace. Pieces are trimmed; empty pieces are dropped.
func splitAfter(text, punct string) []string {
	var (
		pieces []string
		start  int
	)
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		if strings.ContainsRune(punct, runes[i]) && unicode.IsSpace(runes[i+1]) {
			if p := strings.TrimSpace(string(runes[start : i+1])); p != "" {
				pieces = append(pieces, p)
			}
			start = i + 1
		}
	}
	if p := strings.TrimSpace(string(runes[start:])); p != "" {
		pieces = append(pieces, p)
	}
	return pieces
}

// EnsureTerminal appends a full stop unless the paragraph already ends a sentence.
func EnsureTerminal(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return p
	}
	switch p[len(p)-1] {
	case '.', '!', '?', '"', '\'':
		return p
	}
	return p + "."
}

// wrap breaks text into lines of at most width characters between words.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var (
		lines []string
		line  strings.Builder
	)
	for _, w := range words {
		if line.Len() > 0 && utf8.RuneCountInString(line.String())+1+utf8.RuneCountInString(w) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(w)
	}
	return append(lines, line.String())
}
