package extract

// BuildWindow scans forward from start+1, at most MaxLookahead lines for
// kind, and collects the explanation lines attached to the heading at start.
//
// Blank lines are skipped. The window stops at a page artifact or at a line
// that classifies as a heading at least as precise as kind. Lines that fail
// the inclusion heuristic are inspected and passed over.
func (e *Engine) BuildWindow(lines []Line, start int, kind TermKind) ExplanationWindow {
	if kind == KindInlineDefinition {
		return e.extendInline(lines, start)
	}

	kc := e.cfg.Kinds.For(kind)
	limit := start + min(kc.MaxLookahead, len(lines)-1-start)
	w := ExplanationWindow{StopReason: StopLookaheadExhausted}

	blanks := 0
	j := start + 1
	for ; j <= limit; j++ {
		line := lines[j]
		if line.Blank() {
			blanks++
			if kc.BlankRun > 0 && blanks >= kc.BlankRun {
				w.StopReason = StopBlankRun
				j++
				break
			}
			continue
		}
		blanks = 0

		if e.startsNewHeading(line, kind) {
			w.StopReason = StopNextHeading
			break
		}
		if isPageArtifact(line.Text) {
			w.StopReason = StopPageArtifact
			break
		}
		if includeLine(line, kc) {
			w.Lines = append(w.Lines, explanationText(line, kind))
		}
	}
	w.Next = j
	return w
}

// startsNewHeading reports whether line opens a heading of the same or
// higher precision than kind. Bullet and dash items never end a shape
// window: they are the explanation.
func (e *Engine) startsNewHeading(line Line, kind TermKind) bool {
	cand, ok := e.classifier.classify(line, kind.Rank())
	if !ok {
		return false
	}
	if isShapeKind(cand.Kind) && isListItem(line) {
		return false
	}
	return true
}

// includeLine is the inclusion heuristic: long enough, and either a list
// item, a line with a connector word, or more than MinWords words.
func includeLine(line Line, kc KindConfig) bool {
	if charCount(line.Text) < kc.MinLineChars {
		return false
	}
	return hasListMarker(line) ||
		connectorWord.MatchString(line.Text) ||
		wordCount(line.Text) > kc.MinWords
}

func explanationText(line Line, kind TermKind) string {
	if isShapeKind(kind) {
		if s := stripMarker(line.Text); s != "" {
			return s
		}
	}
	return line.Text
}

func isShapeKind(kind TermKind) bool {
	return kind == KindStructuredTerm || kind == KindBulletedTerm
}

// isListItem reports a bullet or dash item, as opposed to numbering.
func isListItem(line Line) bool {
	if line.Bulleted {
		return true
	}
	for _, r := range line.Text {
		return r == '-' || r == '*' || r == '–' || r == '—'
	}
	return false
}

// accepts applies the minimum line and character counts for kind.
func (e *Engine) accepts(w ExplanationWindow, kind TermKind) bool {
	kc := e.cfg.Kinds.For(kind)
	if len(w.Lines) == 0 && kind != KindInlineDefinition {
		return false
	}
	if kc.MinLines > 0 && len(w.Lines) < kc.MinLines {
		return false
	}
	if kind != KindInlineDefinition && kc.MinChars > 0 {
		n := 0
		for i, l := range w.Lines {
			if i > 0 {
				n += charCount(kc.Joiner)
			}
			n += charCount(l)
		}
		if n < kc.MinChars {
			return false
		}
	}
	return true
}
