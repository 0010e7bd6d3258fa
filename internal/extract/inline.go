package extract

// ExtractInline applies the connector patterns to a single line and returns
// the term and its same-line definition.
func (e *Engine) ExtractInline(text string) (term, definition string, ok bool) {
	return matchInline(e.cfg, Normalize(text))
}

// extendInline is the short continuation scan for inline definitions: up to
// MaxLookahead following lines are appended while each is longer than
// MinLineChars-1 characters and carries no definition cue of its own.
func (e *Engine) extendInline(lines []Line, start int) ExplanationWindow {
	kc := e.cfg.Kinds.InlineDefinition
	limit := start + min(kc.MaxLookahead, len(lines)-1-start)
	w := ExplanationWindow{StopReason: StopLookaheadExhausted}

	j := start + 1
	for ; j <= limit; j++ {
		text := lines[j].Text
		if isPageArtifact(text) {
			w.StopReason = StopPageArtifact
			break
		}
		if text == "" || charCount(text) < kc.MinLineChars {
			w.StopReason = StopBlankRun
			break
		}
		if definitionCue.MatchString(text) {
			w.StopReason = StopNextHeading
			break
		}
		w.Lines = append(w.Lines, text)
	}
	w.Next = j
	return w
}
