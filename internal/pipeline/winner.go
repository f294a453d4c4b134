package pipeline

import (
	"strings"

	"filmawards/internal/config"
)

const (
	signalEmphasis    = "emphasis"
	signalStylePrefix = "style:"
	signalClassPrefix = "class:"
)

// WinnerDetector flags an entry as a win when any single signal is present:
// emphasis markup, a highlighted background, a winner glyph or word in the
// text, or a class naming a winner.
type WinnerDetector struct {
	highlightColors []string
	glyphs          []string
}

func NewWinnerDetector(cfg config.Config) WinnerDetector {
	return WinnerDetector{
		highlightColors: lowerAll(cfg.WinnerHighlightColors),
		glyphs:          cfg.WinnerGlyphs,
	}
}

func (d WinnerDetector) IsWinner(e Entry) bool {
	for _, signal := range e.StyleSignals {
		switch {
		case signal == signalEmphasis:
			return true
		case strings.HasPrefix(signal, signalStylePrefix):
			if d.isHighlight(strings.TrimPrefix(signal, signalStylePrefix)) {
				return true
			}
		case strings.HasPrefix(signal, signalClassPrefix):
			if strings.Contains(signal[len(signalClassPrefix):], "winner") {
				return true
			}
		}
	}

	for _, glyph := range d.glyphs {
		if glyph != "" && strings.Contains(e.RawText, glyph) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(e.RawText), "winner")
}

func (d WinnerDetector) isHighlight(style string) bool {
	if !strings.Contains(style, "background") {
		return false
	}
	for _, color := range d.highlightColors {
		if color != "" && strings.Contains(style, color) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
