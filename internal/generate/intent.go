package generate

import (
	"strings"
	"unicode"
)

// Intent says what a text instruction is about.
type Intent int

const (
	IntentEditHTML Intent = iota
	IntentCanvas
)

func (i Intent) String() string {
	if i == IntentCanvas {
		return "canvas"
	}
	return "edit_html"
}

// IntentClassifier decides whether an instruction targets the sketching
// surface or the generated page.
type IntentClassifier interface {
	Classify(instruction string) Intent
}

// DefaultCanvasKeywords is a placeholder vocabulary for the sketching surface.
// It misfires on phrases like "draw attention to the header".
var DefaultCanvasKeywords = []string{
	"canvas", "sketch", "sketching", "draw", "drawing", "brush", "eraser", "erase", "pen", "stroke", "strokes",
}

// KeywordIntent matches whole words against Keywords.
type KeywordIntent struct {
	Keywords []string
}

func (k KeywordIntent) Classify(instruction string) Intent {
	keywords := k.Keywords
	if keywords == nil {
		keywords = DefaultCanvasKeywords
	}
	words := strings.FieldsFunc(strings.ToLower(instruction), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		for _, kw := range keywords {
			if w == kw {
				return IntentCanvas
			}
		}
	}
	return IntentEditHTML
}
