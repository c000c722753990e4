// Package markup classifies model output as HTML and repairs fragments into
// complete documents.
package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Verdict is the result of classifying a completion.
type Verdict int

const (
	NotHTML Verdict = iota
	FragmentLikely
	CompleteDocument
)

func (v Verdict) String() string {
	switch v {
	case CompleteDocument:
		return "complete_document"
	case FragmentLikely:
		return "fragment_likely"
	default:
		return "not_html"
	}
}

// structuralTags mark text as HTML on their own, even without a closing tag.
var structuralTags = map[atom.Atom]bool{
	atom.Html:    true,
	atom.Head:    true,
	atom.Body:    true,
	atom.Main:    true,
	atom.Section: true,
	atom.Article: true,
	atom.Header:  true,
	atom.Footer:  true,
	atom.Nav:     true,
}

// Classify decides whether text is a complete HTML document, a fragment (or
// prose mixed with markup), or not HTML at all. A fragment needs a structural
// tag or a matched open/close pair of a known element.
func Classify(text string) Verdict {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return NotHTML
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		return CompleteDocument
	}
	if !strings.Contains(trimmed, "<") {
		return NotHTML
	}

	z := html.NewTokenizer(strings.NewReader(trimmed))
	opened := map[atom.Atom]int{}
	for {
		switch z.Next() {
		case html.ErrorToken:
			return NotHTML
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if structuralTags[a] {
				return FragmentLikely
			}
			if a != 0 {
				opened[a]++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); a != 0 && opened[a] > 0 {
				return FragmentLikely
			}
		}
	}
}
