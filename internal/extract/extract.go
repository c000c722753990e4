// Package extract pulls structured payloads out of free-form model output.
package extract

import "strings"

const fence = "```"

// JSONObject returns the first balanced JSON object in text: the substring
// from the first '{' to the brace that brings the depth back to zero.
// Braces inside strings are ignored and a backslash escapes exactly one
// character. It reports false when text has no '{' or the object never closes.
func JSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// StripFences removes a markdown code fence (``` with an optional language
// tag) bracketing the payload, including prose before the opening fence and
// after the closing one. A fence only counts as a wrapper when the text starts
// with it, or when it opens a line of its own, is closed later on, and the
// payload after it starts with '{' or '<'. Backticks inside the payload, such
// as a code sample in a <pre> block, are left alone. Text without a wrapping
// fence is only trimmed.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	open := openingFence(trimmed)
	if open < 0 {
		return trimmed
	}
	body := trimmed[open+len(fence):]
	if closing := strings.LastIndex(body, fence); closing >= 0 {
		body = body[:closing]
	}
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && isLanguageTag(body[:nl]) {
		body = body[nl+1:]
	} else if nl < 0 && isLanguageTag(body) {
		body = ""
	}
	return strings.TrimSpace(body)
}

// openingFence returns the index of the fence that wraps the payload, or -1.
func openingFence(text string) int {
	if strings.HasPrefix(text, fence) {
		return 0
	}
	for from := 0; ; {
		i := strings.Index(text[from:], "\n"+fence)
		if i < 0 {
			return -1
		}
		at := from + i + 1
		rest := text[at+len(fence):]
		line, after, ok := strings.Cut(rest, "\n")
		if ok && isLanguageTag(line) && strings.Contains(after, fence) {
			payload := strings.TrimSpace(after)
			if strings.HasPrefix(payload, "{") || strings.HasPrefix(payload, "<") {
				return at
			}
		}
		from = at + len(fence)
	}
}

func isLanguageTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '+', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
