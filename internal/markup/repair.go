package markup

import (
	"fmt"
	"strings"

	"github.com/Jrygg01/FrameForge/internal/core"
	"github.com/Jrygg01/FrameForge/internal/extract"
)

const shellHead = `<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Generated UI</title>
<style>
*, *::before, *::after { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.5; }
</style>`

// Shell wraps body content in the standard document shell: doctype, UTF-8
// charset, responsive viewport and a sans-serif reset.
func Shell(body string) string {
	return fmt.Sprintf("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n%s\n</head>\n<body>\n%s\n</body>\n</html>", shellHead, body)
}

// Repair strips code fences and returns a complete HTML document along with
// the verdict for the stripped text. An unfenced complete document is
// returned byte for byte, surrounding whitespace included. Fragments are
// wrapped; NotHTML text is returned stripped and unwrapped.
func Repair(raw string) (string, Verdict) {
	if Classify(raw) == CompleteDocument {
		return raw, CompleteDocument
	}
	text := extract.StripFences(raw)
	verdict := Classify(text)
	switch verdict {
	case CompleteDocument, NotHTML:
		return text, verdict
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "<body") || strings.Contains(lower, "<head") {
		// Head/body already present: only the outer wrapper is missing.
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n")
		if !strings.Contains(lower, "<head") {
			b.WriteString("<head>\n" + shellHead + "\n</head>\n")
		}
		b.WriteString(text)
		b.WriteString("\n</html>")
		return b.String(), verdict
	}
	return Shell(text), verdict
}

// Compose renders a UIDocument as one self-contained HTML page with inline
// <style> and <script>. Empty css or js produce no element.
func Compose(doc core.UIDocument) string {
	style := ""
	if strings.TrimSpace(doc.CSS) != "" {
		style = "<style>\n" + strings.ReplaceAll(doc.CSS, "</style", `<\/style`) + "\n</style>"
	}
	script := ""
	if strings.TrimSpace(doc.JS) != "" {
		script = "<script>\n" + strings.ReplaceAll(doc.JS, "</script", `<\/script`) + "\n</script>"
	}

	page := doc.HTML
	if Classify(page) != CompleteDocument {
		page, _ = Repair(page)
		if Classify(page) != CompleteDocument {
			page = Shell(page)
		}
	}
	page = insertBefore(page, "</head>", style)
	page = insertBefore(page, "</body>", script)
	return page
}

// insertBefore places snippet before the last case-insensitive occurrence of
// marker, or appends it when the marker is missing.
func insertBefore(page, marker, snippet string) string {
	if snippet == "" {
		return page
	}
	for i := len(page) - len(marker); i >= 0; i-- {
		if strings.EqualFold(page[i:i+len(marker)], marker) {
			return page[:i] + snippet + "\n" + page[i:]
		}
	}
	return page + "\n" + snippet
}
