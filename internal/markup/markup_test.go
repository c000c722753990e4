package markup

import (
	"strings"
	"testing"

	"github.com/Jrygg01/FrameForge/internal/core"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Verdict
	}{
		{"<!DOCTYPE html><html><body></body></html>", CompleteDocument},
		{"  <!doctype html>\n<html>", CompleteDocument},
		{"<HTML lang=\"en\"><body>x</body></HTML>", CompleteDocument},
		{"<div>hello</div>", FragmentLikely},
		{"Here is the page:\n<section class=\"hero\">Hi", FragmentLikely},
		{"<head><title>x</title></head>", FragmentLikely},
		{"<main>", FragmentLikely},
		{"Sure, I updated the <p>text</p> for you.", FragmentLikely},
		{"I changed the header colour to blue.", NotHTML},
		{"", NotHTML},
		{"Use List<String> when 3 < 4 > 2.", NotHTML},
		{"A lone <br> tag", NotHTML},
		{"<custom-widget>x</custom-widget>", NotHTML},
	}
	for _, tc := range cases {
		if got := Classify(tc.in); got != tc.want {
			t.Fatalf("Classify(%q)=%s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestRepair(t *testing.T) {
	t.Parallel()

	t.Run("fragment is wrapped", func(t *testing.T) {
		out, verdict := Repair("<div>hello</div>")
		if verdict != FragmentLikely {
			t.Fatalf("unexpected verdict %s", verdict)
		}
		if !strings.HasPrefix(out, "<!DOCTYPE html>") {
			t.Fatalf("expected doctype, got %q", out)
		}
		body := out[strings.Index(out, "<body>"):strings.Index(out, "</body>")]
		if !strings.Contains(body, "<div>hello</div>") {
			t.Fatalf("fragment not nested in body: %q", out)
		}
		for _, want := range []string{`charset="UTF-8"`, `name="viewport"`, "sans-serif"} {
			if !strings.Contains(out, want) {
				t.Fatalf("shell missing %q: %q", want, out)
			}
		}
	})

	t.Run("complete document unchanged", func(t *testing.T) {
		in := "<!DOCTYPE html><html>...</html>"
		out, verdict := Repair(in)
		if out != in || verdict != CompleteDocument {
			t.Fatalf("got (%q, %s)", out, verdict)
		}
	})

	t.Run("complete document with code sample unchanged", func(t *testing.T) {
		for _, in := range []string{
			"<!DOCTYPE html><html><body><pre>```bash\nnpm install\n```</pre></body></html>",
			"<!DOCTYPE html>\n<html><body><pre>\n```html\n<div>x</div>\n```\n</pre></body></html>",
		} {
			out, verdict := Repair(in)
			if out != in || verdict != CompleteDocument {
				t.Fatalf("Repair(%q) = (%q, %s)", in, out, verdict)
			}
		}
	})

	t.Run("complete document keeps surrounding whitespace", func(t *testing.T) {
		in := "\n  <!DOCTYPE html><html></html>\n"
		out, verdict := Repair(in)
		if out != in || verdict != CompleteDocument {
			t.Fatalf("got (%q, %s)", out, verdict)
		}
	})

	t.Run("fenced document unwrapped", func(t *testing.T) {
		out, verdict := Repair("```html\n<!DOCTYPE html>\n<html></html>\n```")
		if out != "<!DOCTYPE html>\n<html></html>" || verdict != CompleteDocument {
			t.Fatalf("got (%q, %s)", out, verdict)
		}
	})

	t.Run("head and body without html wrapper", func(t *testing.T) {
		out, _ := Repair("<head><title>t</title></head><body><p>x</p></body>")
		if strings.Count(strings.ToLower(out), "<body") != 1 {
			t.Fatalf("body must not be nested: %q", out)
		}
		if !strings.HasPrefix(out, "<!DOCTYPE html>") || !strings.HasSuffix(out, "</html>") {
			t.Fatalf("missing outer wrapper: %q", out)
		}
	})

	t.Run("prose left alone", func(t *testing.T) {
		out, verdict := Repair("  I cannot see any HTML to change.  ")
		if verdict != NotHTML || out != "I cannot see any HTML to change." {
			t.Fatalf("got (%q, %s)", out, verdict)
		}
	})
}

func TestCompose(t *testing.T) {
	t.Parallel()

	t.Run("fragment with css and js", func(t *testing.T) {
		page := Compose(core.UIDocument{HTML: "<button id=\"b\">Go</button>", CSS: "button{color:red}", JS: "document.getElementById('b').onclick=()=>{}"})
		if Classify(page) != CompleteDocument {
			t.Fatalf("expected complete document, got %q", page)
		}
		styleAt := strings.Index(page, "button{color:red}")
		headEnd := strings.Index(page, "</head>")
		if styleAt < 0 || styleAt > headEnd {
			t.Fatalf("css must be inlined inside head: %q", page)
		}
		scriptAt := strings.Index(page, "<script>")
		bodyEnd := strings.LastIndex(page, "</body>")
		if scriptAt < 0 || scriptAt > bodyEnd || scriptAt < strings.Index(page, "<button") {
			t.Fatalf("script must follow the markup inside body: %q", page)
		}
	})

	t.Run("empty js adds no script", func(t *testing.T) {
		page := Compose(core.UIDocument{HTML: "<p>x</p>", CSS: "", JS: "  "})
		if strings.Contains(page, "<script") {
			t.Fatalf("unexpected script element: %q", page)
		}
	})

	t.Run("complete document keeps its shell", func(t *testing.T) {
		html := "<!DOCTYPE html><html><HEAD><title>t</title></HEAD><BODY><p>x</p></BODY></html>"
		page := Compose(core.UIDocument{HTML: html, CSS: "p{}", JS: "x()"})
		if strings.Count(page, "<!DOCTYPE html>") != 1 {
			t.Fatalf("document was re-wrapped: %q", page)
		}
		if !strings.Contains(page, "<style>\np{}\n</style>\n</HEAD>") {
			t.Fatalf("style not injected before </HEAD>: %q", page)
		}
		if !strings.Contains(page, "<script>\nx()\n</script>\n</BODY>") {
			t.Fatalf("script not injected before </BODY>: %q", page)
		}
	})

	t.Run("closing tags in code are neutralised", func(t *testing.T) {
		page := Compose(core.UIDocument{HTML: "<p>x</p>", JS: "s = '</script><b>';"})
		if strings.Count(page, "</script>") != 1 {
			t.Fatalf("embedded </script> must be escaped: %q", page)
		}
	})
}
