package extract

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONObject(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		in    string
		want  string
		found bool
	}{
		{"braces inside string", `prefix {"a": "b{c}"} suffix`, `{"a": "b{c}"}`, true},
		{"no braces", "no braces here", "", false},
		{"unterminated", `{"a": {"b": 1}`, "", false},
		{"nested", `x {"a": {"b": [1, {"c": 2}]}} y {"z": 1}`, `{"a": {"b": [1, {"c": 2}]}}`, true},
		{"escaped quote", `{"a": "say \"}\" now"} tail`, `{"a": "say \"}\" now"}`, true},
		{"escaped backslash before quote", `{"a": "c:\\"} {"b": 2}`, `{"a": "c:\\"}`, true},
		{"closing brace first", `} {"a": 1}`, `{"a": 1}`, true},
		{"empty object", `{}`, `{}`, true},
		{"json with html", "Sure!\n{\"html\":\"<div class=\\\"x\\\">{{name}}</div>\",\"css\":\"a{b:c}\"}\nDone.", "{\"html\":\"<div class=\\\"x\\\">{{name}}</div>\",\"css\":\"a{b:c}\"}", true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := JSONObject(tc.in)
			if ok != tc.found || got != tc.want {
				t.Fatalf("JSONObject(%q)=(%q,%v), want (%q,%v)", tc.in, got, ok, tc.want, tc.found)
			}
		})
	}
}

func TestJSONObject_ResultIsValidJSONStartingAtFirstBrace(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`{"html":"<p>}</p>","css":"","js":"if(a){b()}"}`,
		`The answer: {"k": ["{", "}", "\\"]} trailing }`,
		"```json\n{\"a\":{\"b\":{\"c\":\"}}}\"}}}\n```",
		`{"a": 1} {"b": 2}`,
		`{{{`,
		`"{" not json`,
	}
	for _, in := range inputs {
		got, ok := JSONObject(in)
		if !ok {
			continue
		}
		if !strings.HasPrefix(in[strings.IndexByte(in, '{'):], got) {
			t.Fatalf("JSONObject(%q)=%q does not start at the first brace", in, got)
		}
		if !json.Valid([]byte(got)) {
			t.Fatalf("JSONObject(%q)=%q is not valid JSON", in, got)
		}
	}
}

func TestStripFences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n<p>x</p>\n```", "<p>x</p>"},
		{"html fence with prose", "Here you go:\n```html\n<!DOCTYPE html><html></html>\n```\nEnjoy!", "<!DOCTYPE html><html></html>"},
		{"no fence", "  <div>hi</div>\n", "<div>hi</div>"},
		{"unclosed leading fence", "```html\n<div>hi</div>", "<div>hi</div>"},
		{"single line fence", "```{\"a\":1}```", `{"a":1}`},
		{"lone fence inside prose", "use ``` to quote code", "use ``` to quote code"},
		{"code sample inside json", "{\"html\":\"<pre>```js\\nx()\\n```</pre>\"}", "{\"html\":\"<pre>```js\\nx()\\n```</pre>\"}"},
		{"code sample inside document", "<!DOCTYPE html><html><body><pre>```bash\nnpm install\n```</pre></body></html>", "<!DOCTYPE html><html><body><pre>```bash\nnpm install\n```</pre></body></html>"},
		{"markdown block inside pre", "<pre>\n```bash\nnpm install\n```\n</pre>", "<pre>\n```bash\nnpm install\n```\n</pre>"},
		{"prose then fenced payload with inner fence", "Sure:\n```html\n<pre>```js</pre>\n```", "<pre>```js</pre>"},
	}
	for _, tc := range cases {
		if got := StripFences(tc.in); got != tc.want {
			t.Fatalf("%s: StripFences(%q)=%q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}
