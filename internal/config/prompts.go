package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptData is the value every prompt template is executed against.
type PromptData struct {
	Instruction string
	CurrentHTML string
	Hint        string
}

// PromptFile mirrors the optional YAML prompt override file. Empty fields keep the built-in prompt.
type PromptFile struct {
	ImageSystem      string `yaml:"image_system"`
	ImageUser        string `yaml:"image_user"`
	JSONCorrection   string `yaml:"json_correction"`
	HTMLEditSystem   string `yaml:"html_edit_system"`
	HTMLEditUser     string `yaml:"html_edit_user"`
	HTMLCreateUser   string `yaml:"html_create_user"`
	HTMLStrictSystem string `yaml:"html_strict_system"`
	CanvasHelpSystem string `yaml:"canvas_help_system"`
}

// Prompts holds parsed prompt templates.
type Prompts struct {
	ImageSystem      *template.Template
	ImageUser        *template.Template
	JSONCorrection   *template.Template
	HTMLEditSystem   *template.Template
	HTMLEditUser     *template.Template
	HTMLCreateUser   *template.Template
	HTMLStrictSystem *template.Template
	CanvasHelpSystem *template.Template
}

var DefaultPromptFile = PromptFile{
	ImageSystem: `You are a senior front-end engineer. You receive a hand-drawn sketch of a user interface and turn it into working code.
Requirements:
- Use semantic HTML5 elements (header, nav, main, section, footer, button, form, label).
- Make the layout responsive with flexbox or grid; no fixed page widths.
- Meet accessibility basics: alt text, labelled form controls, sufficient contrast, keyboard focus styles.
- Put all styling in the css field and all behaviour in the js field. Do not use external libraries or CDNs.
Answer with one JSON object and nothing else:
{"html": "<body markup only>", "css": "<stylesheet>", "js": "<script or empty string>"}`,
	ImageUser: `Convert this sketch into HTML, CSS and JavaScript.{{if .Hint}}
Additional notes from the designer: {{.Hint}}{{end}}`,
	JSONCorrection: `Your previous answer could not be parsed. Reply again with ONLY a single JSON object of the form
{"html": "...", "css": "...", "js": "..."}
All three values must be JSON strings. Do not wrap the object in markdown fences and do not add any commentary.`,
	HTMLEditSystem: `You edit web pages. You always answer with one complete, self-contained HTML document that replaces the current one.
Start with <!DOCTYPE html>, keep styles in a <style> element and scripts in a <script> element.
Apply the requested change and keep everything else as it was. Do not explain your changes.`,
	HTMLEditUser: `Current HTML:
{{.CurrentHTML}}

Requested change: {{.Instruction}}`,
	HTMLCreateUser: `Create a web page for this description: {{.Instruction}}`,
	HTMLStrictSystem: `Output ONLY raw HTML. Your entire reply must be a complete HTML document beginning with <!DOCTYPE html> and ending with </html>.
No prose, no markdown, no code fences, no explanations.`,
	CanvasHelpSystem: `You are the assistant inside a sketch-to-code tool. The user draws a UI on a canvas with pen, eraser, undo and clear controls, then asks for code.
Answer questions about using the canvas briefly and concretely. Do not produce HTML.`,
}

// LoadPrompts parses the built-in prompts, overlaid with the YAML file at path when path is set.
func LoadPrompts(path string) (*Prompts, error) {
	file := DefaultPromptFile
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompts: %w", err)
		}
		var override PromptFile
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("parse prompts: %w", err)
		}
		file = mergePromptFile(file, override)
	}
	return ParsePrompts(file)
}

// ParsePrompts parses and type-checks every template against sample PromptData.
func ParsePrompts(file PromptFile) (*Prompts, error) {
	p := &Prompts{}
	fields := []struct {
		name string
		text string
		dst  **template.Template
	}{
		{"image_system", file.ImageSystem, &p.ImageSystem},
		{"image_user", file.ImageUser, &p.ImageUser},
		{"json_correction", file.JSONCorrection, &p.JSONCorrection},
		{"html_edit_system", file.HTMLEditSystem, &p.HTMLEditSystem},
		{"html_edit_user", file.HTMLEditUser, &p.HTMLEditUser},
		{"html_create_user", file.HTMLCreateUser, &p.HTMLCreateUser},
		{"html_strict_system", file.HTMLStrictSystem, &p.HTMLStrictSystem},
		{"canvas_help_system", file.CanvasHelpSystem, &p.CanvasHelpSystem},
	}
	sample := PromptData{Instruction: "make the header blue", CurrentHTML: "<p>x</p>", Hint: "landing page"}
	for _, f := range fields {
		if strings.TrimSpace(f.text) == "" {
			return nil, fmt.Errorf("prompt %s is empty", f.name)
		}
		tmpl, err := template.New(f.name).Option("missingkey=error").Parse(f.text)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %s: %w", f.name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, sample); err != nil {
			return nil, fmt.Errorf("prompt %s: template type check failed: %w", f.name, err)
		}
		*f.dst = tmpl
	}
	return p, nil
}

// Render executes tmpl with data.
func Render(tmpl *template.Template, data PromptData) (string, error) {
	builder := &strings.Builder{}
	if err := tmpl.Execute(builder, data); err != nil {
		return "", err
	}
	return builder.String(), nil
}

func mergePromptFile(base, override PromptFile) PromptFile {
	pick := func(b, o string) string {
		if strings.TrimSpace(o) != "" {
			return o
		}
		return b
	}
	return PromptFile{
		ImageSystem:      pick(base.ImageSystem, override.ImageSystem),
		ImageUser:        pick(base.ImageUser, override.ImageUser),
		JSONCorrection:   pick(base.JSONCorrection, override.JSONCorrection),
		HTMLEditSystem:   pick(base.HTMLEditSystem, override.HTMLEditSystem),
		HTMLEditUser:     pick(base.HTMLEditUser, override.HTMLEditUser),
		HTMLCreateUser:   pick(base.HTMLCreateUser, override.HTMLCreateUser),
		HTMLStrictSystem: pick(base.HTMLStrictSystem, override.HTMLStrictSystem),
		CanvasHelpSystem: pick(base.CanvasHelpSystem, override.CanvasHelpSystem),
	}
}
