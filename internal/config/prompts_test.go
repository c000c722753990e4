package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrompts_Defaults(t *testing.T) {
	t.Parallel()

	p, err := LoadPrompts("")
	if err != nil {
		t.Fatalf("LoadPrompts error: %v", err)
	}
	out, err := Render(p.ImageUser, PromptData{Hint: "a login form"})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.Contains(out, "a login form") {
		t.Fatalf("expected hint in image prompt, got %q", out)
	}
	out, err = Render(p.ImageUser, PromptData{})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if strings.Contains(out, "Additional notes") {
		t.Fatalf("expected hint section omitted, got %q", out)
	}
	out, err = Render(p.HTMLEditUser, PromptData{CurrentHTML: "<p>old</p>", Instruction: "add a footer"})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.Contains(out, "<p>old</p>") || !strings.Contains(out, "add a footer") {
		t.Fatalf("unexpected edit prompt %q", out)
	}
}

func TestLoadPrompts_YAMLOverride(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	data := "html_strict_system: |\n  HTML ONLY. {{.Instruction}}\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write prompts: %v", err)
	}
	p, err := LoadPrompts(path)
	if err != nil {
		t.Fatalf("LoadPrompts error: %v", err)
	}
	out, err := Render(p.HTMLStrictSystem, PromptData{Instruction: "x"})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if strings.TrimSpace(out) != "HTML ONLY. x" {
		t.Fatalf("override not applied, got %q", out)
	}
	out, err = Render(p.CanvasHelpSystem, PromptData{})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.Contains(out, "canvas") {
		t.Fatalf("expected default canvas prompt kept, got %q", out)
	}
}

func TestParsePrompts_RejectsUnknownField(t *testing.T) {
	t.Parallel()

	file := DefaultPromptFile
	file.HTMLEditUser = "{{.Missing}}"
	if _, err := ParsePrompts(file); err == nil || !strings.Contains(err.Error(), "html_edit_user") {
		t.Fatalf("expected type check error naming the prompt, got %v", err)
	}

	file = DefaultPromptFile
	file.ImageSystem = "  "
	if _, err := ParsePrompts(file); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}
