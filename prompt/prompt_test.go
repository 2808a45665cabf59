package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRender_RequestOnly(t *testing.T) {
	got, err := Render("Fix the bug", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Fix the bug" {
		t.Errorf("got %q, want %q", got, "Fix the bug")
	}
}

func TestRender_InlinesFiles(t *testing.T) {
	got, err := Render("Fix the bug", map[string]string{
		"main.go": "package main\n",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Fix the bug\n\n### main.go\n\n```\npackage main\n```"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRender_FilesAreKeySorted(t *testing.T) {
	got, err := Render("req", map[string]string{
		"b.go": "bee",
		"a.go": "ay",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Index(got, "a.go") > strings.Index(got, "b.go") {
		t.Errorf("files not deterministic: %q", got)
	}
}

func TestRenderFile_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	if err := os.WriteFile(path, []byte("REQ: {{.Request}}"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	got, err := RenderFile(path, "hi", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "REQ: hi" {
		t.Errorf("got %q, want %q", got, "REQ: hi")
	}
}

func TestRenderFile_MissingTemplate(t *testing.T) {
	_, err := RenderFile(filepath.Join(t.TempDir(), "nope.tmpl"), "hi", nil)
	if err == nil {
		t.Fatal("expected error for missing template file")
	}
}

func TestRenderFile_BadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tmpl")
	if err := os.WriteFile(path, []byte("{{.Request"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	_, err := RenderFile(path, "hi", nil)
	if err == nil {
		t.Fatal("expected parse error")
	}
}
