package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempWriter(t *testing.T) *Writer {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "bessie.md"))
}

func readAll(t *testing.T, w *Writer) string {
	t.Helper()
	data, err := os.ReadFile(w.Path())
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	return string(data)
}

func TestWriter_ArgsSection(t *testing.T) {
	w := tempWriter(t)
	if err := w.WriteArgs("dummy", "fix the bug", []string{"a.go", "b.go"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := readAll(t, w)
	want := "## Args\n\n- model: dummy\n- request: fix the bug\n- files: a.go, b.go\n\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriter_ArgsWithoutFiles(t *testing.T) {
	w := tempWriter(t)
	if err := w.WriteArgs("gpt-4", "explain", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(readAll(t, w), "- files:") {
		t.Error("files line written for empty pattern list")
	}
}

func TestWriter_AlternatingBlocks(t *testing.T) {
	w := tempWriter(t)
	if err := w.WriteArgs("dummy", "req", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.WriteBessie("Moo!\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.WriteYou("tell me more"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.WriteBessie("Moo moo!"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := readAll(t, w)
	order := []string{"## Args", "## Bessie", "## You", "## Bessie"}
	pos := -1
	for _, heading := range order {
		next := strings.Index(got[pos+1:], heading)
		if next < 0 {
			t.Fatalf("heading %q missing or out of order in %q", heading, got)
		}
		pos += 1 + next
	}
	if !strings.Contains(got, "## Bessie\n\nMoo!\n\n") {
		t.Errorf("response block malformed: %q", got)
	}
}

func TestWriter_AppendsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bessie.md")

	if err := New(path).WriteBessie("one"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := New(path).WriteBessie("two"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if !strings.Contains(string(data), "one") || !strings.Contains(string(data), "two") {
		t.Errorf("blocks lost across instances: %q", string(data))
	}
}
