package markdown_test

import (
	"strings"
	"testing"

	"prodman/internal/platform/markdown"
)

func TestRenderThenParseKeepsMetaAndBody(t *testing.T) {
	t.Parallel()
	note := markdown.Note{Meta: map[string]any{"date": "2026-03-01", "id": 2}, Body: "# Session\n"}
	rendered, err := note.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	parsed, err := markdown.Parse(rendered)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Meta["date"] != "2026-03-01" || parsed.Meta["id"] != 2 {
		t.Fatalf("unexpected meta %+v", parsed.Meta)
	}
	if strings.TrimSpace(parsed.Body) != "# Session" {
		t.Fatalf("unexpected body %q", parsed.Body)
	}
}

func TestParseRejectsUnterminatedFrontmatter(t *testing.T) {
	t.Parallel()
	if _, err := markdown.Parse("---\nid: 1\n# no fence"); err == nil {
		t.Fatalf("expected missing fence error")
	}
}

func TestReplaceSectionPreservesSurroundingText(t *testing.T) {
	t.Parallel()
	body := markdown.ReplaceSection("my notes\n", "timeline", "first")
	if !strings.HasPrefix(body, "my notes\n\n<!-- prodman:timeline:start -->\nfirst\n") {
		t.Fatalf("section not appended: %q", body)
	}
	body = markdown.ReplaceSection(body+"trailer\n", "timeline", "second")
	if strings.Contains(body, "first") || !strings.Contains(body, "second") {
		t.Fatalf("section not replaced: %q", body)
	}
	if !strings.HasPrefix(body, "my notes") || !strings.HasSuffix(body, "trailer\n") {
		t.Fatalf("surrounding text lost: %q", body)
	}
}
