package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---\n"

// Note is a markdown document with a YAML frontmatter header.
type Note struct {
	Meta map[string]any
	Body string
}

func Parse(content string) (Note, error) {
	if !strings.HasPrefix(content, fence) {
		return Note{Meta: map[string]any{}, Body: content}, nil
	}
	rest := strings.TrimPrefix(content, fence)
	idx := strings.Index(rest, "\n"+fence)
	if idx < 0 {
		return Note{}, fmt.Errorf("invalid frontmatter: missing closing fence")
	}
	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return Note{}, fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return Note{Meta: meta, Body: rest[idx+len(fence)+1:]}, nil
}

func (n Note) Render() (string, error) {
	raw, err := yaml.Marshal(n.Meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(fence)
	buf.Write(raw)
	buf.WriteString(fence)
	if !strings.HasPrefix(n.Body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(n.Body)
	return buf.String(), nil
}

// ReplaceSection swaps the generated section called name inside body,
// appending it when absent. Text outside the markers is left alone.
func ReplaceSection(body, name, generated string) string {
	start := "<!-- prodman:" + name + ":start -->"
	end := "<!-- prodman:" + name + ":end -->"
	section := start + "\n" + strings.TrimRight(generated, "\n") + "\n" + end

	from := strings.Index(body, start)
	to := strings.Index(body, end)
	if from >= 0 && to > from {
		return body[:from] + section + body[to+len(end):]
	}
	switch {
	case strings.TrimSpace(body) == "":
		return section + "\n"
	case strings.HasSuffix(body, "\n"):
		return body + "\n" + section + "\n"
	default:
		return body + "\n\n" + section + "\n"
	}
}
