package templates

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// templateFrontmatter represents the YAML frontmatter in template files.
type templateFrontmatter struct {
	Model    string            `yaml:"model,omitempty"`
	System   string            `yaml:"system,omitempty"`
	Options  map[string]any    `yaml:"options,omitempty"`
	Defaults map[string]string `yaml:"defaults,omitempty"`
}

// splitFrontmatter separates YAML frontmatter from the template body.
// Frontmatter is delimited by "---" lines at the start of the file; without
// a closing delimiter the whole input is the body.
func splitFrontmatter(data []byte) (frontmatter []byte, body string, err error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))

	if !scanner.Scan() {
		return nil, string(data), scanner.Err()
	}
	if strings.TrimSpace(scanner.Text()) != "---" {
		return nil, strings.TrimSpace(string(data)), nil
	}

	var fmLines []string
	closed := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			closed = true
			break
		}
		fmLines = append(fmLines, line)
	}
	if !closed {
		return nil, strings.TrimSpace(string(data)), scanner.Err()
	}

	var bodyLines []string
	for scanner.Scan() {
		bodyLines = append(bodyLines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, "", fmt.Errorf("scanning template: %w", err)
	}

	return []byte(strings.Join(fmLines, "\n")), strings.TrimSpace(strings.Join(bodyLines, "\n")), nil
}

// Parse parses template source. The name is used in error messages and
// lookups.
func Parse(data []byte, name string) (*Template, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}

	t := &Template{
		Name:   name,
		Prompt: body,
	}

	if len(fm) > 0 {
		var meta templateFrontmatter
		if err := yaml.Unmarshal(fm, &meta); err != nil {
			return nil, fmt.Errorf("parsing template %s frontmatter: %w", name, err)
		}
		t.Model = meta.Model
		t.System = meta.System
		t.Options = meta.Options
		t.Defaults = meta.Defaults
	}

	return t, nil
}

// ParseFile parses a template file. The template is named after the file
// without its extension.
func ParseFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}

	t, err := Parse(data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err != nil {
		return nil, err
	}
	t.FilePath = path
	return t, nil
}
