package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const templatePattern = "**/*.md"

// LoadDir loads every template under dir, recursively.
// Templates are named by their slash-separated path relative to dir,
// without the extension (e.g. "code/review"). Templates that fail to parse
// are reported together in the returned error; the rest are still returned.
func LoadDir(dir string) ([]*Template, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("accessing template dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template path must be a directory: %s", dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), templatePattern)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	sort.Strings(matches)

	templates := make([]*Template, 0, len(matches))
	var errs []error
	for _, m := range matches {
		t, err := ParseFile(filepath.Join(dir, filepath.FromSlash(m)))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t.Name = strings.TrimSuffix(m, ".md")
		templates = append(templates, t)
	}

	return templates, errors.Join(errs...)
}

// Lookup loads a single template by name from dir.
func Lookup(dir, name string) (*Template, error) {
	t, err := ParseFile(filepath.Join(dir, filepath.FromSlash(name)+".md"))
	if err != nil {
		return nil, err
	}
	t.Name = name
	return t, nil
}
