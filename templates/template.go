// Package templates loads reusable prompt templates.
//
// A template is a markdown file with optional YAML frontmatter:
//
//	---
//	model: bmi
//	system: You summarize text in $language.
//	options:
//	  temperature: 0.2
//	defaults:
//	  language: English
//	---
//	Summarize this:
//
//	$input
//
// $input (or ${input}) is replaced by the caller's input, other $name
// placeholders by parameters or defaults. $$ produces a literal $.
package templates

import (
	"fmt"
	"os"

	"github.com/i2y/llm-bedrock-mistral/llm"
)

// Template is a parsed prompt template.
type Template struct {
	Name     string
	Model    string
	System   string
	Prompt   string
	Options  map[string]any
	Defaults map[string]string
	FilePath string
}

// Render substitutes placeholders in the prompt and system text.
// A placeholder with no parameter and no default is an error.
func (t *Template) Render(input string, params map[string]string) (prompt, system string, err error) {
	lookup := func(name string) (string, bool) {
		switch name {
		case "$":
			return "$", true
		case "input":
			return input, true
		}
		if v, ok := params[name]; ok {
			return v, true
		}
		v, ok := t.Defaults[name]
		return v, ok
	}

	var missing string
	expand := func(s string) string {
		return os.Expand(s, func(name string) string {
			v, ok := lookup(name)
			if !ok && missing == "" {
				missing = name
			}
			return v
		})
	}

	prompt = expand(t.Prompt)
	system = expand(t.System)
	if missing != "" {
		return "", "", fmt.Errorf("template %s: missing parameter %q", t.Name, missing)
	}
	return prompt, system, nil
}

// Apply renders the template and returns the prompt together with call
// options for its model, system text and model options.
func (t *Template) Apply(input string, params map[string]string) (string, []llm.Option, error) {
	prompt, system, err := t.Render(input, params)
	if err != nil {
		return "", nil, err
	}

	var opts []llm.Option
	if t.Model != "" {
		opts = append(opts, llm.WithModel(t.Model))
	}
	if system != "" {
		opts = append(opts, llm.WithSystem(system))
	}
	if len(t.Options) > 0 {
		opts = append(opts, llm.WithOptions(t.Options))
	}
	return prompt, opts, nil
}
