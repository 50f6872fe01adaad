package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptSet is the full prompt template collection, loaded once at startup.
// Templates use {{name}} placeholders filled in by Render.
type PromptSet struct {
	System  map[string]string
	Ideas   map[string]string
	Article map[string]string
	Images  map[string]string
	Parody  map[string]string
}

// LoadPrompts reads the YAML prompt files from dir.
func LoadPrompts(dir string) (*PromptSet, error) {
	ps := &PromptSet{}
	files := []struct {
		name string
		dst  *map[string]string
	}{
		{"system.yaml", &ps.System},
		{"ideas.yaml", &ps.Ideas},
		{"article.yaml", &ps.Article},
		{"images.yaml", &ps.Images},
		{"parody.yaml", &ps.Parody},
	}
	for _, f := range files {
		raw, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return nil, fmt.Errorf("read prompts: %w", err)
		}
		if err := yaml.Unmarshal(raw, f.dst); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.name, err)
		}
	}
	return ps, nil
}

// Render substitutes {{key}} placeholders in a prompt template.
func Render(tmpl string, vars map[string]string) string {
	out := tmpl
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return strings.TrimSpace(out)
}

// BodyVariants returns the registered body-generator prompt names in stable
// order. The pipeline picks uniformly among them and records the choice.
func (p *PromptSet) BodyVariants() []string {
	var names []string
	for k := range p.Article {
		if strings.HasPrefix(k, "body_") {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}
