package schema

import (
	"embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed schemas.yaml
var embeddedFS embed.FS

// ErrCategoryUnsupported is returned when no schema exists for a category.
var ErrCategoryUnsupported = errors.New("category is not supported")

// Registry holds the loaded category schemas.
type Registry struct {
	categories map[string]*CategorySchema
	order      []string
}

// yamlDoc mirrors the embedded schema document.
type yamlDoc struct {
	Categories []yamlCategory `yaml:"categories"`
}

type yamlCategory struct {
	Name   string      `yaml:"name"`
	Params []yamlParam `yaml:"params"`
}

type yamlParam struct {
	Name  string `yaml:"name"`
	Short string `yaml:"short"`
	Kind  string `yaml:"kind"`
}

// Load parses the embedded schema document and validates every schema.
func Load() (*Registry, error) {
	data, err := embeddedFS.ReadFile("schemas.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded schemas: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from a YAML schema document.
func Parse(data []byte) (*Registry, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schemas: %w", err)
	}

	r := &Registry{categories: make(map[string]*CategorySchema)}
	for _, c := range doc.Categories {
		cs := &CategorySchema{Category: c.Name}
		for _, p := range c.Params {
			kind, err := kindFromString(p.Kind)
			if err != nil {
				return nil, fmt.Errorf("category %s, parameter %s: %w", c.Name, p.Name, err)
			}
			cs.Params = append(cs.Params, ParameterSpec{
				Name:  p.Name,
				Short: p.Short,
				Kind:  kind,
			})
		}
		if err := cs.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.categories[cs.Category]; dup {
			return nil, fmt.Errorf("duplicate category %q", cs.Category)
		}
		r.categories[cs.Category] = cs
		r.order = append(r.order, cs.Category)
	}

	return r, nil
}

// Lookup returns the schema for a category.
func (r *Registry) Lookup(category string) (*CategorySchema, error) {
	cs, ok := r.categories[category]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", category, ErrCategoryUnsupported)
	}
	return cs, nil
}

// Categories returns the category names in declaration order.
func (r *Registry) Categories() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
