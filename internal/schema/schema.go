// Package schema defines the parameter schemas for the supported command
// categories. A schema is pure data: an ordered list of parameter
// specifications describing which flags and positional arguments a category
// accepts. Schemas are loaded once at process start from an embedded YAML
// document and treated as read-only afterwards.
package schema

import (
	"fmt"
)

// Kind identifies the behavior of a parameter.
type Kind int

const (
	// KindBoolean is a flag that carries no value. Present means true.
	KindBoolean Kind = iota
	// KindValued is a flag that consumes the following token as its value.
	KindValued
	// KindPositional is a positional argument consuming exactly one token.
	KindPositional
	// KindVariadic is a trailing positional consuming all remaining tokens.
	KindVariadic
)

// String returns the YAML spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindValued:
		return "valued"
	case KindPositional:
		return "positional"
	case KindVariadic:
		return "variadic"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func kindFromString(s string) (Kind, error) {
	switch s {
	case "boolean":
		return KindBoolean, nil
	case "valued":
		return KindValued, nil
	case "positional":
		return KindPositional, nil
	case "variadic":
		return KindVariadic, nil
	default:
		return 0, fmt.Errorf("unknown parameter kind %q", s)
	}
}

// ParameterSpec describes a single parameter of a category.
type ParameterSpec struct {
	// Name is the canonical key the parameter is stored under. For flags it
	// doubles as the long flag name (e.g. "detach" for --detach).
	Name string
	// Short is the optional single-letter short flag (e.g. "d" for -d).
	Short string
	// Kind selects the parameter behavior.
	Kind Kind
}

// IsFlag reports whether the parameter is consumed as a flag token.
func (p ParameterSpec) IsFlag() bool {
	return p.Kind == KindBoolean || p.Kind == KindValued
}

// CategorySchema is the ordered parameter list of one category.
type CategorySchema struct {
	Category string
	Params   []ParameterSpec

	byLong  map[string]int
	byShort map[string]int
}

// LongFlag resolves a long flag name (without dashes) to its spec.
func (s *CategorySchema) LongFlag(name string) (ParameterSpec, bool) {
	i, ok := s.byLong[name]
	if !ok {
		return ParameterSpec{}, false
	}
	return s.Params[i], true
}

// ShortFlag resolves a short flag letter to its spec.
func (s *CategorySchema) ShortFlag(letter string) (ParameterSpec, bool) {
	i, ok := s.byShort[letter]
	if !ok {
		return ParameterSpec{}, false
	}
	return s.Params[i], true
}

// Positionals returns the positional parameters in declared order.
func (s *CategorySchema) Positionals() []ParameterSpec {
	var out []ParameterSpec
	for _, p := range s.Params {
		if !p.IsFlag() {
			out = append(out, p)
		}
	}
	return out
}

// validate checks the schema invariants: unique names and short flags,
// flags restricted to boolean/valued kinds, and at most one variadic
// parameter which must be the last positional.
func (s *CategorySchema) validate() error {
	if s.Category == "" {
		return fmt.Errorf("schema has no category name")
	}

	s.byLong = make(map[string]int)
	s.byShort = make(map[string]int)

	sawVariadic := false
	for i, p := range s.Params {
		if p.Name == "" {
			return fmt.Errorf("category %s: parameter %d has no name", s.Category, i)
		}
		if _, dup := s.byLong[p.Name]; dup {
			return fmt.Errorf("category %s: duplicate parameter name %q", s.Category, p.Name)
		}
		if sawVariadic && !p.IsFlag() {
			return fmt.Errorf("category %s: positional %q follows a variadic parameter", s.Category, p.Name)
		}

		switch p.Kind {
		case KindBoolean, KindValued:
			s.byLong[p.Name] = i
			if p.Short != "" {
				if len(p.Short) != 1 {
					return fmt.Errorf("category %s: short flag %q must be a single letter", s.Category, p.Short)
				}
				if _, dup := s.byShort[p.Short]; dup {
					return fmt.Errorf("category %s: duplicate short flag %q", s.Category, p.Short)
				}
				s.byShort[p.Short] = i
			}
		case KindPositional:
			if p.Short != "" {
				return fmt.Errorf("category %s: positional %q cannot have a short flag", s.Category, p.Name)
			}
		case KindVariadic:
			if p.Short != "" {
				return fmt.Errorf("category %s: variadic %q cannot have a short flag", s.Category, p.Name)
			}
			sawVariadic = true
		default:
			return fmt.Errorf("category %s: parameter %q has invalid kind", s.Category, p.Name)
		}
	}

	return nil
}
