package parse

import (
	"strings"

	"github.com/redock-cli/redock/internal/schema"
)

// Reconstruct emits the canonical token sequence for a value set: schema
// order, long-form flags only, variadic elements as individual tokens. Unset
// parameters emit nothing.
func Reconstruct(values Values, cs *schema.CategorySchema) []string {
	var tokens []string
	for _, p := range cs.Params {
		v := values[p.Name]
		switch p.Kind {
		case schema.KindBoolean:
			if v.Bool {
				tokens = append(tokens, "--"+p.Name)
			}
		case schema.KindValued:
			if v.Str != "" {
				tokens = append(tokens, "--"+p.Name, v.Str)
			}
		case schema.KindPositional:
			if v.Str != "" {
				tokens = append(tokens, v.Str)
			}
		case schema.KindVariadic:
			tokens = append(tokens, v.List...)
		}
	}
	return tokens
}

// Display renders the canonical token sequence as a single line. The variadic
// tail is joined into one token so a multi-word payload reads as one
// positional unit.
func Display(values Values, cs *schema.CategorySchema) string {
	var tokens []string
	for _, p := range cs.Params {
		v := values[p.Name]
		switch p.Kind {
		case schema.KindBoolean:
			if v.Bool {
				tokens = append(tokens, "--"+p.Name)
			}
		case schema.KindValued:
			if v.Str != "" {
				tokens = append(tokens, "--"+p.Name, v.Str)
			}
		case schema.KindPositional:
			if v.Str != "" {
				tokens = append(tokens, v.Str)
			}
		case schema.KindVariadic:
			if len(v.List) > 0 {
				tokens = append(tokens, strings.Join(v.List, " "))
			}
		}
	}
	return strings.Join(tokens, " ")
}
