// Package parse maps raw command-line tokens to canonical value sets and
// back.
//
// Parsing scans tokens left to right against a category schema. A token
// starting with "--" must match a long flag; a token starting with "-" is a
// short-flag cluster in which every letter but the last must be a boolean
// flag, while the last letter may also be a valued flag consuming the next
// token. Remaining tokens fill the schema's positionals in declared order,
// with a trailing variadic absorbing everything left over.
//
// A parse never drops input silently. If any token fails to resolve to a
// known flag or a free positional slot, the entire original token sequence is
// recorded in the diagnostics so the caller can fall back to replaying it
// verbatim. Missing required positionals are fatal when capturing a new
// command but suppressed when parsing a partial update.
//
// Reconstruction is the inverse direction: it walks the schema in declared
// order and emits one canonical token sequence, independent of the ordering
// or flag-clustering style of the original input. Two token sequences that
// mean the same thing reconstruct identically; this canonicalization is what
// makes stored commands comparable and mergeable.
package parse

import (
	"fmt"
	"strings"

	"github.com/redock-cli/redock/internal/schema"
)

// Value holds the parsed value of a single parameter. Exactly one of the
// fields is meaningful, selected by the parameter's kind.
type Value struct {
	Bool bool     `json:"bool,omitempty"`
	Str  string   `json:"str,omitempty"`
	List []string `json:"list,omitempty"`
}

// Values is a schema-complete canonical value set. Every parameter of the
// schema has an entry, defaulted when the input never mentioned it.
type Values map[string]Value

// Clone returns a deep copy of the value set.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		if val.List != nil {
			val.List = append([]string(nil), val.List...)
		}
		out[k] = val
	}
	return out
}

// Diagnostics carries the non-value outcomes of a parse.
type Diagnostics struct {
	// MissingRequired lists positional parameters that received no value.
	MissingRequired []string
	// Unrecognized holds the complete original token sequence when any
	// token failed to resolve. Empty on a clean parse.
	Unrecognized []string
}

// HasUnrecognized reports whether the parse hit an unresolvable token.
func (d Diagnostics) HasUnrecognized() bool {
	return len(d.Unrecognized) > 0
}

// MissingRequiredError is returned when a capture lacks required arguments.
type MissingRequiredError struct {
	Category string
	Fields   []string
}

// Error implements the error interface.
func (e *MissingRequiredError) Error() string {
	return fmt.Sprintf("category %s: missing required arguments: %s",
		e.Category, strings.Join(e.Fields, ", "))
}

// Parse maps tokens against a schema. In update mode missing required
// positionals are not reported; a partial update is not expected to restate
// every required field.
func Parse(tokens []string, cs *schema.CategorySchema, update bool) (Values, Diagnostics) {
	values := defaults(cs)
	var diags Diagnostics

	positionals := cs.Positionals()
	posIdx := 0
	unrecognized := false

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		switch {
		case strings.HasPrefix(tok, "--") && len(tok) > 2:
			spec, ok := cs.LongFlag(tok[2:])
			if !ok {
				unrecognized = true
				continue
			}
			switch spec.Kind {
			case schema.KindBoolean:
				values[spec.Name] = Value{Bool: true}
			case schema.KindValued:
				if i+1 >= len(tokens) {
					unrecognized = true
					continue
				}
				i++
				values[spec.Name] = Value{Str: tokens[i]}
			}

		case strings.HasPrefix(tok, "-") && len(tok) > 1 && tok != "--":
			consumed, ok := parseCluster(tok[1:], tokens, i, cs, values)
			if !ok {
				unrecognized = true
				continue
			}
			i += consumed

		default:
			if posIdx >= len(positionals) {
				unrecognized = true
				continue
			}
			p := positionals[posIdx]
			if p.Kind == schema.KindVariadic {
				v := values[p.Name]
				v.List = append(v.List, tok)
				values[p.Name] = v
			} else {
				values[p.Name] = Value{Str: tok}
				posIdx++
			}
		}
	}

	if !update {
		for _, p := range positionals {
			if p.Kind == schema.KindPositional && values[p.Name].Str == "" {
				diags.MissingRequired = append(diags.MissingRequired, p.Name)
			}
		}
	}

	if unrecognized {
		diags.Unrecognized = append([]string(nil), tokens...)
	}

	return values, diags
}

// parseCluster resolves a short-flag cluster. It returns the number of extra
// tokens consumed beyond the cluster itself, or ok=false when any letter does
// not resolve to a legal flag for its position in the cluster.
func parseCluster(letters string, tokens []string, i int, cs *schema.CategorySchema, values Values) (int, bool) {
	for j := 0; j < len(letters); j++ {
		spec, ok := cs.ShortFlag(string(letters[j]))
		if !ok {
			return 0, false
		}

		last := j == len(letters)-1
		switch spec.Kind {
		case schema.KindBoolean:
			values[spec.Name] = Value{Bool: true}
		case schema.KindValued:
			// Only the final letter may consume a value.
			if !last || i+1 >= len(tokens) {
				return 0, false
			}
			values[spec.Name] = Value{Str: tokens[i+1]}
			return 1, true
		}
	}
	return 0, true
}

// defaults builds a schema-complete value set with every entry zeroed.
func defaults(cs *schema.CategorySchema) Values {
	values := make(Values, len(cs.Params))
	for _, p := range cs.Params {
		values[p.Name] = Value{}
	}
	return values
}
