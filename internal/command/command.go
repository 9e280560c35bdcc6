// Package command implements the merge engine that owns one canonical value
// set: initial capture from raw tokens, partial-update merging against a
// previously stored set, and reconstruction of the replayable token sequence.
package command

import (
	"fmt"
	"slices"
	"strings"

	"github.com/redock-cli/redock/internal/parse"
	"github.com/redock-cli/redock/internal/schema"
)

// Command holds one canonical value set for a category, plus the verbatim
// fallback state for captures that contained unrecognized tokens.
type Command struct {
	schema         *schema.CategorySchema
	values         parse.Values
	fallback       bool
	fallbackTokens []string
}

// New returns an empty command bound to a category schema.
func New(cs *schema.CategorySchema) *Command {
	return &Command{schema: cs, values: parse.Values{}}
}

// Restore rebuilds a command from previously stored state.
func Restore(cs *schema.CategorySchema, values parse.Values, fallback bool, fallbackTokens []string) *Command {
	return &Command{
		schema:         cs,
		values:         values.Clone(),
		fallback:       fallback,
		fallbackTokens: append([]string(nil), fallbackTokens...),
	}
}

// AssignFromArgs performs the initial full capture. Missing required
// arguments are fatal and leave the command unassigned. Unrecognized tokens
// are not fatal: the capture succeeds but switches to verbatim fallback,
// retaining the complete original token sequence for replay.
func (c *Command) AssignFromArgs(tokens []string) error {
	values, diags := parse.Parse(tokens, c.schema, false)
	if len(diags.MissingRequired) > 0 {
		return &parse.MissingRequiredError{
			Category: c.schema.Category,
			Fields:   diags.MissingRequired,
		}
	}

	c.values = values
	if diags.HasUnrecognized() {
		c.fallback = true
		c.fallbackTokens = diags.Unrecognized
	}
	return nil
}

// CanUpdate reports whether the held value set may be merged against. A
// verbatim fallback capture cannot: its canonical fields are not trustworthy
// enough to merge a partial update into.
func (c *Command) CanUpdate() bool {
	return !c.fallback
}

// UpdateFromArgs merges a partial token set into the held values. A boolean
// flag in the update toggles the held boolean; a non-empty valued or
// positional candidate replaces the held value when it differs; everything
// the update does not mention is left untouched.
//
// When the update itself contains unrecognized tokens the merge still
// applies the recognized fields, but the command switches to verbatim
// fallback carrying the update's token sequence, and the returned warning is
// non-nil. Further updates are then rejected; direct replay stays available.
func (c *Command) UpdateFromArgs(tokens []string) (warning error, err error) {
	if !c.CanUpdate() {
		return nil, fmt.Errorf("cannot update a verbatim fallback capture")
	}

	candidate, diags := parse.Parse(tokens, c.schema, true)

	for _, p := range c.schema.Params {
		cv := candidate[p.Name]
		held, ok := c.values[p.Name]
		if !ok {
			// First write for this key; take the candidate as-is.
			c.values[p.Name] = cv
			continue
		}

		switch p.Kind {
		case schema.KindBoolean:
			if cv.Bool {
				held.Bool = !held.Bool
				c.values[p.Name] = held
			}
		case schema.KindValued, schema.KindPositional:
			if cv.Str != "" && cv.Str != held.Str {
				held.Str = cv.Str
				c.values[p.Name] = held
			}
		case schema.KindVariadic:
			if len(cv.List) > 0 && !slices.Equal(cv.List, held.List) {
				held.List = cv.List
				c.values[p.Name] = held
			}
		}
	}

	if diags.HasUnrecognized() {
		c.fallback = true
		c.fallbackTokens = diags.Unrecognized
		return fmt.Errorf("unrecognized tokens in update; storing verbatim fallback"), nil
	}
	return nil, nil
}

// Args returns the replayable token sequence: the stored verbatim tokens for
// a fallback capture, the canonical reconstruction otherwise.
func (c *Command) Args() []string {
	if c.fallback {
		return append([]string(nil), c.fallbackTokens...)
	}
	return parse.Reconstruct(c.values, c.schema)
}

// String renders the command line for display, with the variadic tail joined
// into a single token.
func (c *Command) String() string {
	if c.fallback {
		return strings.Join(c.fallbackTokens, " ")
	}
	return parse.Display(c.values, c.schema)
}

// Values returns a copy of the held value set.
func (c *Command) Values() parse.Values {
	return c.values.Clone()
}

// Fallback reports the verbatim fallback state and its token sequence.
func (c *Command) Fallback() (bool, []string) {
	return c.fallback, append([]string(nil), c.fallbackTokens...)
}
