package schema

import (
	"errors"
	"reflect"
	"testing"
)

func TestLoadEmbeddedSchemas(t *testing.T) {
	registry, err := Load()
	if err != nil {
		t.Fatalf("Failed to load embedded schemas: %v", err)
	}

	if !reflect.DeepEqual(registry.Categories(), []string{"run", "exec"}) {
		t.Errorf("Expected run and exec categories, got %v", registry.Categories())
	}

	cs, err := registry.Lookup("run")
	if err != nil {
		t.Fatalf("Failed to look up run: %v", err)
	}

	spec, ok := cs.LongFlag("detach")
	if !ok {
		t.Fatal("Expected run to define --detach")
	}
	if spec.Kind != KindBoolean {
		t.Errorf("Expected detach to be boolean, got %v", spec.Kind)
	}

	spec, ok = cs.ShortFlag("e")
	if !ok {
		t.Fatal("Expected run to define -e")
	}
	if spec.Name != "env" || spec.Kind != KindValued {
		t.Errorf("Expected -e to resolve to valued env, got %+v", spec)
	}

	positionals := cs.Positionals()
	if len(positionals) != 2 {
		t.Fatalf("Expected 2 positionals, got %d", len(positionals))
	}
	if positionals[0].Name != "image" || positionals[0].Kind != KindPositional {
		t.Errorf("Expected image positional first, got %+v", positionals[0])
	}
	if positionals[1].Name != "command" || positionals[1].Kind != KindVariadic {
		t.Errorf("Expected command variadic last, got %+v", positionals[1])
	}
}

func TestLookupUnsupportedCategory(t *testing.T) {
	registry, err := Load()
	if err != nil {
		t.Fatalf("Failed to load embedded schemas: %v", err)
	}

	_, err = registry.Lookup("build")
	if !errors.Is(err, ErrCategoryUnsupported) {
		t.Errorf("Expected ErrCategoryUnsupported, got %v", err)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "unknown kind",
			doc: `categories:
  - name: run
    params:
      - name: detach
        kind: maybe`,
		},
		{
			name: "duplicate parameter name",
			doc: `categories:
  - name: run
    params:
      - name: detach
        kind: boolean
      - name: detach
        kind: boolean`,
		},
		{
			name: "duplicate short flag",
			doc: `categories:
  - name: run
    params:
      - name: detach
        short: d
        kind: boolean
      - name: debug
        short: d
        kind: boolean`,
		},
		{
			name: "positional after variadic",
			doc: `categories:
  - name: run
    params:
      - name: command
        kind: variadic
      - name: image
        kind: positional`,
		},
		{
			name: "short flag on positional",
			doc: `categories:
  - name: run
    params:
      - name: image
        short: i
        kind: positional`,
		},
		{
			name: "duplicate category",
			doc: `categories:
  - name: run
    params: []
  - name: run
    params: []`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{
		KindBoolean:    "boolean",
		KindValued:     "valued",
		KindPositional: "positional",
		KindVariadic:   "variadic",
	}
	for kind, want := range kinds {
		if kind.String() != want {
			t.Errorf("Expected %v, got %s", want, kind.String())
		}
		parsed, err := kindFromString(want)
		if err != nil || parsed != kind {
			t.Errorf("Expected %s to parse to %v, got %v (%v)", want, kind, parsed, err)
		}
	}
}
