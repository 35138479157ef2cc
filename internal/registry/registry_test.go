package registry_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-pagebuilder/internal/registry"
)

func TestNewRejectsDuplicateTypes(t *testing.T) {
	defs := []registry.ComponentDefinition{
		textDefinition(),
		textDefinition(),
	}
	if _, err := registry.New(defs); err == nil {
		t.Fatal("expected duplicate type to fail registry construction")
	}
}

func TestNewRejectsDefaultWithoutSpec(t *testing.T) {
	def := textDefinition()
	def.Defaults["ghost"] = "boo"
	if _, err := registry.New([]registry.ComponentDefinition{def}); err == nil {
		t.Fatal("expected orphan default to fail registry construction")
	}
}

func TestNewRejectsSpecWithoutDefault(t *testing.T) {
	def := textDefinition()
	delete(def.Defaults, "body")
	if _, err := registry.New([]registry.ComponentDefinition{def}); err == nil {
		t.Fatal("expected missing default to fail registry construction")
	}
}

func TestNewRejectsInvalidDefault(t *testing.T) {
	def := registry.ComponentDefinition{
		Type:       "Gauge",
		Label:      "Gauge",
		FieldOrder: []string{"level"},
		Fields: map[string]registry.FieldSpec{
			"level": {Kind: registry.FieldNumber, Label: "Level", Min: 0, Max: 10},
		},
		Defaults: map[string]any{"level": float64(42)},
	}
	if _, err := registry.New([]registry.ComponentDefinition{def}); err == nil {
		t.Fatal("expected out-of-range default to fail registry construction")
	}
}

func TestNewRejectsDuplicateZoneNames(t *testing.T) {
	def := textDefinition()
	def.Zones = []string{"main", "main"}
	if _, err := registry.New([]registry.ComponentDefinition{def}); err == nil {
		t.Fatal("expected duplicate zone names to fail registry construction")
	}
}

func TestDefinitionForUnknownType(t *testing.T) {
	reg := registry.Builtin()
	if _, err := reg.DefinitionFor("Carousel"); !errors.Is(err, registry.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType got %v", err)
	}
}

func TestDefinitionForReturnsCopy(t *testing.T) {
	reg := registry.Builtin()
	def, err := reg.DefinitionFor(registry.TypeHero)
	if err != nil {
		t.Fatalf("definition for hero: %v", err)
	}
	def.Defaults["title"] = "mutated"

	again, err := reg.DefinitionFor(registry.TypeHero)
	if err != nil {
		t.Fatalf("definition for hero: %v", err)
	}
	if again.Defaults["title"] != "Welcome" {
		t.Fatalf("registry entry mutated through returned copy: %v", again.Defaults["title"])
	}
}

func TestBuiltinDefaultsSatisfyOwnSpecs(t *testing.T) {
	reg := registry.Builtin()
	for _, blockType := range reg.Types() {
		def, err := reg.DefinitionFor(blockType)
		if err != nil {
			t.Fatalf("definition for %s: %v", blockType, err)
		}
		for name, spec := range def.Fields {
			if _, err := spec.Coerce(name, def.Defaults[name]); err != nil {
				t.Fatalf("%s default %q violates its spec: %v", blockType, name, err)
			}
		}
	}
}

func TestCategoriesCoverKnownTypesOnly(t *testing.T) {
	reg := registry.Builtin()
	categories := reg.Categories()
	if len(categories) == 0 {
		t.Fatal("expected builtin palette categories")
	}
	for _, category := range categories {
		for _, blockType := range category.Types {
			if _, err := reg.DefinitionFor(blockType); err != nil {
				t.Fatalf("category %s lists unknown type %s: %v", category.Key, blockType, err)
			}
		}
	}
}

func TestFieldSpecCoerce(t *testing.T) {
	number := registry.FieldSpec{Kind: registry.FieldNumber, Label: "Width", Min: 20, Max: 80}

	if _, err := number.Coerce("leftWidth", float64(81)); !errors.Is(err, registry.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation for 81 got %v", err)
	}
	if _, err := number.Coerce("leftWidth", "wide"); !errors.Is(err, registry.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation for non-number got %v", err)
	}
	got, err := number.Coerce("leftWidth", 40)
	if err != nil {
		t.Fatalf("coerce int: %v", err)
	}
	if got != float64(40) {
		t.Fatalf("expected normalized float64(40) got %#v", got)
	}

	choice := registry.FieldSpec{Kind: registry.FieldSelect, Label: "Height", Options: []registry.SelectOption{
		{Label: "Small", Value: "small"},
		{Label: "Medium", Value: "medium"},
		{Label: "Large", Value: "large"},
	}}
	if _, err := choice.Coerce("height", "huge"); !errors.Is(err, registry.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation for huge got %v", err)
	}
	if _, err := choice.Coerce("height", "large"); err != nil {
		t.Fatalf("coerce valid option: %v", err)
	}
}

func textDefinition() registry.ComponentDefinition {
	return registry.ComponentDefinition{
		Type:       "Prose",
		Label:      "Prose",
		FieldOrder: []string{"body"},
		Fields: map[string]registry.FieldSpec{
			"body": {Kind: registry.FieldTextarea, Label: "Body"},
		},
		Defaults: map[string]any{"body": "hello"},
	}
}
