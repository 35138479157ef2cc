package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BlockType names a category of content block with a fixed schema.
type BlockType string

// Builtin block types shipped with the editor catalog.
const (
	TypeHero      BlockType = "Hero"
	TypeText      BlockType = "Text"
	TypeImage     BlockType = "Image"
	TypeTwoColumn BlockType = "TwoColumn"
	TypeCard      BlockType = "Card"
	TypeButton    BlockType = "Button"
	TypeSpacer    BlockType = "Spacer"
)

// FieldKind discriminates the editable control a FieldSpec produces.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
	FieldNumber   FieldKind = "number"
	FieldUpload   FieldKind = "upload"
)

// SelectOption is one labeled choice of a select field.
type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FieldSpec describes one editable property of a block type. Specs are
// immutable after registry construction.
type FieldSpec struct {
	Kind    FieldKind      `json:"kind"`
	Label   string         `json:"label"`
	Options []SelectOption `json:"options,omitempty"`
	Min     float64        `json:"min,omitempty"`
	Max     float64        `json:"max,omitempty"`
}

var (
	// ErrConstraintViolation reports a property value rejected by its FieldSpec.
	ErrConstraintViolation = errors.New("registry: constraint violation")
	// ErrUnknownType reports a block type missing from the registry.
	ErrUnknownType = errors.New("registry: unknown block type")
)

// ConstraintError carries the offending field and value alongside the
// sentinel so callers can render precise feedback.
type ConstraintError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("registry: field %q rejected value %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConstraintError) Unwrap() error { return ErrConstraintViolation }

// Coerce validates value against the spec and returns its normalized form:
// strings for text-like kinds, float64 for numbers. The name is only used
// for error reporting.
func (f FieldSpec) Coerce(name string, value any) (any, error) {
	switch f.Kind {
	case FieldText, FieldTextarea, FieldUpload:
		s, ok := value.(string)
		if !ok {
			return nil, &ConstraintError{Field: name, Value: value, Reason: "expected a string"}
		}
		return s, nil
	case FieldSelect:
		s, ok := value.(string)
		if !ok {
			return nil, &ConstraintError{Field: name, Value: value, Reason: "expected a string"}
		}
		allowed := make([]any, 0, len(f.Options))
		for _, opt := range f.Options {
			allowed = append(allowed, opt.Value)
		}
		if err := validation.Validate(s, validation.In(allowed...)); err != nil {
			return nil, &ConstraintError{Field: name, Value: value, Reason: "not an allowed option"}
		}
		return s, nil
	case FieldNumber:
		n, ok := toFloat(value)
		if !ok {
			return nil, &ConstraintError{Field: name, Value: value, Reason: "expected a number"}
		}
		if err := validation.Validate(n, validation.Min(f.Min), validation.Max(f.Max)); err != nil {
			return nil, &ConstraintError{
				Field:  name,
				Value:  value,
				Reason: fmt.Sprintf("outside [%v, %v]", f.Min, f.Max),
			}
		}
		return n, nil
	default:
		return nil, &ConstraintError{Field: name, Value: value, Reason: fmt.Sprintf("unsupported field kind %q", f.Kind)}
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ComponentDefinition is one registry entry: a block type, its display
// metadata, its ordered field specs, its default property values, and the
// zone names it declares when it is a container.
type ComponentDefinition struct {
	Type       BlockType
	Label      string
	FieldOrder []string
	Fields     map[string]FieldSpec
	Defaults   map[string]any
	Zones      []string
}

// IsContainer reports whether the definition declares nested zones.
func (d ComponentDefinition) IsContainer() bool {
	return len(d.Zones) > 0
}

// DeclaresZone reports whether zone is one of the definition's zone names.
func (d ComponentDefinition) DeclaresZone(zone string) bool {
	for _, name := range d.Zones {
		if name == zone {
			return true
		}
	}
	return false
}

// validate checks the internal consistency invariants: the field order covers
// every spec exactly once, defaults and specs match one to one, every default
// satisfies its own spec, and zone names are unique.
func (d ComponentDefinition) validate() error {
	if d.Type == "" {
		return fmt.Errorf("registry: definition missing block type")
	}
	if len(d.FieldOrder) != len(d.Fields) {
		return fmt.Errorf("registry: %s field order lists %d names, has %d specs", d.Type, len(d.FieldOrder), len(d.Fields))
	}
	seen := make(map[string]struct{}, len(d.FieldOrder))
	for _, name := range d.FieldOrder {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("registry: %s repeats field %q in order", d.Type, name)
		}
		seen[name] = struct{}{}
		if _, ok := d.Fields[name]; !ok {
			return fmt.Errorf("registry: %s orders unknown field %q", d.Type, name)
		}
	}
	for name, spec := range d.Fields {
		value, ok := d.Defaults[name]
		if !ok {
			return fmt.Errorf("registry: %s missing default for field %q", d.Type, name)
		}
		if _, err := spec.Coerce(name, value); err != nil {
			return fmt.Errorf("registry: %s default for %q invalid: %w", d.Type, name, err)
		}
	}
	for name := range d.Defaults {
		if _, ok := d.Fields[name]; !ok {
			return fmt.Errorf("registry: %s default %q has no field spec", d.Type, name)
		}
	}
	zones := make(map[string]struct{}, len(d.Zones))
	for _, zone := range d.Zones {
		if zone == "" {
			return fmt.Errorf("registry: %s declares an empty zone name", d.Type)
		}
		if _, dup := zones[zone]; dup {
			return fmt.Errorf("registry: %s declares zone %q twice", d.Type, zone)
		}
		zones[zone] = struct{}{}
	}
	return nil
}
