package document

import (
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-pagebuilder/internal/registry"
	"github.com/goliatone/go-pagebuilder/internal/validation"
)

// ToSerializable renders the document as a plain tree of maps and slices:
// the root zone as an ordered list of full node objects, with nested zone
// contents keyed by "<containerID>:<zoneName>". The shape matches the payload
// the original editor persists, so saved documents load unchanged.
func (d *Document) ToSerializable() map[string]any {
	zones := map[string]any{}
	content := make([]any, 0, len(d.root))
	for _, id := range d.root {
		content = append(content, d.serializeNode(id, zones))
	}

	payload := map[string]any{
		"root":    cloneAnyMap(d.rootProps),
		"content": content,
	}
	if len(zones) > 0 {
		payload["zones"] = zones
	}
	return payload
}

func (d *Document) serializeNode(id string, zones map[string]any) map[string]any {
	inst := d.blocks[id]

	props := make(map[string]any, len(inst.Props)+1)
	maps.Copy(props, inst.Props)
	props["id"] = inst.ID

	def, err := d.registry.DefinitionFor(inst.Type)
	if err == nil {
		for _, zone := range def.Zones {
			children := inst.Zones[zone]
			if len(children) == 0 {
				continue
			}
			entries := make([]any, 0, len(children))
			for _, child := range children {
				entries = append(entries, d.serializeNode(child, zones))
			}
			zones[zoneKey(id, zone)] = entries
		}
	}

	return map[string]any{
		"type":  string(inst.Type),
		"props": props,
	}
}

// FromSerializable rebuilds a document from a serialized payload. The payload
// is first checked against the document JSON Schema; structural defects
// (unknown types, duplicate ids, undeclared or orphaned zones, invalid
// property values) surface as ErrMalformedDocument with a descriptive cause.
func FromSerializable(reg *registry.Registry, payload map[string]any, opts ...Option) (*Document, error) {
	if err := validation.ValidateDocumentPayload(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	doc := New(reg, opts...)

	if raw, ok := payload["root"].(map[string]any); ok {
		doc.rootProps = cloneAnyMap(raw)
	}

	pending := map[string][]any{}
	if raw, ok := payload["zones"].(map[string]any); ok {
		for key, value := range raw {
			entries, ok := value.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: zone %q is not a list", ErrMalformedDocument, key)
			}
			pending[key] = entries
		}
	}

	content, _ := payload["content"].([]any)
	for _, raw := range content {
		id, err := doc.decodeNode(raw, pending)
		if err != nil {
			return nil, err
		}
		doc.root = append(doc.root, id)
	}

	if len(pending) > 0 {
		for key := range pending {
			return nil, fmt.Errorf("%w: zone %q references no reachable container", ErrMalformedDocument, key)
		}
	}

	return doc, nil
}

// decodeNode materializes one serialized node and, transitively, the zone
// contents registered under its id. Consumed zone keys are removed from
// pending so orphans can be detected afterwards.
func (d *Document) decodeNode(raw any, pending map[string][]any) (string, error) {
	node, ok := raw.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: node is not an object", ErrMalformedDocument)
	}
	typeName, _ := node["type"].(string)
	props, _ := node["props"].(map[string]any)
	if typeName == "" || props == nil {
		return "", fmt.Errorf("%w: node missing type or props", ErrMalformedDocument)
	}

	def, err := d.registry.DefinitionFor(registry.BlockType(typeName))
	if err != nil {
		return "", fmt.Errorf("%w: unknown block type %q", ErrMalformedDocument, typeName)
	}

	id, _ := props["id"].(string)
	if id == "" {
		return "", fmt.Errorf("%w: %s node missing id", ErrMalformedDocument, typeName)
	}
	if _, dup := d.blocks[id]; dup {
		return "", fmt.Errorf("%w: duplicate block id %q", ErrMalformedDocument, id)
	}

	inst := &BlockInstance{
		ID:    id,
		Type:  def.Type,
		Props: make(map[string]any, len(def.Fields)),
		Zones: make(map[string][]string, len(def.Zones)),
	}

	for name, value := range props {
		if name == "id" {
			continue
		}
		spec, ok := def.Fields[name]
		if !ok {
			return "", fmt.Errorf("%w: %s has no property %q", ErrMalformedDocument, typeName, name)
		}
		coerced, err := spec.Coerce(name, value)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		inst.Props[name] = coerced
	}
	for name, spec := range def.Fields {
		if _, ok := inst.Props[name]; ok {
			continue
		}
		// Documents saved under an older catalog may lack newer fields;
		// defaults keep the instance complete without rejecting the load.
		coerced, err := spec.Coerce(name, def.Defaults[name])
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		inst.Props[name] = coerced
	}

	// Register before descending so children see the full ancestor set.
	d.blocks[id] = inst

	for key := range pending {
		owner, zone, ok := splitZoneKey(key)
		if !ok || owner != id {
			continue
		}
		if !def.DeclaresZone(zone) {
			return "", fmt.Errorf("%w: %s does not declare zone %q", ErrMalformedDocument, typeName, zone)
		}
	}

	for _, zone := range def.Zones {
		inst.Zones[zone] = []string{}
		key := zoneKey(id, zone)
		entries, ok := pending[key]
		if !ok {
			continue
		}
		delete(pending, key)
		for _, entry := range entries {
			childID, err := d.decodeNode(entry, pending)
			if err != nil {
				return "", err
			}
			inst.Zones[zone] = append(inst.Zones[zone], childID)
		}
	}

	return id, nil
}

func zoneKey(id, zone string) string {
	return id + ":" + zone
}

func splitZoneKey(key string) (string, string, bool) {
	idx := strings.LastIndex(key, ":")
	if idx <= 0 || idx == len(key)-1 {
		return "", "", false
	}
	return key[:idx], key[idx+1:], true
}

func cloneAnyMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	maps.Copy(out, src)
	return out
}
