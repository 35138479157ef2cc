package document

import (
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/internal/registry"
)

// BlockInstance is one node of the page tree: a stable identifier, a block
// type, the concrete property values, and the ordered child ids per declared
// zone when the type is a container.
type BlockInstance struct {
	ID    string
	Type  registry.BlockType
	Props map[string]any
	Zones map[string][]string
}

// ZoneRef addresses an insertion slot: either the root zone or a named zone
// of a container block.
type ZoneRef struct {
	ContainerID string
	Zone        string
}

// Root addresses the document's top-level zone.
func Root() ZoneRef {
	return ZoneRef{}
}

// ZoneOf addresses the named zone of a container block.
func ZoneOf(containerID, zone string) ZoneRef {
	return ZoneRef{ContainerID: containerID, Zone: zone}
}

// IsRoot reports whether the reference addresses the root zone.
func (z ZoneRef) IsRoot() bool {
	return z.ContainerID == "" && z.Zone == ""
}

// IDGenerator produces identifiers for new block instances.
type IDGenerator func() string

// Document is the root aggregate: an arena of block instances keyed by id
// plus the ordered root zone. All mutations are synchronous and leave the
// document untouched when they fail.
type Document struct {
	registry  *registry.Registry
	root      []string
	blocks    map[string]*BlockInstance
	rootProps map[string]any
	id        IDGenerator
}

// Option customises document construction.
type Option func(*Document)

// WithIDGenerator overrides the identifier generator, mainly for tests.
func WithIDGenerator(generator IDGenerator) Option {
	return func(d *Document) {
		if generator != nil {
			d.id = generator
		}
	}
}

// New constructs an empty document bound to the supplied catalog.
func New(reg *registry.Registry, opts ...Option) *Document {
	d := &Document{
		registry:  reg,
		blocks:    make(map[string]*BlockInstance),
		rootProps: map[string]any{},
		id:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry exposes the catalog the document validates against.
func (d *Document) Registry() *registry.Registry {
	return d.registry
}

// CreateInstance produces a detached instance of the given type with a fresh
// identifier, properties copied from the definition defaults, and an empty
// ordered list per declared zone. Attach it with Insert.
func (d *Document) CreateInstance(blockType registry.BlockType) (*BlockInstance, error) {
	def, err := d.registry.DefinitionFor(blockType)
	if err != nil {
		return nil, err
	}

	inst := &BlockInstance{
		ID:    d.id(),
		Type:  blockType,
		Props: make(map[string]any, len(def.Defaults)),
		Zones: make(map[string][]string, len(def.Zones)),
	}
	maps.Copy(inst.Props, def.Defaults)
	for _, zone := range def.Zones {
		inst.Zones[zone] = []string{}
	}
	return inst, nil
}

// Insert attaches a detached instance at index within the referenced zone.
// The index is clamped to the current length. Fails with ErrInvalidZone when
// the container does not declare the zone, ErrNotFound when the container is
// absent, and ErrAlreadyAttached when the instance id is already part of the
// tree.
func (d *Document) Insert(ref ZoneRef, inst *BlockInstance, index int) error {
	if inst == nil || inst.ID == "" {
		return fmt.Errorf("%w: nil instance", ErrNotFound)
	}
	if _, exists := d.blocks[inst.ID]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyAttached, inst.ID)
	}

	validated, err := d.validateInstance(inst)
	if err != nil {
		return err
	}
	for zone, children := range validated.Zones {
		if len(children) > 0 {
			return fmt.Errorf("%w: zone %q of %s is not empty", ErrAlreadyAttached, zone, inst.ID)
		}
	}

	if _, err := d.resolveZone(ref); err != nil {
		return err
	}

	d.blocks[validated.ID] = validated
	d.attach(ref, validated.ID, index)
	return nil
}

// Move detaches the block from its current slot and re-inserts it at index
// in the destination zone. Fails with ErrNotFound, ErrInvalidZone, or
// ErrCycleDetected when the destination is inside the moved subtree.
func (d *Document) Move(id string, ref ZoneRef, index int) error {
	if _, ok := d.blocks[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, err := d.resolveZone(ref); err != nil {
		return err
	}
	if !ref.IsRoot() {
		if ref.ContainerID == id || d.isDescendant(id, ref.ContainerID) {
			return fmt.Errorf("%w: %s cannot contain itself", ErrCycleDetected, id)
		}
	}

	d.detach(id)
	d.attach(ref, id, index)
	return nil
}

// Remove detaches the block and deletes it together with its entire subtree.
func (d *Document) Remove(id string) error {
	if _, ok := d.blocks[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	d.detach(id)
	d.deleteSubtree(id)
	return nil
}

// SetProperty updates a single property after validating the value against
// the block type's FieldSpec. Nothing else on the instance changes.
func (d *Document) SetProperty(id, name string, value any) error {
	inst, ok := d.blocks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	def, err := d.registry.DefinitionFor(inst.Type)
	if err != nil {
		return err
	}
	spec, ok := def.Fields[name]
	if !ok {
		return fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, inst.Type, name)
	}
	coerced, err := spec.Coerce(name, value)
	if err != nil {
		return err
	}
	inst.Props[name] = coerced
	return nil
}

// Get returns a copy of the block instance.
func (d *Document) Get(id string) (*BlockInstance, bool) {
	inst, ok := d.blocks[id]
	if !ok {
		return nil, false
	}
	return cloneInstance(inst), true
}

// Root returns the ordered top-level block ids.
func (d *Document) Root() []string {
	out := make([]string, len(d.root))
	copy(out, d.root)
	return out
}

// Children returns the ordered child ids of the named zone.
func (d *Document) Children(id, zone string) ([]string, error) {
	inst, ok := d.blocks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	children, ok := inst.Zones[zone]
	if !ok {
		return nil, fmt.Errorf("%w: %s does not declare %q", ErrInvalidZone, inst.Type, zone)
	}
	out := make([]string, len(children))
	copy(out, children)
	return out, nil
}

// Len reports the number of attached block instances.
func (d *Document) Len() int {
	return len(d.blocks)
}

// resolveZone checks that the reference addresses an existing slot and
// returns the current sibling list.
func (d *Document) resolveZone(ref ZoneRef) ([]string, error) {
	if ref.IsRoot() {
		return d.root, nil
	}
	container, ok := d.blocks[ref.ContainerID]
	if !ok {
		return nil, fmt.Errorf("%w: container %s", ErrNotFound, ref.ContainerID)
	}
	children, ok := container.Zones[ref.Zone]
	if !ok {
		return nil, fmt.Errorf("%w: %s does not declare %q", ErrInvalidZone, container.Type, ref.Zone)
	}
	return children, nil
}

func (d *Document) attach(ref ZoneRef, id string, index int) {
	if ref.IsRoot() {
		d.root = insertAt(d.root, id, index)
		return
	}
	container := d.blocks[ref.ContainerID]
	container.Zones[ref.Zone] = insertAt(container.Zones[ref.Zone], id, index)
}

func (d *Document) detach(id string) {
	d.root = removeID(d.root, id)
	for _, inst := range d.blocks {
		for zone, children := range inst.Zones {
			inst.Zones[zone] = removeID(children, id)
		}
	}
}

func (d *Document) deleteSubtree(id string) {
	inst, ok := d.blocks[id]
	if !ok {
		return
	}
	for _, children := range inst.Zones {
		for _, child := range children {
			d.deleteSubtree(child)
		}
	}
	delete(d.blocks, id)
}

// isDescendant reports whether candidate lives inside the subtree rooted at id.
func (d *Document) isDescendant(id, candidate string) bool {
	inst, ok := d.blocks[id]
	if !ok {
		return false
	}
	for _, children := range inst.Zones {
		for _, child := range children {
			if child == candidate || d.isDescendant(child, candidate) {
				return true
			}
		}
	}
	return false
}

// validateInstance checks the instance against its definition and returns a
// normalized private copy: every FieldSpec has exactly one valid value and
// every declared zone has a list.
func (d *Document) validateInstance(inst *BlockInstance) (*BlockInstance, error) {
	def, err := d.registry.DefinitionFor(inst.Type)
	if err != nil {
		return nil, err
	}

	out := &BlockInstance{
		ID:    inst.ID,
		Type:  inst.Type,
		Props: make(map[string]any, len(def.Fields)),
		Zones: make(map[string][]string, len(def.Zones)),
	}

	for name := range inst.Props {
		if _, ok := def.Fields[name]; !ok {
			return nil, fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, inst.Type, name)
		}
	}
	for name, spec := range def.Fields {
		value, ok := inst.Props[name]
		if !ok {
			return nil, &registry.ConstraintError{Field: name, Value: nil, Reason: "missing value"}
		}
		coerced, err := spec.Coerce(name, value)
		if err != nil {
			return nil, err
		}
		out.Props[name] = coerced
	}

	for zone := range inst.Zones {
		if !def.DeclaresZone(zone) {
			return nil, fmt.Errorf("%w: %s does not declare %q", ErrInvalidZone, inst.Type, zone)
		}
	}
	for _, zone := range def.Zones {
		children := make([]string, len(inst.Zones[zone]))
		copy(children, inst.Zones[zone])
		out.Zones[zone] = children
	}

	return out, nil
}

func cloneInstance(inst *BlockInstance) *BlockInstance {
	cloned := &BlockInstance{
		ID:    inst.ID,
		Type:  inst.Type,
		Props: make(map[string]any, len(inst.Props)),
		Zones: make(map[string][]string, len(inst.Zones)),
	}
	maps.Copy(cloned.Props, inst.Props)
	for zone, children := range inst.Zones {
		copied := make([]string, len(children))
		copy(copied, children)
		cloned.Zones[zone] = copied
	}
	return cloned
}

func insertAt(list []string, id string, index int) []string {
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list[:index]...)
	out = append(out, id)
	out = append(out, list[index:]...)
	return out
}

func removeID(list []string, id string) []string {
	for i, candidate := range list {
		if candidate == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
