// Package dsl provides a fluent builder layer over schemax schema
// construction. Builders collect plain FieldDef values; all invariant
// checking stays in schemax.NewSchema.
package dsl

import (
	"github.com/schemax-dev/schemax"
)

// ObjectBuilder accumulates field definitions for a named model schema.
type ObjectBuilder struct {
	name string
	opt  schemax.ModelOpt
	defs []schemax.FieldDef
}

// FieldStep scopes chained modifiers to the field most recently added with
// Field. Builder-level methods are mirrored so a chain never needs to be
// broken.
type FieldStep struct {
	b *ObjectBuilder
	i int // index into b.defs
}

// Object starts a builder for a model schema called name.
func Object(name string) *ObjectBuilder {
	return &ObjectBuilder{name: name}
}

// Field adds a field of the given type. A field left without Required,
// Default, or DefaultFactory is made required at Build time.
func (b *ObjectBuilder) Field(name string, t *TypeSpec) *FieldStep {
	b.defs = append(b.defs, schemax.FieldDef{
		Name:        name,
		Type:        t.typ,
		Constraints: t.cons,
	})
	return &FieldStep{b: b, i: len(b.defs) - 1}
}

// Computed adds a read-only derived field. Computed fields are never consumed
// from input and never required.
func (b *ObjectBuilder) Computed(name string, t *TypeSpec, fn func(*schemax.Instance) (any, error)) *ObjectBuilder {
	b.defs = append(b.defs, schemax.FieldDef{Name: name, Type: t.typ, Computed: fn, Constraints: t.cons})
	return b
}

// Strict enables exact-type validation for every field that does not set its
// own strictness.
func (b *ObjectBuilder) Strict() *ObjectBuilder {
	b.opt.Strict = schemax.StrictOn
	return b
}

// Lax selects coercing validation model-wide.
func (b *ObjectBuilder) Lax() *ObjectBuilder {
	b.opt.Strict = schemax.StrictOff
	return b
}

// Frozen rejects mutation of any field after construction.
func (b *ObjectBuilder) Frozen() *ObjectBuilder {
	b.opt.Frozen = true
	return b
}

// PopulateByName allows input lookup by field name even when a validation
// alias is declared.
func (b *ObjectBuilder) PopulateByName() *ObjectBuilder {
	b.opt.PopulateByName = true
	return b
}

// ExtraIgnore drops input keys no field consumed (the default).
func (b *ObjectBuilder) ExtraIgnore() *ObjectBuilder {
	b.opt.Extra = schemax.ExtraIgnore
	return b
}

// ExtraForbid reports leftover input keys as errors.
func (b *ObjectBuilder) ExtraForbid() *ObjectBuilder {
	b.opt.Extra = schemax.ExtraForbid
	return b
}

// ExtraAllow attaches leftover input keys to the instance.
func (b *ObjectBuilder) ExtraAllow() *ObjectBuilder {
	b.opt.Extra = schemax.ExtraAllow
	return b
}

// Build compiles the schema. Fields with none of Required, Default, or
// DefaultFactory are marked required here, so optionality is always an
// explicit choice.
func (b *ObjectBuilder) Build() (*schemax.Schema, error) {
	defs := make([]schemax.FieldDef, len(b.defs))
	copy(defs, b.defs)
	for i := range defs {
		d := &defs[i]
		if d.Computed == nil && !d.Required && !d.HasDefault && d.Default == nil && d.DefaultFactory == nil {
			d.Required = true
		}
	}
	return schemax.NewSchema(b.name, b.opt, defs...)
}

// MustBuild is like Build but panics on error.
func (b *ObjectBuilder) MustBuild() *schemax.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// BuildIn compiles the schema and registers it in reg under its name, so Ref
// fields elsewhere can resolve to it at Finalize.
func (b *ObjectBuilder) BuildIn(reg *schemax.Registry) (*schemax.Schema, error) {
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	return reg.Register(s)
}

func (f *FieldStep) def() *schemax.FieldDef { return &f.b.defs[f.i] }

// Required marks the field as required.
func (f *FieldStep) Required() *FieldStep {
	f.def().Required = true
	return f
}

// Default sets a static default. Defaults are stored as-is; chain
// ValidateDefault to run them through coercion and constraints.
func (f *FieldStep) Default(v any) *FieldStep {
	d := f.def()
	d.Default = v
	d.HasDefault = true
	return f
}

// DefaultFactory sets a per-instantiation default, for mutable defaults that
// must not be shared.
func (f *FieldStep) DefaultFactory(fn func() any) *FieldStep {
	f.def().DefaultFactory = fn
	return f
}

// ValidateDefault runs applied defaults through the same coercion and
// constraint checks as regular input.
func (f *FieldStep) ValidateDefault() *FieldStep {
	f.def().ValidateDefault = true
	return f
}

// Alias sets the generic alias, used for validation input and as the
// serialization fallback key.
func (f *FieldStep) Alias(key string) *FieldStep {
	f.def().Alias = key
	return f
}

// ValidationAlias sets an explicit validation alias. It always wins over
// Alias on the input side. Accepts schemax.Alias, AliasPath, AliasChoices.
func (f *FieldStep) ValidationAlias(spec schemax.AliasSpec) *FieldStep {
	f.def().ValidationAlias = spec
	return f
}

// SerializationAlias sets the output key used when serializing by alias.
func (f *FieldStep) SerializationAlias(key string) *FieldStep {
	f.def().SerializationAlias = key
	return f
}

// Strict forces exact-type validation for this field regardless of the model
// setting.
func (f *FieldStep) Strict() *FieldStep {
	f.def().Strict = schemax.StrictOn
	return f
}

// Lax forces coercing validation for this field.
func (f *FieldStep) Lax() *FieldStep {
	f.def().Strict = schemax.StrictOff
	return f
}

// Frozen rejects mutation of this field after construction.
func (f *FieldStep) Frozen() *FieldStep {
	f.def().Frozen = true
	return f
}

// Exclude keeps the field out of every serialization.
func (f *FieldStep) Exclude() *FieldStep {
	f.def().Exclude = true
	return f
}

// NoRepr hides the field value from Instance.String.
func (f *FieldStep) NoRepr() *FieldStep {
	f.def().NoRepr = true
	return f
}

// Serializer attaches a custom field serializer.
func (f *FieldStep) Serializer(s *schemax.FieldSerializer) *FieldStep {
	f.def().Serializer = s
	return f
}

// AsRuntimeType serializes nested models by their runtime schema instead of
// the declared one.
func (f *FieldStep) AsRuntimeType() *FieldStep {
	f.def().AsRuntimeType = true
	return f
}

// Field starts the next field, ending this step's chain.
func (f *FieldStep) Field(name string, t *TypeSpec) *FieldStep { return f.b.Field(name, t) }

// Computed mirrors ObjectBuilder.Computed.
func (f *FieldStep) Computed(name string, t *TypeSpec, fn func(*schemax.Instance) (any, error)) *ObjectBuilder {
	return f.b.Computed(name, t, fn)
}

func (f *FieldStep) Build() (*schemax.Schema, error) { return f.b.Build() }
func (f *FieldStep) MustBuild() *schemax.Schema      { return f.b.MustBuild() }
func (f *FieldStep) BuildIn(reg *schemax.Registry) (*schemax.Schema, error) {
	return f.b.BuildIn(reg)
}
