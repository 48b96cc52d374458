package schemax

import (
	"context"
	"fmt"
)

// ModelOpt carries model-level schema options.
type ModelOpt struct {
	Strict         StrictMode  // Model-wide strictness; field-level settings override it.
	Frozen         bool        // Reject mutation of any field after construction.
	PopulateByName bool        // Allow lookup by field name even when an alias is declared.
	Extra          ExtraPolicy // Policy for input keys no field consumed.
}

// SerializerInfo is passed to custom field serializers.
type SerializerInfo struct {
	Field     string
	Mode      Mode
	RoundTrip bool
}

// FieldSerializer overrides the default type-based serialization of a field.
// Exactly one of Plain and Wrap may be set: Plain fully replaces the default;
// Wrap receives a continuation applying default serialization to a (possibly
// modified) value and its result is used as-is.
type FieldSerializer struct {
	Plain func(ctx context.Context, v any, info SerializerInfo) (any, error)
	Wrap  func(ctx context.Context, v any, next func(any) (any, error), info SerializerInfo) (any, error)
	When  WhenUsed
}

// FieldDef declares one schema field. Exactly one of {Required, Default,
// DefaultFactory} must hold for non-computed fields; NewSchema rejects
// anything else.
type FieldDef struct {
	Name string
	Type *Type

	Required        bool
	Default         any
	HasDefault      bool // Distinguishes an explicit nil default from no default.
	DefaultFactory  func() any
	ValidateDefault bool

	Alias              string    // Generic alias, used for validation and as output fallback.
	ValidationAlias    AliasSpec // Explicit validation alias; always wins over Alias.
	SerializationAlias string

	Strict StrictMode
	Frozen bool

	Exclude bool // Never serialized; validation is unaffected.
	NoRepr  bool

	Computed func(*Instance) (any, error) // Read-only derived field; never consumed from input.

	Serializer    *FieldSerializer
	AsRuntimeType bool // Serialize nested models by their runtime schema instead of the declared one.

	Constraints []Constraint
}

// fieldSpec is the compiled, immutable form of a FieldDef.
type fieldSpec struct {
	name            string
	typ             *Type
	required        bool
	hasDefault      bool
	def             any
	defFactory      func() any
	validateDefault bool
	alias           string
	valAlias        AliasSpec
	serAlias        string
	strict          StrictMode
	frozen          bool
	exclude         bool
	noRepr          bool
	computed        func(*Instance) (any, error)
	serializer      *FieldSerializer
	asRuntimeType   bool
	constraints     []Constraint
}

// outputKey returns the key the field is emitted under when aliases are
// requested: serialization alias > generic alias > name.
func (f *fieldSpec) outputKey(byAlias bool) string {
	if !byAlias {
		return f.name
	}
	if f.serAlias != "" {
		return f.serAlias
	}
	if f.alias != "" {
		return f.alias
	}
	return f.name
}

// Schema is the compiled, immutable graph of a structured type. It is built
// once (single-threaded) and safe for concurrent use after finalization.
type Schema struct {
	name      string
	fields    []*fieldSpec // declaration order
	byName    map[string]*fieldSpec
	opt       ModelOpt
	finalized bool
}

// Name returns the schema's registered name.
func (s *Schema) Name() string { return s.name }

// Options returns the model-level options.
func (s *Schema) Options() ModelOpt { return s.opt }

// FieldNames returns field names in declaration order, computed fields
// included.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.name
	}
	return out
}

// Finalized reports whether all forward references have been resolved,
// including those of every schema reachable through nested model fields.
func (s *Schema) Finalized() bool { return s.incomplete() == nil }

// incomplete returns the error that makes s unusable: s itself still
// unfinalized, an unresolved Ref, or an embedded schema that is either.
func (s *Schema) incomplete() *SchemaError {
	return incompleteWalk(s, map[*Schema]struct{}{})
}

func incompleteWalk(s *Schema, seen map[*Schema]struct{}) *SchemaError {
	if _, ok := seen[s]; ok {
		return nil
	}
	seen[s] = struct{}{}
	if !s.finalized {
		return &SchemaError{Code: SchemaIncomplete, Name: s.name, Msg: "schema used before finalization"}
	}
	for _, f := range s.fields {
		var bad *SchemaError
		walkTypes(f.typ, func(t *Type) {
			if bad != nil || t.kind != KindModel {
				return
			}
			if t.schema == nil {
				bad = &SchemaError{Code: SchemaIncomplete, Name: s.name + "." + f.name, Msg: "unresolved reference " + t.ref}
				return
			}
			bad = incompleteWalk(t.schema, seen)
		})
		if bad != nil {
			return bad
		}
	}
	return nil
}

// NewSchema compiles field declarations into an immutable Schema. Schemas
// containing forward references (Ref) stay unfinalized and must go through
// Registry.Define / Registry.Finalize before use.
func NewSchema(name string, opt ModelOpt, defs ...FieldDef) (*Schema, error) {
	if name == "" {
		return nil, &SchemaError{Code: SchemaInvalidField, Msg: "schema name must not be empty"}
	}
	s := &Schema{
		name:   name,
		fields: make([]*fieldSpec, 0, len(defs)),
		byName: make(map[string]*fieldSpec, len(defs)),
		opt:    opt,
	}
	for _, def := range defs {
		f, err := compileField(name, def)
		if err != nil {
			return nil, err
		}
		if _, dup := s.byName[f.name]; dup {
			return nil, &SchemaError{Code: SchemaInvalidField, Name: name + "." + f.name, Msg: "duplicate field name"}
		}
		s.fields = append(s.fields, f)
		s.byName[f.name] = f
	}
	s.finalized = !hasUnresolvedRefs(s)
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(name string, opt ModelOpt, defs ...FieldDef) *Schema {
	s, err := NewSchema(name, opt, defs...)
	if err != nil {
		panic(err)
	}
	return s
}

func compileField(schemaName string, def FieldDef) (*fieldSpec, error) {
	qual := schemaName + "." + def.Name
	fail := func(code, msg string) (*fieldSpec, error) {
		return nil, &SchemaError{Code: code, Name: qual, Msg: msg}
	}
	if def.Name == "" {
		return fail(SchemaInvalidField, "field name must not be empty")
	}
	if def.Type == nil {
		return fail(SchemaInvalidField, "field type must not be nil")
	}

	hasDefault := def.HasDefault || def.Default != nil
	hasFactory := def.DefaultFactory != nil

	if def.Computed != nil {
		if def.Required || hasDefault || hasFactory {
			return fail(SchemaInvalidField, "computed field cannot be required or carry a default")
		}
		if def.Alias != "" || def.ValidationAlias != nil {
			return fail(SchemaInvalidField, "computed field cannot declare a validation alias")
		}
	} else {
		// exactly one of {required, default, default_factory}
		n := 0
		if def.Required {
			n++
		}
		if hasDefault {
			n++
		}
		if hasFactory {
			n++
		}
		if n != 1 {
			return fail(SchemaDefaultConflict, "exactly one of required, default, default factory must be set")
		}
	}
	if def.ValidationAlias != nil && !validAliasSpec(def.ValidationAlias) {
		return fail(SchemaInvalidField, "validation alias paths must start with a string key and contain only string/int segments")
	}
	if def.Serializer != nil {
		set := 0
		if def.Serializer.Plain != nil {
			set++
		}
		if def.Serializer.Wrap != nil {
			set++
		}
		if set != 1 {
			return fail(SchemaInvalidField, "field serializer must set exactly one of Plain, Wrap")
		}
	}

	cons := append([]Constraint(nil), def.Constraints...)
	kind := def.Type.Kind()
	seen := map[constraintKind]bool{}
	for i := range cons {
		if code, msg := compileConstraint(&cons[i], kind); code != "" {
			return nil, &SchemaError{Code: code, Name: qual, Msg: msg}
		}
		if seen[cons[i].kind] {
			return fail(SchemaInvalidConstraint, fmt.Sprintf("duplicate constraint (kind %d)", cons[i].kind))
		}
		seen[cons[i].kind] = true
	}
	if seen[conGt] && seen[conGe] {
		return fail(SchemaInvalidConstraint, "gt and ge are mutually exclusive")
	}
	if seen[conLt] && seen[conLe] {
		return fail(SchemaInvalidConstraint, "lt and le are mutually exclusive")
	}
	if seen[conMinLen] && seen[conMaxLen] {
		var min, max int
		for _, c := range cons {
			if c.kind == conMinLen {
				min = c.n
			}
			if c.kind == conMaxLen {
				max = c.n
			}
		}
		if min > max {
			return fail(SchemaInvalidConstraint, "min length exceeds max length")
		}
	}

	return &fieldSpec{
		name:            def.Name,
		typ:             def.Type,
		required:        def.Required,
		hasDefault:      hasDefault,
		def:             def.Default,
		defFactory:      def.DefaultFactory,
		validateDefault: def.ValidateDefault,
		alias:           def.Alias,
		valAlias:        def.ValidationAlias,
		serAlias:        def.SerializationAlias,
		strict:          def.Strict,
		frozen:          def.Frozen,
		exclude:         def.Exclude,
		noRepr:          def.NoRepr,
		computed:        def.Computed,
		serializer:      def.Serializer,
		asRuntimeType:   def.AsRuntimeType,
		constraints:     cons,
	}, nil
}

func hasUnresolvedRefs(s *Schema) bool {
	for _, f := range s.fields {
		found := false
		walkTypes(f.typ, func(t *Type) {
			if t.kind == KindModel && t.schema == nil {
				found = true
			}
		})
		if found {
			return true
		}
	}
	return false
}

// defaultValue materializes the field default; factories are invoked fresh
// per call.
func (f *fieldSpec) defaultValue() any {
	if f.defFactory != nil {
		return f.defFactory()
	}
	return f.def
}
