package schemax

// TypeKind enumerates the kernel's coercion targets.
type TypeKind int

const (
	KindAny TypeKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindDecimal
	KindTime
	KindList
	KindSet
	KindMap
	KindModel
)

// Type describes a field's coercion target. Values are built through the
// constructors below (or the dsl package) and become immutable once the
// owning schema is finalized.
type Type struct {
	kind        TypeKind
	elem        *Type   // List/Set element or Map value type.
	schema      *Schema // Resolved model schema (KindModel).
	ref         string  // Unresolved forward reference (KindModel).
	allowInfNaN bool    // Floats: let NaN/±Inf bypass range constraints.
}

// Kind returns the coercion target kind.
func (t *Type) Kind() TypeKind { return t.kind }

// Elem returns the element type for lists, sets, and maps.
func (t *Type) Elem() *Type { return t.elem }

// ModelSchema returns the resolved schema for KindModel types; nil before
// finalization.
func (t *Type) ModelSchema() *Schema { return t.schema }

// AllowInfNaN returns a copy of the type letting non-finite floats bypass
// range constraints.
func (t *Type) AllowInfNaN() *Type {
	c := *t
	c.allowInfNaN = true
	return &c
}

func AnyType() *Type     { return &Type{kind: KindAny} }
func BoolType() *Type    { return &Type{kind: KindBool} }
func IntType() *Type     { return &Type{kind: KindInt} }
func FloatType() *Type   { return &Type{kind: KindFloat} }
func StringType() *Type  { return &Type{kind: KindString} }
func BytesType() *Type   { return &Type{kind: KindBytes} }
func DecimalType() *Type { return &Type{kind: KindDecimal} }
func TimeType() *Type    { return &Type{kind: KindTime} }

// ListOf describes an ordered sequence of elem values.
func ListOf(elem *Type) *Type { return &Type{kind: KindList, elem: elem} }

// SetOf describes an unordered, deduplicated collection of elem values.
func SetOf(elem *Type) *Type { return &Type{kind: KindSet, elem: elem} }

// MapOf describes a string-keyed mapping with elem values.
func MapOf(elem *Type) *Type { return &Type{kind: KindMap, elem: elem} }

// ModelOf describes a nested structured type with an already compiled schema.
func ModelOf(s *Schema) *Type { return &Type{kind: KindModel, schema: s} }

// Ref describes a forward reference to a schema registered under name.
// It stays unusable until Registry.Finalize resolves it.
func Ref(name string) *Type { return &Type{kind: KindModel, ref: name} }

// walkTypes visits t and every element type reachable from it.
func walkTypes(t *Type, visit func(*Type)) {
	for t != nil {
		visit(t)
		t = t.elem
	}
}
