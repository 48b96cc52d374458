package dsl

import (
	"github.com/schemax-dev/schemax"
)

// TypeSpec pairs a type with the constraints chained onto it. Constraint
// applicability is checked when the schema is built, so a mismatched chain
// (Pattern on an Int, say) surfaces as a SchemaError from Build.
type TypeSpec struct {
	typ  *schemax.Type
	cons []schemax.Constraint
}

func spec(t *schemax.Type) *TypeSpec { return &TypeSpec{typ: t} }

func Any() *TypeSpec     { return spec(schemax.AnyType()) }
func Bool() *TypeSpec    { return spec(schemax.BoolType()) }
func Int() *TypeSpec     { return spec(schemax.IntType()) }
func Float() *TypeSpec   { return spec(schemax.FloatType()) }
func String() *TypeSpec  { return spec(schemax.StringType()) }
func Bytes() *TypeSpec   { return spec(schemax.BytesType()) }
func Decimal() *TypeSpec { return spec(schemax.DecimalType()) }
func Time() *TypeSpec    { return spec(schemax.TimeType()) }

// ListOf declares a homogeneous sequence of elem. Element constraints are
// carried by the element spec and applied per item.
func ListOf(elem *TypeSpec) *TypeSpec { return spec(schemax.ListOf(elem.typ)) }

// SetOf declares a deduplicated sequence of elem.
func SetOf(elem *TypeSpec) *TypeSpec { return spec(schemax.SetOf(elem.typ)) }

// MapOf declares a string-keyed mapping with values of elem.
func MapOf(elem *TypeSpec) *TypeSpec { return spec(schemax.MapOf(elem.typ)) }

// ModelOf declares a nested model field with a fixed schema.
func ModelOf(s *schemax.Schema) *TypeSpec { return spec(schemax.ModelOf(s)) }

// Ref declares a forward reference to a named schema, resolved by
// Registry.Finalize.
func Ref(name string) *TypeSpec { return spec(schemax.Ref(name)) }

func (t *TypeSpec) with(c schemax.Constraint) *TypeSpec {
	t.cons = append(t.cons, c)
	return t
}

func (t *TypeSpec) Gt(bound any) *TypeSpec         { return t.with(schemax.Gt(bound)) }
func (t *TypeSpec) Ge(bound any) *TypeSpec         { return t.with(schemax.Ge(bound)) }
func (t *TypeSpec) Lt(bound any) *TypeSpec         { return t.with(schemax.Lt(bound)) }
func (t *TypeSpec) Le(bound any) *TypeSpec         { return t.with(schemax.Le(bound)) }
func (t *TypeSpec) MultipleOf(bound any) *TypeSpec { return t.with(schemax.MultipleOf(bound)) }

func (t *TypeSpec) MinLen(n int) *TypeSpec        { return t.with(schemax.MinLen(n)) }
func (t *TypeSpec) MaxLen(n int) *TypeSpec        { return t.with(schemax.MaxLen(n)) }
func (t *TypeSpec) Pattern(expr string) *TypeSpec { return t.with(schemax.Pattern(expr)) }

func (t *TypeSpec) MaxDigits(n int) *TypeSpec { return t.with(schemax.MaxDigits(n)) }
func (t *TypeSpec) Places(n int) *TypeSpec    { return t.with(schemax.DecimalPlaces(n)) }

// Finite rejects NaN and infinities on float fields.
func (t *TypeSpec) Finite() *TypeSpec { return t.with(schemax.Finite()) }

// AllowInfNaN lets non-finite floats through range constraints.
func (t *TypeSpec) AllowInfNaN() *TypeSpec {
	t.typ = t.typ.AllowInfNaN()
	return t
}
