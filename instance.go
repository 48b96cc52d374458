package schemax

import (
	"context"
	"fmt"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Instance is a fully populated value of a Schema. Field values are stored
// after coercion; which fields were explicitly supplied at construction is
// tracked for ExcludeUnset serialization.
type Instance struct {
	schema *Schema
	values map[string]any
	set    map[string]struct{}
	extra  map[string]any // leftover input keys under ExtraAllow
}

// Schema returns the schema this instance was validated against.
func (i *Instance) Schema() *Schema { return i.schema }

// Get returns the value of a declared field, invoking the accessor for
// computed fields. Extra keys attached under ExtraAllow are also reachable.
// A failing computed accessor reads as absent; use GetE to see the error.
func (i *Instance) Get(name string) (any, bool) {
	v, ok, _ := i.lookup(name)
	return v, ok
}

// GetE is like Get but surfaces the error of a failing computed accessor.
func (i *Instance) GetE(name string) (any, error) {
	v, ok, err := i.lookup(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewValidationError(Error{Type: CodeUnknownField, Loc: []any{name}, Msg: msgFor(CodeUnknownField, nil)})
	}
	return v, nil
}

func (i *Instance) lookup(name string) (any, bool, error) {
	if f, ok := i.schema.byName[name]; ok {
		if f.computed != nil {
			v, err := f.computed(i)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		}
		v, ok := i.values[name]
		return v, ok, nil
	}
	if i.extra != nil {
		v, ok := i.extra[name]
		return v, ok, nil
	}
	return nil, false, nil
}

// MustGet is like Get but panics when the field is absent.
func (i *Instance) MustGet(name string) any {
	v, ok := i.Get(name)
	if !ok {
		panic("schemax: no value for field " + name)
	}
	return v
}

// WasSet reports whether the field was explicitly supplied at construction
// (defaults do not count).
func (i *Instance) WasSet(name string) bool {
	_, ok := i.set[name]
	return ok
}

// Extra returns a copy of the leftover input keys attached under ExtraAllow.
func (i *Instance) Extra() map[string]any {
	if len(i.extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(i.extra))
	for k, v := range i.extra {
		out[k] = v
	}
	return out
}

// Set assigns a new value to a declared field, coercing and checking
// constraints with the field's own strictness. Mutation of a frozen field or
// a frozen schema fails synchronously.
func (i *Instance) Set(name string, v any) error {
	f, ok := i.schema.byName[name]
	if !ok {
		return NewValidationError(Error{Type: CodeUnknownField, Loc: []any{name}, Msg: msgFor(CodeUnknownField, nil), Input: v})
	}
	if i.schema.opt.Frozen {
		return NewValidationError(Error{Type: CodeFrozenInstance, Loc: []any{name}, Msg: msgFor(CodeFrozenInstance, nil), Input: v})
	}
	if f.frozen || f.computed != nil {
		return NewValidationError(Error{Type: CodeFrozenField, Loc: []any{name}, Msg: msgFor(CodeFrozenField, nil), Input: v})
	}
	w := &walkState{}
	coerced, errs := w.coerceValue(context.Background(), f.typ, v, effectiveStrict(StrictInherit, f.strict, i.schema.opt.Strict), []any{name})
	if len(errs) == 0 {
		errs = prefixLoc([]any{name}, constraintErrors(f, coerced, v))
	}
	if len(errs) > 0 {
		return NewValidationError(errs...)
	}
	i.values[name] = coerced
	if i.set == nil {
		i.set = map[string]struct{}{}
	}
	i.set[name] = struct{}{}
	return nil
}

// String renders a compact repr in declaration order; NoRepr fields are
// hidden.
func (i *Instance) String() string {
	b := &strings.Builder{}
	b.WriteString(i.schema.name)
	b.WriteByte('(')
	first := true
	for _, f := range i.schema.fields {
		if f.noRepr {
			continue
		}
		v, ok := i.Get(f.name)
		if !ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(b, "%s=%v", f.name, v)
	}
	b.WriteByte(')')
	return b.String()
}

// MarshalJSON serializes the instance in JSON mode with default options.
func (i *Instance) MarshalJSON() ([]byte, error) {
	v, err := Serialize(context.Background(), i, SerializeOpt{Mode: ModeJSON})
	if err != nil {
		return nil, err
	}
	return gojson.Marshal(v)
}
