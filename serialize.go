package schemax

import (
	"context"
	"encoding/base64"
	"math"
	"reflect"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Serialize walks the instance in schema declaration order and produces
// structured output (to_structured). Serialization errors abort the whole
// call immediately; there is no meaningful partial output.
func Serialize(ctx context.Context, inst *Instance, opt SerializeOpt) (any, error) {
	if inst == nil {
		return nil, nil
	}
	w := &serWalker{opt: opt, onPath: map[*Instance]struct{}{}}
	return w.model(ctx, inst, inst.schema, opt.Include, opt.Exclude, nil)
}

// ToJSON serializes in JSON mode and encodes the result canonically
// (to_json_text). It is byte-for-byte the encoding of what Serialize would
// produce with Mode set to ModeJSON.
func ToJSON(ctx context.Context, inst *Instance, opt SerializeOpt) ([]byte, error) {
	opt.Mode = ModeJSON
	v, err := Serialize(ctx, inst, opt)
	if err != nil {
		return nil, err
	}
	return gojson.Marshal(v)
}

type serWalker struct {
	opt    SerializeOpt
	onPath map[*Instance]struct{} // instance identities on the current recursion path
}

func (w *serWalker) model(ctx context.Context, inst *Instance, declared *Schema, include, exclude FieldMask, loc []any) (map[string]any, error) {
	if _, cyclic := w.onPath[inst]; cyclic {
		return nil, NewValidationError(Error{Type: CodeCyclicReference, Loc: loc, Msg: msgFor(CodeCyclicReference, nil)})
	}
	w.onPath[inst] = struct{}{}
	defer delete(w.onPath, inst)

	s := declared
	if s == nil {
		s = inst.schema
	}

	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		if f.exclude {
			continue // schema-level exclusion cannot be re-included per call
		}
		subInc, subExc, skip := narrowMasks(include, exclude, f.name)
		if skip {
			continue
		}

		var v any
		if f.computed != nil {
			cv, err := f.computed(inst)
			if err != nil {
				return nil, NewValidationError(Error{Type: CodeSerialization, Loc: appendLoc(loc, f.name),
					Msg: err.Error(), Ctx: map[string]any{"cause": err.Error()}})
			}
			v = cv
		} else {
			var ok bool
			v, ok = inst.values[f.name]
			if !ok {
				continue
			}
			if w.opt.ExcludeUnset && !inst.WasSet(f.name) {
				continue
			}
			if w.opt.ExcludeDefaults && equalsDefault(f, v) {
				continue
			}
		}
		if w.opt.ExcludeNone && v == nil {
			continue
		}

		ev, err := w.field(ctx, f, v, subInc, subExc, appendLoc(loc, f.name))
		if err != nil {
			return nil, err
		}
		out[f.outputKey(w.opt.ByAlias)] = ev
	}

	// extra keys attached under ExtraAllow are emitted verbatim
	for _, k := range sortedKeys(inst.extra) {
		subInc, subExc, skip := narrowMasks(include, exclude, k)
		if skip {
			continue
		}
		v := inst.extra[k]
		if w.opt.ExcludeNone && v == nil {
			continue
		}
		ev, err := w.anyValue(ctx, v, subInc, subExc, appendLoc(loc, k))
		if err != nil {
			return nil, err
		}
		out[k] = ev
	}
	return out, nil
}

// field applies the per-field custom serializer (gated by WhenUsed) or falls
// back to default type-based serialization.
func (w *serWalker) field(ctx context.Context, f *fieldSpec, v any, include, exclude FieldMask, loc []any) (any, error) {
	declared := f.typ.schema
	if f.asRuntimeType {
		declared = nil // dispatch on the runtime instance's schema
	}
	if f.serializer != nil && w.serializerApplies(f.serializer.When, v) {
		info := SerializerInfo{Field: f.name, Mode: w.opt.Mode, RoundTrip: w.opt.RoundTrip}
		if f.serializer.Plain != nil {
			out, err := f.serializer.Plain(ctx, v, info)
			if err != nil {
				return nil, NewValidationError(Error{Type: CodeSerialization, Loc: loc, Msg: err.Error()})
			}
			return out, nil
		}
		next := func(v2 any) (any, error) {
			return w.value(ctx, f.typ, declared, v2, include, exclude, loc)
		}
		out, err := f.serializer.Wrap(ctx, v, next, info)
		if err != nil {
			if _, ok := AsValidationError(err); ok {
				return nil, err
			}
			return nil, NewValidationError(Error{Type: CodeSerialization, Loc: loc, Msg: err.Error()})
		}
		return out, nil
	}
	return w.value(ctx, f.typ, declared, v, include, exclude, loc)
}

func (w *serWalker) serializerApplies(when WhenUsed, v any) bool {
	switch when {
	case SerializeAlways:
		return true
	case SerializeUnlessNone:
		return v != nil
	case SerializeJSONOnly:
		return w.opt.Mode == ModeJSON
	case SerializeJSONUnlessNone:
		return w.opt.Mode == ModeJSON && v != nil
	}
	return false
}

// value serializes by the declared type. Nested model fields use the
// declared schema so subclass-only fields never leak through a
// narrower-typed field; declared == nil requests runtime-type dispatch.
func (w *serWalker) value(ctx context.Context, t *Type, declared *Schema, v any, include, exclude FieldMask, loc []any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t.kind {
	case KindModel:
		inst, ok := v.(*Instance)
		if !ok {
			return nil, NewValidationError(Error{Type: CodeSerialization, Loc: loc, Msg: "expected model instance", Input: v})
		}
		return w.model(ctx, inst, declared, include, exclude, loc)
	case KindList, KindSet:
		items, ok := v.([]any)
		if !ok {
			return w.scalar(v), nil
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			subInc, subExc, skip := narrowMasks(include, exclude, i)
			if skip {
				continue
			}
			ev, err := w.value(ctx, t.elem, t.elem.schema, item, subInc, subExc, appendLoc(loc, i))
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		return out, nil
	case KindMap:
		m, ok := v.(map[string]any)
		if !ok {
			return w.scalar(v), nil
		}
		out := make(map[string]any, len(m))
		for _, k := range sortedKeys(m) {
			subInc, subExc, skip := narrowMasks(include, exclude, k)
			if skip {
				continue
			}
			ev, err := w.value(ctx, t.elem, t.elem.schema, m[k], subInc, subExc, appendLoc(loc, k))
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case KindAny:
		return w.anyValue(ctx, v, include, exclude, loc)
	default:
		return w.scalar(v), nil
	}
}

// anyValue serializes a dynamically typed value, dispatching on its runtime
// shape.
func (w *serWalker) anyValue(ctx context.Context, v any, include, exclude FieldMask, loc []any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *Instance:
		return w.model(ctx, t, t.schema, include, exclude, loc)
	case []any:
		out := make([]any, 0, len(t))
		for i, item := range t {
			subInc, subExc, skip := narrowMasks(include, exclude, i)
			if skip {
				continue
			}
			ev, err := w.anyValue(ctx, item, subInc, subExc, appendLoc(loc, i))
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for _, k := range sortedKeys(t) {
			subInc, subExc, skip := narrowMasks(include, exclude, k)
			if skip {
				continue
			}
			ev, err := w.anyValue(ctx, t[k], subInc, subExc, appendLoc(loc, k))
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	default:
		return w.scalar(v), nil
	}
}

// scalar applies the fixed per-type JSON canonicalization in ModeJSON and
// passes native values through otherwise.
func (w *serWalker) scalar(v any) any {
	if w.opt.Mode != ModeJSON {
		return v
	}
	switch t := v.(type) {
	case time.Time:
		return formatRFC3339Canonical(t)
	case decimal.Decimal:
		return t.String()
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	}
	return v
}

// narrowMasks applies include-whitelist then exclude-subtraction semantics
// for one field key and returns the narrowed child masks.
func narrowMasks(include, exclude FieldMask, key any) (subInc, subExc FieldMask, skip bool) {
	if include != nil {
		sub, _, ok := include.entry(key)
		if !ok {
			return nil, nil, true
		}
		subInc = sub // nil sub means the whole subtree is included
	}
	if exclude != nil {
		sub, leaf, ok := exclude.entry(key)
		if ok && leaf {
			return nil, nil, true
		}
		if ok {
			subExc = sub
		}
	}
	return subInc, subExc, false
}

// equalsDefault reports whether the current value structurally equals the
// field's default (or a freshly computed factory value).
func equalsDefault(f *fieldSpec, v any) bool {
	if !f.hasDefault && f.defFactory == nil {
		return false
	}
	return reflect.DeepEqual(v, f.defaultValue())
}
