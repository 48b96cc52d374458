package schemax

import (
	"context"
	"sort"

	"github.com/schemax-dev/schemax/i18n"
)

// Validate walks the compiled schema against a raw input value and returns a
// fully populated Instance, or a ValidationError carrying the ordered list of
// every field error from this one invocation (validation is exhaustive per
// call, not fail-fast, unless ValidateOpt.FailFast is set).
func Validate(ctx context.Context, s *Schema, v any, opts ...ValidateOpt) (*Instance, error) {
	if s == nil {
		return nil, &SchemaError{Code: SchemaIncomplete, Msg: "nil schema"}
	}
	if serr := s.incomplete(); serr != nil {
		return nil, serr
	}
	var opt ValidateOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	w := &walkState{callStrict: opt.Strict, failFast: opt.FailFast}
	inst, errs := w.validateModel(ctx, s, v, nil, effectiveStrict(opt.Strict, StrictInherit, s.opt.Strict))
	if len(errs) > 0 {
		return nil, NewValidationError(errs...)
	}
	return inst, nil
}

// Input abstracts over payload decoding; implementations live in the source
// package (JSON, YAML, TOML, MsgPack).
type Input interface {
	Decode() (any, error)
}

// ValidateFrom decodes a payload and validates the result.
func ValidateFrom(ctx context.Context, s *Schema, in Input, opts ...ValidateOpt) (*Instance, error) {
	v, err := in.Decode()
	if err != nil {
		return nil, NewValidationError(Error{Type: CodeModelType, Msg: err.Error(), Ctx: map[string]any{"cause": err.Error()}})
	}
	return Validate(ctx, s, v, opts...)
}

// New constructs an instance programmatically from field values; the values
// go through the same validation path as external input.
func (s *Schema) New(values map[string]any) (*Instance, error) {
	return Validate(context.Background(), s, values)
}

// walkState carries per-call validation state. The schema itself stays
// read-only; every call allocates its own state.
type walkState struct {
	callStrict StrictMode
	failFast   bool
	stopped    bool
}

func (w *walkState) add(errs []Error, more ...Error) []Error {
	errs = append(errs, more...)
	if w.failFast && len(errs) > 0 {
		w.stopped = true
	}
	return errs
}

// validateModel coerces the root into a mapping and runs the per-field state
// machine: resolve -> coerce -> constrain, short-circuiting to failed per
// field only while sibling fields keep processing.
func (w *walkState) validateModel(ctx context.Context, s *Schema, v any, loc []any, mapStrict bool) (*Instance, []Error) {
	if inst, ok := v.(*Instance); ok {
		if inst.schema == s {
			return inst, nil
		}
		return nil, []Error{{Type: CodeModelType, Loc: loc, Msg: msgFor(CodeModelType, nil), Input: v,
			Ctx: map[string]any{"expected": s.name, "actual": inst.schema.name}}}
	}
	m, cerr := asMapping(v, mapStrict)
	if cerr != nil {
		return nil, []Error{{Type: CodeModelType, Loc: loc, Msg: msgFor(CodeModelType, cerr.ctx), Input: v, Ctx: cerr.ctx}}
	}

	inst := &Instance{
		schema: s,
		values: make(map[string]any, len(s.fields)),
		set:    map[string]struct{}{},
	}
	consumed := make(map[string]struct{}, len(m))
	var errs []Error

	for _, f := range s.fields {
		if w.stopped {
			return nil, errs
		}
		if f.computed != nil {
			continue // write-only at read time, never populated from input
		}
		raw, key, found := resolveField(s, f, m)
		if !found {
			if f.required {
				errs = w.add(errs, Error{Type: CodeMissing, Loc: appendLoc(loc, f.name), Msg: msgFor(CodeMissing, nil), Input: v})
				continue
			}
			dv := f.defaultValue()
			if f.validateDefault {
				fieldLoc := appendLoc(loc, f.name)
				coerced, ferrs := w.coerceValue(ctx, f.typ, dv, fieldStrict(w.callStrict, f, s), fieldLoc)
				if len(ferrs) == 0 {
					ferrs = prefixLoc(fieldLoc, constraintErrors(f, coerced, dv))
				}
				if len(ferrs) > 0 {
					errs = w.add(errs, ferrs...)
					continue
				}
				dv = coerced
			}
			inst.values[f.name] = dv
			continue
		}
		consumed[key] = struct{}{}
		fieldLoc := appendLoc(loc, f.name)
		coerced, ferrs := w.coerceValue(ctx, f.typ, raw, fieldStrict(w.callStrict, f, s), fieldLoc)
		if len(ferrs) > 0 {
			errs = w.add(errs, ferrs...)
			continue
		}
		if cerrs := constraintErrors(f, coerced, raw); len(cerrs) > 0 {
			errs = w.add(errs, prefixLoc(fieldLoc, cerrs)...)
			continue
		}
		inst.values[f.name] = coerced
		inst.set[f.name] = struct{}{}
	}

	if w.stopped {
		return nil, errs
	}

	// extra-field policy once all known fields are resolved
	if len(m) > len(consumed) {
		leftovers := make([]string, 0, len(m)-len(consumed))
		for k := range m {
			if _, ok := consumed[k]; !ok {
				leftovers = append(leftovers, k)
			}
		}
		sort.Strings(leftovers)
		switch s.opt.Extra {
		case ExtraIgnore:
			// drop
		case ExtraForbid:
			for _, k := range leftovers {
				errs = w.add(errs, Error{Type: CodeExtraForbidden, Loc: appendLoc(loc, k), Msg: msgFor(CodeExtraForbidden, nil), Input: m[k]})
				if w.stopped {
					return nil, errs
				}
			}
		case ExtraAllow:
			inst.extra = make(map[string]any, len(leftovers))
			for _, k := range leftovers {
				inst.extra[k] = m[k]
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return inst, nil
}

// resolveField applies alias precedence: an explicit validation alias always
// wins over the generic alias; the field's own name is consulted only when
// populate-by-name is enabled or no alias is declared at all.
func resolveField(s *Schema, f *fieldSpec, m map[string]any) (any, string, bool) {
	if f.valAlias != nil {
		if v, key, ok := resolveAlias(m, f.valAlias); ok {
			return v, key, true
		}
	} else if f.alias != "" {
		if v, ok := m[f.alias]; ok {
			return v, f.alias, true
		}
	}
	byName := s.opt.PopulateByName || (f.valAlias == nil && f.alias == "")
	if byName {
		if v, ok := m[f.name]; ok {
			return v, f.name, true
		}
	}
	return nil, "", false
}

// coerceValue applies the coercion kernel, recursing into containers and
// nested model schemas with an extended error path.
func (w *walkState) coerceValue(ctx context.Context, t *Type, v any, strict bool, loc []any) (any, []Error) {
	switch t.kind {
	case KindList, KindSet:
		items, cerr := asSequence(v, t.kind)
		if cerr != nil {
			return nil, []Error{kernelError(cerr, loc, v)}
		}
		out := make([]any, 0, len(items))
		var errs []Error
		var dedup map[string]struct{}
		if t.kind == KindSet {
			dedup = make(map[string]struct{}, len(items))
		}
		for idx, item := range items {
			if w.stopped {
				return nil, errs
			}
			ev, eerrs := w.coerceValue(ctx, t.elem, item, strict, appendLoc(loc, idx))
			if len(eerrs) > 0 {
				errs = w.add(errs, eerrs...)
				continue
			}
			if dedup != nil {
				key := canonicalKey(ev)
				if _, dup := dedup[key]; dup {
					continue
				}
				dedup[key] = struct{}{}
			}
			out = append(out, ev)
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return out, nil
	case KindMap:
		m, cerr := asMapping(v, strict)
		if cerr != nil {
			return nil, []Error{kernelError(cerr, loc, v)}
		}
		out := make(map[string]any, len(m))
		var errs []Error
		for _, k := range sortedKeys(m) {
			if w.stopped {
				return nil, errs
			}
			ev, eerrs := w.coerceValue(ctx, t.elem, m[k], strict, appendLoc(loc, k))
			if len(eerrs) > 0 {
				errs = w.add(errs, eerrs...)
				continue
			}
			out[k] = ev
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return out, nil
	case KindModel:
		child := t.schema
		if child == nil || !child.finalized {
			name := t.ref
			if child != nil {
				name = child.name
			}
			return nil, []Error{{Type: SchemaIncomplete, Loc: loc, Msg: "schema used before finalization", Input: v,
				Ctx: map[string]any{"schema": name}}}
		}
		inst, errs := w.validateModel(ctx, child, v, loc, strict)
		if len(errs) > 0 {
			return nil, errs
		}
		return inst, nil
	default:
		cv, cerr := coerceScalar(v, t.kind, strict)
		if cerr != nil {
			return nil, []Error{kernelError(cerr, loc, v)}
		}
		return cv, nil
	}
}

func kernelError(cerr *coerceError, loc []any, input any) Error {
	return Error{
		Type:  cerr.code,
		Loc:   append([]any(nil), loc...),
		Msg:   msgFor(cerr.code, cerr.ctx),
		Input: input,
		Ctx:   cerr.ctx,
	}
}

// constraintErrors evaluates the field's constraints on the coerced value,
// echoing the raw input in each violation.
func constraintErrors(f *fieldSpec, coerced, raw any) []Error {
	errs := checkConstraints(coerced, f.constraints, f.typ.allowInfNaN)
	for i := range errs {
		errs[i].Input = raw
		errs[i].Msg = msgFor(errs[i].Type, errs[i].Ctx)
	}
	return errs
}

// fieldStrict resolves the effective strictness for one field: call-level
// override beats the field setting, which beats the model setting.
func fieldStrict(call StrictMode, f *fieldSpec, s *Schema) bool {
	return effectiveStrict(call, f.strict, s.opt.Strict)
}

func effectiveStrict(call, field, model StrictMode) bool {
	if call != StrictInherit {
		return call == StrictOn
	}
	if field != StrictInherit {
		return field == StrictOn
	}
	return model == StrictOn
}

// appendLoc copies before extending so sibling fields never share backing
// arrays.
func appendLoc(loc []any, seg any) []any {
	out := make([]any, 0, len(loc)+1)
	out = append(out, loc...)
	out = append(out, seg)
	return out
}

func msgFor(code string, params map[string]any) string {
	return i18n.T(code, params)
}
