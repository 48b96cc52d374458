package schemax

// StrictMode is the tri-state strictness setting. Call-level overrides beat
// field-level settings, which beat the model-level setting; StrictInherit
// defers to the next level out (the outermost fallback is lax).
type StrictMode int

const (
	StrictInherit StrictMode = iota
	StrictOn                 // Exact-type validation, no cross-type coercion.
	StrictOff                // Lax coercion per the kernel tables.
)

// ExtraPolicy controls how input keys not consumed by any field are handled.
type ExtraPolicy int

const (
	ExtraIgnore ExtraPolicy = iota // Drop leftover keys.
	ExtraForbid                    // Report leftover keys as extra_forbidden.
	ExtraAllow                     // Attach leftover keys verbatim to the instance.
)

// Mode dictates the serialization output shape.
type Mode int

const (
	ModeNative Mode = iota // Native Go values (time.Time, decimal.Decimal, []byte).
	ModeJSON               // JSON-compatible values only; non-native types are canonicalized.
)

// WhenUsed gates a custom field serializer.
type WhenUsed int

const (
	SerializeAlways WhenUsed = iota
	SerializeUnlessNone
	SerializeJSONOnly
	SerializeJSONUnlessNone
)

// ValidateOpt bundles per-call validation options.
type ValidateOpt struct {
	Strict   StrictMode // Call-level override; StrictInherit defers to field/model settings.
	FailFast bool       // Stop at the first error instead of collecting exhaustively.
}

// SerializeOpt bundles per-call serialization options.
type SerializeOpt struct {
	Mode            Mode
	ByAlias         bool      // Emit serialization aliases instead of field names.
	Include         FieldMask // Whitelist; nil means all fields.
	Exclude         FieldMask // Removed from whatever Include leaves.
	ExcludeUnset    bool      // Only fields explicitly supplied at construction.
	ExcludeDefaults bool      // Skip fields structurally equal to their default.
	ExcludeNone     bool      // Skip nil-valued fields.
	RoundTrip       bool      // Ask custom serializers for re-parseable output.
}

// allItemsKey is the wildcard mask key matching every element of a sequence
// (or every field of a mapping).
type allItemsKey struct{}

// AllItems selects all elements in a FieldMask, e.g.
// FieldMask{"items": FieldMask{AllItems: FieldMask{"price": true}}}.
var AllItems = allItemsKey{}

// FieldMask is a recursive include/exclude spec. Keys are field names
// (string), sequence indices (int), or AllItems; values are either the bool
// true (whole subtree) or a nested FieldMask.
type FieldMask map[any]any

// MaskOf builds a flat mask selecting whole subtrees for each key.
func MaskOf(keys ...any) FieldMask {
	m := make(FieldMask, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// entry looks up key (falling back to AllItems) and reports whether the match
// selects the whole subtree (leaf) or narrows to a nested mask.
func (m FieldMask) entry(key any) (sub FieldMask, leaf bool, ok bool) {
	if m == nil {
		return nil, false, false
	}
	v, found := m[key]
	if !found {
		v, found = m[AllItems]
	}
	if !found {
		return nil, false, false
	}
	switch t := v.(type) {
	case bool:
		return nil, t, t
	case FieldMask:
		return t, false, true
	default:
		return nil, false, false
	}
}
