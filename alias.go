package schemax

// AliasSpec selects the input key(s) a field's value is looked up under
// during validation. Three shapes exist: a plain key (Alias), an ordered
// key/index path (AliasPath), and an ordered list of candidates
// (AliasChoices) where the first one that resolves wins.
type AliasSpec interface {
	candidates() []aliasPath
}

// aliasPath is one lookup path: string segments index mappings, int segments
// index sequences.
type aliasPath []any

type plainAlias struct{ key string }

func (a plainAlias) candidates() []aliasPath { return []aliasPath{{a.key}} }

// Alias looks up a single key in the immediate input mapping.
func Alias(key string) AliasSpec { return plainAlias{key: key} }

type pathAlias struct{ path aliasPath }

func (a pathAlias) candidates() []aliasPath { return []aliasPath{a.path} }

// AliasPath walks the raw input root by the given keys and indices. Any
// missing key, out-of-range index, or type mismatch along the path yields
// "not found" rather than an error.
func AliasPath(segments ...any) AliasSpec {
	return pathAlias{path: append(aliasPath(nil), segments...)}
}

type choiceAlias struct{ alts []AliasSpec }

func (a choiceAlias) candidates() []aliasPath {
	var out []aliasPath
	for _, alt := range a.alts {
		out = append(out, alt.candidates()...)
	}
	return out
}

// AliasChoices tries each candidate left to right and returns the value of
// the first that resolves; no merging. Each choice is a plain key (string)
// or another AliasSpec.
func AliasChoices(choices ...any) AliasSpec {
	alts := make([]AliasSpec, 0, len(choices))
	for _, c := range choices {
		switch v := c.(type) {
		case string:
			alts = append(alts, plainAlias{key: v})
		case AliasSpec:
			alts = append(alts, v)
		}
	}
	return choiceAlias{alts: alts}
}

// resolveAlias returns the value of the first candidate path that resolves
// against the raw input root, along with the top-level key it consumed.
func resolveAlias(root map[string]any, spec AliasSpec) (val any, consumed string, ok bool) {
	for _, p := range spec.candidates() {
		if len(p) == 0 {
			continue
		}
		head, isStr := p[0].(string)
		if !isStr {
			continue
		}
		if v, found := walkAliasPath(root, p); found {
			return v, head, true
		}
	}
	return nil, "", false
}

// walkAliasPath descends the input by each segment; any miss falls through.
func walkAliasPath(root any, p aliasPath) (any, bool) {
	cur := root
	for _, seg := range p {
		switch s := seg.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			v, ok := m[s]
			if !ok {
				return nil, false
			}
			cur = v
		case int:
			arr, ok := cur.([]any)
			if !ok {
				return nil, false
			}
			if s < 0 || s >= len(arr) {
				return nil, false
			}
			cur = arr[s]
		default:
			return nil, false
		}
	}
	return cur, true
}

// validAliasSpec checks that every path is non-empty, starts with a string
// key, and contains only string/int segments.
func validAliasSpec(spec AliasSpec) bool {
	paths := spec.candidates()
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		if len(p) == 0 {
			return false
		}
		if _, ok := p[0].(string); !ok {
			return false
		}
		for _, seg := range p {
			switch seg.(type) {
			case string, int:
			default:
				return false
			}
		}
	}
	return true
}
