package schemax

import "sync"

// Registry resolves forward references between schemas and memoizes compiled
// schemas process-wide. Reads are concurrent; writes race harmlessly because
// compilation is pure and idempotent (a duplicate result is simply
// discarded).
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: map[string]*Schema{}}
}

// DefaultRegistry is the process-wide registry used by CompileFor.
var DefaultRegistry = NewRegistry()

// Define compiles and registers a schema under its name. Schemas with
// forward references stay unfinalized until Finalize runs; ref-free
// schemas are usable immediately.
func (r *Registry) Define(name string, opt ModelOpt, defs ...FieldDef) (*Schema, error) {
	s, err := NewSchema(name, opt, defs...)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.schemas[name]; dup {
		return nil, &SchemaError{Code: SchemaInvalidField, Name: name, Msg: "schema already defined"}
	}
	r.schemas[name] = s
	return s, nil
}

// Register adds an already compiled schema under its name.
func (r *Registry) Register(s *Schema) (*Schema, error) {
	if s == nil {
		return nil, &SchemaError{Code: SchemaInvalidField, Msg: "nil schema"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.schemas[s.name]; dup {
		return nil, &SchemaError{Code: SchemaInvalidField, Name: s.name, Msg: "schema already defined"}
	}
	r.schemas[s.name] = s
	return s, nil
}

// MustDefine is like Define but panics on error.
func (r *Registry) MustDefine(name string, opt ModelOpt, defs ...FieldDef) *Schema {
	s, err := r.Define(name, opt, defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Finalize resolves every forward reference registered so far. It must run
// before any schema containing a Ref is used; using an unfinalized schema
// fails fast with schema_incomplete. Finalize is idempotent.
func (r *Registry) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// resolve pass
	for name, s := range r.schemas {
		for _, f := range s.fields {
			var bad *SchemaError
			walkTypes(f.typ, func(t *Type) {
				if bad != nil || t.kind != KindModel || t.schema != nil {
					return
				}
				target, ok := r.schemas[t.ref]
				if !ok {
					bad = &SchemaError{Code: SchemaIncomplete, Name: name + "." + f.name, Msg: "unresolved reference " + t.ref}
					return
				}
				t.schema = target
			})
			if bad != nil {
				return bad
			}
		}
	}
	// mark pass, only after every reference resolved
	for _, s := range r.schemas {
		s.finalized = true
	}
	return nil
}

// Schema looks up a registered schema by name.
func (r *Registry) Schema(name string) (*Schema, bool) {
	r.mu.RLock()
	s, ok := r.schemas[name]
	r.mu.RUnlock()
	return s, ok
}

// MustSchema is like Schema but panics when the name is unknown.
func (r *Registry) MustSchema(name string) *Schema {
	s, ok := r.Schema(name)
	if !ok {
		panic("schemax: unknown schema " + name)
	}
	return s
}

// CompileFor memoizes compile-on-first-use by key. Concurrent duplicate
// compilation may run; the first stored result wins and later ones are
// discarded.
func (r *Registry) CompileFor(key string, build func() (*Schema, error)) (*Schema, error) {
	r.mu.RLock()
	if s, ok := r.schemas[key]; ok {
		r.mu.RUnlock()
		return s, nil
	}
	r.mu.RUnlock()

	s, err := build()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if prev, ok := r.schemas[key]; ok { // double-check
		r.mu.Unlock()
		return prev, nil
	}
	r.schemas[key] = s
	r.mu.Unlock()
	return s, nil
}

// CompileFor memoizes a compiled schema in the DefaultRegistry.
func CompileFor(key string, build func() (*Schema, error)) (*Schema, error) {
	return DefaultRegistry.CompileFor(key, build)
}
