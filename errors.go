package schemax

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error codes (exported consts for IDE completion and type safety by convention).
// The code is the only part of an Error guaranteed stable across versions.
const (
	// Structural codes.
	CodeMissing        = "missing"
	CodeExtraForbidden = "extra_forbidden"
	CodeModelType      = "model_type"
	CodeUnknownField   = "unknown_field"

	// Coercion codes.
	CodeBoolType       = "bool_type"
	CodeBoolParsing    = "bool_parsing"
	CodeIntType        = "int_type"
	CodeIntParsing     = "int_parsing"
	CodeFloatType      = "float_type"
	CodeFloatParsing   = "float_parsing"
	CodeStringType     = "string_type"
	CodeBytesType      = "bytes_type"
	CodeDecimalType    = "decimal_type"
	CodeDecimalParsing = "decimal_parsing"
	CodeTimeType       = "datetime_type"
	CodeTimeParsing    = "datetime_parsing"
	CodeListType       = "list_type"
	CodeSetType        = "set_type"
	CodeDictType       = "dict_type"

	// Constraint codes.
	CodeGreaterThan      = "greater_than"
	CodeGreaterThanEqual = "greater_than_equal"
	CodeLessThan         = "less_than"
	CodeLessThanEqual    = "less_than_equal"
	CodeMultipleOf       = "multiple_of"
	CodeMinLength        = "min_length"
	CodeMaxLength        = "max_length"
	CodePatternMismatch  = "pattern_mismatch"
	CodeMaxDigits        = "max_digits"
	CodeDecimalPlaces    = "decimal_places"
	CodeFiniteRequired   = "finite_required"

	// Mutation and serialization codes.
	CodeFrozenField     = "frozen_field"
	CodeFrozenInstance  = "frozen_instance"
	CodeCyclicReference = "cyclic_reference"
	CodeSerialization   = "serialization_error"
)

// Error represents a single validation entry.
type Error struct {
	Type  string // One of the codes listed above.
	Loc   []any  // Path segments: field names (string) and indices (int).
	Msg   string
	Input any            // The offending input echoed back for diagnostics.
	Ctx   map[string]any // Structured parameters (e.g. {"gt": "10"}) for i18n and observability.
}

// Pointer renders Loc as an RFC 6901 JSON Pointer, e.g. /items/2/price.
func (e Error) Pointer() string {
	if len(e.Loc) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range e.Loc {
		b.WriteByte('/')
		switch s := seg.(type) {
		case string:
			b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1"))
		case int:
			b.WriteString(strconv.Itoa(s))
		default:
			fmt.Fprintf(b, "%v", seg)
		}
	}
	return b.String()
}

// ValidationError aggregates the ordered field errors of one validation call.
type ValidationError struct {
	errs []Error
}

// NewValidationError wraps a list of errors; nil is returned for an empty list.
func NewValidationError(errs ...Error) *ValidationError {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{errs: errs}
}

// Errors returns the ordered error list.
func (e *ValidationError) Errors() []Error {
	return append([]Error(nil), e.errs...)
}

// Error summarizes the first few entries.
func (e *ValidationError) Error() string {
	if e == nil || len(e.errs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(e.errs)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := e.errs[i]
		// e.g. int_type at /items/0
		fmt.Fprintf(b, "%s at %s", it.Type, it.Pointer())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsValidationError extracts a ValidationError using errors.As internally.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Schema error codes (compile-time failures).
const (
	SchemaIncomplete        = "schema_incomplete"
	SchemaDefaultConflict   = "default_conflict"
	SchemaInvalidConstraint = "invalid_constraint"
	SchemaInvalidField      = "invalid_field"
)

// SchemaError reports a failure while compiling or finalizing a schema.
// Compile errors are fatal; no partial schema is ever exposed as usable.
type SchemaError struct {
	Code string // One of the Schema* codes above.
	Name string // Schema (and optionally field) the error refers to.
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("schemax: %s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("schemax: %s: %s: %s", e.Code, e.Name, e.Msg)
}

// AsSchemaError extracts a SchemaError using errors.As internally.
func AsSchemaError(err error) (*SchemaError, bool) {
	if err == nil {
		return nil, false
	}
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// prefixLoc prepends path segments to every error in errs.
func prefixLoc(prefix []any, errs []Error) []Error {
	if len(prefix) == 0 {
		return errs
	}
	out := make([]Error, len(errs))
	for i, e := range errs {
		loc := make([]any, 0, len(prefix)+len(e.Loc))
		loc = append(loc, prefix...)
		loc = append(loc, e.Loc...)
		e.Loc = loc
		out[i] = e
	}
	return out
}
