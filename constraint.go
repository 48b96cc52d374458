package schemax

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type constraintKind int

const (
	conGt constraintKind = iota
	conGe
	conLt
	conLe
	conMultipleOf
	conMinLen
	conMaxLen
	conPattern
	conMaxDigits
	conDecimalPlaces
	conFinite
)

// Constraint is one declarative value check. Constraints are validated
// against the field's type kind at schema compile time and evaluated
// independently at validation time, so a single field can report several
// violations at once.
type Constraint struct {
	kind       constraintKind
	num        decimal.Decimal
	numOK      bool // numeric bound parsed successfully
	n          int
	patternSrc string
	pattern    *regexp.Regexp // compiled by Schema build
}

// Gt requires value > bound.
func Gt(bound any) Constraint { return numConstraint(conGt, bound) }

// Ge requires value >= bound.
func Ge(bound any) Constraint { return numConstraint(conGe, bound) }

// Lt requires value < bound.
func Lt(bound any) Constraint { return numConstraint(conLt, bound) }

// Le requires value <= bound.
func Le(bound any) Constraint { return numConstraint(conLe, bound) }

// MultipleOf requires value to be an exact multiple of bound.
func MultipleOf(bound any) Constraint { return numConstraint(conMultipleOf, bound) }

// MinLen requires at least n characters (strings), bytes, or elements.
func MinLen(n int) Constraint { return Constraint{kind: conMinLen, n: n} }

// MaxLen requires at most n characters (strings), bytes, or elements.
func MaxLen(n int) Constraint { return Constraint{kind: conMaxLen, n: n} }

// Pattern requires the string to match the regular expression.
func Pattern(expr string) Constraint { return Constraint{kind: conPattern, patternSrc: expr} }

// MaxDigits caps the total number of significant digits of a decimal.
func MaxDigits(n int) Constraint { return Constraint{kind: conMaxDigits, n: n} }

// DecimalPlaces caps the number of digits after the decimal point.
func DecimalPlaces(n int) Constraint { return Constraint{kind: conDecimalPlaces, n: n} }

// Finite rejects NaN and ±Inf floats even when the type allows them.
func Finite() Constraint { return Constraint{kind: conFinite} }

func numConstraint(kind constraintKind, bound any) Constraint {
	d, ok := toDecimal(bound)
	return Constraint{kind: kind, num: d, numOK: ok}
}

// checkConstraints evaluates every constraint against the coerced value and
// returns all violations; it never short-circuits. Non-finite floats fail
// every range comparison unless allowInfNaN is set, in which case they bypass
// range constraints entirely.
func checkConstraints(v any, cons []Constraint, allowInfNaN bool) []Error {
	var out []Error
	for _, c := range cons {
		if e := c.check(v, allowInfNaN); e != nil {
			out = append(out, *e)
		}
	}
	return out
}

func (c Constraint) check(v any, allowInfNaN bool) *Error {
	switch c.kind {
	case conGt, conGe, conLt, conLe, conMultipleOf:
		return c.checkRange(v, allowInfNaN)
	case conMinLen, conMaxLen:
		return c.checkLength(v)
	case conPattern:
		s, ok := v.(string)
		if !ok {
			return nil
		}
		if c.pattern != nil && !c.pattern.MatchString(s) {
			return &Error{Type: CodePatternMismatch, Ctx: map[string]any{"pattern": c.patternSrc}}
		}
		return nil
	case conMaxDigits:
		d, ok := v.(decimal.Decimal)
		if !ok {
			return nil
		}
		if got := significantDigits(d); got > c.n {
			return &Error{Type: CodeMaxDigits, Ctx: map[string]any{"max_digits": c.n, "actual": got}}
		}
		return nil
	case conDecimalPlaces:
		d, ok := v.(decimal.Decimal)
		if !ok {
			return nil
		}
		if got := decimalPlaces(d); got > c.n {
			return &Error{Type: CodeDecimalPlaces, Ctx: map[string]any{"decimal_places": c.n, "actual": got}}
		}
		return nil
	case conFinite:
		if f, ok := asFloat64(v); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return &Error{Type: CodeFiniteRequired}
		}
		return nil
	}
	return nil
}

func (c Constraint) checkRange(v any, allowInfNaN bool) *Error {
	if f, ok := asFloat64(v); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		if allowInfNaN {
			return nil
		}
		return c.rangeError()
	}
	d, ok := toDecimal(v)
	if !ok {
		return nil
	}
	cmp := d.Cmp(c.num)
	switch c.kind {
	case conGt:
		if cmp <= 0 {
			return c.rangeError()
		}
	case conGe:
		if cmp < 0 {
			return c.rangeError()
		}
	case conLt:
		if cmp >= 0 {
			return c.rangeError()
		}
	case conLe:
		if cmp > 0 {
			return c.rangeError()
		}
	case conMultipleOf:
		if c.num.IsZero() || !d.Mod(c.num).IsZero() {
			return c.rangeError()
		}
	}
	return nil
}

func (c Constraint) rangeError() *Error {
	code := ""
	param := ""
	switch c.kind {
	case conGt:
		code, param = CodeGreaterThan, "gt"
	case conGe:
		code, param = CodeGreaterThanEqual, "ge"
	case conLt:
		code, param = CodeLessThan, "lt"
	case conLe:
		code, param = CodeLessThanEqual, "le"
	case conMultipleOf:
		code, param = CodeMultipleOf, "multiple_of"
	}
	return &Error{Type: code, Ctx: map[string]any{param: c.num.String()}}
}

func (c Constraint) checkLength(v any) *Error {
	var got int
	switch t := v.(type) {
	case string:
		got = utf8.RuneCountInString(t)
	case []byte:
		got = len(t)
	case []any:
		got = len(t)
	case map[string]any:
		got = len(t)
	default:
		return nil
	}
	if c.kind == conMinLen && got < c.n {
		return &Error{Type: CodeMinLength, Ctx: map[string]any{"min_length": c.n, "actual": got}}
	}
	if c.kind == conMaxLen && got > c.n {
		return &Error{Type: CodeMaxLength, Ctx: map[string]any{"max_length": c.n, "actual": got}}
	}
	return nil
}

// compileConstraint validates the constraint against the field's type kind
// and compiles patterns. Returned errors abort schema compilation.
func compileConstraint(c *Constraint, kind TypeKind) (code, msg string) {
	switch c.kind {
	case conGt, conGe, conLt, conLe, conMultipleOf:
		if !c.numOK {
			return SchemaInvalidConstraint, "numeric bound is not a number"
		}
		switch kind {
		case KindInt, KindFloat, KindDecimal:
		default:
			return SchemaInvalidConstraint, "numeric constraint on non-numeric field"
		}
	case conMinLen, conMaxLen:
		if c.n < 0 {
			return SchemaInvalidConstraint, "negative length bound"
		}
		switch kind {
		case KindString, KindBytes, KindList, KindSet, KindMap:
		default:
			return SchemaInvalidConstraint, "length constraint on unsized field"
		}
	case conPattern:
		if kind != KindString {
			return SchemaInvalidConstraint, "pattern constraint on non-string field"
		}
		re, err := regexp.Compile(c.patternSrc)
		if err != nil {
			return SchemaInvalidConstraint, "invalid pattern: " + err.Error()
		}
		c.pattern = re
	case conMaxDigits, conDecimalPlaces:
		if kind != KindDecimal {
			return SchemaInvalidConstraint, "digit constraint on non-decimal field"
		}
		if c.n < 0 {
			return SchemaInvalidConstraint, "negative digit bound"
		}
	case conFinite:
		if kind != KindFloat {
			return SchemaInvalidConstraint, "finite constraint on non-float field"
		}
	}
	return "", ""
}

// significantDigits counts the digits of the coefficient, ignoring leading
// zeros; zero counts as one digit.
func significantDigits(d decimal.Decimal) int {
	s := strings.TrimLeft(d.Coefficient().String(), "-0")
	if s == "" {
		return 1
	}
	return len(s)
}

func decimalPlaces(d decimal.Decimal) int {
	if exp := d.Exponent(); exp < 0 {
		return int(-exp)
	}
	return 0
}

// toDecimal converts any supported numeric representation for precision-safe
// comparison; floats go through their canonical string form.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	}
	if n, ok := asInt64(v); ok {
		return decimal.NewFromInt(n), true
	}
	if u, ok := asUint64(v); ok {
		d, err := decimal.NewFromString(strconv.FormatUint(u, 10))
		return d, err == nil
	}
	if f, ok := asFloat64(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(strconv.FormatFloat(f, 'f', -1, 64))
		return d, err == nil
	}
	return decimal.Decimal{}, false
}
