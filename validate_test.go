package schemax_test

import (
	"context"
	"strings"
	"testing"

	"github.com/schemax-dev/schemax"
)

func userSchema(t *testing.T, opt schemax.ModelOpt) *schemax.Schema {
	t.Helper()
	return schemax.MustSchema("User", opt,
		schemax.FieldDef{Name: "name", Type: schemax.StringType(), Required: true},
		schemax.FieldDef{Name: "age", Type: schemax.IntType(), Required: true},
		schemax.FieldDef{Name: "email", Type: schemax.StringType(), Required: true},
	)
}

func TestValidate_CollectsEveryMissingField(t *testing.T) {
	s := userSchema(t, schemax.ModelOpt{})
	_, err := schemax.Validate(context.Background(), s, map[string]any{})
	ve, ok := schemax.AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	errs := ve.Errors()
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), err)
	}
	// declaration order
	if errs[0].Pointer() != "/name" || errs[1].Pointer() != "/age" || errs[2].Pointer() != "/email" {
		t.Fatalf("pointers: %s %s %s", errs[0].Pointer(), errs[1].Pointer(), errs[2].Pointer())
	}
	for _, e := range errs {
		if e.Type != schemax.CodeMissing {
			t.Fatalf("code: %s", e.Type)
		}
	}
}

func TestValidate_MixedErrorsInOneCall(t *testing.T) {
	s := userSchema(t, schemax.ModelOpt{})
	_, err := schemax.Validate(context.Background(), s, map[string]any{
		"name": 1.5, "age": "not a number",
	})
	ve, _ := schemax.AsValidationError(err)
	if len(ve.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %v", err)
	}
}

func TestValidate_FailFastStopsAtFirst(t *testing.T) {
	s := userSchema(t, schemax.ModelOpt{})
	_, err := schemax.Validate(context.Background(), s, map[string]any{}, schemax.ValidateOpt{FailFast: true})
	ve, _ := schemax.AsValidationError(err)
	if len(ve.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %v", err)
	}
}

func TestValidate_NestedPointerPaths(t *testing.T) {
	item := schemax.MustSchema("Item", schemax.ModelOpt{},
		schemax.FieldDef{Name: "qty", Type: schemax.IntType(), Required: true})
	order := schemax.MustSchema("Order", schemax.ModelOpt{},
		schemax.FieldDef{Name: "items", Type: schemax.ListOf(schemax.ModelOf(item)), Required: true})

	_, err := schemax.Validate(context.Background(), order, map[string]any{
		"items": []any{
			map[string]any{"qty": 1},
			map[string]any{"qty": "x"},
			map[string]any{},
		},
	})
	ve, _ := schemax.AsValidationError(err)
	errs := ve.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", err)
	}
	if errs[0].Pointer() != "/items/1/qty" || errs[1].Pointer() != "/items/2/qty" {
		t.Fatalf("pointers: %s %s", errs[0].Pointer(), errs[1].Pointer())
	}
}

func TestValidate_DeepContainerSiblingPaths(t *testing.T) {
	leaf := schemax.MustSchema("Leaf", schemax.ModelOpt{},
		schemax.FieldDef{Name: "v", Type: schemax.IntType(), Required: true})
	s := schemax.MustSchema("Deep", schemax.ModelOpt{},
		schemax.FieldDef{Name: "a", Type: schemax.ListOf(schemax.ListOf(schemax.MapOf(schemax.ModelOf(leaf)))), Required: true})

	// sibling map entries at depth 3 must each keep their own path
	_, err := schemax.Validate(context.Background(), s, map[string]any{
		"a": []any{[]any{map[string]any{"k1": 1, "k2": 2}}},
	})
	ve, _ := schemax.AsValidationError(err)
	errs := ve.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", err)
	}
	if errs[0].Pointer() != "/a/0/0/k1" || errs[1].Pointer() != "/a/0/0/k2" {
		t.Fatalf("pointers: %s %s", errs[0].Pointer(), errs[1].Pointer())
	}
}

func TestValidate_ModelTypeOnNonMapping(t *testing.T) {
	s := userSchema(t, schemax.ModelOpt{})
	_, err := schemax.Validate(context.Background(), s, "nope")
	wantCode(t, err, schemax.CodeModelType)
}

func TestValidate_InstancePassThroughSameSchema(t *testing.T) {
	s := userSchema(t, schemax.ModelOpt{})
	inst, err := schemax.Validate(context.Background(), s, map[string]any{"name": "a", "age": 1, "email": "e"})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	again, err := schemax.Validate(context.Background(), s, inst)
	if err != nil || again != inst {
		t.Fatalf("expected identity pass-through, got %v, %v", again, err)
	}

	other := schemax.MustSchema("Other", schemax.ModelOpt{},
		schemax.FieldDef{Name: "x", Type: schemax.IntType(), Required: true})
	_, err = schemax.Validate(context.Background(), other, inst)
	wantCode(t, err, schemax.CodeModelType)
}

func TestValidate_DefaultsApplied(t *testing.T) {
	s := schemax.MustSchema("Cfg", schemax.ModelOpt{},
		schemax.FieldDef{Name: "host", Type: schemax.StringType(), Default: "localhost"},
		schemax.FieldDef{Name: "tags", Type: schemax.ListOf(schemax.StringType()), DefaultFactory: func() any { return []any{} }},
	)
	a, err := schemax.Validate(context.Background(), s, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	b, err := schemax.Validate(context.Background(), s, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if a.MustGet("host") != "localhost" {
		t.Fatalf("got %v", a.MustGet("host"))
	}
	at := a.MustGet("tags").([]any)
	bt := b.MustGet("tags").([]any)
	at = append(at, "x")
	if len(bt) != 0 {
		t.Fatalf("factory default shared between instances: %v %v", at, bt)
	}
	if a.WasSet("host") {
		t.Fatal("default must not count as explicitly set")
	}
}

func TestValidate_DefaultNotValidatedUnlessAsked(t *testing.T) {
	// raw default stays as-is
	s := schemax.MustSchema("Cfg", schemax.ModelOpt{},
		schemax.FieldDef{Name: "port", Type: schemax.IntType(), Default: "8080"})
	inst, err := schemax.Validate(context.Background(), s, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if inst.MustGet("port") != "8080" {
		t.Fatalf("got %v", inst.MustGet("port"))
	}

	// opt in to default validation: coercion applies
	s2 := schemax.MustSchema("Cfg2", schemax.ModelOpt{},
		schemax.FieldDef{Name: "port", Type: schemax.IntType(), Default: "8080", ValidateDefault: true})
	inst2, err := schemax.Validate(context.Background(), s2, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if inst2.MustGet("port") != int64(8080) {
		t.Fatalf("got %v", inst2.MustGet("port"))
	}
}

func TestValidate_ExplicitNilDefault(t *testing.T) {
	s := schemax.MustSchema("Cfg", schemax.ModelOpt{},
		schemax.FieldDef{Name: "note", Type: schemax.StringType(), HasDefault: true})
	inst, err := schemax.Validate(context.Background(), s, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	v, ok := inst.Get("note")
	if !ok || v != nil {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestValidate_RequiredDefaultConflict(t *testing.T) {
	_, err := schemax.NewSchema("Cfg", schemax.ModelOpt{},
		schemax.FieldDef{Name: "v", Type: schemax.IntType(), Required: true, Default: 1})
	se, ok := schemax.AsSchemaError(err)
	if !ok || se.Code != schemax.SchemaDefaultConflict {
		t.Fatalf("got %v", err)
	}
	_, err = schemax.NewSchema("Cfg", schemax.ModelOpt{},
		schemax.FieldDef{Name: "v", Type: schemax.IntType()})
	if se, ok = schemax.AsSchemaError(err); !ok || se.Code != schemax.SchemaDefaultConflict {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_ExtraForbid(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{Extra: schemax.ExtraForbid},
		schemax.FieldDef{Name: "a", Type: schemax.IntType(), Required: true})
	_, err := schemax.Validate(context.Background(), s, map[string]any{"a": 1, "z": 1, "b": 2})
	ve, _ := schemax.AsValidationError(err)
	errs := ve.Errors()
	if len(errs) != 2 {
		t.Fatalf("got %v", err)
	}
	// deterministic order: leftover keys sorted
	if errs[0].Pointer() != "/b" || errs[1].Pointer() != "/z" {
		t.Fatalf("pointers: %s %s", errs[0].Pointer(), errs[1].Pointer())
	}
	for _, e := range errs {
		if e.Type != schemax.CodeExtraForbidden {
			t.Fatalf("code: %s", e.Type)
		}
	}
}

func TestValidate_ExtraAllow(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{Extra: schemax.ExtraAllow},
		schemax.FieldDef{Name: "a", Type: schemax.IntType(), Required: true})
	inst, err := schemax.Validate(context.Background(), s, map[string]any{"a": 1, "z": "kept"})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if inst.MustGet("z") != "kept" {
		t.Fatalf("extra not reachable: %v", inst.Extra())
	}
}

func TestValidate_ExtraIgnoreDrops(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{},
		schemax.FieldDef{Name: "a", Type: schemax.IntType(), Required: true})
	inst, err := schemax.Validate(context.Background(), s, map[string]any{"a": 1, "z": "dropped"})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := inst.Get("z"); ok {
		t.Fatal("ignored key should not be reachable")
	}
}

func TestValidate_StrictPrecedence(t *testing.T) {
	// model strict, field lax: field wins
	s := schemax.MustSchema("M", schemax.ModelOpt{Strict: schemax.StrictOn},
		schemax.FieldDef{Name: "a", Type: schemax.IntType(), Required: true, Strict: schemax.StrictOff},
		schemax.FieldDef{Name: "b", Type: schemax.IntType(), Required: true},
	)
	inst, err := schemax.Validate(context.Background(), s, map[string]any{"a": "42", "b": 7})
	if err != nil || inst.MustGet("a") != int64(42) {
		t.Fatalf("got %v, %v", inst, err)
	}
	_, err = schemax.Validate(context.Background(), s, map[string]any{"a": 1, "b": "7"})
	wantCode(t, err, schemax.CodeIntType)

	// call-level override beats both
	inst, err = schemax.Validate(context.Background(), s, map[string]any{"a": "42", "b": "7"},
		schemax.ValidateOpt{Strict: schemax.StrictOff})
	if err != nil || inst.MustGet("b") != int64(7) {
		t.Fatalf("got %v, %v", inst, err)
	}
	_, err = schemax.Validate(context.Background(), s, map[string]any{"a": "42", "b": 7},
		schemax.ValidateOpt{Strict: schemax.StrictOn})
	wantCode(t, err, schemax.CodeIntType)
}

func TestValidate_ComputedFieldNeverReadFromInput(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{},
		schemax.FieldDef{Name: "first", Type: schemax.StringType(), Required: true},
		schemax.FieldDef{Name: "full", Type: schemax.StringType(), Computed: func(i *schemax.Instance) (any, error) {
			return i.MustGet("first").(string) + "!", nil
		}},
	)
	inst, err := schemax.Validate(context.Background(), s, map[string]any{"first": "a", "full": "spoofed"})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if inst.MustGet("full") != "a!" {
		t.Fatalf("got %v", inst.MustGet("full"))
	}
}

func TestValidate_NilSchema(t *testing.T) {
	_, err := schemax.Validate(context.Background(), nil, map[string]any{})
	se, ok := schemax.AsSchemaError(err)
	if !ok || se.Code != schemax.SchemaIncomplete {
		t.Fatalf("got %v", err)
	}
}

func TestValidationError_SummaryShowsFirstThree(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{},
		schemax.FieldDef{Name: "a", Type: schemax.IntType(), Required: true},
		schemax.FieldDef{Name: "b", Type: schemax.IntType(), Required: true},
		schemax.FieldDef{Name: "c", Type: schemax.IntType(), Required: true},
		schemax.FieldDef{Name: "d", Type: schemax.IntType(), Required: true},
	)
	_, err := schemax.Validate(context.Background(), s, map[string]any{})
	msg := err.Error()
	if !strings.Contains(msg, "missing at /a") || !strings.Contains(msg, "(total 4)") {
		t.Fatalf("summary: %q", msg)
	}
	if strings.Contains(msg, "/d") {
		t.Fatalf("summary should cap at three entries: %q", msg)
	}
}

func TestSchemaNew_RunsValidation(t *testing.T) {
	s := userSchema(t, schemax.ModelOpt{})
	inst, err := s.New(map[string]any{"name": "a", "age": "30", "email": "e"})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if inst.MustGet("age") != int64(30) {
		t.Fatalf("got %v", inst.MustGet("age"))
	}
	if _, err = s.New(map[string]any{}); err == nil {
		t.Fatal("expected error")
	}
}
