package schemax_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/schemax-dev/schemax"
)

func TestInstance_SetCoercesAndChecksConstraints(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{},
		schemax.FieldDef{Name: "age", Type: schemax.IntType(), Required: true,
			Constraints: []schemax.Constraint{schemax.Ge(0)}})
	inst, err := schemax.Validate(context.Background(), s, map[string]any{"age": 1})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := inst.Set("age", "30"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if inst.MustGet("age") != int64(30) {
		t.Fatalf("got %v", inst.MustGet("age"))
	}
	err = inst.Set("age", -1)
	wantCode(t, err, schemax.CodeGreaterThanEqual)
	if inst.MustGet("age") != int64(30) {
		t.Fatal("failed set must not mutate")
	}
}

func TestInstance_SetUnknownField(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{},
		schemax.FieldDef{Name: "a", Type: schemax.IntType(), Required: true})
	inst, _ := schemax.Validate(context.Background(), s, map[string]any{"a": 1})
	err := inst.Set("nope", 1)
	wantCode(t, err, schemax.CodeUnknownField)
}

func TestInstance_FrozenField(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{},
		schemax.FieldDef{Name: "id", Type: schemax.IntType(), Required: true, Frozen: true},
		schemax.FieldDef{Name: "name", Type: schemax.StringType(), Required: true})
	inst, _ := schemax.Validate(context.Background(), s, map[string]any{"id": 1, "name": "a"})
	err := inst.Set("id", 2)
	wantCode(t, err, schemax.CodeFrozenField)
	if err := inst.Set("name", "b"); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestInstance_FrozenInstance(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{Frozen: true},
		schemax.FieldDef{Name: "a", Type: schemax.IntType(), Required: true})
	inst, _ := schemax.Validate(context.Background(), s, map[string]any{"a": 1})
	err := inst.Set("a", 2)
	wantCode(t, err, schemax.CodeFrozenInstance)
}

func TestInstance_ComputedIsReadOnly(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{},
		schemax.FieldDef{Name: "a", Type: schemax.IntType(), Required: true},
		schemax.FieldDef{Name: "double", Type: schemax.IntType(), Computed: func(i *schemax.Instance) (any, error) {
			return i.MustGet("a").(int64) * 2, nil
		}})
	inst, _ := schemax.Validate(context.Background(), s, map[string]any{"a": 3})
	if inst.MustGet("double") != int64(6) {
		t.Fatalf("got %v", inst.MustGet("double"))
	}
	err := inst.Set("double", 10)
	wantCode(t, err, schemax.CodeFrozenField)

	// computed reflects mutations of its inputs
	if err := inst.Set("a", 5); err != nil {
		t.Fatalf("set: %v", err)
	}
	if inst.MustGet("double") != int64(10) {
		t.Fatalf("got %v", inst.MustGet("double"))
	}
}

func TestInstance_GetEReportsComputedFailure(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{},
		schemax.FieldDef{Name: "a", Type: schemax.IntType(), Required: true},
		schemax.FieldDef{Name: "bad", Type: schemax.IntType(), Computed: func(i *schemax.Instance) (any, error) {
			return nil, errors.New("accessor blew up")
		}})
	inst, err := schemax.Validate(context.Background(), s, map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	// Get collapses the failure into absence
	if _, ok := inst.Get("bad"); ok {
		t.Fatal("failing accessor should read as absent via Get")
	}
	if _, err := inst.GetE("bad"); err == nil || !strings.Contains(err.Error(), "accessor blew up") {
		t.Fatalf("got %v", err)
	}

	if v, err := inst.GetE("a"); err != nil || v != int64(1) {
		t.Fatalf("got %v, %v", v, err)
	}
	_, err = inst.GetE("nope")
	wantCode(t, err, schemax.CodeUnknownField)
}

func TestInstance_StringHidesNoRepr(t *testing.T) {
	s := schemax.MustSchema("User", schemax.ModelOpt{},
		schemax.FieldDef{Name: "name", Type: schemax.StringType(), Required: true},
		schemax.FieldDef{Name: "password", Type: schemax.StringType(), Required: true, NoRepr: true})
	inst, _ := schemax.Validate(context.Background(), s, map[string]any{"name": "a", "password": "hunter2"})
	repr := inst.String()
	if !strings.HasPrefix(repr, "User(") || !strings.Contains(repr, "name=a") {
		t.Fatalf("repr: %s", repr)
	}
	if strings.Contains(repr, "hunter2") {
		t.Fatalf("secret leaked: %s", repr)
	}
}

func TestInstance_MarshalJSON(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{},
		schemax.FieldDef{Name: "b", Type: schemax.IntType(), Required: true},
		schemax.FieldDef{Name: "a", Type: schemax.IntType(), Required: true})
	inst, _ := schemax.Validate(context.Background(), s, map[string]any{"a": 1, "b": 2})
	raw, err := inst.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// keys are emitted sorted for deterministic output
	if string(raw) != `{"a":1,"b":2}` {
		t.Fatalf("got %s", raw)
	}
}

func TestInstance_MustGetPanics(t *testing.T) {
	s := schemax.MustSchema("M", schemax.ModelOpt{},
		schemax.FieldDef{Name: "a", Type: schemax.IntType(), Required: true})
	inst, _ := schemax.Validate(context.Background(), s, map[string]any{"a": 1})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	inst.MustGet("nope")
}
