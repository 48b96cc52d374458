package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("missing", nil); msg == "missing" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("missing", nil); msg == "field required" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Interpolation(t *testing.T) {
	msg := T("greater_than", map[string]any{"gt": "10"})
	if msg != "input should be greater than 10" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestTranslator_UnknownCodeFallsBack(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("expected code passthrough, got %q", msg)
	}
}

type upperTranslator struct{}

func (upperTranslator) Message(code string, _ map[string]any) string { return "E:" + code }

func TestTranslator_Custom(t *testing.T) {
	SetTranslator(upperTranslator{})
	defer SetTranslator(nil)
	if msg := T("missing", nil); msg != "E:missing" {
		t.Fatalf("custom translator not used: %q", msg)
	}
}
