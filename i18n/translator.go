package i18n

import (
	"fmt"
	"strings"
)

// Translator retrieves localized messages for error codes. params carries
// optional structured values to embed in the message (for example "gt" or
// "max_length").
type Translator interface {
	Message(code string, params map[string]any) string
}

// dictTranslator is the built-in dictionary-based Translator. Templates may
// reference params by {name}.
type dictTranslator struct{ lang string }

var enDict = map[string]string{
	"missing":          "field required",
	"extra_forbidden":  "extra inputs are not permitted",
	"model_type":       "input should be a valid mapping",
	"unknown_field":    "unknown field",
	"bool_type":        "input should be a valid boolean",
	"bool_parsing":     "input should be a valid boolean, unable to interpret input",
	"int_type":         "input should be a valid integer",
	"int_parsing":      "input should be a valid integer, unable to parse input",
	"float_type":       "input should be a valid number",
	"float_parsing":    "input should be a valid number, unable to parse input",
	"string_type":      "input should be a valid string",
	"bytes_type":       "input should be valid bytes",
	"decimal_type":     "input should be a valid decimal",
	"decimal_parsing":  "input should be a valid decimal, unable to parse input",
	"datetime_type":    "input should be a valid datetime",
	"datetime_parsing": "input should be a valid datetime, unable to parse input",
	"list_type":        "input should be a valid list",
	"set_type":         "input should be a valid set",
	"dict_type":        "input should be a valid dictionary",

	"greater_than":       "input should be greater than {gt}",
	"greater_than_equal": "input should be greater than or equal to {ge}",
	"less_than":          "input should be less than {lt}",
	"less_than_equal":    "input should be less than or equal to {le}",
	"multiple_of":        "input should be a multiple of {multiple_of}",
	"min_length":         "input should have at least {min_length} items",
	"max_length":         "input should have at most {max_length} items",
	"pattern_mismatch":   "input should match pattern {pattern}",
	"max_digits":         "decimal input should have no more than {max_digits} digits in total",
	"decimal_places":     "decimal input should have no more than {decimal_places} decimal places",
	"finite_required":    "input should be a finite number",

	"frozen_field":        "field is frozen",
	"frozen_instance":     "instance is frozen",
	"cyclic_reference":    "cyclic reference detected",
	"serialization_error": "serialization failed",
	"default_conflict":    "field must declare exactly one of required, default, default factory",
	"schema_incomplete":   "schema references are not finalized",
}

var jaDict = map[string]string{
	"missing":          "必須フィールドが不足しています",
	"extra_forbidden":  "未知の入力は許可されていません",
	"model_type":       "マッピングである必要があります",
	"unknown_field":    "未知のフィールドです",
	"bool_type":        "真偽値である必要があります",
	"bool_parsing":     "真偽値として解釈できません",
	"int_type":         "整数である必要があります",
	"int_parsing":      "整数として解析できません",
	"float_type":       "数値である必要があります",
	"float_parsing":    "数値として解析できません",
	"string_type":      "文字列である必要があります",
	"bytes_type":       "バイト列である必要があります",
	"decimal_type":     "十進数である必要があります",
	"decimal_parsing":  "十進数として解析できません",
	"datetime_type":    "日時である必要があります",
	"datetime_parsing": "日時として解析できません",
	"list_type":        "リストである必要があります",
	"set_type":         "セットである必要があります",
	"dict_type":        "辞書である必要があります",

	"greater_than":       "{gt} より大きい必要があります",
	"greater_than_equal": "{ge} 以上である必要があります",
	"less_than":          "{lt} より小さい必要があります",
	"less_than_equal":    "{le} 以下である必要があります",
	"multiple_of":        "{multiple_of} の倍数である必要があります",
	"min_length":         "要素数は {min_length} 以上である必要があります",
	"max_length":         "要素数は {max_length} 以下である必要があります",
	"pattern_mismatch":   "パターン {pattern} に一致する必要があります",
	"max_digits":         "総桁数は {max_digits} 以下である必要があります",
	"decimal_places":     "小数点以下は {decimal_places} 桁以下である必要があります",
	"finite_required":    "有限の数値である必要があります",

	"frozen_field":        "フィールドは凍結されています",
	"frozen_instance":     "インスタンスは凍結されています",
	"cyclic_reference":    "循環参照が検出されました",
	"serialization_error": "シリアライズに失敗しました",
	"default_conflict":    "required、default、default factory のいずれか 1 つを指定する必要があります",
	"schema_incomplete":   "スキーマ参照が確定していません",
}

func (t dictTranslator) Message(code string, params map[string]any) string {
	dict := enDict
	if t.lang == "ja" {
		dict = jaDict
	}
	tmpl, ok := dict[code]
	if !ok {
		return code
	}
	return interpolate(tmpl, params)
}

func interpolate(tmpl string, params map[string]any) string {
	if len(params) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	out := tmpl
	for k, v := range params {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprint(v))
	}
	return out
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, params map[string]any) string { return currentTranslator.Message(code, params) }
