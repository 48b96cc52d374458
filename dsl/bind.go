package dsl

import (
	"context"

	"github.com/go-viper/mapstructure/v2"

	"github.com/schemax-dev/schemax"
)

// Bind validates input against a schema and decodes the resulting instance
// into T. Field matching follows `json` struct tags, so the same tags drive
// binding and encoding.
func Bind[T any](ctx context.Context, s *schemax.Schema, v any, opts ...schemax.ValidateOpt) (T, error) {
	var out T
	inst, err := schemax.Validate(ctx, s, v, opts...)
	if err != nil {
		return out, err
	}
	return out, BindInstance(inst, &out)
}

// BindFrom decodes a payload, validates it, and binds the result into T.
func BindFrom[T any](ctx context.Context, s *schemax.Schema, in schemax.Input, opts ...schemax.ValidateOpt) (T, error) {
	var out T
	inst, err := schemax.ValidateFrom(ctx, s, in, opts...)
	if err != nil {
		return out, err
	}
	return out, BindInstance(inst, &out)
}

// BindInstance decodes an already validated instance into target, which must
// be a non-nil pointer to a struct.
func BindInstance(inst *schemax.Instance, target any) error {
	data, err := schemax.Serialize(context.Background(), inst, schemax.SerializeOpt{})
	if err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           target,
		WeaklyTypedInput: false,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(timeLayoutRFC3339),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}

const timeLayoutRFC3339 = "2006-01-02T15:04:05Z07:00"
