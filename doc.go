package schemax

// Package schemax provides:
//
// - Declarative field schemas compiled once and shared across goroutines
// - Validation with strict/lax coercion, aliases, defaults, and constraint checks
// - A stable error model via ValidationError (code, loc, message, input echo)
// - Serialization with include/exclude masks, output aliases, and JSON canonicalization
//
// Design policy:
// - Keep the compiled schema graph and both engines in the root package.
// - Place the builder DSL under dsl/, reusable field serializers under codec/,
//   payload decoding under source/, and the message dictionary under i18n/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := buildSchema()
//	inst, err := schemax.ValidateFrom(ctx, s, source.JSONBytes(data))
//	out, err := schemax.Serialize(ctx, inst, schemax.SerializeOpt{})
//	raw, err := schemax.ToJSON(ctx, inst, schemax.SerializeOpt{ByAlias: true})
