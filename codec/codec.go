// Package codec provides prebuilt field serializers for common wire
// representations. Attach them to a field via FieldDef.Serializer or the
// dsl Serializer step.
package codec

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/schemax-dev/schemax"
)

// TimeRFC3339 serializes time.Time fields as canonical RFC3339 strings
// (UTC, subsecond digits only when present) in every mode.
func TimeRFC3339() *schemax.FieldSerializer {
	return &schemax.FieldSerializer{
		When: schemax.SerializeUnlessNone,
		Plain: func(_ context.Context, v any, _ schemax.SerializerInfo) (any, error) {
			t, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("codec: expected time.Time, got %T", v)
			}
			return formatRFC3339Canonical(t), nil
		},
	}
}

// Base64Bytes serializes []byte fields as standard base64 strings in every
// mode.
func Base64Bytes() *schemax.FieldSerializer {
	return &schemax.FieldSerializer{
		When: schemax.SerializeUnlessNone,
		Plain: func(_ context.Context, v any, _ schemax.SerializerInfo) (any, error) {
			b, ok := v.([]byte)
			if !ok {
				return nil, fmt.Errorf("codec: expected []byte, got %T", v)
			}
			return base64.StdEncoding.EncodeToString(b), nil
		},
	}
}

// DecimalString serializes decimal fields as exact decimal strings in every
// mode, so native output survives JSON encoders that would force float64.
func DecimalString() *schemax.FieldSerializer {
	return &schemax.FieldSerializer{
		When: schemax.SerializeUnlessNone,
		Plain: func(_ context.Context, v any, _ schemax.SerializerInfo) (any, error) {
			d, ok := v.(decimal.Decimal)
			if !ok {
				return nil, fmt.Errorf("codec: expected decimal.Decimal, got %T", v)
			}
			return d.String(), nil
		},
	}
}

// formatRFC3339Canonical renders t in UTC with RFC3339Nano, padding
// second-precision times back to RFC3339.
func formatRFC3339Canonical(t time.Time) string {
	u := t.UTC()
	if u.Nanosecond() == 0 {
		return u.Format(time.RFC3339)
	}
	return u.Format(time.RFC3339Nano)
}
