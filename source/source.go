// Package source adapts encoded payloads (JSON, YAML, TOML, MessagePack) and
// in-memory values into schemax.Input for ValidateFrom.
//
// Decoders keep numbers exact where the format allows: JSON numbers surface
// as json.Number so integer inputs never round-trip through float64.
package source

import (
	"bytes"
	"io"

	"github.com/BurntSushi/toml"
	gojson "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/schemax-dev/schemax"
)

type decodeFunc func() (any, error)

func (f decodeFunc) Decode() (any, error) { return f() }

// Value wraps an already decoded Go value.
func Value(v any) schemax.Input {
	return decodeFunc(func() (any, error) { return v, nil })
}

// JSONBytes decodes a JSON document with goccy/go-json. Numbers are decoded
// as json.Number.
func JSONBytes(b []byte) schemax.Input {
	return JSONReader(bytes.NewReader(b))
}

// JSONReader decodes a JSON document from r with goccy/go-json.
func JSONReader(r io.Reader) schemax.Input {
	return decodeFunc(func() (any, error) {
		dec := gojson.NewDecoder(r)
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

// YAMLBytes decodes a YAML document.
func YAMLBytes(b []byte) schemax.Input {
	return decodeFunc(func() (any, error) {
		var v any
		if err := yaml.Unmarshal(b, &v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

// YAMLReader decodes a YAML document from r.
func YAMLReader(r io.Reader) schemax.Input {
	return decodeFunc(func() (any, error) {
		var v any
		if err := yaml.NewDecoder(r).Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

// TOMLBytes decodes a TOML document. TOML documents are always tables at the
// top level, so the result is a map[string]any.
func TOMLBytes(b []byte) schemax.Input {
	return decodeFunc(func() (any, error) {
		m := map[string]any{}
		if err := toml.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		return m, nil
	})
}

// MsgPackBytes decodes a MessagePack payload.
func MsgPackBytes(b []byte) schemax.Input {
	return decodeFunc(func() (any, error) {
		var v any
		if err := msgpack.Unmarshal(b, &v); err != nil {
			return nil, err
		}
		return v, nil
	})
}
