// Package encoding renders values in the output formats supported by the CLI.
package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

type Encoder interface {
	Marshal(v any) ([]byte, error)
}

type Mode = string

const (
	ModePlainText Mode = "text"
	ModeJSON      Mode = "json"
	ModeYAML      Mode = "yaml"
	ModeTOML      Mode = "toml"
)

// Modes lists the supported output formats
var Modes = []Mode{ModePlainText, ModeJSON, ModeYAML, ModeTOML}

var (
	_ Encoder = (*TextEncoder)(nil)
	_ Encoder = (*JSONEncoder)(nil)
	_ Encoder = (*YAMLEncoder)(nil)
	_ Encoder = (*TOMLEncoder)(nil)
)

func PredefinedEncoder(mode Mode) (Encoder, error) {
	switch mode {
	case ModePlainText:
		return &TextEncoder{}, nil
	case ModeJSON:
		return &JSONEncoder{Indent: "\t"}, nil
	case ModeYAML:
		return &YAMLEncoder{Indent: 2}, nil
	case ModeTOML:
		return &TOMLEncoder{}, nil
	default:
		return nil, errors.Newf("unsupported output format %q, expected one of %v", mode, Modes)
	}
}

// Encode writes v to w in the given format.
func Encode(w io.Writer, mode Mode, v any) error {
	enc, err := PredefinedEncoder(mode)
	if err != nil {
		return err
	}
	bs, err := enc.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", mode)
	}
	_, err = w.Write(bs)
	return errors.WithStack(err)
}

// IsSupported returns true if the mode is one of Modes
func IsSupported(mode Mode) bool {
	return slices.Contains(Modes, mode)
}

// TextEncoder writes the String() form of the value.
type TextEncoder struct{}

func (e *TextEncoder) Marshal(v any) ([]byte, error) {
	switch t := v.(type) {
	case fmt.Stringer:
		return []byte(t.String()), nil
	case string:
		return []byte(t), nil
	default:
		return []byte(fmt.Sprintf("%v\n", v)), nil
	}
}

type JSONEncoder struct {
	Indent string
}

func (e *JSONEncoder) Marshal(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if e.Indent != "" {
		enc.SetIndent("", e.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

type YAMLEncoder struct {
	Indent int
}

func (e *YAMLEncoder) Marshal(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	if e.Indent > 0 {
		enc.SetIndent(e.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

type TOMLEncoder struct{}

func (e *TOMLEncoder) Marshal(v any) ([]byte, error) {
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
