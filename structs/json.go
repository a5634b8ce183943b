package structs

import (
	"bytes"
	"io"
	"strconv"

	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/field"
	"github.com/bearlytools/bitfield/mapping"
	"github.com/go-json-experiment/json/jsontext"
)

// MarshalJSON writes the struct as a flat JSON object in field order. Enum fields are written
// as their variant name. Reserved fields are left out.
func (s *Struct) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WriteJSON(&buf); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteJSON is MarshalJSON writing to w.
func (s *Struct) WriteJSON(w io.Writer) error {
	enc := jsontext.NewEncoder(w)
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, f := range s.mapping.All() {
		if f.Kind == field.KReserved {
			continue
		}
		if err := enc.WriteToken(jsontext.String(f.Name)); err != nil {
			return err
		}
		var tok jsontext.Token
		switch f.Kind {
		case field.KBool:
			b, _ := s.getBool(f)
			tok = jsontext.Bool(b)
		case field.KEnum:
			v, err := s.getEnum(f)
			if err != nil {
				return err
			}
			tok = jsontext.String(v.Name)
		default:
			u, _ := s.getUint(f)
			tok = jsontext.Uint(u)
		}
		if err := enc.WriteToken(tok); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

// UnmarshalJSON sets the fields named in a JSON object written by MarshalJSON. Fields that are
// not in the object keep their value. An unknown name is an error.
func (s *Struct) UnmarshalJSON(data []byte) error {
	return s.ReadJSON(bytes.NewReader(data))
}

// ReadJSON is UnmarshalJSON reading from r. The struct is only changed if the whole object
// is read without error.
func (s *Struct) ReadJSON(r io.Reader) error {
	c := s.Clone()
	if err := c.readJSON(jsontext.NewDecoder(r)); err != nil {
		return err
	}
	copy(s.data, c.data)
	return nil
}

func (s *Struct) readJSON(dec *jsontext.Decoder) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return jsonErr(s, err)
	}
	if tok.Kind() != '{' {
		return jsonErr(s, errors.Plain("expected a JSON object"))
	}

	for {
		tok, err := dec.ReadToken()
		if err != nil {
			return jsonErr(s, err)
		}
		if tok.Kind() == '}' {
			return nil
		}
		name := tok.String()

		f, err := s.lookup(name)
		if err != nil {
			return err
		}
		val, err := dec.ReadToken()
		if err != nil {
			return jsonErr(s, err)
		}

		switch f.Kind {
		case field.KBool:
			if k := val.Kind(); k != 't' && k != 'f' {
				return s.typeMismatch(f, field.KBool)
			}
			err = s.setBool(f, val.Bool())
		case field.KEnum:
			if val.Kind() != '"' {
				return s.typeMismatch(f, field.KEnum)
			}
			err = s.SetEnumName(name, val.String())
		default:
			if val.Kind() != '0' {
				return s.typeMismatch(f, field.KUint)
			}
			if f.Kind == field.KReserved {
				return errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
					Path(s.mapping.Name, f.Name).
					Detail("reserved fields cannot be set").
					Build()
			}
			var u uint64
			u, err = parseUint(s, f, val.String())
			if err == nil {
				err = s.setUint(f, u)
			}
		}
		if err != nil {
			return err
		}
	}
}

// parseUint accepts only the decimal digits of an unsigned integer. Signs, fractions and
// exponents are rejected rather than truncated.
func parseUint(s *Struct, f *mapping.FieldDescr, raw string) (uint64, error) {
	u, err := strconv.ParseUint(raw, 10, 64)
	if err == nil {
		return u, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, errors.Overflow([]string{s.mapping.Name, f.Name}, u, f.Bits)
	}
	return 0, errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
		Path(s.mapping.Name, f.Name).
		Value(raw).
		Detail("%s is not an unsigned integer", raw).
		Build()
}

func jsonErr(s *Struct, err error) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Path(s.mapping.Name).
		Cause(err).
		Detail("bad JSON").
		Build()
}
