package mapping

import (
	"fmt"

	"github.com/bearlytools/bitfield/enums"
	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/field"
	jsonv2 "github.com/go-json-experiment/json"
)

type jsonMap struct {
	Name        string      `json:"name"`
	TotalBytes  int         `json:"totalBytes"`
	Fingerprint string      `json:"fingerprint"`
	Fields      []jsonField `json:"fields"`
}

type jsonField struct {
	Name   string    `json:"name"`
	Kind   string    `json:"kind"`
	Bits   uint8     `json:"bits"`
	Offset uint64    `json:"offset"`
	Enum   *jsonEnum `json:"enum,omitzero"`
}

type jsonEnum struct {
	Name     string        `json:"name"`
	Variants []jsonVariant `json:"variants"`
}

type jsonVariant struct {
	Name  string `json:"name"`
	Value uint16 `json:"value"`
}

// MarshalJSON renders the Map as a self describing schema document. UnmarshalMap reverses it.
func (m *Map) MarshalJSON() ([]byte, error) {
	jm := jsonMap{
		Name:        m.Name,
		TotalBytes:  m.TotalBytes,
		Fingerprint: fmt.Sprintf("%016x", m.fingerprint),
		Fields:      make([]jsonField, 0, m.Len()),
	}
	for _, f := range m.All() {
		jf := jsonField{Name: f.Name, Kind: f.Kind.String(), Bits: f.Bits, Offset: f.Offset}
		if f.Enum != nil {
			je := &jsonEnum{Name: f.Enum.Name()}
			for _, v := range f.Enum.Variants() {
				je.Variants = append(je.Variants, jsonVariant{Name: v.Name, Value: v.Value})
			}
			jf.Enum = je
		}
		jm.Fields = append(jm.Fields, jf)
	}
	return jsonv2.Marshal(jm)
}

// UnmarshalMap rebuilds a Map from the output of Map.MarshalJSON. Every field and enum is
// validated again and the offsets, size and fingerprint in the document must match what the
// fields produce. Enum groups are registered in groups, so that a field sharing a Group with
// another schema gets the same *enums.Group. groups may be nil.
func UnmarshalMap(data []byte, groups *enums.Groups, opts ...Option) (*Map, error) {
	var jm jsonMap
	if err := jsonv2.Unmarshal(data, &jm); err != nil {
		return nil, errors.New(errors.PhaseSchema, errors.KindInvalidData).
			Cause(err).
			Detail("schema document is not valid JSON").
			Build()
	}
	if groups == nil {
		groups = enums.NewGroups()
	}

	b := NewBuilder(jm.Name, opts...)
	for _, jf := range jm.Fields {
		k, err := field.ParseKind(jf.Kind)
		if err != nil {
			return nil, errors.New(errors.PhaseSchema, errors.KindInvalidData).
				Path(jm.Name, jf.Name).
				Cause(err).
				Build()
		}
		fd := FieldDescr{Name: jf.Name, Kind: k, Bits: jf.Bits}
		if jf.Enum != nil {
			vars := make([]enums.Variant, 0, len(jf.Enum.Variants))
			for _, v := range jf.Enum.Variants {
				vars = append(vars, enums.Variant{Name: v.Name, Value: v.Value})
			}
			g, err := enums.New(jf.Enum.Name, vars)
			if err != nil {
				return nil, err
			}
			if g, err = groups.Add(g); err != nil {
				return nil, err
			}
			fd.Enum = g
		}
		b.Field(fd)
	}

	m, err := b.Build()
	if err != nil {
		return nil, err
	}

	for i, jf := range jm.Fields {
		if m.fields[i].Offset != jf.Offset {
			return nil, mismatch(m, jf.Name, "offset %d, computed %d", jf.Offset, m.fields[i].Offset)
		}
	}
	if m.TotalBytes != jm.TotalBytes {
		return nil, mismatch(m, "", "totalBytes %d, computed %d", jm.TotalBytes, m.TotalBytes)
	}
	if fp := fmt.Sprintf("%016x", m.fingerprint); jm.Fingerprint != "" && fp != jm.Fingerprint {
		return nil, mismatch(m, "", "fingerprint %s, computed %s", jm.Fingerprint, fp)
	}
	return m, nil
}

func mismatch(m *Map, fieldName, msg string, args ...any) error {
	path := []string{m.Name}
	if fieldName != "" {
		path = append(path, fieldName)
	}
	return errors.New(errors.PhaseSchema, errors.KindSchemaMismatch).
		Path(path...).
		Detail("document has "+msg, args...).
		Build()
}
