package spec

import (
	"encoding/json"
	"fmt"
)

// The JSON schema form mirrors the data-level declaration of a format:
//
//	{
//	    "name": "example",
//	    "byte_order": "big",
//	    "face_layout": "sequential",
//	    "blocks": [
//	        {
//	            "name": "vertex_data",
//	            "attributes": [
//	                {"name": "vertex_count", "type": "uint32"},
//	                {"name": "position", "type": "float", "size": 3}
//	            ]
//	        }
//	    ]
//	}
//
// Unmarshalling routes through the validating constructors, so an
// illegal schema file fails with the same errors as illegal in-code
// construction.

type jsonAttr struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int    `json:"size,omitempty"`
}

type jsonBlock struct {
	Name       string     `json:"name"`
	Attributes []jsonAttr `json:"attributes"`
	Terminator *jsonAttr  `json:"terminator,omitempty"`
}

type jsonFormat struct {
	Name         string      `json:"name"`
	ByteOrder    string      `json:"byte_order"`
	FaceLayout   string      `json:"face_layout"`
	StringLength string      `json:"string_length,omitempty"`
	Blocks       []jsonBlock `json:"blocks"`
}

func jsonFromAttr(a Attribute) jsonAttr {
	j := jsonAttr{Name: a.Name, Type: a.Type.String()}
	if a.Size != 1 {
		j.Size = a.Size
	}
	return j
}

func attrFromJSON(j jsonAttr) (Attribute, error) {
	typ := TypeFromString(j.Type)
	if typ == TypeInvalid {
		return Attribute{}, fmt.Errorf("attribute %q: unknown data type %q", j.Name, j.Type)
	}
	size := j.Size
	if size == 0 {
		size = 1
	}
	return NewAttributeSize(j.Name, typ, size)
}

// MarshalJSON implements json.Marshaler.
func (f *FormatSpec) MarshalJSON() ([]byte, error) {
	jf := jsonFormat{
		Name:       f.Name,
		ByteOrder:  f.Order.String(),
		FaceLayout: f.Layout.String(),
		Blocks:     make([]jsonBlock, len(f.Blocks)),
	}
	if f.StringLength != DefaultStringLength {
		jf.StringLength = f.StringLength.String()
	}
	for i, b := range f.Blocks {
		jb := jsonBlock{Name: b.Name, Attributes: make([]jsonAttr, len(b.Attributes))}
		for k, a := range b.Attributes {
			jb.Attributes[k] = jsonFromAttr(a)
		}
		if b.Terminator != nil {
			term := jsonFromAttr(*b.Terminator)
			jb.Terminator = &term
		}
		jf.Blocks[i] = jb
	}
	return json.Marshal(jf)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FormatSpec) UnmarshalJSON(b []byte) error {
	var jf jsonFormat
	if err := json.Unmarshal(b, &jf); err != nil {
		return err
	}
	order, err := ByteOrderFromString(jf.ByteOrder)
	if err != nil {
		return err
	}
	layout, err := FaceLayoutFromString(jf.FaceLayout)
	if err != nil {
		return err
	}
	blocks := make([]Block, len(jf.Blocks))
	for i, jb := range jf.Blocks {
		attrs := make([]Attribute, len(jb.Attributes))
		for k, ja := range jb.Attributes {
			if attrs[k], err = attrFromJSON(ja); err != nil {
				return fmt.Errorf("block %q: %w", jb.Name, err)
			}
		}
		block := NewBlock(jb.Name, attrs...)
		if jb.Terminator != nil {
			term, err := attrFromJSON(*jb.Terminator)
			if err != nil {
				return fmt.Errorf("block %q: terminator: %w", jb.Name, err)
			}
			block = block.Terminated(term)
		}
		blocks[i] = block
	}
	spec, err := New(jf.Name, blocks, order, layout)
	if err != nil {
		return err
	}
	if jf.StringLength != "" {
		typ := TypeFromString(jf.StringLength)
		if !typ.Unsigned() {
			return ErrConfig{Field: "string length type", Value: jf.StringLength}
		}
		spec.StringLength = typ
	}
	*f = *spec
	return nil
}
