// Package dataset provides the tabular data model consumed by the rule
// learners: attributes (nominal or numeric), weighted instances with
// missing values, and instance collections with the sorting, filtering
// and stratification operations rule induction needs.
package dataset

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/YuminosukeSato/furia/pkg/errors"
)

// AttributeType distinguishes the two supported attribute kinds.
type AttributeType int

const (
	// Numeric attributes hold real values.
	Numeric AttributeType = iota
	// Nominal attributes hold an index into a fixed, ordered value set.
	Nominal
)

// Attribute describes one column of the instance schema.
type Attribute struct {
	name   string
	typ    AttributeType
	values []string
	index  int
}

// NewNumericAttribute creates a numeric attribute. The schema assigns
// the index when the attribute is registered.
func NewNumericAttribute(name string) *Attribute {
	return &Attribute{name: name, typ: Numeric, index: -1}
}

// NewNominalAttribute creates a nominal attribute over the given
// ordered value set.
func NewNominalAttribute(name string, values []string) *Attribute {
	vs := make([]string, len(values))
	copy(vs, values)
	return &Attribute{name: name, typ: Nominal, values: vs, index: -1}
}

// Name returns the attribute name.
func (a *Attribute) Name() string { return a.name }

// Type returns the attribute kind.
func (a *Attribute) Type() AttributeType { return a.typ }

// IsNumeric reports whether the attribute is numeric.
func (a *Attribute) IsNumeric() bool { return a.typ == Numeric }

// IsNominal reports whether the attribute is nominal.
func (a *Attribute) IsNominal() bool { return a.typ == Nominal }

// Index returns the attribute position within its schema, or -1 when
// the attribute has not been registered yet.
func (a *Attribute) Index() int { return a.index }

// NumValues returns the size of the nominal value set, 0 for numeric
// attributes.
func (a *Attribute) NumValues() int { return len(a.values) }

// Value returns the nominal value label at the given index.
func (a *Attribute) Value(i int) string {
	if !a.IsNominal() {
		return ""
	}
	return a.values[i]
}

// IndexOfValue returns the index of the given nominal label, or -1.
func (a *Attribute) IndexOfValue(label string) int {
	for i, v := range a.values {
		if v == label {
			return i
		}
	}
	return -1
}

// attributeGob is the exported wire form of an Attribute.
type attributeGob struct {
	Name   string
	Type   AttributeType
	Values []string
	Index  int
}

// GobEncode implements gob.GobEncoder so rule structures referencing
// attributes can be persisted.
func (a *Attribute) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(attributeGob{
		Name: a.name, Type: a.typ, Values: a.values, Index: a.index,
	})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (a *Attribute) GobDecode(b []byte) error {
	var w attributeGob
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&w); err != nil {
		return err
	}
	a.name, a.typ, a.values, a.index = w.Name, w.Type, w.Values, w.Index
	return nil
}

// Schema is the ordered attribute list shared by all instances of a
// set, plus the designated class attribute.
type Schema struct {
	attrs      []*Attribute
	classIndex int
}

// NewSchema builds a schema from the attribute list and class position.
// Attribute indices are assigned from the list order.
func NewSchema(attrs []*Attribute, classIndex int) (*Schema, error) {
	if len(attrs) == 0 {
		return nil, errors.NewValueError("dataset.NewSchema", "schema needs at least one attribute")
	}
	if classIndex < 0 || classIndex >= len(attrs) {
		return nil, errors.NewValidationError("classIndex",
			fmt.Sprintf("must be in [0, %d)", len(attrs)), classIndex)
	}
	for i, att := range attrs {
		att.index = i
	}
	return &Schema{attrs: attrs, classIndex: classIndex}, nil
}

// NumAttributes returns the number of attributes, class included.
func (s *Schema) NumAttributes() int { return len(s.attrs) }

// Attribute returns the attribute at position i.
func (s *Schema) Attribute(i int) *Attribute { return s.attrs[i] }

// ClassIndex returns the position of the class attribute.
func (s *Schema) ClassIndex() int { return s.classIndex }

// ClassAttribute returns the class attribute.
func (s *Schema) ClassAttribute() *Attribute { return s.attrs[s.classIndex] }

// NumClasses returns the number of class values, 0 when the class
// attribute is numeric.
func (s *Schema) NumClasses() int { return s.ClassAttribute().NumValues() }
