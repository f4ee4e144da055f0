package dataset

import "math"

// Instance is one weighted row of a dataset. Values are stored as
// float64 per attribute; nominal values hold the index into the
// attribute's value set. NaN marks a missing value.
type Instance struct {
	schema *Schema
	values []float64
	weight float64
}

// NewInstance creates an instance over the given schema. The value
// slice is used as-is and must have one entry per schema attribute.
func NewInstance(schema *Schema, values []float64, weight float64) *Instance {
	return &Instance{schema: schema, values: values, weight: weight}
}

// Schema returns the schema the instance belongs to.
func (in *Instance) Schema() *Schema { return in.schema }

// Value returns the value of attribute att.
func (in *Instance) Value(att int) float64 { return in.values[att] }

// SetValue assigns the value of attribute att.
func (in *Instance) SetValue(att int, v float64) { in.values[att] = v }

// IsMissing reports whether attribute att has no value.
func (in *Instance) IsMissing(att int) bool { return math.IsNaN(in.values[att]) }

// ClassValue returns the class value (an index into the class
// attribute's value set when the class is nominal).
func (in *Instance) ClassValue() float64 { return in.values[in.schema.classIndex] }

// ClassIsMissing reports whether the class value is missing.
func (in *Instance) ClassIsMissing() bool { return in.IsMissing(in.schema.classIndex) }

// Weight returns the instance weight.
func (in *Instance) Weight() float64 { return in.weight }

// SetWeight assigns the instance weight.
func (in *Instance) SetWeight(w float64) { in.weight = w }

// Copy returns a deep copy of the instance sharing the schema.
func (in *Instance) Copy() *Instance {
	vs := make([]float64, len(in.values))
	copy(vs, in.values)
	return &Instance{schema: in.schema, values: vs, weight: in.weight}
}
