package dataset

import (
	"math"
	"math/rand"
	"sort"
)

// Instances is an ordered collection of instances sharing one schema.
// Copies made by Copy, Slice and the filter helpers are shallow: they
// share the instance objects with the source, matching the resource
// policy of the rule learners (instances are never mutated after
// construction, collections are).
type Instances struct {
	schema *Schema
	list   []*Instance
}

// NewInstances creates an empty set with the given capacity hint.
func NewInstances(schema *Schema, capacity int) *Instances {
	return &Instances{schema: schema, list: make([]*Instance, 0, capacity)}
}

// Schema returns the shared schema.
func (d *Instances) Schema() *Schema { return d.schema }

// Len returns the number of instances.
func (d *Instances) Len() int { return len(d.list) }

// Instance returns the instance at position i.
func (d *Instances) Instance(i int) *Instance { return d.list[i] }

// Add appends an instance.
func (d *Instances) Add(in *Instance) { d.list = append(d.list, in) }

// Copy returns a shallow copy of the collection.
func (d *Instances) Copy() *Instances {
	list := make([]*Instance, len(d.list))
	copy(list, d.list)
	return &Instances{schema: d.schema, list: list}
}

// Slice returns a shallow copy of the index range [from, from+count).
func (d *Instances) Slice(from, count int) *Instances {
	out := NewInstances(d.schema, count)
	out.list = append(out.list, d.list[from:from+count]...)
	return out
}

// SumOfWeights returns the total instance weight.
func (d *Instances) SumOfWeights() float64 {
	var sum float64
	for _, in := range d.list {
		sum += in.weight
	}
	return sum
}

// ClassCounts returns the per-class weight totals. Instances with a
// missing class are ignored.
func (d *Instances) ClassCounts() []float64 {
	counts := make([]float64, d.schema.NumClasses())
	for _, in := range d.list {
		if in.ClassIsMissing() {
			continue
		}
		counts[int(in.ClassValue())] += in.weight
	}
	return counts
}

// SortByAttribute stably sorts the instances ascending by the given
// attribute. Instances missing the attribute are moved to the end in
// their original relative order.
func (d *Instances) SortByAttribute(att int) {
	sort.SliceStable(d.list, func(i, j int) bool {
		vi, vj := d.list[i].values[att], d.list[j].values[att]
		if math.IsNaN(vi) {
			return false
		}
		if math.IsNaN(vj) {
			return true
		}
		return vi < vj
	})
}

// DeleteWithMissing removes every instance missing the given attribute.
func (d *Instances) DeleteWithMissing(att int) {
	kept := d.list[:0]
	for _, in := range d.list {
		if !in.IsMissing(att) {
			kept = append(kept, in)
		}
	}
	d.list = kept
}

// DeleteWithMissingClass removes every instance with a missing class.
func (d *Instances) DeleteWithMissingClass() {
	d.DeleteWithMissing(d.schema.classIndex)
}

// Filter returns a shallow copy holding the instances the predicate
// accepts, preserving order.
func (d *Instances) Filter(keep func(*Instance) bool) *Instances {
	out := NewInstances(d.schema, len(d.list))
	for _, in := range d.list {
		if keep(in) {
			out.Add(in)
		}
	}
	return out
}

// Randomize shuffles the instances with a Fisher-Yates pass driven by
// the given generator.
func (d *Instances) Randomize(rng *rand.Rand) {
	for i := len(d.list) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.list[i], d.list[j] = d.list[j], d.list[i]
	}
}

// NumDistinctValues returns the number of distinct non-missing values
// of a numeric attribute, or the value-set size for a nominal one.
func (d *Instances) NumDistinctValues(att int) int {
	a := d.schema.Attribute(att)
	if a.IsNominal() {
		return a.NumValues()
	}
	vals := make([]float64, 0, len(d.list))
	for _, in := range d.list {
		if !in.IsMissing(att) {
			vals = append(vals, in.values[att])
		}
	}
	sort.Float64s(vals)
	distinct := 0
	for i, v := range vals {
		if i == 0 || v != vals[i-1] {
			distinct++
		}
	}
	return distinct
}

// Stratify reorders the instances so that consecutive fold-sized blocks
// carry approximately the original class proportions: the set is
// bucketed by class, each bucket is shuffled, and the buckets are
// interleaved fold by fold.
func (d *Instances) Stratify(folds int, rng *rand.Rand) *Instances {
	if !d.schema.ClassAttribute().IsNominal() {
		return d
	}
	bags := make([]*Instances, d.schema.NumClasses())
	for i := range bags {
		bags[i] = NewInstances(d.schema, 0)
	}
	for _, in := range d.list {
		bags[int(in.ClassValue())].Add(in)
	}
	for _, bag := range bags {
		bag.Randomize(rng)
	}

	out := NewInstances(d.schema, len(d.list))
	for k := 0; k < folds; k++ {
		offset, bag := k, 0
	oneFold:
		for {
			for offset >= bags[bag].Len() {
				offset -= bags[bag].Len()
				bag++
				if bag >= len(bags) {
					break oneFold
				}
			}
			out.Add(bags[bag].Instance(offset))
			offset += folds
		}
	}
	return out
}

// Partition splits a stratified set into the grow portion (the first
// numFolds-1 folds) and the prune portion (the last fold).
func (d *Instances) Partition(numFolds int) (grow, prune *Instances) {
	splits := len(d.list) * (numFolds - 1) / numFolds
	return d.Slice(0, splits), d.Slice(splits, len(d.list)-splits)
}
