package rules

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/furia/dataset"
)

// Rule is a conjunction of antecedents predicting one class value.
// Antecedents appear in growth order; pruning and optimization only
// ever truncate the tail. The rule confidence lives on the last
// antecedent (one confidence per prefix, see calculateConfidences).
type Rule struct {
	// Consequent is the predicted class value index.
	Consequent float64
	// Antds is the ordered antecedent list.
	Antds []*Antecedent
}

// NewRule creates an empty rule for the given class value.
func NewRule(consequent float64) *Rule {
	return &Rule{Consequent: consequent}
}

func (r *Rule) copy() *Rule {
	c := NewRule(r.Consequent)
	c.Antds = make([]*Antecedent, len(r.Antds))
	for i, a := range r.Antds {
		c.Antds[i] = a.copy()
	}
	return c
}

// HasAntds reports whether the rule has at least one antecedent.
// Antecedent-free rules never take part in inference.
func (r *Rule) HasAntds() bool { return len(r.Antds) > 0 }

// Size returns the number of antecedents.
func (r *Rule) Size() int { return len(r.Antds) }

// Confidence returns the rule confidence, NaN for an antecedent-free
// rule.
func (r *Rule) Confidence() float64 {
	if !r.HasAntds() {
		return math.NaN()
	}
	return r.Antds[len(r.Antds)-1].Confidence
}

// Membership returns the T-norm aggregation of the antecedent
// membership degrees for the instance.
func (r *Rule) Membership(in *dataset.Instance, tnorm TNorm) float64 {
	coverage := 1.0
	for _, antd := range r.Antds {
		c := antd.Covers(in)
		if tnorm == TNormMin {
			coverage = math.Min(coverage, c)
		} else {
			coverage *= c
		}
	}
	return coverage
}

// Covers reports whether the instance has non-zero membership. The
// product and min T-norms agree on the zero boundary, so the result is
// T-norm independent.
func (r *Rule) Covers(in *dataset.Instance) bool {
	return r.Membership(in, TNormProduct) != 0
}

// computeDefAccu sums the weight of instances labeled with the rule's
// consequent.
func (r *Rule) computeDefAccu(data *dataset.Instances) float64 {
	var defAccu float64
	for i := 0; i < data.Len(); i++ {
		in := data.Instance(i)
		if int(in.ClassValue()) == int(r.Consequent) {
			defAccu += in.Weight()
		}
	}
	return defAccu
}

// grow extends the rule one antecedent at a time, each step keeping the
// attribute test with the highest information gain on the remaining
// growing data, until no test gains, the accurate weight drops below
// minNo, or the covered data is pure.
func (r *Rule) grow(data *dataset.Instances, minNo float64) {
	growData := data
	sumOfWeights := growData.SumOfWeights()
	if !gr(sumOfWeights, 0.0) {
		return
	}

	defAccu := r.computeDefAccu(growData)
	defAccRt := (defAccu + 1.0) / (sumOfWeights + 1.0)

	schema := growData.Schema()
	used := make([]bool, schema.NumAttributes())
	numUnused := len(used)

	// Nominal attributes of existing antecedents stay used; numeric
	// attributes may be tested more than once.
	for _, antd := range r.Antds {
		if !antd.Attr.IsNumeric() {
			used[antd.Attr.Index()] = true
			numUnused--
		}
	}

	for gr(float64(growData.Len()), 0.0) && numUnused > 0 && sm(defAccRt, 1.0) {
		maxInfoGain := 0.0
		var oneAntd *Antecedent
		var coverData *dataset.Instances

		for i := 0; i < schema.NumAttributes(); i++ {
			if i == schema.ClassIndex() || used[i] {
				continue
			}
			antd := newAntecedent(schema.Attribute(i))
			coveredData := r.computeInfoGain(growData, defAccRt, antd)
			if coveredData == nil {
				continue
			}
			if antd.maxInfoGain > maxInfoGain {
				oneAntd = antd
				coverData = coveredData
				maxInfoGain = antd.maxInfoGain
			}
		}

		if oneAntd == nil {
			break
		}
		if sm(oneAntd.accu, minNo) {
			break
		}

		if !oneAntd.Attr.IsNumeric() {
			used[oneAntd.Attr.Index()] = true
			numUnused--
		}

		r.Antds = append(r.Antds, oneAntd)
		growData = coverData
		defAccRt = oneAntd.accuRate
	}
}

// computeInfoGain evaluates the antecedent's best split on the data and
// returns the bag the winning test covers, nil when the attribute is
// missing everywhere.
func (r *Rule) computeInfoGain(data *dataset.Instances, defAccRt float64, antd *Antecedent) *dataset.Instances {
	bags := antd.splitData(data, defAccRt, r.Consequent)
	if bags == nil {
		return nil
	}
	return bags[int(antd.Value)]
}

// prune truncates the rule to the antecedent prefix that scores best on
// the pruning data. With useWhole the score is (TP+TN)/total over the
// whole pruning set, otherwise the Laplace accuracy of the covered
// portion. A prefix must strictly beat the empty-rule baseline and all
// shorter prefixes to win, so ties keep the shorter rule.
func (r *Rule) prune(pruneData *dataset.Instances, useWhole bool) {
	data := pruneData

	total := data.SumOfWeights()
	if !gr(total, 0.0) {
		return
	}

	defAccu := r.computeDefAccu(data)

	size := len(r.Antds)
	if size == 0 {
		return
	}

	worthRt := make([]float64, size)
	coverage := make([]float64, size)
	worthValue := make([]float64, size)

	tn := 0.0
	for x := 0; x < size; x++ {
		antd := r.Antds[x]
		newData := data
		data = dataset.NewInstances(newData.Schema(), 0)

		for y := 0; y < newData.Len(); y++ {
			ins := newData.Instance(y)
			if antd.Covers(ins) > 0 {
				coverage[x] += ins.Weight()
				data.Add(ins)
				if int(ins.ClassValue()) == int(r.Consequent) {
					worthValue[x] += ins.Weight()
				}
			} else if useWhole {
				if int(ins.ClassValue()) != int(r.Consequent) {
					tn += ins.Weight()
				}
			}
		}

		if useWhole {
			worthValue[x] += tn
			worthRt[x] = worthValue[x] / total
		} else {
			worthRt[x] = (worthValue[x] + 1.0) / (coverage[x] + 2.0)
		}
	}

	maxValue := (defAccu + 1.0) / (total + 2.0)
	maxIndex := -1
	for i := 0; i < size; i++ {
		if worthRt[i] > maxValue {
			maxValue = worthRt[i]
			maxIndex = i
		}
	}

	if maxIndex == -1 {
		return
	}
	r.Antds = r.Antds[:maxIndex+1]
}

// fuzzify softens the numeric antecedents into trapezoids by greedy
// coordinate ascent on rule purity: each pass evaluates the best
// support bound of every unfinished antecedent on the training
// instances covered by all other antecedents, then commits the overall
// best. The short-circuit bound only holds for unit weights.
func (r *Rule) fuzzify(data *dataset.Instances, allWeightsAreOne bool) {
	if len(r.Antds) == 0 {
		return
	}
	numNumeric := 0
	for _, a := range r.Antds {
		if a.Kind == NumericAntecedent {
			numNumeric++
		}
	}
	if numNumeric == 0 {
		return
	}

	maxPurity := math.Inf(-1)
	finished := make([]bool, len(r.Antds))
	numFinished := 0

	for numFinished < len(r.Antds) {
		maxPurityOfAll := math.Inf(-1)
		bestIdx := -1
		bestSupport := math.NaN()

		for j := range r.Antds {
			if finished[j] {
				continue
			}

			relevant := data.Copy()
			for k := range r.Antds {
				if k == j {
					continue
				}
				excl := r.Antds[k]
				relevant = relevant.Filter(func(in *dataset.Instance) bool {
					return excl.Covers(in) != 0
				})
			}

			if !r.Antds[j].Attr.IsNumeric() || relevant.Len() == 0 {
				// Nominal, or nothing left to fuzzify against.
				finished[j] = true
				numFinished++
				continue
			}

			current := r.Antds[j].copy()
			current.FuzzyYet = true
			att := current.Attr.Index()

			relevant.DeleteWithMissing(att)
			if !gr(relevant.SumOfWeights(), 0.0) {
				return
			}
			relevant.SortByAttribute(att)

			maxPurityForThis := 0.0
			bestFound := math.NaN()
			lastAccu, lastCover := 0.0, 0.0
			n := relevant.Len()

			if current.Value == SideLow {
				for k := 1; k < n; k++ {
					remaining := float64(n - k - 1)
					if allWeightsAreOne && (lastAccu+remaining)/(lastCover+remaining) < maxPurityForThis {
						break
					}
					if current.SplitPoint < relevant.Instance(k).Value(att) &&
						relevant.Instance(k).Value(att) != relevant.Instance(k-1).Value(att) {
						current.SupportBound = relevant.Instance(k).Value(att)
						accuSum, coverSum := current.weightedPurity(relevant, r.Consequent)
						purity := accuSum / coverSum
						if purity >= maxPurityForThis {
							maxPurityForThis = purity
							bestFound = current.SupportBound
						}
						lastAccu, lastCover = accuSum, coverSum
					}
				}
			} else {
				for k := n - 2; k >= 0; k-- {
					remaining := float64(k)
					if allWeightsAreOne && (lastAccu+remaining)/(lastCover+remaining) < maxPurityForThis {
						break
					}
					if current.SplitPoint > relevant.Instance(k).Value(att) &&
						relevant.Instance(k).Value(att) != relevant.Instance(k+1).Value(att) {
						current.SupportBound = relevant.Instance(k).Value(att)
						accuSum, coverSum := current.weightedPurity(relevant, r.Consequent)
						purity := accuSum / coverSum
						if purity >= maxPurityForThis {
							maxPurityForThis = purity
							bestFound = current.SupportBound
						}
						lastAccu, lastCover = accuSum, coverSum
					}
				}
			}

			if maxPurityForThis > maxPurityOfAll {
				bestIdx = j
				bestSupport = bestFound
				maxPurityOfAll = maxPurityForThis
			}
		}

		if bestIdx == -1 {
			// Every remaining antecedent was finalized this pass.
			break
		}

		if maxPurity <= maxPurityOfAll {
			if math.IsNaN(bestSupport) {
				r.Antds[bestIdx].SupportBound = r.Antds[bestIdx].SplitPoint
			} else {
				r.Antds[bestIdx].SupportBound = bestSupport
				r.Antds[bestIdx].FuzzyYet = true
			}
			maxPurity = maxPurityOfAll
		}
		finished[bestIdx] = true
		numFinished++
	}
}

// weightedPurity accumulates the membership-weighted coverage and the
// accurately covered share for the antecedent's current trapezoid.
func (a *Antecedent) weightedPurity(data *dataset.Instances, consequent float64) (accuSum, coverSum float64) {
	for i := 0; i < data.Len(); i++ {
		in := data.Instance(i)
		cov := a.Covers(in) * in.Weight()
		coverSum += cov
		if in.ClassValue() == consequent {
			accuSum += cov
		}
	}
	return accuSum, coverSum
}

// calculateConfidences assigns an m-estimate confidence (m = 2) to
// every antecedent prefix, stored on the prefix's last antecedent. The
// full-length prefix is the rule's own confidence; the shorter ones
// weight the stretched variants used for uncovered instances.
func (r *Rule) calculateConfidences(data *dataset.Instances, apriori []float64, tnorm TNorm) {
	const m = 2.0
	aprioriSum := floats.Sum(apriori)

	temp := r.copy()
	for temp.HasAntds() {
		var acc, cov float64
		for i := 0; i < data.Len(); i++ {
			in := data.Instance(i)
			membership := temp.Membership(in, tnorm) * in.Weight()
			cov += membership
			if r.Consequent == in.ClassValue() {
				acc += membership
			}
		}
		r.Antds[temp.Size()-1].Confidence =
			(acc + m*(apriori[int(r.Consequent)]/aprioriSum)) / (cov + m)
		temp.Antds = temp.Antds[:len(temp.Antds)-1]
	}
}

// StringWithClass renders the rule against the class attribute's value
// labels.
func (r *Rule) StringWithClass(classAttr *dataset.Attribute) string {
	var sb strings.Builder
	if len(r.Antds) > 0 {
		for j := 0; j < len(r.Antds)-1; j++ {
			fmt.Fprintf(&sb, "(%s) and ", r.Antds[j])
		}
		fmt.Fprintf(&sb, "(%s)", r.Antds[len(r.Antds)-1])
	}
	fmt.Fprintf(&sb, " => %s=%s", classAttr.Name(), classAttr.Value(int(r.Consequent)))
	return sb.String()
}
