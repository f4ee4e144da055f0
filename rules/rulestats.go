package rules

import (
	"math"

	"github.com/YuminosukeSato/furia/dataset"
)

// Indices into the per-rule 6-tuple of coverage statistics. The tuple
// is computed against the residual data left over by earlier rules.
const (
	statCovered  = iota // weight covered by the rule
	statUncov           // weight not covered
	statTruePos         // covered, class matches the consequent
	statTrueNeg         // uncovered, class differs
	statFalsePos        // covered, class differs
	statFalseNeg        // uncovered, class matches
)

// MDL tuning constants of the RIPPER description length.
const (
	// redundancyFactor discounts the theory bits for redundant
	// antecedents.
	redundancyFactor = 0.5
	// mdlTheoryWeight scales the whole theory description length.
	mdlTheoryWeight = 1.0
)

// coverageSplit pairs the covered and uncovered portion of a rule's
// residual data.
type coverageSplit struct {
	covered   *dataset.Instances
	uncovered *dataset.Instances
}

// RuleStats keeps the per-ruleset bookkeeping of one class: the rules
// in induction order, their cumulative coverage 6-tuples against the
// residual data, the covered/uncovered data splits, per-rule class
// distributions for reporting, and the attribute-condition total that
// feeds the theory description length.
type RuleStats struct {
	data          *dataset.Instances
	ruleset       []*Rule
	simpleStats   [][]float64
	filtered      []*coverageSplit
	distributions [][]float64
	numAllConds   float64
}

// NewRuleStats creates empty bookkeeping.
func NewRuleStats() *RuleStats { return &RuleStats{} }

// NewRuleStatsFor creates bookkeeping over an existing ruleset whose
// statistics are counted later via CountData or CountDataFrom.
func NewRuleStatsFor(data *dataset.Instances, ruleset []*Rule) *RuleStats {
	return &RuleStats{data: data, ruleset: ruleset}
}

// SetData sets the data the statistics are counted against.
func (rs *RuleStats) SetData(data *dataset.Instances) { rs.data = data }

// SetNumAllConds sets the total possible condition count of the data.
func (rs *RuleStats) SetNumAllConds(total float64) { rs.numAllConds = total }

// Ruleset returns the rules in induction order.
func (rs *RuleStats) Ruleset() []*Rule { return rs.ruleset }

// RulesetSize returns the number of rules tracked.
func (rs *RuleStats) RulesetSize() int { return len(rs.ruleset) }

// SimpleStats returns the 6-tuple of the rule at the given position.
func (rs *RuleStats) SimpleStats(index int) []float64 { return rs.simpleStats[index] }

// Distributions returns the covered class-weight vector of the rule at
// the given position (reporting only).
func (rs *RuleStats) Distributions(index int) []float64 { return rs.distributions[index] }

// filteredAt returns the covered/uncovered split of the rule at the
// given position.
func (rs *RuleStats) filteredAt(index int) *coverageSplit { return rs.filtered[index] }

// NumAllConditions returns the total number of possible conditions of
// the data: the value-set size per nominal attribute, twice the
// distinct value count per numeric one.
func NumAllConditions(data *dataset.Instances) float64 {
	var total float64
	schema := data.Schema()
	for i := 0; i < schema.NumAttributes(); i++ {
		if i == schema.ClassIndex() {
			continue
		}
		if schema.Attribute(i).IsNominal() {
			total += float64(schema.Attribute(i).NumValues())
		} else {
			total += 2.0 * float64(data.NumDistinctValues(i))
		}
	}
	return total
}

// computeSimpleStats fills the 6-tuple of one rule on the given data
// and returns the covered/uncovered split. dist, when non-nil, receives
// the covered class-weight counts.
func (rs *RuleStats) computeSimpleStats(index int, insts *dataset.Instances, stats []float64, dist []float64) *coverageSplit {
	rule := rs.ruleset[index]
	split := &coverageSplit{
		covered:   dataset.NewInstances(insts.Schema(), insts.Len()),
		uncovered: dataset.NewInstances(insts.Schema(), insts.Len()),
	}
	for i := 0; i < insts.Len(); i++ {
		datum := insts.Instance(i)
		weight := datum.Weight()
		if rule.Covers(datum) {
			split.covered.Add(datum)
			stats[statCovered] += weight
			if int(datum.ClassValue()) == int(rule.Consequent) {
				stats[statTruePos] += weight
			} else {
				stats[statFalsePos] += weight
			}
			if dist != nil {
				dist[int(datum.ClassValue())] += weight
			}
		} else {
			split.uncovered.Add(datum)
			stats[statUncov] += weight
			if int(datum.ClassValue()) != int(rule.Consequent) {
				stats[statTrueNeg] += weight
			} else {
				stats[statFalseNeg] += weight
			}
		}
	}
	return split
}

// AddAndUpdate appends a rule and counts its statistics on the residual
// data left by the rules before it.
func (rs *RuleStats) AddAndUpdate(lastRule *Rule) {
	rs.ruleset = append(rs.ruleset, lastRule)

	data := rs.data
	if len(rs.filtered) > 0 {
		data = rs.filtered[len(rs.filtered)-1].uncovered
	}
	stats := make([]float64, 6)
	dist := make([]float64, rs.data.Schema().NumClasses())
	split := rs.computeSimpleStats(len(rs.ruleset)-1, data, stats, dist)
	rs.filtered = append(rs.filtered, split)
	rs.simpleStats = append(rs.simpleStats, stats)
	rs.distributions = append(rs.distributions, dist)
}

// RemoveLast drops the most recently added rule and its statistics.
func (rs *RuleStats) RemoveLast() {
	last := len(rs.ruleset) - 1
	rs.ruleset = rs.ruleset[:last]
	rs.filtered = rs.filtered[:last]
	rs.simpleStats = rs.simpleStats[:last]
	if rs.distributions != nil {
		rs.distributions = rs.distributions[:last]
	}
}

// CountData counts the statistics of every rule from scratch.
func (rs *RuleStats) CountData() {
	if rs.filtered != nil {
		return
	}
	size := len(rs.ruleset)
	rs.filtered = make([]*coverageSplit, 0, size)
	rs.simpleStats = make([][]float64, 0, size)
	rs.distributions = make([][]float64, 0, size)

	data := rs.data
	for i := 0; i < size; i++ {
		stats := make([]float64, 6)
		dist := make([]float64, rs.data.Schema().NumClasses())
		split := rs.computeSimpleStats(i, data, stats, dist)
		rs.filtered = append(rs.filtered, split)
		rs.simpleStats = append(rs.simpleStats, stats)
		rs.distributions = append(rs.distributions, dist)
		data = split.uncovered
	}
}

// CountDataFrom counts statistics starting at the given position,
// reusing previously computed 6-tuples for the rules before it and the
// uncovered residual they left behind. Splits before position-1 are
// placeholders that must not be read.
func (rs *RuleStats) CountDataFrom(index int, uncovered *dataset.Instances, prevRuleStats [][]float64) {
	if rs.filtered != nil {
		return
	}
	size := len(rs.ruleset)
	rs.filtered = make([]*coverageSplit, 0, size)
	rs.simpleStats = make([][]float64, 0, size)

	split := &coverageSplit{uncovered: uncovered}
	for i := 0; i < index; i++ {
		rs.simpleStats = append(rs.simpleStats, prevRuleStats[i])
		if i+1 == index {
			rs.filtered = append(rs.filtered, split)
		} else {
			rs.filtered = append(rs.filtered, nil)
		}
	}
	for j := index; j < size; j++ {
		stats := make([]float64, 6)
		split = rs.computeSimpleStats(j, split.uncovered, stats, nil)
		rs.filtered = append(rs.filtered, split)
		rs.simpleStats = append(rs.simpleStats, stats)
	}
}

// subsetDL is the number of bits to identify a k-element subset of t
// elements when each element is in the subset with probability p.
func subsetDL(t, k, p float64) float64 {
	var rt float64
	if gr(p, 0.0) {
		rt = -k * math.Log2(p)
	}
	rt -= (t - k) * math.Log2(1-p)
	return rt
}

// TheoryDL returns the description length of the rule at the given
// position: k·log2(numAllConds/k) bits to send which k of the possible
// conditions the rule uses, plus the subset coding of that choice and
// half a bit of rounding, weighted by the redundancy factor.
func (rs *RuleStats) TheoryDL(index int) float64 {
	k := float64(rs.ruleset[index].Size())
	if k == 0 {
		return 0.0
	}
	tdl := k*math.Log2(rs.numAllConds/k) + subsetDL(rs.numAllConds, k, k/rs.numAllConds) + 0.5
	return mdlTheoryWeight * redundancyFactor * tdl
}

// DataDL returns the bits to send the exceptions of a ruleset covering
// cov of cov+uncov instances with fp false positives and fn false
// negatives, relative to the expected error rate expFPOverErr.
func DataDL(expFPOverErr, cov, uncov, fp, fn float64) float64 {
	totalBits := math.Log2(cov + uncov + 1.0)
	var coverBits, uncoverBits, expErr float64

	if gr(cov, uncov) {
		expErr = expFPOverErr * (fp + fn)
		coverBits = subsetDL(cov, fp, expErr/cov)
		if gr(uncov, 0.0) {
			uncoverBits = subsetDL(uncov, fn, fn/uncov)
		}
	} else {
		expErr = (1.0 - expFPOverErr) * (fp + fn)
		if gr(cov, 0.0) {
			coverBits = subsetDL(cov, fp, fp/cov)
		}
		uncoverBits = subsetDL(uncov, fn, expErr/uncov)
	}
	return totalBits + coverBits + uncoverBits
}

// potential computes the DL gain of deleting the rule at index given
// the current ruleset totals. When deletion pays off (or the rule's
// error rate is at least one half and checkErr is set), the ruleset
// totals are updated in place and the gain returned; otherwise NaN.
func (rs *RuleStats) potential(index int, expFPOverErr float64, rulesetStat, ruleStat []float64, checkErr bool) float64 {
	pcov := rulesetStat[statCovered] - ruleStat[statCovered]
	puncov := rulesetStat[statUncov] + ruleStat[statCovered]
	pfp := rulesetStat[statFalsePos] - ruleStat[statFalsePos]
	pfn := rulesetStat[statFalseNeg] + ruleStat[statTruePos]

	dataDLWith := DataDL(expFPOverErr, rulesetStat[statCovered], rulesetStat[statUncov],
		rulesetStat[statFalsePos], rulesetStat[statFalseNeg])
	theoryDLWith := rs.TheoryDL(index)
	dataDLWithout := DataDL(expFPOverErr, pcov, puncov, pfp, pfn)

	pot := dataDLWith + theoryDLWith - dataDLWithout
	err := ruleStat[statFalsePos] / ruleStat[statCovered]

	overErr := grOrEq(err, 0.5)
	if !checkErr {
		overErr = false
	}

	if grOrEq(pot, 0.0) || overErr {
		rulesetStat[statCovered] = pcov
		rulesetStat[statUncov] = puncov
		rulesetStat[statFalsePos] = pfp
		rulesetStat[statFalseNeg] = pfn
		return pot
	}
	return math.NaN()
}

// MinDataDLIfExists returns the data DL of the ruleset if the rule at
// the given position is kept, after greedily deleting any later rule
// whose removal pays off.
func (rs *RuleStats) MinDataDLIfExists(index int, expFPRate float64, checkErr bool) float64 {
	rulesetStat := make([]float64, 6)
	for j := 0; j < len(rs.simpleStats); j++ {
		rulesetStat[statCovered] += rs.simpleStats[j][statCovered]
		rulesetStat[statTruePos] += rs.simpleStats[j][statTruePos]
		rulesetStat[statFalsePos] += rs.simpleStats[j][statFalsePos]
		if j == len(rs.simpleStats)-1 {
			rulesetStat[statUncov] = rs.simpleStats[j][statUncov]
			rulesetStat[statTrueNeg] = rs.simpleStats[j][statTrueNeg]
			rulesetStat[statFalseNeg] = rs.simpleStats[j][statFalseNeg]
		}
	}

	var pot float64
	for k := index + 1; k < len(rs.simpleStats); k++ {
		ifDeleted := rs.potential(k, expFPRate, rulesetStat, rs.simpleStats[k], checkErr)
		if !math.IsNaN(ifDeleted) {
			pot += ifDeleted
		}
	}

	return DataDL(expFPRate, rulesetStat[statCovered], rulesetStat[statUncov],
		rulesetStat[statFalsePos], rulesetStat[statFalseNeg]) + pot
}

// MinDataDLIfDeleted returns the data DL of the ruleset if the rule at
// the given position is deleted, recounting the later rules on the
// residual data and again greedily deleting rules that cost bits.
func (rs *RuleStats) MinDataDLIfDeleted(index int, expFPRate float64, checkErr bool) float64 {
	rulesetStat := make([]float64, 6)
	more := len(rs.ruleset) - 1 - index
	indexPlus := make([][]float64, 0, more)

	for j := 0; j < index; j++ {
		rulesetStat[statCovered] += rs.simpleStats[j][statCovered]
		rulesetStat[statTruePos] += rs.simpleStats[j][statTruePos]
		rulesetStat[statFalsePos] += rs.simpleStats[j][statFalsePos]
	}

	data := rs.data
	if index > 0 {
		data = rs.filtered[index-1].uncovered
	}
	for j := index + 1; j < len(rs.ruleset); j++ {
		stats := make([]float64, 6)
		split := rs.computeSimpleStats(j, data, stats, nil)
		indexPlus = append(indexPlus, stats)
		rulesetStat[statCovered] += stats[statCovered]
		rulesetStat[statTruePos] += stats[statTruePos]
		rulesetStat[statFalsePos] += stats[statFalsePos]
		data = split.uncovered
	}

	switch {
	case more > 0:
		last := indexPlus[len(indexPlus)-1]
		rulesetStat[statUncov] = last[statUncov]
		rulesetStat[statTrueNeg] = last[statTrueNeg]
		rulesetStat[statFalseNeg] = last[statFalseNeg]
	case index > 0:
		rulesetStat[statUncov] = rs.simpleStats[index-1][statUncov]
		rulesetStat[statTrueNeg] = rs.simpleStats[index-1][statTrueNeg]
		rulesetStat[statFalseNeg] = rs.simpleStats[index-1][statFalseNeg]
	default: // Null coverage
		rulesetStat[statUncov] = rs.simpleStats[0][statCovered] + rs.simpleStats[0][statUncov]
		rulesetStat[statTrueNeg] = rs.simpleStats[0][statTrueNeg] + rs.simpleStats[0][statFalsePos]
		rulesetStat[statFalseNeg] = rs.simpleStats[0][statTruePos] + rs.simpleStats[0][statFalseNeg]
	}

	var pot float64
	for k := index + 1; k < len(rs.ruleset); k++ {
		ruleStat := indexPlus[k-index-1]
		ifDeleted := rs.potential(k, expFPRate, rulesetStat, ruleStat, checkErr)
		if !math.IsNaN(ifDeleted) {
			pot += ifDeleted
		}
	}

	return DataDL(expFPRate, rulesetStat[statCovered], rulesetStat[statUncov],
		rulesetStat[statFalsePos], rulesetStat[statFalseNeg]) - pot
}

// RelativeDL returns the description length the rule at the given
// position contributes: its theory bits plus the data-DL difference
// between keeping and deleting it.
func (rs *RuleStats) RelativeDL(index int, expFPRate float64, checkErr bool) float64 {
	return rs.MinDataDLIfExists(index, expFPRate, checkErr) + rs.TheoryDL(index) -
		rs.MinDataDLIfDeleted(index, expFPRate, checkErr)
}

// ReduceDL walks the rules backwards and deletes every rule whose
// removal does not increase the total description length.
func (rs *RuleStats) ReduceDL(expFPRate float64, checkErr bool) {
	needUpdate := false
	rulesetStat := make([]float64, 6)

	for j := 0; j < len(rs.simpleStats); j++ {
		rulesetStat[statCovered] += rs.simpleStats[j][statCovered]
		rulesetStat[statTruePos] += rs.simpleStats[j][statTruePos]
		rulesetStat[statFalsePos] += rs.simpleStats[j][statFalsePos]
		if j == len(rs.simpleStats)-1 {
			rulesetStat[statUncov] = rs.simpleStats[j][statUncov]
			rulesetStat[statTrueNeg] = rs.simpleStats[j][statTrueNeg]
			rulesetStat[statFalseNeg] = rs.simpleStats[j][statFalseNeg]
		}
	}

	for k := len(rs.simpleStats) - 1; k >= 0; k-- {
		ifDeleted := rs.potential(k, expFPRate, rulesetStat, rs.simpleStats[k], checkErr)
		if !math.IsNaN(ifDeleted) {
			if k == len(rs.simpleStats)-1 {
				rs.RemoveLast()
			} else {
				rs.ruleset = append(rs.ruleset[:k], rs.ruleset[k+1:]...)
				needUpdate = true
			}
		}
	}

	if needUpdate {
		rs.filtered = nil
		rs.simpleStats = nil
		rs.distributions = nil
		rs.CountData()
	}
}

// RemoveCoveredBySuccessives filters out the instances covered by any
// rule after the given position.
func RemoveCoveredBySuccessives(data *dataset.Instances, rules []*Rule, index int) *dataset.Instances {
	return data.Filter(func(in *dataset.Instance) bool {
		for j := index + 1; j < len(rules); j++ {
			if rules[j].Covers(in) {
				return false
			}
		}
		return true
	})
}
