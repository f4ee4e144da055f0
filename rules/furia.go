package rules

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/furia/core/model"
	"github.com/YuminosukeSato/furia/dataset"
	"github.com/YuminosukeSato/furia/pkg/errors"
	"github.com/YuminosukeSato/furia/pkg/log"
)

// maxDLSurplus is the description-length surplus over the best ruleset
// seen so far that stops rule generation.
const maxDLSurplus = 64.0

// FURIA is the fuzzy unordered rule induction classifier. A fitted
// model holds one ruleset per class (flattened into induction order),
// the per-class coverage statistics, and the apriori class-weight
// vector used for priors, fallbacks and tie-breaks.
type FURIA struct {
	model.BaseEstimator

	folds         int
	minNo         float64
	optimizations int
	seed          int64
	checkErr      bool
	uncovAction   UncovAction
	tNorm         TNorm
	debug         bool
	logger        log.Logger

	schema        *dataset.Schema
	classAttr     *dataset.Attribute
	ruleset       []*Rule
	rulesetStats  []*RuleStats
	distributions [][]float64
	apriori       []float64
	numAllConds   float64
	rng           *rand.Rand
}

// NewFURIA creates a classifier with the default configuration
// (3 folds, minNo 2.0, 2 optimization runs, seed 1, error-rate check
// on, rule stretching, product T-norm).
func NewFURIA(opts ...Option) *FURIA {
	f := &FURIA{
		folds:         3,
		minNo:         2.0,
		optimizations: 2,
		seed:          1,
		checkErr:      true,
		uncovAction:   UncovActionStretch,
		tNorm:         TNormProduct,
		logger:        log.GetLoggerWithName("rules.furia"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Capabilities describes the data this classifier accepts.
type Capabilities struct {
	NominalAttributes  bool
	NumericAttributes  bool
	MissingValues      bool
	NominalClass       bool
	MissingClassValues bool
	MinimumInstances   int
}

// Capabilities returns the classifier's data requirements.
func (f *FURIA) Capabilities() Capabilities {
	return Capabilities{
		NominalAttributes:  true,
		NumericAttributes:  true,
		MissingValues:      true,
		NominalClass:       true,
		MissingClassValues: true,
		MinimumInstances:   f.folds,
	}
}

// testCapabilities rejects data the classifier cannot learn from.
func (f *FURIA) testCapabilities(data *dataset.Instances) error {
	if !data.Schema().ClassAttribute().IsNominal() {
		return errors.NewValueError("FURIA.Fit", "class attribute must be nominal")
	}
	if data.Len() < f.folds {
		return errors.NewValueError("FURIA.Fit",
			fmt.Sprintf("training set needs at least %d instances, got %d", f.folds, data.Len()))
	}
	return nil
}

// Fit builds the FURIA rule-based model: a RIPPER ruleset per class,
// antecedent fuzzification by purity maximization, and m-estimate
// confidences.
func (f *FURIA) Fit(data *dataset.Instances) (err error) {
	defer errors.Recover(&err, "FURIA.Fit")

	if err := f.validateOptions(); err != nil {
		return err
	}
	if err := f.testCapabilities(data); err != nil {
		return err
	}

	instances := data.Copy()
	instances.DeleteWithMissingClass()

	f.schema = instances.Schema()
	f.classAttr = f.schema.ClassAttribute()

	// Learn the apriori distribution for later. Unit weights enable
	// the fuzzification short-circuit.
	f.apriori = instances.ClassCounts()
	allWeightsAreOne := true
	for i := 0; i < instances.Len(); i++ {
		if instances.Instance(i).Weight() != 1.0 {
			allWeightsAreOne = false
			break
		}
	}

	f.rng = rand.New(rand.NewSource(f.seed))
	f.numAllConds = NumAllConditions(instances)
	if f.debug {
		f.logger.Debug("counted possible conditions",
			log.OperationKey, log.OperationFit,
			log.ConditionsKey, f.numAllConds,
			log.SamplesKey, instances.Len(),
			log.ClassesKey, f.schema.NumClasses(),
			log.FoldsKey, f.folds,
			log.SeedKey, f.seed)
	}

	f.ruleset = nil
	f.rulesetStats = nil
	f.distributions = nil

	// Learn a ruleset for each single class.
	for y := 0; y < f.schema.NumClasses(); y++ {
		if eq(f.apriori[y], 0.0) {
			continue
		}
		if f.debug {
			f.logger.Debug("learning class",
				"class", f.classAttr.Value(y), "weight", f.apriori[y])
		}

		// The expected FP/err is the proportion of the class.
		expFPRate := f.apriori[y] / floats.Sum(f.apriori)

		var classYWeights, totalWeights float64
		for j := 0; j < instances.Len(); j++ {
			datum := instances.Instance(j)
			totalWeights += datum.Weight()
			if int(datum.ClassValue()) == y {
				classYWeights += datum.Weight()
			}
		}
		if classYWeights <= 0 {
			continue // Subsumed by previous rules
		}

		// DL of the default rule: no theory DL, only data DL.
		defDL := DataDL(expFPRate, 0.0, totalWeights, 0.0, classYWeights)
		if err := errors.CheckScalar("defDL", defDL, y); err != nil {
			return err
		}

		if err := f.rulesetForOneClass(expFPRate, instances, float64(y), defDL); err != nil {
			return err
		}
	}

	// Remove redundant antecedents, keeping the later occurrence.
	for _, rule := range f.ruleset {
		for j := 0; j < len(rule.Antds); j++ {
			outer := rule.Antds[j]
			for k := j + 1; k < len(rule.Antds); k++ {
				inner := rule.Antds[k]
				if outer.Attr.Index() == inner.Attr.Index() && outer.Value == inner.Value {
					rule.Antds[j] = inner
					rule.Antds = append(rule.Antds[:k], rule.Antds[k+1:]...)
					outer = rule.Antds[j]
					k--
				}
			}
		}
	}

	// Fuzzify all rules and collect the reporting distributions.
	for _, stats := range f.rulesetStats {
		for i := 0; i < stats.RulesetSize(); i++ {
			stats.Ruleset()[i].fuzzify(instances, allWeightsAreOne)

			classDist := stats.Distributions(i)
			if floats.Sum(classDist) > 0 {
				floats.Scale(1/floats.Sum(classDist), classDist)
			}
			f.distributions = append(f.distributions, classDist)
		}
	}

	// Antecedents the purity pass left crisp get the trivial support
	// bound: the nearest training value on the uncovered side.
	for _, rule := range f.ruleset {
		for _, antd := range rule.Antds {
			if antd.Kind != NumericAntecedent || antd.FuzzyYet {
				continue
			}
			att := antd.Attr.Index()
			for i := 0; i < instances.Len(); i++ {
				v := instances.Instance(i).Value(att)
				if (antd.Value == SideHigh && antd.SplitPoint > v && (antd.SupportBound < v || !antd.FuzzyYet)) ||
					(antd.Value == SideLow && antd.SplitPoint < v && (antd.SupportBound > v || !antd.FuzzyYet)) {
					antd.SupportBound = v
					antd.FuzzyYet = true
				}
			}
		}
	}

	// Determine confidences.
	for _, rule := range f.ruleset {
		rule.calculateConfidences(instances, f.apriori, f.tNorm)
	}

	if f.debug {
		f.logger.Debug("model built",
			log.OperationKey, log.OperationFit,
			log.RulesKey, len(f.ruleset))
	}

	f.SetFitted()
	return nil
}

// rulesetForOneClass runs the RIPPER loop for one class: the building
// stage grows rules until the MDL stopping criterion trips, then each
// optimization pass revisits every position with replace and revision
// variants and finishes with a DL-guided deletion sweep.
func (f *FURIA) rulesetForOneClass(expFPRate float64, data *dataset.Instances, classIndex, defDL float64) error {
	newData := data
	stop := false
	var ruleset []*Rule

	dl, minDL := defDL, defDL
	var rstats *RuleStats
	var rst []float64

	hasPositive := true

	/* Building stage */
	if f.debug {
		f.logger.Debug("building stage",
			log.PhaseKey, log.PhaseBuilding, "class", f.classAttr.Value(int(classIndex)))
	}

	for !stop && hasPositive {
		oneRule := NewRule(classIndex)
		oneRule.grow(newData, f.minNo)
		if f.debug {
			f.logger.Debug("grew rule", "rule", oneRule.StringWithClass(f.classAttr))
		}

		if rstats == nil {
			rstats = NewRuleStats()
			rstats.SetNumAllConds(f.numAllConds)
			rstats.SetData(newData)
		}

		rstats.AddAndUpdate(oneRule)
		last := rstats.RulesetSize() - 1
		dl += rstats.RelativeDL(last, expFPRate, f.checkErr)
		if err := errors.CheckScalar("dl", dl, last); err != nil {
			return errors.Wrap(err, "building stage")
		}

		if dl < minDL {
			minDL = dl
		}

		rst = rstats.SimpleStats(last)
		stop = f.checkStop(rst, minDL, dl)

		if !stop {
			ruleset = append(ruleset, oneRule)
			newData = rstats.filteredAt(last).uncovered
			hasPositive = gr(rst[statFalseNeg], 0.0)
		} else {
			rstats.RemoveLast()
		}
	}

	/* Optimization stage */
	var finalRulesetStat *RuleStats
	for z := 0; z < f.optimizations; z++ {
		if f.debug {
			f.logger.Debug("optimization run",
				log.PhaseKey, log.PhaseOptimization, "run", z)
		}

		newData = data
		finalRulesetStat = NewRuleStats()
		finalRulesetStat.SetData(newData)
		finalRulesetStat.SetNumAllConds(f.numAllConds)
		position := 0
		stop = false
		hasPositive = true
		dl, minDL = defDL, defDL

		for !stop && hasPositive {
			isResidual := position >= len(ruleset)

			// Re-do shuffling and stratification.
			newData = newData.Stratify(f.folds, f.rng)
			growData, pruneData := newData.Partition(f.folds)

			var finalRule *Rule
			if isResidual {
				newRule := NewRule(classIndex)
				newRule.grow(newData, f.minNo)
				finalRule = newRule
				if f.debug {
					f.logger.Debug("new residual rule", "rule", newRule.StringWithClass(f.classAttr))
				}
			} else {
				oldRule := ruleset[position]
				covers := false
				for i := 0; i < newData.Len(); i++ {
					if oldRule.Covers(newData.Instance(i)) {
						covers = true
						break
					}
				}

				if !covers { // Null coverage, no variants can be generated
					finalRulesetStat.AddAndUpdate(oldRule)
					position++
					continue
				}

				// Variant 1: replace, regrown from scratch.
				replace := NewRule(classIndex)
				replace.grow(growData, f.minNo)

				// Remove the pruning data covered by the following
				// rules, then prune on the rule's own error.
				pruneData = RemoveCoveredBySuccessives(pruneData, ruleset, position)
				replace.prune(pruneData, true)

				// Variant 2: revision, grown further from the old rule
				// on the data it covers.
				revision := oldRule.copy()
				newGrowData := growData.Filter(func(in *dataset.Instance) bool {
					return revision.Covers(in)
				})
				revision.grow(newGrowData, f.minNo)
				revision.prune(pruneData, true)

				prevRuleStats := make([][]float64, position)
				for c := 0; c < position; c++ {
					prevRuleStats[c] = finalRulesetStat.SimpleStats(c)
				}

				tempRules := make([]*Rule, len(ruleset))
				for i, r := range ruleset {
					tempRules[i] = r.copy()
				}
				tempRules[position] = replace

				repStat := NewRuleStatsFor(data, tempRules)
				repStat.SetNumAllConds(f.numAllConds)
				repStat.CountDataFrom(position, newData, prevRuleStats)
				repDL := repStat.RelativeDL(position, expFPRate, f.checkErr)
				if err := errors.CheckScalar("repDL", repDL, position); err != nil {
					return errors.Wrap(err, "optimization stage")
				}

				tempRules[position] = revision
				revStat := NewRuleStatsFor(data, tempRules)
				revStat.SetNumAllConds(f.numAllConds)
				revStat.CountDataFrom(position, newData, prevRuleStats)
				revDL := revStat.RelativeDL(position, expFPRate, f.checkErr)
				if err := errors.CheckScalar("revDL", revDL, position); err != nil {
					return errors.Wrap(err, "optimization stage")
				}

				rstats = NewRuleStatsFor(data, ruleset)
				rstats.SetNumAllConds(f.numAllConds)
				rstats.CountDataFrom(position, newData, prevRuleStats)
				oldDL := rstats.RelativeDL(position, expFPRate, f.checkErr)
				if err := errors.CheckScalar("oldDL", oldDL, position); err != nil {
					return errors.Wrap(err, "optimization stage")
				}
				if f.debug {
					f.logger.Debug("variant DLs", "position", position,
						"oldDL", oldDL, "revDL", revDL, "repDL", repDL)
				}

				switch {
				case oldDL <= revDL && oldDL <= repDL:
					finalRule = oldRule
				case revDL <= repDL:
					finalRule = revision
				default:
					finalRule = replace
				}
			}

			finalRulesetStat.AddAndUpdate(finalRule)
			rst = finalRulesetStat.SimpleStats(position)

			if isResidual {
				dl += finalRulesetStat.RelativeDL(position, expFPRate, f.checkErr)
				if dl < minDL {
					minDL = dl
				}
				stop = f.checkStop(rst, minDL, dl)
				if !stop {
					ruleset = append(ruleset, finalRule)
				} else {
					finalRulesetStat.RemoveLast()
					position--
				}
			} else {
				ruleset[position] = finalRule
			}

			if finalRulesetStat.RulesetSize() > 0 { // Data not covered
				newData = finalRulesetStat.filteredAt(position).uncovered
			}
			hasPositive = gr(rst[statFalseNeg], 0.0)
			position++
		}

		if len(ruleset) > position+1 { // Hasn't gone through yet
			for k := position + 1; k < len(ruleset); k++ {
				finalRulesetStat.AddAndUpdate(ruleset[k])
			}
		}

		finalRulesetStat.ReduceDL(expFPRate, f.checkErr)
		if f.debug {
			f.logger.Debug("DL reduction",
				"deleted", len(ruleset)-finalRulesetStat.RulesetSize())
		}
		ruleset = finalRulesetStat.Ruleset()
		rstats = finalRulesetStat
	}

	f.ruleset = append(f.ruleset, ruleset...)
	f.rulesetStats = append(f.rulesetStats, rstats)
	return nil
}

// checkStop reports whether rule generation should stop: the DL
// overshoots the best by more than the surplus cap, no positives are
// covered, or the error rate reaches one half (when enabled).
func (f *FURIA) checkStop(rst []float64, minDL, dl float64) bool {
	switch {
	case dl > minDL+maxDLSurplus:
		if f.debug {
			f.logger.Debug("stop: DL too large", "dl", dl, "minDL", minDL)
		}
		return true
	case !gr(rst[statTruePos], 0.0):
		if f.debug {
			f.logger.Debug("stop: too few positives")
		}
		return true
	case rst[statFalsePos]/rst[statCovered] >= 0.5:
		if f.checkErr {
			if f.debug {
				f.logger.Debug("stop: error too large",
					"fp", rst[statFalsePos], "covered", rst[statCovered])
			}
			return true
		}
		return false
	default:
		return false
	}
}

// Ruleset returns the learned rules across all classes in induction
// order. The slice is owned by the model and must not be modified.
func (f *FURIA) Ruleset() []*Rule { return f.ruleset }

// RuleStatsAt returns the coverage statistics of the class ruleset at
// the given position.
func (f *FURIA) RuleStatsAt(pos int) *RuleStats { return f.rulesetStats[pos] }

// Apriori returns the training class-weight vector.
func (f *FURIA) Apriori() []float64 { return f.apriori }

// MeasureNumRules returns the number of rules in the model.
func (f *FURIA) MeasureNumRules() float64 { return float64(len(f.ruleset)) }

// GetMeasure returns the value of the named additional measure.
func (f *FURIA) GetMeasure(name string) (float64, error) {
	if strings.EqualFold(name, "measureNumRules") {
		return f.MeasureNumRules(), nil
	}
	return 0, errors.NewValueError("FURIA.GetMeasure", name+" not supported (FURIA)")
}

// String prints all rules of the model with their certainty factors.
func (f *FURIA) String() string {
	if !f.IsFitted() {
		return "FURIA: No model built yet."
	}

	var sb strings.Builder
	sb.WriteString("FURIA rules:\n===========\n\n")
	for _, stats := range f.rulesetStats {
		for _, rule := range stats.Ruleset() {
			fmt.Fprintf(&sb, "%s (CF = %v)\n",
				rule.StringWithClass(f.classAttr), math.Round(100.0*rule.Confidence())/100.0)
		}
	}
	fmt.Fprintf(&sb, "\nNumber of Rules : %d\n", len(f.ruleset))
	return sb.String()
}
