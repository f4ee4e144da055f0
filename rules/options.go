package rules

import (
	"fmt"
	"strconv"

	"github.com/YuminosukeSato/furia/pkg/errors"
)

// TNorm selects the fuzzy AND-operator aggregating antecedent
// memberships.
type TNorm int

const (
	// TNormProduct multiplies the membership degrees (standard).
	TNormProduct TNorm = iota
	// TNormMin takes the minimum membership degree.
	TNormMin
)

// String returns the flag value name of the T-norm.
func (t TNorm) String() string {
	if t == TNormMin {
		return "MIN"
	}
	return "PROD"
}

// UncovAction selects what prediction does with an instance no rule
// covers.
type UncovAction int

const (
	// UncovActionStretch applies rule stretching (standard).
	UncovActionStretch UncovAction = iota
	// UncovActionApriori returns the normalized apriori class
	// distribution.
	UncovActionApriori
	// UncovActionReject abstains and returns the all-zero vector.
	UncovActionReject
)

// String returns the flag value name of the action.
func (u UncovAction) String() string {
	switch u {
	case UncovActionApriori:
		return "APRIORI"
	case UncovActionReject:
		return "REJECT"
	default:
		return "STRETCH"
	}
}

// Option configures a FURIA classifier.
type Option func(*FURIA)

// WithFolds sets the number of folds for reduced-error pruning. One
// fold prunes, the rest grow.
func WithFolds(folds int) Option {
	return func(f *FURIA) { f.folds = folds }
}

// WithMinNo sets the minimum accurately covered (positive) weight an
// antecedent needs to be added while growing a rule.
func WithMinNo(minNo float64) Option {
	return func(f *FURIA) { f.minNo = minNo }
}

// WithOptimizations sets the number of optimization runs.
func WithOptimizations(runs int) Option {
	return func(f *FURIA) { f.optimizations = runs }
}

// WithSeed sets the randomization seed for stratification.
func WithSeed(seed int64) Option {
	return func(f *FURIA) { f.seed = seed }
}

// WithCheckErrorRate sets whether an error rate of one half or more
// joins the stopping criterion.
func WithCheckErrorRate(check bool) Option {
	return func(f *FURIA) { f.checkErr = check }
}

// WithUncovAction sets the action performed for uncovered instances.
func WithUncovAction(action UncovAction) Option {
	return func(f *FURIA) { f.uncovAction = action }
}

// WithTNorm sets the T-norm used as fuzzy AND-operator.
func WithTNorm(t TNorm) Option {
	return func(f *FURIA) { f.tNorm = t }
}

// WithDebug enables diagnostic logging through the package logger.
func WithDebug(debug bool) Option {
	return func(f *FURIA) { f.debug = debug }
}

// ParseOptions parses the single-character flag surface:
//
//	-F <folds>   folds for reduced-error pruning (default 3)
//	-N <weight>  minimal covered-positive weight of a grown antecedent (default 2.0)
//	-O <runs>    number of optimization runs (default 2)
//	-S <seed>    randomization seed (default 1)
//	-E           do NOT check for error rate >= 0.5 while stopping
//	-s <action>  uncovered-instance action: STRETCH|APRIORI|REJECT or 0|1|2
//	-p <tnorm>   T-norm: PROD|MIN or 0|1
//	-D           debug output
//
// Unknown flags and unparseable values are configuration errors.
func ParseOptions(args []string) ([]Option, error) {
	var opts []Option

	next := func(i int, flag string) (string, error) {
		if i+1 >= len(args) {
			return "", errors.NewValidationError(flag, "missing value", nil)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-F":
			v, err := next(i, "-F")
			if err != nil {
				return nil, err
			}
			folds, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.NewValidationError("-F", "not an integer", v)
			}
			opts = append(opts, WithFolds(folds))
			i++
		case "-N":
			v, err := next(i, "-N")
			if err != nil {
				return nil, err
			}
			minNo, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, errors.NewValidationError("-N", "not a number", v)
			}
			opts = append(opts, WithMinNo(minNo))
			i++
		case "-O":
			v, err := next(i, "-O")
			if err != nil {
				return nil, err
			}
			runs, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.NewValidationError("-O", "not an integer", v)
			}
			opts = append(opts, WithOptimizations(runs))
			i++
		case "-S":
			v, err := next(i, "-S")
			if err != nil {
				return nil, err
			}
			seed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, errors.NewValidationError("-S", "not an integer", v)
			}
			opts = append(opts, WithSeed(seed))
			i++
		case "-E":
			opts = append(opts, WithCheckErrorRate(false))
		case "-D":
			opts = append(opts, WithDebug(true))
		case "-s":
			v, err := next(i, "-s")
			if err != nil {
				return nil, err
			}
			action, err := parseUncovAction(v)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithUncovAction(action))
			i++
		case "-p":
			v, err := next(i, "-p")
			if err != nil {
				return nil, err
			}
			tnorm, err := parseTNorm(v)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithTNorm(tnorm))
			i++
		default:
			return nil, errors.NewValidationError("options",
				"unknown option", args[i])
		}
	}
	return opts, nil
}

func parseUncovAction(v string) (UncovAction, error) {
	switch v {
	case "0", "STRETCH":
		return UncovActionStretch, nil
	case "1", "APRIORI":
		return UncovActionApriori, nil
	case "2", "REJECT":
		return UncovActionReject, nil
	}
	return 0, errors.NewValidationError("-s", "must be STRETCH, APRIORI, REJECT or 0..2", v)
}

func parseTNorm(v string) (TNorm, error) {
	switch v {
	case "0", "PROD":
		return TNormProduct, nil
	case "1", "MIN":
		return TNormMin, nil
	}
	return 0, errors.NewValidationError("-p", "must be PROD, MIN or 0..1", v)
}

// GetOptions renders the current configuration back into the flag form
// ParseOptions accepts.
func (f *FURIA) GetOptions() []string {
	options := []string{
		"-F", strconv.Itoa(f.folds),
		"-N", fmt.Sprintf("%g", f.minNo),
		"-O", strconv.Itoa(f.optimizations),
		"-S", strconv.FormatInt(f.seed, 10),
		"-p", strconv.Itoa(int(f.tNorm)),
		"-s", strconv.Itoa(int(f.uncovAction)),
	}
	if f.debug {
		options = append(options, "-D")
	}
	if !f.checkErr {
		options = append(options, "-E")
	}
	return options
}

// validateOptions rejects illegal configurations before training.
func (f *FURIA) validateOptions() error {
	if f.folds < 2 {
		return errors.NewValidationError("folds", "needs at least a growing and a pruning fold", f.folds)
	}
	if !(f.minNo > 0) {
		return errors.NewValidationError("minNo", "must be positive", f.minNo)
	}
	if f.optimizations < 0 {
		return errors.NewValidationError("optimizations", "must not be negative", f.optimizations)
	}
	switch f.uncovAction {
	case UncovActionStretch, UncovActionApriori, UncovActionReject:
	default:
		return errors.NewValidationError("uncovAction", "unknown action", int(f.uncovAction))
	}
	switch f.tNorm {
	case TNormProduct, TNormMin:
	default:
		return errors.NewValidationError("tNorm", "unknown T-norm", int(f.tNorm))
	}
	return nil
}
