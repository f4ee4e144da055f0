package log

// Standard attribute keys. Using these instead of ad-hoc strings keeps
// the records of a training run filterable: every component tags the
// same concept with the same key.

// Model and operation context.
const (
	// ModelNameKey identifies the model type, e.g. "FURIA".
	ModelNameKey = "model.name"

	// ComponentKey identifies the package or component emitting the
	// record, e.g. "rules.furia". GetLoggerWithName sets it.
	ComponentKey = "ml.component"

	// OperationKey names the operation being performed. Values:
	// OperationFit, OperationPredict.
	OperationKey = "ml.operation"

	// PhaseKey names the phase within an operation. Values:
	// PhaseBuilding, PhaseOptimization, PhaseInference.
	PhaseKey = "ml.phase"
)

// Standard OperationKey values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
)

// Standard PhaseKey values, following the stages of the rule learner.
const (
	PhaseBuilding     = "building"
	PhaseOptimization = "optimization"
	PhaseInference    = "inference"
)

// Data shape.
const (
	// SamplesKey is the number of training or prediction instances.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of non-class attributes.
	FeaturesKey = "data.features"

	// ClassesKey is the number of class values.
	ClassesKey = "data.classes"
)

// Learner state and configuration.
const (
	// RulesKey is the number of rules in a ruleset.
	RulesKey = "model.rules"

	// ConditionsKey is the attribute-condition total of the training
	// data, the basis of the theory description length.
	ConditionsKey = "learner.conditions"

	// FoldsKey is the reduced-error-pruning fold count.
	FoldsKey = "learner.folds"

	// SeedKey is the stratification seed.
	SeedKey = "learner.seed"
)

// Outcome and error context.
const (
	// DurationMsKey is the elapsed time of an operation in
	// milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey is a classification accuracy in [0, 1].
	AccuracyKey = "perf.accuracy"

	// StacktraceKey carries the stack trace attached to a logged
	// error, when the error value has one.
	StacktraceKey = "error.stacktrace"
)
