package photons3d

// Units: millimetres, nanoseconds, nanometres.
const (
	SpeedOfLight      = 299.792458 // mm/ns
	MaxSteps          = 1000       // default per-photon step cap
	MaxBatchSize      = 1 << 18    // default photons per batch
	StepsPerRound     = 32         // steps a lane advances each photon between compaction barriers
	MaxDistance       = 1e9        // default bound for boundary queries
	BVHMaxLeafSize    = 4
	BVHBins           = 12
	NumShards         = 64 // aggregator shards, power of two
	IntersectEpsilon  = 1e-7
	DegenerateArea    = 1e-14
	UnitTolerance     = 1e-9 // allowed |1-|v|| and |dir·pol| after an update
	DefaultWavelength = 420.0
	// hot-loop constants
	epsParallel = 1e-18
	minNormSq   = 1e-24
)
