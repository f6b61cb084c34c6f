package gc

// Flags holds the marker's tunable knobs. Field names keep a plain,
// stable vocabulary so they read the same in config files, traces and
// code.
type Flags struct {
	IncrementalMarking                               bool `yaml:"incremental_marking"`
	ConcurrentMarking                                bool `yaml:"concurrent_marking"`
	ConcurrentSweeping                                bool `yaml:"concurrent_sweeping"`
	IncrementalMarkingWrappers                       bool `yaml:"incremental_marking_wrappers"`
	BlackAllocation                                   bool `yaml:"black_allocation"`
	NeverCompact                                      bool `yaml:"never_compact"`
	RetainMapsForNGC                                  int  `yaml:"retain_maps_for_n_gc"`
	MaxIncrementalMarkingFinalizationRounds           int  `yaml:"max_incremental_marking_finalization_rounds"`
	MinProgressDuringIncrementalMarkingFinalization   int  `yaml:"min_progress_during_incremental_marking_finalization"`
	TraceIncrementalMarking                           bool `yaml:"trace_incremental_marking"`
	VerifyHeap                                        bool `yaml:"verify_heap"`
	UseMarkingProgressBar                             bool `yaml:"use_marking_progress_bar"`
}

// DefaultFlags returns the flag set a fresh heap starts with, matching
// the defaults implied by the original's behavior: incremental and
// concurrent marking on, compaction allowed, maps retained for 2 GCs.
func DefaultFlags() Flags {
	return Flags{
		IncrementalMarking:                             true,
		ConcurrentMarking:                               true,
		ConcurrentSweeping:                              true,
		IncrementalMarkingWrappers:                      true,
		BlackAllocation:                                 true,
		NeverCompact:                                    false,
		RetainMapsForNGC:                                2,
		MaxIncrementalMarkingFinalizationRounds:         3,
		MinProgressDuringIncrementalMarkingFinalization: 32,
		TraceIncrementalMarking:                         false,
		VerifyHeap:                                      false,
		UseMarkingProgressBar:                           true,
	}
}
