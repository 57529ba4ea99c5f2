package sortlib

import "slices"

// MergeOption is a functional option for configuring a Merger.
type MergeOption func(*mergeConfig)

// FileMergeOption is a functional option for configuring a FileMerger.
type FileMergeOption func(*fileMergeConfig)

type mergeConfig struct {
	askForRefills bool
	boundaries    []Key // nil when batches are not aligned to key ranges
}

func defaultMergeConfig() *mergeConfig {
	return &mergeConfig{}
}

// WithRefills makes the merger pause whenever a partition runs dry and
// wait for Refill instead of dropping that partition.
func WithRefills() MergeOption {
	return func(c *mergeConfig) {
		c.askForRefills = true
	}
}

// WithBoundaries aligns batches to key ranges: a single GetBatch never
// returns records from two different ranges.
// The slice is copied, so the caller can reuse it after this call. A nil
// slice disables alignment; an empty one is rejected by NewMerger.
func WithBoundaries(boundaries []Key) MergeOption {
	return func(c *mergeConfig) {
		c.boundaries = slices.Clone(boundaries)
	}
}

type fileMergeConfig struct {
	preallocate bool
	sync        bool
}

func defaultFileMergeConfig() *fileMergeConfig {
	return &fileMergeConfig{
		preallocate: true,
	}
}

// WithPreallocate controls whether the output file's final size is
// reserved before merging starts. Enabled by default.
func WithPreallocate(enabled bool) FileMergeOption {
	return func(c *fileMergeConfig) {
		c.preallocate = enabled
	}
}

// WithSync makes Run fsync the output file before closing it.
func WithSync(enabled bool) FileMergeOption {
	return func(c *fileMergeConfig) {
		c.sync = enabled
	}
}
