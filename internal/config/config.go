// Package config holds the small set of tunables shared across the
// lexer, compiler, VM and module loader.
package config

const (
	// SourceFileExt is the canonical source extension used by the
	// default loader when normalising module names.
	SourceFileExt = ".rol"
)

// SourceFileExtensions lists every extension the default loader will
// probe for, in priority order.
var SourceFileExtensions = []string{SourceFileExt, ".rols"}

const (
	// GCSeedThreshold is the live-byte threshold that triggers the
	// very first collection cycle, before any cycle has established a
	// baseline (§4.1).
	GCSeedThreshold = 1 << 20 // 1 MiB

	// GCGrowthFactor: a cycle runs again once live bytes exceed this
	// multiple of the byte count recorded at the end of the previous
	// cycle.
	GCGrowthFactor = 8
)

const (
	// InitialStackSize is the default operand-stack capacity for a
	// fresh activation.
	InitialStackSize = 256

	// StackGrowthIncrement is how many slots are added when an
	// activation's operand stack needs to grow.
	StackGrowthIncrement = 256

	// MaxFrameDepth bounds call nesting to turn runaway recursion into
	// a reported error instead of a host process crash.
	MaxFrameDepth = 4096

	// IntPoolLow/IntPoolHigh bound the canonical small-integer pool
	// (§3 invariants).
	IntPoolLow  = -256
	IntPoolHigh = 256
)
