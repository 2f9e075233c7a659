package pipeline

import (
	"runtime"
	"strings"

	"frontmatter-transform/internal/aggregate"
	"frontmatter-transform/internal/common"
)

// Mode selects how RunBatch schedules documents.
type Mode int

const (
	_ Mode = iota // skip zero value

	// ModeParallel processes documents concurrently, up to Concurrency at a
	// time. Results keep input order.
	ModeParallel
	// ModeSequential processes documents one after the other.
	ModeSequential
)

func (m Mode) String() string {
	switch m {
	case ModeParallel:
		return "parallel"
	case ModeSequential:
		return "sequential"
	default:
		return common.UnknownStr
	}
}

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeParallel || m == ModeSequential
}

// ParseMode parses "parallel" or "sequential".
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "parallel":
		return ModeParallel, true
	case "sequential":
		return ModeSequential, true
	default:
		return 0, false
	}
}

// Options configures a Processor.
type Options struct {
	Mode Mode
	// Concurrency bounds parallel work; <= 0 means GOMAXPROCS.
	Concurrency int
	// ContinueOnError records failed documents instead of aborting the batch.
	ContinueOnError bool
	// Strategy is used when documents are aggregated.
	Strategy aggregate.Strategy
}

// DefaultOptions returns parallel processing that aborts on the first
// failure and aggregates with replace_values.
func DefaultOptions() Options {
	return Options{
		Mode:     ModeParallel,
		Strategy: aggregate.ReplaceValues,
	}
}

func (o Options) withDefaults() Options {
	if o.Mode == 0 {
		o.Mode = ModeParallel
	}

	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}

	if o.Strategy == 0 {
		o.Strategy = aggregate.ReplaceValues
	}

	return o
}
