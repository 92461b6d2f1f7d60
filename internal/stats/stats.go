package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/zhivkoto/uho-indexing/internal/metrics"
)

// DefaultReportThreshold matches the cadence the downstream consumer
// expects: one progress line per 100k transactions.
const DefaultReportThreshold = 100_000

type progressSnapshot struct {
	Processed   uint64 `json:"processed"`
	Matched     uint64 `json:"matched"`
	CurrentSlot uint64 `json:"currentSlot"`
}

// Tracker holds the process-wide progress counters. All counters are
// lock-free atomics; any number of workers may update them concurrently
// without losing increments. lastSlot is last-write-wins on purpose: under
// contention consecutive reports may show a slot from a worker that is
// behind another, which is acceptable for telemetry.
type Tracker struct {
	processed atomic.Uint64
	matched   atomic.Uint64
	lastSlot  atomic.Uint64

	threshold uint64
	out       io.Writer
}

// NewTracker creates a tracker reporting to out (normally stderr) every
// threshold processed records. A zero threshold falls back to the default.
func NewTracker(threshold uint64, out io.Writer) *Tracker {
	if threshold == 0 {
		threshold = DefaultReportThreshold
	}
	return &Tracker{
		threshold: threshold,
		out:       out,
	}
}

// RecordSeen counts one processed record and stores its slot. Returns the
// post-increment processed count for the caller to pass to MaybeReport.
func (t *Tracker) RecordSeen(slot uint64) uint64 {
	t.lastSlot.Store(slot)
	metrics.TransactionsProcessed.Inc()
	metrics.CurrentSlot.Set(float64(slot))
	return t.processed.Add(1)
}

// RecordMatched counts one record that passed all filter stages.
func (t *Tracker) RecordMatched() {
	t.matched.Add(1)
	metrics.TransactionsMatched.Inc()
}

// MaybeReport writes one progress line when the processed count sits on a
// threshold multiple. Reporting is best-effort: concurrent workers may
// observe the same multiple (duplicate line) or race past it (skipped
// line), and neither is treated as an error.
func (t *Tracker) MaybeReport(processed uint64) {
	if processed == 0 || processed%t.threshold != 0 {
		return
	}

	snapshot := progressSnapshot{
		Processed:   processed,
		Matched:     t.matched.Load(),
		CurrentSlot: t.lastSlot.Load(),
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Error().Err(err).Msg("Failed to serialize progress snapshot")
		return
	}
	// single Write keeps the line whole relative to other stderr writers
	fmt.Fprintf(t.out, "PROGRESS:%s\n", data)
}

// Done writes the terminal line once the source reports the range
// exhausted.
func (t *Tracker) Done() {
	fmt.Fprintf(t.out, "DONE:%s\n", `{"status":"completed"}`)
}

func (t *Tracker) Processed() uint64 {
	return t.processed.Load()
}

func (t *Tracker) Matched() uint64 {
	return t.matched.Load()
}

func (t *Tracker) LastSlot() uint64 {
	return t.lastSlot.Load()
}
