package backfill

import "fmt"

// Result contains statistics from a backfill run.
type Result struct {
	// Embedded counts messages that received a real embedding.
	Embedded int

	// Sentinels counts messages with no semantic signal that received the
	// zero-vector sentinel.
	Sentinels int

	// Skipped counts messages already vectorized by a concurrent run or an
	// interactive save.
	Skipped int

	// Failed counts messages whose computation or save failed; they remain
	// missing and will be retried by the next run.
	Failed int
}

// Processed returns how many messages this run settled.
func (r *Result) Processed() int {
	return r.Embedded + r.Sentinels + r.Skipped
}

// Summary returns a human-readable summary of the backfill result.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"Backfill complete: %d embedded, %d sentinels (no signal), %d skipped (already vectorized), %d failed",
		r.Embedded, r.Sentinels, r.Skipped, r.Failed,
	)
}
