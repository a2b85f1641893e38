package driver

import (
	"log/slog"
	"slices"
	"time"
)

// Summary holds statistics over the step durations of a run.
type Summary struct {
	Count  int
	Mean   time.Duration
	Median time.Duration
	Min    time.Duration
	Max    time.Duration

	// P95 and P99 are only set when HasPercentiles is true.
	P95            time.Duration
	P99            time.Duration
	HasPercentiles bool
}

// Summary computes statistics over r.StepDurations.
func (r Result) Summary() Summary {
	if len(r.StepDurations) == 0 {
		return Summary{}
	}

	durations := slices.Clone(r.StepDurations)
	slices.Sort(durations)

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	s := Summary{
		Count: len(durations),
		// Convert len to time.Duration for division to get mean duration
		Mean:   total / time.Duration(len(durations)),
		Median: durations[len(durations)/2],
		Min:    durations[0],
		Max:    durations[len(durations)-1],
	}

	// Percentiles require sufficient samples to be meaningful (1% of 100 = 1 sample)
	if len(durations) >= 100 {
		s.P95 = durations[int(float64(len(durations)-1)*0.95)]
		s.P99 = durations[int(float64(len(durations)-1)*0.99)]
		s.HasPercentiles = true
	}

	return s
}

// LogSummary logs the run totals and step duration statistics.
func (r Result) LogSummary(logger *slog.Logger) {
	s := r.Summary()
	if s.Count == 0 {
		return
	}

	args := []any{
		"strategy", r.Strategy,
		"count_operations", r.Count,
		"count_steps", s.Count,
		"poll_time_microseconds", r.PollTime.Microseconds(),
		"mean_microseconds", s.Mean.Microseconds(),
		"median_microseconds", s.Median.Microseconds(),
		"min_microseconds", s.Min.Microseconds(),
		"max_microseconds", s.Max.Microseconds(),
	}

	if s.HasPercentiles {
		args = append(args,
			"p95_microseconds", s.P95.Microseconds(),
			"p99_microseconds", s.P99.Microseconds(),
		)
	}

	logger.Info("step duration summary", args...)
}
