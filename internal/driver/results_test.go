package driver

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hackebrot/go-unpark-bench/internal/logging"
)

func TestSummary_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Result{}.Summary())
}

func TestSummary_Small(t *testing.T) {
	r := Result{StepDurations: []time.Duration{30, 10, 20}}

	s := r.Summary()

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, time.Duration(20), s.Mean)
	assert.Equal(t, time.Duration(20), s.Median)
	assert.Equal(t, time.Duration(10), s.Min)
	assert.Equal(t, time.Duration(30), s.Max)
	assert.False(t, s.HasPercentiles)
	assert.Equal(t, []time.Duration{30, 10, 20}, r.StepDurations, "input must not be reordered")
}

func TestSummary_Percentiles(t *testing.T) {
	var r Result
	for i := 1; i <= 100; i++ {
		r.StepDurations = append(r.StepDurations, time.Duration(i)*time.Microsecond)
	}

	s := r.Summary()

	assert.True(t, s.HasPercentiles)
	assert.Equal(t, 95*time.Microsecond, s.P95)
	assert.Equal(t, 99*time.Microsecond, s.P99)
	assert.Equal(t, 51*time.Microsecond, s.Median)
}

func TestLogSummary(t *testing.T) {
	var buf bytes.Buffer
	r := Result{
		Strategy:      StrategyIterating,
		Count:         2,
		PollTime:      3 * time.Millisecond,
		StepDurations: []time.Duration{time.Millisecond, 2 * time.Millisecond},
	}

	r.LogSummary(logging.New(&buf, logging.LevelTrace))

	out := buf.String()
	assert.Contains(t, out, "step duration summary")
	assert.Contains(t, out, "strategy=iterating")
	assert.Contains(t, out, "count_steps=2")
	assert.Contains(t, out, "poll_time_microseconds=3000")
	assert.NotContains(t, out, "p95_microseconds")
}
