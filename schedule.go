package tcpprobe

import (
	"math"
	"time"
)

const (
	// DefaultFrequency is used when no or a non-positive frequency is given.
	DefaultFrequency = 1.0

	// MinTimeout and MaxTimeout bound the per-probe timeout derived from the interval.
	MinTimeout = 100 * time.Millisecond
	MaxTimeout = 5 * time.Second

	// timeoutShare is the fraction of the interval a single probe may wait.
	timeoutShare = 0.8
)

// IntervalFromFrequency returns the nominal time between probe starts,
// rounded to whole nanoseconds. Non-positive, NaN or infinite frequencies
// fall back to DefaultFrequency.
func IntervalFromFrequency(freq float64) time.Duration {
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		freq = DefaultFrequency
	}

	ns := math.Round(float64(time.Second) / freq)

	switch {
	case ns < 1:
		return 1
	case ns >= math.MaxInt64:
		return math.MaxInt64
	}

	return time.Duration(ns)
}

// TimeoutFromInterval returns 80% of interval clamped to [MinTimeout, MaxTimeout].
func TimeoutFromInterval(interval time.Duration) time.Duration {
	timeout := time.Duration(timeoutShare * float64(interval))

	return min(max(timeout, MinTimeout), MaxTimeout)
}

// ProbeCount returns how many probes fit in duration seconds at freq,
// round(duration*freq). The result may be 0 for short runs at low
// frequencies. Whether a run is bounded at all is decided by the caller.
func ProbeCount(duration uint, freq float64) uint {
	if duration == 0 {
		return 0
	}

	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		freq = DefaultFrequency
	}

	n := math.Round(float64(duration) * freq)
	if n >= math.MaxUint32 {
		return math.MaxUint32
	}

	return uint(n)
}

// Schedule anchors every fire time to a fixed start instant, so that time
// spent inside an iteration never shifts later iterations.
type Schedule struct {
	Start    time.Time
	Interval time.Duration
}

// NewSchedule creates a schedule starting at start.
func NewSchedule(start time.Time, interval time.Duration) Schedule {
	return Schedule{Start: start, Interval: interval}
}

// FireTime returns the target instant of iteration k (0-based):
// Start + k*Interval, computed in integer nanoseconds.
func (s Schedule) FireTime(k uint) time.Time {
	return s.Start.Add(time.Duration(k) * s.Interval)
}

// Wait returns how long to sleep at now before iteration k. An iteration
// that overran its slot gets zero, never a negative wait.
func (s Schedule) Wait(k uint, now time.Time) time.Duration {
	return max(s.FireTime(k).Sub(now), 0)
}
