// Package statistics aggregates probe outcomes into running counters and
// derives the end-of-run summary.
package statistics

import (
	"fmt"
	"math"
	"slices"
	"time"
)

type protocol string

const (
	TCP protocol = "TCP"
)

// TimeFormat is used for per-probe timestamps and persisted instants.
const TimeFormat = "2006-01-02 15:04:05.000"

// Statistics holds the running state of one probing session.
// It is mutated only through Record, once per iteration.
type Statistics struct {
	// Target information
	Hostname string
	Port     uint16
	Protocol protocol

	// Schedule information
	Frequency float64
	Interval  time.Duration
	Timeout   time.Duration

	// Time tracking
	StartTime             time.Time
	EndTime               time.Time
	LastSuccessfulProbe   time.Time
	LastUnsuccessfulProbe time.Time

	// Probe counters
	Attempted uint
	Succeeded uint

	// Failure causes
	Timeouts      uint
	Refused       uint
	Unreachable   uint
	OtherFailures uint

	// Streaks
	OngoingSuccessfulProbes   uint
	OngoingUnsuccessfulProbes uint
	LongestSuccessStreak      uint
	LongestFailureStreak      uint

	// RTT samples in milliseconds, one per success, in temporal order
	RTT []float64

	// Estimated up and down time: one nominal interval per outcome
	UpTime   time.Duration
	DownTime time.Duration
}

// New creates the statistics for a session against hostname:port probed
// every interval.
func New(hostname string, port uint16, interval time.Duration) *Statistics {
	return &Statistics{
		Hostname: hostname,
		Port:     port,
		Protocol: TCP,
		Interval: interval,
	}
}

// Record folds one outcome into the running counters.
func (s *Statistics) Record(o Outcome) {
	s.Attempted++

	if o.Success {
		s.Succeeded++
		s.RTT = append(s.RTT, o.RTT)
		s.UpTime += s.Interval
		s.LastSuccessfulProbe = o.Time

		s.OngoingUnsuccessfulProbes = 0
		s.OngoingSuccessfulProbes++
		s.LongestSuccessStreak = max(s.LongestSuccessStreak, s.OngoingSuccessfulProbes)
		return
	}

	s.DownTime += s.Interval
	s.LastUnsuccessfulProbe = o.Time

	s.OngoingSuccessfulProbes = 0
	s.OngoingUnsuccessfulProbes++
	s.LongestFailureStreak = max(s.LongestFailureStreak, s.OngoingUnsuccessfulProbes)

	switch o.Cause {
	case CauseTimeout:
		s.Timeouts++
	case CauseRefused:
		s.Refused++
	case CauseUnreachable:
		s.Unreachable++
	default:
		s.OtherFailures++
	}
}

// Failed returns the number of unsuccessful probes.
func (s *Statistics) Failed() uint {
	return s.Attempted - s.Succeeded
}

// PortStr returns the port as a string.
func (s *Statistics) PortStr() string {
	return fmt.Sprint(s.Port)
}

// Target returns "host:port" for display.
func (s *Statistics) Target() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}

// Elapsed returns the wall-clock time of the session. While the session is
// still running it is measured up to now.
func (s *Statistics) Elapsed() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}

	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}

	return s.EndTime.Sub(s.StartTime)
}

// Summarize derives the summary from the current counters. It does not
// modify s and may be called any number of times.
func (s *Statistics) Summarize() Summary {
	return Summary{
		Hostname:              s.Hostname,
		Port:                  s.Port,
		Attempted:             s.Attempted,
		Succeeded:             s.Succeeded,
		PacketLoss:            PacketLoss(s.Attempted, s.Succeeded),
		RTT:                   CalcRTTResult(s.RTT),
		UpTime:                s.UpTime,
		DownTime:              s.DownTime,
		TotalTime:             s.Elapsed(),
		StartTime:             s.StartTime,
		EndTime:               s.EndTime,
		Timeouts:              s.Timeouts,
		Refused:               s.Refused,
		Unreachable:           s.Unreachable,
		OtherFailures:         s.OtherFailures,
		LastSuccessfulProbe:   s.LastSuccessfulProbe,
		LastUnsuccessfulProbe: s.LastUnsuccessfulProbe,
		LongestSuccessStreak:  s.LongestSuccessStreak,
		LongestFailureStreak:  s.LongestFailureStreak,
	}
}

// Summary is the derived, read-only view printed at the end of a session.
type Summary struct {
	Hostname string
	Port     uint16

	Attempted  uint
	Succeeded  uint
	PacketLoss float64 // percent, 0..100
	RTT        RttResult

	UpTime    time.Duration
	DownTime  time.Duration
	TotalTime time.Duration // measured wall clock, independent of the schedule

	StartTime time.Time
	EndTime   time.Time

	Timeouts      uint
	Refused       uint
	Unreachable   uint
	OtherFailures uint

	LastSuccessfulProbe   time.Time
	LastUnsuccessfulProbe time.Time
	LongestSuccessStreak  uint
	LongestFailureStreak  uint
}

// Failed returns the number of unsuccessful probes.
func (s Summary) Failed() uint {
	return s.Attempted - s.Succeeded
}

// TotalMilliseconds returns the measured session time in milliseconds.
func (s Summary) TotalMilliseconds() float64 {
	return NanoToMillisecond(s.TotalTime.Nanoseconds())
}

// RttResult holds statistics for round-trip times (RTT) results.
type RttResult struct {
	Min           float64 // Minimum RTT value.
	Max           float64 // Maximum RTT value.
	Average       float64 // Average RTT value.
	MeanDeviation float64 // Mean absolute deviation about Average.
	HasResults    bool    // Flag indicating whether RTT results are available.
}

// CalcRTTResult calculates min, avg, max and the mean absolute deviation
// of the given samples. An empty input yields a zero result with
// HasResults unset.
func CalcRTTResult(samples []float64) RttResult {
	var result RttResult

	n := len(samples)
	if n == 0 {
		return result
	}

	var sum float64
	for _, v := range samples {
		sum += v
	}

	result.Min = slices.Min(samples)
	result.Max = slices.Max(samples)
	result.Average = sum / float64(n)

	var dev float64
	for _, v := range samples {
		dev += math.Abs(v - result.Average)
	}

	result.MeanDeviation = dev / float64(n)
	result.HasResults = true

	return result
}

// PacketLoss returns the percentage of lost probes, 0 when nothing was sent.
func PacketLoss(attempted, succeeded uint) float64 {
	if attempted == 0 {
		return 0
	}

	return 100 * float64(attempted-succeeded) / float64(attempted)
}

// DurationToString creates a human-readable string for a given duration
func DurationToString(duration time.Duration) string {
	hours := math.Floor(duration.Hours())
	if hours > 0 {
		duration -= time.Duration(hours * float64(time.Hour))
	}

	minutes := math.Floor(duration.Minutes())
	if minutes > 0 {
		duration -= time.Duration(minutes * float64(time.Minute))
	}

	seconds := duration.Seconds()

	switch {
	case hours >= 2:
		return fmt.Sprintf("%.0f hours %.0f minutes %.0f seconds", hours, minutes, seconds)
	case hours == 1 && minutes == 0 && seconds == 0:
		return fmt.Sprintf("%.0f hour", hours)
	case hours == 1:
		return fmt.Sprintf("%.0f hour %.0f minutes %.0f seconds", hours, minutes, seconds)

	case minutes >= 2:
		return fmt.Sprintf("%.0f minutes %.0f seconds", minutes, seconds)
	case minutes == 1 && seconds == 0:
		return fmt.Sprintf("%.0f minute", minutes)
	case minutes == 1:
		return fmt.Sprintf("%.0f minute %.0f seconds", minutes, seconds)

	case seconds == 0 || seconds == 1 || seconds >= 1 && seconds < 1.1:
		return fmt.Sprintf("%.0f second", seconds)
	case seconds < 1:
		return fmt.Sprintf("%.1f seconds", seconds)

	default:
		return fmt.Sprintf("%.0f seconds", seconds)
	}
}

// NanoToMillisecond returns an amount of milliseconds from nanoseconds.
// Using duration.Milliseconds() is not an option, because it drops
// decimal points, returning an int.
func NanoToMillisecond(nano int64) float64 {
	return float64(nano) / float64(time.Millisecond)
}
