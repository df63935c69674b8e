package printers_test

import (
	"errors"
	"syscall"
	"time"

	"github.com/tcpprobe/tcpprobe/statistics"
)

var probeTime = time.Date(2024, 3, 9, 14, 5, 6, 789_000_000, time.UTC)

func newStats() *statistics.Statistics {
	s := statistics.New("127.0.0.1", 8080, time.Second)
	s.Frequency = 1
	return s
}

func successOutcome(seq uint, rtt float64) statistics.Outcome {
	return statistics.Outcome{Seq: seq, Success: true, RTT: rtt, Time: probeTime}
}

func refusedOutcome(seq uint, rtt float64) statistics.Outcome {
	return statistics.Outcome{
		Seq:   seq,
		RTT:   rtt,
		Cause: statistics.CauseRefused,
		Err:   syscall.ECONNREFUSED,
		Time:  probeTime,
	}
}

func timeoutOutcome(seq uint, rtt float64) statistics.Outcome {
	return statistics.Outcome{
		Seq:   seq,
		RTT:   rtt,
		Cause: statistics.CauseTimeout,
		Err:   errors.New("i/o timeout"),
		Time:  probeTime,
	}
}

// finishedSummary returns the summary of a 3 second run with two
// successes (10ms, 20ms) and one refused probe.
func finishedSummary() statistics.Summary {
	s := newStats()
	s.StartTime = probeTime
	s.Record(successOutcome(1, 10))
	s.Record(successOutcome(2, 20))
	s.Record(refusedOutcome(3, 0.5))
	s.EndTime = probeTime.Add(3 * time.Second)
	return s.Summarize()
}

// failedSummary returns the summary of a run where nothing connected.
func failedSummary() statistics.Summary {
	s := newStats()
	s.StartTime = probeTime
	s.Record(refusedOutcome(1, 0.2))
	s.Record(refusedOutcome(2, 0.2))
	s.EndTime = probeTime.Add(2 * time.Second)
	return s.Summarize()
}
