package statistics

import (
	"fmt"
	"time"
)

// Cause classifies why a probe failed.
type Cause uint8

const (
	CauseNone Cause = iota
	CauseTimeout
	CauseRefused
	CauseUnreachable
	CauseOther
	// CauseCanceled marks an attempt cut short by the session ending.
	// Such attempts are dropped, never recorded.
	CauseCanceled
)

func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseTimeout:
		return "timeout"
	case CauseRefused:
		return "connection refused"
	case CauseUnreachable:
		return "network unreachable"
	case CauseCanceled:
		return "canceled"
	default:
		return "error"
	}
}

// Outcome is the result of a single probe.
type Outcome struct {
	Seq     uint      // 1-based sequence number
	Success bool      // handshake completed
	RTT     float64   // elapsed milliseconds, recorded for failures too
	Cause   Cause     // CauseNone on success
	Err     error     // underlying error on failure
	Time    time.Time // when the attempt started
}

// RTTStr returns the elapsed time with 3 decimals.
func (o Outcome) RTTStr() string {
	return fmt.Sprintf("%.3f", o.RTT)
}

// Reason describes a failure using the OS-level error string, falling
// back to the cause name. It is empty on success.
func (o Outcome) Reason() string {
	if o.Success {
		return ""
	}

	if o.Err == nil {
		return o.Cause.String()
	}

	return o.Err.Error()
}

// TimeFormatted returns the attempt start time using TimeFormat.
func (o Outcome) TimeFormatted() string {
	return o.Time.Format(TimeFormat)
}
