package pingers

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/tcpprobe/tcpprobe/statistics"
)

// Classify maps a Ping error to a failure cause. A nil error is CauseNone.
func Classify(err error) statistics.Cause {
	if err == nil {
		return statistics.CauseNone
	}

	if errors.Is(err, context.Canceled) {
		return statistics.CauseCanceled
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return statistics.CauseTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return statistics.CauseTimeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED, syscall.ECONNRESET:
			return statistics.CauseRefused
		case syscall.ENETUNREACH, syscall.EHOSTUNREACH:
			return statistics.CauseUnreachable
		case syscall.ETIMEDOUT:
			return statistics.CauseTimeout
		}
	}

	return statistics.CauseOther
}

// Underlying strips the dial context from err and returns the OS-level
// error, e.g. "connection refused" instead of
// "dial tcp 127.0.0.1:9: connect: connection refused".
func Underlying(err error) error {
	if err == nil {
		return nil
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Err != nil {
		return opErr.Err
	}

	return err
}
