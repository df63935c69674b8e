// Package tcpprobe measures TCP-connect reachability and latency of a
// single target at a fixed probe frequency.
package tcpprobe

import (
	"context"

	"github.com/tcpprobe/tcpprobe/pingers"
)

var (
	// List of compile time checks for all pingers
	_ Pinger = (*pingers.TCPPinger)(nil)
)

// Pinger performs one connection attempt per Ping call. Ping must return
// within its own timeout and release every resource it acquired.
type Pinger interface {
	Ping(ctx context.Context) error
	Host() string
	Port() uint16
}
