// Package pingers implements protocol-specific ping functionality for network connectivity testing.
package pingers

import (
	"context"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/tcpprobe/tcpprobe/option"
)

// TCPPinger performs one TCP three-way handshake per Ping against a
// single, already resolved address.
type TCPPinger struct {
	dialer   *net.Dialer
	ip       netip.Addr
	hostname string
	port     uint16
	timeout  time.Duration
}

const tcp = "tcp"

// DefaultTimeout bounds a connection attempt when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Host implements Pinger. It is the hostname given with WithHostname,
// or the address itself.
func (t *TCPPinger) Host() string {
	if t.hostname != "" {
		return t.hostname
	}
	return t.ip.String()
}

// IP returns the address every probe dials.
func (t *TCPPinger) IP() netip.Addr {
	return t.ip
}

// Port implements Pinger.
func (t *TCPPinger) Port() uint16 {
	return t.port
}

// Timeout returns the bound applied to each connection attempt.
func (t *TCPPinger) Timeout() time.Duration {
	return t.timeout
}

func (t *TCPPinger) address() string {
	return net.JoinHostPort(t.ip.String(), strconv.Itoa(int(t.port)))
}

// Ping implements Pinger. It returns nil once the handshake completes and
// closes the connection right away without exchanging data. The attempt is
// abandoned when the timeout expires or ctx is done.
func (t *TCPPinger) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	conn, err := t.dialer.DialContext(ctx, tcp, t.address())
	if err != nil {
		return err
	}

	return conn.Close()
}

type TCPOptions = option.Option[TCPPinger]

// NewTCPPinger creates a new TCP pinger for the specified IP address and port with optional configuration.
func NewTCPPinger(ip netip.Addr, port uint16, opts ...TCPOptions) *TCPPinger {
	t := &TCPPinger{
		ip:      ip,
		port:    port,
		timeout: DefaultTimeout,
		dialer:  &net.Dialer{FallbackDelay: -1},
	}

	option.Apply(t, opts...)

	return t
}

// WithDialer configures a custom net.Dialer for TCP connections.
func WithDialer(dialer *net.Dialer) TCPOptions {
	return func(t *TCPPinger) {
		if dialer != nil {
			t.dialer = dialer
		}
	}
}

// WithHostname sets the name displayed for the target. It is never
// resolved by the pinger.
func WithHostname(hostname string) TCPOptions {
	return func(t *TCPPinger) {
		t.hostname = hostname
	}
}

// WithTimeout configures the connection timeout for TCP dial operations.
func WithTimeout(timeout time.Duration) TCPOptions {
	return func(t *TCPPinger) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}
