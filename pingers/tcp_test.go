package pingers_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcpprobe/tcpprobe/pingers"
	"github.com/tcpprobe/tcpprobe/statistics"
)

// startTestServer accepts and immediately closes every connection.
func startTestServer(t *testing.T) (*net.TCPAddr, func()) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "start test server")

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	return listener.Addr().(*net.TCPAddr), func() { listener.Close() }
}

// closedPort returns a loopback port nothing listens on.
func closedPort(t *testing.T) uint16 {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := uint16(listener.Addr().(*net.TCPAddr).Port)
	listener.Close()

	return port
}

func TestNewTCPPinger(t *testing.T) {
	pinger := pingers.NewTCPPinger(netip.MustParseAddr("192.168.1.1"), 80)

	require.NotNil(t, pinger)
	assert.Equal(t, "192.168.1.1", pinger.Host())
	assert.Equal(t, netip.MustParseAddr("192.168.1.1"), pinger.IP())
	assert.Equal(t, uint16(80), pinger.Port())
	assert.Equal(t, pingers.DefaultTimeout, pinger.Timeout())
}

func TestNewTCPPinger_WithTimeout(t *testing.T) {
	pinger := pingers.NewTCPPinger(netip.MustParseAddr("10.0.0.1"), 443, pingers.WithTimeout(2*time.Second))
	assert.Equal(t, 2*time.Second, pinger.Timeout())

	// non-positive timeouts keep the default
	pinger = pingers.NewTCPPinger(netip.MustParseAddr("10.0.0.1"), 443, pingers.WithTimeout(0))
	assert.Equal(t, pingers.DefaultTimeout, pinger.Timeout())
}

func TestNewTCPPinger_MultipleOptions(t *testing.T) {
	dialer := &net.Dialer{KeepAlive: -1}

	pinger := pingers.NewTCPPinger(
		netip.MustParseAddr("::1"),
		8080,
		pingers.WithDialer(dialer),
		pingers.WithDialer(nil),
		pingers.WithTimeout(300*time.Millisecond),
	)

	assert.Equal(t, "::1", pinger.Host())
	assert.Equal(t, uint16(8080), pinger.Port())
	assert.Equal(t, 300*time.Millisecond, pinger.Timeout())
}

func TestNewTCPPinger_WithHostname(t *testing.T) {
	pinger := pingers.NewTCPPinger(netip.MustParseAddr("127.0.0.1"), 443, pingers.WithHostname("example.test"))

	assert.Equal(t, "example.test", pinger.Host())
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), pinger.IP())
}

func TestTCPPinger_Ping_OneConnectionPerPing(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	accepted := make(chan struct{}, 8)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			accepted <- struct{}{}
			conn.Close()
		}
	}()

	port := uint16(listener.Addr().(*net.TCPAddr).Port)
	pinger := pingers.NewTCPPinger(netip.MustParseAddr("127.0.0.1"), port,
		pingers.WithHostname("localhost"),
		pingers.WithTimeout(time.Second))

	for range 3 {
		require.NoError(t, pinger.Ping(t.Context()))
	}

	for range 3 {
		select {
		case <-accepted:
		case <-time.After(time.Second):
			t.Fatal("connection not accepted")
		}
	}

	select {
	case <-accepted:
		t.Fatal("more connections than pings")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTCPPinger_Ping_Localhost(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	pinger := pingers.NewTCPPinger(netip.MustParseAddr("127.0.0.1"), uint16(addr.Port), pingers.WithTimeout(time.Second))

	err := pinger.Ping(t.Context())
	assert.NoError(t, err)
	assert.Equal(t, statistics.CauseNone, pingers.Classify(err))
}

func TestTCPPinger_Ping_Refused(t *testing.T) {
	pinger := pingers.NewTCPPinger(netip.MustParseAddr("127.0.0.1"), closedPort(t), pingers.WithTimeout(time.Second))

	err := pinger.Ping(t.Context())

	require.Error(t, err)
	assert.Equal(t, statistics.CauseRefused, pingers.Classify(err))
	assert.Equal(t, "connection refused", pingers.Underlying(err).Error())
}

func TestTCPPinger_Ping_ContextCancellation(t *testing.T) {
	pinger := pingers.NewTCPPinger(netip.MustParseAddr("192.0.2.1"), 80, pingers.WithTimeout(5*time.Second))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := pinger.Ping(ctx)

	require.Error(t, err)
	assert.Equal(t, statistics.CauseCanceled, pingers.Classify(err))
}

func TestTCPPinger_Ping_TimeoutIsBounded(t *testing.T) {
	// RFC 5737 documentation prefix, never answers
	pinger := pingers.NewTCPPinger(netip.MustParseAddr("192.0.2.1"), 80, pingers.WithTimeout(50*time.Millisecond))

	start := time.Now()
	err := pinger.Ping(t.Context())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, 500*time.Millisecond, "Ping() took %v, expected ~50ms timeout", elapsed)
	// without a route the kernel may reject the attempt before the timer fires
	assert.Contains(t,
		[]statistics.Cause{statistics.CauseTimeout, statistics.CauseUnreachable, statistics.CauseOther},
		pingers.Classify(err))
}

func TestClassify(t *testing.T) {
	dialErr := func(errno syscall.Errno) error {
		return &net.OpError{
			Op:  "dial",
			Net: "tcp",
			Err: &os.SyscallError{Syscall: "connect", Err: errno},
		}
	}

	tests := []struct {
		name string
		err  error
		want statistics.Cause
	}{
		{name: "nil", err: nil, want: statistics.CauseNone},
		{name: "refused", err: dialErr(syscall.ECONNREFUSED), want: statistics.CauseRefused},
		{name: "reset", err: dialErr(syscall.ECONNRESET), want: statistics.CauseRefused},
		{name: "network unreachable", err: dialErr(syscall.ENETUNREACH), want: statistics.CauseUnreachable},
		{name: "host unreachable", err: dialErr(syscall.EHOSTUNREACH), want: statistics.CauseUnreachable},
		{name: "kernel timeout", err: dialErr(syscall.ETIMEDOUT), want: statistics.CauseTimeout},
		{name: "deadline exceeded", err: fmt.Errorf("dial: %w", context.DeadlineExceeded), want: statistics.CauseTimeout},
		{name: "os deadline", err: os.ErrDeadlineExceeded, want: statistics.CauseTimeout},
		{name: "canceled", err: fmt.Errorf("dial: %w", context.Canceled), want: statistics.CauseCanceled},
		{name: "resource exhaustion", err: dialErr(syscall.EMFILE), want: statistics.CauseOther},
		{name: "plain error", err: errors.New("boom"), want: statistics.CauseOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pingers.Classify(tt.err))
		})
	}
}

func TestUnderlying(t *testing.T) {
	assert.Nil(t, pingers.Underlying(nil))

	err := &net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ENETUNREACH}}
	assert.Equal(t, syscall.ENETUNREACH, pingers.Underlying(err))

	plain := errors.New("boom")
	assert.Equal(t, plain, pingers.Underlying(plain))
}
