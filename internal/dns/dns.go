// Package dns resolves the probe target once, before probing starts.
package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"
)

// Timeout is the accepted duration when doing hostname resolution
const Timeout = 2 * time.Second

var ErrNoAddress = errors.New("no address found")

// Resolver looks up the addresses of a host. *net.Resolver implements it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

var _ Resolver = (*net.Resolver)(nil)

// selectResolvedIP returns the first IPv4 address, or the first address
// when there is none.
func selectResolvedIP(ipAddrs []netip.Addr) netip.Addr {
	for _, ip := range ipAddrs {
		// static builds (CGO=0) return IPv4-mapped IPv6 addresses
		if ip.Is4() || ip.Is4In6() {
			return ip.Unmap()
		}
	}

	return ipAddrs[0]
}

// ResolveHostname returns the single address every probe of the session
// dials. Literal addresses are returned without a lookup. A nil r uses
// net.DefaultResolver.
func ResolveHostname(ctx context.Context, r Resolver, hostname string) (netip.Addr, error) {
	if ip, err := netip.ParseAddr(hostname); err == nil {
		return ip.Unmap(), nil
	}

	if r == nil {
		r = net.DefaultResolver
	}

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	ipAddrs, err := r.LookupNetIP(ctx, "ip", hostname)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("resolve %s in %s: %w", hostname, Timeout, err)
	}

	if len(ipAddrs) == 0 {
		return netip.Addr{}, fmt.Errorf("resolve %s: %w", hostname, ErrNoAddress)
	}

	return selectResolvedIP(ipAddrs), nil
}
