package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync/atomic"
)

// trusted holds the proxy networks whose X-Forwarded-For entries are
// believed. Empty means forwarding headers are ignored.
var trusted atomic.Pointer[[]netip.Prefix]

// TrustProxies replaces the trusted proxy list. Entries are IPs or CIDRs;
// an empty list makes ClientIP use the socket peer only.
func TrustProxies(entries []string) error {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return fmt.Errorf("middleware: trusted proxy %q: %w", e, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(e)
		if err != nil {
			return fmt.Errorf("middleware: trusted proxy %q: %w", e, err)
		}
		a = a.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(a, a.BitLen()))
	}
	trusted.Store(&prefixes)
	return nil
}

func isTrusted(addr netip.Addr) bool {
	list := trusted.Load()
	if list == nil {
		return false
	}
	for _, p := range *list {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the address requests are attributed to. X-Forwarded-For
// is consulted only when the socket peer is a trusted proxy, and then read
// right to left up to the first hop that is not itself trusted.
func ClientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil || !isTrusted(addr.Unmap()) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		a, err := netip.ParseAddr(hop)
		if err != nil {
			break
		}
		if !isTrusted(a.Unmap()) {
			return a.Unmap().String()
		}
	}
	return peer
}
