// Package network provides network-related utilities.
package network

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Resolver finds the client address of a request. X-Forwarded-For and
// X-Real-IP are only believed when the connecting peer is a trusted proxy;
// anyone else could put any address there. A nil or empty Resolver always
// answers with the peer address.
type Resolver struct {
	trusted []netip.Prefix
}

// NewResolver builds a Resolver trusting the given proxies, each an IP
// ("10.0.0.5") or a CIDR ("10.0.0.0/8").
func NewResolver(proxies []string) (*Resolver, error) {
	res := &Resolver{}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "/") {
			prefix, err := netip.ParsePrefix(p)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", p, err)
			}
			res.trusted = append(res.trusted, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(p)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", p, err)
		}
		addr = addr.Unmap()
		res.trusted = append(res.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return res, nil
}

// ClientIP returns a bare address (no port, no brackets) suitable as a
// rate-limit key. Behind trusted proxies it is the nearest X-Forwarded-For
// entry, read right to left, that is not itself a trusted proxy.
func (res *Resolver) ClientIP(r *http.Request) string {
	peer := parseIP(r.RemoteAddr)
	if peer == "" {
		return r.RemoteAddr
	}
	if !res.isTrusted(peer) {
		return peer
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		nearest := peer
		for i := len(hops) - 1; i >= 0; i-- {
			ip := parseIP(hops[i])
			if ip == "" {
				break
			}
			nearest = ip
			if !res.isTrusted(ip) {
				return ip
			}
		}
		return nearest
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return peer
}

func (res *Resolver) isTrusted(ip string) bool {
	if res == nil || len(res.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range res.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// parseIP accepts "ip", "ip:port", "[ipv6]" or "[ipv6]:port" and returns the
// canonical address, or "" when s holds no valid IP.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
