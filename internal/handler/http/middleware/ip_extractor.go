// Package middleware holds HTTP middleware that is independent of the
// application routes: client IP extraction and CORS.
package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPExtractor returns the client IP of a request.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor uses the TCP peer address. It cannot be spoofed and is
// the right choice when no reverse proxy sits in front of the server.
type RemoteAddrExtractor struct{}

// ExtractIP implements IPExtractor.
func (RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return hostOf(r.RemoteAddr)
}

// TrustedProxyExtractor reads X-Forwarded-For and X-Real-IP, but only when
// the peer is one of the trusted proxies. Other peers fall back to RemoteAddr.
type TrustedProxyExtractor struct {
	Proxies []netip.Prefix
}

// ExtractIP implements IPExtractor.
func (e TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	peer, err := hostOf(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	if !e.trusted(peer) {
		return peer, nil
	}

	// 右端から辿り、信頼できないプロキシが現れた地点をクライアントとみなす
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			addr, err := netip.ParseAddr(hop)
			if err != nil {
				break
			}
			if i == 0 || !e.trusted(addr.String()) {
				return addr.String(), nil
			}
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if addr, err := netip.ParseAddr(xri); err == nil {
			return addr.String(), nil
		}
	}
	return peer, nil
}

func (e TrustedProxyExtractor) trusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range e.Proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ParseTrustedProxies parses single IPs and CIDR ranges. A single IP becomes
// a /32 or /128 prefix.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// NewIPExtractor returns a TrustedProxyExtractor when proxies are configured
// and a RemoteAddrExtractor otherwise.
func NewIPExtractor(proxies []netip.Prefix) IPExtractor {
	if len(proxies) == 0 {
		return RemoteAddrExtractor{}
	}
	return TrustedProxyExtractor{Proxies: proxies}
}

func hostOf(remoteAddr string) (string, error) {
	if remoteAddr == "" {
		return "", fmt.Errorf("empty remote address")
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// ポートなし
		host = remoteAddr
	}
	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return "", fmt.Errorf("invalid remote address %q: %w", remoteAddr, err)
	}
	return addr.Unmap().String(), nil
}
