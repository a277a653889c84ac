// Package realip resolves the real client IP behind reverse proxies so the
// rate limiter and request logs key on the paying wallet's origin rather
// than the proxy fleet.
package realip

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// contextKey avoids collisions with other packages' context values
type contextKey string

// ClientIPKey is the context key under which the resolved IP is stored.
const ClientIPKey contextKey = "client_ip"

// DefaultTrustedProxies covers loopback and the RFC 1918 ranges, the usual
// placement for an ingress or CDN edge in front of the gate.
var DefaultTrustedProxies = []string{
	"127.0.0.0/8",
	"::1/128",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

// Config controls forwarded-header handling.
type Config struct {
	// TrustProxy enables X-Forwarded-For / X-Real-IP parsing
	TrustProxy bool
	// TrustedProxies lists proxy CIDR ranges; empty falls back to
	// DefaultTrustedProxies
	TrustedProxies []string
}

// Middleware resolves the client IP once per request and stores it in the
// request context for downstream consumers (GetClientIP).
func Middleware(cfg Config) func(http.Handler) http.Handler {
	var proxyNets []*net.IPNet
	if cfg.TrustProxy {
		ranges := cfg.TrustedProxies
		if len(ranges) == 0 {
			ranges = DefaultTrustedProxies
		}
		proxyNets = parseProxyRanges(ranges)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := resolveClientIP(r, cfg.TrustProxy, proxyNets)
			ctx := context.WithValue(r.Context(), ClientIPKey, clientIP)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseProxyRanges accepts CIDR notation and bare IPs (treated as /32 or /128).
func parseProxyRanges(ranges []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range ranges {
		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			if ip := net.ParseIP(entry); ip != nil {
				if ip.To4() != nil {
					_, network, _ = net.ParseCIDR(entry + "/32")
				} else {
					_, network, _ = net.ParseCIDR(entry + "/128")
				}
			}
		}
		if network != nil {
			nets = append(nets, network)
		}
	}
	return nets
}

// resolveClientIP walks the forwarding chain. Forwarded headers are only
// honored when the direct peer is a trusted proxy; otherwise anyone could
// spoof their way past per-IP rate limits with a crafted header.
func resolveClientIP(r *http.Request, trustProxy bool, proxyNets []*net.IPNet) string {
	peerIP := stripPort(r.RemoteAddr)

	if !trustProxy || !isTrustedProxy(peerIP, proxyNets) {
		return peerIP
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
		return peerIP
	}

	// Rightmost entry not belonging to our proxy fleet is the client;
	// entries to its left are under the client's control.
	hops := strings.Split(xff, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !isTrustedProxy(hop, proxyNets) {
			return hop
		}
	}

	// Whole chain is trusted; take the leftmost entry.
	if len(hops) > 0 {
		return strings.TrimSpace(hops[0])
	}
	return peerIP
}

// stripPort drops the :port suffix from a RemoteAddr-style string.
func stripPort(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func isTrustedProxy(ipStr string, proxyNets []*net.IPNet) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, network := range proxyNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// GetClientIP returns the IP resolved by Middleware, falling back to
// RemoteAddr when the middleware did not run.
func GetClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(ClientIPKey).(string); ok && ip != "" {
		return ip
	}
	return stripPort(r.RemoteAddr)
}
