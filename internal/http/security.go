package http

import (
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"sync/atomic"
)

type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

// Proxies in these ranges may set X-Forwarded-For.
var trustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
}

const (
	maxForwardedHops = 5
	maxURLLength     = 2048
)

func trusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP is the address the limiter keys on. Forwarding headers count
// only when the direct peer is a trusted proxy; X-Forwarded-For is read
// right to left and the first untrusted hop wins.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !trusted(peer) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !trusted(addr) || i == 0 {
				return addr.String()
			}
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.String()
	}
	return host
}

var (
	traversalMarkers = []string{"../", "..\\", "%2e%2e", "etc/passwd"}
	injectionMarkers = []string{"<script", "javascript:", "union select", "eval("}
	// Paths scanners try that this server never serves.
	scanTargets    = []string{".env", ".git", ".ssh", "wp-admin", "phpmyadmin", ".php", "cmd.exe"}
	scannerAgents  = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab"}
	allowedMethods = map[string]bool{
		http.MethodGet: true, http.MethodHead: true, http.MethodPost: true,
		http.MethodPut: true, http.MethodDelete: true, http.MethodOptions: true,
	}
)

// suspicion names the first reason the request looks hostile, or "".
// Detection only feeds logging and the readiness counters.
func suspicion(r *http.Request) string {
	path := strings.ToLower(r.URL.Path)
	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}
	query = strings.ToLower(query)

	switch {
	case !allowedMethods[r.Method]:
		return "method"
	case len(r.URL.String()) > maxURLLength:
		return "long-url"
	case containsAny(path, traversalMarkers) || containsAny(query, traversalMarkers):
		return "traversal"
	case !strings.HasPrefix(path, "/api/") && containsAny(path, scanTargets):
		return "scan-target"
	case containsAny(query, injectionMarkers):
		return "injection"
	case containsAny(strings.ToLower(r.UserAgent()), scannerAgents):
		return "scanner"
	case strings.Count(r.Header.Get("X-Forwarded-For"), ",") >= maxForwardedHops:
		return "forwarded"
	}
	return ""
}

func (m *securityMetrics) recordSuspicious() {
	atomic.AddInt64(&m.suspiciousRequests, 1)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
