// Package httputil holds small HTTP helpers shared by the API and
// streaming layers.
package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address stream limits and request logs should key
// on. With trustProxy set, forwarded headers are consulted first:
// X-Forwarded-For left to right (the leftmost parseable entry is the
// original client), then X-Real-IP. Values that do not parse as IP
// addresses are ignored rather than trusted, so a spoofed header cannot
// smuggle an arbitrary key into the limiter. Without a proxy the
// connection's remote address is authoritative.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
