package http

import (
	"net"
	"net/http"
)

// ClientIP returns the client address for rate-limit keying. The router runs
// chi's RealIP middleware ahead of the handlers, so RemoteAddr already holds
// the best-known client address; this just strips the port.
func ClientIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
