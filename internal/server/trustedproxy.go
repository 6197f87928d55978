package server

import (
	"net"
	"net/http"
	"strings"
)

// TrustedProxies manages IP-based trusted proxy detection. Forwarded
// headers are honored only when the direct peer is inside a trusted range.
type TrustedProxies struct {
	networks []*net.IPNet
}

// NewTrustedProxies creates a TrustedProxies from a list of CIDR strings.
// Invalid CIDRs are silently ignored.
func NewTrustedProxies(cidrs []string) *TrustedProxies {
	tp := &TrustedProxies{}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Try as single IP
			ip := net.ParseIP(cidr)
			if ip != nil {
				if ip.To4() != nil {
					_, network, _ = net.ParseCIDR(ip.String() + "/32")
				} else {
					_, network, _ = net.ParseCIDR(ip.String() + "/128")
				}
			}
		}
		if network != nil {
			tp.networks = append(tp.networks, network)
		}
	}
	return tp
}

// IsTrusted returns true if the IP is within any trusted proxy range.
func (tp *TrustedProxies) IsTrusted(ip net.IP) bool {
	for _, network := range tp.networks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// GetClientIP extracts the real client IP from a request. If the request
// comes from a trusted proxy, X-Forwarded-For / X-Real-IP are consulted.
func (tp *TrustedProxies) GetClientIP(r *http.Request) net.IP {
	directIP := parseRemoteAddr(r.RemoteAddr)

	if directIP == nil || !tp.IsTrusted(directIP) {
		return directIP
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		xri := r.Header.Get("X-Real-IP")
		if xri != "" {
			if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
				return ip
			}
		}
		return directIP
	}

	// X-Forwarded-For: "client, proxy1, proxy2" - take the first valid IP.
	for _, part := range strings.Split(xff, ",") {
		if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
			return ip
		}
	}

	return directIP
}

// parseRemoteAddr extracts the IP from net/http RemoteAddr format.
func parseRemoteAddr(addr string) net.IP {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return net.ParseIP(addr)
	}
	return net.ParseIP(host)
}

// GetClientIPString returns the client IP as a string for logging and rate
// limiting keys.
func (tp *TrustedProxies) GetClientIPString(r *http.Request) string {
	ip := tp.GetClientIP(r)
	if ip == nil {
		return "unknown"
	}
	return ip.String()
}
