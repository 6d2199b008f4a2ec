// SPDX-License-Identifier: MIT

package api

import (
	"net"
	"net/http"
	"strings"
)

// proxyTrust decides whether forwarded-for headers from a peer are believed.
// Empty trust list means no proxy is trusted and RemoteAddr always wins,
// which prevents rate limit evasion via spoofed X-Forwarded-For.
type proxyTrust struct {
	nets []*net.IPNet
}

// newProxyTrust parses a CSV of CIDRs. Invalid entries were already rejected
// by config validation and are skipped here.
func newProxyTrust(csv string) *proxyTrust {
	t := &proxyTrust{}
	for _, part := range strings.Split(csv, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if _, ipnet, err := net.ParseCIDR(p); err == nil {
			t.nets = append(t.nets, ipnet)
		}
	}
	return t
}

func (t *proxyTrust) trusted(remote string) bool {
	if len(t.nets) == 0 {
		return false
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range t.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP determines the originating IP address. X-Forwarded-For and
// X-Real-IP are honoured only when the direct peer is a trusted proxy.
func (t *proxyTrust) clientIP(r *http.Request) string {
	if t.trusted(r.RemoteAddr) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			return xr
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
