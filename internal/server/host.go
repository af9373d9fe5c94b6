package server

import (
	"net"
	"net/http"
	"strings"
)

// tenantHost returns the hostname used to pick the tenant. Proxy headers are
// read only when trustProxy is set; the standard Forwarded header wins over
// X-Forwarded-Host.
func tenantHost(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if h := forwardedHeaderHost(r.Header.Get("Forwarded")); h != "" {
			return normalizeHostname(h)
		}
		if h := firstListValue(r.Header.Get("X-Forwarded-Host")); h != "" {
			return normalizeHostname(h)
		}
	}
	return normalizeHostname(r.Host)
}

// forwardedHeaderHost extracts host= from the first element of an RFC 7239
// Forwarded header.
func forwardedHeaderHost(v string) string {
	for pair := range strings.SplitSeq(firstListValue(v), ";") {
		k, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && strings.EqualFold(k, "host") {
			return strings.Trim(val, `"`)
		}
	}
	return ""
}

func firstListValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}

// normalizeHostname lowercases host and drops any port, brackets and the
// trailing root dot.
func normalizeHostname(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.Trim(host, "[]"), ".")
	return strings.ToLower(host)
}
