package muxhandlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/vitalvas/strela/mux"
	"github.com/vitalvas/strela/pipeline"
)

// ErrInvalidProxy is returned when a TrustedProxies entry is neither a valid
// IP address nor a valid CIDR range.
var ErrInvalidProxy = errors.New("client ip: invalid proxy entry")

// ClientIPKey is the Properties key under which the resolved client address
// is stored.
const ClientIPKey = "X-Forwarded-For"

// ClientIPConfig configures the ClientIP middleware behaviour.
type ClientIPConfig struct {
	// TrustedProxies is a list of IP addresses and CIDR ranges.
	// Forwarding headers are only honoured when r.RemoteAddr is in this set.
	// When empty, every peer is trusted.
	// Examples: "10.0.0.1", "192.168.0.0/16", "::1", "fd00::/8"
	TrustedProxies []string

	// ForwardedForHeader defaults to "X-Forwarded-For".
	ForwardedForHeader string

	// ForwardedHeader defaults to "Forwarded" (RFC 7239).
	ForwardedHeader string
}

// proxyTrustSet holds pre-parsed IPs and CIDRs for fast runtime lookup.
type proxyTrustSet struct {
	ips  []net.IP
	nets []*net.IPNet
}

// ClientIPMiddleware returns a middleware that resolves the originating
// client address and stores it in Properties under ClientIPKey. Sources, in
// priority order:
//
//   - X-Forwarded-For: the first entry of the first non-empty value;
//   - Forwarded: the first for= directive of the first element;
//   - the host part of r.RemoteAddr.
//
// Nothing is stored when no source yields an address. The request is never
// rejected.
//
// It returns an error if TrustedProxies contains unparseable entries.
func ClientIPMiddleware(cfg ClientIPConfig) (mux.MiddlewareFunc, error) {
	var ts *proxyTrustSet
	if len(cfg.TrustedProxies) > 0 {
		var err error
		if ts, err = parseTrustedProxies(cfg.TrustedProxies); err != nil {
			return nil, err
		}
	}

	xffHeader := cfg.ForwardedForHeader
	if xffHeader == "" {
		xffHeader = "X-Forwarded-For"
	}

	fwdHeader := cfg.ForwardedHeader
	if fwdHeader == "" {
		fwdHeader = "Forwarded"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var ip string

			if ts == nil || isTrustedPeer(r.RemoteAddr, ts) {
				ip = parseXForwardedFor(r.Header.Values(xffHeader))
				if ip == "" {
					ip = parseForwardedFor(r.Header.Values(fwdHeader))
				}
			}

			if ip == "" {
				ip = peerHost(r.RemoteAddr)
			}

			if ip != "" {
				props, req := pipeline.Ensure(r)
				props.Set(ClientIPKey, ip)
				r = req
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// ClientIPFromContext returns the client address resolved by
// ClientIPMiddleware for the request owning ctx.
func ClientIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := pipeline.Value[string](pipeline.FromContext(ctx), ClientIPKey)
	if !ok || ip == "" {
		return "", false
	}

	return ip, true
}

// parseTrustedProxies parses a list of IP addresses and CIDR ranges into a
// proxyTrustSet. It returns an error wrapping ErrInvalidProxy for any entry
// that is neither a valid IP nor a valid CIDR.
func parseTrustedProxies(entries []string) (*proxyTrustSet, error) {
	ts := &proxyTrustSet{}

	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, entry)
			}

			ts.nets = append(ts.nets, ipNet)
		} else {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, entry)
			}

			ts.ips = append(ts.ips, ip)
		}
	}

	return ts, nil
}

// isTrustedPeer reports whether the peer address (r.RemoteAddr) is in the
// trusted proxy set.
func isTrustedPeer(remoteAddr string, ts *proxyTrustSet) bool {
	ip := net.ParseIP(peerHost(remoteAddr))
	if ip == nil {
		return false
	}

	for _, trusted := range ts.ips {
		if trusted.Equal(ip) {
			return true
		}
	}

	for _, ipNet := range ts.nets {
		if ipNet.Contains(ip) {
			return true
		}
	}

	return false
}

// peerHost strips the port from a transport address. RemoteAddr may also
// be a bare host without port.
func peerHost(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}

	return strings.TrimSpace(remoteAddr)
}

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values []string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}

// parseXForwardedFor returns the leftmost non-empty entry of the first
// non-empty X-Forwarded-For value. Entries are not validated as IPs; the
// leftmost one is the original caller by convention.
func parseXForwardedFor(values []string) string {
	for part := range strings.SplitSeq(firstNonEmpty(values), ",") {
		if candidate := strings.TrimSpace(part); candidate != "" {
			return candidate
		}
	}

	return ""
}

// parseForwardedFor extracts the first for= directive from the first element
// of the first non-empty RFC 7239 Forwarded value. Multiple elements are
// comma-separated; only the first is used (the client-facing proxy).
//
// Spec reference: https://www.rfc-editor.org/rfc/rfc7239
func parseForwardedFor(values []string) string {
	header := firstNonEmpty(values)
	if idx := strings.IndexByte(header, ','); idx != -1 {
		header = header[:idx]
	}

	for param := range strings.SplitSeq(header, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "for") {
			continue
		}

		return parseForwardedNode(strings.TrimSpace(val))
	}

	return ""
}

// parseForwardedNode unquotes a for= value and strips IPv6 brackets and the
// port when what remains is an IP address. Obfuscated identifiers such as
// "_hidden" or "unknown" are returned as-is.
//
//	for=192.0.2.60
//	for="[2001:db8::1]"
//	for="[2001:db8::1]:4711"
//	for="_hidden"
func parseForwardedNode(val string) string {
	val = strings.Trim(val, `"`)

	host, _, err := net.SplitHostPort(val)
	if err != nil {
		host = strings.TrimSuffix(strings.TrimPrefix(val, "["), "]")
	}

	if net.ParseIP(host) != nil {
		return host
	}

	return val
}
