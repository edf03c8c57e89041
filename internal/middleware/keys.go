package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// KeyResolver derives the throttling key for a request.
// An empty key exempts the request from throttling.
type KeyResolver interface {
	Key(ctx huma.Context) string
}

// KeyResolverFunc adapts a function to KeyResolver.
type KeyResolverFunc func(ctx huma.Context) string

func (f KeyResolverFunc) Key(ctx huma.Context) string {
	return f(ctx)
}

// ClientKeyResolver keys requests by client IP and User-Agent.
type ClientKeyResolver struct{}

func (ClientKeyResolver) Key(ctx huma.Context) string {
	ip := ClientIP(ctx)
	if ip == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(ip + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}

// RouteKeyResolver keys requests by scheme, host and path, so every caller of
// a given URL shares one window.
type RouteKeyResolver struct{}

func (RouteKeyResolver) Key(ctx huma.Context) string {
	u := ctx.URL()

	path := u.Path
	if path == "" {
		return ""
	}

	scheme := "http"
	if ctx.TLS() != nil {
		scheme = "https"
	}

	host := ctx.Host()
	if host == "" {
		host = u.Host
	}

	return scheme + "://" + host + path
}

// NewKeyResolver returns the resolver registered under name.
func NewKeyResolver(name string) (KeyResolver, bool) {
	switch name {
	case "client", "":
		return ClientKeyResolver{}, true
	case "route":
		return RouteKeyResolver{}, true
	default:
		return nil, false
	}
}

// ClientIP extracts the client IP from the request, considering proxies.
func ClientIP(ctx huma.Context) string {
	// X-Forwarded-For may contain multiple IPs; the first is the original client.
	// Blank entries carry no attribution and fall through to the next source.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(ctx.Header("X-Real-IP")); xri != "" {
		return xri
	}

	addr := ctx.RemoteAddr()

	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return ip
}
