package gateway

import "strings"

type (
	// Mode selects the network topology between the client and the backend.
	Mode string

	// Router computes concrete URLs for logical gateway paths. It is a pure
	// value: no I/O, no shared state, safe to copy and call concurrently.
	//
	// In direct mode the logical path is appended verbatim to BaseURL. In
	// proxied mode the router prefixes the path so that the proxy prefix and
	// the upstream prefix each appear exactly once, whatever shape the input
	// already has. The three-way branch exists to prevent accidental
	// double-prefixing ("/gateway/v2/v2/chat").
	Router struct {
		// BaseURL is the backend origin in direct mode (for example
		// "https://api.concierge.example"). Ignored in proxied mode, where
		// requests are same-origin.
		BaseURL string
		// Mode selects direct or proxied routing. Defaults to direct.
		Mode Mode
		// ProxyPrefix is the reverse proxy's own mount point. Defaults to
		// DefaultProxyPrefix when empty.
		ProxyPrefix string
		// UpstreamPrefix is the backend API prefix the proxy forwards to.
		// Defaults to DefaultUpstreamPrefix when empty.
		UpstreamPrefix string
	}
)

const (
	// ModeDirect talks to the backend origin directly.
	ModeDirect Mode = "direct"
	// ModeProxied goes through a same-origin reverse proxy.
	ModeProxied Mode = "proxied"

	// DefaultProxyPrefix is where deployments conventionally mount the proxy.
	DefaultProxyPrefix = "/gateway"
	// DefaultUpstreamPrefix is the backend API version prefix.
	DefaultUpstreamPrefix = "/v2"
)

// Route returns the concrete URL for a logical path such as "/chat/stream".
func (r Router) Route(logical string) string {
	if !strings.HasPrefix(logical, "/") {
		logical = "/" + logical
	}
	if r.Mode != ModeProxied {
		return strings.TrimSuffix(r.BaseURL, "/") + logical
	}
	proxy := r.ProxyPrefix
	if proxy == "" {
		proxy = DefaultProxyPrefix
	}
	upstream := r.UpstreamPrefix
	if upstream == "" {
		upstream = DefaultUpstreamPrefix
	}
	switch {
	case hasPathPrefix(logical, proxy):
		// Already fully qualified; routing must be idempotent.
		return logical
	case hasPathPrefix(logical, upstream):
		return proxy + logical
	default:
		return proxy + upstream + logical
	}
}

// hasPathPrefix reports whether path starts with prefix on a path-segment
// boundary, so "/v2x/chat" does not count as carrying the "/v2" prefix.
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, "/")
}
