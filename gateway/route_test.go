package gateway

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestRouteDirect(t *testing.T) {
	r := Router{BaseURL: "https://api.concierge.example/v2", Mode: ModeDirect}
	require.Equal(t, "https://api.concierge.example/v2/chat", r.Route("/chat"))
	require.Equal(t, "https://api.concierge.example/v2/chat", r.Route("chat"))
}

// TestRouteProxiedThreeShapes verifies the three starting shapes: a bare
// logical path, a path already carrying the upstream prefix, and a path
// already fully proxy-prefixed. Each must come out with the proxy prefix and
// the upstream prefix exactly once.
func TestRouteProxiedThreeShapes(t *testing.T) {
	r := Router{Mode: ModeProxied, ProxyPrefix: "/gateway", UpstreamPrefix: "/v2"}

	require.Equal(t, "/gateway/v2/chat", r.Route("/chat"))
	require.Equal(t, "/gateway/v2/chat", r.Route("/v2/chat"))
	require.Equal(t, "/gateway/v2/chat", r.Route("/gateway/v2/chat"))
}

// TestRouteProxiedIdempotent verifies that routing an already-routed path is
// a no-op, so nested call sites cannot double-prefix.
func TestRouteProxiedIdempotent(t *testing.T) {
	r := Router{Mode: ModeProxied, ProxyPrefix: "/gateway", UpstreamPrefix: "/v2"}
	once := r.Route("/threads/search")
	require.Equal(t, once, r.Route(once))
}

func TestRouteSegmentBoundary(t *testing.T) {
	r := Router{Mode: ModeProxied, ProxyPrefix: "/gateway", UpstreamPrefix: "/v2"}
	// "/v2x" is not the upstream prefix; it must be fully prefixed.
	require.Equal(t, "/gateway/v2/v2x/chat", r.Route("/v2x/chat"))
}

func TestRouteDefaults(t *testing.T) {
	r := Router{Mode: ModeProxied}
	require.Equal(t, DefaultProxyPrefix+DefaultUpstreamPrefix+"/chat", r.Route("/chat"))
}

// TestRoutePrefixOnceProperty verifies for arbitrary logical paths in each of
// the three starting shapes that exactly one prefix application occurs: the
// output contains the proxy prefix once and the upstream prefix once.
func TestRoutePrefixOnceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	r := Router{Mode: ModeProxied, ProxyPrefix: "/gateway", UpstreamPrefix: "/v2"}

	// Segments avoid "g" and "v" so generated paths cannot coincidentally
	// start with the proxy or upstream prefix themselves.
	pathGen := gen.RegexMatch(`/[a-fh-uw-z]{1,8}(/[a-fh-uw-z]{1,8}){0,3}`)

	count := func(s, sub string) int { return strings.Count(s, sub+"/") + boolToInt(strings.HasSuffix(s, sub)) }

	properties.Property("each prefix appears exactly once", prop.ForAll(
		func(logical string) bool {
			for _, shape := range []string{
				logical,
				"/v2" + logical,
				"/gateway/v2" + logical,
			} {
				routed := r.Route(shape)
				if count(routed, "/gateway") != 1 {
					return false
				}
				if count(routed, "/v2") != 1 {
					return false
				}
				if !strings.HasSuffix(routed, logical) {
					return false
				}
			}
			return true
		},
		pathGen,
	))

	properties.TestingRun(t)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
