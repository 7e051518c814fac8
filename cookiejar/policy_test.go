package cookiejar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// stubRequest implements the Request interface for tests.
type stubRequest struct {
	host         string
	scheme       string
	path         string
	origin       string
	unverifiable bool
	attrs        []string
}

func (r *stubRequest) Host() string   { return r.host }
func (r *stubRequest) Scheme() string { return r.scheme }
func (r *stubRequest) Path() string   { return r.path }
func (r *stubRequest) OriginHost() string {
	if r.origin != "" {
		return r.origin
	}
	return r.host
}
func (r *stubRequest) IsUnverifiable() bool { return r.unverifiable }
func (r *stubRequest) AddCookies(attrs ...string) {
	r.attrs = append(r.attrs, attrs...)
}

func httpReq(host, path string) *stubRequest {
	return &stubRequest{host: host, scheme: "http", path: path}
}

func TestReturnsHostOnlyCookie(t *testing.T) {
	now := time.Now()
	cookie := &Cookie{Name: "sid", Value: "1", Domain: "google.com", Path: "/", HostOnly: true}

	tests := []struct {
		name    string
		policy  Policy
		host    string
		matched bool
	}{
		{name: "exact host", policy: DefaultPolicy(), host: "google.com", matched: true},
		{name: "subdomain rejected by default", policy: DefaultPolicy(), host: "www.google.com", matched: false},
		{name: "sibling rejected", policy: DefaultPolicy(), host: "evil.com", matched: false},
		{name: "subdomain allowed when relaxed", policy: Policy{RelaxedHostMatch: true}, host: "www.google.com", matched: true},
		{name: "different bare host rejected even when relaxed", policy: Policy{RelaxedHostMatch: true}, host: "evil.com", matched: false},
		{name: "suffix without dot boundary rejected even when relaxed", policy: Policy{RelaxedHostMatch: true}, host: "evilgoogle.com", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.policy.now = now
			assert.Equal(t, tt.matched, tt.policy.Returns(cookie, httpReq(tt.host, "/")))
		})
	}
}

func TestReturnsDomainCookie(t *testing.T) {
	policy := DefaultPolicy()
	policy.now = time.Now()
	cookie := &Cookie{Name: "sid", Value: "1", Domain: ".google.com", Path: "/"}

	assert.True(t, policy.Returns(cookie, httpReq("google.com", "/")), "apex domain")
	assert.True(t, policy.Returns(cookie, httpReq("www.google.com", "/")), "subdomain")
	assert.True(t, policy.Returns(cookie, httpReq("ww2.google.com", "/")), "sibling subdomain")
	assert.False(t, policy.Returns(cookie, httpReq("evil.com", "/")))
	assert.False(t, policy.Returns(cookie, httpReq("notgoogle.com", "/")))
}

func TestReturnsPathPrefix(t *testing.T) {
	policy := DefaultPolicy()
	policy.now = time.Now()
	cookie := &Cookie{Name: "sid", Value: "1", Domain: "x.test", Path: "/app", HostOnly: true}

	assert.True(t, policy.Returns(cookie, httpReq("x.test", "/app")))
	assert.True(t, policy.Returns(cookie, httpReq("x.test", "/app/sub")))
	assert.False(t, policy.Returns(cookie, httpReq("x.test", "/")))
	assert.False(t, policy.Returns(cookie, httpReq("x.test", "/other")))
}

func TestReturnsSecureCookie(t *testing.T) {
	policy := DefaultPolicy()
	policy.now = time.Now()
	cookie := &Cookie{Name: "sid", Value: "1", Domain: "x.test", Path: "/", HostOnly: true, Secure: true}

	assert.False(t, policy.Returns(cookie, &stubRequest{host: "x.test", scheme: "http", path: "/"}))
	assert.True(t, policy.Returns(cookie, &stubRequest{host: "x.test", scheme: "https", path: "/"}))
}

func TestReturnsExpiredCookie(t *testing.T) {
	policy := DefaultPolicy()
	policy.now = time.Now()
	expired := &Cookie{Name: "sid", Value: "1", Domain: "x.test", Path: "/", HostOnly: true, Expires: policy.now.Add(-time.Minute)}
	session := &Cookie{Name: "sid2", Value: "1", Domain: "x.test", Path: "/", HostOnly: true}

	assert.False(t, policy.Returns(expired, httpReq("x.test", "/")))
	assert.True(t, policy.Returns(session, httpReq("x.test", "/")), "session cookies never expire")
}

func TestReturnsThirdPartyBlocking(t *testing.T) {
	policy := Policy{BlockThirdParty: true}
	policy.now = time.Now()
	cookie := &Cookie{Name: "sid", Value: "1", Domain: "tracker.test", Path: "/", HostOnly: true}

	// Redirect landed on tracker.test but the chain originated elsewhere.
	redirected := &stubRequest{host: "tracker.test", scheme: "http", path: "/", origin: "shop.test", unverifiable: true}
	assert.False(t, policy.Returns(cookie, redirected))

	direct := httpReq("tracker.test", "/")
	assert.True(t, policy.Returns(cookie, direct))
}

func TestAcceptsThirdPartyBlocking(t *testing.T) {
	policy := Policy{BlockThirdParty: true}
	policy.now = time.Now()

	// Redirect landed on tracker.test but the chain originated on shop.test.
	redirected := &stubRequest{host: "tracker.test", scheme: "http", path: "/", origin: "shop.test", unverifiable: true}

	assert.False(t, policy.Accepts(SetCookie{Name: "sid", Value: "1"}, redirected),
		"domain-less cookie scoped to the redirect-landed host must not be stored")
	assert.False(t, policy.Accepts(SetCookie{Name: "sid", Value: "1", Domain: ".tracker.test"}, redirected))
	assert.True(t, policy.Accepts(SetCookie{Name: "sid", Value: "1", Domain: ".shop.test"}, redirected),
		"cookie for the origin host is fine")

	direct := httpReq("tracker.test", "/")
	assert.True(t, policy.Accepts(SetCookie{Name: "sid", Value: "1"}, direct))

	sameHost := &stubRequest{host: "shop.test", scheme: "http", path: "/", origin: "shop.test", unverifiable: true}
	assert.True(t, policy.Accepts(SetCookie{Name: "sid", Value: "1"}, sameHost),
		"redirect within the origin host keeps its cookies")
}

func TestAcceptsDomainAttribute(t *testing.T) {
	policy := DefaultPolicy()
	policy.now = time.Now()

	tests := []struct {
		name     string
		domain   string
		host     string
		accepted bool
	}{
		{name: "no domain is host-only", domain: "", host: "google.com", accepted: true},
		{name: "own suffix", domain: ".google.com", host: "www.google.com", accepted: true},
		{name: "own host without dot", domain: "google.com", host: "google.com", accepted: true},
		{name: "foreign domain", domain: ".google.com", host: "evil.com", accepted: false},
		{name: "wildcard", domain: "*.google.com", host: "www.google.com", accepted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := SetCookie{Name: "sid", Value: "1", Domain: tt.domain}
			assert.Equal(t, tt.accepted, policy.Accepts(sc, httpReq(tt.host, "/")))
		})
	}
}

func TestAcceptsRejectsNamelessCookie(t *testing.T) {
	policy := DefaultPolicy()
	assert.False(t, policy.Accepts(SetCookie{Value: "1"}, httpReq("x.test", "/")))
}
