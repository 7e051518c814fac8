package cookiejar

import (
	"strings"
	"time"
)

// Policy decides whether cookies are returned on outgoing requests and
// accepted from incoming responses. It is a stateless value type injected
// into a Jar at construction; the zero value is the default, strict policy.
//
// The default rejects host-only cookies (those set without an explicit
// Domain attribute) for any host other than the exact setting host. The
// relaxed legacy mode, where a bare hostname could match subdomains, opened
// a cross-domain leakage gap and must be opted into explicitly.
type Policy struct {
	// RelaxedHostMatch re-enables legacy suffix matching for host-only
	// cookies. Leave false unless a peer depends on the old behavior.
	RelaxedHostMatch bool

	// BlockThirdParty refuses to return or store cookies on unverifiable
	// (redirect-produced, cross-host) requests whose cookie domain does not
	// match the origin request host.
	BlockThirdParty bool

	// now is a transient snapshot refreshed by the jar at the start of each
	// attach/absorb operation. It is never persisted.
	now time.Time
}

// DefaultPolicy returns the strict default policy.
func DefaultPolicy() Policy {
	return Policy{}
}

// Returns reports whether the stored cookie may be sent on the request.
// It is a pure function of the cookie, the request, and the current-time
// snapshot.
func (p *Policy) Returns(c *Cookie, req Request) bool {
	if c.expired(p.now) {
		return false
	}
	if c.Secure && !isSecureScheme(req.Scheme()) {
		return false
	}
	if p.BlockThirdParty && req.IsUnverifiable() && !p.domainMatch(c, req.OriginHost()) {
		return false
	}
	if !p.domainMatch(c, req.Host()) {
		return false
	}
	return pathMatch(c.Path, req.Path())
}

// Accepts reports whether a cookie record from a response may be stored for
// the given request. A Domain attribute must name the request host itself or
// a dot-prefixed suffix of it; records carrying wildcards are rejected.
func (p *Policy) Accepts(sc SetCookie, req Request) bool {
	if sc.Name == "" {
		return false
	}
	domain := strings.ToLower(sc.Domain)
	if strings.Contains(domain, "*") {
		return false
	}
	if p.BlockThirdParty && req.IsUnverifiable() {
		// A domain-less record would be scoped to the redirect-landed host,
		// so that host is its effective domain for the origin check.
		effective := domain
		if effective == "" {
			effective = strings.ToLower(req.Host())
		}
		if !domainAllows(effective, req.OriginHost()) {
			return false
		}
	}
	if domain == "" {
		// Host-only cookie, always scoped to the setting host.
		return true
	}
	return domainAllows(domain, req.Host())
}

// domainMatch implements the return-side matching rules for a stored cookie.
func (p *Policy) domainMatch(c *Cookie, host string) bool {
	host = strings.ToLower(host)
	if c.HostOnly {
		if host == c.Domain {
			return true
		}
		return p.RelaxedHostMatch && strings.HasSuffix(host, "."+c.Domain)
	}
	// Domain cookies are stored with a leading dot.
	return host == strings.TrimPrefix(c.Domain, ".") || strings.HasSuffix(host, c.Domain)
}

// domainAllows reports whether the given Domain attribute is a valid scope
// for a cookie set by host: the host itself, or a suffix reachable from it.
func domainAllows(domain, host string) bool {
	if domain == "" {
		return true
	}
	host = strings.ToLower(host)
	if !strings.HasPrefix(domain, ".") {
		domain = "." + domain
	}
	return host == strings.TrimPrefix(domain, ".") || strings.HasSuffix(host, domain)
}

func pathMatch(cookiePath, reqPath string) bool {
	if cookiePath == "" {
		cookiePath = "/"
	}
	if reqPath == "" {
		reqPath = "/"
	}
	return strings.HasPrefix(reqPath, cookiePath)
}

func isSecureScheme(scheme string) bool {
	return scheme == "https" || scheme == "wss"
}

// canonicalDomain normalizes a Domain attribute for storage: lowercase, with
// a leading dot for domain cookies.
func canonicalDomain(domain string) string {
	domain = strings.ToLower(domain)
	if domain != "" && !strings.HasPrefix(domain, ".") {
		domain = "." + domain
	}
	return domain
}
