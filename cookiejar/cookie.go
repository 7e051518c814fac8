// Package cookiejar provides a thread-safe, policy-driven cookie store for
// HTTP sessions. The jar decides which stored cookies may be attached to an
// outgoing request and which incoming cookies may be absorbed, under a
// configurable domain-strictness policy.
package cookiejar

import "time"

// Cookie is the internal representation of a stored cookie. Entries are
// keyed by (Name, Domain, Path) inside the jar.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
	Secure bool

	// HostOnly marks cookies set without an explicit Domain attribute.
	// They are scoped to the exact host that set them.
	HostOnly bool

	// Expires is the absolute expiry time. The zero value means a session
	// cookie that lives for the jar's lifetime.
	Expires time.Time

	Created    time.Time
	LastAccess time.Time

	seq uint64
}

// String renders the cookie as a single Cookie-header attribute.
func (c *Cookie) String() string {
	return c.Name + "=" + c.Value
}

func (c *Cookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

// SetCookie is a structured cookie record extracted from a response by the
// transport layer. The jar consumes these records; it never parses raw
// Set-Cookie header text.
type SetCookie struct {
	Name    string
	Value   string
	Domain  string
	Path    string
	Secure  bool
	Expires time.Time
}

// Request is the view of an outgoing request the jar needs. It is satisfied
// by httpclient.Request.
type Request interface {
	Host() string
	Scheme() string
	Path() string
	OriginHost() string
	IsUnverifiable() bool
	AddCookies(attrs ...string)
}
