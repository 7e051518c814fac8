package httpclient

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/gaborage/go-session/cookiejar"
)

// Handler observes the request chain: ApplyTo mutates an outgoing request
// before dispatch, ExtractFrom absorbs state from a response afterwards.
type Handler interface {
	ApplyTo(req *Request)
	ExtractFrom(resp Response, req *Request)
}

// SessionContext is the ordered handler chain a Session runs around every
// dispatch.
type SessionContext struct {
	handlers []Handler
}

// NewSessionContext builds a context from the given handlers. With none
// supplied it defaults to a cookie handler over a fresh strict-policy jar.
func NewSessionContext(handlers ...Handler) *SessionContext {
	if len(handlers) == 0 {
		handlers = []Handler{NewCookieHandler(nil)}
	}
	return &SessionContext{handlers: handlers}
}

// ApplyTo runs every handler against the outgoing request, in order.
func (c *SessionContext) ApplyTo(req *Request) {
	for _, h := range c.handlers {
		h.ApplyTo(req)
	}
}

// ExtractFrom lets every handler absorb state from the response.
func (c *SessionContext) ExtractFrom(resp Response, req *Request) {
	for _, h := range c.handlers {
		h.ExtractFrom(resp, req)
	}
}

// CookieHandler connects a cookie jar to the request chain.
type CookieHandler struct {
	jar *cookiejar.Jar
}

// NewCookieHandler wraps the given jar; nil means a fresh jar with the
// strict default policy.
func NewCookieHandler(jar *cookiejar.Jar) *CookieHandler {
	if jar == nil {
		jar = cookiejar.New(nil)
	}
	return &CookieHandler{jar: jar}
}

// Jar exposes the underlying jar, e.g. to share it across sessions.
func (h *CookieHandler) Jar() *cookiejar.Jar { return h.jar }

// ApplyTo attaches the jar's matching cookies to the request.
func (h *CookieHandler) ApplyTo(req *Request) {
	h.jar.Attach(req)
}

// ExtractFrom absorbs the response's cookie records into the jar.
func (h *CookieHandler) ExtractFrom(resp Response, req *Request) {
	h.jar.Absorb(resp.SetCookies(), req)
}

// BasicAuthHandler applies an Authorization header to requests whose host
// (and scheme, when the configured origin carried one) matches its origin.
// Scoping auth to one origin keeps credentials from leaking across
// cross-host redirects.
type BasicAuthHandler struct {
	host     string
	scheme   string
	username string
	password string
}

// NewBasicAuthHandler creates a handler for the given origin. The origin may
// be a bare host or a URL; a scheme, when present, must also match.
func NewBasicAuthHandler(origin, username, password string) *BasicAuthHandler {
	h := &BasicAuthHandler{username: username, password: password}
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		h.host = strings.ToLower(u.Hostname())
		h.scheme = strings.ToLower(u.Scheme)
	} else {
		h.host = strings.ToLower(origin)
	}
	return h
}

// ApplyTo sets the Authorization header when the request origin matches.
func (h *BasicAuthHandler) ApplyTo(req *Request) {
	if !h.hostMatches(req) {
		return
	}
	creds := base64.StdEncoding.EncodeToString([]byte(h.username + ":" + h.password))
	req.SetHeader("Authorization", "Basic "+creds)
}

// ExtractFrom is a no-op; basic auth carries no response state.
func (h *BasicAuthHandler) ExtractFrom(_ Response, _ *Request) {}

func (h *BasicAuthHandler) hostMatches(req *Request) bool {
	if h.scheme != "" && h.scheme != req.Scheme() {
		return false
	}
	return h.host == req.Host()
}
