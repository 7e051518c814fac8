// Package httpclient implements the session layer of an HTTP client: request
// construction and encoding, cookie coordination across a session, and the
// redirect/retry state machine that drives a request chain to completion.
// The wire-level transport is an injected collaborator; this package never
// opens connections itself.
package httpclient

import (
	"context"

	"github.com/gaborage/go-session/cookiejar"
)

// DispatchParams is the tuple handed to the transport for one dispatch: the
// sole downstream interface the session layer exposes.
type DispatchParams struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	// Options carries caller-supplied transport settings the session layer
	// does not interpret.
	Options map[string]any
}

// Transport executes a single HTTP exchange. Implementations own connection
// acquisition, pooling, TLS, and timeouts; a timeout or connection error is
// surfaced as the returned error and terminates the chain.
type Transport interface {
	Dispatch(ctx context.Context, params DispatchParams) (Response, error)
}

// Response is the view of an HTTP response the session layer needs.
type Response interface {
	StatusCode() int
	// RedirectLocation returns the redirect target reported by the
	// transport, or "" when the response is not a followable redirect.
	RedirectLocation() string
	// Header performs a case-insensitive header lookup.
	Header(name string) string
	// SetCookies returns the structured cookie records carried by the
	// response. The transport parses Set-Cookie text; the session layer
	// only consumes records.
	SetCookies() []cookiejar.SetCookie
	// Release frees any connection resources held by the response. The
	// session layer calls it exactly once for every response it abandons.
	Release()
}

// Config holds session-level settings.
type Config struct {
	// MaxRedirects is the redirect budget per request chain.
	MaxRedirects int
	// RaiseOnRedirect makes budget exhaustion a hard failure instead of
	// returning the last response.
	RaiseOnRedirect bool
	// DefaultHeaders are applied to every outgoing request before
	// caller-supplied headers.
	DefaultHeaders map[string]string
	// RequestsPerSecond enables a per-session rate limiter when > 0.
	RequestsPerSecond float64
	// RateBurst is the limiter burst size; defaults to 1 when the limiter
	// is enabled.
	RateBurst int
}

// DefaultConfig mirrors the conventional session defaults: a budget of 10
// redirect hops with hard failure on exhaustion.
func DefaultConfig() *Config {
	return &Config{
		MaxRedirects:    10,
		RaiseOnRedirect: true,
	}
}

// RequestOptions carries the per-call inputs for Session verbs: encoding
// fields, explicit body, extra headers, and opaque transport options.
type RequestOptions struct {
	Headers map[string]string

	// Fields, URLParams, and FormFields are ordered; encoding preserves
	// input order because some servers are order-sensitive.
	Fields     []Field
	URLParams  []Field
	FormFields []Field

	Body []byte

	EncodeMultipart   bool
	MultipartBoundary string

	TransportOptions map[string]any
}

// Client is the verb-level interface implemented by Session.
type Client interface {
	Get(ctx context.Context, url string, opts *RequestOptions) (Response, error)
	Post(ctx context.Context, url string, opts *RequestOptions) (Response, error)
	Put(ctx context.Context, url string, opts *RequestOptions) (Response, error)
	Delete(ctx context.Context, url string, opts *RequestOptions) (Response, error)
	Head(ctx context.Context, url string, opts *RequestOptions) (Response, error)
	Do(ctx context.Context, method, url string, opts *RequestOptions) (Response, error)
}
