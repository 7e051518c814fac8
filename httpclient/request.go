package httpclient

import (
	"net/textproto"
	"net/url"
	"strings"
)

// Request is an outgoing HTTP request descriptor with mutable headers and a
// notion of redirect provenance. A request is "verifiable" when the caller
// directly controlled its URL; one produced by following a redirect to a
// different URL is not.
type Request struct {
	method         string
	url            string
	headers        map[string]string
	body           []byte
	redirectSource string
	cookies        []string
	options        map[string]any

	parsed       *url.URL
	parsedSource *url.URL
}

// NewRequest creates a verifiable request with the canonical uppercase
// method. Use NewRedirectedRequest for requests produced by a redirect.
func NewRequest(method, rawURL string) *Request {
	return &Request{
		method:  strings.ToUpper(method),
		url:     rawURL,
		headers: make(map[string]string),
	}
}

// NewRedirectedRequest creates a request that was produced by following a
// redirect from source.
func NewRedirectedRequest(method, rawURL, source string) *Request {
	r := NewRequest(method, rawURL)
	r.redirectSource = source
	return r
}

// Method returns the canonical uppercase method.
func (r *Request) Method() string { return r.method }

// URL returns the request URL.
func (r *Request) URL() string { return r.url }

// FullURL is an alias of URL.
func (r *Request) FullURL() string { return r.url }

// RedirectSource returns the URL of the request that produced this one via
// redirect, or "" for an original request.
func (r *Request) RedirectSource() string { return r.redirectSource }

// IsUnverifiable reports whether this request was produced by a redirect
// that landed on a different URL than its source.
func (r *Request) IsUnverifiable() bool {
	return r.redirectSource != "" && r.redirectSource != r.url
}

// Host returns the hostname component of the URL, without port.
func (r *Request) Host() string {
	if u := r.parseURL(); u != nil {
		return strings.ToLower(u.Hostname())
	}
	return ""
}

// Scheme returns the URL scheme.
func (r *Request) Scheme() string {
	if u := r.parseURL(); u != nil {
		return strings.ToLower(u.Scheme)
	}
	return ""
}

// Path returns the URL path, defaulting to "/".
func (r *Request) Path() string {
	if u := r.parseURL(); u != nil && u.Path != "" {
		return u.Path
	}
	return "/"
}

// OriginHost returns the host of the redirect source when present, else the
// request's own host. Used to detect cross-host redirects for cookie and
// auth scoping.
func (r *Request) OriginHost() string {
	if r.redirectSource == "" {
		return r.Host()
	}
	if r.parsedSource == nil {
		u, err := url.Parse(r.redirectSource)
		if err != nil {
			return r.Host()
		}
		r.parsedSource = u
	}
	if h := strings.ToLower(r.parsedSource.Hostname()); h != "" {
		return h
	}
	return r.Host()
}

// SetBody replaces the request body.
func (r *Request) SetBody(body []byte) { r.body = body }

// Body returns the request body, nil when absent.
func (r *Request) Body() []byte { return r.body }

// SetHeader sets a header; lookup is case-insensitive. Setting the Cookie
// header resets the tracked cookie list from its value.
func (r *Request) SetHeader(name, value string) {
	key := textproto.CanonicalMIMEHeaderKey(name)
	r.headers[key] = value
	if key == "Cookie" {
		r.cookies = splitCookieHeader(value)
	}
}

// splitCookieHeader breaks a Cookie header value into its attribute strings,
// tolerating missing whitespace after separators. An empty value yields an
// empty list.
func splitCookieHeader(value string) []string {
	var attrs []string
	for _, part := range strings.Split(value, ";") {
		if part = strings.TrimSpace(part); part != "" {
			attrs = append(attrs, part)
		}
	}
	return attrs
}

// HasHeader reports case-insensitive header presence.
func (r *Request) HasHeader(name string) bool {
	_, ok := r.headers[textproto.CanonicalMIMEHeaderKey(name)]
	return ok
}

// GetHeader performs a case-insensitive header lookup, returning "" when
// absent.
func (r *Request) GetHeader(name string) string {
	return r.headers[textproto.CanonicalMIMEHeaderKey(name)]
}

// Headers returns a copy of the request headers.
func (r *Request) Headers() map[string]string {
	out := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		out[k] = v
	}
	return out
}

// AddCookies appends cookie attribute strings to the tracked list, skipping
// ones already present (first-seen order wins), and rewrites the Cookie
// header as the "; " join of the result. Appending a duplicate is a no-op.
func (r *Request) AddCookies(attrs ...string) {
	for _, attr := range attrs {
		if !r.hasCookie(attr) {
			r.cookies = append(r.cookies, attr)
		}
	}
	r.headers["Cookie"] = strings.Join(r.cookies, "; ")
}

func (r *Request) hasCookie(attr string) bool {
	for _, existing := range r.cookies {
		if existing == attr {
			return true
		}
	}
	return false
}

// SetOption attaches an opaque transport option.
func (r *Request) SetOption(key string, value any) {
	if r.options == nil {
		r.options = make(map[string]any)
	}
	r.options[key] = value
}

// DispatchParams yields the tuple the transport collaborator needs.
func (r *Request) DispatchParams() DispatchParams {
	return DispatchParams{
		Method:  r.method,
		URL:     r.url,
		Headers: r.Headers(),
		Body:    r.body,
		Options: r.options,
	}
}

func (r *Request) parseURL() *url.URL {
	if r.parsed == nil {
		u, err := url.Parse(r.url)
		if err != nil {
			return nil
		}
		r.parsed = u
	}
	return r.parsed
}
