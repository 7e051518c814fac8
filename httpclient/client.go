package httpclient

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/gaborage/go-session/logger"
)

const clientTracerName = "github.com/gaborage/go-session/httpclient"

// Session coordinates request encoding, cookie state, and redirect
// resolution above an injected transport. One request is in flight at a time
// within a chain; independent chains may run concurrently from separate
// goroutines and share the session, whose only shared mutable state is the
// cookie jar behind its handler chain.
type Session struct {
	transport Transport
	context   *SessionContext
	redirects *RedirectPolicy
	config    *Config
	log       logger.Logger
	limiter   *rate.Limiter
	callCount atomic.Int64
}

// Ensure Session implements the verb interface
var _ Client = (*Session)(nil)

// NewSession creates a session over the given transport. A nil config means
// DefaultConfig, a nil logger discards output, and with no handlers the
// session gets its own cookie jar with the strict default policy.
func NewSession(transport Transport, cfg *Config, log logger.Logger, handlers ...Handler) *Session {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.NewNoop()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Session{
		transport: transport,
		context:   NewSessionContext(handlers...),
		redirects: NewRedirectPolicy(),
		config:    cfg,
		log:       log,
		limiter:   limiter,
	}
}

// Context returns the session's handler chain.
func (s *Session) Context() *SessionContext { return s.context }

// RedirectPolicy returns the session's redirect policy for customization.
func (s *Session) RedirectPolicy() *RedirectPolicy { return s.redirects }

// CallCount reports the number of transport dispatches issued, redirect
// hops included.
func (s *Session) CallCount() int64 { return s.callCount.Load() }

// Get issues a GET request.
func (s *Session) Get(ctx context.Context, url string, opts *RequestOptions) (Response, error) {
	return s.Do(ctx, "GET", url, opts)
}

// Post issues a POST request.
func (s *Session) Post(ctx context.Context, url string, opts *RequestOptions) (Response, error) {
	return s.Do(ctx, "POST", url, opts)
}

// Put issues a PUT request.
func (s *Session) Put(ctx context.Context, url string, opts *RequestOptions) (Response, error) {
	return s.Do(ctx, "PUT", url, opts)
}

// Delete issues a DELETE request.
func (s *Session) Delete(ctx context.Context, url string, opts *RequestOptions) (Response, error) {
	return s.Do(ctx, "DELETE", url, opts)
}

// Head issues a HEAD request.
func (s *Session) Head(ctx context.Context, url string, opts *RequestOptions) (Response, error) {
	return s.Do(ctx, "HEAD", url, opts)
}

// Do encodes the request and drives the redirect chain to a terminal state.
// It returns the final response for a completed chain, including the soft
// case where the redirect budget ran out with RaiseOnRedirect unset. Every
// intermediate response is released before the next hop is dispatched;
// releasing the returned response is the caller's responsibility.
func (s *Session) Do(ctx context.Context, method, rawURL string, opts *RequestOptions) (Response, error) {
	tracer := otel.Tracer(clientTracerName)
	ctx, span := tracer.Start(ctx, "http.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", rawURL),
		),
	)
	defer span.End()

	resp, hops, err := s.runChain(ctx, method, rawURL, opts)
	span.SetAttributes(attribute.Int("http.redirect_count", hops))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode()))
	return resp, nil
}

// runChain is the explicit redirect loop. Redirect chains longer than the
// configured budget terminate here without growing the call stack.
func (s *Session) runChain(ctx context.Context, method, rawURL string, opts *RequestOptions) (Response, int, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	currentURL, encHeaders, body, err := Encode(method, rawURL, opts)
	if err != nil {
		return nil, 0, err
	}

	chainID := uuid.NewString()
	log := s.log.WithFields(map[string]any{"chain_id": chainID})

	req := NewRequest(method, currentURL)
	currentMethod := req.Method()
	state := NewRetryState(s.config.MaxRedirects, s.config.RaiseOnRedirect)
	redirectSource := ""

	for {
		if redirectSource != "" {
			req = NewRedirectedRequest(currentMethod, currentURL, redirectSource)
		}
		s.prepare(req, opts, encHeaders, body)
		s.context.ApplyTo(req)

		if s.limiter != nil {
			if werr := s.limiter.Wait(ctx); werr != nil {
				return nil, state.Attempted, NewTransportError("rate limit wait interrupted", werr)
			}
		}

		log.Debug().
			Str("method", req.Method()).
			Str("url", req.URL()).
			Int("attempted", state.Attempted).
			Msg("dispatching request")

		resp, derr := s.transport.Dispatch(ctx, req.DispatchParams())
		s.callCount.Add(1)
		if derr != nil {
			// Transport failures are opaque chain terminators, never
			// reinterpreted as redirect or retry events.
			return nil, state.Attempted, NewTransportError("dispatch failed", derr)
		}

		s.context.ExtractFrom(resp, req)

		if resp.RedirectLocation() == "" {
			return resp, state.Attempted, nil
		}

		decision, rerr := s.redirects.OnRedirectResponse(resp, currentMethod, currentURL, state)
		if rerr != nil {
			return nil, decision.Retries.Attempted, rerr
		}
		if decision.State != ChainActive {
			// Soft exhaustion: the current response is the final result and
			// its release is left to the caller.
			log.Warn().
				Str("url", currentURL).
				Int("attempted", decision.Retries.Attempted).
				Msg("redirect budget exhausted, returning last response")
			return resp, decision.Retries.Attempted, nil
		}

		log.Info().
			Str("from", currentURL).
			Str("to", decision.URL).
			Str("method", decision.Method).
			Msg("following redirect")

		resp.Release()
		state = decision.Retries
		redirectSource = currentURL
		if decision.Method != currentMethod {
			// Remapped to GET: the original body and its content type do
			// not travel with the new method.
			body = nil
			delete(encHeaders, ContentTypeHeader)
		}
		currentMethod = decision.Method
		currentURL = decision.URL
	}
}

// prepare layers headers onto a fresh request: session defaults, then
// caller-supplied headers, then the ones the encoding produced.
func (s *Session) prepare(req *Request, opts *RequestOptions, encHeaders map[string]string, body []byte) {
	for k, v := range s.config.DefaultHeaders {
		req.SetHeader(k, v)
	}
	for k, v := range opts.Headers {
		req.SetHeader(k, v)
	}
	for k, v := range encHeaders {
		req.SetHeader(k, v)
	}
	if body != nil {
		req.SetBody(body)
	}
	for k, v := range opts.TransportOptions {
		req.SetOption(k, v)
	}
}
