package httpclient

import "net/url"

// ChainState is the state of one logical request chain.
type ChainState int

const (
	// ChainActive means the chain should dispatch another request.
	ChainActive ChainState = iota
	// ChainSuccess means the chain finished on a non-redirect response.
	ChainSuccess
	// ChainExhausted means the redirect budget ran out without
	// RaiseOnRedirect: the current response is the final result.
	ChainExhausted
	// ChainAborted means the chain failed hard: budget exhaustion with
	// RaiseOnRedirect, or a transport failure.
	ChainAborted
)

// RetryState carries the redirect accounting for one chain. Attempted is
// monotonically non-decreasing and never exceeds MaxRedirects without a
// terminal decision.
type RetryState struct {
	MaxRedirects    int
	Attempted       int
	RaiseOnRedirect bool
}

// NewRetryState creates the initial retry state for a chain.
func NewRetryState(maxRedirects int, raiseOnRedirect bool) RetryState {
	return RetryState{MaxRedirects: maxRedirects, RaiseOnRedirect: raiseOnRedirect}
}

// RedirectRule determines how a redirect status maps the request method.
type RedirectRule int

const (
	// PreserveMethod keeps the original method (307, 308).
	PreserveMethod RedirectRule = iota
	// ForceGet always remaps to GET (303).
	ForceGet
	// SafeRemap preserves GET and HEAD and remaps everything else to GET
	// (301, 302 conventional behavior).
	SafeRemap
)

// RedirectPolicy computes redirect decisions from responses. Its method
// table is explicit configuration so the status-to-method mapping is
// testable rather than implied.
type RedirectPolicy struct {
	Methods map[int]RedirectRule
}

// NewRedirectPolicy returns a policy with the standard method table:
// 303 forces GET, 307/308 preserve the method, 301/302 preserve only GET
// and HEAD.
func NewRedirectPolicy() *RedirectPolicy {
	return &RedirectPolicy{
		Methods: map[int]RedirectRule{
			301: SafeRemap,
			302: SafeRemap,
			303: ForceGet,
			307: PreserveMethod,
			308: PreserveMethod,
		},
	}
}

// Decision is the controller's instruction to the dispatch loop.
type Decision struct {
	State   ChainState
	Method  string
	URL     string
	Retries RetryState
}

// OnRedirectResponse resolves the next hop of a redirect chain: the target
// URL (relative references resolved against currentURL), the next method
// from the status table, and the retry accounting. When the incremented
// count exceeds the budget, the chain terminates: with RaiseOnRedirect the
// response is released exactly once and a RetryExhaustedError returned,
// otherwise the caller keeps the current response as the final result.
//
// The controller never dispatches; the caller drives the loop so chain
// length can never grow the call stack.
func (p *RedirectPolicy) OnRedirectResponse(resp Response, method, currentURL string, state RetryState) (Decision, error) {
	nextURL := resolveRedirectTarget(currentURL, resp.RedirectLocation())
	nextMethod := p.redirectMethod(resp.StatusCode(), method)

	state.Attempted++
	if state.Attempted > state.MaxRedirects {
		if state.RaiseOnRedirect {
			resp.Release()
			return Decision{State: ChainAborted, Retries: state},
				NewRetryExhaustedError(currentURL, state.Attempted)
		}
		return Decision{State: ChainExhausted, Retries: state}, nil
	}

	return Decision{State: ChainActive, Method: nextMethod, URL: nextURL, Retries: state}, nil
}

// redirectMethod applies the status table. Statuses outside the table keep
// the original method.
func (p *RedirectPolicy) redirectMethod(status int, method string) string {
	switch p.Methods[status] {
	case ForceGet:
		return "GET"
	case SafeRemap:
		if method == "GET" || method == "HEAD" {
			return method
		}
		return "GET"
	default:
		return method
	}
}

// resolveRedirectTarget joins a redirect target with the URL that produced
// it, resolving relative references.
func resolveRedirectTarget(currentURL, location string) string {
	base, err := url.Parse(currentURL)
	if err != nil {
		return location
	}
	ref, err := url.Parse(location)
	if err != nil {
		return location
	}
	return base.ResolveReference(ref).String()
}
