package cookiejar

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Jar is a thread-safe cookie store. All public operations are atomic with
// respect to each other: a single mutex serializes every read-for-mutation
// and mutation of the cookie set. Attach and Absorb never perform I/O, so
// they are safe to call while holding other coordination primitives.
type Jar struct {
	mu      sync.Mutex
	policy  Policy
	entries map[jarKey]*Cookie
	nextSeq uint64
}

type jarKey struct {
	name   string
	domain string
	path   string
}

// New creates a jar using the supplied policy. A nil policy means the strict
// default.
func New(policy *Policy) *Jar {
	p := DefaultPolicy()
	if policy != nil {
		p = *policy
	}
	return &Jar{
		policy:  p,
		entries: make(map[jarKey]*Cookie),
	}
}

// SetPolicy replaces the jar's policy. Existing cookies are kept; they are
// re-evaluated against the new policy on the next Attach.
func (j *Jar) SetPolicy(policy Policy) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.policy = policy
}

// Attach appends the attribute strings of every stored cookie the policy
// returns for this request to the request's Cookie header. The request is
// mutated in place; there is no other observable effect. Expired cookies are
// swept after the lock is released to bound lock hold time.
func (j *Jar) Attach(req Request) {
	j.mu.Lock()
	now := time.Now()
	j.policy.now = now

	var selected []*Cookie
	for _, c := range j.entries {
		if j.policy.Returns(c, req) {
			selected = append(selected, c)
		}
	}
	// Deterministic order: longest path first, then creation order.
	sort.Slice(selected, func(i, k int) bool {
		if len(selected[i].Path) != len(selected[k].Path) {
			return len(selected[i].Path) > len(selected[k].Path)
		}
		return selected[i].seq < selected[k].seq
	})

	attrs := make([]string, 0, len(selected))
	for _, c := range selected {
		c.LastAccess = now
		attrs = append(attrs, c.String())
	}
	if len(attrs) > 0 {
		req.AddCookies(attrs...)
	}
	j.mu.Unlock()

	j.sweepExpired(now)
}

// Absorb stores the cookie records the policy accepts for this request. An
// accepted record inserts or replaces the entry with the same
// (name, domain, path) key. Rejected records are skipped silently; cookie
// handling is partial-success by design.
func (j *Jar) Absorb(cookies []SetCookie, req Request) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	j.policy.now = now

	for _, sc := range cookies {
		if !j.policy.Accepts(sc, req) {
			continue
		}

		c := &Cookie{
			Name:       sc.Name,
			Value:      sc.Value,
			Path:       sc.Path,
			Secure:     sc.Secure,
			Expires:    sc.Expires,
			Created:    now,
			LastAccess: now,
		}
		if c.Path == "" {
			c.Path = "/"
		}
		if sc.Domain == "" {
			c.Domain = strings.ToLower(req.Host())
			c.HostOnly = true
		} else {
			c.Domain = canonicalDomain(sc.Domain)
		}

		key := jarKey{name: c.Name, domain: c.Domain, path: c.Path}
		if old, ok := j.entries[key]; ok {
			c.Created = old.Created
			c.seq = old.seq
		} else {
			c.seq = j.nextSeq
			j.nextSeq++
		}
		j.entries[key] = c
	}
}

// Clear removes every cookie from the jar.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = make(map[jarKey]*Cookie)
}

// Len reports the number of stored cookies, expired ones included.
func (j *Jar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Cookies returns a snapshot of the stored cookies in creation order.
func (j *Jar) Cookies() []Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Cookie, 0, len(j.entries))
	for _, c := range j.entries {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].seq < out[k].seq })
	return out
}

// sweepExpired discards cookies whose expiry has passed. It takes the lock
// itself so callers can run it outside their own critical sections.
func (j *Jar) sweepExpired(now time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for key, c := range j.entries {
		if c.expired(now) {
			delete(j.entries, key)
		}
	}
}
