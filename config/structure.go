// Package config loads session configuration from layered sources:
// built-in defaults, an optional YAML file, and environment variables, in
// increasing priority.
package config

// Config is the root configuration document.
type Config struct {
	Session SessionConfig `koanf:"session"`
	Log     LogConfig     `koanf:"log"`
}

// SessionConfig holds the HTTP session settings.
type SessionConfig struct {
	MaxRedirects    int               `koanf:"max_redirects" validate:"gte=0"`
	RaiseOnRedirect bool              `koanf:"raise_on_redirect"`
	RatePerSecond   float64           `koanf:"rate_per_second" validate:"gte=0"`
	RateBurst       int               `koanf:"rate_burst" validate:"gte=0"`
	DefaultHeaders  map[string]string `koanf:"default_headers"`
	Cookies         CookieConfig      `koanf:"cookies"`
}

// CookieConfig holds the cookie policy switches. Both default to off, which
// is the strict, host-only matching mode.
type CookieConfig struct {
	RelaxedHostMatch bool `koanf:"relaxed_host_match"`
	BlockThirdParty  bool `koanf:"block_third_party"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Pretty bool   `koanf:"pretty"`
}
