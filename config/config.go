package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/gaborage/go-session/cookiejar"
	"github.com/gaborage/go-session/httpclient"
)

// envPrefix namespaces the environment variables this package reads, e.g.
// SESSION_MAX_REDIRECTS maps to session.max_redirects.
const envPrefix = "SESSION_"

var validate = validator.New()

// Load reads configuration with priority: environment variables over the
// YAML file at path over built-in defaults. The file is optional; a missing
// file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// Double underscores nest: SESSION_COOKIES__BLOCK_THIRD_PARTY maps to
	// session.cookies.block_third_party.
	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, envPrefix)
			return "session." + strings.ReplaceAll(strings.ToLower(key), "__", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return unmarshal(k)
}

// LoadBytes parses configuration from raw YAML over the defaults. Used by
// tests and embedded-config callers.
func LoadBytes(raw []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return unmarshal(k)
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"session.max_redirects":              10,
		"session.raise_on_redirect":          true,
		"session.rate_per_second":            0.0,
		"session.rate_burst":                 0,
		"session.cookies.relaxed_host_match": false,
		"session.cookies.block_third_party":  false,

		"log.level":  "info",
		"log.pretty": false,
	}
	return k.Load(confmap.Provider(defaults, "."), nil)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ClientConfig maps the session settings onto an httpclient.Config.
func (c *Config) ClientConfig() *httpclient.Config {
	return &httpclient.Config{
		MaxRedirects:      c.Session.MaxRedirects,
		RaiseOnRedirect:   c.Session.RaiseOnRedirect,
		DefaultHeaders:    c.Session.DefaultHeaders,
		RequestsPerSecond: c.Session.RatePerSecond,
		RateBurst:         c.Session.RateBurst,
	}
}

// CookiePolicy maps the cookie switches onto a cookiejar.Policy.
func (c *Config) CookiePolicy() cookiejar.Policy {
	return cookiejar.Policy{
		RelaxedHostMatch: c.Session.Cookies.RelaxedHostMatch,
		BlockThirdParty:  c.Session.Cookies.BlockThirdParty,
	}
}
