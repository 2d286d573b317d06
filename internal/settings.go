package internal

import "github.com/dmitrymomot/dispatch/pkg/cookie"

// DispatcherSettings is the file and environment form of the dispatcher
// options. Zero values keep the defaults.
type DispatcherSettings struct {
	Methods           []string `env:"DISPATCH_METHODS" envSeparator:"," yaml:"methods"`
	DefaultController string   `env:"DISPATCH_DEFAULT_CONTROLLER" yaml:"default_controller"`
	DefaultAction     string   `env:"DISPATCH_DEFAULT_ACTION" yaml:"default_action"`
	Limit             int      `env:"DISPATCH_LIMIT" yaml:"limit"`
	MaxLimit          int      `env:"DISPATCH_MAX_LIMIT" yaml:"max_limit"`
	Debug             bool     `env:"DISPATCH_DEBUG" yaml:"debug"`
}

// SessionSettings configures the session cookie.
type SessionSettings struct {
	CookieName string `env:"SESSION_COOKIE_NAME" yaml:"cookie_name"`
	MaxAge     int    `env:"SESSION_MAX_AGE" yaml:"max_age"` // seconds
	Secret     string `env:"SESSION_SECRET" yaml:"secret"` // 32+ bytes signs the cookie
	Secure     bool   `env:"SESSION_SECURE" yaml:"secure"`
	Store      string `env:"SESSION_STORE" envDefault:"memory" yaml:"store"` // memory or redis
}

// Options converts s to dispatcher options.
func (s DispatcherSettings) Options() []DispatcherOption {
	var opts []DispatcherOption
	if len(s.Methods) > 0 {
		opts = append(opts, WithMethods(s.Methods...))
	}
	if s.DefaultController != "" {
		opts = append(opts, WithDefaultController(s.DefaultController))
	}
	if s.DefaultAction != "" {
		opts = append(opts, WithDefaultAction(s.DefaultAction))
	}
	if s.Limit > 0 || s.MaxLimit > 0 {
		opts = append(opts, WithLimit(s.Limit, s.MaxLimit))
	}
	if s.Debug {
		opts = append(opts, WithDebug(true))
	}
	return opts
}

// Options converts s to session manager options.
func (s SessionSettings) Options() []SessionOption {
	var opts []SessionOption
	if s.CookieName != "" {
		opts = append(opts, WithSessionCookieName(s.CookieName))
	}
	if s.MaxAge > 0 {
		opts = append(opts, WithSessionMaxAge(s.MaxAge))
	}
	var cookieOpts []cookie.Option
	if s.Secret != "" {
		cookieOpts = append(cookieOpts, cookie.WithSecret(s.Secret))
	}
	if s.Secure {
		cookieOpts = append(cookieOpts, cookie.WithSecure(true))
	}
	if len(cookieOpts) > 0 {
		opts = append(opts, WithSessionCookie(cookieOpts...))
	}
	return opts
}
