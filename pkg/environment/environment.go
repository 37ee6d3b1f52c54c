// Package environment identifies which deployment mode the process runs
// in. The error translator uses it to decide whether internal error detail
// may appear in responses.
package environment

import "context"

// Environment represents the application deployment mode.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config reads the deployment mode from the process environment.
type Config struct {
	Env Environment `env:"APP_ENV" envDefault:"development"`
}

// IsProduction reports whether e is a production-like mode. Staging counts:
// it serves real tenant data, so internal detail must not leak there either.
func (e Environment) IsProduction() bool {
	switch e {
	case Production, "prod", Staging, "stage":
		return true
	}
	return false
}

type contextKey struct{}

// WithContext attaches the environment to ctx.
func WithContext(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, contextKey{}, env)
}

// FromContext retrieves the environment, defaulting to Development.
func FromContext(ctx context.Context) Environment {
	if env, ok := ctx.Value(contextKey{}).(Environment); ok {
		return env
	}
	return Development
}
