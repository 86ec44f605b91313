package dispatch

import (
	"context"
	"errors"

	"github.com/yourusername/openclaw-adapter/internal/gateway"
)

var errNoGateway = errors.New("gateway not configured")

// ConfigError reports that the gateway could not be configured.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "invalid_config:" + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// Unavailable stands in for the gateway when it could not be configured.
// Every remote operation fails with a *ConfigError; local methods keep working.
type Unavailable struct {
	Err error
}

func (u Unavailable) fail() (any, error) {
	err := u.Err
	if err == nil {
		err = errNoGateway
	}
	return nil, &ConfigError{Err: err}
}

func (u Unavailable) Status(context.Context) (any, error) { return u.fail() }
func (u Unavailable) SessionStatus(context.Context, gateway.Params) (any, error) {
	return u.fail()
}
func (u Unavailable) SessionSend(context.Context, gateway.Params) (any, error) { return u.fail() }
func (u Unavailable) Pairing(context.Context, gateway.Params) (any, error)     { return u.fail() }
func (u Unavailable) SkillSync(context.Context, gateway.Params) (any, error)   { return u.fail() }
func (u Unavailable) RoutingMap(context.Context, gateway.Params) (any, error)  { return u.fail() }
func (u Unavailable) AuditReplay(context.Context, gateway.Params) (any, error) { return u.fail() }
