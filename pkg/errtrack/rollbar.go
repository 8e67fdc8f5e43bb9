package errtrack

import (
	"github.com/rollbar/rollbar-go"

	"github.com/noah-isme/residence-portal-api/pkg/config"
)

// Reporter forwards unexpected failures to an external tracker.
type Reporter interface {
	Error(err error, extras map[string]interface{})
	Critical(err error, extras map[string]interface{})
	Flush()
}

// New returns a Rollbar reporter when a token is configured, otherwise a no-op.
func New(cfg *config.Config) Reporter {
	if cfg.ErrorTracking.RollbarToken == "" {
		return Nop{}
	}
	rollbar.SetToken(cfg.ErrorTracking.RollbarToken)
	rollbar.SetEnvironment(cfg.Env)
	rollbar.SetCodeVersion(cfg.ErrorTracking.CodeVersion)
	if cfg.ErrorTracking.ServerHost != "" {
		rollbar.SetServerHost(cfg.ErrorTracking.ServerHost)
	}
	rollbar.SetEnabled(true)
	return rollbarReporter{}
}

type rollbarReporter struct{}

func (rollbarReporter) Error(err error, extras map[string]interface{}) {
	rollbar.Error(err, extras)
}

func (rollbarReporter) Critical(err error, extras map[string]interface{}) {
	rollbar.Critical(err, extras)
}

func (rollbarReporter) Flush() {
	rollbar.Wait()
}

// Nop discards reports.
type Nop struct{}

func (Nop) Error(error, map[string]interface{})    {}
func (Nop) Critical(error, map[string]interface{}) {}
func (Nop) Flush()                                 {}
