package logkit

import "errors"

var (
	// ErrNotifierUnavailable means notifications were requested but no
	// NotifierFactory was wired in. Setup degrades with a warning instead of
	// failing; the sentinel exists for callers that want to detect this.
	ErrNotifierUnavailable = errors.New("notifier unavailable")
)

// ConfigError reports an invalid option value or combination. It is returned
// before any global state is touched.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return "logkit: invalid " + e.Option + ": " + e.Reason
}

func configErr(option, reason string) error {
	return &ConfigError{Option: option, Reason: reason}
}
