package iscab

import "log/slog"

// Option configures a Cabinet.
type Option func(*Cabinet)

// WithLogger sets the logger for per-file diagnostics during
// extraction. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cabinet) {
		c.logger = logger
	}
}

// WithSetupRoot sets the directory searched for loose files. Open
// defaults it to the directory containing the header.
func WithSetupRoot(dir string) Option {
	return func(c *Cabinet) {
		c.setupRoot = dir
	}
}
