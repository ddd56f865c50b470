// Package logging provides slog-based structured logging with console and
// JSON handlers, typed attribute helpers, and context-derived run fields.
package logging
