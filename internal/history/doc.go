// Package history persists per-run results to SQLite so past runs can be
// inspected from the CLI.
package history
