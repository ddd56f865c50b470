// Package config loads, normalizes, and validates importarr configuration
// from TOML. Credentials may also arrive via environment variables
// (WHISPARR_API_KEY, STASH_API_KEY, IMPORTARR_NTFY_TOPIC); validation is
// mode-aware so only the credentials the selected engines need are required.
package config
