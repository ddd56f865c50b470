// Package whisparr implements the Whisparr v3 API client used for scene
// lookups, additions, and manual imports.
package whisparr
