// Package preflight provides readiness checks for the external services and
// filesystem paths an import run depends on.
//
// The runner calls RunAll before each cycle so a misconfigured endpoint or
// unwritable import folder fails fast instead of partway through a batch.
// The CLI "importarr status" command uses the individual check functions to
// display service health.
package preflight
