// Package services holds the error taxonomy and context plumbing shared by
// the API clients and engines.
package services
