package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks errors that should abort startup.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransport marks failed calls to Whisparr or Stash.
	ErrTransport = errors.New("transport error")
	// ErrFilesystem marks failed copy/move operations.
	ErrFilesystem = errors.New("filesystem error")
	// ErrTransient marks recoverable failures without a more specific class.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes engine context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, engine, operation, message string, err error) error {
	detail := buildDetail(engine, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should terminate the process rather than
// be contained at the item or cycle level.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(engine, operation, message string) string {
	parts := make([]string, 0, 3)
	if engine = strings.TrimSpace(engine); engine != "" {
		parts = append(parts, engine)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
