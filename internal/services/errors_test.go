package services_test

import (
	"errors"
	"strings"
	"testing"

	"importarr/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrTransport, "stash-sync", "add scene", "Whisparr rejected the request", cause)

	if !errors.Is(err, services.ErrTransport) {
		t.Fatal("wrapped error should match its marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error should match its cause")
	}
	for _, fragment := range []string{"stash-sync", "add scene", "Whisparr rejected the request", "connection refused"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q missing %q", err, fragment)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "file-import", "", "something odd", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("nil marker should default to transient")
	}
}

func TestIsFatal(t *testing.T) {
	if !services.IsFatal(services.Wrap(services.ErrConfiguration, "runner", "startup", "missing credential", nil)) {
		t.Error("configuration errors are fatal")
	}
	if services.IsFatal(services.Wrap(services.ErrTransport, "stash-sync", "fetch", "timeout", nil)) {
		t.Error("transport errors are not fatal")
	}
	if services.IsFatal(nil) {
		t.Error("nil is not fatal")
	}
}
