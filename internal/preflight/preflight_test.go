package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"importarr/internal/config"
	"importarr/internal/testsupport"
)

func TestRunAllSelectsChecksByMode(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMode(config.ModeFiles))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.Import.Folder, 0o755); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg)
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}

	want := []string{"Whisparr", "Import folder", "Import folder space", "Data directory"}
	if len(names) != len(want) {
		t.Fatalf("unexpected checks for files mode: %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("check %d = %q, want %q (all: %v)", i, names[i], want[i], names)
		}
	}

	cfg = testsupport.NewConfig(t, testsupport.WithMode(config.ModeStash))
	results = RunAll(context.Background(), cfg)
	for _, r := range results {
		if r.Name == "Import folder" || r.Name == "Import folder space" {
			t.Fatalf("import checks should be skipped in stash mode: %+v", results)
		}
	}
}

func TestCheckWhisparr(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/system/status" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := CheckWhisparr(context.Background(), server.URL, "good-key")
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}

	result = CheckWhisparr(context.Background(), server.URL, "bad-key")
	if result.Passed {
		t.Fatalf("expected auth failure, got %+v", result)
	}

	result = CheckWhisparr(context.Background(), "", "key")
	if result.Passed || result.Detail != "missing url" {
		t.Fatalf("expected missing url, got %+v", result)
	}
}

func TestCheckStash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphql" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := CheckStash(context.Background(), server.URL, "key")
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}

	result = CheckStash(context.Background(), "http://127.0.0.1:1", "key")
	if result.Passed {
		t.Fatalf("expected connection failure, got %+v", result)
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("Import folder", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got %+v", result)
	}

	result = CheckDirectoryAccess("Import folder", filepath.Join(dir, "absent"))
	if result.Passed {
		t.Fatalf("expected failure for missing dir, got %+v", result)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result = CheckDirectoryAccess("Import folder", file)
	if result.Passed {
		t.Fatalf("expected failure for non-directory, got %+v", result)
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := CheckDiskSpace("Import folder space", t.TempDir())
	// Temp dirs in the test environment should have at least a gigabyte.
	if !result.Passed {
		t.Skipf("temp filesystem too small for check: %+v", result)
	}

	result = CheckDiskSpace("Import folder space", filepath.Join(t.TempDir(), "absent"))
	if result.Passed {
		t.Fatalf("expected failure for missing path, got %+v", result)
	}
}

func TestAllPassed(t *testing.T) {
	if !AllPassed([]Result{{Passed: true}, {Passed: true}}) {
		t.Fatal("expected all passed")
	}
	if AllPassed([]Result{{Passed: true}, {Passed: false}}) {
		t.Fatal("expected failure to propagate")
	}
	if !AllPassed(nil) {
		t.Fatal("empty results should pass")
	}
}
