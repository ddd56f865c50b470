package whisparr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewValidatesInputs(t *testing.T) {
	if _, err := New("", "key"); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := New("http://whisparr:9090", ""); err == nil {
		t.Fatal("expected error for empty api key")
	}
	client, err := New("http://whisparr:9090/", "key")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if client.baseURL != "http://whisparr:9090" {
		t.Fatalf("expected trailing slash trimmed, got %q", client.baseURL)
	}
}

func TestRootFolders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/rootfolder" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Fatalf("missing api key header")
		}
		_ = json.NewEncoder(w).Encode([]RootFolder{{ID: 1, Path: "/data/scenes"}})
	}))
	defer server.Close()

	client, err := New(server.URL, "secret")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	folders, err := client.RootFolders(context.Background())
	if err != nil {
		t.Fatalf("RootFolders returned error: %v", err)
	}
	if len(folders) != 1 || folders[0].Path != "/data/scenes" {
		t.Fatalf("unexpected folders: %+v", folders)
	}
}

func TestAddSceneBuildsPayload(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/movie" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Movie{ID: 42, Title: "Example Scene", StashID: "abc-123"})
	}))
	defer server.Close()

	client, err := New(server.URL, "secret")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	movie, err := client.AddScene(context.Background(), AddSceneRequest{
		StashID:          "abc-123",
		Title:            "Example Scene",
		QualityProfileID: 4,
		RootFolderPath:   "/data/scenes",
		TagIDs:           []int{7},
	})
	if err != nil {
		t.Fatalf("AddScene returned error: %v", err)
	}
	if movie.ID != 42 {
		t.Fatalf("expected movie id 42, got %d", movie.ID)
	}
	if payload["foreignId"] != "abc-123" || payload["stashId"] != "abc-123" {
		t.Fatalf("stash id not carried in payload: %+v", payload)
	}
	if payload["monitored"] != true {
		t.Fatalf("expected monitored true: %+v", payload)
	}
	options, ok := payload["addOptions"].(map[string]any)
	if !ok {
		t.Fatalf("missing addOptions: %+v", payload)
	}
	if options["searchForMovie"] != false || options["monitor"] != "movieOnly" {
		t.Fatalf("unexpected add options: %+v", options)
	}
}

func TestAddSceneAlreadyExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`[{"errorMessage":"This movie has already been added"}]`))
	}))
	defer server.Close()

	client, err := New(server.URL, "secret")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.AddScene(context.Background(), AddSceneRequest{StashID: "abc", RootFolderPath: "/data"})
	if !errors.Is(err, ErrSceneExists) {
		t.Fatalf("expected ErrSceneExists, got %v", err)
	}
}

func TestAddSceneNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"NotFound"}`))
	}))
	defer server.Close()

	client, err := New(server.URL, "secret")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.AddScene(context.Background(), AddSceneRequest{StashID: "missing", RootFolderPath: "/data"})
	if !errors.Is(err, ErrSceneNotFound) {
		t.Fatalf("expected ErrSceneNotFound, got %v", err)
	}
}

func TestScanFolderFiltersExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/manualimport" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("folder") != "/import/batch1" {
			t.Fatalf("unexpected folder query %q", query.Get("folder"))
		}
		if query.Get("filterExistingFiles") != "true" {
			t.Fatalf("expected filterExistingFiles=true")
		}
		_ = json.NewEncoder(w).Encode([]ImportFile{
			{Path: "/import/batch1/a.mp4", Movie: &MovieRef{ID: 5, Title: "A", Path: "/data/scenes/A"}},
			{Path: "/import/batch1/b.mp4", Rejections: []Rejection{{Reason: "Unknown Movie"}}},
		})
	}))
	defer server.Close()

	client, err := New(server.URL, "secret")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	files, err := client.ScanFolder(context.Background(), "/import/batch1")
	if err != nil {
		t.Fatalf("ScanFolder returned error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if !files[0].Matched() {
		t.Fatal("expected first file to be matched")
	}
	if files[1].Matched() {
		t.Fatal("expected second file to be unmatched")
	}
	if reasons := files[1].RejectionReasons(); len(reasons) != 1 || reasons[0] != "Unknown Movie" {
		t.Fatalf("unexpected rejection reasons: %v", reasons)
	}
}

func TestConfirmImport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/command" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var cmd map[string]any
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		if cmd["name"] != "ManualImport" {
			t.Fatalf("unexpected command name %v", cmd["name"])
		}
		if cmd["importMode"] != "copy" {
			t.Fatalf("unexpected import mode %v", cmd["importMode"])
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(commandResponse{ID: 99})
	}))
	defer server.Close()

	client, err := New(server.URL, "secret")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	id, err := client.ConfirmImport(context.Background(), []ImportRequest{{Path: "/data/scenes/A/a.mp4", MovieID: 5, ImportMode: "copy"}}, "copy")
	if err != nil {
		t.Fatalf("ConfirmImport returned error: %v", err)
	}
	if id != 99 {
		t.Fatalf("expected command id 99, got %d", id)
	}
}

func TestConfirmImportRequiresFiles(t *testing.T) {
	client, err := New("http://whisparr:9090", "secret")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.ConfirmImport(context.Background(), nil, "copy"); err == nil {
		t.Fatal("expected error for empty file list")
	}
}
