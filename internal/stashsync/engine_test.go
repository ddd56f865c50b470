package stashsync

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"importarr/internal/clock"
	"importarr/internal/services"
	"importarr/internal/services/stash"
	"importarr/internal/services/whisparr"
)

type fakeSceneSource struct {
	scenes []stash.Scene
	err    error
}

func (f *fakeSceneSource) AllScenes(ctx context.Context, onPage func(fetched, total int)) ([]stash.Scene, error) {
	if f.err != nil {
		return nil, f.err
	}
	if onPage != nil {
		onPage(len(f.scenes), len(f.scenes))
	}
	return f.scenes, nil
}

type fakeManager struct {
	rootFolders []whisparr.RootFolder
	movies      []whisparr.Movie

	addCalls   []whisparr.AddSceneRequest
	addErrs    map[string]error
	movieCalls int
}

func (f *fakeManager) RootFolders(ctx context.Context) ([]whisparr.RootFolder, error) {
	return f.rootFolders, nil
}

func (f *fakeManager) Movies(ctx context.Context) ([]whisparr.Movie, error) {
	f.movieCalls++
	return f.movies, nil
}

func (f *fakeManager) AddScene(ctx context.Context, req whisparr.AddSceneRequest) (*whisparr.Movie, error) {
	f.addCalls = append(f.addCalls, req)
	if err, ok := f.addErrs[req.StashID]; ok {
		return nil, err
	}
	movie := &whisparr.Movie{ID: int64(len(f.addCalls)), Title: req.Title, StashID: req.StashID}
	f.movies = append(f.movies, *movie)
	return movie, nil
}

func linkedScene(id, stashDBID, title string) stash.Scene {
	return stash.Scene{
		ID:    id,
		Title: title,
		StashIDs: []stash.ExternalID{
			{Endpoint: "https://stashdb.org/graphql", StashID: stashDBID},
		},
	}
}

func TestRunAddsOnlyMissingLinkedScenes(t *testing.T) {
	source := &fakeSceneSource{scenes: []stash.Scene{
		linkedScene("1", "aaa", "New Scene"),
		linkedScene("2", "bbb", "Known Scene"),
		{ID: "3", Title: "Unlinked Scene"},
	}}
	manager := &fakeManager{
		movies: []whisparr.Movie{{ID: 1, Title: "Known Scene", StashID: "BBB"}},
	}

	engine := New(source, manager, Options{RootFolderPath: "/data/scenes"}, clock.NewFake(time.Now()), nil)
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// The unlinked scene counts as a filtered skip, the known scene as a
	// present skip.
	if result.ScenesConsidered != 3 {
		t.Fatalf("expected 3 considered, got %d", result.ScenesConsidered)
	}
	if result.ScenesAdded != 1 || result.ScenesSkipped != 2 || result.ScenesFailed != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(manager.addCalls) != 1 || manager.addCalls[0].StashID != "aaa" {
		t.Fatalf("unexpected add calls: %+v", manager.addCalls)
	}
	if manager.addCalls[0].RootFolderPath != "/data/scenes" {
		t.Fatalf("unexpected root folder: %q", manager.addCalls[0].RootFolderPath)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	source := &fakeSceneSource{scenes: []stash.Scene{
		linkedScene("1", "aaa", "Scene A"),
		linkedScene("2", "bbb", "Scene B"),
	}}
	manager := &fakeManager{}

	engine := New(source, manager, Options{RootFolderPath: "/data/scenes"}, clock.NewFake(time.Now()), nil)

	first, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	if first.ScenesAdded != 2 {
		t.Fatalf("expected 2 added on first run, got %d", first.ScenesAdded)
	}

	second, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}
	if second.ScenesAdded != 0 || second.ScenesSkipped != 2 {
		t.Fatalf("second run not idempotent: %+v", second)
	}
	if len(manager.addCalls) != 2 {
		t.Fatalf("expected no extra add calls, got %d total", len(manager.addCalls))
	}
}

func TestRunDryRunMakesNoMutatingCalls(t *testing.T) {
	source := &fakeSceneSource{scenes: []stash.Scene{
		linkedScene("1", "aaa", "Scene A"),
		linkedScene("2", "bbb", "Scene B"),
	}}
	manager := &fakeManager{
		movies: []whisparr.Movie{{ID: 1, StashID: "bbb"}},
	}

	live := New(source, &fakeManager{movies: manager.movies}, Options{RootFolderPath: "/data"}, clock.NewFake(time.Now()), nil)
	liveResult, err := live.Run(context.Background())
	if err != nil {
		t.Fatalf("live run returned error: %v", err)
	}

	dry := New(source, manager, Options{RootFolderPath: "/data", DryRun: true}, clock.NewFake(time.Now()), nil)
	dryResult, err := dry.Run(context.Background())
	if err != nil {
		t.Fatalf("dry run returned error: %v", err)
	}

	if dryResult != liveResult {
		t.Fatalf("dry-run counts diverge: dry=%+v live=%+v", dryResult, liveResult)
	}
	if len(manager.addCalls) != 0 {
		t.Fatalf("dry run made %d add calls", len(manager.addCalls))
	}
}

func TestRunContainsPerSceneFailures(t *testing.T) {
	source := &fakeSceneSource{scenes: []stash.Scene{
		linkedScene("1", "aaa", "Scene A"),
		linkedScene("2", "bbb", "Scene B"),
		linkedScene("3", "ccc", "Scene C"),
	}}
	manager := &fakeManager{
		addErrs: map[string]error{"bbb": errors.New("connection reset")},
	}

	engine := New(source, manager, Options{RootFolderPath: "/data"}, clock.NewFake(time.Now()), nil)
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.ScenesAdded != 2 || result.ScenesFailed != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	// The failure did not stop the scenes after it.
	if len(manager.addCalls) != 3 {
		t.Fatalf("expected 3 add attempts, got %d", len(manager.addCalls))
	}
}

func TestRunTreatsExistingSceneAsSkip(t *testing.T) {
	source := &fakeSceneSource{scenes: []stash.Scene{
		linkedScene("1", "aaa", "Scene A"),
	}}
	manager := &fakeManager{
		addErrs: map[string]error{"aaa": whisparr.ErrSceneExists},
	}

	engine := New(source, manager, Options{RootFolderPath: "/data"}, clock.NewFake(time.Now()), nil)
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.ScenesSkipped != 1 || result.ScenesFailed != 0 {
		t.Fatalf("expected already-present to count as skip: %+v", result)
	}
}

func TestRunBatchDelayBetweenBatches(t *testing.T) {
	scenes := make([]stash.Scene, 5)
	for i := range scenes {
		scenes[i] = linkedScene(string(rune('1'+i)), string(rune('a'+i)), "Scene")
	}
	source := &fakeSceneSource{scenes: scenes}
	manager := &fakeManager{}
	fake := clock.NewFake(time.Now())

	engine := New(source, manager, Options{
		RootFolderPath: "/data",
		BatchSize:      2,
		BatchDelay:     3 * time.Second,
	}, fake, nil)
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// Three batches of [2,2,1] means two inter-batch pauses.
	sleeps := fake.Sleeps()
	if len(sleeps) != 2 {
		t.Fatalf("expected 2 sleeps, got %v", sleeps)
	}
	for _, d := range sleeps {
		if d != 3*time.Second {
			t.Fatalf("unexpected sleep duration %v", d)
		}
	}
}

func TestRunRequestDelayBetweenScenes(t *testing.T) {
	source := &fakeSceneSource{scenes: []stash.Scene{
		linkedScene("1", "aaa", "Scene A"),
		linkedScene("2", "bbb", "Scene B"),
		linkedScene("3", "ccc", "Scene C"),
	}}
	fake := clock.NewFake(time.Now())

	engine := New(source, &fakeManager{}, Options{
		RootFolderPath: "/data",
		RequestDelay:   500 * time.Millisecond,
	}, fake, nil)
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// Pauses fall between scenes, not after the last one.
	if sleeps := fake.Sleeps(); len(sleeps) != 2 {
		t.Fatalf("expected 2 sleeps, got %v", sleeps)
	}
}

func TestRunDiscoversRootFolder(t *testing.T) {
	source := &fakeSceneSource{scenes: []stash.Scene{linkedScene("1", "aaa", "Scene A")}}
	manager := &fakeManager{
		rootFolders: []whisparr.RootFolder{{ID: 1, Path: "/mnt/scenes"}},
	}

	engine := New(source, manager, Options{}, clock.NewFake(time.Now()), nil)
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(manager.addCalls) != 1 || manager.addCalls[0].RootFolderPath != "/mnt/scenes" {
		t.Fatalf("expected discovered root folder, got %+v", manager.addCalls)
	}
}

func TestRunFailsWhenLibraryFetchFails(t *testing.T) {
	source := &fakeSceneSource{err: errors.New("stash unreachable")}
	engine := New(source, &fakeManager{}, Options{RootFolderPath: "/data"}, clock.NewFake(time.Now()), nil)
	if _, err := engine.Run(context.Background()); err == nil {
		t.Fatal("expected error when scene fetch fails")
	}
}

func TestRunLogsCarryRunID(t *testing.T) {
	source := &fakeSceneSource{scenes: []stash.Scene{
		linkedScene("1", "aaa", "Scene A"),
	}}
	manager := &fakeManager{}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := services.WithRunID(context.Background(), "run-42")
	ctx = services.WithEngine(ctx, "stash-sync")

	engine := New(source, manager, Options{RootFolderPath: "/data"}, clock.NewFake(time.Now()), logger)
	if _, err := engine.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	logs := buf.String()
	if !strings.Contains(logs, "run_id=run-42") {
		t.Fatalf("expected run id on log lines, got:\n%s", logs)
	}
	if !strings.Contains(logs, "engine=stash-sync") {
		t.Fatalf("expected engine on log lines, got:\n%s", logs)
	}
}
