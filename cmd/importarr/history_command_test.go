package main

import "testing"

func TestHistoryWithNoRuns(t *testing.T) {
	configPath := writeCLIConfig(t)

	out, _, err := runCLI(t, []string{"--config", configPath, "history"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded yet")
}

func TestNotifyTestRequiresTopic(t *testing.T) {
	configPath := writeCLIConfig(t)

	_, _, err := runCLI(t, []string{"--config", configPath, "notify", "test"})
	if err == nil {
		t.Fatal("expected error when no ntfy topic is configured")
	}
	requireContains(t, err.Error(), "ntfy topic")
}
