package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"cadence/internal/catalog"
)

func TestCatalogListAndFilter(t *testing.T) {
	env := setupCLITestEnv(t)
	store := env.openStore(t)
	ctx := context.Background()

	seedTrack(t, store, "Alpha", "Artist One", catalog.StatusPending)
	beta := seedTrack(t, store, "Beta", "Artist Two", catalog.StatusPending)
	beta.SetFailed("provider unreachable")
	if err := store.Update(ctx, beta); err != nil {
		t.Fatalf("fail beta: %v", err)
	}

	out, _, err := runCLI(t, []string{"catalog", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog list: %v", err)
	}
	requireContains(t, out, "Alpha")
	requireContains(t, out, "Beta")

	out, _, err = runCLI(t, []string{"catalog", "list", "--status", "failed"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog list --status failed: %v", err)
	}
	requireContains(t, out, "Beta")
	if strings.Contains(out, "Alpha") {
		t.Fatalf("pending track leaked into failed filter: %q", out)
	}

	_, _, err = runCLI(t, []string{"catalog", "list", "--status", "bogus"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestCatalogRetryAndClearFailed(t *testing.T) {
	env := setupCLITestEnv(t)
	store := env.openStore(t)
	ctx := context.Background()

	failed := seedTrack(t, store, "Stormy", "Weather Report", catalog.StatusPending)
	failed.SetFailed("timeout")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("fail track: %v", err)
	}

	out, _, err := runCLI(t, []string{"catalog", "retry"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog retry: %v", err)
	}
	requireContains(t, out, "Retried 1 failed tracks")

	refreshed, err := store.GetByID(ctx, failed.ID)
	if err != nil {
		t.Fatalf("get track: %v", err)
	}
	if refreshed.Status != catalog.StatusPending {
		t.Fatalf("expected pending after retry, got %s", refreshed.Status)
	}

	refreshed.SetFailed("timeout again")
	if err := store.Update(ctx, refreshed); err != nil {
		t.Fatalf("refail track: %v", err)
	}

	out, _, err = runCLI(t, []string{"catalog", "clear-failed"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog clear-failed: %v", err)
	}
	requireContains(t, out, "Cleared 1 failed tracks")
}

func TestCatalogRetrySpecificID(t *testing.T) {
	env := setupCLITestEnv(t)
	store := env.openStore(t)
	ctx := context.Background()

	pending := seedTrack(t, store, "Fine", "Artist", catalog.StatusPending)
	failed := seedTrack(t, store, "Broken", "Artist", catalog.StatusPending)
	failed.SetFailed("boom")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("fail track: %v", err)
	}

	out, _, err := runCLI(t, []string{"catalog", "retry", fmt.Sprintf("%d", failed.ID)}, env.configPath)
	if err != nil {
		t.Fatalf("catalog retry id: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Track %d reset for retry", failed.ID))

	out, _, err = runCLI(t, []string{"catalog", "retry", fmt.Sprintf("%d", pending.ID)}, env.configPath)
	if err != nil {
		t.Fatalf("catalog retry pending id: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Track %d is not in failed state", pending.ID))

	out, _, err = runCLI(t, []string{"catalog", "retry", "99999"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog retry missing id: %v", err)
	}
	requireContains(t, out, "Track 99999 not found")

	_, _, err = runCLI(t, []string{"catalog", "retry", "zero"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestCatalogClearAndHealth(t *testing.T) {
	env := setupCLITestEnv(t)
	store := env.openStore(t)

	seedTrack(t, store, "One", "Artist", catalog.StatusPending)
	seedTrack(t, store, "Two", "Artist", catalog.StatusPending)

	out, _, err := runCLI(t, []string{"catalog", "health"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog health: %v", err)
	}
	requireContains(t, out, "tracks table present: yes")
	requireContains(t, out, "Integrity check: yes")
	requireContains(t, out, "Total tracks: 2")

	out, _, err = runCLI(t, []string{"catalog", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog clear: %v", err)
	}
	requireContains(t, out, "Cleared 2 catalog tracks")

	out, _, err = runCLI(t, []string{"catalog", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog list after clear: %v", err)
	}
	requireContains(t, out, "Catalog is empty")
}
