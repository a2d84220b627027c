package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("enrich", statusError, "cache not writable", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "enrich:", "[ERROR] cache not writable")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("score", statusOK, "ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Catalog", false)
	if len(lines) != 2 {
		t.Fatalf("expected header and rule, got %d lines", len(lines))
	}
	if lines[0] != "== Catalog ==" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if len(lines[1]) != len(lines[0]) {
		t.Fatalf("rule length %d does not match header length %d", len(lines[1]), len(lines[0]))
	}
}

func TestIsInteractiveNonFile(t *testing.T) {
	if isInteractive(io.Discard) {
		t.Fatal("expected non-file writer to be non-interactive")
	}
}

func TestRenderTablePlainStyle(t *testing.T) {
	out := renderTable(
		[]string{"ID", "Title"},
		[][]string{{"1", "Weightless"}},
		[]columnAlignment{alignRight, alignLeft},
		false,
	)
	if strings.Contains(out, "─") || strings.Contains(out, "│") {
		t.Fatalf("plain style should not draw borders: %q", out)
	}
	requireContains(t, out, "Weightless")
}

func TestRenderTableRoundedStyle(t *testing.T) {
	out := renderTable(
		[]string{"ID", "Title"},
		[][]string{{"1", "Weightless"}},
		[]columnAlignment{alignRight, alignLeft},
		true,
	)
	requireContains(t, out, "│")
	requireContains(t, out, "Weightless")
}
