package main

import (
	"strings"
	"testing"
)

func TestRealMainRequiresTableName(t *testing.T) {
	var stdout, stderr strings.Builder
	code := realMain(nil, &stdout, &stderr)
	if code == 0 {
		t.Fatal("exit code = 0, want nonzero")
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Errorf("stderr = %q, want usage message", stderr.String())
	}
}

func TestRealMainRunsQuickstart(t *testing.T) {
	var stdout, stderr strings.Builder
	code := realMain([]string{"-base-path", t.TempDir(), "trips"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"=== Insert Data ===",
		"=== Time Travel Query ===",
		"=== Point-in-time Query ===",
		"trip count: 10, non null rider count: 10",
		"trip count: 10, non null rider count: 8",
		"total count: 10",
		"total count: 8",
		"=== Insert Overwrite ===",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestAsOfForms(t *testing.T) {
	forms, err := asOfForms("20210728141108123")
	if err != nil {
		t.Fatalf("asOfForms failed: %v", err)
	}
	want := []string{
		"20210728141108",
		"2021-07-28 14:11:08.123",
		"2021-07-28",
	}
	for i := range want {
		if forms[i] != want[i] {
			t.Errorf("forms[%d] = %s, want %s", i, forms[i], want[i])
		}
	}
}
