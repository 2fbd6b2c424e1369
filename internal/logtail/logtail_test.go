package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestLineLevel(t *testing.T) {
	tests := []struct {
		line string
		want Level
	}{
		{"2026-10-19 09:12:44 WARN <app/poller.go:121> poller: status poll failed", LevelWarn},
		{"2026-10-19 09:12:44 ERRO http: request failed", LevelError},
		{"2026-10-19 09:12:44 DEBU http: request method=GET", LevelDebug},
		{"INFO postpilot started", LevelInfo},
		{"  continuation line that mentions WARN later", LevelUnknown},
		{"", LevelUnknown},
	}
	for _, tt := range tests {
		if got := LineLevel(tt.line); got != tt.want {
			t.Errorf("LineLevel(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	lines := []string{
		"2026-10-19 09:00:00 DEBU http: request",
		"2026-10-19 09:00:01 INFO postpilot started",
		"2026-10-19 09:00:02 WARN poller: status poll failed",
		"  detail for the warning",
		"2026-10-19 09:00:03 INFO automation run started",
		"2026-10-19 09:00:04 ERRO cache: write failed",
	}

	got := Filter(lines, ParseLevel("warn"))
	want := []string{lines[2], lines[3], lines[5]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter(warn) = %v, want %v", got, want)
	}

	if got := Filter(lines, ParseLevel("debug")); len(got) != len(lines) {
		t.Fatalf("Filter(debug) kept %d lines, want all %d", len(got), len(lines))
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
		"loud":    LevelUnknown,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestColorize_KeepsText(t *testing.T) {
	lines := []string{
		"2026-10-19 09:00:01 INFO postpilot started",
		"2026-10-19 09:00:04 ERRO cache: write failed",
	}
	got := Colorize(lines)
	if len(got) != len(lines) {
		t.Fatalf("Colorize returned %d lines, want %d", len(got), len(lines))
	}
	if got[0] != lines[0] {
		t.Fatalf("Colorize(info) = %q, want unchanged", got[0])
	}
	if !strings.Contains(got[1], "cache: write failed") {
		t.Fatalf("Colorize(error) = %q, want original text kept", got[1])
	}
}
