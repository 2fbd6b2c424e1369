package automation

import (
	"encoding/json"
	"testing"
)

func TestStatusSnapshot_RequiresIsRunning(t *testing.T) {
	var snap StatusSnapshot
	if err := json.Unmarshal([]byte(`{"status":"idle"}`), &snap); err == nil {
		t.Fatalf("Unmarshal without isRunning returned nil error")
	}
	if err := json.Unmarshal([]byte(`null`), &snap); err == nil {
		t.Fatalf("Unmarshal null returned nil error")
	}
}

func TestStatusSnapshot_RejectsNegativeSteps(t *testing.T) {
	var snap StatusSnapshot
	if err := json.Unmarshal([]byte(`{"isRunning":true,"currentStep":-1,"totalSteps":5}`), &snap); err == nil {
		t.Fatalf("Unmarshal negative step returned nil error")
	}
}

func TestStatusSnapshot_LogFieldPreference(t *testing.T) {
	var snap StatusSnapshot
	raw := `{"isRunning":false,"logs":[{"timestamp":"a","message":"new","level":"info"}],"printMessages":[{"timestamp":"b","message":"old","level":"info"}]}`
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if len(snap.Logs) != 1 || snap.Logs[0].Message != "new" {
		t.Fatalf("Logs = %#v, want logs field to win", snap.Logs)
	}

	raw = `{"isRunning":false,"printMessages":[{"timestamp":"b","message":"old","level":"success"}]}`
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if len(snap.Logs) != 1 || snap.Logs[0].Level != LevelSuccess {
		t.Fatalf("Logs = %#v, want printMessages fallback", snap.Logs)
	}
}

func TestStatusSnapshot_GeneratingShapeMismatchFails(t *testing.T) {
	var snap StatusSnapshot
	if err := json.Unmarshal([]byte(`{"isRunning":true,"currentGeneratingPost":[1,2]}`), &snap); err == nil {
		t.Fatalf("Unmarshal array generating post returned nil error")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"error":   LevelError,
		"Warn":    LevelWarning,
		"warning": LevelWarning,
		"SUCCESS": LevelSuccess,
		"debug":   LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Fatalf("ParseLogLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGeneratingState_RoundTrip(t *testing.T) {
	var g GeneratingState
	raw := `{"keyword":"coffee","startedAt":"2025-01-01T00:00:00Z","status":"writing","isGenerating":true}`
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if !g.Active() {
		t.Fatalf("Active() = false, want true")
	}
	out, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var back GeneratingPost
	if err := json.Unmarshal(out, &back); err != nil || back.Keyword != "coffee" {
		t.Fatalf("round trip = %s (%v), want keyword coffee", out, err)
	}

	out, err = json.Marshal(GeneratingState{})
	if err != nil || string(out) != "null" {
		t.Fatalf("Marshal(none) = %s (%v), want null", out, err)
	}
}
