package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSortByRelevance(t *testing.T) {
	matches := []Match{
		{Text: "New session foo", Relevance: 0.001},
		{Text: "Attach to workspace", Relevance: 0.5},
		{Text: "Attach to work", Relevance: 1},
		{Text: "Attach to worker", Relevance: 0.5},
	}

	SortByRelevance(matches)

	want := []string{"Attach to work", "Attach to workspace", "Attach to worker", "New session foo"}
	for i, w := range want {
		if matches[i].Text != w {
			t.Errorf("matches[%d]: got %q, want %q", i, matches[i].Text, w)
		}
	}
}

func TestAction_String(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{ActionAttach, "attach"},
		{ActionNewSession, "new"},
		{ActionNewViaSubtool, "subtool"},
		{Action(42), "action(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.action.String(); got != tt.want {
				t.Errorf("String(): got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatch_JSON(t *testing.T) {
	m := Match{
		Text:      "Create Tmuxinator  proj",
		Relevance: 1,
		Action:    ActionNewViaSubtool,
		Target:    "proj",
		Program:   "konsole",
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !strings.Contains(string(data), `"action":"subtool"`) {
		t.Errorf("JSON output missing readable action, got: %s", string(data))
	}
	if strings.Contains(string(data), `"path"`) {
		t.Errorf("empty path should be omitted, got: %s", string(data))
	}

	var back Match
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if back != m {
		t.Errorf("round trip: got %+v, want %+v", back, m)
	}
}

func TestAction_UnmarshalUnknown(t *testing.T) {
	var a Action
	if err := a.UnmarshalText([]byte("detach")); err == nil {
		t.Error("expected error for unknown action")
	}
}
