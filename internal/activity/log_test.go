package activity

import (
	"fmt"
	"strings"
	"testing"
)

func TestRecordNewestFirst(t *testing.T) {
	log := NewLog()
	log.Record(Event{ToolName: "first"})
	log.Record(Event{ToolName: "second"})

	events := log.List(10)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ToolName != "second" || events[1].ToolName != "first" {
		t.Fatalf("expected newest first, got %q then %q", events[0].ToolName, events[1].ToolName)
	}
	if events[0].EventID == "" {
		t.Fatal("expected event id to be assigned")
	}
	if events[0].Timestamp.IsZero() {
		t.Fatal("expected timestamp to be assigned")
	}
}

func TestRecordEvictsOldest(t *testing.T) {
	log := NewLog()
	for i := 0; i < maxEvents+7; i++ {
		log.Record(Event{ToolName: fmt.Sprintf("tool-%d", i)})
	}

	events := log.List(maxEvents)
	if len(events) != maxEvents {
		t.Fatalf("expected %d events, got %d", maxEvents, len(events))
	}
	if events[0].ToolName != fmt.Sprintf("tool-%d", maxEvents+6) {
		t.Fatalf("unexpected newest event %q", events[0].ToolName)
	}
	if events[maxEvents-1].ToolName != "tool-7" {
		t.Fatalf("unexpected oldest event %q", events[maxEvents-1].ToolName)
	}
}

func TestListClampsLimit(t *testing.T) {
	log := NewLog()
	for i := 0; i < 5; i++ {
		log.Record(Event{ToolName: fmt.Sprintf("tool-%d", i)})
	}

	if got := len(log.List(0)); got != 1 {
		t.Fatalf("expected limit 0 to clamp to 1 event, got %d", got)
	}
	if got := len(log.List(-3)); got != 1 {
		t.Fatalf("expected negative limit to clamp to 1 event, got %d", got)
	}
	if got := len(log.List(500)); got != 5 {
		t.Fatalf("expected oversized limit to return all 5, got %d", got)
	}
}

func TestCompactValueStrings(t *testing.T) {
	got := compactValue("  several\n\twords   spread  out  ", maxMapItems, maxListItems)
	if got != "several words spread out" {
		t.Fatalf("expected whitespace collapsed, got %q", got)
	}

	long := strings.Repeat("a", 200)
	compacted, ok := compactValue(long, maxMapItems, maxListItems).(string)
	if !ok {
		t.Fatal("expected string result")
	}
	if len(compacted) != maxStringRunes {
		t.Fatalf("expected %d chars, got %d", maxStringRunes, len(compacted))
	}
	if !strings.HasSuffix(compacted, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", compacted)
	}
}

func TestCompactValueCollections(t *testing.T) {
	big := map[string]any{}
	for i := 0; i < 20; i++ {
		big[fmt.Sprintf("key-%d", i)] = i
	}
	compacted, ok := compactValue(big, maxMapItems, maxListItems).(map[string]any)
	if !ok {
		t.Fatal("expected map result")
	}
	if len(compacted) != maxMapItems {
		t.Fatalf("expected %d entries, got %d", maxMapItems, len(compacted))
	}

	list := []any{1, 2, 3, 4, 5, 6, 7, 8}
	trimmed, ok := compactValue(list, maxMapItems, maxListItems).([]any)
	if !ok {
		t.Fatal("expected slice result")
	}
	if len(trimmed) != maxListItems {
		t.Fatalf("expected %d items, got %d", maxListItems, len(trimmed))
	}

	nested := map[string]any{
		"rows": []any{
			map[string]any{"note": strings.Repeat("x", 150)},
		},
	}
	out := compactValue(nested, maxMapItems, maxListItems).(map[string]any)
	row := out["rows"].([]any)[0].(map[string]any)
	note := row["note"].(string)
	if len(note) != maxStringRunes || !strings.HasSuffix(note, "...") {
		t.Fatalf("expected nested string truncated, got %q", note)
	}
}
