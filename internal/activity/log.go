// Package activity keeps a small in-memory trail of recent tool
// invocations so operators can see what the agent has been asked and what
// it answered, without standing up external storage.
package activity

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	maxEvents = 50

	maxMapItems    = 8
	maxListItems   = 5
	maxStringRunes = 120
)

// Event is one recorded tool invocation. Payload and previews are
// compacted copies, safe to serve directly.
type Event struct {
	EventID       string         `json:"event_id"`
	Timestamp     time.Time      `json:"timestamp"`
	ToolName      string         `json:"tool_name"`
	Path          string         `json:"path"`
	Source        string         `json:"source"`
	Status        string         `json:"status"`
	Payload       any            `json:"payload"`
	ResultPreview map[string]any `json:"result_preview"`
}

// Recorder receives tool invocation events.
type Recorder interface {
	Record(event Event)
	List(limit int) []Event
}

// Log is a bounded, newest-first, thread-safe Recorder.
type Log struct {
	mu     sync.Mutex
	events []Event
}

// NewLog creates an empty activity log.
func NewLog() *Log {
	return &Log{}
}

// Record compacts and stores an event, evicting the oldest beyond the
// capacity. Missing event IDs and timestamps are filled in.
func (l *Log) Record(event Event) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Payload = compactValue(event.Payload, maxMapItems, maxListItems)
	if compacted, ok := compactValue(event.ResultPreview, maxMapItems, maxListItems).(map[string]any); ok {
		event.ResultPreview = compacted
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append([]Event{event}, l.events...)
	if len(l.events) > maxEvents {
		l.events = l.events[:maxEvents]
	}
}

// List returns up to limit events, newest first. The limit is clamped to
// [1, capacity].
func (l *Log) List(limit int) []Event {
	if limit < 1 {
		limit = 1
	}
	if limit > maxEvents {
		limit = maxEvents
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limit > len(l.events) {
		limit = len(l.events)
	}
	out := make([]Event, limit)
	copy(out, l.events[:limit])
	return out
}

// compactValue trims maps, slices, and strings so stored previews stay
// small regardless of how large a tool response was.
func compactValue(value any, mapItems, listItems int) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		count := 0
		for key, item := range v {
			if count >= mapItems {
				break
			}
			out[key] = compactValue(item, mapItems, listItems)
			count++
		}
		return out
	case []any:
		n := len(v)
		if n > listItems {
			n = listItems
		}
		out := make([]any, n)
		for i := 0; i < n; i++ {
			out[i] = compactValue(v[i], mapItems, listItems)
		}
		return out
	case string:
		normalized := strings.Join(strings.Fields(v), " ")
		runes := []rune(normalized)
		if len(runes) <= maxStringRunes {
			return normalized
		}
		return string(runes[:maxStringRunes-3]) + "..."
	default:
		return value
	}
}
