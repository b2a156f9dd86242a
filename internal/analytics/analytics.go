package analytics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Envelope is what we attach to every event.
type Envelope struct {
	SessionID      string `json:"session_id,omitempty"`
	Platform       string `json:"platform"`
	AppVersion     string `json:"app_version,omitempty"`
	DeviceLocale   string `json:"device_locale,omitempty"`
	SourceEventKey string `json:"source_event_key,omitempty"`
}

type Event struct {
	Name     string         `json:"event_name"`
	Time     time.Time      `json:"event_time"`
	Envelope Envelope       `json:"envelope"`
	Props    map[string]any `json:"properties,omitempty"`
}

// FromRequest extracts envelope fields from request headers.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "ios", "android", "web", "cli":
	default:
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	return Envelope{
		SessionID:      strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:       platform,
		AppVersion:     strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale:   locale,
		SourceEventKey: SourceEventKeyFromRequest(r),
	}
}

// Client-provided idempotency key (optional)
func SourceEventKeyFromRequest(r *http.Request) string {
	k := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Log builds an event and hands it to rec. Callers pass sanitized props,
// never raw task text.
func Log(ctx context.Context, rec Recorder, env Envelope, eventName string, props map[string]any) {
	if rec == nil || eventName == "" {
		return
	}
	rec.Record(ctx, Event{
		Name:     eventName,
		Time:     time.Now().UTC(),
		Envelope: env,
		Props:    props,
	})
}

const maxSeenKeys = 10000

// LogRecorder writes one JSON line per event. Duplicate source event keys
// are dropped.
type LogRecorder struct {
	logger *log.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewLogRecorder(logger *log.Logger) *LogRecorder {
	if logger == nil {
		logger = log.Default()
	}
	return &LogRecorder{logger: logger, seen: make(map[string]struct{})}
}

func (r *LogRecorder) Record(ctx context.Context, ev Event) {
	if key := ev.Envelope.SourceEventKey; key != "" {
		r.mu.Lock()
		if len(r.seen) >= maxSeenKeys {
			r.seen = make(map[string]struct{})
		}
		_, dup := r.seen[ev.Name+"/"+key]
		r.seen[ev.Name+"/"+key] = struct{}{}
		r.mu.Unlock()
		if dup {
			return
		}
	}

	b, err := json.Marshal(ev)
	if err != nil {
		// if props can't marshal, don't break core flow
		return
	}
	r.logger.Printf("[EVENT] %s", b)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}
