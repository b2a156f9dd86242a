package analytics

import (
	"bytes"
	"context"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/todos", nil)
	r.Header.Set("X-Platform", " Web ")
	r.Header.Set("X-App-Version", "1.2.0")
	r.Header.Set("X-Session-Id", "s-1")
	r.Header.Set("X-Device-Locale", "de-DE")
	r.Header.Set("X-Source-Event-Key", "k-9")

	env := FromRequest(r)
	want := Envelope{SessionID: "s-1", Platform: "web", AppVersion: "1.2.0", DeviceLocale: "de-DE", SourceEventKey: "k-9"}
	if env != want {
		t.Errorf("expected %+v, got %+v", want, env)
	}
}

func TestFromRequest_UnknownPlatform(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Platform", "toaster")
	if got := FromRequest(r).Platform; got != "unknown" {
		t.Errorf("expected unknown, got %q", got)
	}

	r = httptest.NewRequest("GET", "/", nil)
	if got := FromRequest(r).Platform; got != "unknown" {
		t.Errorf("expected unknown for missing header, got %q", got)
	}
}

func TestSourceEventKeyPrefersIdempotencyKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Idempotency-Key", "a")
	r.Header.Set("X-Source-Event-Key", "b")
	if got := SourceEventKeyFromRequest(r); got != "a" {
		t.Errorf("expected a, got %q", got)
	}
}

func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogRecorder(log.New(&buf, "", 0))
	ctx := context.Background()

	Log(ctx, rec, Envelope{Platform: "cli"}, "task_created", map[string]any{"task_id": "1"})
	out := buf.String()
	if !strings.HasPrefix(out, "[EVENT] ") {
		t.Fatalf("expected [EVENT] prefix, got %q", out)
	}
	for _, part := range []string{`"event_name":"task_created"`, `"platform":"cli"`, `"task_id":"1"`} {
		if !strings.Contains(out, part) {
			t.Errorf("expected %s in %q", part, out)
		}
	}
}

func TestLogRecorder_DropsDuplicateKeys(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogRecorder(log.New(&buf, "", 0))
	ctx := context.Background()
	env := Envelope{Platform: "web", SourceEventKey: "retry-1"}

	Log(ctx, rec, env, "task_created", nil)
	Log(ctx, rec, env, "task_created", nil)
	Log(ctx, rec, env, "task_deleted", nil)

	if n := strings.Count(buf.String(), "[EVENT]"); n != 2 {
		t.Errorf("expected 2 events, got %d:\n%s", n, buf.String())
	}
}

func TestLog_SkipsEmptyName(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogRecorder(log.New(&buf, "", 0))
	Log(context.Background(), rec, Envelope{}, "", nil)
	Log(context.Background(), nil, Envelope{}, "x", nil)
	if buf.Len() != 0 {
		t.Errorf("expected nothing logged, got %q", buf.String())
	}
}
