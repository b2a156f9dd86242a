package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"todo-backend/internal/db"
	"todo-backend/internal/tasks"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	tasks.New(db.NewMemory(), nil).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, api string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	getenv := func(k string) string {
		if k == "TODO_API" {
			return api
		}
		return ""
	}
	code := run(context.Background(), args, getenv, &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func TestCLI_AddListDoneRemove(t *testing.T) {
	srv := newTestServer(t)

	res := runCLI(t, srv.URL, "add", "-c", "Errands", "-p", "high", "Buy", "milk")
	if res.code != exitOK {
		t.Fatalf("add: expected exit 0, got %d: %s", res.code, res.stderr)
	}
	id := strings.TrimSpace(res.stdout)
	if id == "" {
		t.Fatal("expected the new id on stdout")
	}

	res = runCLI(t, srv.URL, "list")
	want := separator + "\nErrands\n" + separator + "\n  [ ] Buy milk (high)  " + id + "\n"
	if res.stdout != want {
		t.Errorf("list: expected\n%q\ngot\n%q", want, res.stdout)
	}

	if res = runCLI(t, srv.URL, "done", id); res.code != exitOK {
		t.Fatalf("done: expected exit 0, got %d: %s", res.code, res.stderr)
	}
	if res = runCLI(t, srv.URL); !strings.Contains(res.stdout, "[x] Buy milk") {
		t.Errorf("expected completed task in default list, got %q", res.stdout)
	}

	if res = runCLI(t, srv.URL, "toggle", id); res.code != exitOK {
		t.Fatalf("toggle: expected exit 0, got %d: %s", res.code, res.stderr)
	}
	if res = runCLI(t, srv.URL, "ls"); !strings.Contains(res.stdout, "[ ] Buy milk") {
		t.Errorf("expected toggled task, got %q", res.stdout)
	}

	if res = runCLI(t, srv.URL, "rm", id); res.code != exitOK {
		t.Fatalf("rm: expected exit 0, got %d: %s", res.code, res.stderr)
	}
	if res = runCLI(t, srv.URL, "list"); res.stdout != "no todos\n" {
		t.Errorf("expected empty list, got %q", res.stdout)
	}
}

func TestCLI_Categories(t *testing.T) {
	srv := newTestServer(t)
	runCLI(t, srv.URL, "add", "-c", "Errands", "Buy milk")
	runCLI(t, srv.URL, "add", "-category", "Home Office", "Fix chair")
	runCLI(t, srv.URL, "add", "-c", "Errands", "Post office")

	res := runCLI(t, srv.URL, "categories")
	if res.stdout != "Errands\nHome Office\n" {
		t.Errorf("unexpected categories %q", res.stdout)
	}

	if res = runCLI(t, srv.URL, "rmcat", "Home Office"); res.code != exitOK {
		t.Fatalf("rmcat: expected exit 0, got %d: %s", res.code, res.stderr)
	}
	if res = runCLI(t, srv.URL, "categories"); res.stdout != "Errands\n" {
		t.Errorf("expected only Errands left, got %q", res.stdout)
	}
}

func TestCLI_UserErrors(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"frobnicate"}},
		{"blank text", []string{"add", "-c", "Errands", "  "}},
		{"missing category", []string{"add", "Buy milk"}},
		{"bad priority", []string{"add", "-c", "Errands", "-p", "urgent", "Buy milk"}},
		{"rm without id", []string{"rm"}},
		{"malformed id", []string{"rm", "not-an-id"}},
		{"done unknown id", []string{"done", "3f0c3a4e-8a4b-4e2f-9d7e-0c6f1d2b9a11"}},
		{"toggle unknown id", []string{"toggle", "3f0c3a4e-8a4b-4e2f-9d7e-0c6f1d2b9a11"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := runCLI(t, srv.URL, tc.args...)
			if res.code != exitUser {
				t.Errorf("expected exit %d, got %d (stderr %q)", exitUser, res.code, res.stderr)
			}
			if !strings.HasPrefix(res.stderr, "error: ") {
				t.Errorf("expected an error message, got %q", res.stderr)
			}
		})
	}
}

func TestCLI_BackendUnreachable(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()

	res := runCLI(t, url, "list")
	if res.code != exitBackend {
		t.Errorf("expected exit %d, got %d", exitBackend, res.code)
	}
}

func TestCLI_Help(t *testing.T) {
	res := runCLI(t, "", "help")
	if res.code != exitOK || !strings.HasPrefix(res.stdout, "Usage: todo") {
		t.Errorf("unexpected help output %d %q", res.code, res.stdout)
	}
}

func TestDisplayText(t *testing.T) {
	cases := map[string]string{
		"Buy milk":   "Buy milk",
		"two\nlines": "two lines",
		"   ":        "(untitled)",
		"":           "(untitled)",
	}
	for in, want := range cases {
		if got := displayText(in); got != want {
			t.Errorf("displayText(%q): expected %q, got %q", in, want, got)
		}
	}
}
