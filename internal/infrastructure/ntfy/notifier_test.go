package ntfy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"secalerts/internal/ports"
)

func TestSend(t *testing.T) {
	t.Parallel()

	var gotPath, gotBody, gotPriority, gotTags, gotClick, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		gotPriority = r.Header.Get("X-Priority")
		gotTags = r.Header.Get("X-Tags")
		gotClick = r.Header.Get("X-Click")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewNotifier(server.URL, "alerts", map[string]string{"Authorization": "Bearer token"})
	err := notifier.Send(context.Background(), ports.Notification{
		Title:    "[KEV] CVE-2026-1111",
		Message:  "exploited in the wild",
		URL:      "https://example.com/cve",
		Tags:     []string{"cve", "kev"},
		Priority: "high",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/alerts" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if !strings.HasPrefix(gotBody, "[KEV] CVE-2026-1111\n\n") {
		t.Fatalf("body should lead with the title, got %q", gotBody)
	}
	if !strings.Contains(gotBody, "https://example.com/cve") {
		t.Fatalf("body should carry the url, got %q", gotBody)
	}
	if gotPriority != "high" {
		t.Fatalf("unexpected priority header: %q", gotPriority)
	}
	if gotTags != "cve,kev" {
		t.Fatalf("unexpected tags header: %q", gotTags)
	}
	if gotClick != "https://example.com/cve" {
		t.Fatalf("unexpected click header: %q", gotClick)
	}
	if gotAuth != "Bearer token" {
		t.Fatalf("extra headers not forwarded: %q", gotAuth)
	}
}

func TestSendReportsServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	notifier := NewNotifier(server.URL, "alerts", nil)
	if err := notifier.Send(context.Background(), ports.Notification{Title: "x", Message: "y"}); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}

func TestSendMisconfigured(t *testing.T) {
	t.Parallel()

	notifier := NewNotifier("", "", nil)
	if err := notifier.Send(context.Background(), ports.Notification{Title: "x"}); err == nil {
		t.Fatalf("expected error when base url and topic are missing")
	}
}
