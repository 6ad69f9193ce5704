package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ArtCenter1/storymaster/internal/usage"
)

func TestNotifyHealthPostsOnStatusChange(t *testing.T) {
	var posts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1.0"}`))
	}))
	defer server.Close()

	n := NewSlackNotifier("xoxb-test", "C123", server.URL+"/")

	h := &usage.Health{Status: usage.StatusWarning, Alerts: []string{"High error rate: 7.0%"}}
	if err := n.NotifyHealth(context.Background(), h); err != nil {
		t.Fatalf("NotifyHealth() error: %v", err)
	}
	if posts != 1 {
		t.Fatalf("expected 1 post, got %d", posts)
	}

	// Same status again is suppressed.
	if err := n.NotifyHealth(context.Background(), h); err != nil {
		t.Fatalf("NotifyHealth() repeat error: %v", err)
	}
	if posts != 1 {
		t.Errorf("expected repeated status to be suppressed, got %d posts", posts)
	}

	// Status change posts again.
	if err := n.NotifyHealth(context.Background(), &usage.Health{Status: usage.StatusHealthy}); err != nil {
		t.Fatalf("NotifyHealth() recovery error: %v", err)
	}
	if posts != 2 {
		t.Errorf("expected 2 posts after status change, got %d", posts)
	}
}

func TestNotifyHealthAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer server.Close()

	n := NewSlackNotifier("xoxb-test", "nope", server.URL+"/")
	err := n.NotifyHealth(context.Background(), &usage.Health{Status: usage.StatusCritical})
	if err == nil {
		t.Fatalf("expected error from slack API failure")
	}
}
