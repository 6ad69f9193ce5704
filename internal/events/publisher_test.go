package events

import (
	"context"
	"testing"

	"github.com/ArtCenter1/storymaster/internal/session"
)

func TestChannelPublisher(t *testing.T) {
	p := NewChannelPublisher()
	defer p.Close()

	s := &session.AgentSession{ID: "sess-1", AgentID: "editor"}
	if err := p.Publish(context.Background(), s); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	select {
	case env := <-p.Events():
		if env.Type != "session.completed" {
			t.Errorf("unexpected envelope type: %q", env.Type)
		}
		if env.Session.ID != "sess-1" {
			t.Errorf("unexpected session id: %q", env.Session.ID)
		}
	default:
		t.Fatalf("expected buffered envelope")
	}
}

func TestChannelPublisherDropsWhenFull(t *testing.T) {
	p := NewChannelPublisher()
	defer p.Close()

	s := &session.AgentSession{ID: "s", AgentID: "a"}
	for i := 0; i < 100; i++ {
		if err := p.Publish(context.Background(), s); err != nil {
			t.Fatalf("Publish(%d) error: %v", i, err)
		}
	}
	if err := p.Publish(context.Background(), s); err == nil {
		t.Fatalf("expected error when channel is full")
	}
}
