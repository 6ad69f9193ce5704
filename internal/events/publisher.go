// Package events streams completed session records to external consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ArtCenter1/storymaster/internal/session"
)

// Envelope is the wire format for one session event.
type Envelope struct {
	Type      string                `json:"type"`
	Session   *session.AgentSession `json:"session"`
	EmittedAt time.Time             `json:"emitted_at"`
}

// Publisher emits session events. Implementations must be safe for use from
// a single serving goroutine.
type Publisher interface {
	Publish(ctx context.Context, s *session.AgentSession) error
	Close() error
}

// KafkaPublisher writes session envelopes to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(strings.Split(brokers, ",")...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish writes one session envelope keyed by agent id.
func (p *KafkaPublisher) Publish(ctx context.Context, s *session.AgentSession) error {
	payload, err := json.Marshal(Envelope{
		Type:      "session.completed",
		Session:   s,
		EmittedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal session envelope: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(s.AgentID),
		Value: payload,
	})
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// ChannelPublisher is an in-process Publisher implementation backed by a Go
// channel, used in tests and when event streaming is disabled.
type ChannelPublisher struct {
	ch chan Envelope
}

// NewChannelPublisher creates an in-process publisher.
func NewChannelPublisher() *ChannelPublisher {
	return &ChannelPublisher{ch: make(chan Envelope, 100)}
}

// Publish places the envelope on the channel, dropping when full.
func (p *ChannelPublisher) Publish(ctx context.Context, s *session.AgentSession) error {
	env := Envelope{Type: "session.completed", Session: s, EmittedAt: time.Now()}
	select {
	case p.ch <- env:
		return nil
	default:
		return fmt.Errorf("event channel full")
	}
}

// Events returns the channel of published envelopes.
func (p *ChannelPublisher) Events() <-chan Envelope {
	return p.ch
}

// Close closes the channel.
func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}
