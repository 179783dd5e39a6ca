package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

const (
	drainTimeout = 5 * time.Second
	// JetStream deduplicates on this header within the stream's duplicate window
	msgIDHeader = "Nats-Msg-Id"
)

// NATSConfig configures the JetStream publisher
type NATSConfig struct {
	URL           string
	StreamName    string
	SubjectPrefix string
}

// NATSPublisher publishes events to a JetStream stream, deduplicated by event ID
type NATSPublisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	prefix string
	logger zerolog.Logger
}

// NewNATSPublisher connects to NATS and makes sure the event stream exists
func NewNATSPublisher(ctx context.Context, cfg NATSConfig, logger zerolog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(
		cfg.URL,
		nats.Name("engage-gateway"),
		nats.DrainTimeout(drainTimeout),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				logger.Error().Err(err).Str("subject", s.Subject).Msg("Async NATS error")
				return
			}
			logger.Error().Err(err).Msg("Async NATS error outside subscription")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	prefix := strings.TrimSuffix(cfg.SubjectPrefix, ".")
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Subjects:    []string{prefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Duplicates:  10 * time.Minute,
		Description: "Engagement portal domain events",
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.StreamName, err)
	}

	return &NATSPublisher{conn: conn, js: js, prefix: prefix, logger: logger}, nil
}

// Subject returns the full subject for a relative one
func (p *NATSPublisher) Subject(subject string) string {
	return fullSubject(p.prefix, subject)
}

func fullSubject(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}

// Publish implements Publisher
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &nats.Msg{
		Subject: p.Subject(event.Subject),
		Data:    data,
		Header:  nats.Header{},
	}
	if event.ID != "" {
		msg.Header.Set(msgIDHeader, event.ID)
	}

	ack, err := p.js.PublishMsg(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to publish to NATS subject %s: %w", msg.Subject, err)
	}

	p.logger.Debug().
		Str("subject", msg.Subject).
		Uint64("seq", ack.Sequence).
		Bool("duplicate", ack.Duplicate).
		Msg("Published event")
	return nil
}

// Close drains the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
