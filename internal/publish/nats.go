// Package publish ships usage records to NATS JetStream for off-host
// aggregation. Entirely optional; the daemon runs fine without a broker.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/appusage/internal/config"
	"git.home.luguber.info/inful/appusage/internal/logfields"
	"git.home.luguber.info/inful/appusage/internal/store"
)

// recordMessage is the wire format published for each usage record.
type recordMessage struct {
	App        string `json:"app"`
	Start      string `json:"start"`
	End        string `json:"end"`
	DurationMS int64  `json:"duration_ms"`
	SessionID  string `json:"session_id"`
}

// Publisher manages the NATS connection and stream for usage records.
type Publisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewPublisher connects to NATS and ensures the target stream exists.
func NewPublisher(cfg config.PublishConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("publishing is disabled")
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("appusage-daemon"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.Subject},
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", cfg.Stream, err)
	}

	slog.Info("NATS publisher initialized",
		"url", cfg.URL, logfields.Subject(cfg.Subject), "stream", cfg.Stream)

	return &Publisher{conn: conn, js: js, subject: cfg.Subject}, nil
}

// Publish ships one usage record.
func (p *Publisher) Publish(ctx context.Context, rec store.Record) error {
	data, err := json.Marshal(recordMessage{
		App:        rec.App,
		Start:      rec.Start.UTC().Format(time.RFC3339Nano),
		End:        rec.End.UTC().Format(time.RFC3339Nano),
		DurationMS: rec.Duration.Milliseconds(),
		SessionID:  rec.SessionID,
	})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		return fmt.Errorf("publish record: %w", err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			slog.Warn("Failed to drain NATS connection", logfields.Error(err))
		}
	}
}
