package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject receives compiled shape graphs.
const DefaultSubject = "shapes.compiled"

// Conn is the subset of *nats.Conn used for publishing.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// Publisher publishes compiled shape graphs.
type Publisher struct {
	conn    Conn
	subject string
	logger  *slog.Logger
}

// NewPublisher creates a publisher on an existing connection.
func NewPublisher(conn Conn, subject string, logger *slog.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, subject: subject, logger: logger}
}

// Connect dials a NATS server. The returned function drains and closes the
// connection.
func Connect(url string) (*nats.Conn, func(), error) {
	nc, err := nats.Connect(url,
		nats.Name("semshape"),
		nats.Timeout(10*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}
	closeFn := func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	return nc, closeFn, nil
}

// Subject returns the subject a message is published on: the configured
// subject, suffixed with the module name for single-module graphs.
func (p *Publisher) Subject(msg *ShapeGraphMessage) string {
	if len(msg.Modules) == 1 {
		return p.subject + "." + subjectToken(msg.Modules[0])
	}
	return p.subject
}

// Publish validates, encodes and publishes msg, then flushes the connection.
func (p *Publisher) Publish(ctx context.Context, msg *ShapeGraphMessage) error {
	if p.conn == nil {
		return nil
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid shape graph message: %w", err)
	}

	data, err := msg.Marshal()
	if err != nil {
		return fmt.Errorf("marshal shape graph message: %w", err)
	}

	subject := p.Subject(msg)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish shape graph: %w", err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush shape graph: %w", err)
	}

	p.logger.Info("Published shape graph",
		"subject", subject,
		"id", msg.ID,
		"shapes", msg.ShapeCount,
		"bytes", len(data))
	return nil
}

// subjectToken replaces characters NATS treats specially in subjects.
func subjectToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, s)
}
