package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// Kind names a room lifecycle transition
type Kind string

const (
	KindCreated Kind = "created"
	KindJoined  Kind = "joined"
	KindLeft    Kind = "left"
	KindDeleted Kind = "deleted"
	KindWon     Kind = "won"
)

// DefaultPrefix is the subject prefix used when none is configured
const DefaultPrefix = "duelrooms"

// Event is a room lifecycle notification
type Event struct {
	Kind     Kind      `json:"kind"`
	Room     string    `json:"room"`
	Player   string    `json:"player,omitempty"`
	Game     string    `json:"game,omitempty"`
	Strategy string    `json:"strategy,omitempty"`
	Winner   string    `json:"winner,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher delivers lifecycle events to an external feed
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// NATSPublisher publishes events as JSON on <prefix>.rooms.<kind>
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher connects to a NATS server
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("duelrooms"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.PingInterval(20*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: normalizePrefix(prefix)}, nil
}

// Subject returns the subject an event kind is published on
func (p *NATSPublisher) Subject(kind Kind) string {
	return subject(p.prefix, kind)
}

// Publish sends the event. NATS buffers the message, so this only blocks
// when the client's outbound buffer is full.
func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(ev.Kind), data); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Kind, err)
	}
	return nil
}

// Close flushes pending events and closes the connection
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

func subject(prefix string, kind Kind) string {
	return prefix + ".rooms." + string(kind)
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}
