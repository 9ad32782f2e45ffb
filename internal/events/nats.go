package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/galettery/galettery/internal/logger"
)

// NATSPublisher publishes events as JSON on core NATS subjects
type NATSPublisher struct {
	conn *nats.Conn
	log  logger.Logger
}

// NewNATSPublisher connects to url. Reconnects are handled by the client.
func NewNATSPublisher(url string, log logger.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("galettery"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, log: log}, nil
}

// Publish writes the event on its subject
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(e.Subject(), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Subject(), err)
	}
	p.log.Debug("Event published", "subject", e.Subject(), "bytes", len(data))
	return nil
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
