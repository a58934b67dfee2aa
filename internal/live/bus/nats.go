package bus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"auctiondesk/internal/live/events"
)

// DefaultSubject is the single live channel name shared by control and
// spectator processes.
const DefaultSubject = "auctiondesk.live"

// NATSConfig holds connection settings for the NATS-backed bus.
type NATSConfig struct {
	URL           string
	Subject       string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns the default NATS bus configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		Subject:       DefaultSubject,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NATS carries the live channel over a NATS core subject. Publishers also
// hear their own messages, which is how the control side receives
// SYNC_REQUEST from viewers on the same subject.
type NATS struct {
	nc      *nats.Conn
	subject string
}

// ConnectNATS opens a connection and returns a Bus on the configured
// subject.
func ConnectNATS(cfg NATSConfig) (*NATS, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATS{nc: nc, subject: subject}, nil
}

// Publish marshals the envelope and fires it at the subject. Delivery is
// best-effort per the channel contract.
func (b *NATS) Publish(msg events.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal live message: %w", err)
	}
	if err := b.nc.Publish(b.subject, data); err != nil {
		return fmt.Errorf("publish live message: %w", err)
	}
	return nil
}

// Subscribe decodes every message on the subject into the handler. Malformed
// messages are logged and dropped.
func (b *NATS) Subscribe(handler Handler) (func(), error) {
	sub, err := b.nc.Subscribe(b.subject, func(m *nats.Msg) {
		var msg events.Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			log.Warn().Err(err).Str("subject", b.subject).Msg("dropping malformed live message")
			return
		}
		handler(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", b.subject, err)
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Msg("unsubscribe live channel")
		}
	}, nil
}

// Close drains and closes the underlying connection.
func (b *NATS) Close() error {
	b.nc.Close()
	return nil
}
