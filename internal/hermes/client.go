package hermes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

// Subjects lure publishes and serves.
const (
	SubjectEngagementReported  = "swarm.lure.engagement.reported"
	SubjectEngagementAbandoned = "swarm.lure.engagement.abandoned"
	SubjectIntelExtracted      = "swarm.lure.intel.extracted"

	// SubjectTurn carries inbound turns as request/reply.
	SubjectTurn = "swarm.lure.turn"

	// QueueGroup spreads turn requests across lure instances.
	QueueGroup = "lure"
)

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("lure"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

// Serve answers requests on subject within queue. The handler's bytes are
// sent back as the reply; a handler error is logged and answered with an
// {"error": ...} body so requesters do not wait for a timeout.
func (c *Client) Serve(subject, queue string, handler func(data []byte) ([]byte, error)) error {
	sub, err := c.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		resp, err := handler(msg.Data)
		if err != nil {
			c.logger.Warn("request failed", "subject", msg.Subject, "error", err)
			resp, _ = json.Marshal(map[string]string{"error": err.Error()})
		}
		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(resp); err != nil {
			c.logger.Error("failed to respond", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("queue subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("serving", "subject", subject, "queue", queue)
	return nil
}

// Connected reports whether the connection is currently up.
func (c *Client) Connected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
