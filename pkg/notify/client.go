package notify

import (
	"context"

	"github.com/racedayapp/notify-manager-go/log"
)

// BatchResult summarizes one batch send.
type BatchResult struct {
	SuccessCount int
	FailureCount int
}

type Client struct {
	transport Transport
	logger    *log.Logger
}

type Option func(*Client)

func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func NewClient(opts ...Option) *Client {
	ret := &Client{logger: log.GetLogger("notify")}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// SendBatch delivers messages sequentially, one send at a time, so a single
// invalid or expired token cannot fail the whole batch. Failures are counted
// and logged, never retried here; the next scheduled tick is the only retry
// mechanism. At-most-once, best-effort.
func (c *Client) SendBatch(ctx context.Context, msgs []*Message) BatchResult {
	ret := BatchResult{}
	for _, msg := range msgs {
		if err := c.transport.Send(ctx, msg); err != nil {
			ret.FailureCount++
			c.logger.Warn("message could not be sent",
				log.String("title", msg.Title),
				log.ErrorField(err))
			continue
		}
		ret.SuccessCount++
	}
	return ret
}
