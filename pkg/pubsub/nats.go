// Package pubsub publishes dispatch summaries for other backend services
// (ops dashboards, the mobile API) to observe. Entirely optional; watchers
// work without a sink.
package pubsub

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/ohler55/ojg/oj"
)

// DispatchEvent is the JSON payload published after every batch dispatch.
type DispatchEvent struct {
	ID          string    `json:"id"`
	Job         string    `json:"job"`
	Category    string    `json:"category"`
	GpName      string    `json:"gpName,omitempty"`
	SessionType string    `json:"sessionType,omitempty"`
	Recipients  int       `json:"recipients"`
	Success     int       `json:"success"`
	Failure     int       `json:"failure"`
	Timestamp   time.Time `json:"timestamp"`
}

// Sink receives dispatch summaries. Publish failures are the caller's to log;
// they never affect the dispatch itself.
type Sink interface {
	PublishDispatch(evt DispatchEvent) error
	Close()
}

type natsSink struct {
	conn *nats.Conn
}

var _ Sink = (*natsSink)(nil)

// NewNatsSink connects to the given NATS server.
func NewNatsSink(url string) (Sink, error) {
	conn, err := nats.Connect(url,
		nats.Name("notify-manager"),
		nats.MaxReconnects(-1))
	if err != nil {
		return nil, err
	}
	return &natsSink{conn: conn}, nil
}

func (s *natsSink) PublishDispatch(evt DispatchEvent) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	subject := fmt.Sprintf("notify.dispatch.%s", evt.Category)
	data := []byte(oj.JSON(&evt))
	return s.conn.Publish(subject, data)
}

func (s *natsSink) Close() {
	s.conn.Close()
}
