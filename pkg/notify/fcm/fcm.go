// Package fcm implements notify.Transport on Firebase Cloud Messaging.
package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/racedayapp/notify-manager-go/pkg/notify"
)

type Transport struct {
	client *messaging.Client
}

var _ notify.Transport = (*Transport)(nil)

// NewTransport creates an FCM-backed transport. credentialsFile may be empty,
// in which case application default credentials are used.
func NewTransport(ctx context.Context, credentialsFile string) (*Transport, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &Transport{client: client}, nil
}

func (t *Transport) Send(ctx context.Context, msg *notify.Message) error {
	_, err := t.client.Send(ctx, convert(msg))
	return mapError(err)
}

// Validate probes the token with a data-only dry-run send.
// Nothing reaches the device.
func (t *Transport) Validate(ctx context.Context, token string) error {
	probe := &messaging.Message{
		Token: token,
		Data:  map[string]string{"probe": "1"},
	}
	_, err := t.client.SendDryRun(ctx, probe)
	return mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if messaging.IsUnregistered(err) {
		return fmt.Errorf("%w: %s", notify.ErrUnregistered, err.Error())
	}
	return err
}

func convert(msg *notify.Message) *messaging.Message {
	return &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: string(msg.Priority),
			Notification: &messaging.AndroidNotification{
				ChannelID: msg.ChannelID,
				Sound:     msg.Sound,
			},
		},
	}
}
