// Package hygiene implements the weekly token sweep: it probes every stored
// device token against the push provider and clears the ones the provider
// reports as unregistered.
package hygiene

import (
	"context"
	"errors"
	"fmt"

	"github.com/racedayapp/notify-manager-go/log"
	"github.com/racedayapp/notify-manager-go/pkg/notify"
	"github.com/racedayapp/notify-manager-go/pkg/repository"
	"github.com/racedayapp/notify-manager-go/pkg/repository/userprefs"
)

type Job struct {
	conn      repository.Querier
	transport notify.Transport
	dryRun    bool
	logger    *log.Logger
}

type Option func(*Job)

func WithQuerier(q repository.Querier) Option {
	return func(j *Job) {
		j.conn = q
	}
}

func WithTransport(t notify.Transport) Option {
	return func(j *Job) {
		j.transport = t
	}
}

func WithDryRun(dryRun bool) Option {
	return func(j *Job) {
		j.dryRun = dryRun
	}
}

func NewJob(opts ...Option) *Job {
	ret := &Job{logger: log.GetLogger("watcher.hygiene")}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Run probes all tokens and clears the unregistered ones in one batch.
// Only a definitive unregistered answer from the provider invalidates a
// token; transient errors (timeouts, quota) leave it untouched.
func (j *Job) Run(ctx context.Context) error {
	users, err := userprefs.LoadWithToken(ctx, j.conn)
	if err != nil {
		return fmt.Errorf("loading users with token: %w", err)
	}

	stale := make([]uint32, 0)
	probeErrors := 0
	for _, u := range users {
		if !u.HasToken() {
			continue
		}
		err := j.transport.Validate(ctx, *u.FCMToken)
		switch {
		case err == nil:
			// token still good
		case errors.Is(err, notify.ErrUnregistered):
			stale = append(stale, u.ID)
		default:
			probeErrors++
			j.logger.Warn("token probe failed, keeping token",
				log.Uint32("userId", u.ID),
				log.ErrorField(err))
		}
	}

	j.logger.Info("token sweep finished",
		log.Int("probed", len(users)),
		log.Int("stale", len(stale)),
		log.Int("probeErrors", probeErrors))

	if j.dryRun {
		if len(stale) > 0 {
			j.logger.Info("dry-run: would clear tokens",
				log.Int("count", len(stale)))
		}
		return nil
	}
	cleared, err := userprefs.ClearTokens(ctx, j.conn, stale)
	if err != nil {
		return fmt.Errorf("clearing tokens: %w", err)
	}
	if cleared > 0 {
		j.logger.Info("cleared stale tokens", log.Int("cleared", cleared))
	}
	return nil
}
