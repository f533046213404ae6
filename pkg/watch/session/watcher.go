// Package session implements the session watcher: it scans every category's
// race schedule, detects sessions starting within the lookahead window and
// dispatches at most one deduplicated push batch per category per tick.
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/racedayapp/notify-manager-go/log"
	"github.com/racedayapp/notify-manager-go/pkg/model"
	"github.com/racedayapp/notify-manager-go/pkg/notify"
	"github.com/racedayapp/notify-manager-go/pkg/pubsub"
	"github.com/racedayapp/notify-manager-go/pkg/repository"
	"github.com/racedayapp/notify-manager-go/pkg/repository/ledger"
	"github.com/racedayapp/notify-manager-go/pkg/repository/schedule"
	"github.com/racedayapp/notify-manager-go/pkg/repository/userprefs"
)

// ledger keys older than this cannot collide with the lookahead window
const ledgerLookback = 2 * time.Hour

const channelID = "session_alerts"

type Watcher struct {
	conn     repository.Querier
	notifier *notify.Client
	sink     pubsub.Sink
	dryRun   bool
	logger   *log.Logger
}

type Option func(*Watcher)

func WithQuerier(q repository.Querier) Option {
	return func(w *Watcher) {
		w.conn = q
	}
}

func WithNotifier(c *notify.Client) Option {
	return func(w *Watcher) {
		w.notifier = c
	}
}

func WithSink(s pubsub.Sink) Option {
	return func(w *Watcher) {
		w.sink = s
	}
}

func WithDryRun(dryRun bool) Option {
	return func(w *Watcher) {
		w.dryRun = dryRun
	}
}

func NewWatcher(opts ...Option) *Watcher {
	ret := &Watcher{logger: log.GetLogger("watcher.session")}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Run performs one scheduler tick. Categories are isolated: a failing one is
// logged and the rest still run. Only a failure before any category work
// (the ledger preload) aborts the whole invocation.
func (w *Watcher) Run(ctx context.Context, now time.Time) error {
	sent, err := ledger.KeysSince(ctx, w.conn, now.Add(-ledgerLookback))
	if err != nil {
		return fmt.Errorf("loading ledger keys: %w", err)
	}

	for _, cat := range model.AllCategories() {
		if err := w.runCategory(ctx, cat, now, sent); err != nil {
			w.logger.Error("category scan failed",
				log.String("category", string(cat)),
				log.ErrorField(err))
		}
	}

	if w.dryRun {
		return nil
	}
	deleted, err := ledger.DeleteOlderThan(ctx, w.conn,
		now.Add(-model.LedgerRetention))
	if err != nil {
		w.logger.Warn("ledger retention sweep failed", log.ErrorField(err))
		return nil
	}
	if deleted > 0 {
		w.logger.Info("ledger retention sweep", log.Int("deleted", deleted))
	}
	return nil
}

//nolint:whitespace // can't make both editor and linter happy
func (w *Watcher) runCategory(
	ctx context.Context,
	cat model.Category,
	now time.Time,
	sent map[string]struct{},
) error {
	events, err := schedule.LoadByCategory(ctx, w.conn, cat)
	if err != nil {
		return fmt.Errorf("loading schedule: %w", err)
	}
	cand := pickEligible(cat, events, now, sent)
	if cand == nil {
		return nil
	}
	return w.dispatch(ctx, cat, cand)
}

//nolint:whitespace // can't make both editor and linter happy
func (w *Watcher) dispatch(
	ctx context.Context,
	cat model.Category,
	cand *candidate,
) error {
	users, err := userprefs.LoadWithToken(ctx, w.conn)
	if err != nil {
		return fmt.Errorf("loading subscribers: %w", err)
	}
	msgs := make([]*notify.Message, 0, len(users))
	for _, u := range users {
		if !u.HasToken() {
			continue
		}
		pref, ok := u.PreferenceFor(cat)
		if !ok || !pref.NotificationsEnabled {
			continue
		}
		// session alerts go to every enabled subscriber of the category,
		// the favorite driver plays no role here
		msgs = append(msgs, buildMessage(cat, cand, *u.FCMToken))
	}

	if w.dryRun {
		w.logger.Info("dry-run: would dispatch session notification",
			log.String("key", cand.key),
			log.Int("recipients", len(msgs)))
		return nil
	}

	res := w.notifier.SendBatch(ctx, msgs)

	// the ledger row is written even with zero recipients; reaching this
	// code path must not be recomputed on the next tick
	rec := &model.SentNotification{
		Key:            cand.key,
		Category:       cat,
		EventKey:       cand.event.EventKey,
		SessionType:    cand.slot.Type,
		GpName:         cand.event.GpName,
		MinutesBefore:  cand.diffMinutes,
		RecipientCount: len(msgs),
		SuccessCount:   res.SuccessCount,
		FailureCount:   res.FailureCount,
	}
	if _, err := ledger.Create(ctx, w.conn, rec); err != nil {
		return fmt.Errorf("recording ledger entry: %w", err)
	}

	w.logger.Info("session notification dispatched",
		log.String("key", cand.key),
		log.String("gp", cand.event.GpName),
		log.Int("recipients", len(msgs)),
		log.Int("success", res.SuccessCount),
		log.Int("failure", res.FailureCount))

	if w.sink != nil {
		evt := pubsub.DispatchEvent{
			Job:         "session-check",
			Category:    string(cat),
			GpName:      cand.event.GpName,
			SessionType: string(cand.slot.Type),
			Recipients:  len(msgs),
			Success:     res.SuccessCount,
			Failure:     res.FailureCount,
			Timestamp:   time.Now().UTC(),
		}
		if err := w.sink.PublishDispatch(evt); err != nil {
			w.logger.Warn("could not publish dispatch event",
				log.ErrorField(err))
		}
	}
	return nil
}

func buildMessage(cat model.Category, cand *candidate, token string) *notify.Message {
	return &notify.Message{
		Token: token,
		Title: fmt.Sprintf("🏁 %s: %s - %s",
			cat.Title(), cand.slot.Type.Label(), cand.event.GpName),
		Body: fmt.Sprintf("Comienza en %d minutos", cand.diffMinutes),
		Data: map[string]string{
			"category":        string(cat),
			"eventKey":        cand.event.EventKey,
			"sessionType":     string(cand.slot.Type),
			"startsInMinutes": strconv.Itoa(cand.diffMinutes),
		},
		Priority:  notify.PriorityHigh,
		ChannelID: channelID,
		Sound:     "default",
	}
}
