// Package standings implements the standings watcher: it compares each
// category's current championship standings to the snapshot of the previous
// run and notifies users about how their favorite driver fared.
package standings

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/racedayapp/notify-manager-go/log"
	"github.com/racedayapp/notify-manager-go/pkg/model"
	"github.com/racedayapp/notify-manager-go/pkg/notify"
	"github.com/racedayapp/notify-manager-go/pkg/pubsub"
	"github.com/racedayapp/notify-manager-go/pkg/repository"
	"github.com/racedayapp/notify-manager-go/pkg/repository/standings"
	"github.com/racedayapp/notify-manager-go/pkg/repository/userprefs"
)

const channelID = "standings_alerts"

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
	ret := &Watcher{logger: log.GetLogger("watcher.standings")}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Run performs one standings check over all categories. Categories are
// isolated: a failing one is logged and the rest still run.
func (w *Watcher) Run(ctx context.Context, now time.Time) error {
	users, err := userprefs.LoadWithToken(ctx, w.conn)
	if err != nil {
		return fmt.Errorf("loading subscribers: %w", err)
	}
	for _, cat := range model.AllCategories() {
		if err := w.runCategory(ctx, cat, now, users); err != nil {
			w.logger.Error("category check failed",
				log.String("category", string(cat)),
				log.ErrorField(err))
		}
	}
	return nil
}

//nolint:whitespace // can't make both editor and linter happy
func (w *Watcher) runCategory(
	ctx context.Context,
	cat model.Category,
	now time.Time,
	users []*model.UserPreference,
) error {
	raw, err := standings.LoadCurrent(ctx, w.conn, cat)
	if err != nil {
		return fmt.Errorf("loading standings: %w", err)
	}
	current := w.validEntries(cat, raw)

	var previous []model.StandingEntry
	snap, err := standings.LoadSnapshot(ctx, w.conn, cat)
	switch {
	case err == nil:
		previous = snap.Entries
	case errors.Is(err, repository.ErrNoData):
		// first run for this category, everyone's baseline is zero points
	default:
		return fmt.Errorf("loading snapshot: %w", err)
	}

	raceDetected := anyPointsChanged(current, previous)
	msgs := w.collectMessages(cat, current, previous, raceDetected, users)

	if w.dryRun {
		w.logger.Info("dry-run: would dispatch standings notifications",
			log.String("category", string(cat)),
			log.Int("recipients", len(msgs)))
		return nil
	}

	if len(msgs) > 0 {
		res := w.notifier.SendBatch(ctx, msgs)
		w.logger.Info("standings notifications dispatched",
			log.String("category", string(cat)),
			log.Int("recipients", len(msgs)),
			log.Int("success", res.SuccessCount),
			log.Int("failure", res.FailureCount))
		w.publish(cat, len(msgs), res, now)
	}

	// an empty run (feed outage, scrape failure) must not wipe the
	// baseline; the stale snapshot keeps the next diff meaningful
	if len(current) > 0 {
		snap := &model.StandingsSnapshot{
			Category:   cat,
			Entries:    current,
			LastUpdate: now.UTC(),
		}
		if err := standings.SaveSnapshot(ctx, w.conn, snap); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
	}
	return nil
}

// validEntries drops rows without a driver name and re-ranks the rest by
// points. The stored position column is advisory; the feed has shipped
// stale values before.
//
//nolint:whitespace // can't make both editor and linter happy
func (w *Watcher) validEntries(
	cat model.Category,
	raw []model.StandingEntry,
) []model.StandingEntry {
	ret := make([]model.StandingEntry, 0, len(raw))
	skipped := 0
	for _, e := range raw {
		if e.Name == "" {
			skipped++
			continue
		}
		ret = append(ret, e)
	}
	if skipped > 0 {
		w.logger.Warn("skipped nameless standings rows",
			log.String("category", string(cat)),
			log.Int("skipped", skipped))
	}
	slices.SortStableFunc(ret, func(a, b model.StandingEntry) int {
		return b.Points.Cmp(a.Points)
	})
	for i := range ret {
		ret[i].Position = i + 1
	}
	return ret
}

//nolint:whitespace // can't make both editor and linter happy
func (w *Watcher) collectMessages(
	cat model.Category,
	current, previous []model.StandingEntry,
	raceDetected bool,
	users []*model.UserPreference,
) []*notify.Message {
	msgs := make([]*notify.Message, 0)
	for _, u := range users {
		if !u.HasToken() {
			continue
		}
		pref, ok := u.PreferenceFor(cat)
		if !ok || !pref.NotificationsEnabled || pref.FavoriteDriver == "" {
			continue
		}
		change, ok := changeFor(cat, current, previous, raceDetected,
			pref.FavoriteDriver)
		if !ok {
			continue
		}
		msgs = append(msgs, buildMessage(cat, pref.FavoriteDriver, change,
			*u.FCMToken))
	}
	return msgs
}

//nolint:whitespace // can't make both editor and linter happy
func buildMessage(
	cat model.Category,
	driver string,
	change driverChange,
	token string,
) *notify.Message {
	msg := &notify.Message{
		Token: token,
		Data: map[string]string{
			"category": string(cat),
			"driver":   driver,
		},
		ChannelID: channelID,
		Sound:     "default",
	}
	if change.scored {
		msg.Title = fmt.Sprintf("🏆 %s: ¡%s sumó puntos!", cat.Title(), driver)
		if change.position > 0 {
			msg.Body = fmt.Sprintf("%s terminó %dº (+%s pts)",
				driver, change.position, change.pointsChange.String())
		} else {
			// delta matches no single-result score, probably a double
			// header or a data correction
			msg.Body = fmt.Sprintf("%s sumó %s puntos",
				driver, change.pointsChange.String())
		}
		msg.Data["pointsChange"] = change.pointsChange.String()
		msg.Priority = notify.PriorityHigh
	} else {
		msg.Title = fmt.Sprintf("🏁 %s: resultado de %s", cat.Title(), driver)
		msg.Body = fmt.Sprintf("%s terminó fuera de los puntos", driver)
		msg.Priority = notify.PriorityNormal
	}
	return msg
}

//nolint:whitespace // can't make both editor and linter happy
func (w *Watcher) publish(
	cat model.Category,
	recipients int,
	res notify.BatchResult,
	now time.Time,
) {
	if w.sink == nil {
		return
	}
	evt := pubsub.DispatchEvent{
		Job:        "standings-check",
		Category:   string(cat),
		Recipients: recipients,
		Success:    res.SuccessCount,
		Failure:    res.FailureCount,
		Timestamp:  now.UTC(),
	}
	if err := w.sink.PublishDispatch(evt); err != nil {
		w.logger.Warn("could not publish dispatch event",
			log.ErrorField(err))
	}
}
