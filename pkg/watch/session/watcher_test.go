//nolint:errcheck // ok for this test code
package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"

	"github.com/racedayapp/notify-manager-go/pkg/model"
	"github.com/racedayapp/notify-manager-go/pkg/notify"
	"github.com/racedayapp/notify-manager-go/pkg/repository/ledger"
	tcpg "github.com/racedayapp/notify-manager-go/testsupport/tcpostgres"
)

type recordingTransport struct {
	sent []*notify.Message
}

func (r *recordingTransport) Send(_ context.Context, msg *notify.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingTransport) Validate(_ context.Context, _ string) error {
	return nil
}

func initTestDb() *pgxpool.Pool {
	pool := tcpg.SetupTestDb()
	tcpg.ClearAllTables(pool)
	return pool
}

//nolint:whitespace // can't make both editor and linter happy
func seedEvent(
	db *pgxpool.Pool,
	cat model.Category,
	eventKey string,
	raceStart time.Time,
) {
	sessions := fmt.Sprintf(`{"race":{"start":"%s"}}`,
		raceStart.UTC().Format(time.RFC3339))
	db.Exec(context.Background(), `
		insert into schedule_event (category, event_key, gp_name, sessions)
		values ($1, $2, 'Test GP', $3)`, cat, eventKey, sessions)
}

func seedUser(db *pgxpool.Pool, token, prefs string) {
	db.Exec(context.Background(), `
		insert into user_preference (fcm_token, preferences)
		values ($1, $2)`, token, prefs)
}

func TestSessionWatcherDispatch(t *testing.T) {
	db := initTestDb()
	now := time.Now().UTC()

	seedEvent(db, model.CategoryF1, "f1-2025-01", now.Add(10*time.Minute))
	seedUser(db, "device-1",
		`[{"category":"f1","notificationsEnabled":true}]`)
	seedUser(db, "device-2",
		`[{"category":"f1","notificationsEnabled":false}]`)

	transport := &recordingTransport{}
	watcher := NewWatcher(
		WithQuerier(db),
		WithNotifier(notify.NewClient(notify.WithTransport(transport))),
	)

	assert.NoError(t, watcher.Run(context.Background(), now))
	assert.Len(t, transport.sent, 1)
	assert.Equal(t, "device-1", transport.sent[0].Token)
	assert.Contains(t, transport.sent[0].Body, "Comienza en 10 minutos")
	assert.Equal(t, notify.PriorityHigh, transport.sent[0].Priority)

	key := model.DedupeKey(model.CategoryF1, "f1-2025-01",
		model.SessionRace, now.Add(10*time.Minute))
	rec, err := ledger.LoadByKey(context.Background(), db, key)
	assert.NoError(t, err)
	assert.Equal(t, 1, rec.RecipientCount)
	assert.Equal(t, 1, rec.SuccessCount)

	// a second tick within the window must not notify again
	assert.NoError(t, watcher.Run(context.Background(), now.Add(2*time.Minute)))
	assert.Len(t, transport.sent, 1)
}

func TestSessionWatcherZeroRecipients(t *testing.T) {
	db := initTestDb()
	now := time.Now().UTC()

	// nobody subscribed to motogp, the ledger row is still written
	seedEvent(db, model.CategoryMotoGP, "motogp-2025-01", now.Add(5*time.Minute))

	transport := &recordingTransport{}
	watcher := NewWatcher(
		WithQuerier(db),
		WithNotifier(notify.NewClient(notify.WithTransport(transport))),
	)

	assert.NoError(t, watcher.Run(context.Background(), now))
	assert.Empty(t, transport.sent)

	key := model.DedupeKey(model.CategoryMotoGP, "motogp-2025-01",
		model.SessionRace, now.Add(5*time.Minute))
	rec, err := ledger.LoadByKey(context.Background(), db, key)
	assert.NoError(t, err)
	assert.Equal(t, 0, rec.RecipientCount)
}

func TestSessionWatcherDryRun(t *testing.T) {
	db := initTestDb()
	now := time.Now().UTC()

	seedEvent(db, model.CategoryF1, "f1-2025-03", now.Add(10*time.Minute))
	seedUser(db, "device-1",
		`[{"category":"f1","notificationsEnabled":true}]`)

	transport := &recordingTransport{}
	watcher := NewWatcher(
		WithQuerier(db),
		WithNotifier(notify.NewClient(notify.WithTransport(transport))),
		WithDryRun(true),
	)

	assert.NoError(t, watcher.Run(context.Background(), now))
	assert.Empty(t, transport.sent)

	key := model.DedupeKey(model.CategoryF1, "f1-2025-03",
		model.SessionRace, now.Add(10*time.Minute))
	_, err := ledger.LoadByKey(context.Background(), db, key)
	assert.Error(t, err)
}

func TestSessionWatcherRetention(t *testing.T) {
	db := initTestDb()
	now := time.Now().UTC()

	ledger.Create(context.Background(), db, &model.SentNotification{
		Key:         "ancient",
		Category:    model.CategoryF1,
		EventKey:    "f1-2024-22",
		SessionType: model.SessionRace,
		GpName:      "Old GP",
		CreatedAt:   now.Add(-8 * 24 * time.Hour),
	})

	transport := &recordingTransport{}
	watcher := NewWatcher(
		WithQuerier(db),
		WithNotifier(notify.NewClient(notify.WithTransport(transport))),
	)
	assert.NoError(t, watcher.Run(context.Background(), now))

	_, err := ledger.LoadByKey(context.Background(), db, "ancient")
	assert.Error(t, err)
}
