//nolint:errcheck // ok for this test code
package standings

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/racedayapp/notify-manager-go/pkg/model"
	"github.com/racedayapp/notify-manager-go/pkg/notify"
	repo "github.com/racedayapp/notify-manager-go/pkg/repository/standings"
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

func seedStanding(db *pgxpool.Pool, cat model.Category, name string, pts string) {
	db.Exec(context.Background(), `
		insert into race_standing (category, driver_name, points)
		values ($1, $2, $3)`, cat, name, pts)
}

func seedUser(db *pgxpool.Pool, token, prefs string) {
	db.Exec(context.Background(), `
		insert into user_preference (fcm_token, preferences)
		values ($1, $2)`, token, prefs)
}

func seedSnapshot(db *pgxpool.Pool, cat model.Category, entries []model.StandingEntry) {
	repo.SaveSnapshot(context.Background(), db, &model.StandingsSnapshot{
		Category:   cat,
		Entries:    entries,
		LastUpdate: time.Now().UTC().Add(-2 * time.Hour),
	})
}

func TestStandingsWatcherFavoriteScored(t *testing.T) {
	db := initTestDb()
	now := time.Now().UTC()

	seedStanding(db, model.CategoryF1, "Alonso", "65")
	seedStanding(db, model.CategoryF1, "Sainz", "12")
	seedSnapshot(db, model.CategoryF1, []model.StandingEntry{
		{Name: "Alonso", Points: decimal.NewFromInt(40), Position: 1},
		{Name: "Sainz", Points: decimal.NewFromInt(12), Position: 2},
	})
	seedUser(db, "device-1",
		`[{"category":"f1","notificationsEnabled":true,"favoriteDriver":"Alonso"}]`)
	seedUser(db, "device-2",
		`[{"category":"f1","notificationsEnabled":true,"favoriteDriver":"Sainz"}]`)
	// no favorite configured: never notified by this job
	seedUser(db, "device-3",
		`[{"category":"f1","notificationsEnabled":true}]`)

	transport := &recordingTransport{}
	watcher := NewWatcher(
		WithQuerier(db),
		WithNotifier(notify.NewClient(notify.WithTransport(transport))),
	)
	assert.NoError(t, watcher.Run(context.Background(), now))

	assert.Len(t, transport.sent, 2)
	byToken := map[string]*notify.Message{}
	for _, m := range transport.sent {
		byToken[m.Token] = m
	}
	assert.Contains(t, byToken["device-1"].Body, "terminó 1º (+25 pts)")
	assert.Equal(t, notify.PriorityHigh, byToken["device-1"].Priority)
	assert.Contains(t, byToken["device-2"].Body, "fuera de los puntos")
	assert.Equal(t, notify.PriorityNormal, byToken["device-2"].Priority)

	// snapshot advanced to the new baseline
	snap, err := repo.LoadSnapshot(context.Background(), db, model.CategoryF1)
	assert.NoError(t, err)
	got, ok := snap.EntryByName("Alonso")
	assert.True(t, ok)
	assert.True(t, got.Points.Equal(decimal.NewFromInt(65)))

	// a second run sees no change at all and stays silent
	assert.NoError(t, watcher.Run(context.Background(), now))
	assert.Len(t, transport.sent, 2)
}

func TestStandingsWatcherFirstRunBaseline(t *testing.T) {
	db := initTestDb()
	now := time.Now().UTC()

	seedStanding(db, model.CategoryF1, "Alonso", "40")
	seedUser(db, "device-1",
		`[{"category":"f1","notificationsEnabled":true,"favoriteDriver":"Alonso"}]`)

	transport := &recordingTransport{}
	watcher := NewWatcher(
		WithQuerier(db),
		WithNotifier(notify.NewClient(notify.WithTransport(transport))),
	)
	assert.NoError(t, watcher.Run(context.Background(), now))

	// without a previous snapshot everything counts from a zero baseline;
	// 40 matches no single-result score, so the generic body is used
	assert.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0].Body, "sumó 40 puntos")
}

func TestStandingsWatcherEmptyRunKeepsSnapshot(t *testing.T) {
	db := initTestDb()
	now := time.Now().UTC()

	prior := []model.StandingEntry{
		{Name: "Alonso", Points: decimal.NewFromInt(40), Position: 1},
	}
	seedSnapshot(db, model.CategoryF1, prior)

	transport := &recordingTransport{}
	watcher := NewWatcher(
		WithQuerier(db),
		WithNotifier(notify.NewClient(notify.WithTransport(transport))),
	)
	assert.NoError(t, watcher.Run(context.Background(), now))
	assert.Empty(t, transport.sent)

	// feed outage: the stale baseline survives
	snap, err := repo.LoadSnapshot(context.Background(), db, model.CategoryF1)
	assert.NoError(t, err)
	assert.Len(t, snap.Entries, 1)
}

func TestStandingsWatcherSkipsNamelessRows(t *testing.T) {
	db := initTestDb()
	now := time.Now().UTC()

	seedStanding(db, model.CategoryF1, "Alonso", "40")
	seedStanding(db, model.CategoryF1, "", "99")

	transport := &recordingTransport{}
	watcher := NewWatcher(
		WithQuerier(db),
		WithNotifier(notify.NewClient(notify.WithTransport(transport))),
	)
	assert.NoError(t, watcher.Run(context.Background(), now))

	snap, err := repo.LoadSnapshot(context.Background(), db, model.CategoryF1)
	assert.NoError(t, err)
	assert.Len(t, snap.Entries, 1)
	assert.Equal(t, "Alonso", snap.Entries[0].Name)
}
