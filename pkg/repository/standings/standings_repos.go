//nolint:whitespace // can't make both editor and linter happy
package standings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/racedayapp/notify-manager-go/pkg/model"
	"github.com/racedayapp/notify-manager-go/pkg/repository"
)

// LoadCurrent reads the source standings collection for one category.
// Rows without a driver name are returned as-is; filtering them is watcher
// policy, not storage concern.
func LoadCurrent(
	ctx context.Context,
	conn repository.Querier,
	cat model.Category,
) ([]model.StandingEntry, error) {
	rows, err := conn.Query(ctx, `
		select driver_name, points, position from race_standing
		where category=$1`, cat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]model.StandingEntry, 0)
	for rows.Next() {
		var item model.StandingEntry
		if err := rows.Scan(&item.Name, &item.Points, &item.Position); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

// LoadSnapshot returns the previous run's snapshot for the category.
// repository.ErrNoData means no snapshot has been written yet.
func LoadSnapshot(
	ctx context.Context,
	conn repository.Querier,
	cat model.Category,
) (*model.StandingsSnapshot, error) {
	row := conn.QueryRow(ctx, `
		select entries, last_update from standings_snapshot
		where category=$1`, cat)
	var rawEntries []byte
	item := model.StandingsSnapshot{Category: cat}
	if err := row.Scan(&rawEntries, &item.LastUpdate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNoData
		}
		return nil, err
	}
	if err := json.Unmarshal(rawEntries, &item.Entries); err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveSnapshot overwrites the category's snapshot whole (upsert, no merge).
// The "never overwrite with an empty run" guard lives in the watcher.
func SaveSnapshot(
	ctx context.Context,
	conn repository.Querier,
	snap *model.StandingsSnapshot,
) error {
	rawEntries, err := json.Marshal(snap.Entries)
	if err != nil {
		return err
	}
	if snap.LastUpdate.IsZero() {
		snap.LastUpdate = time.Now().UTC()
	}
	_, err = conn.Exec(ctx, `
		insert into standings_snapshot (category, entries, last_update)
		values ($1,$2,$3)
		on conflict (category) do update
		set entries=excluded.entries, last_update=excluded.last_update`,
		snap.Category, rawEntries, snap.LastUpdate)
	return err
}
