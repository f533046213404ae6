//nolint:whitespace // can't make both editor and linter happy
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/racedayapp/notify-manager-go/pkg/model"
	"github.com/racedayapp/notify-manager-go/pkg/repository"
)

// Create writes one ledger row. A concurrent writer that lost the race is a
// no-op (created=false); the ledger is append-only either way.
func Create(
	ctx context.Context,
	conn repository.Querier,
	rec *model.SentNotification,
) (created bool, err error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	cmdTag, err := conn.Exec(ctx, `
		insert into sent_notification (
			key, category, event_key, session_type, gp_name, minutes_before,
			recipient_count, success_count, failure_count, created_at
		) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		on conflict (key) do nothing`,
		rec.Key, rec.Category, rec.EventKey, rec.SessionType, rec.GpName,
		rec.MinutesBefore, rec.RecipientCount, rec.SuccessCount,
		rec.FailureCount, rec.CreatedAt)
	if err != nil {
		return false, err
	}
	return cmdTag.RowsAffected() > 0, nil
}

// KeysSince loads all dedupe keys written at or after the given instant.
// The session watcher only needs recent keys; anything older cannot collide
// with the current lookahead window.
func KeysSince(
	ctx context.Context,
	conn repository.Querier,
	since time.Time,
) (map[string]struct{}, error) {
	rows, err := conn.Query(ctx,
		"select key from sent_notification where created_at >= $1", since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		ret[key] = struct{}{}
	}
	return ret, rows.Err()
}

func LoadByKey(
	ctx context.Context,
	conn repository.Querier,
	key string,
) (*model.SentNotification, error) {
	row := conn.QueryRow(ctx, `
		select key, category, event_key, session_type, gp_name, minutes_before,
			recipient_count, success_count, failure_count, created_at
		from sent_notification where key=$1`, key)
	var item model.SentNotification
	if err := row.Scan(
		&item.Key, &item.Category, &item.EventKey, &item.SessionType,
		&item.GpName, &item.MinutesBefore, &item.RecipientCount,
		&item.SuccessCount, &item.FailureCount, &item.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNoData
		}
		return nil, err
	}
	return &item, nil
}

// DeleteOlderThan removes ledger rows past retention,
// returns number of rows deleted.
func DeleteOlderThan(
	ctx context.Context,
	conn repository.Querier,
	cutoff time.Time,
) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		"delete from sent_notification where created_at < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
