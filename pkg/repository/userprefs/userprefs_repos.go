//nolint:whitespace // can't make both editor and linter happy
package userprefs

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/racedayapp/notify-manager-go/pkg/model"
	"github.com/racedayapp/notify-manager-go/pkg/repository"
)

var selector = `select id, external_id, fcm_token, preferences
	from user_preference`

// LoadWithToken returns every user that currently has a device token.
func LoadWithToken(
	ctx context.Context,
	conn repository.Querier,
) ([]*model.UserPreference, error) {
	rows, err := conn.Query(ctx, selector+" where fcm_token is not null")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.UserPreference, 0)
	for rows.Next() {
		item, err := readData(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

func LoadById(
	ctx context.Context,
	conn repository.Querier,
	id uint32,
) (*model.UserPreference, error) {
	item, err := readData(conn.QueryRow(ctx, selector+" where id=$1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNoData
	}
	return item, err
}

// ClearTokens nulls the token of all given users in one statement.
// Only the token field is touched; the documents stay.
// Returns the number of cleared rows.
func ClearTokens(
	ctx context.Context,
	conn repository.Querier,
	ids []uint32,
) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmdTag, err := conn.Exec(ctx,
		"update user_preference set fcm_token=null where id=any($1)", ids)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func readData(row pgx.Row) (*model.UserPreference, error) {
	var item model.UserPreference
	var rawPrefs []byte
	if err := row.Scan(
		&item.ID, &item.ExternalID, &item.FCMToken, &rawPrefs,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawPrefs, &item.Prefs); err != nil {
		return nil, err
	}
	return &item, nil
}
