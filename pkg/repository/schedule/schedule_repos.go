//nolint:whitespace // can't make both editor and linter happy
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/racedayapp/notify-manager-go/pkg/model"
	"github.com/racedayapp/notify-manager-go/pkg/repository"
)

var selector = `select category, event_key, gp_name, sessions
	from schedule_event`

// sessionDoc mirrors the jsonb session map of a schedule document.
// A missing or unparseable start is treated as TBD.
type sessionDoc struct {
	Start *string `json:"start"`
}

func LoadByCategory(
	ctx context.Context,
	conn repository.Querier,
	cat model.Category,
) ([]*model.ScheduleEvent, error) {
	rows, err := conn.Query(ctx, selector+" where category=$1", cat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.ScheduleEvent, 0)
	for rows.Next() {
		item, err := readData(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

func LoadByKey(
	ctx context.Context,
	conn repository.Querier,
	cat model.Category,
	eventKey string,
) (*model.ScheduleEvent, error) {
	row := conn.QueryRow(ctx,
		selector+" where category=$1 and event_key=$2", cat, eventKey)
	item, err := readData(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNoData
	}
	return item, err
}

func readData(row pgx.Row) (*model.ScheduleEvent, error) {
	var item model.ScheduleEvent
	var rawSessions []byte
	if err := row.Scan(
		&item.Category, &item.EventKey, &item.GpName, &rawSessions,
	); err != nil {
		return nil, err
	}
	var docs map[model.SessionType]sessionDoc
	if err := json.Unmarshal(rawSessions, &docs); err != nil {
		return nil, err
	}
	item.Sessions = make(map[model.SessionType]model.SessionSlot, len(docs))
	for st, doc := range docs {
		slot := model.SessionSlot{Type: st}
		if doc.Start != nil {
			if ts, err := time.Parse(time.RFC3339, *doc.Start); err == nil {
				utc := ts.UTC()
				slot.Start = &utc
			}
			// otherwise keep Start nil: an unparseable instant is TBD
		}
		item.Sessions[st] = slot
	}
	return &item, nil
}
