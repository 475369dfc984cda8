package calendars

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/onecal/outlook-sync-backend/internal/database"
)

// SetCalendarFields applies a computed diff to a calendar record.
func (r *Repository) SetCalendarFields(ctx context.Context, q database.Queryable, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	if hex, ok := fields["color"].(string); ok {
		normalized, err := normalizeColor(hex)
		if err != nil {
			return err
		}
		fields["color"] = normalized
	}

	qb := database.PSQL.
		Update(database.OutlookCalendarsTable).
		SetMap(fields).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func (r *Repository) SetCalendarGroupFields(ctx context.Context, q database.Queryable, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	qb := database.PSQL.
		Update(database.OutlookCalendarGroupsTable).
		SetMap(fields).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
