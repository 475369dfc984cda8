package events

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/onecal/outlook-sync-backend/internal/database"
)

// SetFields writes exactly the given columns in one batched UPDATE,
// bypassing full-record validation. refreshModified distinguishes a direct
// local edit (stamp modified) from a pull-sync reconciliation write (leave
// modified untouched).
func (r *Repository) SetFields(ctx context.Context, q database.Queryable, id int64, fields map[string]interface{}, refreshModified bool) error {
	if len(fields) == 0 {
		return nil
	}

	values := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	if refreshModified {
		values["modified"] = sq.Expr("now()")
	}

	qb := database.PSQL.
		Update(database.EventsTable).
		SetMap(values).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

// SetParticipantFields applies a computed diff to a single participant row.
func (r *Repository) SetParticipantFields(ctx context.Context, q database.Queryable, participantID int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	qb := database.PSQL.
		Update(database.EventParticipantsTable).
		SetMap(fields).
		Where(sq.Eq{"id": participantID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
