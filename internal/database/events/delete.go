package events

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/onecal/outlook-sync-backend/internal/database"
)

// DeleteParticipant removes a single participant row; used only by the
// explicit edit operation, never by pull reconciliation.
func (r *Repository) DeleteParticipant(ctx context.Context, q database.Queryable, participantID int64) error {
	qb := database.PSQL.
		Delete(database.EventParticipantsTable).
		Where(sq.Eq{"id": participantID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
