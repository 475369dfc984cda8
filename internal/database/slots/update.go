package slots

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

// SetFields writes exactly the given columns in one batched UPDATE.
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
		Update(database.EventSlotsTable).
		SetMap(values).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

// ReplaceProposals swaps the proposal list wholesale; used by slot
// rescheduling.
func (r *Repository) ReplaceProposals(ctx context.Context, q database.Queryable, slotID int64, proposals []*model.SlotProposal) error {
	qb := database.PSQL.
		Delete(database.SlotProposalsTable).
		Where(sq.Eq{"slot_id": slotID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return insertProposals(ctx, q, slotID, proposals)
}
