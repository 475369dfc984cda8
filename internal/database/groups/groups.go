package groups

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

type groupDTO struct {
	ID          string
	DisplayName string
	Mail        string
}

var baseQuery = database.PSQL.
	Select(
		"id",
		"display_name",
		"mail",
	).
	From(database.DirectoryGroupsTable)

func (r *Repository) GetGroupByRemoteID(ctx context.Context, q database.Queryable, id string) (*model.DirectoryGroup, error) {
	qb := baseQuery.
		Where(sq.Eq{"id": id})

	var dtos []*groupDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	if len(dtos) == 0 {
		return nil, model.ErrNoRecord
	}

	group := &model.DirectoryGroup{
		ID:          dtos[0].ID,
		DisplayName: dtos[0].DisplayName,
		Mail:        dtos[0].Mail,
	}

	mqb := database.PSQL.
		Select("microsoft_user").
		From(database.GroupMembersTable).
		Where(sq.Eq{"group_id": id}).
		OrderBy("microsoft_user")

	if err := q.Select(ctx, &group.Members, mqb); err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	return group, nil
}

func (r *Repository) CreateGroup(ctx context.Context, q database.Queryable, g *model.DirectoryGroup) error {
	qb := database.PSQL.
		Insert(database.DirectoryGroupsTable).
		Columns("id", "display_name", "mail").
		Values(g.ID, g.DisplayName, g.Mail)

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return r.ReplaceMembers(ctx, q, g.ID, g.Members)
}

// SetGroupFields applies a computed diff to a group record.
func (r *Repository) SetGroupFields(ctx context.Context, q database.Queryable, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	qb := database.PSQL.
		Update(database.DirectoryGroupsTable).
		SetMap(fields).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

// ReplaceMembers rewrites the membership links for a group; the remote
// listing is authoritative.
func (r *Repository) ReplaceMembers(ctx context.Context, q database.Queryable, groupID string, members []string) error {
	dqb := database.PSQL.
		Delete(database.GroupMembersTable).
		Where(sq.Eq{"group_id": groupID})

	if _, err := q.Exec(ctx, dqb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	for _, m := range members {
		iqb := database.PSQL.
			Insert(database.GroupMembersTable).
			Columns("group_id", "microsoft_user").
			Values(groupID, m)

		if _, err := q.Exec(ctx, iqb); err != nil {
			return fmt.Errorf("SQL request: %w", err)
		}
	}

	return nil
}
