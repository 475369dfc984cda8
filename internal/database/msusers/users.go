package msusers

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

type userDTO struct {
	ID            string
	DisplayName   string
	Mail          string
	PrincipalName string
}

func mapToUser(d *userDTO) *model.MicrosoftUser {
	return &model.MicrosoftUser{
		ID:            d.ID,
		DisplayName:   d.DisplayName,
		Mail:          d.Mail,
		PrincipalName: d.PrincipalName,
	}
}

// GetUsers returns every remote-linked account known locally; the sweep
// iterates these in enumeration order.
func (r *Repository) GetUsers(ctx context.Context, q database.Queryable) ([]*model.MicrosoftUser, error) {
	var dtos []*userDTO
	if err := q.Select(ctx, &dtos, baseQuery); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.MicrosoftUser, len(dtos))
	for i, d := range dtos {
		res[i] = mapToUser(d)
	}

	return res, nil
}

func (r *Repository) GetUserByRemoteID(ctx context.Context, q database.Queryable, id string) (*model.MicrosoftUser, error) {
	qb := baseQuery.
		Where(sq.Eq{"id": id})

	var dtos []*userDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	if len(dtos) == 0 {
		return nil, model.ErrNoRecord
	}

	return mapToUser(dtos[0]), nil
}

func (r *Repository) CreateUser(ctx context.Context, q database.Queryable, u *model.MicrosoftUser) error {
	qb := database.PSQL.
		Insert(database.MicrosoftUsersTable).
		Columns("id", "display_name", "mail", "principal_name").
		Values(u.ID, u.DisplayName, u.Mail, u.PrincipalName)

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

// SetUserFields applies a computed diff to a user record.
func (r *Repository) SetUserFields(ctx context.Context, q database.Queryable, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	qb := database.PSQL.
		Update(database.MicrosoftUsersTable).
		SetMap(fields).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
