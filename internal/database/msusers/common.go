package msusers

import "github.com/onecal/outlook-sync-backend/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"id",
		"display_name",
		"mail",
		"principal_name",
	).
	From(database.MicrosoftUsersTable)
