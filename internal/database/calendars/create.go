package calendars

import (
	"context"
	"fmt"

	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

func (r *Repository) CreateCalendar(ctx context.Context, q database.Queryable, c *model.Calendar) error {
	colorHex, err := normalizeColor(c.Color)
	if err != nil {
		return err
	}

	qb := database.PSQL.
		Insert(database.OutlookCalendarsTable).
		Columns(
			"id",
			"calendar_name",
			"change_key",
			"color",
			"group_class_id",
			"is_default_calendar",
			"owner_email",
			"owner_name",
			"microsoft_user",
			"enabled",
			"push_to_outlook",
			"pull_from_outlook",
		).
		Values(
			c.ID,
			c.CalendarName,
			c.ChangeKey,
			colorHex,
			c.GroupClassID,
			c.IsDefaultCalendar,
			c.OwnerEmail,
			c.OwnerName,
			c.MicrosoftUser,
			c.Enabled,
			c.PushToOutlook,
			c.PullFromOutlook,
		)

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func (r *Repository) CreateCalendarGroup(ctx context.Context, q database.Queryable, g *model.CalendarGroup) error {
	qb := database.PSQL.
		Insert(database.OutlookCalendarGroupsTable).
		Columns("id", "name", "change_key", "class_id", "microsoft_user").
		Values(g.ID, g.Name, g.ChangeKey, g.ClassID, g.MicrosoftUser)

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
