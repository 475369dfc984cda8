package calendars

import (
	"fmt"

	"github.com/gerow/go-color"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

type calendarDTO struct {
	ID                string
	CalendarName      string
	ChangeKey         string
	Color             string
	GroupClassID      string `db:"group_class_id"`
	IsDefaultCalendar bool
	OwnerEmail        string
	OwnerName         string
	MicrosoftUser     string
	Enabled           bool
	PushToOutlook     bool
	PullFromOutlook   bool
}

type calendarGroupDTO struct {
	ID            string
	Name          string
	ChangeKey     string
	ClassID       string `db:"class_id"`
	MicrosoftUser string
}

func mapToCalendar(d *calendarDTO) *model.Calendar {
	return &model.Calendar{
		ID:                d.ID,
		CalendarName:      d.CalendarName,
		ChangeKey:         d.ChangeKey,
		Color:             d.Color,
		GroupClassID:      d.GroupClassID,
		IsDefaultCalendar: d.IsDefaultCalendar,
		OwnerEmail:        d.OwnerEmail,
		OwnerName:         d.OwnerName,
		MicrosoftUser:     d.MicrosoftUser,
		Enabled:           d.Enabled,
		PushToOutlook:     d.PushToOutlook,
		PullFromOutlook:   d.PullFromOutlook,
	}
}

func mapToCalendarGroup(d *calendarGroupDTO) *model.CalendarGroup {
	return &model.CalendarGroup{
		ID:            d.ID,
		Name:          d.Name,
		ChangeKey:     d.ChangeKey,
		ClassID:       d.ClassID,
		MicrosoftUser: d.MicrosoftUser,
	}
}

// normalizeColor validates a pulled hex color and renders it back in the
// canonical "#rrggbb" form. Outlook is inconsistent about the leading hash.
func normalizeColor(hex string) (string, error) {
	if hex == "" {
		return "", nil
	}

	rgb, err := color.HTMLToRGB(hex)
	if err != nil {
		return "", fmt.Errorf("parse color %q: %w", hex, err)
	}

	return "#" + rgb.ToHTML(), nil
}
