package model

import (
	"time"

	"github.com/onecal/outlook-sync-backend/internal/config"
)

// DateTimeFormat is the canonical naive form local event datetimes are
// stored in. The instant is always in the system timezone.
const DateTimeFormat = "2006-01-02 15:04:05"

const DateFormat = "2006-01-02"

// ParseDate interprets a stored date string in the system timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, config.SystemTimezone())
}

// ParseDateTime interprets a stored naive datetime string in the system
// timezone.
func ParseDateTime(s string) (time.Time, error) {
	return time.ParseInLocation(DateTimeFormat, s, config.SystemTimezone())
}

// FormatDateTime renders an instant as the stored naive form, converting
// into the system timezone first.
func FormatDateTime(t time.Time) string {
	return t.In(config.SystemTimezone()).Format(DateTimeFormat)
}
