package model

// Directory records mirror the remote Microsoft directory. The remote id is
// the stable external key; local existence is always tested by it.

type MicrosoftUser struct {
	ID            string
	DisplayName   string
	Mail          string
	PrincipalName string
}

type Calendar struct {
	ID                string
	CalendarName      string
	ChangeKey         string
	Color             string
	GroupClassID      string
	IsDefaultCalendar bool
	OwnerEmail        string
	OwnerName         string

	// MicrosoftUser is the directory identity the calendar is bound to;
	// organizer checks compare against it.
	MicrosoftUser   string
	Enabled         bool
	PushToOutlook   bool
	PullFromOutlook bool
}

type CalendarGroup struct {
	ID            string
	Name          string
	ChangeKey     string
	ClassID       string
	MicrosoftUser string
}

type DirectoryGroup struct {
	ID          string
	DisplayName string
	Mail        string
	Members     []string // Microsoft user ids
}
