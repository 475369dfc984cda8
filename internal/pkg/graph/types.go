package graph

// Wire types follow the Microsoft Graph v1.0 calendar resources. Read-only
// fields carry omitempty so they stay out of outbound payloads.

type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type EmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

type ResponseStatus struct {
	Response string `json:"response,omitempty"`
	Time     string `json:"time,omitempty"`
}

type Attendee struct {
	Type         string         `json:"type,omitempty"`
	Status       ResponseStatus `json:"status"`
	EmailAddress EmailAddress   `json:"emailAddress"`
}

type ItemBody struct {
	ContentType string `json:"contentType,omitempty"`
	Content     string `json:"content,omitempty"`
}

type Location struct {
	DisplayName string `json:"displayName,omitempty"`
}

type OnlineMeeting struct {
	JoinURL string `json:"joinUrl,omitempty"`
}

type RecurrencePattern struct {
	Type       string   `json:"type,omitempty"`
	Interval   int      `json:"interval,omitempty"`
	DaysOfWeek []string `json:"daysOfWeek,omitempty"`
}

type RecurrenceRange struct {
	Type      string `json:"type,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

type PatternedRecurrence struct {
	Pattern RecurrencePattern `json:"pattern"`
	Range   RecurrenceRange   `json:"range"`
}

type Event struct {
	ID                    string               `json:"id,omitempty"`
	ChangeKey             string               `json:"changeKey,omitempty"`
	ICalUID               string               `json:"iCalUId,omitempty"`
	Subject               string               `json:"subject"`
	Body                  *ItemBody            `json:"body,omitempty"`
	Start                 *DateTimeTimeZone    `json:"start,omitempty"`
	End                   *DateTimeTimeZone    `json:"end,omitempty"`
	Location              *Location            `json:"location,omitempty"`
	IsAllDay              bool                 `json:"isAllDay"`
	IsCancelled           bool                 `json:"isCancelled,omitempty"`
	IsOrganizer           bool                 `json:"isOrganizer,omitempty"`
	Organizer             *Recipient           `json:"organizer,omitempty"`
	Attendees             []Attendee           `json:"attendees,omitempty"`
	Recurrence            *PatternedRecurrence `json:"recurrence,omitempty"`
	IsOnlineMeeting       *bool                `json:"isOnlineMeeting,omitempty"`
	OnlineMeetingProvider string               `json:"onlineMeetingProvider,omitempty"`
	OnlineMeeting         *OnlineMeeting       `json:"onlineMeeting,omitempty"`
	WebLink               string               `json:"webLink,omitempty"`
}

type Calendar struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	ChangeKey         string        `json:"changeKey"`
	HexColor          string        `json:"hexColor"`
	IsDefaultCalendar bool          `json:"isDefaultCalendar"`
	Owner             *EmailAddress `json:"owner,omitempty"`
}

type CalendarGroup struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ChangeKey string `json:"changeKey"`
	ClassID   string `json:"classId"`
}

type User struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

type Group struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Mail        string `json:"mail"`
}

type directoryObject struct {
	ID   string `json:"id"`
	Type string `json:"@odata.type"`
}
