package translate

import "strings"

const (
	suffixOnline   = " - Online"
	suffixInPerson = " - In Person"
)

// PrepareSubject tags the subject with the meeting mode. A recognized tag
// already present is stripped first so repeated calls never stack suffixes.
func PrepareSubject(subject string, isOnline bool) string {
	for {
		switch {
		case strings.HasSuffix(subject, suffixOnline):
			subject = strings.TrimSuffix(subject, suffixOnline)
		case strings.HasSuffix(subject, suffixInPerson):
			subject = strings.TrimSuffix(subject, suffixInPerson)
		default:
			if isOnline {
				return subject + suffixOnline
			}
			return subject + suffixInPerson
		}
	}
}
