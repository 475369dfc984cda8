package reconcile

import (
	"fmt"

	"github.com/onecal/outlook-sync-backend/internal/business/translate"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

type compareStrategy int

const (
	compareScalar compareStrategy = iota
	compareDateTime
)

// fieldSpec declares one diffable event column with its comparison
// strategy. Participants are not listed here; they go through the nested
// merge instead of the scalar diff.
type fieldSpec struct {
	column   string
	strategy compareStrategy
	incoming func(translate.EventFields) interface{}
	current  func(*model.Event) interface{}
}

var eventFieldSpecs = []fieldSpec{
	{"subject", compareScalar,
		func(in translate.EventFields) interface{} { return in.Subject },
		func(ev *model.Event) interface{} { return ev.Subject }},
	{"description", compareScalar,
		func(in translate.EventFields) interface{} { return in.Description },
		func(ev *model.Event) interface{} { return ev.Description }},
	{"starts_on", compareDateTime,
		func(in translate.EventFields) interface{} { return in.StartsOn },
		func(ev *model.Event) interface{} { return ev.StartsOn }},
	{"ends_on", compareDateTime,
		func(in translate.EventFields) interface{} { return in.EndsOn },
		func(ev *model.Event) interface{} { return ev.EndsOn }},
	{"all_day", compareScalar,
		func(in translate.EventFields) interface{} { return in.AllDay },
		func(ev *model.Event) interface{} { return ev.AllDay }},
	{"status", compareScalar,
		func(in translate.EventFields) interface{} { return string(statusOf(in)) },
		func(ev *model.Event) interface{} { return string(ev.Status) }},
	{"location", compareScalar,
		func(in translate.EventFields) interface{} { return in.Location },
		func(ev *model.Event) interface{} { return ev.Location }},
	{"change_key", compareScalar,
		func(in translate.EventFields) interface{} { return in.ChangeKey },
		func(ev *model.Event) interface{} { return ev.ChangeKey }},
	{"event_uid", compareScalar,
		func(in translate.EventFields) interface{} { return in.EventUID },
		func(ev *model.Event) interface{} { return ev.EventUID }},
	{"event_link", compareScalar,
		func(in translate.EventFields) interface{} { return in.EventLink },
		func(ev *model.Event) interface{} { return ev.EventLink }},
	{"meeting_link", compareScalar,
		func(in translate.EventFields) interface{} { return in.MeetingLink },
		func(ev *model.Event) interface{} { return ev.MeetingLink }},
}

func statusOf(in translate.EventFields) model.EventStatus {
	if in.Cancelled {
		return model.EventStatusCancelled
	}
	return model.EventStatusOpen
}

// diffEvent computes the minimal update set between the stored record and
// the incoming fields. Datetime columns compare as instants so formatting
// differences never produce a write.
func diffEvent(existing *model.Event, in translate.EventFields) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	for _, spec := range eventFieldSpecs {
		newVal := spec.incoming(in)
		curVal := spec.current(existing)

		switch spec.strategy {
		case compareDateTime:
			changed, err := datetimeChanged(curVal.(string), newVal.(string))
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", spec.column, err)
			}
			if changed {
				fields[spec.column] = newVal
			}
		default:
			if newVal != curVal {
				fields[spec.column] = newVal
			}
		}
	}

	return fields, nil
}

func datetimeChanged(current, incoming string) (bool, error) {
	if current == incoming {
		return false, nil
	}
	if current == "" || incoming == "" {
		return true, nil
	}

	cur, err := model.ParseDateTime(current)
	if err != nil {
		return false, fmt.Errorf("parse stored value: %w", err)
	}
	in, err := model.ParseDateTime(incoming)
	if err != nil {
		return false, fmt.Errorf("parse incoming value: %w", err)
	}

	return !cur.Equal(in), nil
}
