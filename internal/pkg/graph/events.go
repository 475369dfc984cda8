package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/onecal/outlook-sync-backend/internal/model"
)

// ListEventsOptions narrows the event listing to a calendar, optionally
// inside a calendar group. A group without a calendar is not addressable.
type ListEventsOptions struct {
	CalendarID string
	GroupID    string
}

type DeleteResult int

const (
	DeleteResultDeleted DeleteResult = iota
	DeleteResultNotFound
)

func eventsPath(userID string, opts ListEventsOptions) (string, error) {
	if opts.GroupID != "" && opts.CalendarID == "" {
		return "", model.NewValidationError("calendar group %q given without a calendar", opts.GroupID)
	}

	path := "/users/" + url.PathEscape(userID)
	if opts.GroupID != "" {
		path += "/calendarGroups/" + url.PathEscape(opts.GroupID)
	}
	if opts.CalendarID != "" {
		path += "/calendars/" + url.PathEscape(opts.CalendarID)
	} else {
		path += "/calendar"
	}

	return path + "/events", nil
}

// ListEvents fetches every event of the addressed calendar. A 404 means the
// user or calendar has no such collection remotely and yields an empty list.
func (c *Client) ListEvents(ctx context.Context, userID string, opts ListEventsOptions) ([]*Event, error) {
	path, err := eventsPath(userID, opts)
	if err != nil {
		return nil, err
	}

	chunks, err := c.getPages(ctx, path)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list events: %w", err)
	}

	var events []*Event
	for _, chunk := range chunks {
		var page []*Event
		if err := json.Unmarshal(chunk, &page); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
		events = append(events, page...)
	}

	return events, nil
}

func (c *Client) CreateEvent(ctx context.Context, userID string, opts ListEventsOptions, event *Event) (*Event, error) {
	path, err := eventsPath(userID, opts)
	if err != nil {
		return nil, err
	}

	created := &Event{}
	if err := c.do(ctx, http.MethodPost, path, event, created, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	return created, nil
}

func (c *Client) UpdateEvent(ctx context.Context, userID string, opts ListEventsOptions, eventID string, event *Event) (*Event, error) {
	path, err := eventsPath(userID, opts)
	if err != nil {
		return nil, err
	}
	path += "/" + url.PathEscape(eventID)

	updated := &Event{}
	if err := c.do(ctx, http.MethodPatch, path, event, updated, http.StatusOK); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	return updated, nil
}

// DeleteEvent removes the remote event. An already-gone event is not an
// error; the caller learns about it through the result.
func (c *Client) DeleteEvent(ctx context.Context, userID string, opts ListEventsOptions, eventID string) (DeleteResult, error) {
	path, err := eventsPath(userID, opts)
	if err != nil {
		return 0, err
	}
	path += "/" + url.PathEscape(eventID)

	if err := c.do(ctx, http.MethodDelete, path, nil, nil, http.StatusNoContent); err != nil {
		if IsNotFound(err) {
			return DeleteResultNotFound, nil
		}
		return 0, fmt.Errorf("delete event: %w", err)
	}

	return DeleteResultDeleted, nil
}

// CancelEvent asks the organizer's mailbox to cancel the meeting and send
// the cancellation message with the given comment.
func (c *Client) CancelEvent(ctx context.Context, userID string, opts ListEventsOptions, eventID, comment string) error {
	path, err := eventsPath(userID, opts)
	if err != nil {
		return err
	}
	path += "/" + url.PathEscape(eventID) + "/cancel"

	body := map[string]string{"comment": comment}
	if err := c.do(ctx, http.MethodPost, path, body, nil, http.StatusAccepted); err != nil {
		return fmt.Errorf("cancel event: %w", err)
	}

	return nil
}
