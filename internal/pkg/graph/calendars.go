package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

func (c *Client) ListCalendars(ctx context.Context, userID string) ([]*Calendar, error) {
	chunks, err := c.getPages(ctx, "/users/"+url.PathEscape(userID)+"/calendars")
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}

	var calendars []*Calendar
	for _, chunk := range chunks {
		var page []*Calendar
		if err := json.Unmarshal(chunk, &page); err != nil {
			return nil, fmt.Errorf("decode calendars: %w", err)
		}
		calendars = append(calendars, page...)
	}

	return calendars, nil
}

func (c *Client) ListCalendarGroups(ctx context.Context, userID string) ([]*CalendarGroup, error) {
	chunks, err := c.getPages(ctx, "/users/"+url.PathEscape(userID)+"/calendarGroups")
	if err != nil {
		return nil, fmt.Errorf("list calendar groups: %w", err)
	}

	var groups []*CalendarGroup
	for _, chunk := range chunks {
		var page []*CalendarGroup
		if err := json.Unmarshal(chunk, &page); err != nil {
			return nil, fmt.Errorf("decode calendar groups: %w", err)
		}
		groups = append(groups, page...)
	}

	return groups, nil
}
