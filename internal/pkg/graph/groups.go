package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

const userObjectType = "#microsoft.graph.user"

func (c *Client) ListGroups(ctx context.Context) ([]*Group, error) {
	chunks, err := c.getPages(ctx, "/groups")
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	var groups []*Group
	for _, chunk := range chunks {
		var page []*Group
		if err := json.Unmarshal(chunk, &page); err != nil {
			return nil, fmt.Errorf("decode groups: %w", err)
		}
		groups = append(groups, page...)
	}

	return groups, nil
}

// ListGroupMembers returns the ids of the group's user members. Non-user
// directory objects (nested groups, devices) are skipped.
func (c *Client) ListGroupMembers(ctx context.Context, groupID string) ([]string, error) {
	chunks, err := c.getPages(ctx, "/groups/"+url.PathEscape(groupID)+"/members")
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}

	var members []string
	for _, chunk := range chunks {
		var page []*directoryObject
		if err := json.Unmarshal(chunk, &page); err != nil {
			return nil, fmt.Errorf("decode group members: %w", err)
		}
		for _, obj := range page {
			if obj.Type == userObjectType {
				members = append(members, obj.ID)
			}
		}
	}

	return members, nil
}
