package graph

import (
	"context"
	"encoding/json"
	"fmt"
)

func (c *Client) ListUsers(ctx context.Context) ([]*User, error) {
	chunks, err := c.getPages(ctx, "/users")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var users []*User
	for _, chunk := range chunks {
		var page []*User
		if err := json.Unmarshal(chunk, &page); err != nil {
			return nil, fmt.Errorf("decode users: %w", err)
		}
		users = append(users, page...)
	}

	return users, nil
}
