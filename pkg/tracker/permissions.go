package tracker

import (
	"context"
	"fmt"
	"net/url"
)

type PermissionService struct {
	client *Client
}

func (c *Client) Permissions() *PermissionService {
	return &PermissionService{client: c}
}

// ForUser fetches the permission map a user holds on a queue. A 404 means
// the user has no specific permissions there and yields (nil, nil).
func (s *PermissionService) ForUser(ctx context.Context, queueKey, userID string) (*PermissionEntry, error) {
	endpoint := fmt.Sprintf("/v3/queues/%s/permissions/users/%s",
		url.PathEscape(queueKey), url.PathEscape(userID))
	return s.fetch(ctx, endpoint)
}

// ForGroup fetches the permission map a group holds on a queue. A 404 means
// the group has no specific permissions there and yields (nil, nil).
func (s *PermissionService) ForGroup(ctx context.Context, queueKey, groupID string) (*PermissionEntry, error) {
	endpoint := fmt.Sprintf("/v3/queues/%s/permissions/groups/%s",
		url.PathEscape(queueKey), url.PathEscape(groupID))
	return s.fetch(ctx, endpoint)
}

func (s *PermissionService) fetch(ctx context.Context, endpoint string) (*PermissionEntry, error) {
	resp, err := s.client.get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if resp.NotFound() {
		return nil, nil
	}
	var entry PermissionEntry
	if err := resp.Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
