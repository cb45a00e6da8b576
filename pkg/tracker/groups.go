package tracker

import (
	"context"
	"net/url"
	"strconv"
)

// The groups endpoint allows much larger pages than queues.
const groupPageSize = 1000

type GroupService struct {
	client *Client
}

func (c *Client) Groups() *GroupService {
	return &GroupService{client: c}
}

// List fetches every group, page by page, preserving request order.
func (s *GroupService) List(ctx context.Context) ([]Group, error) {
	var all []Group
	for page := 1; ; page++ {
		query := url.Values{
			"perPage": []string{strconv.Itoa(groupPageSize)},
			"page":    []string{strconv.Itoa(page)},
		}
		resp, err := s.client.get(ctx, "/v3/groups", query)
		if err != nil {
			return nil, err
		}
		var batch []Group
		if err := resp.Decode(&batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		if len(batch) < groupPageSize {
			break
		}
	}
	s.client.logger.Debugw("retrieved groups", "count", len(all))
	return all, nil
}
