package tracker

import (
	"context"
	"net/url"
	"strconv"
)

const queuePageSize = 50

type QueueService struct {
	client *Client
}

func (c *Client) Queues() *QueueService {
	return &QueueService{client: c}
}

// List fetches every queue, page by page, preserving request order. Paging
// stops at the first page that is empty or shorter than the page size.
func (s *QueueService) List(ctx context.Context) ([]Queue, error) {
	var all []Queue
	for page := 1; ; page++ {
		query := url.Values{
			"perPage": []string{strconv.Itoa(queuePageSize)},
			"page":    []string{strconv.Itoa(page)},
		}
		resp, err := s.client.get(ctx, "/v3/queues", query)
		if err != nil {
			return nil, err
		}
		var batch []Queue
		if err := resp.Decode(&batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		if len(batch) < queuePageSize {
			break
		}
	}
	s.client.logger.Debugw("retrieved queues", "count", len(all))
	return all, nil
}
