package tracker

import "context"

type UserService struct {
	client *Client
}

func (c *Client) Users() *UserService {
	return &UserService{client: c}
}

// List fetches the full user list. The endpoint is not paginated.
func (s *UserService) List(ctx context.Context) ([]User, error) {
	resp, err := s.client.get(ctx, "/v3/users", nil)
	if err != nil {
		return nil, err
	}
	var users []User
	if err := resp.Decode(&users); err != nil {
		return nil, err
	}
	s.client.logger.Debugw("retrieved users", "count", len(users))
	return users, nil
}
