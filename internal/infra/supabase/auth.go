package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/yanqian/billing-dashboard/internal/domain/auth"
)

type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GetUser resolves an access token through GET /auth/v1/user. Rejected or
// expired tokens report false without an error.
func (c *Client) GetUser(ctx context.Context, accessToken string) (auth.User, bool, error) {
	resp, err := c.get(ctx, c.baseURL+"/auth/v1/user", accessToken)
	if err != nil {
		return auth.User{}, false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return auth.User{}, false, nil
	case resp.StatusCode >= 300:
		return auth.User{}, false, statusError(resp, "auth lookup error")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return auth.User{}, false, fmt.Errorf("read auth user: %w", err)
	}
	var user authUser
	if err := json.Unmarshal(body, &user); err != nil {
		return auth.User{}, false, fmt.Errorf("decode auth user: %w", err)
	}
	if user.ID == "" {
		return auth.User{}, false, nil
	}
	return auth.User{ID: user.ID, Email: user.Email, Role: user.Role}, true, nil
}

var _ auth.RemoteLookup = (*Client)(nil)
