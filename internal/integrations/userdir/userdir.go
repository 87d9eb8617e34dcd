package userdir

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/inferno/inferno-bank/internal/apperrors"
	"github.com/sirupsen/logrus"
)

// Client checks user existence against the user service over HTTP. A
// 200 means the user exists, a 404 means it does not; any other status
// or a transport/timeout failure is a dependency error, never a "not
// found".
type Client struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

// NewClient initializes a user directory client. timeout bounds each
// existence check.
func NewClient(baseURL string, timeout time.Duration, log *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Exists reports whether the user identified by userID is known to the
// user directory.
func (c *Client) Exists(ctx context.Context, userID string) (bool, error) {
	url := fmt.Sprintf("%s/users/profile/%s", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, apperrors.Wrap(apperrors.Dependency, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, apperrors.Wrap(apperrors.Dependency, "user directory unreachable", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)

	c.log.Debugf("User directory response for %s: %d", userID, resp.StatusCode)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, apperrors.New(apperrors.Dependency,
			fmt.Sprintf("unexpected user directory status: %d", resp.StatusCode))
	}
}
