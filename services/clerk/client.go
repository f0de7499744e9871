package clerksvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/trezcool/elimu/core"
)

// Profile is the subset of the provider's user record we care about.
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (p Profile) FullName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return "Unknown User"
	}
	return name
}

// ProfileService resolves user ids to display profiles.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (Profile, error)
}

type Client struct {
	baseURL    string
	secretKey  string
	logger     core.Logger
	httpClient *http.Client
}

var _ ProfileService = (*Client)(nil)

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(conf.Clerk.APIBaseURL, "/"),
		secretKey:  conf.Clerk.SecretKey,
		logger:     logger,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetProfile looks up the user on the provider's backend API. Lookup
// failures degrade to a placeholder profile so callers never block on the
// provider being up.
func (c *Client) GetProfile(ctx context.Context, userID string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+userID, nil)
	if err != nil {
		return Profile{ID: userID}, nil
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("looking up user profile %s: %v", userID, err))
		return Profile{ID: userID}, nil
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		c.logger.Warn(fmt.Sprintf("looking up user profile %s: status %d", userID, res.StatusCode))
		return Profile{ID: userID}, nil
	}

	var p Profile
	if err = json.NewDecoder(res.Body).Decode(&p); err != nil {
		c.logger.Warn(fmt.Sprintf("decoding user profile %s: %v", userID, err))
		return Profile{ID: userID}, nil
	}
	return p, nil
}
