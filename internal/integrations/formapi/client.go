package formapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Elanstech/scream-track/internal/models"
	"github.com/pkg/errors"
)

// Client talks to the external form-service submissions endpoint. The service
// owns its response shape; we consume only {responseCode, content}.
type Client struct {
	baseURL string
	apiKey  string
	formID  string
	httpc   *http.Client
}

func New(baseURL, apiKey, formID string) *Client {
	if baseURL == "" {
		baseURL = "https://api.jotform.com"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		formID:  formID,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type submissionsResp struct {
	ResponseCode int                    `json:"responseCode"`
	Message      string                 `json:"message"`
	Content      []models.RawSubmission `json:"content"`
}

// Search runs one filtered query. A well-formed response with a non-200
// responseCode counts as "no match" rather than an error, matching how the
// upstream responds to filters over unknown field keys.
func (c *Client) Search(ctx context.Context, field, value string) ([]models.RawSubmission, error) {
	filter, err := json.Marshal(map[string]string{field + ":answer": value})
	if err != nil {
		return nil, errors.Wrap(err, "marshal filter")
	}
	return c.submissions(ctx, string(filter))
}

func (c *Client) Submissions(ctx context.Context) ([]models.RawSubmission, error) {
	return c.submissions(ctx, "")
}

func (c *Client) submissions(ctx context.Context, filter string) ([]models.RawSubmission, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	u.Path = fmt.Sprintf("/form/%s/submissions", c.formID)

	q := u.Query()
	q.Set("apiKey", c.apiKey)
	q.Set("limit", "1000")
	if filter != "" {
		q.Set("filter", filter)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("form api http %d", resp.StatusCode)
	}

	var r submissionsResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if r.ResponseCode != http.StatusOK {
		return nil, nil
	}
	return r.Content, nil
}
