package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const baseURL = "https://api.airtable.com/v0"

// ErrMalformedResponse is returned when the body is not a record list.
var ErrMalformedResponse = errors.New("malformed airtable response")

type Client struct {
	key    string
	client *http.Client
}

// Record is one row of the table. Fields keep whatever JSON type Airtable sent.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

type ListResp struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

type errorResp struct {
	Error json.RawMessage `json:"error"`
}

func New(apiKey string) *Client {
	return &Client{
		key: apiKey,
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// UseDefaultClient switches to http.DefaultClient so tests can intercept requests.
func (c *Client) UseDefaultClient() {
	c.client = http.DefaultClient
}

// ListRecords fetches the table's current records in a single request.
// https://airtable.com/developers/web/api/list-records
func (c *Client) ListRecords(ctx context.Context, baseID, tableID string) ([]Record, error) {
	if c.key == "" {
		return nil, errors.New("missing AIRTABLE_API_KEY")
	}
	if baseID == "" || tableID == "" {
		return nil, errors.New("missing SPRIG_BASE_ID or SPRIG_TABLE_NAME")
	}

	u := fmt.Sprintf("%s/%s/%s", baseURL, url.PathEscape(baseID), url.PathEscape(tableID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var errBody errorResp
		if err := json.Unmarshal(body, &errBody); err == nil && len(errBody.Error) > 0 {
			return nil, fmt.Errorf("airtable http %d: %s", resp.StatusCode, string(errBody.Error))
		}
		return nil, fmt.Errorf("airtable http %d: %s", resp.StatusCode, string(body))
	}

	var out ListResp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	// an empty table still answers with "records": []
	if out.Records == nil {
		return nil, fmt.Errorf("%w: no records field", ErrMalformedResponse)
	}

	return out.Records, nil
}
