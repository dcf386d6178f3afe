package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPSource reads pages from a remote rates endpoint such as the one
// served by the api package.
type HTTPSource struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSource targets endpoint, the full URL of the rates listing
// (e.g. "http://localhost:8080/api/rates"). A nil client gets a default
// with a 30 second timeout.
func NewHTTPSource(endpoint string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSource{endpoint: endpoint, client: client}
}

// FetchPage implements PageSource.
func (s *HTTPSource) FetchPage(ctx context.Context, q Query) (Page, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return Page{}, fmt.Errorf("parse endpoint: %w", err)
	}
	params := u.Query()
	for k, v := range q.Criteria {
		params.Set(k, v)
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("itemsPerPage", strconv.Itoa(q.ItemsPerPage))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Page{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var p Page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Page{}, fmt.Errorf("decode page: %w", err)
	}
	return p, nil
}
