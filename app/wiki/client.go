package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrPageNotFound is returned when the wiki has no wikitext for a page.
var ErrPageNotFound = errors.New("page not found")

type Client struct {
	httpClient *http.Client
	apiURL     string
	userAgent  string
	timeout    time.Duration
	delay      time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewClient returns a MediaWiki API client. Consecutive requests are spaced
// at least delay apart.
func NewClient(httpClient *http.Client, apiURL, userAgent string, timeout, delay time.Duration) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		apiURL:     apiURL,
		userAgent:  userAgent,
		timeout:    timeout,
		delay:      delay,
	}
}

type parseResponse struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
	Parse struct {
		Title    string `json:"title"`
		Wikitext struct {
			Content string `json:"*"`
		} `json:"wikitext"`
	} `json:"parse"`
}

// FetchText returns the raw wikitext of page, following redirects.
func (c *Client) FetchText(ctx context.Context, page string) (string, error) {
	query := url.Values{}
	query.Set("action", "parse")
	query.Set("page", page)
	query.Set("prop", "wikitext")
	query.Set("format", "json")
	query.Set("redirects", "1")

	data, err := c.get(ctx, c.apiURL+"?"+query.Encode())
	if err != nil {
		return "", err
	}

	var resp parseResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to decode wiki response: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("%w: %s (%s)", ErrPageNotFound, page, resp.Error.Code)
	}
	if strings.TrimSpace(resp.Parse.Wikitext.Content) == "" {
		return "", fmt.Errorf("%w: %s (empty wikitext)", ErrPageNotFound, page)
	}

	slog.Debug("Wikitext fetched", "page", page, "length", len(resp.Parse.Wikitext.Content))

	return resp.Parse.Wikitext.Content, nil
}

type mappingEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FetchItemIDs downloads the item mapping at mappingURL and indexes it by
// lower-cased item name.
func (c *Client) FetchItemIDs(ctx context.Context, mappingURL string) (map[string]int, error) {
	data, err := c.get(ctx, mappingURL)
	if err != nil {
		return nil, err
	}

	var entries []mappingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode item mapping: %w", err)
	}

	ids := make(map[string]int, len(entries))
	for _, e := range entries {
		name := strings.ToLower(strings.TrimSpace(e.Name))
		if name == "" || e.ID <= 0 {
			continue
		}
		ids[name] = e.ID
	}

	return ids, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	timeoutCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		timeoutCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// wait blocks until delay has passed since the previous request.
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.last.IsZero() && c.delay > 0 {
		if remaining := c.delay - time.Since(c.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	c.last = time.Now()
	return nil
}
