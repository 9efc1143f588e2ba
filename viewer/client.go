package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xiaoyuanzhu-com/debug-viewer/fs"
	"github.com/xiaoyuanzhu-com/debug-viewer/server"
)

// Client talks to a running viewer server over HTTP
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL (e.g. http://localhost:8002)
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// PushURL returns the WebSocket URL of the push channel
func (c *Client) PushURL() string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + "/ws"
	case strings.HasPrefix(c.baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + "/ws"
	default:
		return c.baseURL + "/ws"
	}
}

// ListPage fetches one page of the listing. pageSize 0 uses the server default.
func (c *Client) ListPage(ctx context.Context, page, pageSize int) (*fs.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}

	var result fs.Page
	if err := c.getJSON(ctx, "/api/images?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Config fetches the client settings
func (c *Client) Config(ctx context.Context) (*server.ClientConfig, error) {
	var result server.ClientConfig
	if err := c.getJSON(ctx, "/api/config", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ImageInfo fetches metadata for one image
func (c *Client) ImageInfo(ctx context.Context, name string) (*fs.ImageInfo, error) {
	var result fs.ImageInfo
	if err := c.getJSON(ctx, "/api/images/"+url.PathEscape(name)+"/info", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("GET %s: %s (%s)", path, apiErr.Error.Message, apiErr.Error.Code)
		}
		return fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}
