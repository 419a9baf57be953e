// Package upstream is the read-only client for the extraction backend
// that supplies element, chunk, and review JSON. This side issues no
// writes.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/karnell/boxlens/internal/geom"
)

// Client communicates with the extraction backend's HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Boxes fetches the element map for one page of a document:
// GET /boxes/{doc}?page=N&types=T. A 404 means the page has no
// elements and returns an empty map.
func (c *Client) Boxes(ctx context.Context, doc string, page int, types []string) (map[string]geom.Element, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if len(types) > 0 {
		q.Set("types", strings.Join(types, ","))
	}

	var out map[string]geom.Element
	found, err := c.getJSON(ctx, "/boxes/"+url.PathEscape(doc)+"?"+q.Encode(), &out)
	if err != nil {
		return nil, fmt.Errorf("fetch boxes: %w", err)
	}
	if !found || out == nil {
		return map[string]geom.Element{}, nil
	}
	return out, nil
}

// ChunksResult is the response of GET /chunks/{doc}.
type ChunksResult struct {
	Summary ChunkSummary `json:"summary"`
	Chunks  []geom.Chunk `json:"chunks"`
}

// ChunkSummary is the backend's document-level chunk rollup.
type ChunkSummary struct {
	Count      int `json:"count"`
	TotalChars int `json:"total_chars"`
}

// Chunks fetches all chunks of a document.
func (c *Client) Chunks(ctx context.Context, doc string) (*ChunksResult, error) {
	var out ChunksResult
	found, err := c.getJSON(ctx, "/chunks/"+url.PathEscape(doc), &out)
	if err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}
	if !found {
		return &ChunksResult{}, nil
	}
	return &out, nil
}

// ChunkList fetches the chunk list only. Satisfies overlay.Source.
func (c *Client) ChunkList(ctx context.Context, doc string) ([]geom.Chunk, error) {
	res, err := c.Chunks(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res.Chunks, nil
}

// Elements fetches batch element metadata:
// GET /elements/{doc}?ids=a,b,c.
func (c *Client) Elements(ctx context.Context, doc string, ids []string) (map[string]geom.Element, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))

	var out map[string]geom.Element
	found, err := c.getJSON(ctx, "/elements/"+url.PathEscape(doc)+"?"+q.Encode(), &out)
	if err != nil {
		return nil, fmt.Errorf("fetch elements: %w", err)
	}
	if !found || out == nil {
		return map[string]geom.Element{}, nil
	}
	return out, nil
}

// ReviewsResult is the response of GET /reviews/{doc}.
type ReviewsResult struct {
	Items   []geom.Review `json:"items"`
	Summary ReviewSummary `json:"summary"`
}

// ReviewSummary is the backend's review rollup.
type ReviewSummary struct {
	Good  int `json:"good"`
	Bad   int `json:"bad"`
	Total int `json:"total"`
}

// Reviews fetches the document's review items. Satisfies
// overlay.Source.
func (c *Client) Reviews(ctx context.Context, doc string) ([]geom.Review, error) {
	var out ReviewsResult
	found, err := c.getJSON(ctx, "/reviews/"+url.PathEscape(doc), &out)
	if err != nil {
		return nil, fmt.Errorf("fetch reviews: %w", err)
	}
	if !found {
		return nil, nil
	}
	return out.Items, nil
}

// getJSON issues an authenticated GET and decodes the body into v.
// Returns found=false on 404.
func (c *Client) getJSON(ctx context.Context, path string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
