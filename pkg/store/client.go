package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/cache"
	"github.com/matzehuels/mindgrid/pkg/errors"
	"github.com/matzehuels/mindgrid/pkg/httputil"
	"github.com/matzehuels/mindgrid/pkg/observability"
)

const clientTimeout = 10 * time.Second

// Client is a Store backed by the mindgrid serve API. Transient failures
// (network errors, 5xx) are retried with exponential backoff; structured
// error payloads are decoded back into pkg/errors codes, so a remote
// map-not-found looks exactly like a local one.
//
// An optional cache serves GetMap and LoadBoard read-through; any mutation
// through this client invalidates the affected map's entries.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer

	attempts   int
	retryDelay time.Duration
}

// NewClient creates a client store for the API at baseURL.
// token is sent as a bearer token when non-empty. If c is nil, caching is
// disabled; if keyer is nil, a DefaultKeyer is used.
func NewClient(baseURL, token string, c cache.Cache, keyer cache.Keyer) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		http:       &http.Client{Timeout: clientTimeout},
		cache:      c,
		keyer:      keyer,
		attempts:   3,
		retryDelay: time.Second,
	}
}

// BaseURL returns the API base URL the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// =============================================================================
// Store Implementation
// =============================================================================

// CreateMap persists a new map through the API. The server's response
// (with filled timestamps) replaces the caller's copy.
func (c *Client) CreateMap(ctx context.Context, m *board.Map) error {
	return c.doJSON(ctx, http.MethodPost, c.url("maps"), m, m)
}

// GetMap returns map metadata, served from cache when fresh.
func (c *Client) GetMap(ctx context.Context, id string) (*board.Map, error) {
	key := c.keyer.HTTPKey("map:"+c.baseURL, id)

	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		var m board.Map
		if json.Unmarshal(data, &m) == nil {
			observability.Cache().OnCacheHit(ctx, "map")
			return &m, nil
		}
	}

	var m board.Map
	if err := c.doJSON(ctx, http.MethodGet, c.url("maps", id), nil, &m); err != nil {
		return nil, err
	}
	if data, err := json.Marshal(m); err == nil {
		_ = c.cache.Set(ctx, key, data, cache.TTLHTTP)
	}
	return &m, nil
}

// ListMaps returns all maps on the server.
func (c *Client) ListMaps(ctx context.Context) ([]board.Map, error) {
	var out []board.Map
	if err := c.doJSON(ctx, http.MethodGet, c.url("maps"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RenameMap updates a map's title.
func (c *Client) RenameMap(ctx context.Context, id, title string) error {
	body := map[string]string{"title": title}
	if err := c.doJSON(ctx, http.MethodPatch, c.url("maps", id), body, nil); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// DeleteMap removes a map and everything in it.
func (c *Client) DeleteMap(ctx context.Context, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, c.url("maps", id), nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// LoadBoard fetches the full board document, served from cache when fresh.
func (c *Client) LoadBoard(ctx context.Context, mapID string) (*board.Board, error) {
	key := c.boardKey(mapID)

	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		if doc, err := board.UnmarshalDocument(data); err == nil {
			if b, err := board.ToBoard(doc); err == nil {
				observability.Cache().OnCacheHit(ctx, "board")
				return b, nil
			}
		}
		_ = c.cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "board")

	var doc board.Document
	if err := c.doJSON(ctx, http.MethodGet, c.url("maps", mapID, "board"), nil, &doc); err != nil {
		return nil, err
	}
	if data, err := board.MarshalDocument(doc); err == nil {
		_ = c.cache.Set(ctx, key, data, cache.TTLBoard)
	}
	return board.ToBoard(doc)
}

// PutNode upserts a node through the API.
func (c *Client) PutNode(ctx context.Context, n *board.Node) error {
	if err := c.doJSON(ctx, http.MethodPut, c.url("maps", n.MapID, "nodes", n.ID), n, n); err != nil {
		return err
	}
	c.invalidate(ctx, n.MapID)
	return nil
}

// DeleteNode removes a node; the server cascades incident connections.
func (c *Client) DeleteNode(ctx context.Context, mapID, nodeID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, c.url("maps", mapID, "nodes", nodeID), nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, mapID)
	return nil
}

// PutConnection creates a connection through the API.
func (c *Client) PutConnection(ctx context.Context, conn *board.Connection) error {
	if err := c.doJSON(ctx, http.MethodPost, c.url("maps", conn.MapID, "connections"), conn, conn); err != nil {
		return err
	}
	c.invalidate(ctx, conn.MapID)
	return nil
}

// DeleteConnection removes a connection.
func (c *Client) DeleteConnection(ctx context.Context, mapID, connID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, c.url("maps", mapID, "connections", connID), nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, mapID)
	return nil
}

// Close releases the response cache.
func (c *Client) Close(ctx context.Context) error {
	return c.cache.Close()
}

// =============================================================================
// HTTP Plumbing
// =============================================================================

func (c *Client) url(parts ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/api")
	for _, p := range parts {
		b.WriteString("/")
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

func (c *Client) boardKey(mapID string) string {
	return c.keyer.BoardKey(mapID, cache.BoardKeyOpts{Server: c.baseURL})
}

func (c *Client) invalidate(ctx context.Context, mapID string) {
	_ = c.cache.Delete(ctx, c.boardKey(mapID))
	_ = c.cache.Delete(ctx, c.keyer.HTTPKey("map:"+c.baseURL, mapID))
}

// doJSON performs one API call with retries. body is JSON-encoded when
// non-nil; the response is decoded into out when non-nil.
func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode request body")
		}
	}
	return httputil.Retry(ctx, c.attempts, c.retryDelay, func() error {
		return c.once(ctx, method, url, payload, out)
	})
}

func (c *Client) once(ctx context.Context, method, rawURL string, payload []byte, out any) error {
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, rdr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	observability.HTTP().OnRequest(ctx, method, req.URL.Host, req.URL.Path)

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, method, req.URL.Host, req.URL.Path, err)
		return &httputil.RetryableError{
			Err: errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, req.URL.Path),
		}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// checkStatus converts non-2xx responses into structured errors. 5xx
// responses are marked retryable; 429 carries the Retry-After hint.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := decodeError(resp)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &errors.RateLimitedError{RetryAfter: retryAfter, Message: apiErr.Message}
	case resp.StatusCode >= 500:
		return &httputil.RetryableError{Err: apiErr}
	default:
		return apiErr
	}
}

// decodeError reads a structured error payload, falling back to a code
// derived from the status line.
func decodeError(resp *http.Response) *errors.Error {
	var wire struct {
		Error errors.Payload `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if json.Unmarshal(data, &wire) == nil && wire.Error.Code != "" {
		return wire.Error.Err()
	}
	return errors.New(errors.FromHTTPStatus(resp.StatusCode), "unexpected status %s", resp.Status)
}

// Ensure Client implements Store.
var _ Store = (*Client)(nil)
