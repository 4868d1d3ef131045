// Package remote is the HTTP client for a remote to-do collection.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/idilsaglam/todos/internal/model"
)

const collectionPath = "todos"

// maxErrorRead caps how much of a failed response is kept for the error.
const maxErrorRead = 4 << 10

// Config is injected at construction; nothing in this package reads globals.
type Config struct {
	BaseURL    string
	Token      string       // optional bearer token
	HTTPClient *http.Client // nil means http.DefaultClient
}

// Client implements store.Store against `GET/POST {BaseURL}/todos`.
// No caching, retries, or request deduplication.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("remote: empty base URL")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("remote: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("remote: unsupported scheme %q", base.Scheme)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: base, token: strings.TrimSpace(cfg.Token), http: hc}, nil
}

// Endpoint returns the collection URL.
func (c *Client) Endpoint() string {
	return c.base.JoinPath(collectionPath).String()
}

type listResponse struct {
	Todos []model.Item `json:"todos"`
}

type createRequest struct {
	Body      string `json:"body"`
	Completed bool   `json:"completed"`
}

// ListAll fetches the whole collection in server order.
func (c *Client) ListAll(ctx context.Context) ([]model.Item, error) {
	const op = "list todos"
	var out listResponse
	if err := c.do(ctx, op, http.MethodGet, nil, &out); err != nil {
		return nil, err
	}
	if out.Todos == nil {
		out.Todos = []model.Item{}
	}
	return out.Todos, nil
}

// Create posts a new item and returns it with its server-assigned id.
func (c *Client) Create(ctx context.Context, body string, completed bool) (model.Item, error) {
	const op = "create todo"
	var out model.Item
	err := c.do(ctx, op, http.MethodPost, createRequest{Body: body, Completed: completed}, &out)
	if err != nil {
		return model.Item{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method string, in, out any) error {
	endpoint := c.Endpoint()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorRead))
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Body: string(b)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}
