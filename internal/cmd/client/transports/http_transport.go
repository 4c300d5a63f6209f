package transports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cis1951/lec8-backend/internal/post"
)

// HTTPTransport talks to the REST API.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

func NewHTTPTransport(baseURL string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// StatusError is a non-2xx response. Message is the plain-text body.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, http.StatusText(e.Code), e.Message)
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, q url.Values, body []byte, out any) error {
	u := t.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(b))}
	}
	if out != nil {
		return json.Unmarshal(b, out)
	}
	return nil
}

func channelQuery(name string) url.Values { return url.Values{"channel": {name}} }

func (t *HTTPTransport) ListChannels(ctx context.Context) ([]Channel, error) {
	var out []Channel
	err := t.do(ctx, http.MethodGet, "/channels", nil, nil, &out)
	return out, err
}

func (t *HTTPTransport) CreateChannel(ctx context.Context, name string) (Channel, error) {
	var out Channel
	err := t.do(ctx, http.MethodPost, "/channels", channelQuery(name), nil, &out)
	return out, err
}

func (t *HTTPTransport) DeleteChannel(ctx context.Context, name string) error {
	return t.do(ctx, http.MethodDelete, "/channels", channelQuery(name), nil, nil)
}

func (t *HTTPTransport) ListPosts(ctx context.Context, channel string, limit int) ([]post.Post, error) {
	q := channelQuery(channel)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []post.Post
	err := t.do(ctx, http.MethodGet, "/posts", q, nil, &out)
	return out, err
}

func (t *HTTPTransport) SendPost(ctx context.Context, channel string, p post.Post) error {
	return t.do(ctx, http.MethodPost, "/posts", channelQuery(channel), p.Encode(), nil)
}
