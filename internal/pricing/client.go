// Package pricing is the authenticated HTTP client for the pricing
// management API.
package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/me/pricedesk/internal/envelope"
	"github.com/me/pricedesk/internal/logging"
	"github.com/me/pricedesk/internal/session"
	"github.com/me/pricedesk/pkg/model"
)

// Client is an HTTP client for the pricing API. Every request carries the
// session's bearer token; a 401 invalidates the session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    *session.Session
	Logger     *slog.Logger
}

// NewClient creates a pricing API client.
func NewClient(baseURL string, sess *session.Session, logger *slog.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		Session:    sess,
		Logger:     logger.With("component", "pricing"),
	}
}

// do performs an HTTP request and returns the raw response body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		c.Logger.Debug("HTTP request body", "body", logging.RedactJSON(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Session != nil {
		if tok := c.Session.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	c.Logger.Debug("HTTP request", "method", method, "url", u)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &model.TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.TransportError{Method: method, Path: path, Err: fmt.Errorf("read response: %w", err)}
	}

	c.Logger.Debug("HTTP response", "status", resp.StatusCode, "body", logging.RedactJSON(respBody))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}
	return nil, c.statusError(resp.StatusCode, respBody)
}

// statusError maps a non-2xx reply onto the error taxonomy.
func (c *Client) statusError(status int, body []byte) error {
	doc, _ := envelope.Decode(body)

	if status == http.StatusUnauthorized {
		if c.Session != nil {
			if err := c.Session.Invalidate(); err != nil {
				c.Logger.Warn("clear session token", "error", err)
			}
		}
		return model.ErrSessionExpired
	}

	msg := envelope.FirstString(doc,
		envelope.Path{"message"},
		envelope.Path{"error"},
		envelope.Path{"detail"},
		envelope.Path{"results", "message"},
	)
	if fields := fieldErrors(doc); len(fields) > 0 {
		return &model.ValidationError{Message: msg, Fields: fields}
	}
	if status == http.StatusUnprocessableEntity {
		return model.NewFieldValidationError(msg)
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
	}
	return &model.ServerError{Status: status, Message: msg}
}

// fieldErrors reads {"errors": {"field": ["msg", ...] | "msg"}}.
func fieldErrors(doc any) map[string][]string {
	raw, ok := envelope.Lookup(doc, envelope.Path{"errors"}).(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(raw))
	for field, v := range raw {
		switch msgs := v.(type) {
		case string:
			out[field] = append(out[field], msgs)
		case []any:
			for _, m := range msgs {
				if s := model.Stringify(m); s != "" {
					out[field] = append(out[field], s)
				}
			}
		}
	}
	return out
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ErrInvalidCredentials is returned by Login when the API rejects the credentials.
var ErrInvalidCredentials = errors.New("invalid email or password")

// tokenPaths lists where login responses carry the bearer token.
var tokenPaths = []envelope.Path{
	{"token"},
	{"access_token"},
	{"data", "token"},
	{"data", "access_token"},
	{"results", "token"},
	{"results", "data", "token"},
}

// Login exchanges admin credentials for a bearer token. The token is
// returned, not stored; callers decide which session receives it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	// Without the session: a rejected login must not clear a stored token.
	anon := *c
	anon.Session = nil
	body, err := anon.do(ctx, http.MethodPost, "/admin/login", nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if errors.Is(err, model.ErrSessionExpired) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	doc, err := envelope.Decode(body)
	if err != nil {
		return "", fmt.Errorf("parse login response: %w", err)
	}
	tok := envelope.FirstString(doc, tokenPaths...)
	if tok == "" {
		return "", fmt.Errorf("login response carries no token")
	}
	return tok, nil
}
