// Package backend is the console's client for the CMS REST API. The API is
// the source of truth for users and content; the console only forwards.
package backend

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
	"time"

	"admin-console/internal/requestid"
	"admin-console/internal/session"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Response is a raw backend reply passed through to the console's caller.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	User  session.User `json:"user"`
	Token string       `json:"token"`
}

// Login exchanges credentials for a user profile and bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/users/login", "", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var out struct {
		User  *session.User `json:"user"`
		Token string        `json:"token"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("backend: malformed login response: %w", err)
	}
	if out.User == nil || out.Token == "" {
		return nil, errors.New("backend: login response missing user or token")
	}

	return &LoginResult{User: *out.User, Token: out.Token}, nil
}

// ForgotPassword asks the backend to start a password reset for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPost, "/api/users/forgot-password", "", "application/json", bytes.NewReader(body))
	return err
}

// List fetches a resource collection.
func (c *Client) List(ctx context.Context, token, resource string, query url.Values) (*Response, error) {
	path, err := resourcePath(resource, "")
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, token, "", nil)
}

// Get fetches a single resource item.
func (c *Client) Get(ctx context.Context, token, resource, id string) (*Response, error) {
	path, err := resourcePath(resource, id)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodGet, path, token, "", nil)
}

// Forward sends a mutation with its original body and content type, so
// JSON and multipart uploads reach the backend unchanged.
func (c *Client) Forward(
	ctx context.Context,
	token string,
	method string,
	resource string,
	id string,
	contentType string,
	body io.Reader,
) (*Response, error) {

	path, err := resourcePath(resource, id)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, path, token, contentType, body)
}

// Delete removes a resource item.
func (c *Client) Delete(ctx context.Context, token, resource, id string) (*Response, error) {
	return c.Forward(ctx, token, http.MethodDelete, resource, id, "", nil)
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	token string,
	contentType string,
	body io.Reader,
) (*Response, error) {

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	id := requestid.FromContext(ctx)
	if id == "" {
		id = requestid.New()
	}
	req.Header.Set(requestid.Header, id)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("backend: read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &APIError{Status: res.StatusCode, Message: errorMessage(data, res.StatusCode)}
	}

	return &Response{
		Status:      res.StatusCode,
		ContentType: res.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func errorMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return http.StatusText(status)
}
