package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/geodash/pkg/logger"
	"github.com/dmitrymomot/geodash/pkg/requestid"
)

// Backend endpoints.
const (
	PathCSRFToken      = "/api/set-csrf-token"
	PathRegister       = "/api/register"
	PathLogin          = "/api/login"
	PathLogout         = "/api/logout"
	PathCurrentUser    = "/api/user"
	PathForgotPassword = "/api/forgot-password"
)

const (
	// CSRFCookieName is the cookie the backend sets alongside the token endpoint.
	CSRFCookieName = "csrftoken"
	// HeaderCSRFToken carries the token on protected requests.
	HeaderCSRFToken = "X-CSRFToken"
	// HeaderRequestID correlates client logs with backend logs.
	HeaderRequestID = requestid.Header

	defaultTimeout = 15 * time.Second
	maxBodySize    = 1 << 20
)

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up form.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// csrfResponse is the body of the token endpoint.
type csrfResponse struct {
	CSRFToken string `json:"csrftoken"`
}

// userEnvelope is the body of login and register.
type userEnvelope struct {
	User *User `json:"user"`
}

// messageResponse is the body of forgot-password.
type messageResponse struct {
	Message string `json:"message"`
}

// Client talks to the session backend. It keeps a cookie jar so the
// session cookie and the csrftoken cookie travel with every request.
type Client struct {
	base *url.URL
	http *http.Client
	log  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient uses hc for requests. A jar is attached if hc has none.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.http = &cp
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithClientLogger sets the logger used for request tracing.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		base: u,
		http: &http.Client{Timeout: defaultTimeout},
		log:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("session: create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// FetchCSRFToken asks the backend for a token. It returns an empty string
// when the body carries none; the cookie set by the same response is then
// the only source.
func (c *Client) FetchCSRFToken(ctx context.Context) (string, error) {
	var out csrfResponse
	if err := c.do(ctx, http.MethodGet, PathCSRFToken, "", nil, &out); err != nil {
		return "", err
	}
	return out.CSRFToken, nil
}

// CookieToken reads the csrftoken cookie from the jar.
func (c *Client) CookieToken() (string, error) {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == CSRFCookieName && ck.Value != "" {
			return ck.Value, nil
		}
	}
	return "", ErrMissingCookie
}

// Register creates an account and returns the signed-in user.
func (c *Client) Register(ctx context.Context, token string, in Registration) (*User, error) {
	return c.userCall(ctx, PathRegister, token, in)
}

// Login signs in and returns the user.
func (c *Client) Login(ctx context.Context, token string, in Credentials) (*User, error) {
	return c.userCall(ctx, PathLogin, token, in)
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, PathLogout, token, nil, nil)
}

// CurrentUser checks the session. The response body is the user record.
// A 401 unwraps to ErrSessionExpired; an empty, null or blank record is
// ErrUnexpectedResponse.
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var u *User
	if err := c.do(ctx, http.MethodGet, PathCurrentUser, token, nil, &u); err != nil {
		return nil, err
	}
	if u == nil || *u == (User{}) {
		return nil, fmt.Errorf("%w: %s returned no user", ErrUnexpectedResponse, PathCurrentUser)
	}
	return u, nil
}

// ForgotPassword requests a reset email and returns the server message, if any.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out messageResponse
	in := struct {
		Email string `json:"email"`
	}{Email: email}
	if err := c.do(ctx, http.MethodPost, PathForgotPassword, "", in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// userCall posts in and unwraps the {user} envelope.
func (c *Client) userCall(ctx context.Context, path, token string, in any) (*User, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodPost, path, token, in, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("%w: %s returned no user", ErrUnexpectedResponse, path)
	}
	return out.User, nil
}

// do sends one JSON request and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("session: encode %s body: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("session: build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(HeaderCSRFToken, token)
	}
	reqID := requestid.Stamp(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "request failed",
			logger.Endpoint(method, path),
			logger.RequestID(reqID),
			logger.Error(err),
		)
		return errors.Join(ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return errors.Join(ErrTransport, fmt.Errorf("read %s response: %w", path, err))
	}

	c.log.DebugContext(ctx, "request completed",
		logger.Endpoint(method, path),
		logger.RequestID(reqID),
		logger.Status(resp.StatusCode),
		logger.Duration(time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(method, path, resp.StatusCode, data, path == PathCurrentUser)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Join(ErrTransport, fmt.Errorf("decode %s response: %w", path, err))
	}
	return nil
}
