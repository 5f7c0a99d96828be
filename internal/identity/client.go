package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_storefront/internal/domain"
)

// Client implements Provider against a supabase-style REST auth API. The
// held session is the client's local belief; it changes only through the
// methods below, and every change is republished to subscribers in the order
// it happened.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *slog.Logger

	mu        sync.Mutex
	session   *domain.Session
	listeners []listenerEntry

	// emitMu serializes event delivery so subscribers observe changes in
	// the order they were applied.
	emitMu sync.Mutex
}

type listenerEntry struct {
	id uuid.UUID
	fn func(event AuthEvent, session *domain.Session)
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL, anonKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	User         wireUser `json:"user"`
}

type wireUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		DisplayName string `json:"display_name"`
	} `json:"user_metadata"`
}

func (u wireUser) toDomain() domain.User {
	return domain.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.Metadata.DisplayName,
	}
}

// SignInWithPassword exchanges credentials for a session. On failure the
// held session is left untouched.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	payload := map[string]string{"email": email, "password": password}
	var res tokenResponse
	if err := c.post(ctx, "/auth/v1/token?grant_type=password", "", payload, &res); err != nil {
		return nil, err
	}

	session := &domain.Session{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(res.ExpiresIn) * time.Second),
		User:         res.User.toDomain(),
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	c.emit(EventSignedIn, session)

	return session, nil
}

// SignUp registers a new account. The provider requires e-mail confirmation
// before sign-in, so no session is created here.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || strings.TrimSpace(displayName) == "" {
		return nil, ErrMissingCredentials
	}
	if len(password) < 6 {
		return nil, ErrPasswordTooShort
	}

	payload := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     map[string]string{"display_name": strings.TrimSpace(displayName)},
	}
	var res struct {
		User wireUser `json:"user"`
	}
	if err := c.post(ctx, "/auth/v1/signup", "", payload, &res); err != nil {
		return nil, err
	}

	user := res.User.toDomain()
	return &user, nil
}

// SignOut revokes the session remotely, then forgets it and notifies
// subscribers. A failed revocation leaves the session in place.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return nil
	}

	if err := c.post(ctx, "/auth/v1/logout", session.AccessToken, nil, nil); err != nil {
		return err
	}

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.emit(EventSignedOut, nil)

	return nil
}

// GetSession returns the currently held session, or nil when signed out.
func (c *Client) GetSession(ctx context.Context) (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, nil
}

// EmitInitialSession replays the held session to subscribers, mirroring the
// provider's app-start notification. No-op when there is no session.
func (c *Client) EmitInitialSession() {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return
	}
	c.emit(EventInitialSession, session)
}

// OnAuthStateChange registers fn for session lifecycle events and returns
// its unsubscribe handle.
func (c *Client) OnAuthStateChange(fn func(event AuthEvent, session *domain.Session)) (unsubscribe func()) {
	id := uuid.New()

	c.mu.Lock()
	c.listeners = append(c.listeners, listenerEntry{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, entry := range c.listeners {
			if entry.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Client) emit(event AuthEvent, session *domain.Session) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	listeners := make([]listenerEntry, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, entry := range listeners {
		entry.fn(event, session)
	}
}

func (c *Client) post(ctx context.Context, path, bearer string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := readAuthError(resp.Body, resp.StatusCode)
		c.logger.Warn("identity request rejected", "path", path, "status", resp.StatusCode)
		return &AuthError{Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// readAuthError pulls the provider's message out of an error body. The API
// uses either error_description or msg depending on the endpoint.
func readAuthError(r io.Reader, status int) string {
	var body struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
	}
	if err := json.NewDecoder(r).Decode(&body); err == nil {
		if body.ErrorDescription != "" {
			return body.ErrorDescription
		}
		if body.Msg != "" {
			return body.Msg
		}
	}
	return fmt.Sprintf("identity provider responded with status %d", status)
}
