// Package loginform implements the credential submission flow of the inventory login page:
// collect an email and password, post them to the authentication endpoint, keep the returned
// token or user descriptor in a durable key-value store and move on to the dashboard.
//
// The same Form drives the server-rendered login page and the terminal client.
package loginform

//go:generate mockgen -source=form.go -destination=form_mock.go -package=loginform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
)

// Storage keys of the persisted session artifact.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

const (
	DefaultPath               = "/api/login"
	DefaultDashboardPath      = "/dashboard"
	DefaultFailureMessage     = "Login failed. Please try again."
	DefaultServerErrorMessage = "Server error. Please try again later."
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

var (
	// ErrMissingCredentials is returned when email or password is empty. No request is made.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrSubmissionInFlight is returned when Submit is called while another submission is pending.
	ErrSubmissionInFlight = errors.New("login submission already in progress")
	// ErrRejected wraps failures reported by the authentication endpoint.
	ErrRejected = errors.New("login rejected")
	// ErrTransport wraps failures to complete the request at all.
	ErrTransport = errors.New("login request failed")
	// ErrPersist wraps failures to write the session artifact.
	ErrPersist = errors.New("failed to store session")
	// ErrNavigate wraps failures to move to the dashboard.
	ErrNavigate = errors.New("failed to open dashboard")
)

// Shape selects which artifact of a successful response is kept.
type Shape string

const (
	// ShapeToken keeps {"token": "..."} as a raw string under KeyToken.
	ShapeToken Shape = "token"
	// ShapeUser keeps {"user": {...}} as compact JSON under KeyUser.
	ShapeUser Shape = "user"
)

// ParseShape validates a configured response shape. Empty means ShapeToken.
func ParseShape(s string) (Shape, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case "", ShapeToken:
		return ShapeToken, nil
	case ShapeUser:
		return ShapeUser, nil
	default:
		return "", fmt.Errorf("unknown login response shape %q", s)
	}
}

// Key returns the storage key used for this shape.
func (s Shape) Key() string {
	if s == ShapeUser {
		return KeyUser
	}
	return KeyToken
}

// State is the submission state of a Form.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Store persists the session artifact under a well-known key.
type Store interface {
	Set(ctx context.Context, key, value string) error
}

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

// Navigate calls f(ctx, target).
func (f NavigatorFunc) Navigate(ctx context.Context, target string) error {
	return f(ctx, target)
}

// Config describes the authentication endpoint contract.
type Config struct {
	Endpoint           string // base URL, e.g. http://localhost:8080
	Path               string // login path appended to Endpoint
	Shape              Shape
	FailureMessage     string // shown when a rejection carries no message
	ServerErrorMessage string // shown when the request cannot be completed
	DashboardPath      string
}

func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.Shape == "" {
		c.Shape = ShapeToken
	}
	if c.FailureMessage == "" {
		c.FailureMessage = DefaultFailureMessage
	}
	if c.ServerErrorMessage == "" {
		c.ServerErrorMessage = DefaultServerErrorMessage
	}
	if c.DashboardPath == "" {
		c.DashboardPath = DefaultDashboardPath
	}
	return c
}

// URL is the full address credentials are posted to.
func (c Config) URL() string {
	c = c.withDefaults()
	return strings.TrimRight(c.Endpoint, "/") + "/" + strings.TrimLeft(c.Path, "/")
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string          `json:"token"`
	User    json.RawMessage `json:"user"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// Form holds the transient input state of one login form.
// It is safe for concurrent use; at most one submission is in flight at a time.
type Form struct {
	cfg    Config
	client Doer
	store  Store
	nav    Navigator

	mu       sync.Mutex
	email    string
	password string
	errMsg   string
	state    State
}

// New creates a Form. A nil client means http.DefaultClient.
func New(cfg Config, client Doer, store Store, nav Navigator) *Form {
	if client == nil {
		client = http.DefaultClient
	}
	return &Form{
		cfg:    cfg.withDefaults(),
		client: client,
		store:  store,
		nav:    nav,
	}
}

// SetEmail replaces the email input.
func (f *Form) SetEmail(email string) {
	f.mu.Lock()
	f.email = email
	f.mu.Unlock()
}

// SetPassword replaces the password input. It is cleared after a successful submission.
func (f *Form) SetPassword(password string) {
	f.mu.Lock()
	f.password = password
	f.mu.Unlock()
}

// Email returns the current email input.
func (f *Form) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// Error returns the message currently displayed to the user, empty when none.
func (f *Form) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// State reports whether a submission is pending.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Reset clears the credentials and the displayed error.
func (f *Form) Reset() {
	f.mu.Lock()
	f.email, f.password, f.errMsg = "", "", ""
	f.mu.Unlock()
}

// Submit posts the current credentials once. On success the artifact is stored and the
// form navigates to the dashboard. Every returned error other than ErrMissingCredentials
// and ErrSubmissionInFlight leaves a non-empty Error().
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if f.email == "" || f.password == "" {
		f.mu.Unlock()
		return ErrMissingCredentials
	}
	creds := credentials{Email: f.email, Password: f.password}
	f.state = StateSubmitting
	f.errMsg = ""
	f.mu.Unlock()

	msg, err := f.submit(ctx, creds)

	f.mu.Lock()
	f.state = StateIdle
	if err != nil {
		f.errMsg = msg
	} else {
		f.password = ""
	}
	f.mu.Unlock()

	if err != nil {
		logger.Log.Warnw("login submission failed", "shape", f.cfg.Shape, "error", err)
	}
	return err
}

// submit performs the request and returns the display message on failure.
func (f *Form) submit(ctx context.Context, creds credentials) (string, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return f.cfg.FailureMessage, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.URL(), bytes.NewReader(body))
	if err != nil {
		return f.cfg.ServerErrorMessage, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return f.cfg.ServerErrorMessage, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return f.cfg.ServerErrorMessage, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	var parsed authResponse
	parseErr := json.Unmarshal(raw, &parsed)

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	var value string
	if success && parseErr == nil {
		value, err = f.artifact(parsed)
	}
	if !success || parseErr != nil || err != nil {
		msg := f.cfg.FailureMessage
		if parseErr == nil {
			if m := strings.TrimSpace(parsed.Message); m != "" {
				msg = m
			} else if m := strings.TrimSpace(parsed.Error); m != "" {
				msg = m
			}
		}
		return msg, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	if f.store != nil {
		if err := f.store.Set(ctx, f.cfg.Shape.Key(), value); err != nil {
			return f.cfg.FailureMessage, fmt.Errorf("%w: %v", ErrPersist, err)
		}
	}

	if f.nav != nil {
		if err := f.nav.Navigate(ctx, f.cfg.DashboardPath); err != nil {
			return f.cfg.FailureMessage, fmt.Errorf("%w: %v", ErrNavigate, err)
		}
	}

	logger.Log.Infow("login succeeded", "shape", f.cfg.Shape)
	return "", nil
}

// artifact extracts the value to persist for the configured shape.
func (f *Form) artifact(resp authResponse) (string, error) {
	switch f.cfg.Shape {
	case ShapeUser:
		trimmed := bytes.TrimSpace(resp.User)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return "", errors.New("response has no user")
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		if resp.Token == "" {
			return "", errors.New("response has no token")
		}
		return resp.Token, nil
	}
}
