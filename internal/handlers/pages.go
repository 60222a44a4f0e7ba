package handlers

//go:generate mockgen -source=pages.go -destination=pages_mock.go -package=handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/loginform"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/middlewares"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/models"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/repositories"
)

// BrowserStore is the durable key-value storage of one browser.
type BrowserStore interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
}

// BrowserStorage returns the store scoped to a browser id.
type BrowserStorage func(browserID string) BrowserStore

const (
	pathLogin             = "/login"
	noticeLogout          = "Logged out successfully"
	msgMissingCredentials = "Email and password are required"
	msgLoginInProgress    = "Login already in progress. Please wait."
)

type loginPageData struct {
	Title  string
	Email  string
	Error  string
	Notice string
}

type dashboardPageData struct {
	Title     string
	User      *models.User
	TokenHint string
}

var errorPolicy = bluemonday.StrictPolicy()

// NewLoginPageHandler renders the login page. Browsers with a stored session go to the dashboard.
func NewLoginPageHandler(tmpl *Templates, storage BrowserStorage, dashboardPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storage(middlewares.BrowserIDFromContext(r.Context()))
		if _, _, ok := loadSession(r.Context(), store); ok {
			http.Redirect(w, r, dashboardPath, http.StatusFound)
			return
		}

		data := loginPageData{Title: "Login"}
		if r.URL.Query().Get("status") == "logged_out" {
			data.Notice = noticeLogout
		}
		tmpl.render(w, "login", http.StatusOK, data)
	}
}

// NewLoginSubmitHandler runs one login form submission against the authentication endpoint.
// The browser's store receives the session and a 303 redirect is the navigation to the dashboard.
// A browser gets at most one pending submission; overlapping posts are answered with 409.
func NewLoginSubmitHandler(tmpl *Templates, storage BrowserStorage, cfg loginform.Config, client loginform.Doer) http.HandlerFunc {
	var pending sync.Map // browser id -> *loginform.Form

	return func(w http.ResponseWriter, r *http.Request) {
		data := loginPageData{Title: "Login"}

		if err := r.ParseForm(); err != nil {
			data.Error = cfg.FailureMessage
			if data.Error == "" {
				data.Error = loginform.DefaultFailureMessage
			}
			tmpl.render(w, "login", http.StatusBadRequest, data)
			return
		}

		data.Email = strings.TrimSpace(r.PostFormValue("email"))

		browserID := middlewares.BrowserIDFromContext(r.Context())
		store := storage(browserID)
		nav := loginform.NavigatorFunc(func(_ context.Context, target string) error {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return nil
		})

		form := loginform.New(cfg, client, store, nav)
		form.SetEmail(data.Email)
		form.SetPassword(r.PostFormValue("password"))

		var err error
		if _, busy := pending.LoadOrStore(browserID, form); busy {
			err = loginform.ErrSubmissionInFlight
		} else {
			func() {
				defer pending.Delete(browserID)
				err = form.Submit(r.Context())
			}()
		}
		if err == nil {
			return
		}

		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, loginform.ErrSubmissionInFlight):
			status = http.StatusConflict
			data.Error = msgLoginInProgress
		case errors.Is(err, loginform.ErrMissingCredentials):
			status = http.StatusBadRequest
			data.Error = msgMissingCredentials
		case errors.Is(err, loginform.ErrRejected):
			status = http.StatusUnauthorized
		case errors.Is(err, loginform.ErrTransport):
			status = http.StatusBadGateway
		default:
			logger.Log.Errorw("login page submission failed", "err", err)
		}
		if data.Error == "" {
			data.Error = errorPolicy.Sanitize(form.Error())
		}
		tmpl.render(w, "login", status, data)
	}
}

// NewDashboardHandler renders the dashboard from the browser's stored session.
func NewDashboardHandler(tmpl *Templates, storage BrowserStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storage(middlewares.BrowserIDFromContext(r.Context()))
		token, user, ok := loadSession(r.Context(), store)
		if !ok {
			http.Redirect(w, r, pathLogin, http.StatusFound)
			return
		}

		tmpl.render(w, "dashboard", http.StatusOK, dashboardPageData{
			Title:     "Dashboard",
			User:      user,
			TokenHint: tokenHint(token),
		})
	}
}

// NewPageLogoutHandler removes the stored session of the browser.
func NewPageLogoutHandler(storage BrowserStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storage(middlewares.BrowserIDFromContext(r.Context()))
		if err := store.Delete(r.Context(), loginform.KeyToken, loginform.KeyUser); err != nil {
			logger.Log.Errorw("failed to clear browser session", "err", err)
			http.Error(w, msgInternalError, http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, pathLogin+"?status=logged_out", http.StatusSeeOther)
	}
}

// loadSession reads whichever session artifact the browser holds.
func loadSession(ctx context.Context, store BrowserStore) (string, *models.User, bool) {
	if raw, err := store.Get(ctx, loginform.KeyUser); err == nil {
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			return "", &user, true
		}
		logger.Log.Warnw("ignoring malformed stored user", "err", err)
	} else if !errors.Is(err, repositories.ErrKeyNotFound) {
		logger.Log.Errorw("failed to read stored user", "err", err)
	}

	token, err := store.Get(ctx, loginform.KeyToken)
	if err != nil {
		if !errors.Is(err, repositories.ErrKeyNotFound) {
			logger.Log.Errorw("failed to read stored token", "err", err)
		}
		return "", nil, false
	}
	return token, nil, token != ""
}

func tokenHint(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
