package middlewares

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
)

// BrowserCookieName is the cookie carrying the signed browser id.
const BrowserCookieName = "fdg_browser"

const browserCookieMaxAge = 10 * 365 * 24 * 60 * 60

type browserIDKey struct{}

// BrowserMiddleware assigns every browser a stable id kept in a signed cookie.
// The id scopes the browser's durable key-value storage on the server.
func BrowserMiddleware(hashKey []byte, secure bool) func(http.Handler) http.Handler {
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(browserCookieMaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(BrowserCookieName); err == nil {
				if err := codec.Decode(BrowserCookieName, c.Value, &id); err != nil {
					logger.Log.Warnw("discarding invalid browser cookie", "error", err)
					id = ""
				}
			}

			if id == "" {
				id = uuid.New().String()
				encoded, err := codec.Encode(BrowserCookieName, id)
				if err != nil {
					logger.Log.Errorw("failed to encode browser cookie", "error", err)
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     BrowserCookieName,
					Value:    encoded,
					Path:     "/",
					MaxAge:   browserCookieMaxAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), browserIDKey{}, id)))
		})
	}
}

// BrowserIDFromContext returns the id assigned by BrowserMiddleware, or "".
func BrowserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(browserIDKey{}).(string)
	return id
}
