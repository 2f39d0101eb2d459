package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campground-listings/internal/session"
	"github.com/iliyamo/campground-listings/internal/utils"
)

// CookieName is the session cookie shared by the load/require middleware
// and the auth handlers.
const CookieName = "camp_session"

// Context keys set by LoadSession.
const (
	ctxSessionID = "session_id"
	ctxUserID    = "user_id"
)

// LoadSession resolves the session cookie on every request. A valid
// cookie whose Redis record is still alive yields "session_id" and,
// for logged-in visitors, "user_id" in the Echo context. A missing,
// malformed or expired cookie just leaves the request anonymous; it is
// never an error at this layer.
func LoadSession(secret string, store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}
			sid, _, err := utils.ParseSessionToken(secret, cookie.Value)
			if err != nil {
				// tampered or expired token: drop the cookie
				ClearSessionCookie(c)
				return next(c)
			}
			uid, ok, err := store.UserID(c.Request().Context(), sid)
			if err != nil {
				return err
			}
			if !ok {
				ClearSessionCookie(c)
				return next(c)
			}
			c.Set(ctxSessionID, sid)
			if uid != "" {
				c.Set(ctxUserID, uid)
			}
			return next(c)
		}
	}
}

// RequireLogin guards routes that need an authenticated user. Anonymous
// visitors get their requested URL parked on a session, a flash telling
// them to sign in, and a redirect to the login page. The parked URL is
// consumed by the login handler so the visitor lands back where they
// started.
func RequireLogin(secret string, store *session.Store, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUserID(c) != "" {
				return next(c)
			}
			ctx := c.Request().Context()

			sid := CurrentSessionID(c)
			if sid == "" {
				// park state on a fresh anonymous session
				sid = session.NewID()
				if err := store.Create(ctx, sid, "", ttl); err != nil {
					return err
				}
				if err := IssueSessionCookie(c, secret, sid, "", ttl); err != nil {
					return err
				}
			}
			target := c.Request().URL.RequestURI()
			if err := store.SetReturnTo(ctx, sid, target); err != nil {
				return err
			}
			if err := store.AddFlash(ctx, sid, "error", "You must be signed in first!"); err != nil {
				return err
			}
			return c.Redirect(http.StatusSeeOther, "/login")
		}
	}
}

// IssueSessionCookie signs a token naming the given session and sets it
// on the response. Used on login, registration and anonymous session
// creation; the cookie lifetime matches the Redis record's TTL.
func IssueSessionCookie(c echo.Context, secret, sessionID, userID string, ttl time.Duration) error {
	tok, err := utils.NewSessionToken(secret, sessionID, userID, ttl)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// CurrentUserID returns the logged-in user's id, or "" for anonymous
// requests. Handlers behind RequireLogin can rely on it being set.
func CurrentUserID(c echo.Context) string {
	if v, ok := c.Get(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// CurrentSessionID returns the live session id, or "" when the request
// carries no usable session.
func CurrentSessionID(c echo.Context) string {
	if v, ok := c.Get(ctxSessionID).(string); ok {
		return v
	}
	return ""
}
