package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	appmw "github.com/iliyamo/campground-listings/internal/middleware"
	"github.com/iliyamo/campground-listings/internal/session"
)

// page decorates a response payload with the bits every rendered page
// needs: the pending flash notices (drained, so they show exactly once)
// and the logged-in user id, empty for anonymous visitors.
func page(c echo.Context, sess *session.Store, data echo.Map) (echo.Map, error) {
	flashes := []session.Flash{}
	if sid := appmw.CurrentSessionID(c); sid != "" {
		fs, err := sess.PopFlashes(c.Request().Context(), sid)
		if err != nil {
			return nil, err
		}
		if fs != nil {
			flashes = fs
		}
	}
	data["flash"] = flashes
	data["current_user_id"] = appmw.CurrentUserID(c)
	return data, nil
}

// flashRedirect queues a one-shot notice on the visitor's session and
// sends them to target. Requests without a live session just get the
// redirect.
func flashRedirect(c echo.Context, sess *session.Store, kind, message, target string) error {
	if sid := appmw.CurrentSessionID(c); sid != "" {
		if err := sess.AddFlash(c.Request().Context(), sid, kind, message); err != nil {
			return err
		}
	}
	return c.Redirect(http.StatusSeeOther, target)
}
