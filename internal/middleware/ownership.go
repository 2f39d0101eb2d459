package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campground-listings/internal/model"
	"github.com/iliyamo/campground-listings/internal/repository"
	"github.com/iliyamo/campground-listings/internal/session"
)

// Context key for the campground loaded by RequireCampgroundAuthor, so
// the handler behind it does not fetch the document twice.
const ctxCampground = "campground"

// RequireCampgroundAuthor lets a request through only when the
// logged-in user authored the campground named by the :id param. A
// missing campground is reported before any ownership comparison, so
// probing a stale id always reads as "not found" rather than "not
// yours". Runs behind RequireLogin.
func RequireCampgroundAuthor(camps repository.CampgroundStore, sess *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			id := c.Param("id")

			cg, err := camps.GetByID(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				return flashAndRedirect(c, sess, "error", "Cannot find that campground!", "/campgrounds")
			}
			if err != nil {
				return err
			}
			if cg.AuthorID != CurrentUserID(c) {
				return flashAndRedirect(c, sess, "error", "You do not have permission to do that!", "/campgrounds/"+id)
			}
			c.Set(ctxCampground, cg)
			return next(c)
		}
	}
}

// RequireReviewAuthor guards review deletion: the logged-in user must
// have authored the review named by :reviewId. Same ordering rule as
// above, existence first, ownership second.
func RequireReviewAuthor(reviews repository.ReviewStore, sess *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			campID := c.Param("id")

			rev, err := reviews.GetByID(ctx, c.Param("reviewId"))
			if errors.Is(err, repository.ErrNotFound) {
				return flashAndRedirect(c, sess, "error", "Cannot find that review!", "/campgrounds/"+campID)
			}
			if err != nil {
				return err
			}
			if rev.AuthorID != CurrentUserID(c) {
				return flashAndRedirect(c, sess, "error", "You do not have permission to do that!", "/campgrounds/"+campID)
			}
			return next(c)
		}
	}
}

// CampgroundFromContext returns the document loaded by
// RequireCampgroundAuthor, or nil when the middleware did not run.
func CampgroundFromContext(c echo.Context) *model.Campground {
	if cg, ok := c.Get(ctxCampground).(*model.Campground); ok {
		return cg
	}
	return nil
}

func flashAndRedirect(c echo.Context, sess *session.Store, kind, message, target string) error {
	if sid := CurrentSessionID(c); sid != "" {
		if err := sess.AddFlash(c.Request().Context(), sid, kind, message); err != nil {
			return err
		}
	}
	return c.Redirect(http.StatusSeeOther, target)
}
