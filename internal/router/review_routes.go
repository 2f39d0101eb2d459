package router

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campground-listings/internal/handler"
	"github.com/iliyamo/campground-listings/internal/middleware"
	"github.com/iliyamo/campground-listings/internal/repository"
	"github.com/iliyamo/campground-listings/internal/session"
)

// RegisterReviews registers the review mutations nested under their
// campground. Posting needs a login; deleting additionally needs to be
// the review's author.
func RegisterReviews(e *echo.Echo, h *handler.ReviewHandler, secret string, sess *session.Store, ttl time.Duration, reviews repository.ReviewStore) {
	requireLogin := middleware.RequireLogin(secret, sess, ttl)

	e.POST("/campgrounds/:id/reviews", h.Create, requireLogin)
	e.DELETE("/campgrounds/:id/reviews/:reviewId", h.Delete, requireLogin, middleware.RequireReviewAuthor(reviews, sess))
}
