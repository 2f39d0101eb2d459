package router

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campground-listings/internal/handler"
	"github.com/iliyamo/campground-listings/internal/middleware"
	"github.com/iliyamo/campground-listings/internal/repository"
	"github.com/iliyamo/campground-listings/internal/session"
)

// RegisterCampgrounds registers the campground pages and mutations.
// The listing and detail pages are public; everything that writes sits
// behind the login guard, and the edit/update/delete routes add the
// ownership guard on top. Guard order matters: login first, then
// ownership, so an anonymous probe is parked at the login page before
// any document is loaded.
func RegisterCampgrounds(e *echo.Echo, h *handler.CampgroundHandler, secret string, sess *session.Store, ttl time.Duration, camps repository.CampgroundStore) {
	requireLogin := middleware.RequireLogin(secret, sess, ttl)
	requireAuthor := middleware.RequireCampgroundAuthor(camps, sess)

	e.GET("/campgrounds", h.Index)
	e.GET("/campgrounds/new", h.NewForm, requireLogin)
	e.POST("/campgrounds", h.Create, requireLogin)
	e.GET("/campgrounds/:id", h.Show)
	e.GET("/campgrounds/:id/edit", h.EditForm, requireLogin, requireAuthor)
	e.PUT("/campgrounds/:id", h.Update, requireLogin, requireAuthor)
	e.DELETE("/campgrounds/:id", h.Delete, requireLogin, requireAuthor)
}
