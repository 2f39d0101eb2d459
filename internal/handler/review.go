package handler

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	appmw "github.com/iliyamo/campground-listings/internal/middleware"
	"github.com/iliyamo/campground-listings/internal/model"
	"github.com/iliyamo/campground-listings/internal/repository"
	"github.com/iliyamo/campground-listings/internal/session"
	"github.com/iliyamo/campground-listings/internal/validate"
)

// ReviewHandler bundles dependencies for posting and removing reviews.
type ReviewHandler struct {
	Reviews  repository.ReviewStore
	Sessions *session.Store
}

func NewReviewHandler(reviews repository.ReviewStore, sessions *session.Store) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews, Sessions: sessions}
}

// Create handles POST /campgrounds/:id/reviews. Runs behind the login
// guard. The review lands at the end of the campground's list, so the
// display order is always submission order.
func (h *ReviewHandler) Create(c echo.Context) error {
	campID := c.Param("id")

	var form validate.ReviewForm
	if err := c.Bind(&form); err != nil {
		return flashRedirect(c, h.Sessions, "error", "invalid form submission", "/campgrounds/"+campID)
	}
	if err := c.Validate(&form); err != nil {
		return flashRedirect(c, h.Sessions, "error", err.Error(), "/campgrounds/"+campID)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rv := &model.Review{
		Body:     form.Body,
		Rating:   form.Rating,
		AuthorID: appmw.CurrentUserID(c),
	}
	if err := h.Reviews.Create(ctx, campID, rv); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return flashRedirect(c, h.Sessions, "error", "Cannot find that campground!", "/campgrounds")
		}
		return err
	}
	return flashRedirect(c, h.Sessions, "success", "Created new review!", "/campgrounds/"+campID)
}

// Delete handles DELETE /campgrounds/:id/reviews/:reviewId behind the
// review-author guard. Both the detach from the campground and the
// review delete are idempotent, so retrying a half-applied delete
// converges instead of erroring.
func (h *ReviewHandler) Delete(c echo.Context) error {
	campID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reviews.Delete(ctx, campID, c.Param("reviewId")); err != nil {
		return err
	}
	return flashRedirect(c, h.Sessions, "success", "Successfully deleted review", "/campgrounds/"+campID)
}
