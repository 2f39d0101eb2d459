package repository

import (
	"context"

	"github.com/iliyamo/campground-listings/internal/model"
)

// UserStore is the identity store: registration, credential lookup and
// id lookup. Implementations must enforce username/email uniqueness.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

// CampgroundStore persists campground documents. Delete cascades: it
// removes the campground first, capturing its review-id set at deletion
// time, then removes every referenced review. The two steps are not
// transactional; a crash in between leaves orphaned reviews, which is
// an accepted failure mode of this design and must not be masked.
type CampgroundStore interface {
	Create(ctx context.Context, cg *model.Campground) error
	GetByID(ctx context.Context, id string) (*model.Campground, error)
	ListAll(ctx context.Context) ([]*model.Campground, error)
	// UpdateDetails replaces the editable fields. A nil geometry clears
	// any stored point (the geocoder found no match for the new location).
	UpdateDetails(ctx context.Context, id, title, description, location string, price float64, geom *model.Geometry) error
	AddImages(ctx context.Context, id string, imgs []model.Image) error
	// RemoveImages pulls the images with the given storage keys from the
	// document. Unknown keys are ignored.
	RemoveImages(ctx context.Context, id string, keys []string) error
	// Delete removes the campground and all reviews referenced by it,
	// returning the document as it was at deletion time so callers can
	// clean up its image blobs. Returns ErrNotFound when the id does not
	// resolve.
	Delete(ctx context.Context, id string) (*model.Campground, error)
}

// ReviewStore persists review documents and maintains the back-reference
// on the owning campground.
type ReviewStore interface {
	// Create inserts the review and appends its id to the campground's
	// review set, preserving creation order.
	Create(ctx context.Context, campgroundID string, r *model.Review) error
	GetByID(ctx context.Context, id string) (*model.Review, error)
	// ListByIDs returns the reviews for the given ids in the order the
	// ids are supplied, silently skipping ids that no longer resolve.
	ListByIDs(ctx context.Context, ids []string) ([]*model.Review, error)
	// Delete unlinks the review id from the campground's review set (a
	// no-op when absent) and deletes the review document (a no-op when
	// already gone). Both steps are always attempted.
	Delete(ctx context.Context, campgroundID, reviewID string) error
}
