package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/iliyamo/campground-listings/internal/model"
)

// ReviewRepo implements ReviewStore. Like CampgroundRepo it holds both
// collections: creating a review appends its id to the owning
// campground, and deleting one pulls it back out.
type ReviewRepo struct {
	reviews     *mongo.Collection
	campgrounds *mongo.Collection
}

// NewReviewRepo constructs a ReviewRepo bound to the database.
func NewReviewRepo(db *mongo.Database) *ReviewRepo {
	return &ReviewRepo{
		reviews:     db.Collection("reviews"),
		campgrounds: db.Collection("campgrounds"),
	}
}

// Create appends the review id to the campground's review set and then
// inserts the review document. $push preserves creation order, and
// because it doubles as the existence check, a review aimed at a
// missing campground is rejected before anything is written. A failed
// insert pulls the id back out so the set never references a review
// that was not stored; a crash in between leaves a dangling id, which
// ListByIDs skips and the delete cascade tolerates.
func (r *ReviewRepo) Create(ctx context.Context, campgroundID string, rv *model.Review) error {
	if rv.ID == "" {
		rv.ID = bson.NewObjectID().Hex()
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	push := bson.D{{Key: "$push", Value: bson.D{{Key: "review_ids", Value: rv.ID}}}}
	res, err := r.campgrounds.UpdateOne(ctx, bson.D{{Key: "_id", Value: campgroundID}}, push)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	if _, err := r.reviews.InsertOne(ctx, rv); err != nil {
		pull := bson.D{{Key: "$pull", Value: bson.D{{Key: "review_ids", Value: rv.ID}}}}
		_, _ = r.campgrounds.UpdateOne(ctx, bson.D{{Key: "_id", Value: campgroundID}}, pull)
		return err
	}
	return nil
}

// GetByID fetches a review, returning ErrNotFound when absent.
func (r *ReviewRepo) GetByID(ctx context.Context, id string) (*model.Review, error) {
	var rv model.Review
	err := r.reviews.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&rv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rv, nil
}

// ListByIDs loads the reviews for the given ids, returned in the order
// the ids were supplied (the campground's creation order). Ids that no
// longer resolve are skipped.
func (r *ReviewRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.Review, error) {
	if len(ids) == 0 {
		return []*model.Review{}, nil
	}
	cursor, err := r.reviews.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	byID := make(map[string]*model.Review, len(ids))
	for cursor.Next(ctx) {
		rv := new(model.Review)
		if err := cursor.Decode(rv); err != nil {
			return nil, err
		}
		byID[rv.ID] = rv
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	out := make([]*model.Review, 0, len(ids))
	for _, id := range ids {
		if rv, ok := byID[id]; ok {
			out = append(out, rv)
		}
	}
	return out, nil
}

// Delete unlinks the review id from the campground's review set and
// deletes the review document. Both halves are idempotent: pulling an
// absent id and deleting a missing document are no-ops, so repeating
// the whole operation is safe. Both steps are attempted even if the
// first fails; the first error wins.
func (r *ReviewRepo) Delete(ctx context.Context, campgroundID, reviewID string) error {
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "review_ids", Value: reviewID}}}}
	_, pullErr := r.campgrounds.UpdateOne(ctx, bson.D{{Key: "_id", Value: campgroundID}}, update)

	_, delErr := r.reviews.DeleteOne(ctx, bson.D{{Key: "_id", Value: reviewID}})

	if pullErr != nil {
		return pullErr
	}
	return delErr
}
