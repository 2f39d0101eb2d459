// Package repository contains data access logic separated from HTTP
// handlers. This file implements the CampgroundStore on MongoDB,
// including the parent side of the cascade: deleting a campground
// captures its review-id set and removes the referenced reviews in a
// follow-up DeleteMany. The two steps are deliberately not wrapped in
// a transaction; both are idempotent, so re-running an interrupted
// cascade is safe.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/iliyamo/campground-listings/internal/model"
)

// CampgroundRepo implements CampgroundStore. It holds both collections
// because the cascade crosses them.
type CampgroundRepo struct {
	campgrounds *mongo.Collection
	reviews     *mongo.Collection
}

// NewCampgroundRepo constructs a CampgroundRepo bound to the database.
func NewCampgroundRepo(db *mongo.Database) *CampgroundRepo {
	return &CampgroundRepo{
		campgrounds: db.Collection("campgrounds"),
		reviews:     db.Collection("reviews"),
	}
}

// Create inserts a new campground. The id and timestamps are populated
// here; AuthorID must already be set by the caller and is never touched
// again after this point.
func (r *CampgroundRepo) Create(ctx context.Context, cg *model.Campground) error {
	if cg.ID == "" {
		cg.ID = bson.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	cg.CreatedAt = now
	cg.UpdatedAt = now
	if cg.Images == nil {
		cg.Images = []model.Image{}
	}
	if cg.ReviewIDs == nil {
		cg.ReviewIDs = []string{}
	}
	_, err := r.campgrounds.InsertOne(ctx, cg)
	return err
}

// GetByID fetches a campground, returning ErrNotFound when the id does
// not resolve so callers can distinguish a missing document from a
// store failure.
func (r *CampgroundRepo) GetByID(ctx context.Context, id string) (*model.Campground, error) {
	var cg model.Campground
	err := r.campgrounds.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&cg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cg, nil
}

// ListAll returns every campground ordered by creation time. Used by
// the public index page.
func (r *CampgroundRepo) ListAll(ctx context.Context) ([]*model.Campground, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.campgrounds.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*model.Campground
	for cursor.Next(ctx) {
		cg := new(model.Campground)
		if err := cursor.Decode(cg); err != nil {
			return nil, err
		}
		out = append(out, cg)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateDetails replaces the editable fields of a campground. A nil
// geometry unsets any stored point. Returns ErrNotFound when nothing
// matched.
func (r *CampgroundRepo) UpdateDetails(ctx context.Context, id, title, description, location string, price float64, geom *model.Geometry) error {
	set := bson.D{
		{Key: "title", Value: title},
		{Key: "description", Value: description},
		{Key: "location", Value: location},
		{Key: "price", Value: price},
		{Key: "updated_at", Value: time.Now().UTC()},
	}
	update := bson.D{{Key: "$set", Value: set}}
	if geom != nil {
		set = append(set, bson.E{Key: "geometry", Value: geom})
		update = bson.D{{Key: "$set", Value: set}}
	} else {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "geometry", Value: ""}}})
	}
	res, err := r.campgrounds.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddImages appends uploaded images to the campground's image list.
func (r *CampgroundRepo) AddImages(ctx context.Context, id string, imgs []model.Image) error {
	if len(imgs) == 0 {
		return nil
	}
	update := bson.D{{Key: "$push", Value: bson.D{
		{Key: "images", Value: bson.D{{Key: "$each", Value: imgs}}},
	}}}
	res, err := r.campgrounds.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveImages pulls images whose storage key appears in keys. Keys
// that are not on the document are ignored.
func (r *CampgroundRepo) RemoveImages(ctx context.Context, id string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	update := bson.D{{Key: "$pull", Value: bson.D{
		{Key: "images", Value: bson.D{{Key: "key", Value: bson.D{{Key: "$in", Value: keys}}}}},
	}}}
	res, err := r.campgrounds.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the campground and then every review referenced by it.
// The parent is removed first so the review-id set is captured exactly
// as it was at deletion time; reviews already removed independently are
// simply absent from the DeleteMany result. A crash between the two
// steps leaves orphaned reviews, an accepted limitation of the two-step
// design.
func (r *CampgroundRepo) Delete(ctx context.Context, id string) (*model.Campground, error) {
	var cg model.Campground
	err := r.campgrounds.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&cg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(cg.ReviewIDs) > 0 {
		filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: cg.ReviewIDs}}}}
		if _, err := r.reviews.DeleteMany(ctx, filter); err != nil {
			return &cg, err
		}
	}
	return &cg, nil
}
