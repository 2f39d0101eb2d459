package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/iliyamo/campground-listings/internal/model"
)

// UserRepo implements UserStore on the `users` collection.
type UserRepo struct {
	col *mongo.Collection
}

// NewUserRepo constructs a UserRepo bound to the given database.
func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{col: db.Collection("users")}
}

// Create inserts a user. The username is stored as given; the email is
// normalized to lower case. Unique-index violations are mapped to the
// ErrUsernameExists / ErrEmailExists sentinels.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = bson.NewObjectID().Hex()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The driver reports which unique index was violated in the
			// error text (username_1 / email_1).
			if strings.Contains(err.Error(), "email") {
				return ErrEmailExists
			}
			return ErrUsernameExists
		}
		return err
	}
	return nil
}

// GetByUsername fetches a user for credential verification.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by document id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListByIDs returns the users whose ids appear in the given list. Ids
// that do not resolve are skipped rather than reported; callers use the
// result to decorate review listings with author names.
func (r *UserRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	cursor, err := r.col.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*model.User
	for cursor.Next(ctx) {
		u := new(model.User)
		if err := cursor.Decode(u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
