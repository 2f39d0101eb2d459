package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/campground-listings/internal/model"
)

// MemoryStore is an in-memory implementation of UserStore,
// CampgroundStore and ReviewStore with the same observable semantics as
// the Mongo repositories. It backs handler and middleware tests so they
// can exercise full request flows without a running database.
type MemoryStore struct {
	mu          sync.Mutex
	seq         int
	users       map[string]*model.User
	campgrounds map[string]*model.Campground
	reviews     map[string]*model.Review
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       map[string]*model.User{},
		campgrounds: map[string]*model.Campground{},
		reviews:     map[string]*model.Review{},
	}
}

func (s *MemoryStore) nextID() string {
	s.seq++
	return fmt.Sprintf("mem-%06d", s.seq)
}

// ----- UserStore -----

func (s *MemoryStore) Create(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, other := range s.users {
		if other.Username == u.Username {
			return ErrUsernameExists
		}
		if other.Email == u.Email {
			return ErrEmailExists
		}
	}
	if u.ID == "" {
		u.ID = s.nextID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ----- CampgroundStore -----

func (s *MemoryStore) CreateCampground(ctx context.Context, cg *model.Campground) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cg.ID == "" {
		cg.ID = s.nextID()
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
	cp := cloneCampground(cg)
	s.campgrounds[cg.ID] = cp
	return nil
}

func (s *MemoryStore) GetCampground(ctx context.Context, id string) (*model.Campground, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cg, ok := s.campgrounds[id]; ok {
		return cloneCampground(cg), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListCampgrounds(ctx context.Context) ([]*model.Campground, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Campground, 0, len(s.campgrounds))
	for _, cg := range s.campgrounds {
		out = append(out, cloneCampground(cg))
	}
	// creation order: the sequential ids sort lexicographically
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateCampgroundDetails(ctx context.Context, id, title, description, location string, price float64, geom *model.Geometry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cg, ok := s.campgrounds[id]
	if !ok {
		return ErrNotFound
	}
	cg.Title = title
	cg.Description = description
	cg.Location = location
	cg.Price = price
	cg.Geometry = geom
	cg.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) AddCampgroundImages(ctx context.Context, id string, imgs []model.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cg, ok := s.campgrounds[id]
	if !ok {
		return ErrNotFound
	}
	cg.Images = append(cg.Images, imgs...)
	return nil
}

func (s *MemoryStore) RemoveCampgroundImages(ctx context.Context, id string, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cg, ok := s.campgrounds[id]
	if !ok {
		return ErrNotFound
	}
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	kept := cg.Images[:0]
	for _, img := range cg.Images {
		if !drop[img.Key] {
			kept = append(kept, img)
		}
	}
	cg.Images = kept
	return nil
}

func (s *MemoryStore) DeleteCampground(ctx context.Context, id string) (*model.Campground, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cg, ok := s.campgrounds[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.campgrounds, id)
	for _, rid := range cg.ReviewIDs {
		delete(s.reviews, rid) // delete-missing is a no-op
	}
	return cg, nil
}

// ----- ReviewStore -----

func (s *MemoryStore) CreateReview(ctx context.Context, campgroundID string, rv *model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// existence check first, nothing is written for a missing campground
	cg, ok := s.campgrounds[campgroundID]
	if !ok {
		return ErrNotFound
	}
	if rv.ID == "" {
		rv.ID = s.nextID()
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	cp := *rv
	s.reviews[rv.ID] = &cp
	cg.ReviewIDs = append(cg.ReviewIDs, rv.ID)
	return nil
}

func (s *MemoryStore) GetReview(ctx context.Context, id string) (*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rv, ok := s.reviews[id]; ok {
		cp := *rv
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListReviewsByIDs(ctx context.Context, ids []string) ([]*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Review{}
	for _, id := range ids {
		if rv, ok := s.reviews[id]; ok {
			cp := *rv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteReview(ctx context.Context, campgroundID, reviewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cg, ok := s.campgrounds[campgroundID]; ok {
		kept := cg.ReviewIDs[:0]
		for _, rid := range cg.ReviewIDs {
			if rid != reviewID {
				kept = append(kept, rid)
			}
		}
		cg.ReviewIDs = kept
	}
	delete(s.reviews, reviewID)
	return nil
}

func cloneCampground(cg *model.Campground) *model.Campground {
	cp := *cg
	cp.Images = append([]model.Image(nil), cg.Images...)
	cp.ReviewIDs = append([]string(nil), cg.ReviewIDs...)
	if cg.Geometry != nil {
		g := *cg.Geometry
		g.Coordinates = append([]float64(nil), cg.Geometry.Coordinates...)
		cp.Geometry = &g
	}
	return &cp
}

// Interface adapters. MemoryStore implements all three store
// interfaces, but the campground/review method names collide with the
// user ones, so thin views expose each interface separately.

// Users returns the store as a UserStore.
func (s *MemoryStore) Users() UserStore { return s }

// Campgrounds returns the store as a CampgroundStore.
func (s *MemoryStore) Campgrounds() CampgroundStore { return memCampgrounds{s} }

// Reviews returns the store as a ReviewStore.
func (s *MemoryStore) Reviews() ReviewStore { return memReviews{s} }

type memCampgrounds struct{ s *MemoryStore }

func (m memCampgrounds) Create(ctx context.Context, cg *model.Campground) error {
	return m.s.CreateCampground(ctx, cg)
}
func (m memCampgrounds) GetByID(ctx context.Context, id string) (*model.Campground, error) {
	return m.s.GetCampground(ctx, id)
}
func (m memCampgrounds) ListAll(ctx context.Context) ([]*model.Campground, error) {
	return m.s.ListCampgrounds(ctx)
}
func (m memCampgrounds) UpdateDetails(ctx context.Context, id, title, description, location string, price float64, geom *model.Geometry) error {
	return m.s.UpdateCampgroundDetails(ctx, id, title, description, location, price, geom)
}
func (m memCampgrounds) AddImages(ctx context.Context, id string, imgs []model.Image) error {
	return m.s.AddCampgroundImages(ctx, id, imgs)
}
func (m memCampgrounds) RemoveImages(ctx context.Context, id string, keys []string) error {
	return m.s.RemoveCampgroundImages(ctx, id, keys)
}
func (m memCampgrounds) Delete(ctx context.Context, id string) (*model.Campground, error) {
	return m.s.DeleteCampground(ctx, id)
}

type memReviews struct{ s *MemoryStore }

func (m memReviews) Create(ctx context.Context, campgroundID string, rv *model.Review) error {
	return m.s.CreateReview(ctx, campgroundID, rv)
}
func (m memReviews) GetByID(ctx context.Context, id string) (*model.Review, error) {
	return m.s.GetReview(ctx, id)
}
func (m memReviews) ListByIDs(ctx context.Context, ids []string) ([]*model.Review, error) {
	return m.s.ListReviewsByIDs(ctx, ids)
}
func (m memReviews) Delete(ctx context.Context, campgroundID, reviewID string) error {
	return m.s.DeleteReview(ctx, campgroundID, reviewID)
}
