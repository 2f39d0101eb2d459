package model

import "time"

// Image is one uploaded picture attached to a campground. URL is the
// public address served by the object host; Key is the storage key
// used to delete the blob later.
type Image struct {
	URL string `bson:"url" json:"url"`
	Key string `bson:"key" json:"key"`
}

// Geometry is a GeoJSON-style point. A campground may have no
// geometry at all when the geocoder found no match for its location,
// so the field is carried as a pointer on the document.
type Geometry struct {
	Type        string    `bson:"type" json:"type"` // always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// Campground represents a listing document in the `campgrounds`
// collection. AuthorID is set once at creation and never reassigned;
// only that user may mutate or delete the listing. ReviewIDs is the
// ordered set of review documents attached to this campground and is
// the parent side of the cascade: deleting the campground deletes
// every review whose id appears here.
type Campground struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Price       float64   `bson:"price" json:"price"`
	Location    string    `bson:"location" json:"location"`
	Geometry    *Geometry `bson:"geometry,omitempty" json:"geometry,omitempty"`
	Images      []Image   `bson:"images" json:"images"`
	AuthorID    string    `bson:"author_id" json:"author_id"`
	ReviewIDs   []string  `bson:"review_ids" json:"review_ids"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Review is a rated comment in the `reviews` collection, attached to
// exactly one campground through that campground's ReviewIDs set.
// Rating is always within [1,5]; the validation gate rejects anything
// else before a write happens. AuthorID is set once at creation.
type Review struct {
	ID        string    `bson:"_id" json:"id"`
	Body      string    `bson:"body" json:"body"`
	Rating    int       `bson:"rating" json:"rating"`
	AuthorID  string    `bson:"author_id" json:"author_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
