package handler

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campground-listings/internal/config"
	"github.com/iliyamo/campground-listings/internal/geocode"
	appmw "github.com/iliyamo/campground-listings/internal/middleware"
	"github.com/iliyamo/campground-listings/internal/model"
	"github.com/iliyamo/campground-listings/internal/objstore"
	"github.com/iliyamo/campground-listings/internal/queue"
	"github.com/iliyamo/campground-listings/internal/repository"
	"github.com/iliyamo/campground-listings/internal/session"
	queue_publisher "github.com/iliyamo/campground-listings/internal/service"
	"github.com/iliyamo/campground-listings/internal/validate"
)

// CampgroundHandler bundles dependencies for the campground pages and
// mutations.
type CampgroundHandler struct {
	Cfg      config.Config
	Camps    repository.CampgroundStore
	Reviews  repository.ReviewStore
	Users    repository.UserStore
	Sessions *session.Store
	Images   *objstore.Client
	Geo      *geocode.Client

	// PublishCleanup hands removed storage keys to the broker. Swapped
	// out in tests; cleanup failures only lose garbage collection, so
	// callers log and move on.
	PublishCleanup func(ctx context.Context, ev queue.ImageCleanupEvent) error
}

func NewCampgroundHandler(cfg config.Config, camps repository.CampgroundStore, reviews repository.ReviewStore, users repository.UserStore, sessions *session.Store, images *objstore.Client, geo *geocode.Client) *CampgroundHandler {
	return &CampgroundHandler{
		Cfg:            cfg,
		Camps:          camps,
		Reviews:        reviews,
		Users:          users,
		Sessions:       sessions,
		Images:         images,
		Geo:            geo,
		PublishCleanup: queue_publisher.PublishImageCleanup,
	}
}

// ----- render models -----

type campgroundSummary struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Location string          `json:"location"`
	Price    float64         `json:"price"`
	Geometry *model.Geometry `json:"geometry,omitempty"`
	Images   []model.Image   `json:"images"`
}

type reviewView struct {
	ID         string    `json:"id"`
	Body       string    `json:"body"`
	Rating     int       `json:"rating"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type campgroundView struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Price       float64         `json:"price"`
	Geometry    *model.Geometry `json:"geometry,omitempty"`
	Images      []model.Image   `json:"images"`
	AuthorID    string          `json:"author_id"`
	AuthorName  string          `json:"author_name"`
	Reviews     []reviewView    `json:"reviews"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Index handles GET /campgrounds: every campground, lightest possible
// shape, plus the map data the cluster view needs.
func (h *CampgroundHandler) Index(c echo.Context) error {
	camps, err := h.Camps.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	items := make([]campgroundSummary, 0, len(camps))
	for _, cg := range camps {
		items = append(items, campgroundSummary{
			ID:       cg.ID,
			Title:    cg.Title,
			Location: cg.Location,
			Price:    cg.Price,
			Geometry: cg.Geometry,
			Images:   cg.Images,
		})
	}
	data, err := page(c, h.Sessions, echo.Map{"campgrounds": items})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

// Show handles GET /campgrounds/:id: the full document with its
// reviews, author names resolved for display.
func (h *CampgroundHandler) Show(c echo.Context) error {
	ctx := c.Request().Context()

	cg, err := h.Camps.GetByID(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return flashRedirect(c, h.Sessions, "error", "Cannot find that campground!", "/campgrounds")
	}
	if err != nil {
		return err
	}

	reviews, err := h.Reviews.ListByIDs(ctx, cg.ReviewIDs)
	if err != nil {
		return err
	}

	names, err := h.authorNames(ctx, cg, reviews)
	if err != nil {
		return err
	}

	view := campgroundView{
		ID:          cg.ID,
		Title:       cg.Title,
		Description: cg.Description,
		Location:    cg.Location,
		Price:       cg.Price,
		Geometry:    cg.Geometry,
		Images:      cg.Images,
		AuthorID:    cg.AuthorID,
		AuthorName:  names[cg.AuthorID],
		Reviews:     make([]reviewView, 0, len(reviews)),
		CreatedAt:   cg.CreatedAt,
		UpdatedAt:   cg.UpdatedAt,
	}
	for _, rv := range reviews {
		view.Reviews = append(view.Reviews, reviewView{
			ID:         rv.ID,
			Body:       rv.Body,
			Rating:     rv.Rating,
			AuthorID:   rv.AuthorID,
			AuthorName: names[rv.AuthorID],
			CreatedAt:  rv.CreatedAt,
		})
	}
	data, err := page(c, h.Sessions, echo.Map{"campground": view})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

// Create handles POST /campgrounds. Runs behind the login guard, so a
// user id is always present. The location is geocoded before anything
// is persisted; a geocoder outage fails the request rather than saving
// a half-built document.
func (h *CampgroundHandler) Create(c echo.Context) error {
	var form validate.CampgroundForm
	if err := c.Bind(&form); err != nil {
		return flashRedirect(c, h.Sessions, "error", "invalid form submission", "/campgrounds/new")
	}
	if err := c.Validate(&form); err != nil {
		return flashRedirect(c, h.Sessions, "error", err.Error(), "/campgrounds/new")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	geom, err := h.geocodeLocation(ctx, form.Location)
	if err != nil {
		return err
	}
	images, err := h.uploadImages(ctx, c)
	if err != nil {
		return err
	}

	cg := &model.Campground{
		Title:       form.Title,
		Description: form.Description,
		Location:    form.Location,
		Price:       form.Price,
		Geometry:    geom,
		Images:      images,
		AuthorID:    appmw.CurrentUserID(c),
	}
	if err := h.Camps.Create(ctx, cg); err != nil {
		return err
	}
	return flashRedirect(c, h.Sessions, "success", "Successfully made a new campground!", "/campgrounds/"+cg.ID)
}

// Update handles PUT /campgrounds/:id. The ownership guard has already
// loaded and vetted the document. The location is re-geocoded on every
// update so a moved campground gets fresh coordinates; newly uploaded
// files are appended and any keys listed in deleteImages[] are detached
// and queued for storage cleanup.
func (h *CampgroundHandler) Update(c echo.Context) error {
	cg := appmw.CampgroundFromContext(c)
	if cg == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "campground not loaded")
	}

	var form validate.CampgroundForm
	if err := c.Bind(&form); err != nil {
		return flashRedirect(c, h.Sessions, "error", "invalid form submission", "/campgrounds/"+cg.ID)
	}
	if err := c.Validate(&form); err != nil {
		return flashRedirect(c, h.Sessions, "error", err.Error(), "/campgrounds/"+cg.ID)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	geom, err := h.geocodeLocation(ctx, form.Location)
	if err != nil {
		return err
	}
	if err := h.Camps.UpdateDetails(ctx, cg.ID, form.Title, form.Description, form.Location, form.Price, geom); err != nil {
		return err
	}

	images, err := h.uploadImages(ctx, c)
	if err != nil {
		return err
	}
	if len(images) > 0 {
		if err := h.Camps.AddImages(ctx, cg.ID, images); err != nil {
			return err
		}
	}

	if deleteKeys := formValues(c, "deleteImages[]"); len(deleteKeys) > 0 {
		if err := h.Camps.RemoveImages(ctx, cg.ID, deleteKeys); err != nil {
			return err
		}
		if err := h.PublishCleanup(ctx, queue.ImageCleanupEvent{
			CampgroundID: cg.ID,
			StorageKeys:  deleteKeys,
		}); err != nil {
			log.Printf("campground %s: image cleanup publish failed: %v", cg.ID, err)
		}
	}
	return flashRedirect(c, h.Sessions, "success", "Successfully updated campground!", "/campgrounds/"+cg.ID)
}

// Delete handles DELETE /campgrounds/:id. Removing the document also
// removes every review it owns; the stored images are handed to the
// cleanup queue afterwards.
func (h *CampgroundHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cg, err := h.Camps.Delete(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return flashRedirect(c, h.Sessions, "error", "Cannot find that campground!", "/campgrounds")
	}
	if err != nil {
		return err
	}

	if len(cg.Images) > 0 {
		keys := make([]string, 0, len(cg.Images))
		for _, img := range cg.Images {
			keys = append(keys, img.Key)
		}
		if err := h.PublishCleanup(ctx, queue.ImageCleanupEvent{
			CampgroundID: cg.ID,
			StorageKeys:  keys,
		}); err != nil {
			log.Printf("campground %s: image cleanup publish failed: %v", cg.ID, err)
		}
	}
	return flashRedirect(c, h.Sessions, "success", "Successfully deleted campground", "/campgrounds")
}

// NewForm renders the create-form shell for logged-in users.
func (h *CampgroundHandler) NewForm(c echo.Context) error {
	data, err := page(c, h.Sessions, echo.Map{"page": "new_campground"})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

// EditForm renders the edit-form shell; the ownership guard already
// loaded the document.
func (h *CampgroundHandler) EditForm(c echo.Context) error {
	cg := appmw.CampgroundFromContext(c)
	if cg == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "campground not loaded")
	}
	data, err := page(c, h.Sessions, echo.Map{"page": "edit_campground", "campground": cg})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

// geocodeLocation turns the free-text location into point geometry.
// Zero matches leaves the geometry unset; only a transport or service
// failure is an error.
func (h *CampgroundHandler) geocodeLocation(ctx context.Context, location string) (*model.Geometry, error) {
	if h.Geo == nil {
		return nil, nil
	}
	pt, found, err := h.Geo.Forward(ctx, location)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &model.Geometry{
		Type:        "Point",
		Coordinates: []float64{pt.Longitude, pt.Latitude},
	}, nil
}

// uploadImages stores every file in the multipart "images" field. A
// request without files (or without a multipart body at all) uploads
// nothing.
func (h *CampgroundHandler) uploadImages(ctx context.Context, c echo.Context) ([]model.Image, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	files := mf.File["images"]
	if len(files) == 0 || h.Images == nil {
		return nil, nil
	}
	out := make([]model.Image, 0, len(files))
	for _, fh := range files {
		img, err := h.uploadOne(ctx, fh)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func (h *CampgroundHandler) uploadOne(ctx context.Context, fh *multipart.FileHeader) (model.Image, error) {
	src, err := fh.Open()
	if err != nil {
		return model.Image{}, err
	}
	defer src.Close()
	stored, err := h.Images.Upload(ctx, fh.Filename, fh.Header.Get("Content-Type"), src, fh.Size)
	if err != nil {
		return model.Image{}, err
	}
	return model.Image{URL: stored.URL, Key: stored.Key}, nil
}

// authorNames resolves usernames for the campground author and every
// review author in one lookup. Deleted accounts simply resolve to "".
func (h *CampgroundHandler) authorNames(ctx context.Context, cg *model.Campground, reviews []*model.Review) (map[string]string, error) {
	ids := []string{cg.AuthorID}
	seen := map[string]bool{cg.AuthorID: true}
	for _, rv := range reviews {
		if !seen[rv.AuthorID] {
			seen[rv.AuthorID] = true
			ids = append(ids, rv.AuthorID)
		}
	}
	users, err := h.Users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

func formValues(c echo.Context, key string) []string {
	vals, err := c.FormParams()
	if err != nil {
		return nil
	}
	return vals[key]
}
