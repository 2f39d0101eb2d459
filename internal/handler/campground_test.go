package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campground-listings/internal/model"
	"github.com/iliyamo/campground-listings/internal/queue"
	"github.com/iliyamo/campground-listings/internal/repository"
	"github.com/iliyamo/campground-listings/internal/session"
)

type campgroundEnv struct {
	mem      *repository.MemoryStore
	sess     *session.Store
	h        *CampgroundHandler
	e        *echo.Echo
	sid      string
	uid      string
	cleanups []queue.ImageCleanupEvent
}

func newCampgroundEnv(t *testing.T) *campgroundEnv {
	t.Helper()
	env := &campgroundEnv{
		mem:  repository.NewMemoryStore(),
		sess: newSessionStore(t),
		e:    newTestEcho(),
	}
	u := seedUser(t, env.mem.Users(), "ana", "hunter2")
	env.uid = u.ID
	env.sid = session.NewID()
	if err := env.sess.Create(context.Background(), env.sid, u.ID, time.Hour); err != nil {
		t.Fatalf("create session: %v", err)
	}
	env.h = NewCampgroundHandler(testConfig(), env.mem.Campgrounds(), env.mem.Reviews(), env.mem.Users(), env.sess, nil, nil)
	env.h.PublishCleanup = func(ctx context.Context, ev queue.ImageCleanupEvent) error {
		env.cleanups = append(env.cleanups, ev)
		return nil
	}
	return env
}

func (env *campgroundEnv) loggedIn(req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := env.e.NewContext(req, rec)
	c.Set("session_id", env.sid)
	c.Set("user_id", env.uid)
	return c
}

func TestCreateCampground(t *testing.T) {
	env := newCampgroundEnv(t)

	rec := httptest.NewRecorder()
	c := env.loggedIn(formRequest(http.MethodPost, "/campgrounds", url.Values{
		"title":       {"Misty Pines"},
		"description": {"Quiet riverside spot"},
		"location":    {"Bend, OR"},
		"price":       {"24.50"},
	}), rec)

	if err := env.h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}

	camps, _ := env.mem.Campgrounds().ListAll(context.Background())
	if len(camps) != 1 {
		t.Fatalf("expected 1 campground, got %d", len(camps))
	}
	cg := camps[0]
	if cg.AuthorID != env.uid {
		t.Fatalf("author = %q, want %q", cg.AuthorID, env.uid)
	}
	if cg.Price != 24.50 {
		t.Fatalf("price = %v", cg.Price)
	}
	if rec.Header().Get("Location") != "/campgrounds/"+cg.ID {
		t.Fatalf("redirect = %q", rec.Header().Get("Location"))
	}
	flashes, _ := env.sess.PopFlashes(context.Background(), env.sid)
	if len(flashes) != 1 || flashes[0].Message != "Successfully made a new campground!" {
		t.Fatalf("unexpected flashes: %+v", flashes)
	}
}

func TestCreateCampgroundRejectsNegativePrice(t *testing.T) {
	env := newCampgroundEnv(t)

	rec := httptest.NewRecorder()
	c := env.loggedIn(formRequest(http.MethodPost, "/campgrounds", url.Values{
		"title":       {"Misty Pines"},
		"description": {"Quiet riverside spot"},
		"location":    {"Bend, OR"},
		"price":       {"-5"},
	}), rec)

	if err := env.h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Header().Get("Location") != "/campgrounds/new" {
		t.Fatalf("invalid form must bounce to the form, got %q", rec.Header().Get("Location"))
	}
	if camps, _ := env.mem.Campgrounds().ListAll(context.Background()); len(camps) != 0 {
		t.Fatalf("nothing may be persisted on validation failure")
	}
}

func TestUpdateCampgroundDetails(t *testing.T) {
	env := newCampgroundEnv(t)
	ctx := context.Background()
	cg := &model.Campground{Title: "Old", Description: "old", Location: "Old Town", Price: 1, AuthorID: env.uid}
	if err := env.mem.Campgrounds().Create(ctx, cg); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := httptest.NewRecorder()
	c := env.loggedIn(formRequest(http.MethodPut, "/campgrounds/"+cg.ID, url.Values{
		"title":       {"New Title"},
		"description": {"fresh"},
		"location":    {"New Town"},
		"price":       {"0"},
	}), rec)
	c.SetPath("/campgrounds/:id")
	c.SetParamNames("id")
	c.SetParamValues(cg.ID)
	c.Set("campground", cg) // the ownership guard loads this in production

	if err := env.h.Update(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := env.mem.Campgrounds().GetByID(ctx, cg.ID)
	if got.Title != "New Title" || got.Location != "New Town" || got.Price != 0 {
		t.Fatalf("update not applied: %+v", got)
	}
	if rec.Header().Get("Location") != "/campgrounds/"+cg.ID {
		t.Fatalf("redirect = %q", rec.Header().Get("Location"))
	}
}

func TestDeleteCampgroundCascades(t *testing.T) {
	env := newCampgroundEnv(t)
	ctx := context.Background()

	cg := &model.Campground{
		Title: "Doomed", Description: "d", Location: "x", AuthorID: env.uid,
		Images: []model.Image{{URL: "u1", Key: "k1"}, {URL: "u2", Key: "k2"}},
	}
	if err := env.mem.Campgrounds().Create(ctx, cg); err != nil {
		t.Fatalf("seed campground: %v", err)
	}
	var reviewIDs []string
	for _, body := range []string{"first", "second"} {
		rv := &model.Review{Body: body, Rating: 4, AuthorID: env.uid}
		if err := env.mem.Reviews().Create(ctx, cg.ID, rv); err != nil {
			t.Fatalf("seed review: %v", err)
		}
		reviewIDs = append(reviewIDs, rv.ID)
	}

	rec := httptest.NewRecorder()
	c := env.loggedIn(httptest.NewRequest(http.MethodDelete, "/campgrounds/"+cg.ID, nil), rec)
	c.SetPath("/campgrounds/:id")
	c.SetParamNames("id")
	c.SetParamValues(cg.ID)

	if err := env.h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := env.mem.Campgrounds().GetByID(ctx, cg.ID); err != repository.ErrNotFound {
		t.Fatalf("campground survived delete: %v", err)
	}
	// every owned review is gone with it
	for _, rid := range reviewIDs {
		if _, err := env.mem.Reviews().GetByID(ctx, rid); err != repository.ErrNotFound {
			t.Fatalf("review %s survived cascade: %v", rid, err)
		}
	}
	// the stored images were handed to the cleanup queue
	if len(env.cleanups) != 1 {
		t.Fatalf("expected 1 cleanup event, got %d", len(env.cleanups))
	}
	ev := env.cleanups[0]
	if ev.CampgroundID != cg.ID || len(ev.StorageKeys) != 2 {
		t.Fatalf("unexpected cleanup event: %+v", ev)
	}
}

func TestShowListsReviewsInSubmissionOrder(t *testing.T) {
	env := newCampgroundEnv(t)
	ctx := context.Background()

	cg := &model.Campground{Title: "Popular", Description: "d", Location: "x", AuthorID: env.uid}
	if err := env.mem.Campgrounds().Create(ctx, cg); err != nil {
		t.Fatalf("seed campground: %v", err)
	}
	bodies := []string{"first", "second", "third"}
	for _, body := range bodies {
		rv := &model.Review{Body: body, Rating: 3, AuthorID: env.uid}
		if err := env.mem.Reviews().Create(ctx, cg.ID, rv); err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	c := env.loggedIn(httptest.NewRequest(http.MethodGet, "/campgrounds/"+cg.ID, nil), rec)
	c.SetPath("/campgrounds/:id")
	c.SetParamNames("id")
	c.SetParamValues(cg.ID)

	if err := env.h.Show(c); err != nil {
		t.Fatalf("show: %v", err)
	}
	var payload struct {
		Campground campgroundView `json:"campground"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Campground.Reviews) != len(bodies) {
		t.Fatalf("expected %d reviews, got %d", len(bodies), len(payload.Campground.Reviews))
	}
	for i, rv := range payload.Campground.Reviews {
		if rv.Body != bodies[i] {
			t.Fatalf("review %d = %q, want %q", i, rv.Body, bodies[i])
		}
		if rv.AuthorName != "ana" {
			t.Fatalf("author name not resolved: %+v", rv)
		}
	}
}

func TestShowUnknownCampgroundRedirects(t *testing.T) {
	env := newCampgroundEnv(t)

	rec := httptest.NewRecorder()
	c := env.loggedIn(httptest.NewRequest(http.MethodGet, "/campgrounds/ghost", nil), rec)
	c.SetPath("/campgrounds/:id")
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	if err := env.h.Show(c); err != nil {
		t.Fatalf("show: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/campgrounds" {
		t.Fatalf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
	flashes, _ := env.sess.PopFlashes(context.Background(), env.sid)
	if len(flashes) != 1 || flashes[0].Message != "Cannot find that campground!" {
		t.Fatalf("unexpected flashes: %+v", flashes)
	}
}

func TestEditFormEmitsSnakeCase(t *testing.T) {
	env := newCampgroundEnv(t)
	ctx := context.Background()
	cg := &model.Campground{Title: "Spot", Description: "d", Location: "x", AuthorID: env.uid}
	if err := env.mem.Campgrounds().Create(ctx, cg); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := httptest.NewRecorder()
	c := env.loggedIn(httptest.NewRequest(http.MethodGet, "/campgrounds/"+cg.ID+"/edit", nil), rec)
	c.SetPath("/campgrounds/:id/edit")
	c.SetParamNames("id")
	c.SetParamValues(cg.ID)
	c.Set("campground", cg)

	if err := env.h.EditForm(c); err != nil {
		t.Fatalf("edit form: %v", err)
	}
	var payload struct {
		Campground map[string]json.RawMessage `json:"campground"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// same field casing as every other campground payload
	for _, key := range []string{"author_id", "review_ids", "created_at"} {
		if _, ok := payload.Campground[key]; !ok {
			t.Errorf("edit payload missing %q: %v", key, payload.Campground)
		}
	}
	if _, ok := payload.Campground["AuthorID"]; ok {
		t.Errorf("edit payload leaks Go field names")
	}
}

func TestIndexIncludesFlashesOnce(t *testing.T) {
	env := newCampgroundEnv(t)
	ctx := context.Background()
	if err := env.sess.AddFlash(ctx, env.sid, "success", "Welcome back!"); err != nil {
		t.Fatalf("add flash: %v", err)
	}

	rec := httptest.NewRecorder()
	c := env.loggedIn(httptest.NewRequest(http.MethodGet, "/campgrounds", nil), rec)
	if err := env.h.Index(c); err != nil {
		t.Fatalf("index: %v", err)
	}
	var payload struct {
		Flash []session.Flash `json:"flash"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Flash) != 1 || payload.Flash[0].Message != "Welcome back!" {
		t.Fatalf("flash not rendered: %+v", payload.Flash)
	}

	// a second render has nothing left to show
	rec = httptest.NewRecorder()
	c = env.loggedIn(httptest.NewRequest(http.MethodGet, "/campgrounds", nil), rec)
	if err := env.h.Index(c); err != nil {
		t.Fatalf("index: %v", err)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Flash) != 0 {
		t.Fatalf("flash rendered twice: %+v", payload.Flash)
	}
}
