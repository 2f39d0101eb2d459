package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/campground-listings/internal/config"
	"github.com/iliyamo/campground-listings/internal/model"
	"github.com/iliyamo/campground-listings/internal/repository"
	"github.com/iliyamo/campground-listings/internal/session"
	"github.com/iliyamo/campground-listings/internal/utils"
	"github.com/iliyamo/campground-listings/internal/validate"
)

func testConfig() config.Config {
	return config.Config{
		Env:            "test",
		SessionSecret:  "test-secret",
		SessionTTLDays: 7,
		BcryptCost:     4, // keep hashing fast in tests
	}
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validate.EchoValidator{}
	return e
}

func newSessionStore(t *testing.T) *session.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	return session.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func seedUser(t *testing.T, users repository.UserStore, username, password string) *model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &model.User{Username: username, Email: username + "@example.com", PasswordHash: hash}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestRegisterCreatesUserAndLogsIn(t *testing.T) {
	mem := repository.NewMemoryStore()
	sess := newSessionStore(t)
	h := NewAuthHandler(testConfig(), mem.Users(), sess)
	e := newTestEcho()

	req := formRequest(http.MethodPost, "/register", url.Values{
		"username": {"ana"},
		"email":    {"Ana@Example.com"},
		"password": {"hunter2"},
	})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/campgrounds" {
		t.Fatalf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}

	u, err := mem.Users().GetByUsername(context.Background(), "ana")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if !utils.VerifyPassword(u.PasswordHash, "hunter2") {
		t.Fatalf("stored hash does not verify")
	}

	// the visitor leaves with a logged-in session cookie
	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "camp_session" {
			cookie = ck
		}
	}
	if cookie == nil {
		t.Fatalf("no session cookie issued")
	}
	sid, uid, err := utils.ParseSessionToken("test-secret", cookie.Value)
	if err != nil || uid != u.ID {
		t.Fatalf("cookie not bound to new user: uid=%q err=%v", uid, err)
	}
	flashes, _ := sess.PopFlashes(context.Background(), sid)
	if len(flashes) != 1 || flashes[0].Message != "Welcome to Yelp Camp!" {
		t.Fatalf("unexpected flashes: %+v", flashes)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	mem := repository.NewMemoryStore()
	sess := newSessionStore(t)
	h := NewAuthHandler(testConfig(), mem.Users(), sess)
	e := newTestEcho()
	seedUser(t, mem.Users(), "ana", "hunter2")

	req := formRequest(http.MethodPost, "/register", url.Values{
		"username": {"ana"},
		"email":    {"other@example.com"},
		"password": {"hunter2"},
	})
	rec := httptest.NewRecorder()
	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Header().Get("Location") != "/register" {
		t.Fatalf("duplicate must bounce back to /register, got %q", rec.Header().Get("Location"))
	}
}

func TestLoginConsumesReturnTo(t *testing.T) {
	mem := repository.NewMemoryStore()
	sess := newSessionStore(t)
	h := NewAuthHandler(testConfig(), mem.Users(), sess)
	e := newTestEcho()
	u := seedUser(t, mem.Users(), "ana", "hunter2")

	// anonymous session parked a protected URL before the login
	ctx := context.Background()
	anonSid := session.NewID()
	if err := sess.Create(ctx, anonSid, "", time.Hour); err != nil {
		t.Fatalf("create anon session: %v", err)
	}
	if err := sess.SetReturnTo(ctx, anonSid, "/campgrounds/new"); err != nil {
		t.Fatalf("park return-to: %v", err)
	}

	req := formRequest(http.MethodPost, "/login", url.Values{
		"username": {"ana"},
		"password": {"hunter2"},
	})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session_id", anonSid)

	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if loc := rec.Header().Get("Location"); loc != "/campgrounds/new" {
		t.Fatalf("redirect = %q, want parked /campgrounds/new", loc)
	}

	// the anonymous session was rotated away
	if _, ok, _ := sess.UserID(ctx, anonSid); ok {
		t.Fatalf("pre-login session survived rotation")
	}
	// and the new one belongs to the user
	newSid := c.Get("session_id").(string)
	uid, ok, err := sess.UserID(ctx, newSid)
	if err != nil || !ok || uid != u.ID {
		t.Fatalf("rotated session not bound to user: uid=%q ok=%v err=%v", uid, ok, err)
	}
	flashes, _ := sess.PopFlashes(ctx, newSid)
	if len(flashes) != 1 || flashes[0].Message != "Welcome back!" {
		t.Fatalf("unexpected flashes: %+v", flashes)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	mem := repository.NewMemoryStore()
	sess := newSessionStore(t)
	h := NewAuthHandler(testConfig(), mem.Users(), sess)
	e := newTestEcho()
	seedUser(t, mem.Users(), "ana", "hunter2")

	for _, form := range []url.Values{
		{"username": {"ana"}, "password": {"wrong"}},
		{"username": {"nobody"}, "password": {"hunter2"}},
	} {
		rec := httptest.NewRecorder()
		if err := h.Login(e.NewContext(formRequest(http.MethodPost, "/login", form), rec)); err != nil {
			t.Fatalf("login: %v", err)
		}
		if rec.Header().Get("Location") != "/login" {
			t.Fatalf("bad credentials must bounce to /login, got %q", rec.Header().Get("Location"))
		}
	}
}

func TestLogoutDropsSession(t *testing.T) {
	mem := repository.NewMemoryStore()
	sess := newSessionStore(t)
	h := NewAuthHandler(testConfig(), mem.Users(), sess)
	e := newTestEcho()

	ctx := context.Background()
	sid := session.NewID()
	if err := sess.Create(ctx, sid, "user-1", time.Hour); err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session_id", sid)
	c.Set("user_id", "user-1")

	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Header().Get("Location") != "/campgrounds" {
		t.Fatalf("redirect = %q", rec.Header().Get("Location"))
	}
	if _, ok, _ := sess.UserID(ctx, sid); ok {
		t.Fatalf("session survived logout")
	}
	// the goodbye notice rides on a fresh anonymous session
	newSid := c.Get("session_id").(string)
	if newSid == sid {
		t.Fatalf("logout must rotate the session id")
	}
	flashes, _ := sess.PopFlashes(ctx, newSid)
	if len(flashes) != 1 || flashes[0].Message != "Goodbye!" {
		t.Fatalf("unexpected flashes: %+v", flashes)
	}
}
