package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campground-listings/internal/config"
	appmw "github.com/iliyamo/campground-listings/internal/middleware"
	"github.com/iliyamo/campground-listings/internal/model"
	"github.com/iliyamo/campground-listings/internal/repository"
	"github.com/iliyamo/campground-listings/internal/session"
	"github.com/iliyamo/campground-listings/internal/utils"
	"github.com/iliyamo/campground-listings/internal/validate"
)

// AuthHandler bundles dependencies for the register/login/logout flow.
type AuthHandler struct {
	Cfg      config.Config
	Users    repository.UserStore
	Sessions *session.Store
}

func NewAuthHandler(cfg config.Config, users repository.UserStore, sessions *session.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions}
}

// Register creates an account and logs the new user straight in, so
// they land on the listing already authenticated.
func (h *AuthHandler) Register(c echo.Context) error {
	var form validate.RegisterForm
	if err := c.Bind(&form); err != nil {
		return flashRedirect(c, h.Sessions, "error", "invalid form submission", "/register")
	}
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))
	if err := c.Validate(&form); err != nil {
		return flashRedirect(c, h.Sessions, "error", err.Error(), "/register")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(form.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	user := &model.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
	}
	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return flashRedirect(c, h.Sessions, "error", "A user with the given username is already registered", "/register")
		}
		if errors.Is(err, repository.ErrEmailExists) {
			return flashRedirect(c, h.Sessions, "error", "A user with the given email is already registered", "/register")
		}
		return err
	}

	if err := h.startSession(c, user.ID); err != nil {
		return err
	}
	return flashRedirect(c, h.Sessions, "success", "Welcome to Yelp Camp!", "/campgrounds")
}

// Login verifies credentials and rotates the session: whatever session
// the visitor arrived with is discarded and a fresh one is issued for
// the authenticated user. A parked return-to path on the old session
// decides where the redirect goes.
func (h *AuthHandler) Login(c echo.Context) error {
	var form validate.CredentialsForm
	if err := c.Bind(&form); err != nil {
		return flashRedirect(c, h.Sessions, "error", "invalid form submission", "/login")
	}
	form.Username = strings.TrimSpace(form.Username)
	if err := c.Validate(&form); err != nil {
		return flashRedirect(c, h.Sessions, "error", err.Error(), "/login")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, form.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return flashRedirect(c, h.Sessions, "error", "Invalid username or password", "/login")
	}
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, form.Password) {
		return flashRedirect(c, h.Sessions, "error", "Invalid username or password", "/login")
	}

	// the pre-login session may hold the page the visitor was after
	target := "/campgrounds"
	if oldSid := appmw.CurrentSessionID(c); oldSid != "" {
		if back, err := h.Sessions.ConsumeReturnTo(ctx, oldSid); err == nil && back != "" {
			target = back
		}
	}

	if err := h.startSession(c, u.ID); err != nil {
		return err
	}
	return flashRedirect(c, h.Sessions, "success", "Welcome back!", target)
}

// Logout drops the session server-side and expires the cookie. The
// goodbye flash rides on a fresh anonymous session so it still shows on
// the next page load.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if sid := appmw.CurrentSessionID(c); sid != "" {
		if err := h.Sessions.Delete(ctx, sid); err != nil {
			return err
		}
	}

	sid := session.NewID()
	if err := h.Sessions.Create(ctx, sid, "", h.Cfg.SessionTTL()); err != nil {
		return err
	}
	if err := appmw.IssueSessionCookie(c, h.Cfg.SessionSecret, sid, "", h.Cfg.SessionTTL()); err != nil {
		return err
	}
	c.Set("session_id", sid)
	return flashRedirect(c, h.Sessions, "success", "Goodbye!", "/campgrounds")
}

// startSession rotates the visitor onto a new logged-in session: the
// old record (and its unconsumed flashes) is deleted, a new record and
// cookie are issued, and the context keys are updated so later helpers
// in this request see the new identity.
func (h *AuthHandler) startSession(c echo.Context, userID string) error {
	ctx := c.Request().Context()
	if oldSid := appmw.CurrentSessionID(c); oldSid != "" {
		if err := h.Sessions.Delete(ctx, oldSid); err != nil {
			return err
		}
	}
	sid := session.NewID()
	ttl := h.Cfg.SessionTTL()
	if err := h.Sessions.Create(ctx, sid, userID, ttl); err != nil {
		return err
	}
	if err := appmw.IssueSessionCookie(c, h.Cfg.SessionSecret, sid, userID, ttl); err != nil {
		return err
	}
	c.Set("session_id", sid)
	c.Set("user_id", userID)
	return nil
}

// LoginPage renders the login form shell together with any pending
// flashes, e.g. the sign-in notice left by the auth guard.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	data, err := page(c, h.Sessions, echo.Map{"page": "login"})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

// RegisterPage renders the registration form shell.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	data, err := page(c, h.Sessions, echo.Map{"page": "register"})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}
