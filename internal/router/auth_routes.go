package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campground-listings/internal/handler"
)

// RegisterAuth registers the register/login/logout routes. None of them
// sit behind the login guard: registration and login are for visitors
// without an account session, and logout degrades to a plain redirect
// when no session is present. The credential submissions take the
// token-bucket limiter so password guessing burns out quickly.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	e.GET("/register", a.RegisterPage)
	e.POST("/register", a.Register, limiter)
	e.GET("/login", a.LoginPage)
	e.POST("/login", a.Login, limiter)
	e.POST("/logout", a.Logout)
}
