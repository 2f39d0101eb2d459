package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// NewHTTPErrorHandler builds the app-wide error handler. Validation,
// permission and auth problems never reach this point: middleware and
// handlers turn those into flash-and-redirect responses. Whatever does
// arrive here is either Echo's own routing errors (404, 405) or an
// unexpected dependency failure, which gets the generic 500 page so no
// internal detail leaks to the client.
func NewHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Oh No, Something Went Wrong!"

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if s, ok := he.Message.(string); ok && s != "" {
				message = s
			}
			if status == http.StatusNotFound {
				message = "Page Not Found"
			}
		}

		if status >= http.StatusInternalServerError {
			c.Logger().Errorf("request failed: %v", err)
			message = "Oh No, Something Went Wrong!"
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, echo.Map{"status": status, "error": message})
	}
}
