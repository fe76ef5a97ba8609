package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxUser extracts the identity injected by the Auth middleware. A missing or
// zero user id means the middleware did not run (or the token carried no
// usable identity); fail with 401 before touching any store.
func ctxUser(c echo.Context) (int64, error) {
	userID, _ := c.Get("user_id").(int64)
	if userID == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "No token provided")
	}
	return userID, nil
}
