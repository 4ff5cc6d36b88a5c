// Package handler defines the HTTP handlers for the booking platform.
package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

var errNoUserID = errors.New("no user id in context")

// getUserID extracts the authenticated user's id set by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errNoUserID
}

// getRole extracts the role claim set by the JWT middleware.
func getRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// pathID parses the named path parameter as an id.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
