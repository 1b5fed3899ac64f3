package middleware

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as JSON. A string message becomes
// {"message": ...}; any other message (such as a conflict body) is written as is.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var body any = map[string]string{"message": http.StatusText(code)}

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			body = map[string]string{"message": m}
		case nil:
			body = map[string]string{"message": http.StatusText(code)}
		default:
			body = m
		}
	} else {
		log.Printf("[HTTP] unhandled error on %s %s: %v", c.Request().Method, c.Path(), err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}
