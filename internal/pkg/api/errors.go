package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/echo/v4"
)

// Error is an error returned to the client with http code
type Error struct {
	Code    int
	Message string
	Fields  []string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// ErrValidation creates 400 error listing invalid fields
func ErrValidation(msg string, fields ...string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: msg, Fields: fields}
}

// ErrUnauthorized creates 401 error
func ErrUnauthorized(msg string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: msg}
}

// ErrForbidden creates 403 error
func ErrForbidden(msg string) *Error {
	return &Error{Code: http.StatusForbidden, Message: msg}
}

// ErrNotFound creates 404 error
func ErrNotFound(msg string) *Error {
	return &Error{Code: http.StatusNotFound, Message: msg}
}

// ErrConflict creates 409 error
func ErrConflict(msg string) *Error {
	return &Error{Code: http.StatusConflict, Message: msg}
}

// ErrUpstream creates 502 error, err is logged but not shown to the client
func ErrUpstream(msg string, err error) *Error {
	return &Error{Code: http.StatusBadGateway, Message: msg, err: err}
}

// ErrInternal creates 500 error, err is logged but not shown to the client
func ErrInternal(msg string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: msg, err: err}
}

// Response is an error envelope
type Response struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Fields  []string `json:"fields,omitempty"`
}

// ErrorHandler writes all handler errors as {success:false, error} json
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, res := mapError(err)
	if code >= http.StatusInternalServerError {
		goapp.Log.Error().Err(err).Str("path", c.Path()).Send()
	}
	var wErr error
	if c.Request().Method == http.MethodHead {
		wErr = c.NoContent(code)
	} else {
		wErr = c.JSON(code, res)
	}
	if wErr != nil {
		goapp.Log.Error().Err(wErr).Msg("can't write error")
	}
}

func mapError(err error) (int, *Response) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, &Response{Error: apiErr.Message, Fields: apiErr.Fields}
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, ok := httpErr.Message.(string)
		if !ok || msg == "" {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, &Response{Error: msg}
	}
	return http.StatusInternalServerError, &Response{Error: "Internal server error"}
}
