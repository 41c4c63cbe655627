package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_mapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		want     *Response
	}{
		{name: "validation", err: ErrValidation("Missing required fields", "email", "name"), wantCode: 400,
			want: &Response{Error: "Missing required fields", Fields: []string{"email", "name"}}},
		{name: "unauthorized", err: ErrUnauthorized("no token"), wantCode: 401, want: &Response{Error: "no token"}},
		{name: "forbidden", err: ErrForbidden("no role"), wantCode: 403, want: &Response{Error: "no role"}},
		{name: "not found", err: ErrNotFound("no job"), wantCode: 404, want: &Response{Error: "no job"}},
		{name: "conflict", err: ErrConflict("User already exists"), wantCode: 409, want: &Response{Error: "User already exists"}},
		{name: "upstream", err: ErrUpstream("Failed to create upload URL", io.EOF), wantCode: 502,
			want: &Response{Error: "Failed to create upload URL"}},
		{name: "wrapped", err: fmt.Errorf("olia: %w", ErrNotFound("nf")), wantCode: 404, want: &Response{Error: "nf"}},
		{name: "echo", err: echo.NewHTTPError(http.StatusMethodNotAllowed), wantCode: 405,
			want: &Response{Error: "Method Not Allowed"}},
		{name: "echo msg", err: echo.NewHTTPError(http.StatusBadRequest, "No ID"), wantCode: 400, want: &Response{Error: "No ID"}},
		{name: "other", err: errors.New("db down"), wantCode: 500, want: &Response{Error: "Internal server error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, got := mapError(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := ErrInternal("olia", io.EOF)
	assert.True(t, errors.Is(err, io.EOF))
	assert.Equal(t, "olia: EOF", err.Error())
	assert.Equal(t, "olia", ErrNotFound("olia").Error())
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/fail", func(c echo.Context) error { return ErrValidation("bad", "email") })
	resp := httptest.NewRecorder()
	e.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"success":false,"error":"bad","fields":["email"]}`, resp.Body.String())

	resp = httptest.NewRecorder()
	e.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/none", nil))
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.JSONEq(t, `{"success":false,"error":"Not Found"}`, resp.Body.String())
}
