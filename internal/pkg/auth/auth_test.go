package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prismwriting/prism/internal/pkg/api"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123"

func init() {
	bcryptCost = 4
}

func TestHasRole(t *testing.T) {
	tests := []struct {
		role, min string
		want      bool
	}{
		{role: RoleClient, min: RoleClient, want: true},
		{role: RoleClient, min: RoleMember, want: false},
		{role: RoleAdmin, min: RoleMember, want: true},
		{role: RoleSuperAdmin, min: RoleAdmin, want: true},
		{role: RoleAdmin, min: RoleSuperAdmin, want: false},
		{role: "", min: RoleClient, want: false},
		{role: "ROOT", min: RoleClient, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.role+"-"+tt.min, func(t *testing.T) {
			assert.Equal(t, tt.want, HasRole(tt.role, tt.min))
		})
	}
	assert.True(t, ValidRole(RoleMember))
	assert.False(t, ValidRole("member"))
}

func TestNewTokens(t *testing.T) {
	_, err := NewTokens("short", time.Minute)
	assert.NotNil(t, err)
	_, err = NewTokens(testSecret, 0)
	assert.NotNil(t, err)
	tk, err := NewTokens(testSecret, time.Minute)
	assert.Nil(t, err)
	assert.Equal(t, time.Minute, tk.TTL())
}

func TestTokens_IssueParse(t *testing.T) {
	tk, err := NewTokens(testSecret, 15*time.Minute)
	require.Nil(t, err)
	str, err := tk.Issue(&persistence.User{ID: "u1", Email: "a@b.lt", Role: RoleAdmin})
	require.Nil(t, err)
	c, err := tk.Parse(str)
	require.Nil(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "a@b.lt", c.Email)
	assert.Equal(t, RoleAdmin, c.Role)
}

func TestTokens_Expired(t *testing.T) {
	tk, _ := NewTokens(testSecret, 15*time.Minute)
	now := time.Now()
	tk.now = func() time.Time { return now }
	str, err := tk.Issue(&persistence.User{ID: "u1"})
	require.Nil(t, err)
	tk.now = func() time.Time { return now.Add(16 * time.Minute) }
	_, err = tk.Parse(str)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokens_WrongSecret(t *testing.T) {
	tk, _ := NewTokens(testSecret, 15*time.Minute)
	str, _ := tk.Issue(&persistence.User{ID: "u1"})
	tk2, _ := NewTokens(testSecret+"x", 15*time.Minute)
	_, err := tk2.Parse(str)
	assert.NotNil(t, err)
	_, err = tk.Parse("olia")
	assert.NotNil(t, err)
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("secret123")
	require.Nil(t, err)
	assert.NotEqual(t, "secret123", h)
	assert.True(t, CheckPassword(h, "secret123"))
	assert.False(t, CheckPassword(h, "secret124"))
}

func TestValidatePassword(t *testing.T) {
	assert.Nil(t, ValidatePassword("abcdefg1"))
	assert.NotNil(t, ValidatePassword("abc1"))
	assert.NotNil(t, ValidatePassword("abcdefgh"))
	assert.NotNil(t, ValidatePassword("12345678"))
}

func TestNewToken(t *testing.T) {
	a, err := NewToken()
	require.Nil(t, err)
	b, _ := NewToken()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func initEcho(t *testing.T) (*echo.Echo, *Tokens) {
	t.Helper()
	tk, err := NewTokens(testSecret, 15*time.Minute)
	require.Nil(t, err)
	e := echo.New()
	e.HTTPErrorHandler = api.ErrorHandler
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, ClaimsFrom(c).UserID)
	}, Middleware(tk))
	e.GET("/admin", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, Middleware(tk), RequireRole(RoleAdmin))
	return e, tk
}

func TestMiddleware(t *testing.T) {
	e, tk := initEcho(t)
	str, _ := tk.Issue(&persistence.User{ID: "u1", Role: RoleClient})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	test.Code(t, e, req, http.StatusUnauthorized)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+str)
	resp := test.Code(t, e, req, http.StatusOK)
	assert.Equal(t, "u1", resp.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: str})
	test.Code(t, e, req, http.StatusOK)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer olia")
	test.Code(t, e, req, http.StatusUnauthorized)
}

func TestRequireRole(t *testing.T) {
	e, tk := initEcho(t)
	str, _ := tk.Issue(&persistence.User{ID: "u1", Role: RoleClient})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+str)
	resp := test.Code(t, e, req, http.StatusForbidden)
	assert.JSONEq(t, `{"success":false,"error":"Insufficient permissions"}`, resp.Body.String())

	str, _ = tk.Issue(&persistence.User{ID: "u2", Role: RoleSuperAdmin})
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+str)
	test.Code(t, e, req, http.StatusOK)
}

func TestSetCookies(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	SetCookies(c, "a", time.Minute, "r", time.Hour, true)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, AccessCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 60, cookies[0].MaxAge)
	assert.Equal(t, "/auth", cookies[1].Path)
}
