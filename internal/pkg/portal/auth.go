package portal

import (
	"errors"
	"net/http"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prismwriting/prism/internal/pkg/api"
	"github.com/prismwriting/prism/internal/pkg/auth"
	"github.com/prismwriting/prism/internal/pkg/persistence"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type authResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	User    *persistence.User `json:"user,omitempty"`
	Token   string            `json:"token,omitempty"`
}

func register(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("register method")()
		ctx := c.Request().Context()
		var in credentials
		if err := c.Bind(&in); err != nil {
			return api.ErrValidation("Invalid request body")
		}
		in.Email = normEmail(in.Email)
		if missing := missingFields(map[string]string{"email": in.Email, "password": in.Password, "name": in.Name},
			"email", "password", "name"); len(missing) > 0 {
			return api.ErrValidation("Email, password, and name are required", missing...)
		}
		if !validEmail(in.Email) {
			return api.ErrValidation("Invalid email address", "email")
		}
		if err := auth.ValidatePassword(in.Password); err != nil {
			return api.ErrValidation(err.Error(), "password")
		}
		old, err := data.DB.LoadUserByEmail(ctx, in.Email)
		if err != nil {
			return api.ErrInternal("Failed to load user", err)
		}
		if old != nil {
			return api.ErrConflict("User already exists")
		}
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return api.ErrInternal("Failed to register", err)
		}
		u := &persistence.User{ID: uuid.New().String(), Email: in.Email, Name: in.Name, PasswordHash: hash,
			Role: auth.RoleClient, Active: true, Created: time.Now()}
		if err := data.DB.InsertUser(ctx, u); err != nil {
			if errors.Is(err, persistence.ErrDuplicate) {
				return api.ErrConflict("User already exists")
			}
			return api.ErrInternal("Failed to register", err)
		}
		token, err := issueTokens(c, data, u)
		if err != nil {
			return err
		}
		audit(c, data, auditUserRegistered, u.ID, "user", "register", nil)
		return c.JSON(http.StatusOK, &authResult{Success: true, Message: "Registration successful", User: u, Token: token})
	}
}

func login(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("login method")()
		ctx := c.Request().Context()
		var in credentials
		if err := c.Bind(&in); err != nil {
			return api.ErrValidation("Invalid request body")
		}
		in.Email = normEmail(in.Email)
		if missing := missingFields(map[string]string{"email": in.Email, "password": in.Password},
			"email", "password"); len(missing) > 0 {
			return api.ErrValidation("Email and password are required", missing...)
		}
		u, err := data.DB.LoadUserByEmail(ctx, in.Email)
		if err != nil {
			return api.ErrInternal("Failed to load user", err)
		}
		if u == nil || !auth.CheckPassword(u.PasswordHash, in.Password) {
			audit(c, data, auditLoginFailed, "", "user", "login", map[string]string{"email": in.Email})
			return api.ErrUnauthorized("Invalid email or password")
		}
		if !u.Active {
			return api.ErrUnauthorized("Account is deactivated")
		}
		now := time.Now()
		if err := data.DB.UpdateLastLogin(ctx, u.ID, now); err != nil {
			goapp.Log.Warn().Err(err).Str("ID", u.ID).Msg("can't update last login")
		}
		u.LastLogin = &now
		token, err := issueTokens(c, data, u)
		if err != nil {
			return err
		}
		audit(c, data, auditUserLogin, u.ID, "user", "login", nil)
		return c.JSON(http.StatusOK, &authResult{Success: true, Message: "Login successful", User: u, Token: token})
	}
}

func logout(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		if ck, err := c.Cookie(auth.RefreshCookie); err == nil && ck.Value != "" {
			if err := data.Refresh.Delete(c.Request().Context(), ck.Value); err != nil {
				goapp.Log.Warn().Err(err).Msg("can't drop refresh token")
			}
		}
		auth.ClearCookies(c, data.SecureCookies)
		var uid string
		if claims, err := takeClaims(c, data); err == nil {
			uid = claims.UserID
		}
		audit(c, data, auditUserLogout, uid, "user", "logout", nil)
		return c.JSON(http.StatusOK, &okResult{Success: true, Message: "Logged out successfully"})
	}
}

type refreshInput struct {
	RefreshToken string `json:"refreshToken"`
}

func refresh(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		token := ""
		if ck, err := c.Cookie(auth.RefreshCookie); err == nil {
			token = ck.Value
		}
		if token == "" {
			var in refreshInput
			_ = c.Bind(&in)
			token = in.RefreshToken
		}
		if token == "" {
			return api.ErrUnauthorized("No refresh token")
		}
		uid, err := data.Refresh.Take(ctx, token)
		if err != nil {
			return api.ErrInternal("Failed to refresh", err)
		}
		if uid == "" {
			return api.ErrUnauthorized("Invalid or expired refresh token. Please log in again.")
		}
		u, err := data.DB.LoadUser(ctx, uid)
		if err != nil {
			return api.ErrInternal("Failed to load user", err)
		}
		if u == nil || !u.Active {
			return api.ErrUnauthorized("Account is deactivated")
		}
		access, err := issueTokens(c, data, u)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, &authResult{Success: true, Token: access})
	}
}

func me(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		claims := auth.ClaimsFrom(c)
		u, err := data.DB.LoadUser(c.Request().Context(), claims.UserID)
		if err != nil {
			return api.ErrInternal("Failed to load user", err)
		}
		if u == nil {
			return api.ErrNotFound("User not found")
		}
		return c.JSON(http.StatusOK, &authResult{Success: true, User: u})
	}
}

// issueTokens sets access and refresh cookies, returns the access token
func issueTokens(c echo.Context, data *Data, u *persistence.User) (string, error) {
	access, err := data.Tokens.Issue(u)
	if err != nil {
		return "", api.ErrInternal("Failed to issue token", err)
	}
	rt, err := auth.NewToken()
	if err != nil {
		return "", api.ErrInternal("Failed to issue token", err)
	}
	if err := data.Refresh.Save(c.Request().Context(), rt, u.ID); err != nil {
		return "", api.ErrInternal("Failed to issue token", err)
	}
	auth.SetCookies(c, access, data.Tokens.TTL(), rt, data.RefreshTTL, data.SecureCookies)
	return access, nil
}

func takeClaims(c echo.Context, data *Data) (*auth.Claims, error) {
	ck, err := c.Cookie(auth.AccessCookie)
	if err != nil {
		return nil, err
	}
	return data.Tokens.Parse(ck.Value)
}

func missingFields(values map[string]string, order ...string) []string {
	var res []string
	for _, k := range order {
		if values[k] == "" {
			res = append(res, k)
		}
	}
	return res
}
