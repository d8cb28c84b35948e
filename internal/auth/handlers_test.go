package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aldoetobex/legal-practice-backend/internal/apitest"
	"github.com/aldoetobex/legal-practice-backend/internal/auth"
	"github.com/aldoetobex/legal-practice-backend/pkg/database/dbtest"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

/* ===== helpers ===== */

func newEnv(t *testing.T) *apitest.Env {
	env := apitest.New(t)
	h := auth.NewHandler(env.DB, env.Tokens, false)

	g := env.App.Group("/api/auth")
	g.Post("/register", h.Register)
	g.Post("/login", h.Login)
	g.Post("/logout", env.Auth, h.Logout)
	g.Get("/me", env.Auth, h.Me)

	env.App.Get("/api/advocate-only", env.Auth, auth.RequireRole(models.RoleAdvocate), auth.RequireVerifiedAdvocate(),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	return env
}

func registration(email, role string) map[string]any {
	return map[string]any{
		"name":            "Asha Rao",
		"email":           email,
		"phone":           "9876543210",
		"address":         "Pune",
		"password":        "password123",
		"passwordConfirm": "password123",
		"role":            role,
	}
}

/* ================== TESTS ================== */

func TestRegister_ClientNeedsNoVerification(t *testing.T) {
	env := newEnv(t)

	res := env.Do(t, http.MethodPost, "/api/auth/register", registration("  Asha@Example.COM ", ""), nil)
	require.Equal(t, fiber.StatusCreated, res.Status, string(res.Raw))
	user := res.Body["user"].(map[string]any)
	assert.Equal(t, "asha@example.com", user["email"])
	assert.Equal(t, "client", user["role"])
	assert.Equal(t, "not_required", user["verificationStatus"])
	assert.NotContains(t, string(res.Raw), "password")

	var u models.User
	require.NoError(t, env.DB.First(&u, "email = ?", "asha@example.com").Error)
	cost, err := bcrypt.Cost([]byte(u.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}

func TestRegister_AdvocateStartsPending(t *testing.T) {
	env := newEnv(t)

	for _, role := range []string{"advocate", "junior_advocate"} {
		res := env.Do(t, http.MethodPost, "/api/auth/register", registration(role+"@example.com", role), nil)
		require.Equal(t, fiber.StatusCreated, res.Status, string(res.Raw))
		assert.Equal(t, "pending", res.Body["user"].(map[string]any)["verificationStatus"])
	}
}

func TestRegister_RejectsAdminAndUnknownRoles(t *testing.T) {
	env := newEnv(t)

	for _, role := range []string{"admin", "judge"} {
		res := env.Do(t, http.MethodPost, "/api/auth/register", registration(role+"@example.com", role), nil)
		assert.Equal(t, fiber.StatusBadRequest, res.Status)
		assert.Equal(t, "Invalid role", res.Message())
	}
}

func TestRegister_Validation(t *testing.T) {
	env := newEnv(t)

	body := registration("asha@example.com", "client")
	body["passwordConfirm"] = "different1"
	res := env.Do(t, http.MethodPost, "/api/auth/register", body, nil)

	assert.Equal(t, fiber.StatusBadRequest, res.Status)
	assert.Equal(t, false, res.Body["success"])
	errs := res.Body["errors"].(map[string]any)
	assert.Contains(t, errs, "passwordConfirm")
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	env := newEnv(t)

	res := env.Do(t, http.MethodPost, "/api/auth/register", registration("dup@example.com", ""), nil)
	require.Equal(t, fiber.StatusCreated, res.Status)

	res = env.Do(t, http.MethodPost, "/api/auth/register", registration("DUP@example.com", ""), nil)
	assert.Equal(t, fiber.StatusConflict, res.Status)
}

func TestLogin_FailuresLookIdentical(t *testing.T) {
	env := newEnv(t)
	u := dbtest.User(t, env.DB, models.RoleClient, "")

	unknown := env.Do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "nobody@example.com", "password": dbtest.Password,
	}, nil)
	wrong := env.Do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": u.Email, "password": "wrong-password",
	}, nil)

	assert.Equal(t, fiber.StatusUnauthorized, unknown.Status)
	assert.Equal(t, unknown.Status, wrong.Status)
	assert.Equal(t, string(unknown.Raw), string(wrong.Raw))
	assert.Equal(t, "Invalid credentials", wrong.Message())
}

func TestLogin_DeactivatedOnlyAfterPasswordMatch(t *testing.T) {
	env := newEnv(t)
	u := dbtest.User(t, env.DB, models.RoleClient, "")
	require.NoError(t, env.DB.Model(&u).Update("is_active", false).Error)

	wrong := env.Do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": u.Email, "password": "nope-nope"}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, wrong.Status)

	right := env.Do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": u.Email, "password": dbtest.Password}, nil)
	assert.Equal(t, fiber.StatusForbidden, right.Status)
	assert.Equal(t, "Account is deactivated", right.Message())
}

func TestLogin_SetsCookieAndLastLogin(t *testing.T) {
	env := newEnv(t)
	u := dbtest.User(t, env.DB, models.RoleClient, "")

	res := env.Do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": u.Email, "password": dbtest.Password}, nil)
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Raw))
	require.NotEmpty(t, res.Body["token"])

	cookie := res.Header.Get(fiber.HeaderSetCookie)
	assert.Contains(t, cookie, auth.CookieName+"=")
	assert.Contains(t, strings.ToLower(cookie), "httponly")
	assert.Contains(t, strings.ToLower(cookie), "samesite=lax")

	var got models.User
	require.NoError(t, env.DB.First(&got, "id = ?", u.ID).Error)
	assert.NotNil(t, got.LastLoginAt)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)

	// the cookie alone authenticates
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(fiber.HeaderCookie, auth.CookieName+"="+res.Body["token"].(string))
	me := env.Send(t, req, nil)
	require.Equal(t, fiber.StatusOK, me.Status)
	assert.Equal(t, u.Email, me.Body["user"].(map[string]any)["email"])
}

func TestRequireAuth(t *testing.T) {
	env := newEnv(t)
	u := dbtest.User(t, env.DB, models.RoleClient, "")

	res := env.Do(t, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.Status)
	assert.Equal(t, "Not authenticated", res.Message())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	res = env.Send(t, req, nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.Status)

	ghost := models.User{ID: u.ID, Role: u.Role}
	require.NoError(t, env.DB.Delete(&models.User{}, "id = ?", u.ID).Error)
	res = env.Do(t, http.MethodGet, "/api/auth/me", nil, &ghost)
	assert.Equal(t, fiber.StatusUnauthorized, res.Status)
	assert.Equal(t, "User no longer exists", res.Message())

	inactive := dbtest.User(t, env.DB, models.RoleClient, "")
	require.NoError(t, env.DB.Model(&inactive).Update("is_active", false).Error)
	res = env.Do(t, http.MethodGet, "/api/auth/me", nil, &inactive)
	assert.Equal(t, fiber.StatusForbidden, res.Status)
}

func TestRoleAndVerificationGates(t *testing.T) {
	env := newEnv(t)
	client := dbtest.User(t, env.DB, models.RoleClient, "")
	pending := dbtest.User(t, env.DB, models.RoleAdvocate, "")
	approved := dbtest.Approved(t, env.DB, models.RoleAdvocate)

	assert.Equal(t, fiber.StatusForbidden, env.Do(t, http.MethodGet, "/api/advocate-only", nil, &client).Status)

	res := env.Do(t, http.MethodGet, "/api/advocate-only", nil, &pending)
	assert.Equal(t, fiber.StatusForbidden, res.Status)
	assert.Equal(t, "Advocate account not verified", res.Message())

	assert.Equal(t, fiber.StatusNoContent, env.Do(t, http.MethodGet, "/api/advocate-only", nil, &approved).Status)
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newEnv(t)
	u := dbtest.User(t, env.DB, models.RoleClient, "")

	res := env.Do(t, http.MethodPost, "/api/auth/logout", nil, &u)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Contains(t, res.Header.Get(fiber.HeaderSetCookie), auth.CookieName+"=;")
}
