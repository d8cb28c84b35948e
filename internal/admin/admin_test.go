package admin

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldoetobex/legal-practice-backend/internal/apitest"
	"github.com/aldoetobex/legal-practice-backend/internal/auth"
	"github.com/aldoetobex/legal-practice-backend/pkg/database/dbtest"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newEnv(t *testing.T) (*apitest.Env, models.User) {
	env := apitest.New(t)
	h := NewHandler(env.DB)
	h.now = func() time.Time { return fixedNow }

	g := env.App.Group("/api/admin", env.Auth, auth.RequireRole(models.RoleAdmin))
	g.Get("/pending-advocates", h.PendingAdvocates)
	g.Patch("/advocates/:userId/approve", h.Approve)
	g.Patch("/advocates/:userId/reject", h.Reject)
	g.Patch("/users/:userId/activate", h.Activate)
	g.Patch("/users/:userId/deactivate", h.Deactivate)

	return env, dbtest.User(t, env.DB, models.RoleAdmin, "")
}

/* ================== TESTS ================== */

func TestPendingAdvocates(t *testing.T) {
	env, admin := newEnv(t)
	adv := dbtest.User(t, env.DB, models.RoleAdvocate, "")
	jr := dbtest.User(t, env.DB, models.RoleJuniorAdvocate, "")
	dbtest.Approved(t, env.DB, models.RoleAdvocate)
	dbtest.User(t, env.DB, models.RoleClient, "")

	res := env.Do(t, http.MethodGet, "/api/admin/pending-advocates", nil, &admin)
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Raw))
	assert.EqualValues(t, 2, res.Body["count"])

	ids := []string{}
	for _, row := range res.List() {
		m := row.(map[string]any)
		ids = append(ids, m["id"].(string))
		assert.NotContains(t, m, "phone")
	}
	assert.ElementsMatch(t, []string{adv.ID.String(), jr.ID.String()}, ids)

	assert.Equal(t, fiber.StatusForbidden, env.Do(t, http.MethodGet, "/api/admin/pending-advocates", nil, &adv).Status)
}

func TestApproveAndReject(t *testing.T) {
	env, admin := newEnv(t)
	adv := dbtest.User(t, env.DB, models.RoleAdvocate, "")
	jr := dbtest.User(t, env.DB, models.RoleJuniorAdvocate, "")

	res := env.Do(t, http.MethodPatch, "/api/admin/advocates/"+adv.ID.String()+"/approve", nil, &admin)
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Raw))
	assert.Equal(t, "Advocate approved", res.Message())
	assert.Equal(t, "approved", res.Body["user"].(map[string]any)["verificationStatus"])

	var got models.User
	require.NoError(t, env.DB.First(&got, "id = ?", adv.ID).Error)
	assert.Equal(t, models.VerificationApproved, got.VerificationStatus)
	require.NotNil(t, got.VerificationReviewedBy)
	assert.Equal(t, admin.ID, *got.VerificationReviewedBy)
	require.NotNil(t, got.VerificationReviewedAt)
	assert.True(t, got.VerificationReviewedAt.Equal(fixedNow))

	res = env.Do(t, http.MethodPatch, "/api/admin/advocates/"+jr.ID.String()+"/reject", nil, &admin)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Equal(t, "Advocate rejected", res.Message())
	var rejected models.User
	require.NoError(t, env.DB.First(&rejected, "id = ?", jr.ID).Error)
	assert.Equal(t, models.VerificationRejected, rejected.VerificationStatus)
}

func TestReview_Rejections(t *testing.T) {
	env, admin := newEnv(t)
	client := dbtest.User(t, env.DB, models.RoleClient, "")

	res := env.Do(t, http.MethodPatch, "/api/admin/advocates/"+client.ID.String()+"/approve", nil, &admin)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
	assert.Equal(t, "User is not an advocate", res.Message())

	var got models.User
	require.NoError(t, env.DB.First(&got, "id = ?", client.ID).Error)
	assert.Equal(t, models.VerificationNotRequired, got.VerificationStatus)

	res = env.Do(t, http.MethodPatch, "/api/admin/advocates/"+uuid.NewString()+"/approve", nil, &admin)
	assert.Equal(t, fiber.StatusNotFound, res.Status)

	res = env.Do(t, http.MethodPatch, "/api/admin/advocates/nope/approve", nil, &admin)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
}

func TestDeactivateBlocksFurtherRequests(t *testing.T) {
	env, admin := newEnv(t)
	client := dbtest.User(t, env.DB, models.RoleClient, "")
	env.App.Get("/api/ping", env.Auth, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	require.Equal(t, fiber.StatusNoContent, env.Do(t, http.MethodGet, "/api/ping", nil, &client).Status)

	res := env.Do(t, http.MethodPatch, "/api/admin/users/"+client.ID.String()+"/deactivate", nil, &admin)
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Raw))
	assert.Equal(t, false, res.Body["user"].(map[string]any)["isActive"])

	res = env.Do(t, http.MethodGet, "/api/ping", nil, &client)
	assert.Equal(t, fiber.StatusForbidden, res.Status)
	assert.Equal(t, "Account is deactivated", res.Message())

	res = env.Do(t, http.MethodPatch, "/api/admin/users/"+client.ID.String()+"/activate", nil, &admin)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Equal(t, fiber.StatusNoContent, env.Do(t, http.MethodGet, "/api/ping", nil, &client).Status)
}

func TestDeactivateSelf(t *testing.T) {
	env, admin := newEnv(t)

	res := env.Do(t, http.MethodPatch, "/api/admin/users/"+admin.ID.String()+"/deactivate", nil, &admin)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)

	var got models.User
	require.NoError(t, env.DB.First(&got, "id = ?", admin.ID).Error)
	assert.True(t, got.IsActive)
}
