package tasks

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldoetobex/legal-practice-backend/internal/apitest"
	"github.com/aldoetobex/legal-practice-backend/internal/auth"
	"github.com/aldoetobex/legal-practice-backend/pkg/database/dbtest"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

/* ===== helpers ===== */

func newEnv(t *testing.T) *apitest.Env {
	env := apitest.New(t)
	h := NewHandler(env.DB)

	g := env.App.Group("/api/tasks", env.Auth)
	g.Post("/", auth.RequireRole(models.RoleAdvocate), auth.RequireVerifiedAdvocate(), h.Create)
	g.Get("/", auth.RequireRole(models.RoleAdvocate, models.RoleJuniorAdvocate), h.List)
	g.Patch("/:taskId/status", auth.RequireRole(models.RoleJuniorAdvocate), auth.RequireVerifiedAdvocate(), h.UpdateStatus)
	return env
}

type fixture struct {
	client, adv, junior models.User
	cs                  models.Case
}

func seed(t *testing.T, env *apitest.Env) fixture {
	f := fixture{
		client: dbtest.User(t, env.DB, models.RoleClient, ""),
		adv:    dbtest.Approved(t, env.DB, models.RoleAdvocate),
		junior: dbtest.Approved(t, env.DB, models.RoleJuniorAdvocate),
	}
	f.cs = dbtest.Case(t, env.DB, f.client, f.adv, f.junior)
	return f
}

func taskPayload(cs models.Case, assignee models.User) map[string]any {
	return map[string]any{
		"title":       "Draft bail petition",
		"description": "Use the 2024 template",
		"caseId":      cs.ID.String(),
		"assignedTo":  assignee.ID.String(),
		"dueDate":     "2026-12-01",
	}
}

/* ================== TESTS ================== */

func TestCreate_DefaultsAndOwnership(t *testing.T) {
	env := newEnv(t)
	f := seed(t, env)

	res := env.Do(t, http.MethodPost, "/api/tasks", taskPayload(f.cs, f.junior), &f.adv)
	require.Equal(t, fiber.StatusCreated, res.Status, string(res.Raw))
	assert.Equal(t, "pending", res.Data()["status"])
	assert.Equal(t, "medium", res.Data()["priority"])
	assert.Equal(t, f.adv.ID.String(), res.Data()["assignedBy"])

	other := dbtest.Approved(t, env.DB, models.RoleAdvocate)
	res = env.Do(t, http.MethodPost, "/api/tasks", taskPayload(f.cs, f.junior), &other)
	assert.Equal(t, fiber.StatusForbidden, res.Status)
	assert.Equal(t, "Access denied", res.Message())
}

func TestCreate_Rejections(t *testing.T) {
	env := newEnv(t)
	f := seed(t, env)

	// missing case beats ownership
	ghost := models.Case{ID: uuid.New()}
	assert.Equal(t, fiber.StatusNotFound, env.Do(t, http.MethodPost, "/api/tasks", taskPayload(ghost, f.junior), &f.adv).Status)

	// assignee must be a junior
	res := env.Do(t, http.MethodPost, "/api/tasks", taskPayload(f.cs, f.client), &f.adv)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)

	// a junior who is not on the case could neither see it nor upload for it
	offCase := dbtest.Approved(t, env.DB, models.RoleJuniorAdvocate)
	res = env.Do(t, http.MethodPost, "/api/tasks", taskPayload(f.cs, offCase), &f.adv)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
	assert.Equal(t, "Assignee is not assigned to this case", res.Message())
	var n int64
	require.NoError(t, env.DB.Model(&models.Task{}).Where("assigned_to_id = ?", offCase.ID).Count(&n).Error)
	assert.Zero(t, n)

	body := taskPayload(f.cs, f.junior)
	body["dueDate"] = "tomorrow"
	assert.Equal(t, fiber.StatusBadRequest, env.Do(t, http.MethodPost, "/api/tasks", body, &f.adv).Status)

	body = taskPayload(f.cs, f.junior)
	body["priority"] = "urgent"
	assert.Equal(t, fiber.StatusBadRequest, env.Do(t, http.MethodPost, "/api/tasks", body, &f.adv).Status)

	// juniors cannot assign
	assert.Equal(t, fiber.StatusForbidden, env.Do(t, http.MethodPost, "/api/tasks", taskPayload(f.cs, f.junior), &f.junior).Status)
}

func TestList_ScopedByRole(t *testing.T) {
	env := newEnv(t)
	f := seed(t, env)
	task := dbtest.Task(t, env.DB, f.cs, f.junior)
	stranger := dbtest.Approved(t, env.DB, models.RoleJuniorAdvocate)

	for _, u := range []models.User{f.adv, f.junior} {
		res := env.Do(t, http.MethodGet, "/api/tasks", nil, &u)
		require.Equal(t, fiber.StatusOK, res.Status)
		require.Len(t, res.List(), 1)
		assert.Equal(t, task.ID.String(), res.List()[0].(map[string]any)["id"])
	}

	res := env.Do(t, http.MethodGet, "/api/tasks", nil, &stranger)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Empty(t, res.List())

	assert.Equal(t, fiber.StatusForbidden, env.Do(t, http.MethodGet, "/api/tasks", nil, &f.client).Status)
}

func TestUpdateStatus_OnlyAssignee(t *testing.T) {
	env := newEnv(t)
	f := seed(t, env)
	task := dbtest.Task(t, env.DB, f.cs, f.junior)
	other := dbtest.Approved(t, env.DB, models.RoleJuniorAdvocate)
	path := "/api/tasks/" + task.ID.String() + "/status"

	assert.Equal(t, fiber.StatusForbidden, env.Do(t, http.MethodPatch, path, map[string]string{"status": "completed"}, &other).Status)
	assert.Equal(t, fiber.StatusBadRequest, env.Do(t, http.MethodPatch, path, map[string]string{"status": "done"}, &f.junior).Status)
	assert.Equal(t, fiber.StatusNotFound,
		env.Do(t, http.MethodPatch, "/api/tasks/"+uuid.NewString()+"/status", map[string]string{"status": "completed"}, &f.junior).Status)

	res := env.Do(t, http.MethodPatch, path, map[string]string{"status": "completed"}, &f.junior)
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Raw))
	assert.Equal(t, "completed", res.Data()["status"])
	assert.NotNil(t, res.Data()["completedAt"])

	// any-to-any: completed back to pending is accepted
	res = env.Do(t, http.MethodPatch, path, map[string]string{"status": "pending"}, &f.junior)
	assert.Equal(t, fiber.StatusOK, res.Status)
}
