package appointments

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

	g := env.App.Group("/api/appointments", env.Auth)
	g.Post("/", auth.RequireRole(models.RoleClient), h.Create)
	g.Get("/", auth.RequireRole(models.RoleClient, models.RoleAdvocate, models.RoleAdmin), h.List)
	g.Patch("/:appointmentId/status", auth.RequireRole(models.RoleAdvocate), auth.RequireVerifiedAdvocate(), h.UpdateStatus)
	return env
}

func request(adv models.User) map[string]string {
	return map[string]string{
		"advocateId": adv.ID.String(),
		"date":       "2026-11-20",
		"timeSlot":   "11:00 - 11:30",
		"purpose":    "Property consultation",
	}
}

/* ================== TESTS ================== */

func TestRequestApproveScenario(t *testing.T) {
	env := newEnv(t)
	a := dbtest.User(t, env.DB, models.RoleClient, "")
	b := dbtest.Approved(t, env.DB, models.RoleAdvocate)
	c := dbtest.Approved(t, env.DB, models.RoleAdvocate)

	res := env.Do(t, http.MethodPost, "/api/appointments", request(b), &a)
	require.Equal(t, fiber.StatusCreated, res.Status, string(res.Raw))
	assert.Equal(t, "requested", res.Data()["status"])
	path := "/api/appointments/" + res.Data()["id"].(string) + "/status"

	res = env.Do(t, http.MethodPatch, path, map[string]string{"status": "approved", "notes": "Bring the deed"}, &b)
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Raw))
	assert.Equal(t, "approved", res.Data()["status"])
	assert.Equal(t, "Bring the deed", res.Data()["notes"])

	res = env.Do(t, http.MethodPatch, path, map[string]string{"status": "rejected"}, &c)
	assert.Equal(t, fiber.StatusForbidden, res.Status)

	var got models.Appointment
	require.NoError(t, env.DB.Where("advocate_id = ?", b.ID).First(&got).Error)
	assert.Equal(t, models.AppointmentApproved, got.Status)
	assert.Equal(t, "Bring the deed", got.Notes)
}

func TestCreate_Rejections(t *testing.T) {
	env := newEnv(t)
	client := dbtest.User(t, env.DB, models.RoleClient, "")
	junior := dbtest.Approved(t, env.DB, models.RoleJuniorAdvocate)
	adv := dbtest.Approved(t, env.DB, models.RoleAdvocate)

	res := env.Do(t, http.MethodPost, "/api/appointments", request(models.User{ID: uuid.New()}), &client)
	assert.Equal(t, fiber.StatusNotFound, res.Status)

	res = env.Do(t, http.MethodPost, "/api/appointments", request(junior), &client)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
	assert.Equal(t, "Invalid advocate", res.Message())

	body := request(adv)
	body["date"] = "someday"
	assert.Equal(t, fiber.StatusBadRequest, env.Do(t, http.MethodPost, "/api/appointments", body, &client).Status)

	body = request(adv)
	delete(body, "timeSlot")
	assert.Equal(t, fiber.StatusBadRequest, env.Do(t, http.MethodPost, "/api/appointments", body, &client).Status)

	// advocates do not request appointments
	assert.Equal(t, fiber.StatusForbidden, env.Do(t, http.MethodPost, "/api/appointments", request(adv), &adv).Status)
}

func TestUpdateStatus_Rejections(t *testing.T) {
	env := newEnv(t)
	client := dbtest.User(t, env.DB, models.RoleClient, "")
	adv := dbtest.Approved(t, env.DB, models.RoleAdvocate)
	a := dbtest.Appointment(t, env.DB, client, adv)
	path := "/api/appointments/" + a.ID.String() + "/status"

	// requested is the creation state only
	assert.Equal(t, fiber.StatusBadRequest, env.Do(t, http.MethodPatch, path, map[string]string{"status": "requested"}, &adv).Status)
	assert.Equal(t, fiber.StatusNotFound,
		env.Do(t, http.MethodPatch, "/api/appointments/"+uuid.NewString()+"/status", map[string]string{"status": "approved"}, &adv).Status)
	assert.Equal(t, fiber.StatusForbidden, env.Do(t, http.MethodPatch, path, map[string]string{"status": "approved"}, &client).Status)
}

func TestList_ScopedByRole(t *testing.T) {
	env := newEnv(t)
	client := dbtest.User(t, env.DB, models.RoleClient, "")
	other := dbtest.User(t, env.DB, models.RoleClient, "")
	adv := dbtest.Approved(t, env.DB, models.RoleAdvocate)
	admin := dbtest.User(t, env.DB, models.RoleAdmin, "")
	junior := dbtest.Approved(t, env.DB, models.RoleJuniorAdvocate)
	a := dbtest.Appointment(t, env.DB, client, adv)
	dbtest.Appointment(t, env.DB, other, adv)

	res := env.Do(t, http.MethodGet, "/api/appointments", nil, &client)
	require.Equal(t, fiber.StatusOK, res.Status)
	require.Len(t, res.List(), 1)
	assert.Equal(t, a.ID.String(), res.List()[0].(map[string]any)["id"])

	assert.EqualValues(t, 2, env.Do(t, http.MethodGet, "/api/appointments", nil, &adv).Body["count"])
	assert.EqualValues(t, 2, env.Do(t, http.MethodGet, "/api/appointments", nil, &admin).Body["count"])
	assert.EqualValues(t, 1, env.Do(t, http.MethodGet, "/api/appointments?status=requested", nil, &client).Body["count"])
	assert.Equal(t, fiber.StatusBadRequest, env.Do(t, http.MethodGet, "/api/appointments?status=bogus", nil, &client).Status)
	assert.Equal(t, fiber.StatusForbidden, env.Do(t, http.MethodGet, "/api/appointments", nil, &junior).Status)
}
