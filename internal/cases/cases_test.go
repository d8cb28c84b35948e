// internal/cases/cases_test.go
package cases

import (
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

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
	advocateOnly := []fiber.Handler{env.Auth, auth.RequireRole(models.RoleAdvocate), auth.RequireVerifiedAdvocate()}

	g := env.App.Group("/api/cases")
	g.Post("/", append(advocateOnly, h.Create)...)
	g.Get("/", env.Auth, h.List)
	g.Patch("/:caseId/status", append(advocateOnly, h.UpdateStatus)...)
	g.Post("/:caseId/notes", env.Auth, auth.RequireRole(models.RoleAdvocate, models.RoleJuniorAdvocate),
		auth.RequireVerifiedAdvocate(), h.AddNote)
	g.Get("/:caseId/history", env.Auth, h.History)
	return env
}

func casePayload(number string, client models.User, juniors ...models.User) map[string]any {
	ids := make([]string, 0, len(juniors))
	for _, j := range juniors {
		ids = append(ids, j.ID.String())
	}
	return map[string]any{
		"caseNumber":      number,
		"title":           "State vs Rao",
		"description":     "Bail application",
		"caseType":        "criminal",
		"clientId":        client.ID.String(),
		"assignedJuniors": ids,
	}
}

/* ================== TESTS ================== */

func TestCreate_OpensCaseWithHistory(t *testing.T) {
	env := newEnv(t)
	adv := dbtest.Approved(t, env.DB, models.RoleAdvocate)
	client := dbtest.User(t, env.DB, models.RoleClient, "")
	junior := dbtest.Approved(t, env.DB, models.RoleJuniorAdvocate)

	res := env.Do(t, http.MethodPost, "/api/cases", casePayload("CR-1", client, junior), &adv)
	require.Equal(t, fiber.StatusCreated, res.Status, string(res.Raw))
	assert.Equal(t, "open", res.Data()["status"])
	assert.Equal(t, adv.ID.String(), res.Data()["advocateId"])

	id := uuid.MustParse(res.Data()["id"].(string))
	var cs models.Case
	require.NoError(t, env.DB.Preload("AssignedJuniors").First(&cs, "id = ?", id).Error)
	require.Len(t, cs.AssignedJuniors, 1)
	assert.Equal(t, junior.ID, cs.AssignedJuniors[0].ID)

	var hist []models.CaseHistory
	require.NoError(t, env.DB.Where("case_id = ?", id).Find(&hist).Error)
	require.Len(t, hist, 1)
	assert.Equal(t, models.HistoryCreated, hist[0].Action)
}

func TestCreate_Rejections(t *testing.T) {
	env := newEnv(t)
	adv := dbtest.Approved(t, env.DB, models.RoleAdvocate)
	pending := dbtest.User(t, env.DB, models.RoleAdvocate, "")
	client := dbtest.User(t, env.DB, models.RoleClient, "")
	other := dbtest.Approved(t, env.DB, models.RoleAdvocate)

	// unverified advocate
	res := env.Do(t, http.MethodPost, "/api/cases", casePayload("CR-1", client), &pending)
	assert.Equal(t, fiber.StatusForbidden, res.Status)
	assert.Equal(t, "Advocate account not verified", res.Message())

	// client cannot create
	assert.Equal(t, fiber.StatusForbidden, env.Do(t, http.MethodPost, "/api/cases", casePayload("CR-1", client), &client).Status)

	// missing fields
	res = env.Do(t, http.MethodPost, "/api/cases", map[string]any{"title": "x"}, &adv)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
	assert.Contains(t, res.Body["errors"], "caseNumber")

	// unknown client
	ghost := models.User{ID: uuid.New()}
	assert.Equal(t, fiber.StatusNotFound, env.Do(t, http.MethodPost, "/api/cases", casePayload("CR-1", ghost), &adv).Status)

	// "client" that is an advocate
	assert.Equal(t, fiber.StatusBadRequest, env.Do(t, http.MethodPost, "/api/cases", casePayload("CR-1", other), &adv).Status)

	// junior list containing a non-junior
	res = env.Do(t, http.MethodPost, "/api/cases", casePayload("CR-1", client, other), &adv)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
	assert.Equal(t, "Invalid junior advocate", res.Message())

	// duplicate case number
	require.Equal(t, fiber.StatusCreated, env.Do(t, http.MethodPost, "/api/cases", casePayload("CR-1", client), &adv).Status)
	assert.Equal(t, fiber.StatusConflict, env.Do(t, http.MethodPost, "/api/cases", casePayload("CR-1", client), &adv).Status)
}

func TestList_ScopedByRole(t *testing.T) {
	env := newEnv(t)
	client := dbtest.User(t, env.DB, models.RoleClient, "")
	adv := dbtest.Approved(t, env.DB, models.RoleAdvocate)
	junior := dbtest.Approved(t, env.DB, models.RoleJuniorAdvocate)
	admin := dbtest.User(t, env.DB, models.RoleAdmin, "")
	cs := dbtest.Case(t, env.DB, client, adv, junior)
	dbtest.Case(t, env.DB, dbtest.User(t, env.DB, models.RoleClient, ""), dbtest.Approved(t, env.DB, models.RoleAdvocate))

	for _, u := range []models.User{client, adv, junior} {
		res := env.Do(t, http.MethodGet, "/api/cases", nil, &u)
		require.Equal(t, fiber.StatusOK, res.Status)
		assert.EqualValues(t, 1, res.Body["count"], u.Role)
		assert.Equal(t, cs.ID.String(), res.List()[0].(map[string]any)["id"])
	}

	res := env.Do(t, http.MethodGet, "/api/cases", nil, &admin)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Empty(t, res.List())
}

func TestList_DescriptionPreview(t *testing.T) {
	env := newEnv(t)
	adv := dbtest.Approved(t, env.DB, models.RoleAdvocate)
	client := dbtest.User(t, env.DB, models.RoleClient, "")
	cs := dbtest.Case(t, env.DB, client, adv)
	long := strings.Repeat("Appeal against the order of the district court ", 10)
	require.NoError(t, env.DB.Model(&cs).Update("description", long).Error)

	res := env.Do(t, http.MethodGet, "/api/cases", nil, &adv)
	require.Equal(t, fiber.StatusOK, res.Status)
	require.Len(t, res.List(), 1)
	row := res.List()[0].(map[string]any)

	preview := row["descriptionPreview"].(string)
	assert.True(t, strings.HasSuffix(preview, "…"))
	assert.LessOrEqual(t, utf8.RuneCountInString(preview), models.PreviewLen+1)
	assert.Equal(t, long, row["description"])
}

func TestUpdateStatus_OnlyPrimaryAdvocate(t *testing.T) {
	env := newEnv(t)
	client := dbtest.User(t, env.DB, models.RoleClient, "")
	adv := dbtest.Approved(t, env.DB, models.RoleAdvocate)
	other := dbtest.Approved(t, env.DB, models.RoleAdvocate)
	cs := dbtest.Case(t, env.DB, client, adv)
	path := "/api/cases/" + cs.ID.String() + "/status"

	res := env.Do(t, http.MethodPatch, path, map[string]string{"status": "closed"}, &other)
	assert.Equal(t, fiber.StatusForbidden, res.Status)
	assert.Equal(t, "Access denied", res.Message())

	res = env.Do(t, http.MethodPatch, path, map[string]string{"status": "archived"}, &adv)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)

	res = env.Do(t, http.MethodPatch, "/api/cases/"+uuid.NewString()+"/status", map[string]string{"status": "closed"}, &adv)
	assert.Equal(t, fiber.StatusNotFound, res.Status)

	res = env.Do(t, http.MethodPatch, "/api/cases/not-a-uuid/status", map[string]string{"status": "closed"}, &adv)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)

	// open straight to closed is allowed
	res = env.Do(t, http.MethodPatch, path, map[string]string{"status": "closed"}, &adv)
	require.Equal(t, fiber.StatusOK, res.Status, string(res.Raw))
	assert.Equal(t, "closed", res.Data()["status"])
	assert.NotNil(t, res.Data()["closedAt"])

	var hist []models.CaseHistory
	require.NoError(t, env.DB.Where("case_id = ? AND action = ?", cs.ID, models.HistoryStatusChanged).Find(&hist).Error)
	require.Len(t, hist, 1)
	assert.Equal(t, models.CaseOpen, hist[0].OldStatus)
	assert.Equal(t, models.CaseClosed, hist[0].NewStatus)
}

func TestNotes_PrimaryOrAssigned(t *testing.T) {
	env := newEnv(t)
	client := dbtest.User(t, env.DB, models.RoleClient, "")
	adv := dbtest.Approved(t, env.DB, models.RoleAdvocate)
	junior := dbtest.Approved(t, env.DB, models.RoleJuniorAdvocate)
	outsider := dbtest.Approved(t, env.DB, models.RoleJuniorAdvocate)
	cs := dbtest.Case(t, env.DB, client, adv, junior)
	path := "/api/cases/" + cs.ID.String() + "/notes"

	assert.Equal(t, fiber.StatusCreated, env.Do(t, http.MethodPost, path, map[string]string{"note": "Filed vakalatnama"}, &adv).Status)
	assert.Equal(t, fiber.StatusCreated, env.Do(t, http.MethodPost, path, map[string]string{"note": "Collected documents"}, &junior).Status)
	assert.Equal(t, fiber.StatusForbidden, env.Do(t, http.MethodPost, path, map[string]string{"note": "hi"}, &outsider).Status)
	assert.Equal(t, fiber.StatusBadRequest, env.Do(t, http.MethodPost, path, map[string]string{"note": "  "}, &adv).Status)

	res := env.Do(t, http.MethodGet, "/api/cases/"+cs.ID.String()+"/history", nil, &client)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.EqualValues(t, 2, res.Body["count"])

	res = env.Do(t, http.MethodGet, "/api/cases/"+cs.ID.String()+"/history", nil, &outsider)
	assert.Equal(t, fiber.StatusNotFound, res.Status)
}
