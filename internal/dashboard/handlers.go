package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/internal/access"
	"github.com/aldoetobex/legal-practice-backend/internal/auth"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

// ===== DTOs =====

type Stats struct {
	CasesAssigned int64 `json:"casesAssigned"`
	CasesClosed   int64 `json:"casesClosed"`
	PendingTasks  int64 `json:"pendingTasks"`
}

type AdvocateDashboard struct {
	ID                 uuid.UUID                 `json:"id"`
	Name               string                    `json:"name"`
	Email              string                    `json:"email"`
	Role               models.Role               `json:"role"`
	VerificationStatus models.VerificationStatus `json:"verificationStatus"`
	IsVerified         bool                      `json:"isVerified"`
	LastLoginAt        *time.Time                `json:"lastLoginAt,omitempty"`
	Stats              Stats                     `json:"stats"`
}

type ClientDashboard struct {
	Cases        []models.Case        `json:"cases"`
	Appointments []models.Appointment `json:"appointments"`
	Payments     []models.Payment     `json:"payments"`
}

type JuniorDashboard struct {
	Tasks    []models.Task     `json:"tasks"`
	Cases    []models.Case     `json:"cases"`
	Evidence []models.Evidence `json:"evidence"`
}

// Advocate Dashboard godoc
// @Summary      Advocate dashboard
// @Description  Profile, verification state and workload counters. Unverified advocates may read it.
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  models.Envelope{data=AdvocateDashboard}
// @Router       /advocate/dashboard [get]
func (h *Handler) Advocate(c *fiber.Ctx) error {
	u := auth.MustUser(c)
	me := access.ActorFromUser(u)
	db := h.db.WithContext(c.UserContext())

	var st Stats
	if err := db.Model(&models.Case{}).Scopes(access.Cases(me)).Count(&st.CasesAssigned).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Case{}).Scopes(access.Cases(me)).
		Where("cases.status = ?", models.CaseClosed).Count(&st.CasesClosed).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Task{}).Scopes(access.Tasks(me)).
		Where("tasks.status <> ?", models.TaskCompleted).Count(&st.PendingTasks).Error; err != nil {
		return err
	}

	return c.JSON(models.OK("", AdvocateDashboard{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Role:               u.Role,
		VerificationStatus: u.VerificationStatus,
		IsVerified:         u.IsVerified(),
		LastLoginAt:        u.LastLoginAt,
		Stats:              st,
	}))
}

// Client Dashboard godoc
// @Summary      Client dashboard
// @Description  The client's cases (newest first), appointments (soonest first) and payments
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  models.Envelope{data=ClientDashboard}
// @Router       /client/dashboard [get]
func (h *Handler) Client(c *fiber.Ctx) error {
	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	out := ClientDashboard{
		Cases:        []models.Case{},
		Appointments: []models.Appointment{},
		Payments:     []models.Payment{},
	}
	if err := db.Scopes(access.Cases(me)).
		Preload("Advocate", models.UserRefColumns).
		Order("cases.created_at DESC").
		Find(&out.Cases).Error; err != nil {
		return err
	}
	models.FillPreviews(out.Cases)
	if err := db.Scopes(access.Appointments(me)).
		Preload("Advocate", models.UserRefColumns).
		Order("appointments.date ASC").
		Find(&out.Appointments).Error; err != nil {
		return err
	}
	if err := db.Scopes(access.Payments(me)).
		Preload("Case", models.CaseRefColumns).
		Order("payments.created_at DESC").
		Find(&out.Payments).Error; err != nil {
		return err
	}
	return c.JSON(models.OK("", out))
}

// Junior Dashboard godoc
// @Summary      Junior advocate dashboard
// @Description  Tasks assigned to the junior (nearest due first), cases they are on and evidence they uploaded
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  models.Envelope{data=JuniorDashboard}
// @Router       /junior/dashboard [get]
func (h *Handler) Junior(c *fiber.Ctx) error {
	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	out := JuniorDashboard{
		Tasks:    []models.Task{},
		Cases:    []models.Case{},
		Evidence: []models.Evidence{},
	}
	if err := db.Scopes(access.Tasks(me)).
		Preload("Case", models.CaseRefColumns).
		Order("tasks.due_date ASC").
		Find(&out.Tasks).Error; err != nil {
		return err
	}
	if err := db.Scopes(access.AssignedCases(me)).
		Preload("Advocate", models.UserRefColumns).
		Order("cases.created_at DESC").
		Find(&out.Cases).Error; err != nil {
		return err
	}
	if err := db.Where("evidence.uploaded_by_id = ?", me.ID).
		Preload("Case", models.CaseRefColumns).
		Order("evidence.created_at DESC").
		Find(&out.Evidence).Error; err != nil {
		return err
	}
	return c.JSON(models.OK("", out))
}
