package appointments

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/internal/access"
	"github.com/aldoetobex/legal-practice-backend/internal/auth"
	"github.com/aldoetobex/legal-practice-backend/pkg/database"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
	"github.com/aldoetobex/legal-practice-backend/pkg/utils"
	"github.com/aldoetobex/legal-practice-backend/pkg/validation"
)

var (
	ErrAdvocateNotFound    = fiber.NewError(fiber.StatusNotFound, "Advocate not found")
	ErrInvalidAdvocate     = fiber.NewError(fiber.StatusBadRequest, "Invalid advocate")
	ErrInvalidDate         = fiber.NewError(fiber.StatusBadRequest, "Invalid date")
	ErrInvalidStatus       = fiber.NewError(fiber.StatusBadRequest, "Invalid appointment status")
	ErrAppointmentNotFound = fiber.NewError(fiber.StatusNotFound, "Appointment not found")
)

// ===== DTOs =====

type CreateAppointmentRequest struct {
	AdvocateID string `json:"advocateId" validate:"required,uuid"`
	Date       string `json:"date" validate:"required"`
	TimeSlot   string `json:"timeSlot" validate:"required,max=50"`
	Purpose    string `json:"purpose" validate:"max=300"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=2000"`
}

type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

// Create Appointment godoc
// @Summary      Request appointment
// @Description  A client asks an advocate for a meeting. It starts as requested.
// @Tags         appointments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateAppointmentRequest  true  "Appointment"
// @Success      201  {object}  models.Envelope{data=models.Appointment}
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /appointments [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateAppointmentRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	in.TimeSlot = strings.TrimSpace(in.TimeSlot)
	in.Purpose = strings.TrimSpace(in.Purpose)
	if done, err := validation.Check(c, in); done {
		return err
	}
	date, ok := utils.ParseDate(in.Date)
	if !ok {
		return ErrInvalidDate
	}

	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	var adv models.User
	if err := db.First(&adv, "id = ?", uuid.MustParse(in.AdvocateID)).Error; err != nil {
		if database.IsNotFound(err) {
			return ErrAdvocateNotFound
		}
		return err
	}
	if adv.Role != models.RoleAdvocate || !adv.IsActive {
		return ErrInvalidAdvocate
	}

	a := models.Appointment{
		ID:         uuid.New(),
		ClientID:   me.ID,
		AdvocateID: adv.ID,
		Date:       date,
		TimeSlot:   in.TimeSlot,
		Purpose:    in.Purpose,
		Status:     models.AppointmentRequested,
	}
	if err := db.Create(&a).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.OK("Appointment requested successfully", a))
}

// List Appointments godoc
// @Summary      List appointments
// @Description  Clients and advocates see their own appointments, admins all; soonest first
// @Tags         appointments
// @Security     BearerAuth
// @Produce      json
// @Param        status  query  string  false  "requested | approved | rejected | completed"
// @Success      200  {object}  models.Envelope{data=[]models.Appointment}
// @Router       /appointments [get]
func (h *Handler) List(c *fiber.Ctx) error {
	me := auth.MustActor(c)

	q := h.db.WithContext(c.UserContext()).
		Scopes(access.Appointments(me)).
		Preload("Client", models.UserRefColumns).
		Preload("Advocate", models.UserRefColumns).
		Order("appointments.date ASC")

	if s := c.Query("status"); s != "" {
		st := models.AppointmentStatus(s)
		if _, ok := models.ParseAppointmentUpdate(s); !ok && st != models.AppointmentRequested {
			return ErrInvalidStatus
		}
		q = q.Where("appointments.status = ?", st)
	}

	var out []models.Appointment
	if err := q.Find(&out).Error; err != nil {
		return err
	}
	return c.JSON(models.List(out))
}

// Update Appointment Status godoc
// @Summary      Update appointment status
// @Description  The appointment's advocate approves, rejects or completes it, optionally with notes
// @Tags         appointments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        appointmentId  path  string               true  "appointment id (uuid)"
// @Param        payload        body  UpdateStatusRequest  true  "approved | rejected | completed"
// @Success      200  {object}  models.Envelope{data=models.Appointment}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /appointments/{appointmentId}/status [patch]
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	id, err := utils.ParamUUID(c, "appointmentId", "appointment")
	if err != nil {
		return err
	}
	var in UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	status, ok := models.ParseAppointmentUpdate(strings.TrimSpace(in.Status))
	if !ok {
		return ErrInvalidStatus
	}
	in.Notes = strings.TrimSpace(in.Notes)
	if done, err := validation.Check(c, in); done {
		return err
	}

	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	var a models.Appointment
	if err := db.First(&a, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return ErrAppointmentNotFound
		}
		return err
	}
	if err := access.CanTransitionAppointment(me, a); err != nil {
		return err
	}

	a.Transition(status, in.Notes)
	if err := db.Model(&a).Select("status", "notes", "updated_at").Updates(&a).Error; err != nil {
		return err
	}
	return c.JSON(models.OK("Appointment updated successfully", a))
}
