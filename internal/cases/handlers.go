package cases

import (
	"strings"
	"time"

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
	ErrCaseNotFound     = fiber.NewError(fiber.StatusNotFound, "Case not found")
	ErrClientNotFound   = fiber.NewError(fiber.StatusNotFound, "Client not found")
	ErrInvalidClient    = fiber.NewError(fiber.StatusBadRequest, "Invalid client")
	ErrInvalidJunior    = fiber.NewError(fiber.StatusBadRequest, "Invalid junior advocate")
	ErrInvalidStatus    = fiber.NewError(fiber.StatusBadRequest, "Invalid case status")
	ErrDuplicateCaseNum = fiber.NewError(fiber.StatusConflict, "Case number already exists")
)

// ===== DTOs =====

type CreateCaseRequest struct {
	CaseNumber      string   `json:"caseNumber" validate:"required,max=50"`
	Title           string   `json:"title" validate:"required,max=200"`
	Description     string   `json:"description" validate:"required,max=5000"`
	CaseType        string   `json:"caseType" validate:"required,oneof=civil criminal corporate family other"`
	ClientID        string   `json:"clientId" validate:"required,uuid"`
	AssignedJuniors []string `json:"assignedJuniors" validate:"omitempty,max=20,dive,uuid"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AddNoteRequest struct {
	Note string `json:"note" validate:"required,max=2000"`
}

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// Create Case godoc
// @Summary      Create case
// @Description  Verified advocate opens a case for a client, optionally assigning juniors
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateCaseRequest  true  "Case payload"
// @Success      201  {object}  models.Envelope{data=models.Case}
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse  "client not found"
// @Failure      409  {object}  models.ErrorResponse  "case number taken"
// @Router       /cases [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	in.CaseNumber = strings.TrimSpace(in.CaseNumber)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if done, err := validation.Check(c, in); done {
		return err
	}

	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	// Client must exist and actually be a client
	var client models.User
	if err := db.First(&client, "id = ?", uuid.MustParse(in.ClientID)).Error; err != nil {
		if database.IsNotFound(err) {
			return ErrClientNotFound
		}
		return err
	}
	if client.Role != models.RoleClient {
		return ErrInvalidClient
	}

	juniors, err := h.loadJuniors(db, in.AssignedJuniors)
	if err != nil {
		return err
	}

	cs := models.Case{
		ID:              uuid.New(),
		CaseNumber:      in.CaseNumber,
		Title:           in.Title,
		Description:     in.Description,
		CaseType:        models.CaseType(in.CaseType),
		Status:          models.CaseOpen,
		ClientID:        client.ID,
		AdvocateID:      me.ID,
		CreatedByID:     me.ID,
		OpenedAt:        time.Now(),
		AssignedJuniors: juniors,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("AssignedJuniors.*").Create(&cs).Error; err != nil {
			return err
		}
		_, err := utils.AppendCaseHistory(c.UserContext(), tx, cs.ID, me.ID,
			models.HistoryCreated, "", models.CaseOpen, "Case opened")
		return err
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateCaseNum
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.OK("Case created successfully", cs))
}

// loadJuniors resolves ids to junior advocates, rejecting unknown ids and other roles.
func (h *Handler) loadJuniors(db *gorm.DB, raw []string) ([]models.User, error) {
	if len(raw) == 0 {
		return []models.User{}, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]bool, len(raw))
	for _, s := range raw {
		id := uuid.MustParse(s) // validated above
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	var juniors []models.User
	if err := db.Where("id IN ? AND role = ?", ids, models.RoleJuniorAdvocate).Find(&juniors).Error; err != nil {
		return nil, err
	}
	if len(juniors) != len(ids) {
		return nil, ErrInvalidJunior
	}
	return juniors, nil
}

// List Cases godoc
// @Summary      List cases
// @Description  Cases visible to the caller: clients see their own, advocates and juniors see cases they lead or are assigned to
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        status  query  string  false  "open | in_progress | closed"
// @Success      200  {object}  models.Envelope{data=[]models.Case}
// @Failure      401  {object}  models.ErrorResponse
// @Router       /cases [get]
func (h *Handler) List(c *fiber.Ctx) error {
	me := auth.MustActor(c)

	q := h.db.WithContext(c.UserContext()).
		Scopes(access.Cases(me)).
		Preload("Client", models.UserRefColumns).
		Preload("Advocate", models.UserRefColumns).
		Preload("AssignedJuniors", models.UserRefColumns).
		Order("cases.created_at DESC")

	if s := c.Query("status"); s != "" {
		st, ok := models.ParseCaseStatus(s)
		if !ok {
			return ErrInvalidStatus
		}
		q = q.Where("cases.status = ?", st)
	}

	var out []models.Case
	if err := q.Find(&out).Error; err != nil {
		return err
	}
	models.FillPreviews(out)
	return c.JSON(models.List(out))
}

// Update Case Status godoc
// @Summary      Update case status
// @Description  Only the case's primary advocate may change its status. Closing stamps closedAt.
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        caseId   path  string               true  "case id (uuid)"
// @Param        payload  body  UpdateStatusRequest  true  "open | in_progress | closed"
// @Success      200  {object}  models.Envelope{data=models.Case}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{caseId}/status [patch]
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	caseID, err := utils.ParamUUID(c, "caseId", "case")
	if err != nil {
		return err
	}
	var in UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	status, ok := models.ParseCaseStatus(strings.TrimSpace(in.Status))
	if !ok {
		return ErrInvalidStatus
	}

	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	var cs models.Case
	if err := db.First(&cs, "id = ?", caseID).Error; err != nil {
		if database.IsNotFound(err) {
			return ErrCaseNotFound
		}
		return err
	}
	if err := access.CanTransitionCase(me, cs); err != nil {
		return err
	}

	old := cs.Status
	cs.Transition(status, time.Now())

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&cs).Select("status", "closed_at", "updated_at").Updates(&cs).Error; err != nil {
			return err
		}
		_, err := utils.AppendCaseHistory(c.UserContext(), tx, cs.ID, me.ID,
			models.HistoryStatusChanged, old, status, "Status changed from "+string(old)+" to "+string(status))
		return err
	})
	if err != nil {
		return err
	}

	return c.JSON(models.OK("Case status updated", cs))
}

// Add Case Note godoc
// @Summary      Add case note
// @Description  Primary advocate or an assigned junior appends a note to the case history
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        caseId   path  string          true  "case id (uuid)"
// @Param        payload  body  AddNoteRequest  true  "Note"
// @Success      201  {object}  models.Envelope{data=models.CaseHistory}
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{caseId}/notes [post]
func (h *Handler) AddNote(c *fiber.Ctx) error {
	caseID, err := utils.ParamUUID(c, "caseId", "case")
	if err != nil {
		return err
	}
	var in AddNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	in.Note = strings.TrimSpace(in.Note)
	if done, err := validation.Check(c, in); done {
		return err
	}

	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	var cs models.Case
	if err := db.Preload("AssignedJuniors", models.UserRefColumns).First(&cs, "id = ?", caseID).Error; err != nil {
		if database.IsNotFound(err) {
			return ErrCaseNotFound
		}
		return err
	}
	if err := access.CanWorkOnCase(me, cs); err != nil {
		return err
	}

	entry, err := utils.AppendCaseHistory(c.UserContext(), db, cs.ID, me.ID, models.HistoryNote, "", "", in.Note)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.OK("Note added", entry))
}

// Case History godoc
// @Summary      Case history
// @Description  Append-only log of a visible case, oldest first
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        caseId  path  string  true  "case id (uuid)"
// @Success      200  {object}  models.Envelope{data=[]models.CaseHistory}
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{caseId}/history [get]
func (h *Handler) History(c *fiber.Ctx) error {
	caseID, err := utils.ParamUUID(c, "caseId", "case")
	if err != nil {
		return err
	}
	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	var cnt int64
	if err := db.Model(&models.Case{}).Scopes(access.Cases(me)).Where("cases.id = ?", caseID).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		return ErrCaseNotFound
	}

	var out []models.CaseHistory
	if err := db.Where("case_id = ?", caseID).Order("created_at ASC").Find(&out).Error; err != nil {
		return err
	}
	return c.JSON(models.List(out))
}
