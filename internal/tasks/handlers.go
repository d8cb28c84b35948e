package tasks

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
	ErrTaskNotFound     = fiber.NewError(fiber.StatusNotFound, "Task not found")
	ErrCaseNotFound     = fiber.NewError(fiber.StatusNotFound, "Case not found")
	ErrAssigneeNotFound = fiber.NewError(fiber.StatusNotFound, "Assignee not found")
	ErrInvalidAssignee  = fiber.NewError(fiber.StatusBadRequest, "Tasks can only be assigned to junior advocates")
	ErrAssigneeOffCase  = fiber.NewError(fiber.StatusBadRequest, "Assignee is not assigned to this case")
	ErrInvalidDueDate   = fiber.NewError(fiber.StatusBadRequest, "Invalid due date")
	ErrInvalidStatus    = fiber.NewError(fiber.StatusBadRequest, "Invalid task status")
)

// ===== DTOs =====

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
	CaseID      string `json:"caseId" validate:"required,uuid"`
	AssignedTo  string `json:"assignedTo" validate:"required,uuid"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string `json:"dueDate" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

// Create Task godoc
// @Summary      Assign task
// @Description  The case's primary advocate assigns a task to a junior advocate
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateTaskRequest  true  "Task payload"
// @Success      201  {object}  models.Envelope{data=models.Task}
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /tasks [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if done, err := validation.Check(c, in); done {
		return err
	}
	due, ok := utils.ParseDate(in.DueDate)
	if !ok {
		return ErrInvalidDueDate
	}
	priority := models.TaskPriority(in.Priority)
	if priority == "" {
		priority = models.PriorityMedium
	}

	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	var cs models.Case
	if err := db.Preload("AssignedJuniors", models.UserRefColumns).First(&cs, "id = ?", uuid.MustParse(in.CaseID)).Error; err != nil {
		if database.IsNotFound(err) {
			return ErrCaseNotFound
		}
		return err
	}
	var assignee models.User
	if err := db.First(&assignee, "id = ?", uuid.MustParse(in.AssignedTo)).Error; err != nil {
		if database.IsNotFound(err) {
			return ErrAssigneeNotFound
		}
		return err
	}
	if err := access.CanManageCase(me, cs); err != nil {
		return err
	}
	if assignee.Role != models.RoleJuniorAdvocate {
		return ErrInvalidAssignee
	}
	if !onCase(cs, assignee.ID) {
		return ErrAssigneeOffCase
	}

	task := models.Task{
		ID:           uuid.New(),
		Title:        in.Title,
		Description:  in.Description,
		CaseID:       cs.ID,
		AssignedToID: assignee.ID,
		AssignedByID: me.ID,
		Status:       models.TaskPending,
		Priority:     priority,
		DueDate:      due,
	}
	if err := db.Create(&task).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.OK("Task assigned successfully", task))
}

func onCase(cs models.Case, userID uuid.UUID) bool {
	for _, j := range cs.AssignedJuniors {
		if j.ID == userID {
			return true
		}
	}
	return false
}

// List Tasks godoc
// @Summary      List tasks
// @Description  Advocates see tasks they assigned; juniors see tasks assigned to them
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        status  query  string  false  "pending | in_progress | completed"
// @Param        caseId  query  string  false  "case id (uuid)"
// @Success      200  {object}  models.Envelope{data=[]models.Task}
// @Router       /tasks [get]
func (h *Handler) List(c *fiber.Ctx) error {
	me := auth.MustActor(c)

	q := h.db.WithContext(c.UserContext()).
		Scopes(access.Tasks(me)).
		Preload("Case", models.CaseRefColumns).
		Preload("AssignedTo", models.UserRefColumns).
		Order("tasks.created_at DESC")

	if s := c.Query("status"); s != "" {
		st, ok := models.ParseTaskStatus(s)
		if !ok {
			return ErrInvalidStatus
		}
		q = q.Where("tasks.status = ?", st)
	}
	caseID, ok, err := utils.QueryUUID(c, "caseId", "case")
	if err != nil {
		return err
	}
	if ok {
		q = q.Where("tasks.case_id = ?", caseID)
	}

	var out []models.Task
	if err := q.Find(&out).Error; err != nil {
		return err
	}
	return c.JSON(models.List(out))
}

// Update Task Status godoc
// @Summary      Update task status
// @Description  Only the assignee may change a task's status. Completion stamps completedAt.
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        taskId   path  string               true  "task id (uuid)"
// @Param        payload  body  UpdateStatusRequest  true  "pending | in_progress | completed"
// @Success      200  {object}  models.Envelope{data=models.Task}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /tasks/{taskId}/status [patch]
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	taskID, err := utils.ParamUUID(c, "taskId", "task")
	if err != nil {
		return err
	}
	var in UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	status, ok := models.ParseTaskStatus(strings.TrimSpace(in.Status))
	if !ok {
		return ErrInvalidStatus
	}

	me := auth.MustActor(c)
	db := h.db.WithContext(c.UserContext())

	var task models.Task
	if err := db.First(&task, "id = ?", taskID).Error; err != nil {
		if database.IsNotFound(err) {
			return ErrTaskNotFound
		}
		return err
	}
	if err := access.CanTransitionTask(me, task); err != nil {
		return err
	}

	task.Transition(status, time.Now())
	if err := db.Model(&task).Select("status", "completed_at", "updated_at").Updates(&task).Error; err != nil {
		return err
	}
	return c.JSON(models.OK("Task status updated", task))
}
