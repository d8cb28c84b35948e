package admin

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/internal/auth"
	"github.com/aldoetobex/legal-practice-backend/pkg/database"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
	"github.com/aldoetobex/legal-practice-backend/pkg/utils"
)

var (
	ErrUserNotFound   = fiber.NewError(fiber.StatusNotFound, "User not found")
	ErrNotAdvocate    = fiber.NewError(fiber.StatusBadRequest, "User is not an advocate")
	ErrSelfDeactivate = fiber.NewError(fiber.StatusBadRequest, "You cannot deactivate your own account")
)

// PendingAdvocate is the review-queue row: just enough to decide on.
type PendingAdvocate struct {
	ID              uuid.UUID               `json:"id"`
	Name            string                  `json:"name"`
	Email           string                  `json:"email"`
	Role            models.Role             `json:"role"`
	AdvocateProfile *models.AdvocateProfile `gorm:"serializer:json" json:"advocateProfile,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
}

// ReviewedUser is returned after a verification or activation change.
type ReviewedUser struct {
	ID                 uuid.UUID                 `json:"id"`
	Name               string                    `json:"name"`
	Role               models.Role               `json:"role"`
	VerificationStatus models.VerificationStatus `json:"verificationStatus"`
	IsActive           bool                      `json:"isActive"`
}

func reviewed(u models.User) ReviewedUser {
	return ReviewedUser{
		ID:                 u.ID,
		Name:               u.Name,
		Role:               u.Role,
		VerificationStatus: u.VerificationStatus,
		IsActive:           u.IsActive,
	}
}

type Handler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db, now: time.Now} }

/* ===== Verification queue ===== */

// Pending Advocates godoc
// @Summary      Pending advocates
// @Description  Advocates and junior advocates waiting for verification, oldest first
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  models.Envelope{data=[]PendingAdvocate}
// @Failure      403  {object}  models.ErrorResponse
// @Router       /admin/pending-advocates [get]
func (h *Handler) PendingAdvocates(c *fiber.Ctx) error {
	var out []PendingAdvocate
	err := h.db.WithContext(c.UserContext()).
		Model(&models.User{}).
		Where("role IN ? AND verification_status = ?",
			[]models.Role{models.RoleAdvocate, models.RoleJuniorAdvocate}, models.VerificationPending).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return err
	}
	return c.JSON(models.List(out))
}

// Approve Advocate godoc
// @Summary      Approve advocate
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path  string  true  "user id (uuid)"
// @Success      200  {object}  models.Envelope{user=ReviewedUser}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /admin/advocates/{userId}/approve [patch]
func (h *Handler) Approve(c *fiber.Ctx) error {
	return h.review(c, models.VerificationApproved, "Advocate approved")
}

// Reject Advocate godoc
// @Summary      Reject advocate
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path  string  true  "user id (uuid)"
// @Success      200  {object}  models.Envelope{user=ReviewedUser}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /admin/advocates/{userId}/reject [patch]
func (h *Handler) Reject(c *fiber.Ctx) error {
	return h.review(c, models.VerificationRejected, "Advocate rejected")
}

func (h *Handler) review(c *fiber.Ctx, status models.VerificationStatus, msg string) error {
	u, err := h.load(c)
	if err != nil {
		return err
	}
	if !u.Role.IsAdvocate() {
		return ErrNotAdvocate
	}

	u.Review(status, auth.MustUser(c).ID, h.now())
	err = h.db.WithContext(c.UserContext()).Model(&u).
		Select("verification_status", "verification_reviewed_at", "verification_reviewed_by", "updated_at").
		Updates(&u).Error
	if err != nil {
		return err
	}
	return c.JSON(models.Envelope{Success: true, Message: msg, User: reviewed(u)})
}

/* ===== Account status ===== */

// Activate User godoc
// @Summary      Activate user
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path  string  true  "user id (uuid)"
// @Success      200  {object}  models.Envelope{user=ReviewedUser}
// @Failure      404  {object}  models.ErrorResponse
// @Router       /admin/users/{userId}/activate [patch]
func (h *Handler) Activate(c *fiber.Ctx) error {
	return h.setActive(c, true, "User activated")
}

// Deactivate User godoc
// @Summary      Deactivate user
// @Description  A deactivated user can no longer log in or use an existing token
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path  string  true  "user id (uuid)"
// @Success      200  {object}  models.Envelope{user=ReviewedUser}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /admin/users/{userId}/deactivate [patch]
func (h *Handler) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false, "User deactivated")
}

func (h *Handler) setActive(c *fiber.Ctx, active bool, msg string) error {
	u, err := h.load(c)
	if err != nil {
		return err
	}
	if !active && u.ID == auth.MustUser(c).ID {
		return ErrSelfDeactivate
	}

	u.IsActive = active
	if err := h.db.WithContext(c.UserContext()).Model(&u).Select("is_active", "updated_at").Updates(&u).Error; err != nil {
		return err
	}
	return c.JSON(models.Envelope{Success: true, Message: msg, User: reviewed(u)})
}

func (h *Handler) load(c *fiber.Ctx) (models.User, error) {
	var u models.User
	id, err := utils.ParamUUID(c, "userId", "user")
	if err != nil {
		return u, err
	}
	if err := h.db.WithContext(c.UserContext()).First(&u, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return u, ErrUserNotFound
		}
		return u, err
	}
	return u, nil
}
