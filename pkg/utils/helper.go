package utils

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

// AppendCaseHistory inserts an entry into a case's append-only log.
// Pass the transaction when the entry must commit with the change it describes.
func AppendCaseHistory(
	ctx context.Context,
	db *gorm.DB,
	caseID, actorID uuid.UUID,
	action string,
	oldS, newS models.CaseStatus,
	note string,
) (models.CaseHistory, error) {
	h := models.CaseHistory{
		ID:        uuid.New(),
		CaseID:    caseID,
		AddedByID: actorID,
		Action:    action,
		OldStatus: oldS,
		NewStatus: newS,
		Note:      note,
		CreatedAt: time.Now(),
	}
	return h, db.WithContext(ctx).Create(&h).Error
}

// ParamUUID parses a path parameter, failing with 400 "Invalid <label> id".
func ParamUUID(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+label+" id")
	}
	return id, nil
}

// QueryUUID parses an optional query parameter. ok is false when absent.
func QueryUUID(c *fiber.Ctx, name, label string) (id uuid.UUID, ok bool, err error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return uuid.Nil, false, nil
	}
	id, err = uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, fiber.NewError(fiber.StatusBadRequest, "Invalid "+label+" id")
	}
	return id, true, nil
}

// ParseDate accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date (UTC midnight).
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
