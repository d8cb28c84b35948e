package evidence

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/internal/access"
	"github.com/aldoetobex/legal-practice-backend/internal/auth"
	"github.com/aldoetobex/legal-practice-backend/internal/storage"
	"github.com/aldoetobex/legal-practice-backend/pkg/database"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
	"github.com/aldoetobex/legal-practice-backend/pkg/utils"
)

// MaxFileSize caps a single evidence upload.
const MaxFileSize = 10 * 1024 * 1024

// Allowed sniffed content types and their logical category.
var allowedTypes = map[string]models.FileType{
	"application/pdf": models.FilePDF,
	"image/jpeg":      models.FileImage,
	"image/png":       models.FileImage,
}

var (
	ErrFileRequired     = fiber.NewError(fiber.StatusBadRequest, "File and caseId are required")
	ErrFileTooLarge     = fiber.NewError(fiber.StatusRequestEntityTooLarge, "File exceeds the 10MB limit")
	ErrFileEmpty        = fiber.NewError(fiber.StatusBadRequest, "File is empty")
	ErrFileType         = fiber.NewError(fiber.StatusBadRequest, "Only PDF, JPG, PNG files are allowed")
	ErrInvalidFlag      = fiber.NewError(fiber.StatusBadRequest, "isConfidential must be true or false")
	ErrCaseNotFound     = fiber.NewError(fiber.StatusNotFound, "Case not found")
	ErrTaskNotFound     = fiber.NewError(fiber.StatusNotFound, "Task not found")
	ErrEvidenceNotFound = fiber.NewError(fiber.StatusNotFound, "Evidence not found")
)

type Handler struct {
	db    *gorm.DB
	store storage.Store
	log   zerolog.Logger
}

func NewHandler(db *gorm.DB, store storage.Store, log zerolog.Logger) *Handler {
	return &Handler{db: db, store: store, log: log}
}

// upload is the validated multipart input.
type upload struct {
	file         *multipart.FileHeader
	caseID       uuid.UUID
	taskID       *uuid.UUID
	title        string
	description  string
	confidential bool
}

func parseUpload(c *fiber.Ctx) (upload, error) {
	var in upload
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return in, ErrFileRequired
	}
	in.file = fh

	in.caseID, err = uuid.Parse(strings.TrimSpace(c.FormValue("caseId")))
	if err != nil {
		return in, ErrFileRequired
	}
	if raw := strings.TrimSpace(c.FormValue("taskId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return in, fiber.NewError(fiber.StatusBadRequest, "Invalid task id")
		}
		in.taskID = &id
	}
	if raw := strings.TrimSpace(c.FormValue("isConfidential")); raw != "" {
		in.confidential, err = strconv.ParseBool(raw)
		if err != nil {
			return in, ErrInvalidFlag
		}
	}
	in.title = strings.TrimSpace(c.FormValue("title"))
	if in.title == "" {
		in.title = fh.Filename
	}
	in.description = strings.TrimSpace(c.FormValue("description"))

	switch {
	case fh.Size <= 0:
		return in, ErrFileEmpty
	case fh.Size > MaxFileSize:
		return in, ErrFileTooLarge
	}
	return in, nil
}

// sniff reads the head of the file and maps it to an allowed type.
func sniff(f multipart.File) (string, models.FileType, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}
	mime := http.DetectContentType(head[:n])
	ft, ok := allowedTypes[mime]
	if !ok {
		return "", "", ErrFileType
	}
	return mime, ft, nil
}

// Upload Evidence godoc
// @Summary      Upload evidence
// @Description  Case advocate or an assigned junior uploads a PDF/JPG/PNG (max 10MB)
// @Tags         evidence
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file            formData  file    true   "PDF, JPG or PNG"
// @Param        caseId          formData  string  true   "case id (uuid)"
// @Param        taskId          formData  string  false  "task id (uuid)"
// @Param        title           formData  string  false  "defaults to the file name"
// @Param        description     formData  string  false  "description"
// @Param        isConfidential  formData  bool    false  "hide from the client"
// @Success      201  {object}  models.Envelope{data=models.Evidence}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      413  {object}  models.ErrorResponse
// @Router       /evidence [post]
func (h *Handler) Upload(c *fiber.Ctx) error {
	in, err := parseUpload(c)
	if err != nil {
		return err
	}
	f, err := in.file.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	mime, fileType, err := sniff(f)
	if err != nil {
		return err
	}

	me := auth.MustActor(c)
	ctx := c.UserContext()
	db := h.db.WithContext(ctx)

	var cs models.Case
	if err := db.Preload("AssignedJuniors", models.UserRefColumns).First(&cs, "id = ?", in.caseID).Error; err != nil {
		if database.IsNotFound(err) {
			return ErrCaseNotFound
		}
		return err
	}
	if in.taskID != nil {
		var cnt int64
		if err := db.Model(&models.Task{}).Where("id = ? AND case_id = ?", *in.taskID, cs.ID).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return ErrTaskNotFound
		}
	}
	if err := access.CanUploadEvidence(me, cs); err != nil {
		return err
	}

	// File first, then the row; a failed insert removes the file again.
	key := storage.ObjectKey(cs.ID, in.file.Filename)
	location, err := h.store.Put(ctx, key, f, mime, in.file.Size)
	if err != nil {
		return err
	}

	ev := models.Evidence{
		ID:             uuid.New(),
		CaseID:         cs.ID,
		TaskID:         in.taskID,
		UploadedByID:   me.ID,
		Title:          in.title,
		FileName:       in.file.Filename,
		FilePath:       location,
		FileSize:       in.file.Size,
		MimeType:       mime,
		FileType:       fileType,
		Description:    in.description,
		IsConfidential: in.confidential,
	}
	if err := db.Create(&ev).Error; err != nil {
		if derr := h.store.Delete(ctx, location); derr != nil {
			h.log.Warn().Err(derr).Str("location", location).Msg("orphaned evidence file")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.OK("Evidence uploaded successfully", ev))
}

// List Evidence godoc
// @Summary      List evidence
// @Description  Evidence visible to the caller. Clients never see confidential files.
// @Tags         evidence
// @Security     BearerAuth
// @Produce      json
// @Param        caseId  query  string  false  "case id (uuid)"
// @Success      200  {object}  models.Envelope{data=[]models.Evidence}
// @Failure      400  {object}  models.ErrorResponse
// @Router       /evidence [get]
func (h *Handler) List(c *fiber.Ctx) error {
	me := auth.MustActor(c)

	q := h.db.WithContext(c.UserContext()).
		Scopes(access.Evidence(me)).
		Preload("UploadedBy", models.UserRefColumns).
		Preload("Case", models.CaseRefColumns).
		Order("evidence.created_at DESC")

	caseID, ok, err := utils.QueryUUID(c, "caseId", "case")
	if err != nil {
		return err
	}
	if ok {
		q = q.Where("evidence.case_id = ?", caseID)
	}

	var out []models.Evidence
	if err := q.Find(&out).Error; err != nil {
		return err
	}
	return c.JSON(models.List(out))
}

// Evidence Download URL godoc
// @Summary      Evidence download link
// @Description  A link to the stored file, for evidence visible to the caller
// @Tags         evidence
// @Security     BearerAuth
// @Produce      json
// @Param        evidenceId  path  string  true  "evidence id (uuid)"
// @Success      200  {object}  models.Envelope
// @Failure      404  {object}  models.ErrorResponse
// @Router       /evidence/{evidenceId}/url [get]
func (h *Handler) DownloadURL(c *fiber.Ctx) error {
	id, err := utils.ParamUUID(c, "evidenceId", "evidence")
	if err != nil {
		return err
	}
	me := auth.MustActor(c)

	var ev models.Evidence
	if err := h.db.WithContext(c.UserContext()).Scopes(access.Evidence(me)).
		First(&ev, "evidence.id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return ErrEvidenceNotFound
		}
		return err
	}

	url, err := h.store.URL(c.UserContext(), ev.FilePath)
	if err != nil {
		return err
	}
	return c.JSON(models.OK("", fiber.Map{"url": url, "fileName": ev.FileName, "mimeType": ev.MimeType}))
}
