package auth

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/pkg/database"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
	"github.com/aldoetobex/legal-practice-backend/pkg/validation"
)

// HashCost is the bcrypt cost for stored passwords.
var HashCost = 12

var (
	ErrInvalidCredentials = fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	ErrInvalidRole        = fiber.NewError(fiber.StatusBadRequest, "Invalid role")
	ErrEmailTaken         = fiber.NewError(fiber.StatusConflict, "Email already registered")
)

// Compared against when the email is unknown so both failures cost one bcrypt run.
var (
	dummyOnce sync.Once
	dummyHash []byte
)

func dummy() []byte {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), HashCost)
	})
	return dummyHash
}

/* ================================ DTOs ================================= */

// ProfileInput is the optional advocate profile sent at registration.
type ProfileInput struct {
	EnrollmentNumber string   `json:"enrollmentNumber" validate:"omitempty,enrollment"`
	BarCouncil       string   `json:"barCouncil" validate:"omitempty,max=120"`
	ExperienceYears  int      `json:"experienceYears" validate:"gte=0,lte=80"`
	Documents        []string `json:"documents" validate:"omitempty,max=10,dive,max=500"`
}

// Request body for /auth/register
type RegisterRequest struct {
	Name            string        `json:"name" validate:"required,min=2,max=100"`
	Email           string        `json:"email" validate:"required,email,max=120"`
	Phone           string        `json:"phone" validate:"required,phone"`
	Address         string        `json:"address" validate:"required,max=300"`
	Password        string        `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string        `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Role            string        `json:"role"`
	AdvocateProfile *ProfileInput `json:"advocateProfile"`
}

// Request body for /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required"`
}

// SessionUser is the user summary returned by register and login.
type SessionUser struct {
	ID                 uuid.UUID                 `json:"id"`
	Name               string                    `json:"name"`
	Email              string                    `json:"email"`
	Role               models.Role               `json:"role"`
	VerificationStatus models.VerificationStatus `json:"verificationStatus"`
}

func sessionUser(u models.User) SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, VerificationStatus: u.VerificationStatus}
}

/* ============================== Handler ================================= */

type Handler struct {
	db           *gorm.DB
	tokens       *Tokens
	secureCookie bool
}

// NewHandler wires the auth endpoints. secureCookie marks the session cookie
// Secure with SameSite=None (production behind HTTPS).
func NewHandler(db *gorm.DB, tokens *Tokens, secureCookie bool) *Handler {
	return &Handler{db: db, tokens: tokens, secureCookie: secureCookie}
}

/* ============================== Register ================================ */

// @Summary      Register
// @Description  Create a client, advocate or junior advocate account. Advocates start pending review.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  RegisterRequest  true  "Registration payload"
// @Success      201      {object}  models.Envelope
// @Failure      400      {object}  models.ValidationErrorResponse
// @Failure      409      {object}  models.ErrorResponse  "email already registered"
// @Router       /auth/register [post]
func (h *Handler) Register(c *fiber.Ctx) error {
	var in RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}

	role := models.Role(in.Role)
	switch role {
	case "":
		role = models.RoleClient
	case models.RoleClient, models.RoleAdvocate, models.RoleJuniorAdvocate:
	default:
		return ErrInvalidRole
	}

	in.Email = models.NormalizeEmail(in.Email)
	if done, err := validation.Check(c, in); done {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), HashCost)
	if err != nil {
		return err
	}

	var profile *models.AdvocateProfile
	if in.AdvocateProfile != nil {
		profile = &models.AdvocateProfile{
			EnrollmentNumber: in.AdvocateProfile.EnrollmentNumber,
			BarCouncil:       in.AdvocateProfile.BarCouncil,
			ExperienceYears:  in.AdvocateProfile.ExperienceYears,
			Documents:        in.AdvocateProfile.Documents,
		}
	}

	u := models.NewUser(in.Name, in.Email, in.Phone, in.Address, string(hash), role, profile)
	if err := h.db.WithContext(c.UserContext()).Create(&u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.Envelope{
		Success: true,
		Message: "Registration successful",
		User:    sessionUser(u),
	})
}

/* ================================ Login ================================= */

// @Summary      Login
// @Description  Authenticate, receive a JWT and the HTTP-only session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  LoginRequest  true  "Login payload"
// @Success      200      {object}  models.Envelope
// @Failure      400      {object}  models.ValidationErrorResponse
// @Failure      401      {object}  models.ErrorResponse
// @Failure      403      {object}  models.ErrorResponse  "account deactivated"
// @Router       /auth/login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	var in LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}

	in.Email = models.NormalizeEmail(in.Email)
	if done, err := validation.Check(c, in); done {
		return err
	}

	db := h.db.WithContext(c.UserContext())

	var u models.User
	if err := db.Where("email = ?", in.Email).First(&u).Error; err != nil {
		if !database.IsNotFound(err) {
			return err
		}
		_ = bcrypt.CompareHashAndPassword(dummy(), []byte(in.Password))
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return ErrInvalidCredentials
	}
	if !u.IsActive {
		return ErrDeactivated
	}

	token, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return err
	}
	h.setCookie(c, token, time.Now().Add(TokenTTL))

	now := time.Now()
	if err := db.Model(&u).UpdateColumn("last_login_at", now).Error; err != nil {
		return err
	}

	return c.JSON(models.Envelope{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    sessionUser(u),
	})
}

/* =============================== Logout ================================= */

// @Summary      Logout
// @Description  Clear the session cookie
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  models.Envelope
// @Router       /auth/logout [post]
func (h *Handler) Logout(c *fiber.Ctx) error {
	h.setCookie(c, "", time.Unix(0, 0))
	return c.JSON(models.Envelope{Success: true, Message: "Logged out"})
}

/* ================================= Me =================================== */

// @Summary      Get current user profile
// @Description  Return the profile of the authenticated user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  models.Envelope{user=models.User}
// @Failure      401  {object}  models.ErrorResponse
// @Router       /auth/me [get]
func (h *Handler) Me(c *fiber.Ctx) error {
	return c.JSON(models.Envelope{Success: true, User: MustUser(c)})
}

func (h *Handler) setCookie(c *fiber.Ctx, value string, expires time.Time) {
	ck := &fiber.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if h.secureCookie {
		ck.Secure = true
		ck.SameSite = fiber.CookieSameSiteNoneMode
	}
	c.Cookie(ck)
}
