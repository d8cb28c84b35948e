package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/internal/access"
	"github.com/aldoetobex/legal-practice-backend/pkg/database"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

// CookieName is the HTTP-only cookie carrying the session token.
const CookieName = "token"

var (
	ErrNotAuthenticated = fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	ErrInvalidToken     = fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	ErrUserGone         = fiber.NewError(fiber.StatusUnauthorized, "User no longer exists")
	ErrDeactivated      = fiber.NewError(fiber.StatusForbidden, "Account is deactivated")
	ErrRoleForbidden    = fiber.NewError(fiber.StatusForbidden, "You do not have permission to perform this action")
)

const localsUser = "user"

/* ============================== Middleware ============================== */

// RequireAuth reads the token from the cookie (then the Bearer header), loads
// the user and stores it in the request context.
func RequireAuth(db *gorm.DB, tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(CookieName)
		if raw == "" {
			if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
				raw = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			}
		}
		if raw == "" {
			return ErrNotAuthenticated
		}

		id, err := tokens.Parse(raw)
		if err != nil {
			return ErrInvalidToken
		}

		var u models.User
		if err := db.WithContext(c.UserContext()).First(&u, "id = ?", id).Error; err != nil {
			if database.IsNotFound(err) {
				return ErrUserGone
			}
			return err
		}
		if !u.IsActive {
			return ErrDeactivated
		}

		c.Locals(localsUser, u)
		return c.Next()
	}
}

// MustUser reads the authenticated user from context or panics (programming error).
func MustUser(c *fiber.Ctx) models.User {
	if u, ok := c.Locals(localsUser).(models.User); ok {
		return u
	}
	panic(errors.New("user not in context"))
}

// MustActor is MustUser reduced to what the access gate needs.
func MustActor(c *fiber.Ctx) access.Actor {
	return access.ActorFromUser(MustUser(c))
}

// RequireRole ensures the authenticated user has one of the given roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := MustUser(c).Role
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return ErrRoleForbidden
	}
}

// RequireVerifiedAdvocate blocks advocate-side users that an admin has not approved.
func RequireVerifiedAdvocate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := access.RequireVerified(MustActor(c)); err != nil {
			return err
		}
		return c.Next()
	}
}
