package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewUser builds a normalized user ready to insert. The password must already be hashed.
func NewUser(name, email, phone, address, passwordHash string, role Role, profile *AdvocateProfile) User {
	u := User{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(name),
		Email:           NormalizeEmail(email),
		Phone:           strings.TrimSpace(phone),
		Address:         strings.TrimSpace(address),
		PasswordHash:    passwordHash,
		Role:            role,
		IsActive:        true,
		AdvocateProfile: profile,
	}
	u.Normalize()
	return u
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize enforces the role/verification co-constraints:
// clients never need verification and carry no advocate profile,
// advocates and juniors are never "not_required" (they start pending).
func (u *User) Normalize() {
	if u.Role == "" {
		u.Role = RoleClient
	}
	switch {
	case u.Role == RoleClient:
		u.VerificationStatus = VerificationNotRequired
		u.AdvocateProfile = nil
	case u.Role.IsAdvocate():
		if u.VerificationStatus == "" || u.VerificationStatus == VerificationNotRequired {
			u.VerificationStatus = VerificationPending
		}
	default:
		if u.VerificationStatus == "" {
			u.VerificationStatus = VerificationNotRequired
		}
	}
}

// Review records an admin verification decision on an advocate account.
func (u *User) Review(status VerificationStatus, reviewer uuid.UUID, now time.Time) {
	u.VerificationStatus = status
	u.VerificationReviewedAt = &now
	u.VerificationReviewedBy = &reviewer
	u.Normalize()
}

// IsVerified reports whether an advocate-side account passed admin review.
func (u *User) IsVerified() bool {
	return u.VerificationStatus == VerificationApproved
}
