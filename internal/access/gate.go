// Package access decides who may see and change which records.
//
// Visibility is expressed as GORM scopes so every listing query is filtered
// in SQL. Mutation checks compare ids of the loaded entity with the caller.
package access

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

var (
	ErrAccessDenied = fiber.NewError(fiber.StatusForbidden, "Access denied")
	ErrNotVerified  = fiber.NewError(fiber.StatusForbidden, "Advocate account not verified")
)

// Actor is the authenticated caller as the gate sees it.
type Actor struct {
	ID                 uuid.UUID
	Role               models.Role
	VerificationStatus models.VerificationStatus
}

// ActorFromUser builds the actor for a loaded user.
func ActorFromUser(u models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, VerificationStatus: u.VerificationStatus}
}

// Scope is a gorm scope applied with db.Scopes.
type Scope = func(*gorm.DB) *gorm.DB

func none(db *gorm.DB) *gorm.DB { return db.Where("1 = 0") }

func all(db *gorm.DB) *gorm.DB { return db }

const (
	assignedCases = "SELECT case_id FROM case_juniors WHERE user_id = ?"
	advocateCases = "SELECT id FROM cases WHERE advocate_id = ?"
	clientCases   = "SELECT id FROM cases WHERE client_id = ?"
)

/* ============================== Visibility ============================== */

// Cases: clients see their own, advocate-side users see cases they lead or
// are assigned to. Admins see none.
func Cases(a Actor) Scope {
	switch {
	case a.Role == models.RoleClient:
		return func(db *gorm.DB) *gorm.DB { return db.Where("cases.client_id = ?", a.ID) }
	case a.Role.IsAdvocate():
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("(cases.advocate_id = ? OR cases.id IN ("+assignedCases+"))", a.ID, a.ID)
		}
	}
	return none
}

// AssignedCases narrows a cases query to the ones a is assigned to as a junior.
func AssignedCases(a Actor) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where("cases.id IN ("+assignedCases+")", a.ID) }
}

// Tasks: advocates see what they assigned, juniors what they were assigned.
func Tasks(a Actor) Scope {
	switch a.Role {
	case models.RoleAdvocate:
		return func(db *gorm.DB) *gorm.DB { return db.Where("tasks.assigned_by_id = ?", a.ID) }
	case models.RoleJuniorAdvocate:
		return func(db *gorm.DB) *gorm.DB { return db.Where("tasks.assigned_to_id = ?", a.ID) }
	}
	return none
}

// Evidence: confidential files are hidden from clients.
func Evidence(a Actor) Scope {
	switch a.Role {
	case models.RoleClient:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("evidence.case_id IN ("+clientCases+") AND evidence.is_confidential = ?", a.ID, false)
		}
	case models.RoleAdvocate:
		return func(db *gorm.DB) *gorm.DB { return db.Where("evidence.case_id IN ("+advocateCases+")", a.ID) }
	case models.RoleJuniorAdvocate:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("(evidence.uploaded_by_id = ? OR evidence.case_id IN ("+assignedCases+"))", a.ID, a.ID)
		}
	case models.RoleAdmin:
		return all
	}
	return none
}

// Payments: payer, receiver, juniors on the case and admins.
func Payments(a Actor) Scope {
	switch a.Role {
	case models.RoleClient:
		return func(db *gorm.DB) *gorm.DB { return db.Where("payments.client_id = ?", a.ID) }
	case models.RoleAdvocate:
		return func(db *gorm.DB) *gorm.DB { return db.Where("payments.received_by_id = ?", a.ID) }
	case models.RoleJuniorAdvocate:
		return func(db *gorm.DB) *gorm.DB { return db.Where("payments.case_id IN ("+assignedCases+")", a.ID) }
	case models.RoleAdmin:
		return all
	}
	return none
}

// Appointments: the two parties and admins. Juniors see none.
func Appointments(a Actor) Scope {
	switch a.Role {
	case models.RoleClient:
		return func(db *gorm.DB) *gorm.DB { return db.Where("appointments.client_id = ?", a.ID) }
	case models.RoleAdvocate:
		return func(db *gorm.DB) *gorm.DB { return db.Where("appointments.advocate_id = ?", a.ID) }
	case models.RoleAdmin:
		return all
	}
	return none
}

/* =============================== Mutations ============================== */

// RequireVerified blocks advocate-side accounts that have not passed review.
func RequireVerified(a Actor) error {
	if a.Role.IsAdvocate() && a.VerificationStatus != models.VerificationApproved {
		return ErrNotVerified
	}
	return nil
}

// CanTransitionCase: only the primary advocate.
func CanTransitionCase(a Actor, c models.Case) error {
	return same(a.ID, c.AdvocateID)
}

// CanManageCase guards task, payment and order creation on a case.
func CanManageCase(a Actor, c models.Case) error {
	if a.Role != models.RoleAdvocate {
		return ErrAccessDenied
	}
	return same(a.ID, c.AdvocateID)
}

// CanTransitionTask: only the assignee.
func CanTransitionTask(a Actor, t models.Task) error {
	return same(a.ID, t.AssignedToID)
}

// CanTransitionPayment: only the receiver. Also guards gateway verification.
func CanTransitionPayment(a Actor, p models.Payment) error {
	return same(a.ID, p.ReceivedByID)
}

// CanTransitionAppointment: only the advocate the appointment is with.
func CanTransitionAppointment(a Actor, ap models.Appointment) error {
	return same(a.ID, ap.AdvocateID)
}

// CanWorkOnCase allows the primary advocate and assigned juniors.
// c.AssignedJuniors must be loaded.
func CanWorkOnCase(a Actor, c models.Case) error {
	if a.ID == c.AdvocateID {
		return nil
	}
	for _, j := range c.AssignedJuniors {
		if j.ID == a.ID {
			return nil
		}
	}
	return ErrAccessDenied
}

// CanUploadEvidence is CanWorkOnCase for uploads.
func CanUploadEvidence(a Actor, c models.Case) error {
	return CanWorkOnCase(a, c)
}

func same(caller, owner uuid.UUID) error {
	if caller != owner {
		return ErrAccessDenied
	}
	return nil
}
