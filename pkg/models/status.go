package models

import "time"

/* =============================== Enums ================================== */

// Role defines the type of user in the system.
type Role string

const (
	RoleClient         Role = "client"
	RoleAdvocate       Role = "advocate"
	RoleJuniorAdvocate Role = "junior_advocate"
	RoleAdmin          Role = "admin"
)

// IsAdvocate reports whether r is an advocate-side role (advocate or junior).
func (r Role) IsAdvocate() bool {
	return r == RoleAdvocate || r == RoleJuniorAdvocate
}

// VerificationStatus is the admin review state of an advocate account.
type VerificationStatus string

const (
	VerificationNotRequired VerificationStatus = "not_required"
	VerificationPending     VerificationStatus = "pending"
	VerificationApproved    VerificationStatus = "approved"
	VerificationRejected    VerificationStatus = "rejected"
)

// CaseType classifies a case by legal domain.
type CaseType string

const (
	CaseCivil     CaseType = "civil"
	CaseCriminal  CaseType = "criminal"
	CaseCorporate CaseType = "corporate"
	CaseFamily    CaseType = "family"
	CaseOther     CaseType = "other"
)

// CaseStatus defines lifecycle states for a case.
type CaseStatus string

const (
	CaseOpen       CaseStatus = "open"
	CaseInProgress CaseStatus = "in_progress"
	CaseClosed     CaseStatus = "closed"
)

// TaskStatus defines lifecycle states for a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// FileType is the logical category of an evidence file.
type FileType string

const (
	FilePDF   FileType = "pdf"
	FileImage FileType = "image"
)

// PayStatus defines lifecycle states for a payment.
type PayStatus string

const (
	PayPending   PayStatus = "pending"
	PayCompleted PayStatus = "completed"
	PayFailed    PayStatus = "failed"
)

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	MethodUPI          PaymentMethod = "upi"
	MethodCard         PaymentMethod = "card"
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodRazorpay     PaymentMethod = "razorpay"
	MethodOther        PaymentMethod = "other"
)

// AppointmentStatus defines lifecycle states for an appointment.
type AppointmentStatus string

const (
	AppointmentRequested AppointmentStatus = "requested"
	AppointmentApproved  AppointmentStatus = "approved"
	AppointmentRejected  AppointmentStatus = "rejected"
	AppointmentCompleted AppointmentStatus = "completed"
)

// Case history actions.
const (
	HistoryCreated       = "created"
	HistoryStatusChanged = "status_changed"
	HistoryNote          = "note"
)

/* ============================ Parsing =================================== */

// ParseCaseStatus accepts only the enumerated case states.
func ParseCaseStatus(s string) (CaseStatus, bool) {
	switch st := CaseStatus(s); st {
	case CaseOpen, CaseInProgress, CaseClosed:
		return st, true
	}
	return "", false
}

// ParseTaskStatus accepts only the enumerated task states.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch st := TaskStatus(s); st {
	case TaskPending, TaskInProgress, TaskCompleted:
		return st, true
	}
	return "", false
}

// ParsePayStatus accepts only the enumerated payment states.
func ParsePayStatus(s string) (PayStatus, bool) {
	switch st := PayStatus(s); st {
	case PayPending, PayCompleted, PayFailed:
		return st, true
	}
	return "", false
}

// ParseAppointmentUpdate accepts the states an advocate may move an appointment to.
// "requested" is the creation state only.
func ParseAppointmentUpdate(s string) (AppointmentStatus, bool) {
	switch st := AppointmentStatus(s); st {
	case AppointmentApproved, AppointmentRejected, AppointmentCompleted:
		return st, true
	}
	return "", false
}

/* ============================ Transitions =============================== */

// Any enumerated state may follow any other; only the timestamps are tied to the target.

// Transition moves the case to status and stamps ClosedAt when closing.
func (c *Case) Transition(status CaseStatus, now time.Time) {
	c.Status = status
	if status == CaseClosed {
		c.ClosedAt = &now
	}
}

// Transition moves the task to status and stamps CompletedAt on completion.
func (t *Task) Transition(status TaskStatus, now time.Time) {
	t.Status = status
	if status == TaskCompleted {
		t.CompletedAt = &now
	}
}

// Transition moves the payment to status and stamps PaidAt on completion.
func (p *Payment) Transition(status PayStatus, now time.Time) {
	p.Status = status
	if status == PayCompleted {
		p.PaidAt = &now
	}
}

// Transition moves the appointment to status, replacing notes when given.
func (a *Appointment) Transition(status AppointmentStatus, notes string) {
	a.Status = status
	if notes != "" {
		a.Notes = notes
	}
}
