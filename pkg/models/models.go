package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aldoetobex/legal-practice-backend/pkg/sanitize"
)

/* =============================== Entities =============================== */

// AdvocateProfile holds bar enrollment details for advocates and juniors.
type AdvocateProfile struct {
	EnrollmentNumber string   `json:"enrollmentNumber,omitempty"`
	BarCouncil       string   `json:"barCouncil,omitempty"`
	ExperienceYears  int      `json:"experienceYears,omitempty"`
	Documents        []string `json:"documents,omitempty"`
}

// User is any account: client, advocate, junior advocate or admin.
// Call Normalize before persisting a new or reviewed user.
type User struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string             `gorm:"not null" json:"name"`
	Email              string             `gorm:"uniqueIndex;not null" json:"email"`
	Phone              string             `json:"phone"`
	Address            string             `json:"address"`
	PasswordHash       string             `gorm:"not null" json:"-"`
	Role               Role               `gorm:"type:varchar(20);not null;index" json:"role"`
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;index" json:"verificationStatus"`
	IsActive           bool               `gorm:"not null;default:true" json:"isActive"`
	AdvocateProfile    *AdvocateProfile   `gorm:"serializer:json" json:"advocateProfile,omitempty"`

	VerificationReviewedAt *time.Time `json:"verificationReviewedAt,omitempty"`
	VerificationReviewedBy *uuid.UUID `gorm:"type:uuid" json:"verificationReviewedBy,omitempty"`
	LastLoginAt            *time.Time `json:"lastLoginAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserRef is the trimmed user shape embedded in listings (name + email).
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role,omitempty"`
}

// Ref returns the listing shape of u.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Case is a legal matter handled by one primary advocate.
type Case struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CaseNumber  string     `gorm:"uniqueIndex;not null" json:"caseNumber"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	CaseType    CaseType   `gorm:"type:varchar(20);not null" json:"caseType"`
	Status      CaseStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`

	ClientID    uuid.UUID `gorm:"type:uuid;not null;index" json:"clientId"`
	AdvocateID  uuid.UUID `gorm:"type:uuid;not null;index" json:"advocateId"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null" json:"createdById"`

	// DescriptionPreview is filled for listings only.
	DescriptionPreview string `gorm:"-" json:"descriptionPreview,omitempty"`

	OpenedAt  time.Time  `json:"openedAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	// Relations
	Client          *User         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Advocate        *User         `gorm:"foreignKey:AdvocateID" json:"advocate,omitempty"`
	AssignedJuniors []User        `gorm:"many2many:case_juniors;" json:"assignedJuniors"`
	History         []CaseHistory `gorm:"foreignKey:CaseID" json:"caseHistory,omitempty"`
}

// PreviewLen bounds DescriptionPreview.
const PreviewLen = 160

// FillPreviews sets DescriptionPreview on every case of a listing.
func FillPreviews(cs []Case) {
	for i := range cs {
		cs[i].DescriptionPreview = sanitize.Summary(cs[i].Description, PreviewLen)
	}
}

// CaseHistory is an append-only log entry for a case: notes and status changes.
type CaseHistory struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CaseID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"caseId"`
	AddedByID uuid.UUID  `gorm:"type:uuid;not null;index" json:"addedBy"`
	Action    string     `gorm:"type:varchar(50);not null" json:"action"`
	OldStatus CaseStatus `gorm:"type:varchar(20)" json:"oldStatus,omitempty"`
	NewStatus CaseStatus `gorm:"type:varchar(20)" json:"newStatus,omitempty"`
	Note      string     `gorm:"type:text;not null" json:"note"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Task is a unit of work an advocate assigns to a junior on a case.
type Task struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string       `gorm:"not null" json:"title"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	CaseID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"caseId"`
	AssignedToID uuid.UUID    `gorm:"type:uuid;not null;index" json:"assignedTo"`
	AssignedByID uuid.UUID    `gorm:"type:uuid;not null;index" json:"assignedBy"`
	Status       TaskStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority     TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	DueDate      time.Time    `gorm:"not null" json:"dueDate"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	Case       *Case `gorm:"foreignKey:CaseID" json:"case,omitempty"`
	AssignedTo *User `gorm:"foreignKey:AssignedToID" json:"assignee,omitempty"`
}

// Evidence is file metadata attached to a case (and optionally a task).
type Evidence struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CaseID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"caseId"`
	TaskID         *uuid.UUID `gorm:"type:uuid;index" json:"taskId,omitempty"`
	UploadedByID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"uploadedBy"`
	Title          string     `gorm:"not null" json:"title"`
	FileName       string     `gorm:"not null" json:"fileName"`
	FilePath       string     `gorm:"not null" json:"filePath"`
	FileSize       int64      `gorm:"not null" json:"fileSize"`
	MimeType       string     `gorm:"not null" json:"mimeType"`
	FileType       FileType   `gorm:"type:varchar(10);not null" json:"fileType"`
	Description    string     `json:"description,omitempty"`
	IsConfidential bool       `gorm:"not null;default:false;index" json:"isConfidential"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	Case       *Case `gorm:"foreignKey:CaseID" json:"case,omitempty"`
	UploadedBy *User `gorm:"foreignKey:UploadedByID" json:"uploader,omitempty"`
}

// TableName keeps the uncountable noun singular.
func (Evidence) TableName() string { return "evidence" }

// Payment is money a client pays the advocate of a case.
// Amount is stored in minor currency units (paise for INR).
type Payment struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Amount         int64         `gorm:"not null" json:"amount"`
	Currency       string        `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	PaymentFor     string        `gorm:"not null" json:"paymentFor"`
	CaseID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"caseId"`
	ClientID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"clientId"`
	ReceivedByID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"receivedBy"`
	PaymentMethod  PaymentMethod `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	Status         PayStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	GatewayOrderID *string       `gorm:"uniqueIndex" json:"gatewayOrderId,omitempty"`
	TransactionID  string        `json:"transactionId,omitempty"`
	PaidAt         *time.Time    `json:"paidAt,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`

	Case       *Case `gorm:"foreignKey:CaseID" json:"case,omitempty"`
	Client     *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ReceivedBy *User `gorm:"foreignKey:ReceivedByID" json:"receiver,omitempty"`
}

// Appointment is a meeting a client requests with an advocate.
type Appointment struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"clientId"`
	AdvocateID uuid.UUID         `gorm:"type:uuid;not null;index" json:"advocateId"`
	Date       time.Time         `gorm:"not null;index" json:"date"`
	TimeSlot   string            `gorm:"not null" json:"timeSlot"`
	Purpose    string            `gorm:"size:300" json:"purpose,omitempty"`
	Status     AppointmentStatus `gorm:"type:varchar(20);not null;default:'requested'" json:"status"`
	Notes      string            `json:"notes,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`

	Client   *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Advocate *User `gorm:"foreignKey:AdvocateID" json:"advocate,omitempty"`
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&User{}, &Case{}, &CaseHistory{}, &Task{}, &Evidence{}, &Payment{}, &Appointment{},
	}
}
