// Package dbtest opens throwaway SQLite databases and seeds fixtures for handler tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/pkg/database"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

// Password is the plain-text password of every seeded user.
const Password = "password123"

// Open returns a migrated in-memory database private to the test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.Config())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// User inserts a user with the given role and verification status.
// An empty status lets Normalize pick the default for the role.
func User(t *testing.T, db *gorm.DB, role models.Role, status models.VerificationStatus) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	id := uuid.New()
	u := models.NewUser(string(role)+" "+id.String()[:6], string(role)+"_"+id.String()[:8]+"@x.com",
		"9876543210", "Mumbai", string(hash), role, nil)
	u.ID = id
	u.VerificationStatus = status
	u.Normalize()
	if err := db.Create(&u).Error; err != nil {
		t.Fatal(err)
	}
	return u
}

// Approved inserts an approved advocate-side user.
func Approved(t *testing.T, db *gorm.DB, role models.Role) models.User {
	return User(t, db, role, models.VerificationApproved)
}

// Case inserts an open case with the given parties.
func Case(t *testing.T, db *gorm.DB, client, advocate models.User, juniors ...models.User) models.Case {
	t.Helper()
	id := uuid.New()
	cs := models.Case{
		ID:              id,
		CaseNumber:      "CN-" + id.String()[:8],
		Title:           "Case " + id.String()[:6],
		Description:     "Property dispute",
		CaseType:        models.CaseCivil,
		Status:          models.CaseOpen,
		ClientID:        client.ID,
		AdvocateID:      advocate.ID,
		CreatedByID:     advocate.ID,
		OpenedAt:        time.Now(),
		AssignedJuniors: juniors,
	}
	if err := db.Omit("AssignedJuniors.*").Create(&cs).Error; err != nil {
		t.Fatal(err)
	}
	return cs
}

// Task inserts a pending task on cs assigned by the case advocate to junior.
func Task(t *testing.T, db *gorm.DB, cs models.Case, junior models.User) models.Task {
	t.Helper()
	task := models.Task{
		ID:           uuid.New(),
		Title:        "Draft petition",
		Description:  "First draft",
		CaseID:       cs.ID,
		AssignedToID: junior.ID,
		AssignedByID: cs.AdvocateID,
		Status:       models.TaskPending,
		Priority:     models.PriorityMedium,
		DueDate:      time.Now().Add(72 * time.Hour),
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatal(err)
	}
	return task
}

// Evidence inserts an evidence record on cs uploaded by uploader.
func Evidence(t *testing.T, db *gorm.DB, cs models.Case, uploader models.User, confidential bool) models.Evidence {
	t.Helper()
	ev := models.Evidence{
		ID:             uuid.New(),
		CaseID:         cs.ID,
		UploadedByID:   uploader.ID,
		Title:          "deed.pdf",
		FileName:       "deed.pdf",
		FilePath:       "uploads/deed.pdf",
		FileSize:       1024,
		MimeType:       "application/pdf",
		FileType:       models.FilePDF,
		IsConfidential: confidential,
	}
	if err := db.Create(&ev).Error; err != nil {
		t.Fatal(err)
	}
	return ev
}

// Payment inserts a pending payment on cs from its client to its advocate.
func Payment(t *testing.T, db *gorm.DB, cs models.Case, amount int64) models.Payment {
	t.Helper()
	p := models.Payment{
		ID:            uuid.New(),
		Amount:        amount,
		Currency:      "INR",
		PaymentFor:    "Retainer",
		CaseID:        cs.ID,
		ClientID:      cs.ClientID,
		ReceivedByID:  cs.AdvocateID,
		PaymentMethod: models.MethodUPI,
		Status:        models.PayPending,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	return p
}

// Appointment inserts a requested appointment between client and advocate.
func Appointment(t *testing.T, db *gorm.DB, client, advocate models.User) models.Appointment {
	t.Helper()
	a := models.Appointment{
		ID:         uuid.New(),
		ClientID:   client.ID,
		AdvocateID: advocate.ID,
		Date:       time.Now().Add(24 * time.Hour),
		TimeSlot:   "10:00 - 10:30",
		Purpose:    "Consultation",
		Status:     models.AppointmentRequested,
	}
	if err := db.Create(&a).Error; err != nil {
		t.Fatal(err)
	}
	return a
}
