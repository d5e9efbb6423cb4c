package services

import (
	"context"
	"time"

	"medibook-server/internal/models"
)

// AppointmentRepository contains the appointment persistence operations the
// lifecycle manager needs. Lookups return (nil, nil) when no row matches.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	Update(ctx context.Context, appt *models.Appointment) error

	// ListByPatient returns appointments newest date first with the Doctor
	// relation loaded; ListByDoctor loads the Patient relation.
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)

	// SlotTaken reports whether an appointment still holding its slot
	// already occupies the doctor's date and time window.
	SlotTaken(ctx context.Context, doctorID string, date time.Time, start, end string) (bool, error)
}

// UserDirectory resolves account identities for the core services.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindDoctor(ctx context.Context, id string) (*models.User, error)
}

// NotificationEvent names the appointment change being announced
type NotificationEvent string

const (
	EventCreated   NotificationEvent = "created"
	EventUpdated   NotificationEvent = "updated"
	EventCancelled NotificationEvent = "cancelled"
)

// Notifier delivers appointment emails to both parties. Calls are
// best-effort: the caller logs a returned error and moves on.
type Notifier interface {
	Notify(event NotificationEvent, appt *models.Appointment, patient, doctor *models.User) error
}

// Uploader pushes a local file to remote blob storage and returns its URL.
// Implementations remove the local file on success and on failure.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// DocumentRepository contains the profile-document persistence operations.
type DocumentRepository interface {
	Append(ctx context.Context, profileID string, docs []models.ProfileDocument) error
	Find(ctx context.Context, profileID, docID string) (*models.ProfileDocument, error)
	Update(ctx context.Context, doc *models.ProfileDocument) error
	Delete(ctx context.Context, profileID, docID string) (bool, error)
	List(ctx context.Context, profileID string) ([]models.ProfileDocument, error)
}
