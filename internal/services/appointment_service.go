package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"medibook-server/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// PartySummary is the counterpart identity attached to listed appointments.
type PartySummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AppointmentDetail is an appointment enriched for display.
type AppointmentDetail struct {
	models.Appointment
	Doctor  *PartySummary `json:"doctor,omitempty"`
	Patient *PartySummary `json:"patient,omitempty"`
}

// CreateAppointmentInput carries a booking request into the service.
type CreateAppointmentInput struct {
	PatientID      string
	DoctorID       string
	Date           string // YYYY-MM-DD
	StartTime      string // HH:MM
	EndTime        string // HH:MM
	Type           models.AppointmentType
	Mode           models.AppointmentMode
	Symptoms       []string
	ReasonForVisit string
	PatientNotes   string
}

// RescheduleInput carries the replacement slot for a reschedule.
type RescheduleInput struct {
	Date      string
	StartTime string
	EndTime   string
}

// AppointmentService owns creation, status transition, cancellation and
// rescheduling of appointments. All business-rule checks happen here, ahead
// of the write; the storage-level unique index backs up the overlap check
// under concurrency.
type AppointmentService struct {
	repo     AppointmentRepository
	users    UserDirectory
	notifier Notifier
	now      func() time.Time
}

// NewAppointmentService creates an AppointmentService.
func NewAppointmentService(repo AppointmentRepository, users UserDirectory, notifier Notifier) *AppointmentService {
	return &AppointmentService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create books a new appointment for the patient. The booking itself never
// fails because of notification problems.
func (s *AppointmentService) Create(ctx context.Context, in CreateAppointmentInput) (*models.Appointment, error) {
	if in.PatientID == "" || in.DoctorID == "" || in.Date == "" || in.StartTime == "" ||
		in.EndTime == "" || in.Type == "" || in.Mode == "" || in.ReasonForVisit == "" {
		return nil, &ValidationError{Reason: "all required fields must be provided"}
	}

	date, startAt, err := s.parseSlot(in.Date, in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}

	doctor, err := s.users.FindDoctor(ctx, in.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("resolve doctor: %w", err)
	}
	if doctor == nil {
		return nil, &NotFoundError{Reason: "doctor not found"}
	}

	if err := s.checkSlotFree(ctx, in.DoctorID, date, startAt, in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		PatientID:       in.PatientID,
		DoctorID:        in.DoctorID,
		AppointmentDate: date,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		SlotActive:      slotHold(),
		Status:          models.StatusScheduled,
		Type:            in.Type,
		Mode:            in.Mode,
		Symptoms:        datatypes.NewJSONSlice(in.Symptoms),
		ReasonForVisit:  in.ReasonForVisit,
		PatientNotes:    in.PatientNotes,
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race with a concurrent booking for the same slot.
			return nil, &ConflictError{Reason: "this time slot is already booked"}
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.notify(ctx, EventCreated, appt)
	return appt, nil
}

// ListForPatient returns the patient's appointments, newest date first, with
// the doctor's identity attached.
func (s *AppointmentService) ListForPatient(ctx context.Context, patientID string) ([]AppointmentDetail, error) {
	appts, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}

	details := make([]AppointmentDetail, len(appts))
	for i, a := range appts {
		details[i] = AppointmentDetail{Appointment: a, Doctor: summarize(&a.Doctor)}
	}
	return details, nil
}

// ListForDoctor returns the doctor's appointments with each patient's
// identity attached.
func (s *AppointmentService) ListForDoctor(ctx context.Context, doctorID string) ([]AppointmentDetail, error) {
	appts, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list doctor appointments: %w", err)
	}

	details := make([]AppointmentDetail, len(appts))
	for i, a := range appts {
		details[i] = AppointmentDetail{Appointment: a, Patient: summarize(&a.Patient)}
	}
	return details, nil
}

// UpdateStatus moves a scheduled appointment to a new status. Only the
// appointment's own doctor may do this.
func (s *AppointmentService) UpdateStatus(ctx context.Context, appointmentID, doctorID string, status models.AppointmentStatus, doctorNotes string) (*models.Appointment, error) {
	if status == "" {
		return nil, &ValidationError{Reason: "status is required"}
	}
	if !validStatus(status) {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown status %q", status)}
	}

	appt, err := s.repo.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appt == nil {
		return nil, &NotFoundError{Reason: "appointment not found"}
	}
	if appt.DoctorID != doctorID {
		return nil, &AuthorizationError{Reason: "not authorized to update this appointment"}
	}
	if appt.Status != models.StatusScheduled && status != appt.Status {
		return nil, &ConflictError{Reason: fmt.Sprintf("cannot update appointment that is already %s", appt.Status)}
	}

	appt.Status = status
	if !status.HoldsSlot() {
		appt.SlotActive = nil
	}
	if doctorNotes != "" {
		appt.DoctorNotes = doctorNotes
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	s.notify(ctx, EventUpdated, appt)
	return appt, nil
}

// Cancel marks an appointment cancelled on behalf of the acting party.
// Cancelled and completed appointments cannot be cancelled again.
func (s *AppointmentService) Cancel(ctx context.Context, appointmentID, actorID string, role models.Role, reason string) (*models.Appointment, error) {
	if reason == "" {
		return nil, &ValidationError{Reason: "cancellation reason is required"}
	}

	appt, err := s.repo.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appt == nil {
		return nil, &NotFoundError{Reason: "appointment not found"}
	}
	if appt.Status.IsTerminal() {
		return nil, &ConflictError{Reason: fmt.Sprintf("cannot cancel appointment that is already %s", appt.Status)}
	}

	appt.Status = models.StatusCancelled
	appt.SlotActive = nil
	appt.CancellationReason = reason
	if role == models.RoleDoctor {
		appt.CancelledBy = models.CancelledByDoctor
	} else {
		appt.CancelledBy = models.CancelledByPatient
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.notify(ctx, EventCancelled, appt)
	return appt, nil
}

// Reschedule books a replacement slot and marks the original appointment
// rescheduled, linking the new record back to it. Either party may
// reschedule their own scheduled appointment.
func (s *AppointmentService) Reschedule(ctx context.Context, appointmentID, actorID string, role models.Role, in RescheduleInput) (*models.Appointment, error) {
	if in.Date == "" || in.StartTime == "" || in.EndTime == "" {
		return nil, &ValidationError{Reason: "new date and time slot are required"}
	}

	old, err := s.repo.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if old == nil {
		return nil, &NotFoundError{Reason: "appointment not found"}
	}

	involved := (role == models.RoleDoctor && actorID == old.DoctorID) ||
		(role != models.RoleDoctor && actorID == old.PatientID)
	if !involved {
		return nil, &AuthorizationError{Reason: "not authorized to reschedule this appointment"}
	}
	if old.Status != models.StatusScheduled {
		return nil, &ConflictError{Reason: fmt.Sprintf("cannot reschedule appointment that is already %s", old.Status)}
	}

	date, startAt, err := s.parseSlot(in.Date, in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	if err := s.checkSlotFree(ctx, old.DoctorID, date, startAt, in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	replacement := &models.Appointment{
		PatientID:         old.PatientID,
		DoctorID:          old.DoctorID,
		AppointmentDate:   date,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		SlotActive:        slotHold(),
		Status:            models.StatusScheduled,
		Type:              old.Type,
		Mode:              old.Mode,
		Symptoms:          old.Symptoms,
		ReasonForVisit:    old.ReasonForVisit,
		PatientNotes:      old.PatientNotes,
		RescheduledFromID: &old.ID,
	}

	if err := s.repo.Create(ctx, replacement); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Reason: "this time slot is already booked"}
		}
		return nil, fmt.Errorf("create replacement appointment: %w", err)
	}

	old.Status = models.StatusRescheduled
	old.SlotActive = nil
	if err := s.repo.Update(ctx, old); err != nil {
		// The replacement exists; surface the failure rather than unwind it.
		return nil, fmt.Errorf("mark appointment rescheduled: %w", err)
	}

	s.notify(ctx, EventUpdated, replacement)
	return replacement, nil
}

// parseSlot validates the date and slot formats and the no-past-booking
// rule. The check is slot-start aware: a booking today is fine as long as
// its start time has not passed yet.
func (s *AppointmentService) parseSlot(dateStr, startStr, endStr string) (time.Time, time.Time, error) {
	date, err := time.ParseInLocation(dateLayout, dateStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{Reason: "appointment date must be in YYYY-MM-DD format"}
	}
	start, err := time.Parse(timeLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{Reason: "start time must be in HH:MM format"}
	}
	end, err := time.Parse(timeLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{Reason: "end time must be in HH:MM format"}
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, &ValidationError{Reason: "end time must be after start time"}
	}

	startAt := time.Date(date.Year(), date.Month(), date.Day(), start.Hour(), start.Minute(), 0, 0, time.Local)
	return date, startAt, nil
}

func (s *AppointmentService) checkSlotFree(ctx context.Context, doctorID string, date, startAt time.Time, start, end string) error {
	if !startAt.After(s.now()) {
		return &ConflictError{Reason: "appointment date cannot be in the past"}
	}

	taken, err := s.repo.SlotTaken(ctx, doctorID, date, start, end)
	if err != nil {
		return fmt.Errorf("check slot availability: %w", err)
	}
	if taken {
		return &ConflictError{Reason: "this time slot is already booked"}
	}
	return nil
}

// notify delivers the change to both parties. Failures are logged and
// swallowed; they never fail or roll back the triggering write.
func (s *AppointmentService) notify(ctx context.Context, event NotificationEvent, appt *models.Appointment) {
	patient, err := s.users.FindByID(ctx, appt.PatientID)
	if err != nil || patient == nil {
		log.Printf("appointment %s: skipping %s notification, patient lookup failed: %v", appt.ID, event, err)
		return
	}
	doctor, err := s.users.FindByID(ctx, appt.DoctorID)
	if err != nil || doctor == nil {
		log.Printf("appointment %s: skipping %s notification, doctor lookup failed: %v", appt.ID, event, err)
		return
	}

	if err := s.notifier.Notify(event, appt, patient, doctor); err != nil {
		log.Printf("appointment %s: %s notification failed: %v", appt.ID, event, err)
	}
}

func summarize(u *models.User) *PartySummary {
	if u == nil || u.ID == "" {
		return nil
	}
	return &PartySummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func slotHold() *bool {
	held := true
	return &held
}

func validStatus(s models.AppointmentStatus) bool {
	switch s {
	case models.StatusScheduled, models.StatusCompleted, models.StatusCancelled,
		models.StatusRescheduled, models.StatusNoShow:
		return true
	}
	return false
}
