package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"medibook-server/internal/models"
)

const dateLayout = "2006-01-02"

// AppointmentRepository is the GORM-backed appointment store.
type AppointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates an AppointmentRepository.
func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Create(appt).Error
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.db.WithContext(ctx).First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, appt *models.Appointment) error {
	// Save writes every column, so clearing SlotActive to NULL releases the
	// slot in the unique index.
	return r.db.WithContext(ctx).Save(appt).Error
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("appointment_date desc, start_time desc").
		Find(&appts).Error
	return appts, err
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Find(&appts).Error
	return appts, err
}

func (r *AppointmentRepository) SlotTaken(ctx context.Context, doctorID string, date time.Time, start, end string) (bool, error) {
	// Same predicate as the idx_doctor_slot unique index: only rows whose
	// slot_active flag is still set block the slot.
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND start_time = ? AND end_time = ?",
			doctorID, date.Format(dateLayout), start, end).
		Where("slot_active = ?", true).
		Count(&count).Error
	return count > 0, err
}
