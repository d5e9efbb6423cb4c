package models

import (
	"time"

	"gorm.io/datatypes"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "scheduled"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusRescheduled AppointmentStatus = "rescheduled"
	StatusNoShow      AppointmentStatus = "no-show"
)

// IsTerminal reports whether the status blocks cancellation.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// HoldsSlot reports whether an appointment in this status still occupies
// its doctor's time slot for conflict purposes. A rescheduled appointment
// does not: its replacement row holds the new slot and the old one is free
// to rebook.
func (s AppointmentStatus) HoldsSlot() bool {
	return s != StatusCancelled && s != StatusCompleted && s != StatusRescheduled
}

// AppointmentType represents the kind of visit
type AppointmentType string

const (
	TypeFirstVisit   AppointmentType = "first-visit"
	TypeFollowUp     AppointmentType = "follow-up"
	TypeConsultation AppointmentType = "consultation"
	TypeEmergency    AppointmentType = "emergency"
)

// AppointmentMode represents how the visit is conducted
type AppointmentMode string

const (
	ModeInPerson AppointmentMode = "in-person"
	ModeVideo    AppointmentMode = "video"
	ModePhone    AppointmentMode = "phone"
)

// CancelActor identifies which party cancelled an appointment
type CancelActor string

const (
	CancelledByPatient CancelActor = "patient"
	CancelledByDoctor  CancelActor = "doctor"
)

// Reminder records a single reminder dispatch attempt for an appointment
type Reminder struct {
	Channel string     `json:"channel"` // email, sms, whatsapp
	SentAt  *time.Time `json:"sentAt,omitempty"`
	Status  string     `json:"status"` // sent, failed, pending
}

// Appointment represents a booked visit between a patient and a doctor.
//
// The idx_doctor_slot unique index includes SlotActive, which is non-NULL
// only while the appointment occupies its slot (MySQL allows any number of
// NULLs in a unique index). Cancelled and completed rows therefore free the
// slot without being deleted, and two live bookings for the same doctor,
// date and times cannot coexist no matter how the requests interleave.
type Appointment struct {
	BaseModel
	PatientID          string                        `gorm:"size:36;index:idx_patient_date" json:"patientId"`
	DoctorID           string                        `gorm:"size:36;uniqueIndex:idx_doctor_slot" json:"doctorId"`
	AppointmentDate    time.Time                     `gorm:"type:date;index:idx_patient_date;uniqueIndex:idx_doctor_slot" json:"appointmentDate"`
	StartTime          string                        `gorm:"size:5;uniqueIndex:idx_doctor_slot" json:"startTime"`
	EndTime            string                        `gorm:"size:5;uniqueIndex:idx_doctor_slot" json:"endTime"`
	SlotActive         *bool                         `gorm:"uniqueIndex:idx_doctor_slot" json:"-"`
	Status             AppointmentStatus             `gorm:"size:20;index;default:'scheduled'" json:"status"`
	Type               AppointmentType               `gorm:"size:20;not null" json:"type"`
	Mode               AppointmentMode               `gorm:"size:20;not null" json:"mode"`
	Symptoms           datatypes.JSONSlice[string]   `json:"symptoms"`
	ReasonForVisit     string                        `gorm:"size:500;not null" json:"reasonForVisit"`
	PatientNotes       string                        `gorm:"type:text" json:"patientNotes,omitempty"`
	DoctorNotes        string                        `gorm:"type:text" json:"doctorNotes,omitempty"`
	CancelledBy        CancelActor                   `gorm:"size:10" json:"cancelledBy,omitempty"`
	CancellationReason string                        `gorm:"size:500" json:"cancellationReason,omitempty"`
	RescheduledFromID  *string                       `gorm:"size:36" json:"rescheduledFrom,omitempty"`
	Reminders          datatypes.JSONSlice[Reminder] `json:"reminders,omitempty"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
