package handlers

import (
	"github.com/gin-gonic/gin"

	"medibook-server/internal/middleware"
	"medibook-server/internal/models"
	"medibook-server/internal/services"
	"medibook-server/internal/utils"
)

// AppointmentHandler exposes the appointment lifecycle over HTTP. All
// business rules live in the service; handlers translate requests and map
// typed service errors onto status codes.
type AppointmentHandler struct {
	Service *services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(svc *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{Service: svc}
}

// CreateAppointmentRequest represents the request body for booking.
type CreateAppointmentRequest struct {
	DoctorID       string   `json:"doctorId" binding:"required"`
	Date           string   `json:"appointmentDate" binding:"required"`
	StartTime      string   `json:"startTime" binding:"required"`
	EndTime        string   `json:"endTime" binding:"required"`
	Type           string   `json:"appointmentType" binding:"required,oneof=first-visit follow-up consultation emergency"`
	Mode           string   `json:"mode" binding:"required,oneof=in-person video phone"`
	Symptoms       []string `json:"symptoms"`
	ReasonForVisit string   `json:"reasonForVisit" binding:"required"`
	PatientNotes   string   `json:"patientNotes"`
}

// Create books an appointment for the authenticated patient.
func (h *AppointmentHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Service.Create(c.Request.Context(), services.CreateAppointmentInput{
		PatientID:      userID,
		DoctorID:       req.DoctorID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Type:           models.AppointmentType(req.Type),
		Mode:           models.AppointmentMode(req.Mode),
		Symptoms:       req.Symptoms,
		ReasonForVisit: req.ReasonForVisit,
		PatientNotes:   req.PatientNotes,
	})
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appt)
}

// GetMyAppointments lists the authenticated patient's appointments.
func (h *AppointmentHandler) GetMyAppointments(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appts, err := h.Service.ListForPatient(c.Request.Context(), userID)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", appts)
}

// GetDoctorAppointments lists the authenticated doctor's appointments.
func (h *AppointmentHandler) GetDoctorAppointments(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appts, err := h.Service.ListForDoctor(c.Request.Context(), userID)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", appts)
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status      string `json:"status" binding:"required"`
	DoctorNotes string `json:"doctorNotes"`
}

// UpdateStatus lets the appointment's doctor move it to a new status.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Service.UpdateStatus(c.Request.Context(), c.Param("id"), userID,
		models.AppointmentStatus(req.Status), req.DoctorNotes)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment status updated successfully", appt)
}

// CancelRequest represents the request body for a cancellation.
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Cancel cancels an appointment on behalf of the acting party.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	var req CancelRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), userID, role, req.Reason)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appt)
}

// RescheduleRequest represents the request body for a reschedule.
type RescheduleRequest struct {
	Date      string `json:"appointmentDate" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// Reschedule books a replacement slot for an existing appointment.
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	var req RescheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Service.Reschedule(c.Request.Context(), c.Param("id"), userID, role, services.RescheduleInput{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appt)
}
