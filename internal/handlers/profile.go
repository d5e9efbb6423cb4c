package handlers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"medibook-server/internal/config"
	"medibook-server/internal/middleware"
	"medibook-server/internal/models"
	"medibook-server/internal/services"
	"medibook-server/internal/utils"
)

// ProfileHandler manages patient health profiles, their document lists and
// doctor practice profiles. File uploads are staged on local disk before the
// document service pushes them to remote storage.
type ProfileHandler struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Documents *services.DocumentService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(db *gorm.DB, cfg *config.Config, docs *services.DocumentService) *ProfileHandler {
	return &ProfileHandler{DB: db, Cfg: cfg, Documents: docs}
}

// HealthProfileRequest is the JSON payload for creating or updating a health
// profile. On multipart requests it travels in the "profile" form field.
type HealthProfileRequest struct {
	DateOfBirth       string                    `json:"dateOfBirth"`
	Gender            string                    `json:"gender"`
	ContactInfo       *models.ContactInfo       `json:"contactInfo"`
	Address           *models.Address           `json:"address"`
	HealthInfo        *models.HealthInfo        `json:"healthInfo"`
	EmergencyContacts *models.EmergencyContacts `json:"emergencyContact"`
	Insurance         *models.Insurance         `json:"insurance"`
}

// CreateProfile creates the authenticated user's health profile. The request
// is multipart: profile data as JSON in the "profile" field, optional
// initial documents as files in the "documents" field.
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var existing models.HealthProfile
	if err := h.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		utils.Conflict(c, "Health profile already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	req, ok := h.bindProfilePayload(c)
	if !ok {
		return
	}
	if req.DateOfBirth == "" || req.Gender == "" {
		utils.BadRequest(c, "dateOfBirth and gender are required")
		return
	}

	profile := models.HealthProfile{UserID: userID}
	if err := applyProfileRequest(&profile, req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.DB.Create(&profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to create health profile: "+err.Error())
		return
	}

	if files := h.stageUploads(c); len(files) > 0 {
		docs, err := h.Documents.Attach(c.Request.Context(), profile.ID, files)
		if err != nil {
			utils.InternalServerError(c, "Failed to attach documents: "+err.Error())
			return
		}
		profile.Documents = docs
	}

	utils.Created(c, "Health profile created successfully", profile)
}

// UpdateProfile applies a partial update to the user's health profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var profile models.HealthProfile
	if err := h.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Health profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	req, ok := h.bindProfilePayload(c)
	if !ok {
		return
	}
	if err := applyProfileRequest(&profile, req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.DB.Save(&profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to update health profile: "+err.Error())
		return
	}

	utils.Success(c, "Health profile updated successfully", profile)
}

// GetProfile returns the user's own health profile with every document,
// hidden ones included.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var profile models.HealthProfile
	if err := h.DB.Preload("Documents").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Health profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Health profile fetched successfully", profile)
}

// GetUserHistory returns another user's health profile with hidden documents
// filtered out. Doctors use this when reviewing a patient.
func (h *ProfileHandler) GetUserHistory(c *gin.Context) {
	targetID := c.Param("userId")

	var profile models.HealthProfile
	if err := h.DB.Where("user_id = ?", targetID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Health profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	docs, err := h.Documents.ListVisible(c.Request.Context(), profile.ID)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}
	profile.Documents = docs

	utils.Success(c, "Health history fetched successfully", profile)
}

// UploadDocuments attaches additional documents to the user's profile.
func (h *ProfileHandler) UploadDocuments(c *gin.Context) {
	profile, ok := h.ownProfile(c)
	if !ok {
		return
	}

	files := h.stageUploads(c)
	if len(files) == 0 {
		utils.BadRequest(c, "At least one document file is required")
		return
	}

	docs, err := h.Documents.Attach(c.Request.Context(), profile.ID, files)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Created(c, "Documents uploaded successfully", docs)
}

// ToggleDocumentVisibility flips whether one of the user's documents appears
// in other users' views of the profile.
func (h *ProfileHandler) ToggleDocumentVisibility(c *gin.Context) {
	profile, ok := h.ownProfile(c)
	if !ok {
		return
	}

	if err := h.Documents.ToggleVisibility(c.Request.Context(), profile.ID, c.Param("docId")); err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Document visibility updated", nil)
}

// DeleteDocument removes a document from the user's profile.
func (h *ProfileHandler) DeleteDocument(c *gin.Context) {
	profile, ok := h.ownProfile(c)
	if !ok {
		return
	}

	if err := h.Documents.Delete(c.Request.Context(), profile.ID, c.Param("docId")); err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Document deleted successfully", nil)
}

// DoctorProfileRequest is the payload for creating or updating a doctor's
// practice profile.
type DoctorProfileRequest struct {
	Specialization     string                   `json:"specialization" binding:"required"`
	Qualifications     []models.Qualification   `json:"qualifications"`
	RegistrationNumber string                   `json:"registrationNumber" binding:"required"`
	ExperienceYears    int                      `json:"experience"`
	Clinic             models.Clinic            `json:"clinic"`
	ConsultationFee    float64                  `json:"consultationFee"`
	Availability       []models.DayAvailability `json:"availability"`
}

// UpsertDoctorProfile creates or replaces the authenticated doctor's
// practice profile.
func (h *ProfileHandler) UpsertDoctorProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req DoctorProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var profile models.DoctorProfile
	err := h.DB.Where("user_id = ?", userID).First(&profile).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	profile.UserID = userID
	profile.Specialization = req.Specialization
	profile.Qualifications = datatypes.NewJSONSlice(req.Qualifications)
	profile.RegistrationNumber = req.RegistrationNumber
	profile.ExperienceYears = req.ExperienceYears
	profile.Clinic = datatypes.NewJSONType(req.Clinic)
	profile.ConsultationFee = req.ConsultationFee
	profile.Availability = datatypes.NewJSONSlice(req.Availability)

	if err := h.DB.Save(&profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to save doctor profile: "+err.Error())
		return
	}

	utils.Success(c, "Doctor profile saved successfully", profile)
}

// GetDoctorProfile returns the authenticated doctor's own practice profile.
func (h *ProfileHandler) GetDoctorProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var profile models.DoctorProfile
	if err := h.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Doctor profile fetched successfully", profile)
}

// ownProfile loads the authenticated user's health profile or writes the
// error response and reports false.
func (h *ProfileHandler) ownProfile(c *gin.Context) (*models.HealthProfile, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}

	var profile models.HealthProfile
	if err := h.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Health profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &profile, true
}

// bindProfilePayload reads the profile JSON from the "profile" form field on
// multipart requests, or from the request body otherwise.
func (h *ProfileHandler) bindProfilePayload(c *gin.Context) (*HealthProfileRequest, bool) {
	var req HealthProfileRequest
	if raw := c.PostForm("profile"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			utils.BadRequest(c, "Invalid profile payload: "+err.Error())
			return nil, false
		}
		return &req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return nil, false
	}
	return &req, true
}

// stageUploads writes each uploaded "documents" file to the local temp dir
// and returns the staged paths. Files that cannot be saved are skipped.
func (h *ProfileHandler) stageUploads(c *gin.Context) []services.FileInput {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}

	var staged []services.FileInput
	for _, fh := range form.File["documents"] {
		localPath := filepath.Join(h.Cfg.UploadTempDir, uuid.NewString()+"-"+filepath.Base(fh.Filename))
		if err := c.SaveUploadedFile(fh, localPath); err != nil {
			continue
		}
		staged = append(staged, services.FileInput{
			Name:      fh.Filename,
			LocalPath: localPath,
		})
	}
	return staged
}

func applyProfileRequest(profile *models.HealthProfile, req *HealthProfileRequest) error {
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return fmt.Errorf("dateOfBirth must be in YYYY-MM-DD format")
		}
		profile.DateOfBirth = dob
	}
	if req.Gender != "" {
		profile.Gender = req.Gender
	}
	if req.ContactInfo != nil {
		profile.ContactInfo = datatypes.NewJSONType(*req.ContactInfo)
	}
	if req.Address != nil {
		profile.Address = datatypes.NewJSONType(*req.Address)
	}
	if req.HealthInfo != nil {
		profile.HealthInfo = datatypes.NewJSONType(*req.HealthInfo)
	}
	if req.EmergencyContacts != nil {
		profile.EmergencyContacts = datatypes.NewJSONType(*req.EmergencyContacts)
	}
	if req.Insurance != nil {
		profile.Insurance = datatypes.NewJSONType(*req.Insurance)
	}
	return nil
}
