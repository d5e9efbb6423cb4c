package handlers

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medibook-server/internal/config"
	"medibook-server/internal/mailer"
	"medibook-server/internal/middleware"
	"medibook-server/internal/models"
	"medibook-server/internal/utils"
)

// AuthHandler handles registration, OTP verification and session management.
type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer *mailer.Mailer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, m *mailer.Mailer) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Mailer: m}
}

// RegisterRequest represents the request body for starting registration.
type RegisterRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=user doctor"`
}

// Register begins registration by emailing a one-time code. Repeat calls for
// the same address replace the pending code and push the expiry forward.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	// Check if user already exists
	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	code, err := generateOTP()
	if err != nil {
		utils.InternalServerError(c, "Failed to generate OTP: "+err.Error())
		return
	}

	otp := models.OTP{
		Email:     req.Email,
		Code:      code,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.OTPExpiryMins) * time.Minute),
	}
	if err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at"}),
	}).Create(&otp).Error; err != nil {
		utils.InternalServerError(c, "Failed to store OTP: "+err.Error())
		return
	}

	if err := h.Mailer.SendOTP(req.Email, code); err != nil {
		utils.InternalServerError(c, "Failed to send OTP email: "+err.Error())
		return
	}

	utils.Success(c, "OTP sent to email. Please verify to complete registration.", gin.H{"email": req.Email})
}

// VerifyOTPRequest represents the request body for completing registration.
type VerifyOTPRequest struct {
	Email    string `json:"email" binding:"required,email"`
	OTP      string `json:"otp" binding:"required,len=6"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,min=3"`
	Role     string `json:"role" binding:"omitempty,oneof=user doctor"`
}

// VerifyOTP completes registration: checks the pending code, creates the
// account and opens a session so the user lands logged in.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var otp models.OTP
	if err := h.DB.Where("email = ?", req.Email).First(&otp).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.BadRequest(c, "No pending registration for this email")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if otp.Code != req.OTP {
		utils.BadRequest(c, "Invalid OTP")
		return
	}
	if otp.ExpiresAt.Before(time.Now()) {
		utils.BadRequest(c, "OTP has expired. Please register again.")
		return
	}

	role := models.RoleUser
	if req.Role == string(models.RoleDoctor) {
		role = models.RoleDoctor
	}

	user := models.User{
		Email:  req.Email,
		Name:   req.Name,
		Role:   role,
		Status: models.StatusActive,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}
	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	// The code is single-use; a failure here only leaves a stale row behind.
	if err := h.DB.Delete(&otp).Error; err != nil {
		log.Printf("failed to delete OTP for %s: %v", req.Email, err)
	}

	if err := h.openSession(c, &user); err != nil {
		utils.InternalServerError(c, "Failed to create session: "+err.Error())
		return
	}

	utils.Created(c, "Registration successful", user.Sanitize())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates an active user and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}
	if user.Status != models.StatusActive {
		utils.Forbidden(c, "Account is not active")
		return
	}

	if err := h.openSession(c, &user); err != nil {
		utils.InternalServerError(c, "Failed to create session: "+err.Error())
		return
	}

	utils.Success(c, "Login successful", user.Sanitize())
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenString, err := c.Cookie(middleware.SessionCookieName)
	if err == nil && tokenString != "" {
		var session models.Session
		if err := h.DB.Where("token = ? AND is_revoked = ?", tokenString, false).First(&session).Error; err == nil {
			session.IsRevoked = true
			session.ExpiresAt = time.Now()
			if err := h.DB.Save(&session).Error; err != nil {
				utils.InternalServerError(c, "Failed to revoke session: "+err.Error())
				return
			}
		}
	}

	h.clearSessionCookie(c)
	utils.Success(c, "Logout successful", nil)
}

// GetMe returns the authenticated user's own account.
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// DoctorListing is a doctor account joined with its practice profile.
type DoctorListing struct {
	models.UserSanitized
	Profile *models.DoctorProfile `json:"profile,omitempty"`
}

// GetDoctors lists all active doctor accounts with their practice profiles.
func (h *AuthHandler) GetDoctors(c *gin.Context) {
	var doctors []models.User
	if err := h.DB.Where("role = ? AND status = ?", models.RoleDoctor, models.StatusActive).Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	listings := make([]DoctorListing, 0, len(doctors))
	for _, d := range doctors {
		listing := DoctorListing{UserSanitized: d.Sanitize()}
		var profile models.DoctorProfile
		if err := h.DB.Where("user_id = ?", d.ID).First(&profile).Error; err == nil {
			listing.Profile = &profile
		}
		listings = append(listings, listing)
	}

	utils.Success(c, "Doctors fetched successfully", listings)
}

// openSession issues a session token, stores it and sets the cookie.
func (h *AuthHandler) openSession(c *gin.Context, user *models.User) error {
	tokenString, expiresAt, err := utils.GenerateSessionToken(user, h.Cfg)
	if err != nil {
		return err
	}

	session := models.Session{
		UserID:    user.ID,
		Token:     tokenString,
		ExpiresAt: expiresAt,
	}
	if err := h.DB.Create(&session).Error; err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	c.SetCookie(
		middleware.SessionCookieName,
		tokenString,
		h.Cfg.SessionTTLHours*60*60,
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)
	return nil
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetCookie(
		middleware.SessionCookieName,
		"",
		-1,
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)
}

// generateOTP returns a 6-digit numeric code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
