package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContactInfo holds a patient's phone contact details
type ContactInfo struct {
	Mobile         string `json:"mobile"`
	AlternatePhone string `json:"alternatePhone,omitempty"`
	Whatsapp       string `json:"whatsapp,omitempty"`
}

// Address is a postal address
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Surgery records a past surgical procedure
type Surgery struct {
	Name     string     `json:"name"`
	Date     *time.Time `json:"date,omitempty"`
	Hospital string     `json:"hospital,omitempty"`
}

// HealthInfo holds vitals and medical background
type HealthInfo struct {
	BloodGroup         string    `json:"bloodGroup"`
	HeightCM           float64   `json:"height"` // in cm
	WeightKG           float64   `json:"weight"` // in kg
	BMI                float64   `json:"bmi,omitempty"`
	MedicalConditions  []string  `json:"medicalConditions,omitempty"`
	Allergies          []string  `json:"allergies,omitempty"`
	CurrentMedications []string  `json:"currentMedications,omitempty"`
	PastSurgeries      []Surgery `json:"pastSurgeries,omitempty"`
}

// EmergencyContact is a person to reach when the patient cannot respond
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone"`
	Address      string `json:"address,omitempty"`
}

// EmergencyContacts groups the primary and optional secondary contact
type EmergencyContacts struct {
	Primary   EmergencyContact  `json:"primaryContact"`
	Secondary *EmergencyContact `json:"secondaryContact,omitempty"`
}

// Insurance holds the patient's insurance policy details
type Insurance struct {
	Provider     string     `json:"provider,omitempty"`
	PolicyNumber string     `json:"policyNumber,omitempty"`
	ValidUntil   *time.Time `json:"validUntil,omitempty"`
}

// HealthProfile is a patient's health record container. It exclusively owns
// its document list; a document's only referent is its owning profile.
type HealthProfile struct {
	BaseModel
	UserID            string                                `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	DateOfBirth       time.Time                             `json:"dateOfBirth"`
	Gender            string                                `gorm:"size:10" json:"gender"` // male, female, other
	ContactInfo       datatypes.JSONType[ContactInfo]       `json:"contactInfo"`
	Address           datatypes.JSONType[Address]           `json:"address"`
	HealthInfo        datatypes.JSONType[HealthInfo]        `json:"healthInfo"`
	EmergencyContacts datatypes.JSONType[EmergencyContacts] `json:"emergencyContact"`
	Insurance         datatypes.JSONType[Insurance]         `json:"insurance"`

	Documents []ProfileDocument `gorm:"foreignKey:ProfileID" json:"documentList,omitempty"`
	User      User              `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeSave derives BMI from height and weight.
func (p *HealthProfile) BeforeSave(tx *gorm.DB) error {
	hi := p.HealthInfo.Data()
	if hi.HeightCM > 0 && hi.WeightKG > 0 {
		meters := hi.HeightCM / 100
		hi.BMI = math.Round(hi.WeightKG/(meters*meters)*100) / 100
		p.HealthInfo = datatypes.NewJSONType(hi)
	}
	return nil
}

// ProfileDocument is one uploaded file attached to a health profile. URL is
// only ever set from a completed upload to remote storage.
type ProfileDocument struct {
	BaseModel
	ProfileID string     `gorm:"size:36;index;not null" json:"-"`
	Name      string     `gorm:"size:255" json:"name"`
	URL       string     `gorm:"size:1024;not null" json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	IsVisible bool       `gorm:"default:true" json:"isVisible"`
}
