package models

import "gorm.io/datatypes"

// Qualification is one entry in a doctor's credentials list
type Qualification struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution,omitempty"`
	Year        int    `json:"year,omitempty"`
}

// Clinic describes where a doctor practices
type Clinic struct {
	Name    string  `json:"name,omitempty"`
	Address Address `json:"address"`
	Phone   string  `json:"phone,omitempty"`
}

// SlotWindow is a bookable window of wall-clock time
type SlotWindow struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// DayAvailability lists a doctor's bookable windows for one weekday
type DayAvailability struct {
	Day   string       `json:"day"` // monday..sunday
	Slots []SlotWindow `json:"slots"`
}

// DoctorProfile carries the professional details shown to patients when
// choosing a doctor to book with.
type DoctorProfile struct {
	BaseModel
	UserID             string                               `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialization     string                               `gorm:"size:100;not null" json:"specialization"`
	Qualifications     datatypes.JSONSlice[Qualification]   `json:"qualifications,omitempty"`
	RegistrationNumber string                               `gorm:"size:50;uniqueIndex;not null" json:"registrationNumber"`
	ExperienceYears    int                                  `json:"experience"`
	Clinic             datatypes.JSONType[Clinic]           `json:"clinic"`
	ConsultationFee    float64                              `json:"consultationFee"`
	Availability       datatypes.JSONSlice[DayAvailability] `json:"availability,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
