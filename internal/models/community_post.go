package models

// CommunityPost is a doctor-authored post on the community board
type CommunityPost struct {
	BaseModel
	AuthorID string `gorm:"size:36;index;not null" json:"authorId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`

	Author User `gorm:"foreignKey:AuthorID" json:"-"`
}
