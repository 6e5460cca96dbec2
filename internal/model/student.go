package model

// Student is the local record for a learner. Identity lives with the
// external auth provider; AuthSubjectID is the immutable link to it.
// The row is created on first login sync.
// swagger:model Student
type Student struct {
	BaseModel
	AuthSubjectID string `gorm:"size:64;uniqueIndex;not null" json:"authSubjectId"`
	Email         string `gorm:"size:100;index" json:"email"`
	FirstName     string `gorm:"size:100" json:"firstName"`
	LastName      string `gorm:"size:100" json:"lastName"`
	ImageURL      string `gorm:"size:255" json:"imageUrl"`
}

func (Student) TableName() string {
	return "students"
}
