package model

// swagger:model Instructor
type Instructor struct {
	BaseModel
	Name     string `gorm:"size:100;not null" json:"name"`
	Bio      string `gorm:"type:text" json:"bio"`
	PhotoURL string `gorm:"size:255" json:"photoUrl"`
}

func (Instructor) TableName() string {
	return "instructors"
}
