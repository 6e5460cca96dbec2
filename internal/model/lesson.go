package model

// Lesson is the leaf content unit. VideoObjectKey points into object
// storage; the URL handed to clients is resolved by the storage service.
// swagger:model Lesson
type Lesson struct {
	BaseModel
	ModuleID    uint   `gorm:"index:idx_module_position;not null" json:"moduleId"`
	Position    int    `gorm:"index:idx_module_position;not null" json:"position"`
	Title       string `gorm:"size:150;not null" json:"title"`
	Slug        string `gorm:"size:150" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	VideoObjectKey string `gorm:"size:255" json:"-"`
}

func (Lesson) TableName() string {
	return "lessons"
}
