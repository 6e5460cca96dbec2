package model

// Course is the catalog entity. Its curriculum is the ordered list of
// CourseModule rows; aggregation over lessons treats them as a set, but the
// position order drives the curriculum UI.
// swagger:model Course
type Course struct {
	BaseModel
	Title        string  `gorm:"size:150;not null" json:"title"`
	Slug         string  `gorm:"size:150;uniqueIndex" json:"slug"`
	Description  string  `gorm:"type:text" json:"description"`
	Price        float64 `gorm:"not null;default:0" json:"price"`
	ImageURL     string  `gorm:"size:255" json:"imageUrl"`
	CategoryID   *uint   `gorm:"index" json:"categoryId,omitempty"`
	InstructorID *uint   `gorm:"index" json:"instructorId,omitempty"`

	Category   *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Instructor *Instructor    `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Modules    []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseModule links a module into a course's curriculum at a position.
// A module is referenced, not owned, so it can be reused across courses.
// swagger:model CourseModule
type CourseModule struct {
	BaseModel
	CourseID uint `gorm:"index:idx_course_module,unique;not null" json:"courseId"`
	ModuleID uint `gorm:"index:idx_course_module,unique;not null" json:"moduleId"`
	Position int  `gorm:"not null" json:"position"`

	Module *Module `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}
