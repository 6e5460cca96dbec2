package model

import "time"

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

// Enrollment grants a student access to a course. Exactly one row may exist
// per (student, course); the unique composite index is what makes webhook
// redelivery safe, the application only recovers from the duplicate-key
// error it produces. Rows are never deleted, withdrawal is the "dropped"
// status.
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	StudentID uint `gorm:"index:idx_student_course,unique;not null" json:"studentId"`
	CourseID  uint `gorm:"index:idx_student_course,unique;not null" json:"courseId"`

	// PaymentID is the provider-side payment identifier, unique per charge.
	PaymentID string `gorm:"size:128;uniqueIndex;not null" json:"paymentId"`
	// Amount is stored in major currency units, already converted from the
	// provider's minor-unit representation.
	Amount float64 `gorm:"not null" json:"amount"`

	Status         EnrollmentStatus `gorm:"type:enum('active','completed','dropped');default:'active'" json:"status"`
	EnrolledAt     time.Time        `gorm:"not null" json:"enrolledAt"`
	CompletedAt    *time.Time       `json:"completedAt,omitempty"`
	LastAccessedAt *time.Time       `json:"lastAccessedAt,omitempty"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Course  *Course  `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
