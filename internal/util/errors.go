package util

import "errors"

var (
	// Permanent defects in a paid checkout; surfaced as 400 so the provider
	// stops redelivering, and logged with the payment id for manual
	// reconciliation.
	ErrMissingMetadata = errors.New("checkout session missing required metadata")
	ErrStudentNotFound = errors.New("student not found")

	ErrCourseNotFound    = errors.New("course not found")
	ErrLessonNotFound    = errors.New("lesson not found")
	ErrLessonNotInCourse = errors.New("lesson does not belong to course")
	ErrNotEnrolled       = errors.New("student is not enrolled in this course")
)
