package service

import (
	"errors"
	"testing"

	"course_market_backend/internal/model"
)

func TestIsEnrolled(t *testing.T) {
	students := &fakeStudentStore{students: map[string]*model.Student{
		"user_2abc": {BaseModel: model.BaseModel{ID: 11}, AuthSubjectID: "user_2abc"},
	}}
	enrollments := enrolledStore(11, 7)
	svc := NewAccessService(students, enrollments)

	cases := []struct {
		name     string
		subject  string
		courseID uint
		want     bool
	}{
		{"enrolled", "user_2abc", 7, true},
		{"not enrolled in course", "user_2abc", 8, false},
		{"unknown subject", "user_nobody", 7, false},
		{"anonymous", "", 7, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.IsEnrolled(tc.subject, tc.courseID); got != tc.want {
				t.Fatalf("IsEnrolled(%q, %d) got=%v want=%v", tc.subject, tc.courseID, got, tc.want)
			}
		})
	}
}

func TestIsEnrolledFailsClosedOnStoreError(t *testing.T) {
	students := &fakeStudentStore{err: errors.New("connection refused")}
	svc := NewAccessService(students, newFakeEnrollmentStore())

	if svc.IsEnrolled("user_2abc", 7) {
		t.Fatal("store error must read as not enrolled")
	}

	okStudents := &fakeStudentStore{students: map[string]*model.Student{
		"user_2abc": {BaseModel: model.BaseModel{ID: 11}, AuthSubjectID: "user_2abc"},
	}}
	broken := newFakeEnrollmentStore()
	broken.findErr = errors.New("connection refused")
	svc = NewAccessService(okStudents, broken)

	if svc.IsEnrolled("user_2abc", 7) {
		t.Fatal("enrollment store error must read as not enrolled")
	}
}
