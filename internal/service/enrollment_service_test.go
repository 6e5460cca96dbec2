package service

import (
	"errors"
	"os"
	"testing"
	"time"

	"course_market_backend/internal/model"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"
	"course_market_backend/pkg/payment"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type fakeStudentStore struct {
	students map[string]*model.Student
	err      error
}

func (f *fakeStudentStore) FindByAuthSubject(subject string) (*model.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	student, ok := f.students[subject]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return student, nil
}

type enrollmentKey struct {
	studentID uint
	courseID  uint
}

type fakeEnrollmentStore struct {
	rows        map[enrollmentKey]*model.Enrollment
	createCalls int
	createErr   error
	findErr     error

	touchedAt   []time.Time
	completedAt []time.Time
	nextID      uint
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{rows: make(map[enrollmentKey]*model.Enrollment)}
}

func (f *fakeEnrollmentStore) FindByStudentAndCourse(studentID, courseID uint) (*model.Enrollment, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	row, ok := f.rows[enrollmentKey{studentID, courseID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakeEnrollmentStore) Create(enrollment *model.Enrollment) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	key := enrollmentKey{enrollment.StudentID, enrollment.CourseID}
	if _, exists := f.rows[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	enrollment.ID = f.nextID
	f.rows[key] = enrollment
	return nil
}

func (f *fakeEnrollmentStore) TouchLastAccessed(studentID, courseID uint, at time.Time) error {
	f.touchedAt = append(f.touchedAt, at)
	return nil
}

func (f *fakeEnrollmentStore) MarkCompleted(studentID, courseID uint, at time.Time) error {
	f.completedAt = append(f.completedAt, at)
	return nil
}

func checkoutSession(courseID, userID string) *payment.CheckoutSession {
	return &payment.CheckoutSession{
		ID:          "cs_test_1",
		AmountTotal: 4999,
		Currency:    "usd",
		Metadata:    payment.SessionMetadata{CourseID: courseID, UserID: userID},
	}
}

func TestEnrollCreatesEnrollment(t *testing.T) {
	students := &fakeStudentStore{students: map[string]*model.Student{
		"user_2abc": {BaseModel: model.BaseModel{ID: 11}, AuthSubjectID: "user_2abc"},
	}}
	enrollments := newFakeEnrollmentStore()
	svc := NewEnrollmentService(students, enrollments, 100)

	enrollment, err := svc.Enroll(checkoutSession("7", "user_2abc"))
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enrollment.StudentID != 11 || enrollment.CourseID != 7 {
		t.Fatalf("ids got=(%d,%d) want=(11,7)", enrollment.StudentID, enrollment.CourseID)
	}
	if enrollment.Amount != 49.99 {
		t.Fatalf("amount got=%v want=49.99", enrollment.Amount)
	}
	if enrollment.Status != model.EnrollmentActive {
		t.Fatalf("status got=%q want=%q", enrollment.Status, model.EnrollmentActive)
	}
	if enrollment.PaymentID != "cs_test_1" {
		t.Fatalf("paymentId got=%q want=%q", enrollment.PaymentID, "cs_test_1")
	}
	if enrollment.EnrolledAt.IsZero() {
		t.Fatal("enrolledAt not set")
	}
}

func TestEnrollRedeliveryIsIdempotent(t *testing.T) {
	students := &fakeStudentStore{students: map[string]*model.Student{
		"user_2abc": {BaseModel: model.BaseModel{ID: 11}, AuthSubjectID: "user_2abc"},
	}}
	enrollments := newFakeEnrollmentStore()
	svc := NewEnrollmentService(students, enrollments, 100)

	first, err := svc.Enroll(checkoutSession("7", "user_2abc"))
	if err != nil {
		t.Fatalf("first Enroll: %v", err)
	}
	second, err := svc.Enroll(checkoutSession("7", "user_2abc"))
	if err != nil {
		t.Fatalf("second Enroll: %v", err)
	}

	if enrollments.createCalls != 1 {
		t.Fatalf("createCalls got=%d want=1", enrollments.createCalls)
	}
	if first.ID != second.ID {
		t.Fatalf("redelivery returned a different row: %d vs %d", first.ID, second.ID)
	}
}

// raceEnrollmentStore simulates a concurrent delivery that wins the insert
// between this delivery's existence check and its create.
type raceEnrollmentStore struct {
	*fakeEnrollmentStore
	raced bool
}

func (f *raceEnrollmentStore) FindByStudentAndCourse(studentID, courseID uint) (*model.Enrollment, error) {
	if !f.raced {
		return nil, gorm.ErrRecordNotFound
	}
	return f.fakeEnrollmentStore.FindByStudentAndCourse(studentID, courseID)
}

func (f *raceEnrollmentStore) Create(enrollment *model.Enrollment) error {
	f.createCalls++
	f.raced = true
	winner := &model.Enrollment{
		BaseModel: model.BaseModel{ID: 99},
		StudentID: enrollment.StudentID,
		CourseID:  enrollment.CourseID,
		PaymentID: enrollment.PaymentID,
	}
	f.rows[enrollmentKey{enrollment.StudentID, enrollment.CourseID}] = winner
	return gorm.ErrDuplicatedKey
}

func TestEnrollRecoversFromInsertRace(t *testing.T) {
	students := &fakeStudentStore{students: map[string]*model.Student{
		"user_2abc": {BaseModel: model.BaseModel{ID: 11}, AuthSubjectID: "user_2abc"},
	}}
	enrollments := &raceEnrollmentStore{fakeEnrollmentStore: newFakeEnrollmentStore()}
	svc := NewEnrollmentService(students, enrollments, 100)

	enrollment, err := svc.Enroll(checkoutSession("7", "user_2abc"))
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enrollment.ID != 99 {
		t.Fatalf("expected the surviving row, got id=%d", enrollment.ID)
	}
}

func TestEnrollRejectsBadMetadata(t *testing.T) {
	students := &fakeStudentStore{students: map[string]*model.Student{
		"user_2abc": {BaseModel: model.BaseModel{ID: 11}, AuthSubjectID: "user_2abc"},
	}}

	cases := []struct {
		name     string
		courseID string
		userID   string
	}{
		{"missing courseId", "", "user_2abc"},
		{"missing userId", "7", ""},
		{"both missing", "", ""},
		{"unparsable courseId", "not-a-number", "user_2abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enrollments := newFakeEnrollmentStore()
			svc := NewEnrollmentService(students, enrollments, 100)

			_, err := svc.Enroll(checkoutSession(tc.courseID, tc.userID))
			if !errors.Is(err, util.ErrMissingMetadata) {
				t.Fatalf("got=%v want=%v", err, util.ErrMissingMetadata)
			}
			if enrollments.createCalls != 0 {
				t.Fatalf("createCalls got=%d want=0", enrollments.createCalls)
			}
		})
	}
}

func TestEnrollUnknownStudent(t *testing.T) {
	students := &fakeStudentStore{students: map[string]*model.Student{}}
	enrollments := newFakeEnrollmentStore()
	svc := NewEnrollmentService(students, enrollments, 100)

	_, err := svc.Enroll(checkoutSession("7", "user_nobody"))
	if !errors.Is(err, util.ErrStudentNotFound) {
		t.Fatalf("got=%v want=%v", err, util.ErrStudentNotFound)
	}
	if enrollments.createCalls != 0 {
		t.Fatalf("createCalls got=%d want=0", enrollments.createCalls)
	}
}

func TestEnrollPropagatesStoreErrors(t *testing.T) {
	students := &fakeStudentStore{students: map[string]*model.Student{
		"user_2abc": {BaseModel: model.BaseModel{ID: 11}, AuthSubjectID: "user_2abc"},
	}}
	enrollments := newFakeEnrollmentStore()
	enrollments.findErr = errors.New("connection refused")
	svc := NewEnrollmentService(students, enrollments, 100)

	_, err := svc.Enroll(checkoutSession("7", "user_2abc"))
	if err == nil || errors.Is(err, util.ErrMissingMetadata) || errors.Is(err, util.ErrStudentNotFound) {
		t.Fatalf("expected transient store error, got %v", err)
	}
}

func TestEnrollMinorUnitFactor(t *testing.T) {
	students := &fakeStudentStore{students: map[string]*model.Student{
		"user_2abc": {BaseModel: model.BaseModel{ID: 11}, AuthSubjectID: "user_2abc"},
	}}
	enrollments := newFakeEnrollmentStore()
	// Zero-decimal currencies configure a factor of 1.
	svc := NewEnrollmentService(students, enrollments, 1)

	enrollment, err := svc.Enroll(checkoutSession("7", "user_2abc"))
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enrollment.Amount != 4999 {
		t.Fatalf("amount got=%v want=4999", enrollment.Amount)
	}
}
