package service

import (
	"context"
	"errors"
	"testing"

	"course_market_backend/internal/model"
	"course_market_backend/internal/util"

	"gorm.io/gorm"
)

type fakeCatalog struct {
	courses map[uint]*model.Course
	lessons map[uint]*model.Lesson
}

func (f *fakeCatalog) CourseStructure(ctx context.Context, courseID uint) (*model.Course, error) {
	course, ok := f.courses[courseID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (f *fakeCatalog) LessonByID(lessonID uint) (*model.Lesson, error) {
	lesson, ok := f.lessons[lessonID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return lesson, nil
}

func (f *fakeCatalog) ModuleInCourse(courseID, moduleID uint) (bool, error) {
	course, ok := f.courses[courseID]
	if !ok {
		return false, nil
	}
	for _, cm := range course.Modules {
		if cm.ModuleID == moduleID {
			return true, nil
		}
	}
	return false, nil
}

type completionKey struct {
	studentID uint
	lessonID  uint
}

type fakeCompletionStore struct {
	rows        map[completionKey]*model.LessonCompletion
	createCalls int
	nextID      uint
}

func newFakeCompletionStore() *fakeCompletionStore {
	return &fakeCompletionStore{rows: make(map[completionKey]*model.LessonCompletion)}
}

func (f *fakeCompletionStore) FindByStudentAndLesson(studentID, lessonID uint) (*model.LessonCompletion, error) {
	row, ok := f.rows[completionKey{studentID, lessonID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakeCompletionStore) Create(completion *model.LessonCompletion) error {
	f.createCalls++
	key := completionKey{completion.StudentID, completion.LessonID}
	if _, exists := f.rows[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	completion.ID = f.nextID
	f.rows[key] = completion
	return nil
}

func (f *fakeCompletionStore) ListByStudentAndCourse(studentID, courseID uint) ([]model.LessonCompletion, error) {
	var out []model.LessonCompletion
	for _, row := range f.rows {
		if row.StudentID == studentID && row.CourseID == courseID {
			out = append(out, *row)
		}
	}
	return out, nil
}

// twoModuleCourse: module 1 ("Basics") with lessons 101, 102 and module 2
// ("Advanced") with lesson 103.
func twoModuleCourse() *fakeCatalog {
	lessons := map[uint]*model.Lesson{
		101: {BaseModel: model.BaseModel{ID: 101}, ModuleID: 1, Position: 1, Title: "Intro"},
		102: {BaseModel: model.BaseModel{ID: 102}, ModuleID: 1, Position: 2, Title: "Setup"},
		103: {BaseModel: model.BaseModel{ID: 103}, ModuleID: 2, Position: 1, Title: "Deep dive"},
	}
	course := &model.Course{
		BaseModel: model.BaseModel{ID: 7},
		Title:     "Go from scratch",
		Modules: []model.CourseModule{
			{
				ModuleID: 1,
				Position: 1,
				Module: &model.Module{
					BaseModel: model.BaseModel{ID: 1},
					Title:     "Basics",
					Lessons:   []model.Lesson{*lessons[101], *lessons[102]},
				},
			},
			{
				ModuleID: 2,
				Position: 2,
				Module: &model.Module{
					BaseModel: model.BaseModel{ID: 2},
					Title:     "Advanced",
					Lessons:   []model.Lesson{*lessons[103]},
				},
			},
		},
	}
	return &fakeCatalog{
		courses: map[uint]*model.Course{7: course},
		lessons: lessons,
	}
}

func enrolledStore(studentID, courseID uint) *fakeEnrollmentStore {
	store := newFakeEnrollmentStore()
	store.rows[enrollmentKey{studentID, courseID}] = &model.Enrollment{
		BaseModel: model.BaseModel{ID: 1},
		StudentID: studentID,
		CourseID:  courseID,
		Status:    model.EnrollmentActive,
	}
	return store
}

func TestCourseProgressAggregation(t *testing.T) {
	catalog := twoModuleCourse()
	completions := newFakeCompletionStore()
	enrollments := enrolledStore(11, 7)
	svc := NewProgressService(catalog, completions, enrollments)

	for _, lessonID := range []uint{101, 103} {
		if _, err := svc.MarkLessonComplete(11, 7, lessonID); err != nil {
			t.Fatalf("MarkLessonComplete(%d): %v", lessonID, err)
		}
	}

	progress, err := svc.CourseProgress(context.Background(), 11, 7)
	if err != nil {
		t.Fatalf("CourseProgress: %v", err)
	}

	if progress.CompletedCount != 2 || progress.TotalCount != 3 {
		t.Fatalf("counts got=(%d,%d) want=(2,3)", progress.CompletedCount, progress.TotalCount)
	}
	if want := 2.0 / 3.0; progress.Percentage != want {
		t.Fatalf("percentage got=%v want=%v", progress.Percentage, want)
	}

	if len(progress.Modules) != 2 {
		t.Fatalf("modules got=%d want=2", len(progress.Modules))
	}
	basics, advanced := progress.Modules[0], progress.Modules[1]
	if basics.Title != "Basics" || advanced.Title != "Advanced" {
		t.Fatalf("module order got=(%q,%q)", basics.Title, advanced.Title)
	}
	if basics.CompletedCount != 1 || basics.TotalCount != 2 {
		t.Fatalf("basics got=(%d,%d) want=(1,2)", basics.CompletedCount, basics.TotalCount)
	}
	if advanced.CompletedCount != 1 || advanced.TotalCount != 1 {
		t.Fatalf("advanced got=(%d,%d) want=(1,1)", advanced.CompletedCount, advanced.TotalCount)
	}
}

func TestCourseProgressEmptyCourse(t *testing.T) {
	catalog := &fakeCatalog{
		courses: map[uint]*model.Course{3: {BaseModel: model.BaseModel{ID: 3}, Title: "Empty"}},
		lessons: map[uint]*model.Lesson{},
	}
	svc := NewProgressService(catalog, newFakeCompletionStore(), enrolledStore(11, 3))

	progress, err := svc.CourseProgress(context.Background(), 11, 3)
	if err != nil {
		t.Fatalf("CourseProgress: %v", err)
	}
	if progress.TotalCount != 0 || progress.CompletedCount != 0 {
		t.Fatalf("counts got=(%d,%d) want=(0,0)", progress.CompletedCount, progress.TotalCount)
	}
	if progress.Percentage != 0 {
		t.Fatalf("percentage got=%v want=0", progress.Percentage)
	}
}

func TestCourseProgressUnknownCourse(t *testing.T) {
	svc := NewProgressService(twoModuleCourse(), newFakeCompletionStore(), enrolledStore(11, 7))

	if _, err := svc.CourseProgress(context.Background(), 11, 999); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("got=%v want=%v", err, util.ErrCourseNotFound)
	}
}

func TestCourseProgressMarksEnrollmentCompleted(t *testing.T) {
	catalog := twoModuleCourse()
	completions := newFakeCompletionStore()
	enrollments := enrolledStore(11, 7)
	svc := NewProgressService(catalog, completions, enrollments)

	for _, lessonID := range []uint{101, 102, 103} {
		if _, err := svc.MarkLessonComplete(11, 7, lessonID); err != nil {
			t.Fatalf("MarkLessonComplete(%d): %v", lessonID, err)
		}
	}

	progress, err := svc.CourseProgress(context.Background(), 11, 7)
	if err != nil {
		t.Fatalf("CourseProgress: %v", err)
	}
	if progress.Percentage != 1 {
		t.Fatalf("percentage got=%v want=1", progress.Percentage)
	}
	if len(enrollments.completedAt) != 1 {
		t.Fatalf("MarkCompleted calls got=%d want=1", len(enrollments.completedAt))
	}
	if len(enrollments.touchedAt) != 1 {
		t.Fatalf("TouchLastAccessed calls got=%d want=1", len(enrollments.touchedAt))
	}
}

func TestMarkLessonCompleteIdempotent(t *testing.T) {
	catalog := twoModuleCourse()
	completions := newFakeCompletionStore()
	svc := NewProgressService(catalog, completions, enrolledStore(11, 7))

	first, err := svc.MarkLessonComplete(11, 7, 101)
	if err != nil {
		t.Fatalf("first MarkLessonComplete: %v", err)
	}
	second, err := svc.MarkLessonComplete(11, 7, 101)
	if err != nil {
		t.Fatalf("second MarkLessonComplete: %v", err)
	}

	if completions.createCalls != 1 {
		t.Fatalf("createCalls got=%d want=1", completions.createCalls)
	}
	if first.ID != second.ID {
		t.Fatalf("re-mark returned a different row: %d vs %d", first.ID, second.ID)
	}
}

func TestMarkLessonCompleteRequiresEnrollment(t *testing.T) {
	svc := NewProgressService(twoModuleCourse(), newFakeCompletionStore(), newFakeEnrollmentStore())

	if _, err := svc.MarkLessonComplete(11, 7, 101); !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("got=%v want=%v", err, util.ErrNotEnrolled)
	}
}

func TestMarkLessonCompleteUnknownLesson(t *testing.T) {
	svc := NewProgressService(twoModuleCourse(), newFakeCompletionStore(), enrolledStore(11, 7))

	if _, err := svc.MarkLessonComplete(11, 7, 999); !errors.Is(err, util.ErrLessonNotFound) {
		t.Fatalf("got=%v want=%v", err, util.ErrLessonNotFound)
	}
}

func TestMarkLessonCompleteLessonOutsideCourse(t *testing.T) {
	catalog := twoModuleCourse()
	// Lesson 201 belongs to a module no course references.
	catalog.lessons[201] = &model.Lesson{BaseModel: model.BaseModel{ID: 201}, ModuleID: 9, Title: "Stray"}
	svc := NewProgressService(catalog, newFakeCompletionStore(), enrolledStore(11, 7))

	if _, err := svc.MarkLessonComplete(11, 7, 201); !errors.Is(err, util.ErrLessonNotInCourse) {
		t.Fatalf("got=%v want=%v", err, util.ErrLessonNotInCourse)
	}
}
