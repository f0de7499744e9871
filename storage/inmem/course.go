package inmemdb

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core/course"
)

type courseRepository struct {
	db *courseTable
}

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

// summary copies the course with lesson content stripped, mirroring the
// catalog projection.
func summary(c course.Course) course.Course {
	lessons := make([]course.Lesson, len(c.Lessons))
	for i, l := range c.Lessons {
		l.Content = course.Content{}
		lessons[i] = l
	}
	c.Lessons = lessons
	return c
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = primitive.NewObjectID()
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		courses = append(courses, summary(*c))
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id primitive.ObjectID) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCoursesByStudent(ctx context.Context, studentID string) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := []course.Course{}
	for _, c := range repo.db.table {
		if c.IsEnrolled(studentID) {
			courses = append(courses, summary(*c))
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) SaveCourse(ctx context.Context, c course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[c.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}

func (repo *courseRepository) AddStudent(ctx context.Context, courseID primitive.ObjectID, es course.EnrolledStudent) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.table[courseID]
	if !ok {
		return course.ErrNotFound
	}
	if c.IsEnrolled(es.StudentID) {
		return course.ErrAlreadyEnrolled
	}
	c.EnrolledStudents = append(c.EnrolledStudents, es)
	return nil
}

func (repo *courseRepository) SaveStudentProgress(ctx context.Context, courseID primitive.ObjectID, es course.EnrolledStudent) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.table[courseID]
	if !ok {
		return course.ErrNotFound
	}
	for i := range c.EnrolledStudents {
		if c.EnrolledStudents[i].StudentID == es.StudentID {
			c.EnrolledStudents[i] = es
			return nil
		}
	}
	return course.ErrNotEnrolled
}

func (repo *courseRepository) AttachAssignment(ctx context.Context, courseID, assignmentID primitive.ObjectID) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.table[courseID]
	if !ok {
		return course.ErrNotFound
	}
	for _, id := range c.Assignments {
		if id == assignmentID {
			return nil
		}
	}
	c.Assignments = append(c.Assignments, assignmentID)
	return nil
}
