package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/elimu/core/course"
)

// courseSummaryProjection strips lesson content out of list queries.
var courseSummaryProjection = bson.M{"lessons.content": 0}

type CourseRepository struct {
	coll *mongo.Collection
}

var _ course.Repository = (*CourseRepository)(nil)

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{coll: db.Collection(coursesCollection)}
}

func (repo *CourseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	res, err := repo.coll.InsertOne(ctx, c)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return c, nil
}

func (repo *CourseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	return repo.query(ctx, bson.M{})
}

func (repo *CourseRepository) GetCourseByID(ctx context.Context, id primitive.ObjectID) (course.Course, error) {
	var c course.Course
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course")
	}
	return c, nil
}

func (repo *CourseRepository) QueryCoursesByStudent(ctx context.Context, studentID string) ([]course.Course, error) {
	return repo.query(ctx, bson.M{"enrolled_students.student_id": studentID})
}

func (repo *CourseRepository) SaveCourse(ctx context.Context, c course.Course) (course.Course, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "replacing course")
	}
	if res.MatchedCount == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

func (repo *CourseRepository) DeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if res.DeletedCount == 0 {
		return course.ErrNotFound
	}
	return nil
}

// AddStudent appends the enrollment in a single atomic update; the filter
// rejects courses already holding the student.
func (repo *CourseRepository) AddStudent(ctx context.Context, courseID primitive.ObjectID, es course.EnrolledStudent) error {
	filter := bson.M{
		"_id":                          courseID,
		"enrolled_students.student_id": bson.M{"$ne": es.StudentID},
	}
	res, err := repo.coll.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"enrolled_students": es}})
	if err != nil {
		return errors.Wrap(err, "pushing enrollment")
	}
	if res.MatchedCount == 0 {
		return course.ErrAlreadyEnrolled
	}
	return nil
}

func (repo *CourseRepository) SaveStudentProgress(ctx context.Context, courseID primitive.ObjectID, es course.EnrolledStudent) error {
	filter := bson.M{
		"_id":                          courseID,
		"enrolled_students.student_id": es.StudentID,
	}
	res, err := repo.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"enrolled_students.$": es}})
	if err != nil {
		return errors.Wrap(err, "setting enrollment progress")
	}
	if res.MatchedCount == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *CourseRepository) AttachAssignment(ctx context.Context, courseID, assignmentID primitive.ObjectID) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{"$addToSet": bson.M{"assignments": assignmentID}})
	if err != nil {
		return errors.Wrap(err, "attaching assignment")
	}
	if res.MatchedCount == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *CourseRepository) query(ctx context.Context, filter bson.M) ([]course.Course, error) {
	cursor, err := repo.coll.Find(ctx, filter, options.Find().SetProjection(courseSummaryProjection))
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := []course.Course{}
	if err = cursor.All(ctx, &courses); err != nil {
		return nil, errors.Wrap(err, "decoding courses")
	}
	return courses, nil
}
