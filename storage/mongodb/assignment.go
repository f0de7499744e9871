package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/elimu/core/assignment"
)

type AssignmentRepository struct {
	coll *mongo.Collection
}

var _ assignment.Repository = (*AssignmentRepository)(nil)

func NewAssignmentRepository(db *mongo.Database) *AssignmentRepository {
	return &AssignmentRepository{coll: db.Collection(assignmentsCollection)}
}

func (repo *AssignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	res, err := repo.coll.InsertOne(ctx, a)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return a, nil
}

func (repo *AssignmentRepository) GetAssignmentByID(ctx context.Context, id primitive.ObjectID) (assignment.Assignment, error) {
	var a assignment.Assignment
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "finding assignment")
	}
	return a, nil
}

func (repo *AssignmentRepository) QueryAssignmentsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]assignment.Assignment, error) {
	return repo.query(ctx, bson.M{"course": courseID})
}

func (repo *AssignmentRepository) QueryAssignmentsByStudent(ctx context.Context, studentID string) ([]assignment.Assignment, error) {
	return repo.query(ctx, bson.M{"submissions.student_id": studentID})
}

func (repo *AssignmentRepository) SaveAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "replacing assignment")
	}
	if res.MatchedCount == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return a, nil
}

func (repo *AssignmentRepository) DeleteAssignment(ctx context.Context, id primitive.ObjectID) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if res.DeletedCount == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo *AssignmentRepository) query(ctx context.Context, filter bson.M) ([]assignment.Assignment, error) {
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := []assignment.Assignment{}
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, errors.Wrap(err, "decoding assignments")
	}
	return assignments, nil
}
