package inmemdb

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core/assignment"
)

type assignmentRepository struct {
	db *assignmentTable
}

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = primitive.NewObjectID()
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id primitive.ObjectID) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignmentsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assigs := []assignment.Assignment{}
	for _, a := range repo.db.table {
		if a.Course == courseID {
			assigs = append(assigs, *a)
		}
	}
	sort.Slice(assigs, func(i, j int) bool { return assigs[i].DueDate.Before(assigs[j].DueDate) })
	return assigs, nil
}

func (repo *assignmentRepository) QueryAssignmentsByStudent(ctx context.Context, studentID string) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assigs := []assignment.Assignment{}
	for _, a := range repo.db.table {
		if _, ok := a.SubmissionBy(studentID); ok {
			assigs = append(assigs, *a)
		}
	}
	sort.Slice(assigs, func(i, j int) bool { return assigs[i].DueDate.Before(assigs[j].DueDate) })
	return assigs, nil
}

func (repo *assignmentRepository) SaveAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[a.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id primitive.ObjectID) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
