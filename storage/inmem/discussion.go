package inmemdb

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core/discussion"
)

type discussionRepository struct {
	db *threadTable
}

func NewDiscussionRepository(db *DB) discussion.Repository {
	return &discussionRepository{db: db.thread}
}

func (repo *discussionRepository) CreateThread(ctx context.Context, t discussion.Thread) (discussion.Thread, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t.ID = primitive.NewObjectID()
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *discussionRepository) GetThreadByID(ctx context.Context, id primitive.ObjectID) (discussion.Thread, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return discussion.Thread{}, discussion.ErrNotFound
}

func (repo *discussionRepository) QueryThreadsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]discussion.Thread, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	threads := []discussion.Thread{}
	for _, t := range repo.db.table {
		if t.Course == courseID {
			threads = append(threads, *t)
		}
	}
	sort.Slice(threads, func(i, j int) bool {
		if threads[i].IsPinned != threads[j].IsPinned {
			return threads[i].IsPinned
		}
		return threads[i].LastActivity.After(threads[j].LastActivity)
	})
	return threads, nil
}

func (repo *discussionRepository) SaveThread(ctx context.Context, t discussion.Thread) (discussion.Thread, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[t.ID]; !ok {
		return discussion.Thread{}, discussion.ErrNotFound
	}
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *discussionRepository) DeleteThread(ctx context.Context, id primitive.ObjectID) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}

func (repo *discussionRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	t, ok := repo.db.table[id]
	if !ok {
		return discussion.ErrNotFound
	}
	t.Views++
	return nil
}
