package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/example/realtime-tasks-demo/domain/task"
)

const taskQueryTimeout = 5 * time.Second

// MongoTaskRepository persists tasks in a MongoDB collection.
type MongoTaskRepository struct {
	coll *mongo.Collection
}

// NewMongoTaskRepository wraps the given collection.
func NewMongoTaskRepository(coll *mongo.Collection) *MongoTaskRepository {
	return &MongoTaskRepository{coll: coll}
}

// Save stores or replaces a task document.
func (r *MongoTaskRepository) Save(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, taskQueryTimeout)
	defer cancel()

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, t, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", t.ID, err)
	}
	return nil
}

// FindByID returns the task with the given ID.
func (r *MongoTaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, taskQueryTimeout)
	defer cancel()

	var t domain.Task
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// Delete removes the task with the given ID.
func (r *MongoTaskRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, taskQueryTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// FindVisibleTo returns every task owned by or shared with the user,
// newest-created-first.
func (r *MongoTaskRepository) FindVisibleTo(ctx context.Context, userID string) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, taskQueryTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"owner": userID},
		bson.M{"sharedWith": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var tasks []*domain.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}
