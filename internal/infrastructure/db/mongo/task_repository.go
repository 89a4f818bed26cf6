package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rsandoval/tasks-api/internal/core/domain"
	"github.com/rsandoval/tasks-api/internal/core/ports"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

type mongoTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`
	OwnerID     string             `bson:"owner_id"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

// Create inserts a new task document. The returned task carries the new ID.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoTask{
		Description: t.Description,
		Completed:   t.Completed,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert task: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return toDomainTask(doc), nil
}

// FindByID treats a malformed ID the same as a missing document.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoTask
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return toDomainTask(doc), nil
}

// List returns the owner's tasks sorted by completed, then _id. ObjectIDs
// grow with insertion time, so _id order is creation order.
func (r *TaskRepository) List(ctx context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	if f.OwnerID == "" {
		return nil, fmt.Errorf("list tasks: %w", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"owner_id": f.OwnerID}
	if f.Completed != nil {
		filter["completed"] = *f.Completed
	}
	opts := options.Find().SetSort(bson.D{{Key: "completed", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list tasks: decode: %w", err)
	}

	tasks := make([]*domain.Task, len(docs))
	for i, d := range docs {
		tasks[i] = toDomainTask(d)
	}
	return tasks, nil
}

// Update matches on both _id and owner_id so a concurrent delete or an owner
// mismatch never results in a write.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "owner_id": t.OwnerID},
		bson.M{"$set": bson.M{
			"description": t.Description,
			"completed":   t.Completed,
			"updated_at":  t.UpdatedAt,
		}},
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrTaskNotFound
	}

	out := *t
	return &out, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, ownerID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// EnsureIndexes creates the index that serves owner-scoped listings.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "completed", Value: 1}, {Key: "_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func toDomainTask(d mongoTask) *domain.Task {
	return &domain.Task{
		ID:          d.ID.Hex(),
		Description: d.Description,
		Completed:   d.Completed,
		OwnerID:     d.OwnerID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}
