package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskboard/task-api/internal/core/domain"
	"github.com/taskboard/task-api/internal/core/ports"
)

const tasksCollection = "tasks"

type TaskRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{db: db, coll: db.Collection(tasksCollection)}
}

// ListByOwner returns the owner's tasks in the contract ordering. The plain
// path sorts by created_at descending. The due-date path needs an aggregation
// pipeline: Mongo's sort puts missing values first on ascending order, while
// the contract wants tasks without a due date last. A computed due_missing
// field (0 when due_date is set, 1 when absent) leads the sort key instead.
func (r *TaskRepository) ListByOwner(ctx context.Context, filter ports.ListTasksFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	match := bson.M{"owner_id": filter.OwnerID}
	if filter.Status != "" {
		match["status"] = string(filter.Status)
	}

	var cursor *mongo.Cursor
	var err error
	if filter.SortByDueDate {
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: match}},
			{{Key: "$addFields", Value: bson.M{
				"due_missing": bson.M{"$cond": bson.A{
					bson.M{"$ifNull": bson.A{"$due_date", false}}, 0, 1,
				}},
			}}},
			{{Key: "$sort", Value: bson.D{
				{Key: "due_missing", Value: 1},
				{Key: "due_date", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			}}},
		}
		cursor, err = r.coll.Aggregate(ctx, pipeline)
	} else {
		sort := bson.D{
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		}
		cursor, err = r.coll.Find(ctx, match, options.Find().SetSort(sort))
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []*domain.Task{}
	for cursor.Next(ctx) {
		var t domain.Task
		if err := cursor.Decode(&t); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		normalize(&t)
		tasks = append(tasks, &t)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Task
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	normalize(&t)
	return &t, nil
}

// Create allocates an integer id, inserts the task, and returns the stored
// record in one call. The legacy backend inserted and then selected by the
// generated id; folding both into one operation removes that window.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, tasksCollection)
	if err != nil {
		return nil, err
	}

	created := *task
	created.ID = id
	if _, err := r.coll.InsertOne(ctx, &created); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &created, nil
}

// Update replaces the four mutable fields in one atomic statement, filtered
// by both id and owner id.
func (r *TaskRepository) Update(ctx context.Context, id, ownerID int64, fields ports.UpdateTaskFields, now time.Time) (*domain.Task, error) {
	set := bson.M{
		"title":       fields.Title,
		"description": fields.Description,
		"status":      string(fields.Status),
		"updated_at":  now,
	}
	update := bson.M{"$set": set}
	if fields.DueDate != nil {
		set["due_date"] = *fields.DueDate
	} else {
		update["$unset"] = bson.M{"due_date": ""}
	}

	return r.findOneAndUpdate(ctx, id, ownerID, update)
}

// MarkCompleted sets status to COMPLETED and refreshes updated_at, leaving
// every other field untouched. Running it on an already completed task issues
// the same write.
func (r *TaskRepository) MarkCompleted(ctx context.Context, id, ownerID int64, now time.Time) (*domain.Task, error) {
	return r.findOneAndUpdate(ctx, id, ownerID, bson.M{"$set": bson.M{
		"status":     string(domain.StatusCompleted),
		"updated_at": now,
	}})
}

func (r *TaskRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *TaskRepository) findOneAndUpdate(ctx context.Context, id, ownerID int64, update bson.M) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Task
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "owner_id": ownerID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	normalize(&t)
	return &t, nil
}

// EnsureIndexes creates the owner index task listings rely on.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// normalize pins decoded timestamps to UTC; the driver hands them back in
// local time.
func normalize(t *domain.Task) {
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if t.DueDate != nil {
		utc := t.DueDate.UTC()
		t.DueDate = &utc
	}
}
