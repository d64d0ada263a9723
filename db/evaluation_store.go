package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"speecheval/models"
)

// ErrEvaluationNotFound is returned by GetEvaluation for unknown ids.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// EvaluationStore persists assessment results. Records are only ever inserted.
type EvaluationStore interface {
	SaveEvaluation(ctx context.Context, e *models.Evaluation) error
	GetEvaluation(ctx context.Context, id primitive.ObjectID) (*models.Evaluation, error)
	ListEvaluations(ctx context.Context, limit int64) ([]models.Evaluation, error)
}

// MongoEvaluationStore keeps evaluations in a MongoDB collection.
type MongoEvaluationStore struct {
	coll *mongo.Collection
}

func NewMongoEvaluationStore(coll *mongo.Collection) *MongoEvaluationStore {
	return &MongoEvaluationStore{coll: coll}
}

// SaveEvaluation inserts e and sets e.ID.
func (s *MongoEvaluationStore) SaveEvaluation(ctx context.Context, e *models.Evaluation) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

func (s *MongoEvaluationStore) GetEvaluation(ctx context.Context, id primitive.ObjectID) (*models.Evaluation, error) {
	var e models.Evaluation
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("failed to load evaluation %s: %w", id.Hex(), err)
	}
	return &e, nil
}

// ListEvaluations returns the most recent evaluations first.
func (s *MongoEvaluationStore) ListEvaluations(ctx context.Context, limit int64) ([]models.Evaluation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "testedAt", Value: -1}}).SetLimit(limit)
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer cursor.Close(ctx)

	evaluations := []models.Evaluation{}
	if err := cursor.All(ctx, &evaluations); err != nil {
		return nil, fmt.Errorf("failed to decode evaluations: %w", err)
	}
	return evaluations, nil
}

// MemoryEvaluationStore is an EvaluationStore for tests and database-less runs.
type MemoryEvaluationStore struct {
	mu          sync.RWMutex
	evaluations []models.Evaluation
}

func NewMemoryEvaluationStore() *MemoryEvaluationStore {
	return &MemoryEvaluationStore{}
}

func (s *MemoryEvaluationStore) SaveEvaluation(_ context.Context, e *models.Evaluation) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluations = append(s.evaluations, *e)
	return nil
}

func (s *MemoryEvaluationStore) GetEvaluation(_ context.Context, id primitive.ObjectID) (*models.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.evaluations {
		if s.evaluations[i].ID == id {
			e := s.evaluations[i]
			return &e, nil
		}
	}
	return nil, ErrEvaluationNotFound
}

func (s *MemoryEvaluationStore) ListEvaluations(_ context.Context, limit int64) ([]models.Evaluation, error) {
	s.mu.RLock()
	out := make([]models.Evaluation, 0, len(s.evaluations))
	for i := len(s.evaluations) - 1; i >= 0; i-- {
		out = append(out, s.evaluations[i])
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].TestedAt.After(out[j].TestedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
