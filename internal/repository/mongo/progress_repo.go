package mongo

import (
	"context"
	"errors"
	"time"

	"serenity/practice-app/internal/domain"
	"serenity/practice-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const progressCollectionName = "progress_records"

// mongoProgressRepository implements repository.ProgressRepository
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new ProgressRecord repository backed by MongoDB.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// Create inserts a new progress record. One record exists per assignment.
func (r *mongoProgressRepository) Create(ctx context.Context, record *domain.ProgressRecord) (primitive.ObjectID, error) {
	if record.AssignmentID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("progress record requires assignmentId")
	}

	record.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted progress record ID")
	}
	return insertedID, nil
}

// GetByAssignmentID retrieves the progress record of one assignment.
func (r *mongoProgressRepository) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) (*domain.ProgressRecord, error) {
	var record domain.ProgressRecord
	err := r.collection.FindOne(ctx, bson.M{"assignmentId": assignmentID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Update replaces the stored record.
func (r *mongoProgressRepository) Update(ctx context.Context, record *domain.ProgressRecord) error {
	if record.ID == primitive.NilObjectID {
		return errors.New("progress record ID is required for update")
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": record.ID}, record)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgressIndexes creates necessary indexes. Call during startup.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "assignmentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "planId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
