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

const therapistCollectionName = "therapists"

// mongoTherapistRepository implements repository.TherapistRepository
type mongoTherapistRepository struct {
	collection *mongo.Collection
}

// NewMongoTherapistRepository creates a new Therapist repository backed by MongoDB.
func NewMongoTherapistRepository(db *mongo.Database) repository.TherapistRepository {
	return &mongoTherapistRepository{
		collection: db.Collection(therapistCollectionName),
	}
}

// Create inserts a new therapist account.
func (r *mongoTherapistRepository) Create(ctx context.Context, therapist *domain.Therapist) (primitive.ObjectID, error) {
	if therapist.Email == "" || therapist.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("therapist email and password hash are required")
	}

	therapist.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	therapist.CreatedAt = now
	therapist.UpdatedAt = now
	if therapist.Role == "" {
		therapist.Role = domain.RoleTherapist
	}

	result, err := r.collection.InsertOne(ctx, therapist)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, errors.New("therapist with this email already exists")
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted therapist ID")
	}
	return insertedID, nil
}

// GetByEmail retrieves a therapist by email address.
func (r *mongoTherapistRepository) GetByEmail(ctx context.Context, email string) (*domain.Therapist, error) {
	var therapist domain.Therapist
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&therapist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &therapist, nil
}

// GetByID retrieves a therapist by ID.
func (r *mongoTherapistRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Therapist, error) {
	var therapist domain.Therapist
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&therapist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &therapist, nil
}

// EnsureTherapistIndexes creates necessary indexes for the therapists collection.
// Call once during application startup.
func EnsureTherapistIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
