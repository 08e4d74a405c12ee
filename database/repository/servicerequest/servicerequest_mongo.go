package servicerequestRepo

import (
	"context"
	"fmt"
	"time"

	"yawlit/database"
	"yawlit/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoServiceRequestRepo implements ServiceRequestRepository using MongoDB.
type MongoServiceRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoServiceRequestRepo creates a new instance of ServiceRequestRepository
// using MongoDB.
func NewMongoServiceRequestRepo() ServiceRequestRepository {
	coll := database.MongoClient.Database("yawlit").Collection("service_requests")
	repo := &MongoServiceRequestRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoServiceRequestRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "conversationId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Put inserts a new service request record.
func (r *MongoServiceRequestRepo) Put(ctx context.Context, req *models.ServiceRequest) error {
	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to insert service request %s: %w", req.ID, err)
	}
	return nil
}

// GetByID retrieves a service request by its unique ID.
func (r *MongoServiceRequestRepo) GetByID(id string) (*models.ServiceRequest, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var req models.ServiceRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch service request %s: %w", id, err)
	}
	return &req, nil
}

// GetByConversation retrieves all service requests for a conversation.
func (r *MongoServiceRequestRepo) GetByConversation(conversationID string) ([]models.ServiceRequest, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"conversationId": conversationID})
	if err != nil {
		return nil, fmt.Errorf("failed to query service requests: %w", err)
	}
	defer cursor.Close(ctx)

	var reqs []models.ServiceRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("failed to decode service requests: %w", err)
	}
	return reqs, nil
}
