package servicerequestRepo

import (
	"context"

	"yawlit/models"
)

// ServiceRequestRepository defines methods for finalized booking records.
// Put takes the caller's context so the confirmation workflow can bound it.
type ServiceRequestRepository interface {
	// Put inserts a new service request record.
	Put(ctx context.Context, req *models.ServiceRequest) error
	// GetByID retrieves a service request by its unique ID.
	GetByID(id string) (*models.ServiceRequest, error)
	// GetByConversation retrieves all service requests for a conversation.
	GetByConversation(conversationID string) ([]models.ServiceRequest, error)
}
