package models

import "time"

// ServiceRequest is the immutable finalized booking record, created exactly
// once per conversation.
type ServiceRequest struct {
	ID                 string               `json:"serviceRequestId" bson:"id"`
	ConversationID     string               `json:"conversationId" bson:"conversationId"`
	Fields             map[FieldName]string `json:"fields" bson:"fields"`
	Status             string               `json:"status" bson:"status"` // always "confirmed"
	CreatedAt          time.Time            `json:"createdAt" bson:"createdAt"`
	ConfirmationMethod string               `json:"confirmationMethod" bson:"confirmationMethod"` // "chat" or "action"
}
