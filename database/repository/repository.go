package repository

import (
	servicerequestRepo "yawlit/database/repository/servicerequest"
)

// Re-export the ServiceRequestRepository interface and constructors.
type ServiceRequestRepository = servicerequestRepo.ServiceRequestRepository

var NewMongoServiceRequestRepo = servicerequestRepo.NewMongoServiceRequestRepo

var NewFileServiceRequestRepo = servicerequestRepo.NewFileServiceRequestRepo
