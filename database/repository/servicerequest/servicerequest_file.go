package servicerequestRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"yawlit/models"
)

// FileServiceRequestRepo implements ServiceRequestRepository on the local
// filesystem, one JSON file per booking. It is the default store for
// development and demo runs where no MongoDB is available.
type FileServiceRequestRepo struct {
	mu  sync.Mutex
	dir string
}

// NewFileServiceRequestRepo creates the dump directory if needed.
func NewFileServiceRequestRepo(dir string) (ServiceRequestRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dump directory %s: %w", dir, err)
	}
	return &FileServiceRequestRepo{dir: dir}, nil
}

// Put writes the record to <dir>/<id>.json. The write goes through a temp
// file and rename so a crash never leaves a half-written booking.
func (r *FileServiceRequestRepo) Put(_ context.Context, req *models.ServiceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode service request %s: %w", req.ID, err)
	}

	final := filepath.Join(r.dir, req.ID+".json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("failed to write service request %s: %w", req.ID, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("failed to finalize service request %s: %w", req.ID, err)
	}
	return nil
}

// GetByID retrieves a service request by its unique ID.
func (r *FileServiceRequestRepo) GetByID(id string) (*models.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(r.dir, id+".json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read service request %s: %w", id, err)
	}
	var req models.ServiceRequest
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("failed to decode service request %s: %w", id, err)
	}
	return &req, nil
}

// GetByConversation retrieves all service requests for a conversation.
func (r *FileServiceRequestRepo) GetByConversation(conversationID string) ([]models.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list dump directory: %w", err)
	}

	var reqs []models.ServiceRequest
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(r.dir, e.Name()))
		if err != nil {
			continue
		}
		var req models.ServiceRequest
		if err := json.Unmarshal(b, &req); err != nil {
			continue
		}
		if req.ConversationID == conversationID {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}
