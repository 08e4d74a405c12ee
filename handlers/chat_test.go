package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"yawlit/database/repository"
	"yawlit/services/conversation"
	"yawlit/services/response"
)

func newTestRouter(t *testing.T) (*gin.Engine, repository.ServiceRequestRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	requests, err := repository.NewFileServiceRequestRepo(t.TempDir())
	if err != nil {
		t.Fatalf("file repo: %v", err)
	}

	settings := conversation.DefaultSettings()
	manager := conversation.NewManager(conversation.NewMemoryContextStore())
	coordinator := conversation.NewExtractionCoordinator(nil, settings)
	workflow := conversation.NewConfirmationWorkflow(settings, requests)
	orchestrator := conversation.NewOrchestrator(settings, manager, coordinator,
		workflow, response.NewScriptedComposer())

	router := gin.New()
	ch := NewChatHandler(orchestrator, requests)
	router.POST("/api/chat", ch.HandleChat)
	router.POST("/api/chat/confirmation", ch.HandleConfirmationAction)
	router.GET("/api/requests/:id", ch.GetServiceRequestHandler)
	return router, requests
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatEndpointFullBookingFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	var convID string
	turns := []string{
		"Hello, my name is Ravi Kumar",
		"you can call 9876543210",
		"I drive a Honda City, plate MH12AB1234",
		"book the appointment for 2026-09-01",
		"yes",
	}

	var last conversation.TurnResult
	for _, msg := range turns {
		w := postJSON(t, router, "/api/chat", ChatRequest{ConversationID: convID, Message: msg})
		if w.Code != http.StatusOK {
			t.Fatalf("POST /api/chat %q: status %d, body %s", msg, w.Code, w.Body.String())
		}
		if err := json.Unmarshal(w.Body.Bytes(), &last); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if convID == "" {
			convID = last.ConversationID
			if convID == "" {
				t.Fatal("server did not assign a conversation id")
			}
		}
	}

	if last.State != "completed" {
		t.Fatalf("final state = %s, want completed", last.State)
	}
	if last.BookingID == "" {
		t.Fatal("no booking id returned")
	}

	// The persisted record is retrievable.
	req := httptest.NewRequest(http.MethodGet, "/api/requests/"+last.BookingID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET request: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestChatEndpointRejectsEmptyMessage(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(t, router, "/api/chat", map[string]string{"conversationId": "c1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty message: status %d, want 400", w.Code)
	}
}

func TestConfirmationActionEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	// Invalid action name.
	w := postJSON(t, router, "/api/chat/confirmation",
		ConfirmationActionRequest{ConversationID: "c1", Action: "approve"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid action: status %d, want 400", w.Code)
	}

	// Confirm with nothing awaiting confirmation is a conflict.
	w = postJSON(t, router, "/api/chat/confirmation",
		ConfirmationActionRequest{ConversationID: "c1", Action: "confirm"})
	if w.Code != http.StatusConflict {
		t.Fatalf("premature confirm: status %d, want 409", w.Code)
	}
}

func TestGetServiceRequestNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/requests/SR-DEADBEEF", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing record: status %d, want 404", w.Code)
	}
}
