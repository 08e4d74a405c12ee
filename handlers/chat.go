package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"yawlit/database/repository"
	"yawlit/models"
	"yawlit/services/conversation"
	"yawlit/utils"
)

// ChatRequest is the input for one conversational turn. An empty
// conversationId starts a new conversation.
type ChatRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message" binding:"required"`
}

// ConfirmationActionRequest is an explicit action on the confirmation card.
type ConfirmationActionRequest struct {
	ConversationID string `json:"conversationId" binding:"required"`
	Action         string `json:"action" binding:"required"` // confirm, edit, cancel
}

// ChatHandler exposes the conversation engine over HTTP.
type ChatHandler struct {
	Orchestrator *conversation.Orchestrator
	Requests     repository.ServiceRequestRepository
}

func NewChatHandler(orc *conversation.Orchestrator, requests repository.ServiceRequestRepository) *ChatHandler {
	return &ChatHandler{Orchestrator: orc, Requests: requests}
}

// HandleChat processes one user message and returns the assistant reply with
// the current conversation state.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	logger := utils.GetLogger()

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid chat request", err.Error())
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.New().String()
	}

	result, err := h.Orchestrator.ProcessTurn(c.Request.Context(), req.ConversationID, req.Message)
	if err != nil {
		logger.Error("turn processing failed",
			zap.String("conversationId", req.ConversationID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to process message", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleConfirmationAction applies a confirm, edit, or cancel action from the
// confirmation card.
func (h *ChatHandler) HandleConfirmationAction(c *gin.Context) {
	var req ConfirmationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid confirmation action", err.Error())
		return
	}

	action := models.ConfirmationAction(req.Action)
	switch action {
	case models.ActionConfirm, models.ActionEdit, models.ActionCancel:
	default:
		utils.JSONError(c, http.StatusBadRequest, "Invalid confirmation action", "action must be confirm, edit, or cancel")
		return
	}

	result, err := h.Orchestrator.HandleAction(c.Request.Context(), req.ConversationID, action)
	if err != nil {
		if conversation.IsValidationError(err) {
			utils.JSONError(c, http.StatusConflict, "Confirmation action rejected", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "Failed to apply action", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetServiceRequestHandler returns a finalized booking record by id.
func (h *ChatHandler) GetServiceRequestHandler(c *gin.Context) {
	id := c.Param("id")
	req, err := h.Requests.GetByID(id)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch service request", err.Error())
		return
	}
	if req == nil {
		utils.JSONError(c, http.StatusNotFound, "Service request not found", id)
		return
	}
	c.JSON(http.StatusOK, req)
}
