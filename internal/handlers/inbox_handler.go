package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"onlyanon/internal/auth"
	"onlyanon/internal/services"
)

// InboxHandler lets a creator read and answer their questions
type InboxHandler struct {
	replyService *services.ReplyService
	logger       *slog.Logger
}

// NewInboxHandler creates a new InboxHandler
func NewInboxHandler(replyService *services.ReplyService, logger *slog.Logger) *InboxHandler {
	return &InboxHandler{replyService: replyService, logger: logger}
}

// GetInbox lists questions for the creator
// GET /api/inbox?status=pending&limit=50&offset=0
func (h *InboxHandler) GetInbox(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.replyService.Inbox(c.Request.Context(), creatorID, c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"questions": items})
}

// ReplyToQuestion answers a pending question
// POST /api/inbox/:id/reply
func (h *InboxHandler) ReplyToQuestion(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.replyService.Reply(c.Request.Context(), creatorID, questionID, req.Text)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}
