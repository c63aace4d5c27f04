package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"onlyanon/internal/services"
)

// QuestionHandler serves the anonymous asker: submitting paid questions and
// redeeming access codes. Nothing identifying the asker is read or logged.
type QuestionHandler struct {
	questionService *services.QuestionService
	logger          *slog.Logger
}

// NewQuestionHandler creates a new QuestionHandler
func NewQuestionHandler(questionService *services.QuestionService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{questionService: questionService, logger: logger}
}

// SubmitQuestion stores a paid question and returns its access code
// POST /api/questions
func (h *QuestionHandler) SubmitQuestion(c *gin.Context) {
	var req struct {
		OfferingID       string `json:"offering_id" binding:"required"`
		Text             string `json:"text" binding:"required"`
		PaymentSignature string `json:"payment_signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offeringID, err := uuid.Parse(req.OfferingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offering id"})
		return
	}

	submitted, err := h.questionService.Submit(c.Request.Context(), services.SubmitQuestionInput{
		OfferingID:       offeringID,
		Text:             req.Text,
		PaymentSignature: req.PaymentSignature,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, submitted)
}

// RedeemCode resolves a code sent in the request body
// POST /api/questions/redeem
func (h *QuestionHandler) RedeemCode(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	// A malformed body is just another unknown code
	_ = c.ShouldBindJSON(&req)
	h.redeem(c, req.Code)
}

// GetByCode resolves a code from the path
// GET /api/questions/code/:code
func (h *QuestionHandler) GetByCode(c *gin.Context) {
	h.redeem(c, c.Param("code"))
}

func (h *QuestionHandler) redeem(c *gin.Context, code string) {
	c.Header("Cache-Control", "no-store")

	projection, err := h.questionService.Redeem(c.Request.Context(), code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, projection)
}
