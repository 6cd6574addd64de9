package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// AdviceHandler handles financial advice requests.
type AdviceHandler struct {
	adviceService services.AdviceServicer
}

// NewAdviceHandler creates a new AdviceHandler.
func NewAdviceHandler(adviceService services.AdviceServicer) *AdviceHandler {
	return &AdviceHandler{adviceService: adviceService}
}

// AskAdviceRequest is the request body for asking financial advice.
type AskAdviceRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask answers a financial question from the user's recent activity
// @Summary     Ask for financial advice
// @Description Answer a finance question using the last 30 days of transactions and the budget summary
// @Tags        advice
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AskAdviceRequest true "Question"
// @Success     200 {object} map[string]string "Advice"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     502 {object} ErrorResponse "Advice generation failed"
// @Router      /advice [post]
func (h *AdviceHandler) Ask(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AskAdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "question is required"))
		return
	}

	advice, err := h.adviceService.GetAdvice(c.Request.Context(), userID, req.Question)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"advice": advice})
}
