package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// scheduledDateLayout is the expected format of the scheduled_date field.
const scheduledDateLayout = "2006-01-02"

// ScheduledTransactionHandler handles scheduled transaction requests.
type ScheduledTransactionHandler struct {
	scheduledService services.ScheduledTransactionServicer
	auditService     services.AuditServicer
}

// NewScheduledTransactionHandler creates a new ScheduledTransactionHandler.
func NewScheduledTransactionHandler(scheduledService services.ScheduledTransactionServicer, auditService services.AuditServicer) *ScheduledTransactionHandler {
	return &ScheduledTransactionHandler{scheduledService: scheduledService, auditService: auditService}
}

// ScheduleTransactionRequest represents the request payload for scheduling a transaction
type ScheduleTransactionRequest struct {
	Type          models.TransactionType `json:"type" binding:"required,transaction_type"`
	Category      models.Category        `json:"category" binding:"required,category"`
	Amount        int64                  `json:"amount" binding:"required,gt=0"`
	Note          string                 `json:"note" binding:"max=500"`
	ScheduledDate string                 `json:"scheduled_date" binding:"required"`
}

// ScheduleTransaction records a future-dated transaction intent
// @Summary     Schedule a transaction
// @Description Schedule a future transaction; the budget is not affected
// @Tags        scheduled-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ScheduleTransactionRequest true "Scheduled transaction details"
// @Success     201 {object} models.ScheduledTransaction "Scheduled transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /scheduled-transactions [post]
func (h *ScheduledTransactionHandler) ScheduleTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ScheduleTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	scheduledDate, err := time.ParseInLocation(scheduledDateLayout, req.ScheduledDate, time.Local)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "scheduled_date must be in YYYY-MM-DD format"))
		return
	}

	scheduled, err := h.scheduledService.Schedule(userID, req.Type, req.Category, req.Amount, req.Note, scheduledDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SCHEDULE_TRANSACTION", "scheduled_transaction", scheduled.ID, c.ClientIP(),
		map[string]any{"type": req.Type, "amount": req.Amount, "scheduled_date": req.ScheduledDate})

	c.JSON(http.StatusCreated, gin.H{"scheduled_transaction": scheduled})
}

// GetUserScheduledTransactions lists the user's scheduled transactions
// @Summary     List scheduled transactions
// @Description Get all scheduled transactions for the authenticated user
// @Tags        scheduled-transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]any "Scheduled transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /scheduled-transactions [get]
func (h *ScheduledTransactionHandler) GetUserScheduledTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	scheduled, err := h.scheduledService.GetUserScheduled(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"scheduled_transactions": scheduled})
}
