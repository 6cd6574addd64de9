package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// scheduledTransactionService stores future-dated transactions.
// Scheduling is an intent, not a realized transaction: the budget is
// never touched here.
type scheduledTransactionService struct {
	db *gorm.DB
}

// NewScheduledTransactionService creates a new ScheduledTransactionServicer.
func NewScheduledTransactionService(db *gorm.DB) ScheduledTransactionServicer {
	return &scheduledTransactionService{db: db}
}

// Schedule persists a future transaction with the reminder flag unset.
// The scheduled date is normalized to the start of its calendar day.
func (s *scheduledTransactionService) Schedule(
	userID uint,
	transactionType models.TransactionType,
	category models.Category,
	amount int64,
	note string,
	scheduledDate time.Time,
) (*models.ScheduledTransaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if transactionType != models.TransactionTypeIncome && transactionType != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}

	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	scheduled := &models.ScheduledTransaction{
		UserID:      userID,
		Type:        transactionType,
		Category:    category,
		Amount:      amount,
		Note:        note,
		ScheduledAt: startOfDay(scheduledDate),
		Notified:    false,
	}

	if err := s.db.Create(scheduled).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return scheduled, nil
}

// GetUserScheduled returns all scheduled transactions owned by the user.
func (s *scheduledTransactionService) GetUserScheduled(userID uint) ([]models.ScheduledTransaction, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	var scheduled []models.ScheduledTransaction
	if err := s.db.Where("user_id = ?", userID).Find(&scheduled).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return scheduled, nil
}

func (s *scheduledTransactionService) requireUser(userID uint) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// startOfDay truncates a timestamp to midnight of its calendar day.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
