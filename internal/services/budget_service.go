package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// budgetService maintains the per-user budget aggregate.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// GetBudget returns the user's budget. A user with no budget row gets
// an all-zero budget that is NOT persisted; the row is only
// materialized when a real transaction mutates it.
func (s *budgetService) GetBudget(userID uint) (*models.Budget, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrUserNotFound
	}

	var budget models.Budget
	if err := s.db.Where("user_id = ?", userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ZeroBudget(userID), nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// GetRemaining returns the current remaining balance within the given
// database handle. A missing budget reads as zero.
func (s *budgetService) GetRemaining(tx *gorm.DB, userID uint) (int64, error) {
	var budget models.Budget
	if err := tx.Where("user_id = ?", userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget.RemainingBudget, nil
}

// ApplyAdjustment applies a transaction's effect to the user's budget.
// Income raises the remaining balance, expense lowers it, and the
// RemainingBudget == TotalIncome - TotalExpense invariant holds after
// every call. The budget row is created on first use (upsert).
// Must run inside the same database transaction as the ledger write
// it accompanies.
func (s *budgetService) ApplyAdjustment(tx *gorm.DB, userID uint, amount int64, transactionType models.TransactionType) error {
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	budget := models.ZeroBudget(userID)
	if err := tx.Where("user_id = ?", userID).First(budget).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	switch transactionType {
	case models.TransactionTypeIncome:
		budget.TotalIncome += amount
		budget.RemainingBudget += amount
	case models.TransactionTypeExpense:
		budget.TotalExpense += amount
		budget.RemainingBudget -= amount
	default:
		return apperrors.ErrInvalidTransactionType
	}

	if err := tx.Save(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RevertAdjustment removes a previously applied transaction's effect
// from the user's budget. The amount comes off the total for the
// transaction's original direction, so deleting an expense restores
// spending headroom without touching income, and deleting income can
// drive the remaining balance negative. The invariant
// RemainingBudget == TotalIncome - TotalExpense holds after every
// call. Must run inside the same database transaction as the ledger
// delete it accompanies.
func (s *budgetService) RevertAdjustment(tx *gorm.DB, userID uint, amount int64, transactionType models.TransactionType) error {
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	budget := models.ZeroBudget(userID)
	if err := tx.Where("user_id = ?", userID).First(budget).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	switch transactionType {
	case models.TransactionTypeIncome:
		budget.TotalIncome -= amount
		budget.RemainingBudget -= amount
	case models.TransactionTypeExpense:
		budget.TotalExpense -= amount
		budget.RemainingBudget += amount
	default:
		return apperrors.ErrInvalidTransactionType
	}

	if err := tx.Save(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
