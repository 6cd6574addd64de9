package services

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// userLocks serializes ledger writes per user so two concurrent debits
// cannot both observe a stale sufficient balance. Cross-user
// operations never contend.
type userLocks struct {
	locks sync.Map // userID -> *sync.Mutex
}

func (l *userLocks) lock(userID uint) *sync.Mutex {
	mu, _ := l.locks.LoadOrStore(userID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m
}

// transactionService owns the transaction lifecycle and the
// insufficient-funds guard; aggregate maintenance is delegated to the
// budget service.
type transactionService struct {
	db            *gorm.DB
	budgetService BudgetServicer
	locks         userLocks
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, budgetService BudgetServicer) TransactionServicer {
	return &transactionService{
		db:            db,
		budgetService: budgetService,
	}
}

// GetUserTransactions retrieves a paginated list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// AddTransaction records a new transaction and applies its budget
// adjustment. An expense is rejected with INSUFFICIENT_FUNDS when the
// remaining balance is below the amount; an amount exactly equal to
// the remaining balance passes. Rejection leaves both the ledger and
// the budget untouched.
func (s *transactionService) AddTransaction(
	userID uint,
	transactionType models.TransactionType,
	category models.Category,
	amount int64,
	note string,
) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if transactionType != models.TransactionTypeIncome && transactionType != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}

	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	// Serialize the read-check-write sequence per user.
	mu := s.locks.lock(userID)
	defer mu.Unlock()

	transaction := &models.Transaction{
		UserID:   userID,
		Type:     transactionType,
		Category: category,
		Amount:   amount,
		Note:     note,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if transactionType == models.TransactionTypeExpense {
			remaining, err := s.budgetService.GetRemaining(tx, userID)
			if err != nil {
				return err
			}
			if remaining < amount {
				return apperrors.InsufficientFunds(remaining)
			}
		}

		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.budgetService.ApplyAdjustment(tx, userID, amount, transactionType)
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// DeleteTransaction removes a transaction and restores the budget to
// the state it would have had if the transaction had never existed,
// by reverting the original adjustment with the original amount and
// direction.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	var transaction models.Transaction
	if err := s.db.First(&transaction, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTransactionNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if transaction.UserID != userID {
		return apperrors.ErrForbidden
	}

	mu := s.locks.lock(transaction.UserID)
	defer mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&transaction)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		// Another request may have deleted the row between the lookup
		// and taking the lock. Reverting the budget twice for one
		// transaction would corrupt the aggregate.
		if res.RowsAffected == 0 {
			return apperrors.ErrTransactionNotFound
		}

		return s.budgetService.RevertAdjustment(tx, transaction.UserID, transaction.Amount, transaction.Type)
	})
}

// requireUser fails with USER_NOT_FOUND when the user does not exist.
func (s *transactionService) requireUser(userID uint) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
