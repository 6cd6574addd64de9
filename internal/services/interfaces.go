package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name, phoneNumber string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	UpdatePhoneNumber(userID uint, phoneNumber string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// BudgetServicer defines the contract for budget aggregate maintenance.
type BudgetServicer interface {
	// GetBudget returns the user's budget, or an unpersisted zero
	// budget if none exists yet.
	GetBudget(userID uint) (*models.Budget, error)
	// GetRemaining returns the current remaining balance, treating a
	// missing budget as zero.
	GetRemaining(tx *gorm.DB, userID uint) (int64, error)
	// ApplyAdjustment applies a transaction's effect to the user's
	// budget inside the given database transaction, creating the
	// budget row on first use.
	ApplyAdjustment(tx *gorm.DB, userID uint, amount int64, transactionType models.TransactionType) error
	// RevertAdjustment removes a previously applied transaction's
	// effect, subtracting the amount from the total for the
	// transaction's original direction.
	RevertAdjustment(tx *gorm.DB, userID uint, amount int64, transactionType models.TransactionType) error
}

// TransactionServicer defines the contract for the transaction ledger.
type TransactionServicer interface {
	GetUserTransactions(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	AddTransaction(userID uint, transactionType models.TransactionType, category models.Category, amount int64, note string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
}

// ScheduledTransactionServicer defines the contract for future-dated transactions.
type ScheduledTransactionServicer interface {
	Schedule(userID uint, transactionType models.TransactionType, category models.Category, amount int64, note string, scheduledDate time.Time) (*models.ScheduledTransaction, error)
	GetUserScheduled(userID uint) ([]models.ScheduledTransaction, error)
}

// Candidate is a single transaction extracted from a receipt image.
// Category is untrusted and may fall outside the valid set.
type Candidate struct {
	Amount   int64  `json:"amount"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Note     string `json:"note"`
}

// ReceiptExtractor is the boundary to the external OCR/LLM service.
type ReceiptExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) ([]Candidate, error)
}

// ImportResult reports the outcome of a receipt import.
type ImportResult struct {
	Imported []models.Transaction `json:"imported"`
	Skipped  []SkippedCandidate   `json:"skipped,omitempty"`
}

// SkippedCandidate records a candidate that could not be imported and why.
type SkippedCandidate struct {
	Candidate Candidate `json:"candidate"`
	Reason    string    `json:"reason"`
}

// ReceiptServicer defines the contract for importing transactions from
// receipt images.
type ReceiptServicer interface {
	ImportFromImage(ctx context.Context, userID uint, image []byte, mimeType string) (*ImportResult, error)
}

// AdviceModel is the boundary to the external text-generation service
// used for financial advice.
type AdviceModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AdviceServicer defines the contract for answering financial
// questions from a user's recent activity.
type AdviceServicer interface {
	GetAdvice(ctx context.Context, userID uint, question string) (string, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]any)
}
