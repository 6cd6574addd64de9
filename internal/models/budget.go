package models

// Budget is the single running aggregate derived from a user's
// realized transactions. At most one row exists per user; the row is
// materialized lazily on the first transaction, so a missing budget
// reads as all zeroes. Invariant: RemainingBudget == TotalIncome -
// TotalExpense after every mutation.
type Budget struct {
	Base
	UserID          uint  `gorm:"not null;uniqueIndex" json:"user_id"`
	TotalIncome     int64 `gorm:"type:bigint;not null;default:0" json:"total_income"`
	TotalExpense    int64 `gorm:"type:bigint;not null;default:0" json:"total_expense"`
	RemainingBudget int64 `gorm:"type:bigint;not null;default:0" json:"remaining_budget"`
}

// ZeroBudget returns an unpersisted all-zero budget for a user that
// has no budget row yet.
func ZeroBudget(userID uint) *Budget {
	return &Budget{UserID: userID}
}
