package models

import "strings"

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// ParseTransactionType normalizes a raw direction string.
// Returns false when the value is neither income nor expense.
func ParseTransactionType(raw string) (TransactionType, bool) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(raw))) {
	case TransactionTypeIncome:
		return TransactionTypeIncome, true
	case TransactionTypeExpense:
		return TransactionTypeExpense, true
	}
	return "", false
}

// Category is the fixed set of transaction categories
type Category string

const (
	CategoryFood      Category = "food"
	CategoryTravel    Category = "travel"
	CategoryEducation Category = "education"
	CategoryBills     Category = "bills"
	CategorySalary    Category = "salary"
)

// ParseCategory maps a raw category string to one of the five valid
// categories. Unrecognized values fall back to food rather than
// failing; receipt extraction returns untrusted category strings.
func ParseCategory(raw string) Category {
	normalized := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch normalized {
	case CategoryFood, CategoryTravel, CategoryEducation, CategoryBills, CategorySalary:
		return normalized
	}
	return CategoryFood
}

// Transaction represents a realized financial event. Amounts are in
// integer cents. Transactions are immutable once created; the only
// lifecycle operation after creation is deletion, which reverses the
// budget adjustment.
type Transaction struct {
	Base
	UserID   uint            `gorm:"not null;index" json:"user_id"`
	Type     TransactionType `gorm:"not null" json:"type"`
	Category Category        `gorm:"not null" json:"category"`
	Amount   int64           `gorm:"type:bigint;not null" json:"amount"`
	Note     string          `json:"note,omitempty"`
}
