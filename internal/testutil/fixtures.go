package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestUserWithPhone creates a user with the given phone number.
func CreateTestUserWithPhone(t *testing.T, db *gorm.DB, phoneNumber string) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	if err := db.Model(user).Update("phone_number", phoneNumber).Error; err != nil {
		t.Fatalf("failed to set test user phone number: %v", err)
	}
	user.PhoneNumber = phoneNumber
	return user
}

// CreateTestTransaction creates a transaction without touching the budget.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, transactionType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		UserID:   userID,
		Type:     transactionType,
		Category: models.CategoryBills,
		Amount:   amount,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// CreateTestScheduledTransaction creates a scheduled transaction due at the given time.
func CreateTestScheduledTransaction(t *testing.T, db *gorm.DB, userID uint, scheduledAt time.Time, note string) *models.ScheduledTransaction {
	t.Helper()

	scheduled := &models.ScheduledTransaction{
		UserID:      userID,
		Type:        models.TransactionTypeExpense,
		Category:    models.CategoryBills,
		Amount:      2500,
		Note:        note,
		ScheduledAt: scheduledAt,
		Notified:    false,
	}
	if err := db.Create(scheduled).Error; err != nil {
		t.Fatalf("failed to create test scheduled transaction: %v", err)
	}
	return scheduled
}
