package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// adviceLookback bounds how much ledger history feeds the prompt.
const adviceLookback = 30 * 24 * time.Hour

const advicePreamble = `You are a smart financial assistant.
IMPORTANT SYSTEM RULES:
You are a financial assistant ONLY.
You ONLY answer questions about budgeting, savings, expenses, income,
financial advice, spending habits, basic investments, expense analysis,
money management, and the user's financial data.

You MUST refuse all questions unrelated to finance. If the user asks
something unrelated, reply with:

"I'm here only to help with your finances, budgets, expenses, and money management."

Never break these rules. All amounts below are integers in cents.
`

// adviceService answers financial questions by summarizing the user's
// last 30 days of transactions plus the budget aggregate into a prompt
// for the text-generation model. The model only ever sees amounts,
// categories, and notes, never credentials or contact details.
type adviceService struct {
	db            *gorm.DB
	budgetService BudgetServicer
	model         AdviceModel
}

// NewAdviceService creates a new AdviceServicer.
func NewAdviceService(db *gorm.DB, budgetService BudgetServicer, model AdviceModel) AdviceServicer {
	return &adviceService{
		db:            db,
		budgetService: budgetService,
		model:         model,
	}
}

// GetAdvice builds the prompt from the user's recent activity and asks
// the model. A user without a persisted budget gets the zero aggregate.
func (s *adviceService) GetAdvice(ctx context.Context, userID uint, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "question must not be empty")
	}

	// Also covers the user-existence check.
	budget, err := s.budgetService.GetBudget(userID)
	if err != nil {
		return "", err
	}

	since := time.Now().Add(-adviceLookback)
	var transactions []models.Transaction
	if err := s.db.Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	answer, err := s.model.Generate(ctx, buildAdvicePrompt(budget, transactions, question))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrAdviceFailed, err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", apperrors.ErrAdviceFailed
	}
	return answer, nil
}

func buildAdvicePrompt(budget *models.Budget, transactions []models.Transaction, question string) string {
	var b strings.Builder
	b.WriteString(advicePreamble)

	b.WriteString("\nUser transactions for the last 30 days:\n")
	if len(transactions) == 0 {
		b.WriteString("No transactions recorded.\n")
	} else {
		for _, tx := range transactions {
			note := tx.Note
			if note == "" {
				note = "N/A"
			}
			fmt.Fprintf(&b, "- %s | %s | %s | %d | Note: %s\n",
				tx.CreatedAt.Format("2006-01-02"), tx.Type, tx.Category, tx.Amount, note)
		}
	}

	fmt.Fprintf(&b, "Total income: %d\n", budget.TotalIncome)
	fmt.Fprintf(&b, "Total expenses: %d\n", budget.TotalExpense)
	fmt.Fprintf(&b, "Remaining budget: %d\n", budget.RemainingBudget)

	fmt.Fprintf(&b, "\nUser question: %s\n", question)
	b.WriteString("Answer in a clear, concise, and friendly way.")
	return b.String()
}
