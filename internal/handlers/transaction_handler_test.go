package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// --- mock transaction and budget services ---

type mockTransactionService struct {
	getUserTransactionsFn func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	addTransactionFn      func(userID uint, transactionType models.TransactionType, category models.Category, amount int64, note string) (*models.Transaction, error)
	deleteTransactionFn   func(userID, transactionID uint) error
}

func (m *mockTransactionService) GetUserTransactions(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) AddTransaction(userID uint, transactionType models.TransactionType, category models.Category, amount int64, note string) (*models.Transaction, error) {
	if m.addTransactionFn != nil {
		return m.addTransactionFn(userID, transactionType, category, amount, note)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID uint) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

type mockBudgetService struct {
	getBudgetFn func(userID uint) (*models.Budget, error)
}

func (m *mockBudgetService) GetBudget(userID uint) (*models.Budget, error) {
	if m.getBudgetFn != nil {
		return m.getBudgetFn(userID)
	}
	return models.ZeroBudget(userID), nil
}

func (m *mockBudgetService) GetRemaining(_ *gorm.DB, _ uint) (int64, error) { return 0, nil }

func (m *mockBudgetService) ApplyAdjustment(_ *gorm.DB, _ uint, _ int64, _ models.TransactionType) error {
	return nil
}

func (m *mockBudgetService) RevertAdjustment(_ *gorm.DB, _ uint, _ int64, _ models.TransactionType) error {
	return nil
}

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.GET("/transactions", handler.GetUserTransactions)
	auth.POST("/transactions", handler.CreateTransaction)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	auth.GET("/budget", handler.GetBudget)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		txSvc := &mockTransactionService{
			addTransactionFn: func(userID uint, txType models.TransactionType, category models.Category, amount int64, note string) (*models.Transaction, error) {
				return &models.Transaction{
					Base:     models.Base{ID: 1},
					UserID:   userID,
					Type:     txType,
					Category: category,
					Amount:   amount,
					Note:     note,
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockBudgetService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"income","category":"salary","amount":5000,"note":"Salary"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		tx := result["transaction"].(map[string]interface{})
		if tx["amount"].(float64) != 5000 {
			t.Errorf("expected amount 5000, got %v", tx["amount"])
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockBudgetService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","category":"food","amount":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockBudgetService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"transfer","category":"food","amount":1000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid category", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockBudgetService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","category":"gambling","amount":1000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 with remaining on insufficient funds", func(t *testing.T) {
		txSvc := &mockTransactionService{
			addTransactionFn: func(_ uint, _ models.TransactionType, _ models.Category, _ int64, _ string) (*models.Transaction, error) {
				return nil, apperrors.InsufficientFunds(250)
			},
		}
		handler := NewTransactionHandler(txSvc, &mockBudgetService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","category":"bills","amount":1000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "INSUFFICIENT_FUNDS")
		errObj := result["error"].(map[string]interface{})
		details := errObj["details"].(map[string]interface{})
		if details["remaining_budget"].(float64) != 250 {
			t.Errorf("expected remaining_budget 250 in details, got %v", details["remaining_budget"])
		}
	})

	t.Run("returns 404 when user not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			addTransactionFn: func(_ uint, _ models.TransactionType, _ models.Category, _ int64, _ string) (*models.Transaction, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		handler := NewTransactionHandler(txSvc, &mockBudgetService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"income","category":"salary","amount":1000}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockBudgetService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on non-numeric id", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockBudgetService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_, _ uint) error { return apperrors.ErrTransactionNotFound },
		}
		handler := NewTransactionHandler(txSvc, &mockBudgetService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/999", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("returns 403 for another users transaction", func(t *testing.T) {
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_, _ uint) error { return apperrors.ErrForbidden },
		}
		handler := NewTransactionHandler(txSvc, &mockBudgetService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/2", "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetBudget(t *testing.T) {
	t.Run("returns budget", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			getBudgetFn: func(userID uint) (*models.Budget, error) {
				return &models.Budget{
					UserID:          userID,
					TotalIncome:     5000,
					TotalExpense:    1200,
					RemainingBudget: 3800,
				}, nil
			},
		}
		handler := NewTransactionHandler(&mockTransactionService{}, budgetSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/budget", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		budget := result["budget"].(map[string]interface{})
		if budget["remaining_budget"].(float64) != 3800 {
			t.Errorf("expected remaining_budget 3800, got %v", budget["remaining_budget"])
		}
	})

	t.Run("returns 404 when user not found", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			getBudgetFn: func(_ uint) (*models.Budget, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		handler := NewTransactionHandler(&mockTransactionService{}, budgetSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/budget", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
