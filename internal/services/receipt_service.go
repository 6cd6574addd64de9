package services

import (
	"context"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// receiptService turns a receipt image into ledger transactions. Each
// extracted candidate goes through the ordinary AddTransaction path,
// so the insufficient-funds guard and budget effects are identical to
// a manually entered transaction. A rejected candidate never stops
// the rest of the batch.
type receiptService struct {
	extractor          ReceiptExtractor
	transactionService TransactionServicer
}

// NewReceiptService creates a new ReceiptServicer.
func NewReceiptService(extractor ReceiptExtractor, transactionService TransactionServicer) ReceiptServicer {
	return &receiptService{
		extractor:          extractor,
		transactionService: transactionService,
	}
}

// ImportFromImage extracts candidate transactions from an image and
// records the ones that pass the ledger's checks. Extraction failure
// fails the whole request; per-candidate failures are collected in
// the result.
func (s *receiptService) ImportFromImage(ctx context.Context, userID uint, image []byte, mimeType string) (*ImportResult, error) {
	if len(image) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "image payload is empty")
	}

	candidates, err := s.extractor.Extract(ctx, image, mimeType)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExtractionFailed, err)
	}

	result := &ImportResult{}
	for _, candidate := range candidates {
		transactionType, ok := models.ParseTransactionType(candidate.Type)
		if !ok {
			result.Skipped = append(result.Skipped, SkippedCandidate{
				Candidate: candidate,
				Reason:    "unsupported transaction type",
			})
			continue
		}

		// The extractor's category string is untrusted; anything
		// outside the valid set maps to the default category.
		category := models.ParseCategory(candidate.Category)

		transaction, err := s.transactionService.AddTransaction(userID, transactionType, category, candidate.Amount, candidate.Note)
		if err != nil {
			logger.Get().Warnw("skipping receipt candidate",
				"user_id", userID,
				"amount", candidate.Amount,
				"error", err,
			)
			result.Skipped = append(result.Skipped, SkippedCandidate{
				Candidate: candidate,
				Reason:    err.Error(),
			})
			continue
		}

		result.Imported = append(result.Imported, *transaction)
	}

	return result, nil
}
