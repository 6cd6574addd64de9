package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// maxReceiptImageSize bounds the uploaded image payload (8 MiB).
const maxReceiptImageSize = 8 << 20

// ReceiptHandler handles receipt scanning requests.
type ReceiptHandler struct {
	receiptService services.ReceiptServicer
	auditService   services.AuditServicer
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptService services.ReceiptServicer, auditService services.AuditServicer) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService, auditService: auditService}
}

// ScanReceipt extracts transactions from an uploaded receipt image
// @Summary     Scan a receipt
// @Description Extract transactions from a receipt image and record them through the ledger
// @Tags        receipts
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "Receipt image"
// @Success     200 {object} services.ImportResult "Import result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Extraction failed"
// @Router      /receipts/scan [post]
func (h *ReceiptHandler) ScanReceipt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "file is required"))
		return
	}
	if fileHeader.Size > maxReceiptImageSize {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "image exceeds the maximum allowed size"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxReceiptImageSize))
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	result, err := h.receiptService.ImportFromImage(c.Request.Context(), userID, image, mimeType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	for _, transaction := range result.Imported {
		h.auditService.Log(userID, "IMPORT_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
			map[string]any{"type": transaction.Type, "category": transaction.Category, "amount": transaction.Amount})
	}

	c.JSON(http.StatusOK, result)
}
