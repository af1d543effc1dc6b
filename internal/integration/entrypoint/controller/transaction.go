// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/client/internal/application/store"
	"github.com/finance-tracker/client/internal/application/usecase/transaction"
	domainerror "github.com/finance-tracker/client/internal/domain/error"
	"github.com/finance-tracker/client/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/client/internal/integration/entrypoint/middleware"
)

// TransactionController handles transaction endpoints.
type TransactionController struct {
	submitUseCase *transaction.SubmitTransactionUseCase
	txStore       *store.TransactionStore
}

// NewTransactionController creates a new transaction controller instance.
func NewTransactionController(
	submitUseCase *transaction.SubmitTransactionUseCase,
	txStore *store.TransactionStore,
) *TransactionController {
	return &TransactionController{
		submitUseCase: submitUseCase,
		txStore:       txStore,
	}
}

// Create handles POST /transactions requests.
func (c *TransactionController) Create(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Authentication required",
			Code:  string(domainerror.ErrCodeUnauthenticated),
		})
		return
	}

	var req dto.SubmitTransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeEmptyDescription),
		})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "amount must be a decimal number",
			Code:    string(domainerror.ErrCodeInvalidTransactionAmount),
			Details: "amount",
		})
		return
	}

	input := transaction.SubmitTransactionInput{
		UserID:      userID,
		Type:        req.Type,
		Description: req.Description,
		Amount:      amount,
		Category:    req.Category,
		Date:        req.Date,
	}

	output, err := c.submitUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleTransactionError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToTransactionResponse(output.Transaction))
}

// List handles GET /transactions requests. It serves the store snapshot: the
// current collection plus the aggregate derived from it.
func (c *TransactionController) List(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Authentication required",
			Code:  string(domainerror.ErrCodeUnauthenticated),
		})
		return
	}

	snapshot := c.txStore.Snapshot()
	if snapshot.UserID != userID {
		// Token outlived the session it was issued for.
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Session is no longer active",
			Code:  string(domainerror.ErrCodeUnauthenticated),
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTransactionListResponse(snapshot))
}

// handleTransactionError maps domain errors to HTTP responses.
func (c *TransactionController) handleTransactionError(ctx *gin.Context, err error) {
	var validationErr *domainerror.ValidationError
	if errors.As(err, &validationErr) {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   validationErr.Message,
			Code:    string(validationErr.Code),
			Details: validationErr.Field,
		})
		return
	}

	var authErr *domainerror.AuthError
	if errors.As(err, &authErr) {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: authErr.Message,
			Code:  string(authErr.Code),
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}
