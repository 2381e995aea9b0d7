// Package ledgerdelivery manages delivery layer of ledger operations.
package ledgerdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/deskbank/deskbank/internal/domain"
	"github.com/deskbank/deskbank/pkg/errorspkg"
	"github.com/deskbank/deskbank/pkg/web"
)

// Service provides service layer interface needed by ledger delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ledgerdelivery
type Service interface {
	Deposit(ctx context.Context, accountID int64, amount, description string) (domain.EntryResult, error)
	Withdraw(ctx context.Context, accountID int64, amount, description string) (domain.EntryResult, error)
	Transfer(ctx context.Context, fromID, toID int64, amount, description string) (domain.TransferTxResult, error)
	ListTransactions(ctx context.Context, accountID int64, limit int32) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (domain.Transaction, error)
}

// Handler facilitates ledger delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns ledger handler.
func NewHandler(s Service) Handler {
	return Handler{service: s}
}

func bindingError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())

	errMsg := err.Error()

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		errMsg = field.Field() + web.GetErrorMsg(field)
	}

	l.Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.ErrorMessage(errMsg))
}

// statusCode maps domain errors to HTTP statuses. Callers must rely on
// the returned error kind, never on absence of an exception.
func statusCode(err error) int {
	switch err {
	case domain.ErrInvalidAmount, domain.ErrSelfTransfer:
		return http.StatusBadRequest
	case domain.ErrAccountNotFound, domain.ErrTransactionNotFound:
		return http.StatusNotFound
	case domain.ErrAccountNotEligible, domain.ErrDestinationNotEligible, domain.ErrInsufficientFunds:
		return http.StatusUnprocessableEntity
	case domain.ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(gctx *gin.Context, err error) {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		err = errorspkg.ErrInternal
	}

	gctx.JSON(code, web.Error(err))
}

type accountURI struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type amountRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

type entryData struct {
	Account     domain.Account     `json:"account"`
	Transaction domain.Transaction `json:"transaction"`
}

type entryResponse struct {
	Data entryData `json:"data,omitempty"`
}

// Deposit handles http request to deposit money into an account.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindingError(gctx, err)
		return
	}

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	result, err := h.service.Deposit(ctx, uri.ID, req.Amount, req.Description)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, entryResponse{
		Data: entryData{Account: result.Account, Transaction: result.Transaction},
	})
}

// Withdraw handles http request to withdraw money from an account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindingError(gctx, err)
		return
	}

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	result, err := h.service.Withdraw(ctx, uri.ID, req.Amount, req.Description)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, entryResponse{
		Data: entryData{Account: result.Account, Transaction: result.Transaction},
	})
}

type transferRequest struct {
	FromAccountID int64  `json:"from_account_id" binding:"required,min=1"`
	ToAccountID   int64  `json:"to_account_id" binding:"required,min=1"`
	Amount        string `json:"amount" binding:"required"`
	Description   string `json:"description"`
}

type transferData struct {
	Transfer domain.TransferTxResult `json:"transfer"`
}

type transferResponse struct {
	Data transferData `json:"data,omitempty"`
}

// Transfer handles http request to move money between two accounts.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	result, err := h.service.Transfer(ctx, req.FromAccountID, req.ToAccountID, req.Amount, req.Description)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, transferResponse{Data: transferData{Transfer: result}})
}

type listRequest struct {
	Limit int32 `form:"limit" binding:"omitempty,min=1,max=100"`
}

type transactionsData struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type transactionsResponse struct {
	Data transactionsData `json:"data,omitempty"`
}

// ListTransactions handles http request to get an account's history.
func (h *Handler) ListTransactions(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindingError(gctx, err)
		return
	}

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	transactions, err := h.service.ListTransactions(ctx, uri.ID, req.Limit)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, transactionsResponse{Data: transactionsData{Transactions: transactions}})
}

type transactionURI struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type transactionData struct {
	Transaction domain.Transaction `json:"transaction"`
}

type transactionResponse struct {
	Data transactionData `json:"data,omitempty"`
}

// GetTransaction handles http request to get a single ledger entry.
func (h *Handler) GetTransaction(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri transactionURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindingError(gctx, err)
		return
	}

	transaction, err := h.service.GetTransaction(ctx, uri.ID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, transactionResponse{Data: transactionData{Transaction: transaction}})
}
