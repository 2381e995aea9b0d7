// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/deskbank/deskbank/internal/domain"
	"github.com/deskbank/deskbank/pkg/errorspkg"
	"github.com/deskbank/deskbank/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, userID int64, accountType, initialDeposit string) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	GetByNumber(ctx context.Context, number string) (domain.Account, error)
	List(ctx context.Context, userID int64) ([]domain.Account, error)
	SetStatus(ctx context.Context, id int64, status string) (domain.Account, error)
	TotalBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
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

func respondError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrAccountNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case domain.ErrInvalidAmount, domain.ErrUnknownAccountType, domain.ErrUnknownAccountStatus:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case domain.ErrAccountNumberTaken:
		gctx.JSON(http.StatusConflict, web.Error(err))
	case domain.ErrStoreUnavailable:
		gctx.JSON(http.StatusServiceUnavailable, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type data struct {
	Account domain.Account `json:"account"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type createRequest struct {
	UserID         int64  `json:"user_id" binding:"required,min=1"`
	Type           string `json:"type" binding:"required,accounttype"`
	InitialDeposit string `json:"initial_deposit" binding:"required"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	createdAccount, err := h.service.Create(ctx, req.UserID, req.Type, req.InitialDeposit)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{createdAccount}})
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	acc, err := h.service.Get(ctx, req.ID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}

type getByNumberRequest struct {
	Number string `uri:"number" binding:"required"`
}

// GetByNumber handles http request to get account by its number.
func (h *Handler) GetByNumber(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req getByNumberRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	acc, err := h.service.GetByNumber(ctx, req.Number)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}

type listRequest struct {
	UserID int64 `form:"user_id" binding:"required,min=1"`
}

type dataAccounts struct {
	Accounts     []domain.Account `json:"accounts"`
	TotalBalance decimal.Decimal  `json:"total_balance"`
}

type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

// List handles http request to list a user's accounts with their total balance.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	accounts, err := h.service.List(ctx, req.UserID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	total, err := h.service.TotalBalance(ctx, req.UserID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseAccounts{Data: dataAccounts{Accounts: accounts, TotalBalance: total}})
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus handles http request to change account status.
func (h *Handler) SetStatus(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri getRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindingError(gctx, err)
		return
	}

	var req setStatusRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	acc, err := h.service.SetStatus(ctx, uri.ID, req.Status)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}
