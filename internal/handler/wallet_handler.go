package handler

import (
	"go-finance-ledger/internal/commons/response"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type WalletHandler interface {
	GetWallet(c *gin.Context)
	Recompute(c *gin.Context)
	AddTransaction(c *gin.Context)
	UpdateTransaction(c *gin.Context)
	DeleteTransaction(c *gin.Context)
	GetTransactionHistory(c *gin.Context)
	AllocateToGoal(c *gin.Context)
	UpdateAllocation(c *gin.Context)
}

type WalletHandlerImpl struct {
	usecase   usecase.WalletUsecase
	logger    *logrus.Logger
	validator *validator.Validate
}

func NewWalletHandler(usecase usecase.WalletUsecase, logger *logrus.Logger, validator *validator.Validate) WalletHandler {
	return &WalletHandlerImpl{
		usecase:   usecase,
		logger:    logger,
		validator: validator,
	}
}

func (h *WalletHandlerImpl) GetWallet(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}

	walletResp, custErr := h.usecase.GetWallet(c.Request.Context(), userID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Wallet retrieved successfully", walletResp)
	c.JSON(resp.StatusCode, resp)
}

func (h *WalletHandlerImpl) Recompute(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}

	walletResp, custErr := h.usecase.Recompute(c.Request.Context(), userID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Wallet recomputed successfully", walletResp)
	c.JSON(resp.StatusCode, resp)
}

func (h *WalletHandlerImpl) AddTransaction(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.CreateTransactionRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	entry, custErr := h.usecase.AddTransaction(c.Request.Context(), userID, &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.CreatedSuccessWithPayload(entry)
	c.JSON(resp.StatusCode, resp)
}

func (h *WalletHandlerImpl) UpdateTransaction(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	transactionID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	var req params.UpdateTransactionRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	entry, custErr := h.usecase.UpdateTransaction(c.Request.Context(), userID, transactionID, &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Transaction updated successfully", entry)
	c.JSON(resp.StatusCode, resp)
}

func (h *WalletHandlerImpl) DeleteTransaction(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	transactionID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	entry, custErr := h.usecase.DeleteTransaction(c.Request.Context(), userID, transactionID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Transaction deleted successfully", entry)
	c.JSON(resp.StatusCode, resp)
}

func (h *WalletHandlerImpl) GetTransactionHistory(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}

	limit, offset := getPagination(c)

	transactions, custErr := h.usecase.GetTransactionHistory(c.Request.Context(), userID, limit, offset)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Transaction history retrieved successfully", transactions)
	c.JSON(resp.StatusCode, resp)
}

func (h *WalletHandlerImpl) AllocateToGoal(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.AllocateRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	allocation, custErr := h.usecase.AllocateToGoal(c.Request.Context(), userID, &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.CreatedSuccessWithPayload(allocation)
	c.JSON(resp.StatusCode, resp)
}

func (h *WalletHandlerImpl) UpdateAllocation(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	allocationID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	var req params.UpdateAllocationRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	allocation, custErr := h.usecase.UpdateAllocation(c.Request.Context(), userID, allocationID, &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Allocation updated successfully", allocation)
	c.JSON(resp.StatusCode, resp)
}
