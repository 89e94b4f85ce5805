package handler

import (
	"go-finance-ledger/internal/commons/response"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type ExpenseHandler interface {
	CreateExpense(c *gin.Context)
	UpdateExpense(c *gin.Context)
	DeleteExpense(c *gin.Context)
	GetExpense(c *gin.Context)
	ListExpenses(c *gin.Context)
	GetStatistics(c *gin.Context)
	ListCategories(c *gin.Context)
}

type ExpenseHandlerImpl struct {
	expenses   usecase.ExpenseUsecase
	categories usecase.CategoryUsecase
	logger     *logrus.Logger
	validator  *validator.Validate
}

func NewExpenseHandler(expenses usecase.ExpenseUsecase, categories usecase.CategoryUsecase, logger *logrus.Logger, validator *validator.Validate) ExpenseHandler {
	return &ExpenseHandlerImpl{
		expenses:   expenses,
		categories: categories,
		logger:     logger,
		validator:  validator,
	}
}

func (h *ExpenseHandlerImpl) CreateExpense(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.ExpenseRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	expense, custErr := h.expenses.CreateExpense(c.Request.Context(), userID, &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.CreatedSuccessWithPayload(expense)
	c.JSON(resp.StatusCode, resp)
}

func (h *ExpenseHandlerImpl) UpdateExpense(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	expenseID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	var req params.ExpenseRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	expense, custErr := h.expenses.UpdateExpense(c.Request.Context(), userID, expenseID, &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Expense updated successfully", expense)
	c.JSON(resp.StatusCode, resp)
}

func (h *ExpenseHandlerImpl) DeleteExpense(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	expenseID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	result, custErr := h.expenses.DeleteExpense(c.Request.Context(), userID, expenseID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Expense deleted successfully", result)
	c.JSON(resp.StatusCode, resp)
}

func (h *ExpenseHandlerImpl) GetExpense(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	expenseID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	expense, custErr := h.expenses.GetExpense(c.Request.Context(), userID, expenseID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Expense retrieved successfully", expense)
	c.JSON(resp.StatusCode, resp)
}

func (h *ExpenseHandlerImpl) ListExpenses(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}

	limit, offset := getPagination(c)
	filter := params.ExpenseFilter{
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	}

	expenses, custErr := h.expenses.ListExpenses(c.Request.Context(), userID, filter)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Expenses retrieved successfully", expenses)
	c.JSON(resp.StatusCode, resp)
}

func (h *ExpenseHandlerImpl) GetStatistics(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}

	stats, custErr := h.expenses.Statistics(c.Request.Context(), userID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Expense statistics retrieved successfully", stats)
	c.JSON(resp.StatusCode, resp)
}

func (h *ExpenseHandlerImpl) ListCategories(c *gin.Context) {
	categories, custErr := h.categories.List(c.Request.Context())
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Categories retrieved successfully", categories)
	c.JSON(resp.StatusCode, resp)
}
