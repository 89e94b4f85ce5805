package handler

import (
	"go-finance-ledger/internal/commons/response"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type GoalHandler interface {
	CreateGoal(c *gin.Context)
	ListGoals(c *gin.Context)
	GetGoal(c *gin.Context)
	AddContribution(c *gin.Context)
	ReleaseFunds(c *gin.Context)
	UpdateGoal(c *gin.Context)
	DeleteGoal(c *gin.Context)
}

type GoalHandlerImpl struct {
	usecase   usecase.GoalUsecase
	logger    *logrus.Logger
	validator *validator.Validate
}

func NewGoalHandler(usecase usecase.GoalUsecase, logger *logrus.Logger, validator *validator.Validate) GoalHandler {
	return &GoalHandlerImpl{
		usecase:   usecase,
		logger:    logger,
		validator: validator,
	}
}

func (h *GoalHandlerImpl) CreateGoal(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.CreateGoalRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	goal, custErr := h.usecase.CreateGoal(c.Request.Context(), userID, &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.CreatedSuccessWithPayload(goal)
	c.JSON(resp.StatusCode, resp)
}

func (h *GoalHandlerImpl) ListGoals(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}

	goals, custErr := h.usecase.ListGoals(c.Request.Context(), userID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Goals retrieved successfully", goals)
	c.JSON(resp.StatusCode, resp)
}

func (h *GoalHandlerImpl) GetGoal(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	goalID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	goal, custErr := h.usecase.GetGoal(c.Request.Context(), userID, goalID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Goal retrieved successfully", goal)
	c.JSON(resp.StatusCode, resp)
}

func (h *GoalHandlerImpl) AddContribution(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	goalID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	var req params.ContributionRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	contribution, custErr := h.usecase.AddContribution(c.Request.Context(), userID, goalID, &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.CreatedSuccessWithPayload(contribution)
	c.JSON(resp.StatusCode, resp)
}

func (h *GoalHandlerImpl) ReleaseFunds(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	goalID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	released, custErr := h.usecase.ReleaseFunds(c.Request.Context(), userID, goalID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Goal funds released successfully", released)
	c.JSON(resp.StatusCode, resp)
}

func (h *GoalHandlerImpl) UpdateGoal(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	goalID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	var req params.UpdateGoalRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	goal, custErr := h.usecase.UpdateGoal(c.Request.Context(), userID, goalID, &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Goal updated successfully", goal)
	c.JSON(resp.StatusCode, resp)
}

func (h *GoalHandlerImpl) DeleteGoal(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	goalID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	deleted, custErr := h.usecase.DeleteGoal(c.Request.Context(), userID, goalID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Goal deleted successfully", deleted)
	c.JSON(resp.StatusCode, resp)
}
