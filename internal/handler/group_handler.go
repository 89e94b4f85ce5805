package handler

import (
	"go-finance-ledger/internal/commons/response"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type GroupHandler interface {
	CreateGroup(c *gin.Context)
	GetGroup(c *gin.Context)
	JoinGroup(c *gin.Context)
	InviteMember(c *gin.Context)
	RemoveMember(c *gin.Context)
	CreateGroupGoal(c *gin.Context)
	Contribute(c *gin.Context)
}

type GroupHandlerImpl struct {
	usecase   usecase.GroupUsecase
	logger    *logrus.Logger
	validator *validator.Validate
}

func NewGroupHandler(usecase usecase.GroupUsecase, logger *logrus.Logger, validator *validator.Validate) GroupHandler {
	return &GroupHandlerImpl{
		usecase:   usecase,
		logger:    logger,
		validator: validator,
	}
}

func (h *GroupHandlerImpl) CreateGroup(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.CreateGroupRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	group, custErr := h.usecase.CreateGroup(c.Request.Context(), userID, &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.CreatedSuccessWithPayload(group)
	c.JSON(resp.StatusCode, resp)
}

func (h *GroupHandlerImpl) GetGroup(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	groupID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	group, custErr := h.usecase.GetGroup(c.Request.Context(), userID, groupID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Group retrieved successfully", group)
	c.JSON(resp.StatusCode, resp)
}

func (h *GroupHandlerImpl) JoinGroup(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.JoinGroupRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	group, custErr := h.usecase.JoinGroup(c.Request.Context(), userID, &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Joined group successfully", group)
	c.JSON(resp.StatusCode, resp)
}

func (h *GroupHandlerImpl) InviteMember(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	groupID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	var req params.InviteMemberRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	if custErr := h.usecase.InviteMember(c.Request.Context(), userID, groupID, &req); custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessage("Invitation sent")
	c.JSON(resp.StatusCode, resp)
}

func (h *GroupHandlerImpl) RemoveMember(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	groupID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := getUUIDParam(c, "member_id")
	if !ok {
		return
	}

	group, custErr := h.usecase.RemoveMember(c.Request.Context(), userID, groupID, memberID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Member removed", group)
	c.JSON(resp.StatusCode, resp)
}

func (h *GroupHandlerImpl) CreateGroupGoal(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	groupID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	var req params.CreateGroupGoalRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	goal, custErr := h.usecase.CreateGroupGoal(c.Request.Context(), userID, groupID, &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.CreatedSuccessWithPayload(goal)
	c.JSON(resp.StatusCode, resp)
}

func (h *GroupHandlerImpl) Contribute(c *gin.Context) {
	userID, ok := getUserIDFromContext(c, h.logger)
	if !ok {
		return
	}
	groupID, ok := getUUIDParam(c, "id")
	if !ok {
		return
	}

	var req params.GroupContributionRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	contribution, custErr := h.usecase.Contribute(c.Request.Context(), userID, groupID, req.Target(), &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.CreatedSuccessWithPayload(contribution)
	c.JSON(resp.StatusCode, resp)
}
