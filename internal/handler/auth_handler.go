package handler

import (
	"go-finance-ledger/internal/commons/response"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/usecase"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
}

type AuthHandlerImpl struct {
	authService usecase.AuthUsecase
	logger      *logrus.Logger
	validator   *validator.Validate
}

func NewAuthHandler(authService usecase.AuthUsecase, logger *logrus.Logger, validator *validator.Validate) AuthHandler {
	return &AuthHandlerImpl{
		authService: authService,
		logger:      logger,
		validator:   validator,
	}
}

func (h *AuthHandlerImpl) Register(c *gin.Context) {
	var req params.RegisterRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	authResponse, custErr := h.authService.Register(c.Request.Context(), &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.CreatedSuccessWithPayload(authResponse)
	c.JSON(resp.StatusCode, resp)
}

func (h *AuthHandlerImpl) Login(c *gin.Context) {
	var req params.LoginRequest
	if !bindAndValidate(c, h.logger, h.validator, &req) {
		return
	}

	authResponse, custErr := h.authService.Login(c.Request.Context(), &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Success login user", authResponse)
	c.JSON(http.StatusOK, resp)
}
