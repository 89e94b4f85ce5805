package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// bindAndValidate decodes the JSON body into req and runs the struct
// validator. It writes the 400 response itself and reports whether the
// caller may continue.
func bindAndValidate(c *gin.Context, logger *logrus.Logger, v *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.WithError(err).WithField("path", c.FullPath()).Error("Invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Invalid JSON format",
		})
		return false
	}

	if err := v.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			logger.WithError(err).Error("Failed to validate request")
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  false,
				"message": "Validation failed",
			})
			return false
		}

		details := make(map[string]string)
		for _, fe := range validationErrors {
			details[fe.Field()] = getValidationErrorMessage(fe)
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Validation failed",
			"errors":  details,
		})
		return false
	}
	return true
}

func getUserIDFromContext(c *gin.Context, logger *logrus.Logger) (uuid.UUID, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		logger.Error("user_id not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  false,
			"message": "Unauthorized",
		})
		return uuid.Nil, false
	}

	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		logger.Error("user_id in context is not uuid.UUID")
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  false,
			"message": "Unauthorized",
		})
		return uuid.Nil, false
	}

	return userID, true
}

func getUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Invalid " + name,
		})
		return uuid.Nil, false
	}
	return id, true
}

func getPagination(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return "This field exceeds maximum length of " + err.Param()
	case "min":
		return "This field must be at least " + err.Param() + " characters"
	case "len":
		return "This field must be exactly " + err.Param() + " characters"
	case "email":
		return "This field must be a valid email"
	case "oneof":
		return "This field must be one of: " + err.Param()
	case "gt":
		return "This field must be greater than " + err.Param()
	case "datetime":
		return "This field must be a date formatted as " + err.Param()
	case "alphanum":
		return "This field must contain only letters and digits"
	default:
		return "This field is invalid"
	}
}
