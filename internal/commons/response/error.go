package response

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type CustomError struct {
	StatusCode     int         `json:"-"`
	Status         bool        `json:"status"`
	Message        string      `json:"message"`
	AdditionalInfo interface{} `json:"additional_info,omitempty"`
}

func (e *CustomError) Error() string {
	return e.Message
}

func newError(statusCode int, message string, info ...interface{}) *CustomError {
	err := &CustomError{
		StatusCode: statusCode,
		Status:     false,
		Message:    message,
	}
	if len(info) == 1 {
		err.AdditionalInfo = info[0]
	} else if len(info) > 1 {
		err.AdditionalInfo = info
	}
	return err
}

func BadRequestError(message string) *CustomError {
	return newError(http.StatusBadRequest, message)
}

func BadRequestErrorWithAdditionalInfo(message string, info interface{}) *CustomError {
	return newError(http.StatusBadRequest, message, info)
}

func NotFoundError(message string) *CustomError {
	return newError(http.StatusNotFound, message)
}

func ForbiddenError(message string) *CustomError {
	return newError(http.StatusForbidden, message)
}

func ConflictError(message string) *CustomError {
	return newError(http.StatusConflict, message)
}

func RepositoryError(message string) *CustomError {
	return newError(http.StatusInternalServerError, message)
}

func GeneralError(message string) *CustomError {
	return newError(http.StatusInternalServerError, message)
}

// UnauthorizedErrorWithAdditionalInfo takes the detail first and an optional
// message override second.
func UnauthorizedErrorWithAdditionalInfo(info interface{}, message ...string) *CustomError {
	msg := "Unauthorized"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	if info == nil {
		return newError(http.StatusUnauthorized, msg)
	}
	return newError(http.StatusUnauthorized, msg, info)
}

// InsufficientBalanceError is shown to the user as is, so it carries both
// sides of the comparison and the missing amount.
func InsufficientBalanceError(available, requested decimal.Decimal) *CustomError {
	return newError(http.StatusUnprocessableEntity,
		"insufficient available balance: available "+available.StringFixed(2)+", requested "+requested.StringFixed(2),
		map[string]string{
			"available": available.StringFixed(2),
			"requested": requested.StringFixed(2),
			"shortfall": requested.Sub(available).StringFixed(2),
		})
}
