package response

import "net/http"

type SuccessResponse struct {
	StatusCode int         `json:"-"`
	Status     bool        `json:"status"`
	Message    string      `json:"message"`
	Payload    interface{} `json:"payload,omitempty"`
}

func CreatedSuccessWithPayload(payload interface{}) *SuccessResponse {
	return &SuccessResponse{
		StatusCode: http.StatusCreated,
		Status:     true,
		Message:    "Created",
		Payload:    payload,
	}
}

func GeneralSuccessCustomMessageAndPayload(message string, payload interface{}) *SuccessResponse {
	return &SuccessResponse{
		StatusCode: http.StatusOK,
		Status:     true,
		Message:    message,
		Payload:    payload,
	}
}

func GeneralSuccessCustomMessage(message string) *SuccessResponse {
	return &SuccessResponse{
		StatusCode: http.StatusOK,
		Status:     true,
		Message:    message,
	}
}
