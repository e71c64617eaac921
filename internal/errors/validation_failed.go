package errors

import "net/http"

var ErrValidationFailed = &Exception{
	Message:    "validation failed",
	StatusCode: http.StatusUnprocessableEntity,
}
