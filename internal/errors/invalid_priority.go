package errors

import "net/http"

var ErrInvalidPriority = &Exception{
	Message:    "priority must be one of Low, Medium or High",
	StatusCode: http.StatusBadRequest,
}
