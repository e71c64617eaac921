package errors

import "net/http"

var ErrInvalidFilter = &Exception{
	Message:    "invalid filter value",
	StatusCode: http.StatusBadRequest,
}
