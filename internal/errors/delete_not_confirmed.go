package errors

import "net/http"

var ErrDeleteNotConfirmed = &Exception{
	Message:    "delete requires confirmation",
	StatusCode: http.StatusPreconditionFailed,
}
