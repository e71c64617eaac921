package errors

import "net/http"

var ErrStoreNotInitialized = &Exception{
	Message:    "task store is not initialized",
	StatusCode: http.StatusServiceUnavailable,
}
