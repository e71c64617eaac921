package errors

import "net/http"

// ErrPersistenceFailed marks a storage write that did not land. The in-memory
// state is already updated, so the caller may retry the write.
var ErrPersistenceFailed = &Exception{
	Message:    "tasks could not be saved, retry later",
	StatusCode: http.StatusServiceUnavailable,
}
