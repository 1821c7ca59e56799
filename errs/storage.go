package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Object storage errors
var (
	ErrStorageUpload      = errors.New("storage upload failed")
	ErrStorageDelete      = errors.New("storage delete failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

func NewStorageUploadError(key string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStorageUpload,
		Details:    fmt.Sprintf("Failed to upload %s", key),
		Cause:      cause,
	}
}

func NewStorageDeleteError(key string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStorageDelete,
		Details:    fmt.Sprintf("Failed to delete %s", key),
		Cause:      cause,
	}
}

func NewStorageUnavailableError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrStorageUnavailable,
		Details:    "Object storage is temporarily unavailable",
		Cause:      cause,
	}
}

func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageUpload) || errors.Is(err, ErrStorageDelete) || errors.Is(err, ErrStorageUnavailable)
}
