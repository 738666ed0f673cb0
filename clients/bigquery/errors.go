package bigquery

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

func hasStatusCode(err error, code int) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}

	return false
}

// IsNotFoundErr - the dataset (or table) does not exist.
func IsNotFoundErr(err error) bool {
	return hasStatusCode(err, http.StatusNotFound)
}

// IsAlreadyExistsErr - creation raced another caller, which is fine since creation is idempotent.
func IsAlreadyExistsErr(err error) bool {
	return hasStatusCode(err, http.StatusConflict)
}
