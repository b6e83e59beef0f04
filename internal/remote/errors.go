package remote

import (
	"errors"
	"fmt"
)

// ErrorCode classifies remote lookup failures for machine consumption.
type ErrorCode string

const (
	// ErrorCodeInvalidRepo marks a repository string that is not owner/name.
	ErrorCodeInvalidRepo ErrorCode = "INVALID_REPO"
	// ErrorCodeNoGh marks a missing or broken GitHub CLI installation.
	ErrorCodeNoGh ErrorCode = "NO_GH"
	// ErrorCodeNoRepo marks a repository the API reports as not found.
	ErrorCodeNoRepo ErrorCode = "NO_REPO"
	// ErrorCodeNoPermission marks a repository the caller may not access.
	ErrorCodeNoPermission ErrorCode = "NO_PERMISSION"
	// ErrorCodeAPIError marks any other GitHub API failure.
	ErrorCodeAPIError ErrorCode = "API_ERROR"
)

const fetchErrorFormatConstant = "%s: %s"

// FetchError is a classified remote lookup failure.
type FetchError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error renders the code and message.
func (fetchError *FetchError) Error() string {
	return fmt.Sprintf(fetchErrorFormatConstant, fetchError.Code, fetchError.Message)
}

// Unwrap exposes the underlying failure when one exists.
func (fetchError *FetchError) Unwrap() error {
	return fetchError.Cause
}

// CodeOf extracts the error code from a failure, or the API error code when
// the failure is not a *FetchError.
func CodeOf(failure error) ErrorCode {
	fetchError := &FetchError{}
	if errors.As(failure, &fetchError) {
		return fetchError.Code
	}
	return ErrorCodeAPIError
}
