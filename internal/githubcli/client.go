package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/repogov/repogov/internal/execshell"
)

const (
	apiSubcommandConstant                 = "api"
	versionFlagConstant                   = "--version"
	methodFlagConstant                    = "-X"
	inputFlagConstant                     = "--input"
	stdinReferenceConstant                = "-"
	acceptHeaderFlagConstant              = "-H"
	acceptHeaderValueConstant             = "Accept: application/vnd.github+json"
	httpMethodGetConstant                 = "GET"
	executorNotConfiguredMessageConstant  = "github cli executor not configured"
	requestErrorTemplateConstant          = "%s %s failed: %s"
	requestErrorWithStatusTemplate        = "%s %s failed with HTTP %d: %s"
	payloadEncodingErrorTemplateConstant  = "%s %s payload encoding failed: %s"
	httpStatusPatternConstant             = `HTTP (\d{3})`
	unknownRequestFailureMessageConstant  = "unknown error"
	statusCodeUnknownConstant             = 0
)

var httpStatusExpression = regexp.MustCompile(httpStatusPatternConstant)

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub API requests through the GitHub CLI.
type Client struct {
	executor GitHubCommandExecutor
}

// RequestError wraps failures of a single API request and carries the HTTP status when known.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Cause      error
}

// Error describes the failed request.
func (requestError RequestError) Error() string {
	failureMessage := unknownRequestFailureMessageConstant
	if requestError.Cause != nil {
		failureMessage = requestError.Cause.Error()
	}
	if requestError.StatusCode != statusCodeUnknownConstant {
		return fmt.Sprintf(requestErrorWithStatusTemplate, requestError.Method, requestError.Path, requestError.StatusCode, failureMessage)
	}
	return fmt.Sprintf(requestErrorTemplateConstant, requestError.Method, requestError.Path, failureMessage)
}

// Unwrap exposes the underlying cause.
func (requestError RequestError) Unwrap() error {
	return requestError.Cause
}

// PayloadEncodingError indicates JSON encoding issues for a request body.
type PayloadEncodingError struct {
	Method string
	Path   string
	Cause  error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Method, encodingError.Path, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// IsAvailable reports whether the GitHub CLI can be invoked. It never returns an error.
func (client *Client) IsAvailable(executionContext context.Context) bool {
	commandDetails := execshell.CommandDetails{Arguments: []string{versionFlagConstant}}
	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	return executionError == nil
}

// Request issues a GitHub API call through gh api and returns the raw JSON response body.
//
// A nil payload issues the request without a body; otherwise the payload is
// JSON-encoded and piped to the CLI on stdin via --input -.
func (client *Client) Request(executionContext context.Context, method string, path string, payload any) (json.RawMessage, error) {
	normalizedMethod := strings.ToUpper(strings.TrimSpace(method))
	trimmedPath := strings.TrimSpace(path)

	arguments := []string{apiSubcommandConstant, trimmedPath}
	if len(normalizedMethod) > 0 && normalizedMethod != httpMethodGetConstant {
		arguments = append(arguments, methodFlagConstant, normalizedMethod)
	}

	var standardInput []byte
	if payload != nil {
		payloadBytes, encodingError := json.Marshal(payload)
		if encodingError != nil {
			return nil, PayloadEncodingError{Method: normalizedMethod, Path: trimmedPath, Cause: encodingError}
		}
		standardInput = payloadBytes
		arguments = append(arguments, inputFlagConstant, stdinReferenceConstant)
	}

	arguments = append(arguments, acceptHeaderFlagConstant, acceptHeaderValueConstant)

	commandDetails := execshell.CommandDetails{Arguments: arguments, StandardInput: standardInput}
	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, RequestError{
			Method:     normalizedMethod,
			Path:       trimmedPath,
			StatusCode: statusCodeFromExecutionError(executionError),
			Cause:      executionError,
		}
	}

	return json.RawMessage(executionResult.StandardOutput), nil
}

// HTTPStatusCode extracts the HTTP status carried by a request failure, or zero when unknown.
func HTTPStatusCode(failure error) int {
	var requestError RequestError
	if errors.As(failure, &requestError) {
		return requestError.StatusCode
	}
	return statusCodeUnknownConstant
}

func statusCodeFromExecutionError(executionError error) int {
	var failedError execshell.CommandFailedError
	if !errors.As(executionError, &failedError) {
		return statusCodeUnknownConstant
	}

	statusMatch := httpStatusExpression.FindStringSubmatch(failedError.Result.StandardError)
	if statusMatch == nil {
		statusMatch = httpStatusExpression.FindStringSubmatch(failedError.Result.StandardOutput)
	}
	if statusMatch == nil {
		return statusCodeUnknownConstant
	}

	statusCode, parseError := strconv.Atoi(statusMatch[1])
	if parseError != nil {
		return statusCodeUnknownConstant
	}
	return statusCode
}
