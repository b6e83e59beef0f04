package githubcli_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/repogov/repogov/internal/execshell"
	"github.com/repogov/repogov/internal/githubcli"
)

const (
	testRepositoryPathConstant                 = "repos/myorg/myrepo"
	testRulesetsPathConstant                   = "repos/myorg/myrepo/rulesets"
	testRequestGetSuccessCaseNameConstant      = "get_success"
	testRequestPostBodyCaseNameConstant        = "post_pipes_body"
	testRequestPutMethodCaseNameConstant       = "put_sets_method_flag"
	testRequestForbiddenCaseNameConstant       = "forbidden_status_classified"
	testRequestNotFoundCaseNameConstant        = "not_found_status_classified"
	testRequestOpaqueFailureCaseNameConstant   = "opaque_failure_has_no_status"
	testAvailabilitySuccessCaseNameConstant    = "available"
	testAvailabilityMissingToolCaseNameConstant = "missing_binary"
)

type stubGitHubExecutor struct {
	executeFunc     func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error)
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executeFunc != nil {
		return executor.executeFunc(executionContext, details)
	}
	return execshell.ExecutionResult{}, nil
}

func commandFailure(standardError string) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGitHub},
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: standardError},
	}
}

func TestNewClientValidation(testInstance *testing.T) {
	testInstance.Run("nil_executor", func(testInstance *testing.T) {
		client, creationError := githubcli.NewClient(nil)
		require.Error(testInstance, creationError)
		require.ErrorIs(testInstance, creationError, githubcli.ErrExecutorNotConfigured)
		require.Nil(testInstance, client)
	})
}

func TestClientRequest(testInstance *testing.T) {
	testCases := []struct {
		name           string
		method         string
		path           string
		payload        any
		executor       *stubGitHubExecutor
		expectError    bool
		expectedStatus int
		verify         func(testInstance *testing.T, response []byte, executor *stubGitHubExecutor)
	}{
		{
			name:     testRequestGetSuccessCaseNameConstant,
			method:   "GET",
			path:     testRepositoryPathConstant,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: `{"id":1}`}, nil
			}},
			verify: func(testInstance *testing.T, response []byte, executor *stubGitHubExecutor) {
				require.JSONEq(testInstance, `{"id":1}`, string(response))
				require.Len(testInstance, executor.recordedDetails, 1)
				recordedArguments := executor.recordedDetails[0].Arguments
				require.Equal(testInstance, []string{"api", testRepositoryPathConstant, "-H", "Accept: application/vnd.github+json"}, recordedArguments)
				require.Empty(testInstance, executor.recordedDetails[0].StandardInput)
			},
		},
		{
			name:     testRequestPostBodyCaseNameConstant,
			method:   "POST",
			path:     testRulesetsPathConstant,
			payload:  map[string]string{"name": "Branch Protection"},
			executor: &stubGitHubExecutor{},
			verify: func(testInstance *testing.T, response []byte, executor *stubGitHubExecutor) {
				require.Len(testInstance, executor.recordedDetails, 1)
				recordedDetails := executor.recordedDetails[0]
				require.Contains(testInstance, recordedDetails.Arguments, "--input")
				require.Contains(testInstance, recordedDetails.Arguments, "-")
				require.JSONEq(testInstance, `{"name":"Branch Protection"}`, string(recordedDetails.StandardInput))
			},
		},
		{
			name:     testRequestPutMethodCaseNameConstant,
			method:   "put",
			path:     testRulesetsPathConstant + "/42",
			payload:  map[string]string{},
			executor: &stubGitHubExecutor{},
			verify: func(testInstance *testing.T, response []byte, executor *stubGitHubExecutor) {
				recordedArguments := executor.recordedDetails[0].Arguments
				require.Contains(testInstance, recordedArguments, "-X")
				require.Contains(testInstance, recordedArguments, "PUT")
			},
		},
		{
			name:   testRequestForbiddenCaseNameConstant,
			method: "POST",
			path:   testRulesetsPathConstant,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{}, commandFailure("gh: Resource not accessible by integration (HTTP 403)")
			}},
			expectError:    true,
			expectedStatus: 403,
		},
		{
			name:   testRequestNotFoundCaseNameConstant,
			method: "GET",
			path:   testRepositoryPathConstant,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{}, commandFailure("gh: Not Found (HTTP 404)")
			}},
			expectError:    true,
			expectedStatus: 404,
		},
		{
			name:   testRequestOpaqueFailureCaseNameConstant,
			method: "GET",
			path:   testRepositoryPathConstant,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{}, errors.New("network unreachable")
			}},
			expectError:    true,
			expectedStatus: 0,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := githubcli.NewClient(testCase.executor)
			require.NoError(testInstance, creationError)

			response, requestError := client.Request(context.Background(), testCase.method, testCase.path, testCase.payload)

			if testCase.expectError {
				require.Error(testInstance, requestError)
				require.Equal(testInstance, testCase.expectedStatus, githubcli.HTTPStatusCode(requestError))
				return
			}

			require.NoError(testInstance, requestError)
			if testCase.verify != nil {
				testCase.verify(testInstance, response, testCase.executor)
			}
		})
	}
}

func TestClientIsAvailable(testInstance *testing.T) {
	testCases := []struct {
		name      string
		executor  *stubGitHubExecutor
		available bool
	}{
		{
			name:      testAvailabilitySuccessCaseNameConstant,
			executor:  &stubGitHubExecutor{},
			available: true,
		},
		{
			name: testAvailabilityMissingToolCaseNameConstant,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{}, execshell.CommandExecutionError{Cause: errors.New("executable file not found")}
			}},
			available: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := githubcli.NewClient(testCase.executor)
			require.NoError(testInstance, creationError)
			require.Equal(testInstance, testCase.available, client.IsAvailable(context.Background()))
		})
	}
}
