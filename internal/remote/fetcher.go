package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/repogov/repogov/internal/githubcli"
	"github.com/repogov/repogov/internal/protection"
)

const (
	repositorySeparatorConstant        = "/"
	repositoryEndpointFormatConstant   = "repos/%s"
	contentsEndpointFormatConstant     = "repos/%s/contents/%s"
	invalidRepositoryMessageFormat     = "repository %q is not in owner/name form"
	missingCLIMessageConstant          = "github cli (gh) is not available"
	repositoryNotFoundMessageFormat    = "repository %s not found"
	repositoryForbiddenMessageFormat   = "no permission to access repository %s"
	repositoryLookupMessageFormat      = "lookup repository %s"
	expectedRepositorySegmentsConstant = 2
	fetcherClientNotConfiguredMessage  = "github client not configured"
)

// ErrFetcherClientNotConfigured reports a Fetcher constructed without a
// GitHub client.
var ErrFetcherClientNotConfigured = errors.New(fetcherClientNotConfiguredMessage)

// GitHubAPI is the slice of the GitHub client the fetcher needs.
type GitHubAPI interface {
	IsAvailable(executionContext context.Context) bool
	Request(executionContext context.Context, method string, path string, payload any) (json.RawMessage, error)
}

// ParseRepoString validates an owner/name repository string. Any other shape
// produces a *FetchError carrying ErrorCodeInvalidRepo.
func ParseRepoString(repositoryString string) (protection.RepoInfo, error) {
	trimmedRepository := strings.TrimSpace(repositoryString)
	repositorySegments := strings.Split(trimmedRepository, repositorySeparatorConstant)
	if len(repositorySegments) != expectedRepositorySegmentsConstant {
		return protection.RepoInfo{}, &FetchError{Code: ErrorCodeInvalidRepo, Message: fmt.Sprintf(invalidRepositoryMessageFormat, repositoryString)}
	}
	for _, repositorySegment := range repositorySegments {
		if len(strings.TrimSpace(repositorySegment)) == 0 {
			return protection.RepoInfo{}, &FetchError{Code: ErrorCodeInvalidRepo, Message: fmt.Sprintf(invalidRepositoryMessageFormat, repositoryString)}
		}
	}
	return protection.RepoInfo{Owner: repositorySegments[0], Repository: repositorySegments[1]}, nil
}

// Fetcher performs remote lookups through the GitHub CLI.
type Fetcher struct {
	client GitHubAPI
}

// NewFetcher validates the client and returns a ready Fetcher.
func NewFetcher(client GitHubAPI) (*Fetcher, error) {
	if client == nil {
		return nil, ErrFetcherClientNotConfigured
	}
	return &Fetcher{client: client}, nil
}

// EnsureCLIAvailable verifies the GitHub CLI responds, returning a
// *FetchError carrying ErrorCodeNoGh when it does not.
func (fetcher *Fetcher) EnsureCLIAvailable(executionContext context.Context) error {
	if fetcher.client.IsAvailable(executionContext) {
		return nil
	}
	return &FetchError{Code: ErrorCodeNoGh, Message: missingCLIMessageConstant}
}

// VerifyRepoAccess confirms the repository exists and is readable. A 404
// response maps to ErrorCodeNoRepo, a 403 to ErrorCodeNoPermission, and any
// other failure to ErrorCodeAPIError.
func (fetcher *Fetcher) VerifyRepoAccess(executionContext context.Context, repositoryInfo protection.RepoInfo) error {
	lookupPath := fmt.Sprintf(repositoryEndpointFormatConstant, repositoryInfo)
	_, requestError := fetcher.client.Request(executionContext, http.MethodGet, lookupPath, nil)
	if requestError == nil {
		return nil
	}
	switch githubcli.HTTPStatusCode(requestError) {
	case http.StatusNotFound:
		return &FetchError{Code: ErrorCodeNoRepo, Message: fmt.Sprintf(repositoryNotFoundMessageFormat, repositoryInfo), Cause: requestError}
	case http.StatusForbidden:
		return &FetchError{Code: ErrorCodeNoPermission, Message: fmt.Sprintf(repositoryForbiddenMessageFormat, repositoryInfo), Cause: requestError}
	default:
		return &FetchError{Code: ErrorCodeAPIError, Message: fmt.Sprintf(repositoryLookupMessageFormat, repositoryInfo), Cause: requestError}
	}
}

// CheckRemoteFileExists probes one path in the repository's default branch.
// Any failure, including network errors, reads as absence.
func (fetcher *Fetcher) CheckRemoteFileExists(executionContext context.Context, repositoryInfo protection.RepoInfo, filePath string) bool {
	contentsPath := fmt.Sprintf(contentsEndpointFormatConstant, repositoryInfo, filePath)
	_, requestError := fetcher.client.Request(executionContext, http.MethodGet, contentsPath, nil)
	return requestError == nil
}
