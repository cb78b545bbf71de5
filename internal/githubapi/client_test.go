package githubapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/temirov/gitid/internal/githubapi"
)

const testAccessTokenConstant = "test-token"

func newTestClient(testInstance *testing.T, handler http.Handler) *githubapi.Client {
	testInstance.Helper()
	server := httptest.NewServer(handler)
	testInstance.Cleanup(server.Close)

	client, creationError := githubapi.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: testAccessTokenConstant}), server.URL)
	require.NoError(testInstance, creationError)
	return client
}

func writeJSON(responseWriter http.ResponseWriter, statusCode int, payload any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(statusCode)
	_ = json.NewEncoder(responseWriter).Encode(payload)
}

func TestClientAuthenticatedUser(testInstance *testing.T) {
	serveMux := http.NewServeMux()
	serveMux.HandleFunc("/user", func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, "Bearer "+testAccessTokenConstant, request.Header.Get("Authorization"))
		writeJSON(responseWriter, http.StatusOK, map[string]any{"login": "octocat", "name": ""})
	})
	client := newTestClient(testInstance, serveMux)

	user, requestError := client.AuthenticatedUser(context.Background())
	require.NoError(testInstance, requestError)
	require.Equal(testInstance, "octocat", user.Login)
	require.Equal(testInstance, "octocat", user.DisplayName())
	require.Equal(testInstance, "The Octocat", githubapi.User{Login: "octocat", Name: "The Octocat"}.DisplayName())
}

func TestClientPrimaryEmail(testInstance *testing.T) {
	testCases := []struct {
		name          string
		emails        []map[string]any
		expectedEmail string
	}{
		{
			name: "primary_preferred",
			emails: []map[string]any{
				{"email": "secondary@x.com", "primary": false},
				{"email": "primary@x.com", "primary": true},
			},
			expectedEmail: "primary@x.com",
		},
		{
			name:          "first_when_no_primary",
			emails:        []map[string]any{{"email": "first@x.com", "primary": false}},
			expectedEmail: "first@x.com",
		},
		{
			name:          "noreply_when_empty",
			emails:        []map[string]any{},
			expectedEmail: "octocat@users.noreply.github.com",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			serveMux := http.NewServeMux()
			serveMux.HandleFunc("/user/emails", func(responseWriter http.ResponseWriter, _ *http.Request) {
				writeJSON(responseWriter, http.StatusOK, testCase.emails)
			})
			client := newTestClient(testInstance, serveMux)

			email, requestError := client.PrimaryEmail(context.Background(), "octocat")
			require.NoError(testInstance, requestError)
			require.Equal(testInstance, testCase.expectedEmail, email)
		})
	}
}

func TestClientUploadPublicKey(testInstance *testing.T) {
	testCases := []struct {
		name           string
		statusCode     int
		expectedResult githubapi.KeyUploadResult
		expectError    bool
	}{
		{name: "created", statusCode: http.StatusCreated, expectedResult: githubapi.KeyUploadResult{Created: true}},
		{name: "already_exists", statusCode: http.StatusUnprocessableEntity, expectedResult: githubapi.KeyUploadResult{AlreadyExists: true}},
		{name: "forbidden", statusCode: http.StatusForbidden, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var receivedBody map[string]string
			serveMux := http.NewServeMux()
			serveMux.HandleFunc("/user/keys", func(responseWriter http.ResponseWriter, request *http.Request) {
				require.Equal(testInstance, http.MethodPost, request.Method)
				requestBody, readError := io.ReadAll(request.Body)
				require.NoError(testInstance, readError)
				require.NoError(testInstance, json.NewDecoder(bytes.NewReader(requestBody)).Decode(&receivedBody))
				writeJSON(responseWriter, testCase.statusCode, map[string]any{"id": 1, "message": http.StatusText(testCase.statusCode)})
			})
			client := newTestClient(testInstance, serveMux)

			result, uploadError := client.UploadPublicKey(context.Background(), "git-id: work (2025-03-04)", "ssh-ed25519 AAAA w@x.com\n")
			if testCase.expectError {
				require.Error(testInstance, uploadError)
				return
			}
			require.NoError(testInstance, uploadError)
			require.Equal(testInstance, testCase.expectedResult, result)
			require.Equal(testInstance, "git-id: work (2025-03-04)", receivedBody["title"])
			require.Equal(testInstance, "ssh-ed25519 AAAA w@x.com", receivedBody["key"])
		})
	}
}

func TestEnvironmentTokenSource(testInstance *testing.T) {
	environment := map[string]string{"GITHUB_TOKEN": "  from-github-token ", "GITHUB_API_TOKEN": "from-api"}
	source := githubapi.NewEnvironmentTokenSource(func(name string) (string, bool) {
		value, exists := environment[name]
		return value, exists
	})

	token, tokenError := source.Token()
	require.NoError(testInstance, tokenError)
	require.Equal(testInstance, "from-github-token", token.AccessToken)
	require.True(testInstance, source.Available())

	emptySource := githubapi.NewEnvironmentTokenSource(func(string) (string, bool) { return " ", true })
	_, tokenError = emptySource.Token()
	require.ErrorIs(testInstance, tokenError, githubapi.ErrEnvironmentTokenMissing)
	require.False(testInstance, emptySource.Available())
}

func TestNewClientRequiresTokenSource(testInstance *testing.T) {
	_, creationError := githubapi.NewClient(context.Background(), nil, "")
	require.ErrorIs(testInstance, creationError, githubapi.ErrTokenSourceNotConfigured)
}
