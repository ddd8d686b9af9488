package auth_test

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pkcs12"
	"golang.org/x/oauth2/google"

	"github.com/keboola/sheets-writer/internal/pkg/encoding/json"
	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store/auth"
)

const principal = "writer@my-project.iam.gserviceaccount.com"

func newPEMKey(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
}

func mockTokenEndpoint(transport *httpmock.MockTransport, t *testing.T) {
	t.Helper()
	transport.RegisterResponder(http.MethodPost, google.JWTTokenURL, func(req *http.Request) (*http.Response, error) {
		require.NoError(t, req.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", req.PostForm.Get("grant_type"))
		assert.NotEmpty(t, req.PostForm.Get("assertion"))
		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
			"access_token": "my-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
}

func TestServiceAccount_PEM(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	mockTokenEndpoint(transport, t)
	logger := log.NewDebugLogger()
	a := auth.NewServiceAccount(logger, auth.WithHTTPClient(&http.Client{Transport: transport}))

	tokens, err := a.Authenticate(t.Context(), store.Credentials{
		Principal:  principal,
		PrivateKey: newPEMKey(t),
		Scopes:     []string{store.ScopeSpreadsheets},
	})
	require.NoError(t, err)

	// The first token is cached
	token, err := tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, "my-token", token.AccessToken)
	assert.Equal(t, 1, transport.GetTotalCallCount())

	logger.AssertJSONMessages(t, `{"level":"info","message":"authenticated as \"writer@my-project.iam.gserviceaccount.com\"","component":"auth"}`)
}

func TestServiceAccount_JSONKeyFile(t *testing.T) {
	t.Parallel()

	keyFile := json.MustEncodeString(map[string]any{
		"type":           "service_account",
		"client_email":   principal,
		"private_key":    string(newPEMKey(t)),
		"private_key_id": "123",
		"token_uri":      "https://example.com/token",
	}, false)

	transport := httpmock.NewMockTransport()
	mockTokenEndpoint(transport, t)
	a := auth.NewServiceAccount(log.NewNopLogger(), auth.WithHTTPClient(&http.Client{Transport: transport}))

	// The principal is read from the key file
	tokens, err := a.Authenticate(t.Context(), store.Credentials{PrivateKey: []byte(keyFile), Scopes: []string{store.ScopeSpreadsheets}})
	require.NoError(t, err)
	token, err := tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, "my-token", token.AccessToken)
}

func TestServiceAccount_PKCS12(t *testing.T) {
	t.Parallel()

	// Archive protected by the fixed Google password "notasecret"
	p12, err := os.ReadFile("testdata/key.p12")
	require.NoError(t, err)
	_, cert, err := pkcs12.Decode(p12, "notasecret")
	require.NoError(t, err)
	publicKey, ok := cert.PublicKey.(*rsa.PublicKey)
	require.True(t, ok)

	// The token endpoint accepts only a JWT signed by the archived key
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, google.JWTTokenURL, func(req *http.Request) (*http.Response, error) {
		require.NoError(t, req.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", req.PostForm.Get("grant_type"))

		parts := strings.Split(req.PostForm.Get("assertion"), ".")
		require.Len(t, parts, 3)
		signature, err := base64.RawURLEncoding.DecodeString(parts[2])
		require.NoError(t, err)
		digest := sha256.Sum256([]byte(parts[0] + "." + parts[1]))
		if err := rsa.VerifyPKCS1v15(publicKey, crypto.SHA256, digest[:], signature); err != nil {
			return httpmock.NewJsonResponse(http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
		}

		payload, err := base64.RawURLEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		var claims map[string]any
		require.NoError(t, json.Decode(payload, &claims))
		assert.Equal(t, principal, claims["iss"])
		assert.Equal(t, store.ScopeSpreadsheets, claims["scope"])

		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
			"access_token": "my-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})

	logger := log.NewDebugLogger()
	a := auth.NewServiceAccount(logger, auth.WithHTTPClient(&http.Client{Transport: transport}))
	tokens, err := a.Authenticate(t.Context(), store.Credentials{
		Principal:  principal,
		PrivateKey: p12,
		Scopes:     []string{store.ScopeSpreadsheets},
	})
	require.NoError(t, err)

	token, err := tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, "my-token", token.AccessToken)
	assert.Equal(t, 1, transport.GetTotalCallCount())

	logger.AssertJSONMessages(t, `{"level":"info","message":"authenticated as \"writer@my-project.iam.gserviceaccount.com\"","component":"auth"}`)
}

func TestServiceAccount_Rejected(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, google.JWTTokenURL, httpmock.NewJsonResponderOrPanic(
		http.StatusBadRequest,
		map[string]any{"error": "invalid_grant", "error_description": "Invalid JWT Signature."},
	))
	a := auth.NewServiceAccount(log.NewNopLogger(), auth.WithHTTPClient(&http.Client{Transport: transport}))

	_, err := a.Authenticate(t.Context(), store.Credentials{Principal: principal, PrivateKey: newPEMKey(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `authentication of "writer@my-project.iam.gserviceaccount.com" failed`)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestServiceAccount_InvalidCredentials(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	a := auth.NewServiceAccount(log.NewNopLogger(), auth.WithHTTPClient(&http.Client{Transport: transport}))

	cases := []struct {
		name     string
		creds    store.Credentials
		expected string
	}{
		{name: "empty key", creds: store.Credentials{Principal: principal}, expected: "private key is empty"},
		{name: "missing principal", creds: store.Credentials{PrivateKey: newPEMKey(t)}, expected: "principal e-mail is not set"},
		{name: "invalid JSON", creds: store.Credentials{PrivateKey: []byte(`{"type":`)}, expected: "cannot parse JSON key file"},
		{name: "invalid PKCS12", creds: store.Credentials{Principal: principal, PrivateKey: []byte{0x30, 0x01, 0x02}}, expected: "cannot decode PKCS #12 key"},
	}

	for _, tc := range cases {
		_, err := a.Authenticate(t.Context(), tc.creds)
		if assert.Error(t, err, tc.name) {
			assert.Contains(t, err.Error(), "invalid credentials", tc.name)
			assert.Contains(t, err.Error(), tc.expected, tc.name)
		}
	}

	// No request is sent with invalid credentials
	assert.Equal(t, 0, transport.GetTotalCallCount())
}
