package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/intersend/interspace-test-hub/client"
)

// newAPIClient spins up a mock API server and a client pointed at it. The
// server is torn down with the test.
func newAPIClient(t *testing.T, handler http.Handler) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := client.New(client.Config{BaseURL: srv.URL, Log: log.Root()})
	require.NoError(t, err)
	return c
}

// writeData writes the standard success envelope with the given payload.
func writeData(t *testing.T, w http.ResponseWriter, data interface{}) {
	t.Helper()
	writeEnvelope(t, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// writeAPIError writes the standard failure envelope.
func writeAPIError(t *testing.T, w http.ResponseWriter, status int, code, message string) {
	t.Helper()
	writeEnvelope(t, w, status, map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

// authPayload is a complete happy-path authentication response body.
func authPayload(isNewUser bool) map[string]interface{} {
	return map[string]interface{}{
		"accessToken":  "access-" + boolTag(isNewUser),
		"refreshToken": "refresh-" + boolTag(isNewUser),
		"expiresIn":    900,
		"isNewUser":    isNewUser,
		"sessionId":    "sess-1",
		"account":      map[string]string{"id": "acct-1", "type": "email"},
		"profiles": []map[string]interface{}{
			{"id": "prof-1", "name": "My Smartprofile", "isActive": true, "sessionWalletAddress": "0xabc"},
		},
	}
}

func boolTag(b bool) string {
	if b {
		return "new"
	}
	return "existing"
}
