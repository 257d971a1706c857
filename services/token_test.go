package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intersend/interspace-test-hub/types"
)

func TestRefreshRotatesTokenPair(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/auth/refresh", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "refresh-old", body["refreshToken"])
		writeData(t, w, map[string]interface{}{
			"accessToken":  "access-new",
			"refreshToken": "refresh-new",
			"expiresIn":    900,
		})
	}))
	svc := NewTokenService(c, log.Root())

	rc := &types.RunContext{AccessToken: "access-old", RefreshToken: "refresh-old"}
	result, err := svc.Refresh(context.Background(), rc)
	require.NoError(t, err)
	require.Nil(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, "access-new", rc.AccessToken)
	assert.Equal(t, "refresh-new", rc.RefreshToken)
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without a refresh token")
	}))
	svc := NewTokenService(c, log.Root())

	result, err := svc.Refresh(context.Background(), &types.RunContext{AccessToken: "access-only"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, types.CodeNoRefreshToken, result.Error.Code)
}

func TestRefreshRequiresExplicitSuccess(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Tokens present but no success flag.
		writeEnvelope(t, w, http.StatusOK, map[string]interface{}{
			"data": map[string]string{"accessToken": "a", "refreshToken": "b"},
		})
	}))
	svc := NewTokenService(c, log.Root())

	rc := &types.RunContext{RefreshToken: "refresh-old"}
	result, err := svc.Refresh(context.Background(), rc)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.CodeValidationError, result.Error.Code)
	assert.Equal(t, "refresh-old", rc.RefreshToken)
}

func TestRefreshIncompletePair(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, map[string]string{"accessToken": "a"})
	}))
	svc := NewTokenService(c, log.Root())

	result, err := svc.Refresh(context.Background(), &types.RunContext{RefreshToken: "refresh-old"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.CodeValidationError, result.Error.Code)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantPass bool
	}{
		{name: "accepted", status: http.StatusOK, wantPass: true},
		{name: "rejected", status: http.StatusUnauthorized},
		{name: "redirected", status: http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(t, w, tt.status, map[string]interface{}{"success": tt.wantPass})
			}))
			svc := NewTokenService(c, log.Root())

			result, err := svc.Validate(context.Background(), &types.RunContext{AccessToken: "tok"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPass, result.Success)
		})
	}
}

func TestExpiredRejected(t *testing.T) {
	var gotAuth string
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeAPIError(t, w, http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired")
	}))
	svc := NewTokenService(c, log.Root())

	result, err := svc.ExpiredRejected(context.Background(), &types.RunContext{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Bearer "+expiredAccessToken, gotAuth)
}

func TestExpiredAcceptedFailsTest(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, []interface{}{})
	}))
	svc := NewTokenService(c, log.Root())

	result, err := svc.ExpiredRejected(context.Background(), &types.RunContext{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, types.CodeUnexpectedStatus, result.Error.Code)
}

func TestRevokedRejected(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer revoked-tok", r.Header.Get("Authorization"))
		writeAPIError(t, w, http.StatusUnauthorized, "TOKEN_REVOKED", "token revoked")
	}))
	svc := NewTokenService(c, log.Root())

	result, err := svc.RevokedRejected(context.Background(), &types.RunContext{RevokedToken: "revoked-tok"})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestRevokedRejectedWithoutToken(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without a revoked token")
	}))
	svc := NewTokenService(c, log.Root())

	result, err := svc.RevokedRejected(context.Background(), &types.RunContext{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.CodeNoToken, result.Error.Code)
}
