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

func linkedAccountBody(id string) map[string]interface{} {
	return map[string]interface{}{
		"id":            id,
		"type":          "wallet",
		"walletAddress": testWalletAddress,
		"isPrimary":     false,
	}
}

func TestLinkWallet(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/accounts/link", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "wallet", body["type"])
		require.Equal(t, testWalletAddress, body["walletAddress"])
		writeData(t, w, linkedAccountBody("link-1"))
	}))
	svc := NewLinkingService(c, log.Root())

	result, err := svc.LinkWallet(context.Background(), &types.RunContext{AccessToken: "tok"})
	require.NoError(t, err)
	require.Nil(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, "link-1", svc.linkedID)
	assert.Equal(t, "link-1", result.Details.AccountID)
}

func TestLinkWalletAddressMismatch(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := linkedAccountBody("link-1")
		body["walletAddress"] = "0xsomeoneelse"
		writeData(t, w, body)
	}))
	svc := NewLinkingService(c, log.Root())

	result, err := svc.LinkWallet(context.Background(), &types.RunContext{AccessToken: "tok"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.CodeValidationError, result.Error.Code)
	assert.Empty(t, svc.linkedID)
}

func TestListLinkedContainsLinkedAccount(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/accounts", r.URL.Path)
		writeData(t, w, []interface{}{
			map[string]interface{}{"id": "primary-1", "type": "email", "isPrimary": true},
			linkedAccountBody("link-1"),
		})
	}))
	svc := NewLinkingService(c, log.Root())
	svc.linkedID = "link-1"

	result, err := svc.ListLinked(context.Background(), &types.RunContext{AccessToken: "tok"})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestListLinkedMissingLinkedAccount(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, []interface{}{
			map[string]interface{}{"id": "primary-1", "type": "email", "isPrimary": true},
		})
	}))
	svc := NewLinkingService(c, log.Root())
	svc.linkedID = "link-1"

	result, err := svc.ListLinked(context.Background(), &types.RunContext{AccessToken: "tok"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.CodeValidationError, result.Error.Code)
}

func TestUnlink(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/v2/accounts/link-1", r.URL.Path)
		writeEnvelope(t, w, http.StatusOK, map[string]interface{}{"success": true})
	}))
	svc := NewLinkingService(c, log.Root())
	svc.linkedID = "link-1"

	result, err := svc.Unlink(context.Background(), &types.RunContext{AccessToken: "tok"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, svc.linkedID)
}

func TestUnlinkWithoutLinkedAccount(t *testing.T) {
	c := newAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without a linked account")
	}))
	svc := NewLinkingService(c, log.Root())

	result, err := svc.Unlink(context.Background(), &types.RunContext{AccessToken: "tok"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.CodeValidationError, result.Error.Code)
}
