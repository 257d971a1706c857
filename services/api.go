// Package services implements the domain test services. Each service wraps
// one or more API calls into a single test case body: build the request,
// call the network client, parse the response defensively, validate the
// domain invariants, and produce a TestResult. A transport failure and a
// validation failure both yield a failing result but stay distinguishable
// through the TestError code.
package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/intersend/interspace-test-hub/client"
	"github.com/intersend/interspace-test-hub/types"
)

// envelope is the common response wrapper of the API. Every field is
// optional; missing fields degrade to an explicit test failure, never a
// crash.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// succeeded reports the explicit success flag; absent counts as false.
func (e *envelope) succeeded() bool {
	return e.Success != nil && *e.Success
}

func (e *envelope) errorText() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return e.Message
}

type authData struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"`
	IsNewUser    *bool        `json:"isNewUser"`
	SessionID    string       `json:"sessionId"`
	Account      *accountInfo `json:"account"`
	Profiles     []profileDTO `json:"profiles"`
}

type accountInfo struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type profileDTO struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	IsActive            bool   `json:"isActive"`
	WalletAddress       string `json:"sessionWalletAddress"`
	LinkedAccountsCount int    `json:"linkedAccountsCount"`
	AppsCount           int    `json:"appsCount"`
	FoldersCount        int    `json:"foldersCount"`
}

func (p profileDTO) summary() types.ProfileSummary {
	return types.ProfileSummary{
		ID:            p.ID,
		Name:          p.Name,
		IsActive:      p.IsActive,
		WalletAddress: p.WalletAddress,
	}
}

type linkedAccountDTO struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	WalletAddress string `json:"walletAddress"`
	IsPrimary     bool   `json:"isPrimary"`
}

// parseEnvelope decodes the wrapper and, when data is present, the payload.
func parseEnvelope(resp *client.Response, payload interface{}) (*envelope, error) {
	var env envelope
	if err := resp.Decode(&env); err != nil {
		return nil, err
	}
	if payload != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, payload); err != nil {
			return nil, fmt.Errorf("decoding data payload: %w", err)
		}
	}
	return &env, nil
}

// transportFail builds the failing result for a network client error.
func transportFail(name string, category types.Category, err error) *types.TestResult {
	terr := client.AsTestError(err)
	return types.Fail(name, category, terr.Message, terr)
}

// callFail classifies an error from a composite call: transport errors keep
// their code, anything else counts as a parse failure.
func callFail(name string, category types.Category, err error) *types.TestResult {
	var clientErr *client.Error
	if errors.As(err, &clientErr) {
		return transportFail(name, category, err)
	}
	return parseFail(name, category, err)
}

// parseFail builds the failing result for an unparseable response.
func parseFail(name string, category types.Category, err error) *types.TestResult {
	return types.Fail(name, category, "response could not be parsed",
		types.WrapTestError(types.CodeParseError, "response could not be parsed", err))
}

// details captures the HTTP leg of a call for correlation.
func details(resp *client.Response, method, endpoint string) *types.TestDetails {
	return &types.TestDetails{
		LastStatus: resp.StatusCode,
		LastMethod: method,
		LastURL:    endpoint,
	}
}
