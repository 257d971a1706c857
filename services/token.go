package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/log"

	"github.com/intersend/interspace-test-hub/client"
	"github.com/intersend/interspace-test-hub/types"
)

// Test case names owned by the token service.
const (
	NameTokenRefresh         = "Token Refresh"
	NameTokenValidation      = "Token Validation"
	NameExpiredTokenRejected = "Expired Token Rejected"
	NameRevokedTokenRejected = "Revoked Token Rejected"
)

// TokenService drives the token lifecycle test scenarios.
type TokenService struct {
	client *client.Client
	log    log.Logger
}

// NewTokenService creates a TokenService.
func NewTokenService(c *client.Client, logger log.Logger) *TokenService {
	return &TokenService{client: c, log: logger.New("service", "token")}
}

// Refresh exchanges the refresh token captured by an earlier authentication
// test. Passes iff the response carries a new access token, a new refresh
// token and an explicit success flag. Missing correlation data is a
// reported failure, never a silent skip.
func (s *TokenService) Refresh(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameTokenRefresh
	if !rc.HasRefreshToken() {
		return types.Fail(name, types.CategoryTokenManagement,
			"no refresh token available from an earlier authentication test",
			types.NewTestError(types.CodeNoRefreshToken, "missing refresh token")), nil
	}

	resp, err := s.client.Post(ctx, "/auth/refresh", &client.RequestOptions{
		Body: map[string]string{"refreshToken": rc.RefreshToken},
	})
	if err != nil {
		return transportFail(name, types.CategoryTokenManagement, err), nil
	}
	dets := details(resp, http.MethodPost, "/auth/refresh")
	if !resp.OK() {
		return types.Fail(name, types.CategoryTokenManagement,
			fmt.Sprintf("token refresh returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeAuthFailed, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}

	var data authData
	env, perr := parseEnvelope(resp, &data)
	if perr != nil {
		return parseFail(name, types.CategoryTokenManagement, perr), nil
	}
	if !env.succeeded() {
		return types.Fail(name, types.CategoryTokenManagement, "server did not confirm the refresh: "+env.errorText(),
			types.NewTestError(types.CodeValidationError, "missing explicit success flag")).WithDetails(dets), nil
	}
	if data.AccessToken == "" || data.RefreshToken == "" {
		return types.Fail(name, types.CategoryTokenManagement, "refresh response missing a token",
			types.NewTestError(types.CodeValidationError, "incomplete token pair")).WithDetails(dets), nil
	}

	rc.AccessToken = data.AccessToken
	rc.RefreshToken = data.RefreshToken
	dets.AccessToken = data.AccessToken
	dets.RefreshToken = data.RefreshToken
	s.log.Info("token pair rotated")
	return types.Pass(name, types.CategoryTokenManagement, "token pair rotated").WithDetails(dets), nil
}

// Validate asserts a protected endpoint accepts the current access token.
func (s *TokenService) Validate(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameTokenValidation
	if !rc.HasToken() {
		return types.Fail(name, types.CategoryTokenManagement,
			"no access token available from an earlier authentication test",
			types.NewTestError(types.CodeNoToken, "missing access token")), nil
	}

	resp, err := s.client.Get(ctx, "/profiles", &client.RequestOptions{Headers: client.BearerHeader(rc.AccessToken)})
	if err != nil {
		return transportFail(name, types.CategoryTokenManagement, err), nil
	}
	dets := details(resp, http.MethodGet, "/profiles")
	if resp.StatusCode != http.StatusOK {
		return types.Fail(name, types.CategoryTokenManagement,
			fmt.Sprintf("protected endpoint rejected a valid token with status %d", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}
	return types.Pass(name, types.CategoryTokenManagement, "token accepted by protected endpoint").WithDetails(dets), nil
}

// ExpiredRejected asserts the server rejects a long-expired token with
// exactly 401. Any other status, including success, fails the test.
func (s *TokenService) ExpiredRejected(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	return s.expectUnauthorized(ctx, NameExpiredTokenRejected, expiredAccessToken, "expired token")
}

// RevokedRejected asserts the token invalidated by the logout test is
// rejected with exactly 401.
func (s *TokenService) RevokedRejected(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameRevokedTokenRejected
	if rc.RevokedToken == "" {
		return types.Fail(name, types.CategoryTokenManagement,
			"no revoked token available from an earlier logout test",
			types.NewTestError(types.CodeNoToken, "missing revoked token")), nil
	}
	return s.expectUnauthorized(ctx, name, rc.RevokedToken, "revoked token")
}

// expectUnauthorized treats the expected-failure path as a first-class
// success branch: 401 passes, everything else fails.
func (s *TokenService) expectUnauthorized(ctx context.Context, name, token, kind string) (*types.TestResult, error) {
	resp, err := s.client.Get(ctx, "/profiles", &client.RequestOptions{Headers: client.BearerHeader(token)})
	if err != nil {
		return transportFail(name, types.CategoryTokenManagement, err), nil
	}
	dets := details(resp, http.MethodGet, "/profiles")
	if resp.StatusCode != http.StatusUnauthorized {
		return types.Fail(name, types.CategoryTokenManagement,
			fmt.Sprintf("%s was not rejected with 401 (got %d)", kind, resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("want 401, got %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}
	return types.Pass(name, types.CategoryTokenManagement,
		fmt.Sprintf("%s correctly rejected with 401", kind)).WithDetails(dets), nil
}
