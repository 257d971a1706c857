package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/intersend/interspace-test-hub/client"
	"github.com/intersend/interspace-test-hub/types"
)

// Test case names owned by the edge-case service.
const (
	NameMalformedJSON       = "Malformed JSON Request"
	NameMissingAuthHeader   = "Missing Auth Header"
	NameInvalidRefreshToken = "Invalid Refresh Token"
	NameRateLimitProbe      = "Rate Limit Probe"
)

const (
	// rateLimitMaxRequests bounds the probe; the original driver fired up
	// to 20 requests and that budget is kept.
	rateLimitMaxRequests = 20
	rateLimitSpacing     = 50 * time.Millisecond
)

// EdgeCaseService probes the API's failure paths. Expected failures are
// first-class success branches here, never caught exceptions.
type EdgeCaseService struct {
	client *client.Client
	log    log.Logger
}

// NewEdgeCaseService creates an EdgeCaseService.
func NewEdgeCaseService(c *client.Client, logger log.Logger) *EdgeCaseService {
	return &EdgeCaseService{client: c, log: logger.New("service", "edge-cases")}
}

// MalformedJSON sends a syntactically broken body and expects 400.
func (s *EdgeCaseService) MalformedJSON(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameMalformedJSON
	resp, err := s.client.Post(ctx, "/auth/authenticate", &client.RequestOptions{
		Headers: map[string]string{"Content-Type": "application/json"},
		RawBody: []byte(`{"strategy": "email", "email": `),
	})
	if err != nil {
		return transportFail(name, types.CategoryEdgeCases, err), nil
	}
	dets := details(resp, http.MethodPost, "/auth/authenticate")
	if resp.StatusCode != http.StatusBadRequest {
		return types.Fail(name, types.CategoryEdgeCases,
			fmt.Sprintf("malformed body was not rejected with 400 (got %d)", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("want 400, got %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}
	return types.Pass(name, types.CategoryEdgeCases, "malformed body correctly rejected with 400").WithDetails(dets), nil
}

// MissingAuthHeader calls a protected endpoint with no credentials and
// expects 401.
func (s *EdgeCaseService) MissingAuthHeader(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameMissingAuthHeader
	resp, err := s.client.Get(ctx, "/profiles", nil)
	if err != nil {
		return transportFail(name, types.CategoryEdgeCases, err), nil
	}
	dets := details(resp, http.MethodGet, "/profiles")
	if resp.StatusCode != http.StatusUnauthorized {
		return types.Fail(name, types.CategoryEdgeCases,
			fmt.Sprintf("missing credentials were not rejected with 401 (got %d)", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("want 401, got %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}
	return types.Pass(name, types.CategoryEdgeCases, "missing credentials correctly rejected with 401").WithDetails(dets), nil
}

// InvalidRefreshToken exchanges a garbage refresh token and expects the
// server to reject it with 400 or 401.
func (s *EdgeCaseService) InvalidRefreshToken(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameInvalidRefreshToken
	resp, err := s.client.Post(ctx, "/auth/refresh", &client.RequestOptions{
		Body: map[string]string{"refreshToken": "not-a-refresh-token"},
	})
	if err != nil {
		return transportFail(name, types.CategoryEdgeCases, err), nil
	}
	dets := details(resp, http.MethodPost, "/auth/refresh")
	if resp.StatusCode != http.StatusBadRequest && resp.StatusCode != http.StatusUnauthorized {
		return types.Fail(name, types.CategoryEdgeCases,
			fmt.Sprintf("invalid refresh token was not rejected (got %d)", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("want 400 or 401, got %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}
	return types.Pass(name, types.CategoryEdgeCases,
		fmt.Sprintf("invalid refresh token correctly rejected with %d", resp.StatusCode)).WithDetails(dets), nil
}

// RateLimitProbe issues a bounded burst of send-email-code calls. Observing
// a 429 inside the budget passes; a server that never throttles also passes,
// since dev deployments may not enforce limits. Only transport errors and
// unexpected statuses fail the probe.
func (s *EdgeCaseService) RateLimitProbe(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameRateLimitProbe
	accepted := 0
	for i := 0; i < rateLimitMaxRequests; i++ {
		resp, err := s.client.Post(ctx, "/auth/send-email-code", &client.RequestOptions{
			Body: map[string]string{"email": existingTestEmail},
		})
		if err != nil {
			return transportFail(name, types.CategoryEdgeCases, err), nil
		}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			dets := details(resp, http.MethodPost, "/auth/send-email-code")
			return types.Pass(name, types.CategoryEdgeCases,
				fmt.Sprintf("rate limit enforced after %d request(s)", i+1)).WithDetails(dets), nil
		case resp.OK():
			accepted++
		default:
			dets := details(resp, http.MethodPost, "/auth/send-email-code")
			return types.Fail(name, types.CategoryEdgeCases,
				fmt.Sprintf("probe request %d returned status %d", i+1, resp.StatusCode),
				types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
			).WithDetails(dets), nil
		}

		select {
		case <-ctx.Done():
			return transportFail(name, types.CategoryEdgeCases, ctx.Err()), nil
		case <-time.After(rateLimitSpacing):
		}
	}

	s.log.Warn("rate limit never triggered", "requests", accepted)
	return types.Pass(name, types.CategoryEdgeCases,
		fmt.Sprintf("no rate limit observed in %d requests (tolerated)", accepted)), nil
}
