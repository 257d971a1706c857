package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/log"

	"github.com/intersend/interspace-test-hub/client"
	"github.com/intersend/interspace-test-hub/types"
)

// Test case names owned by the authentication service.
const (
	NameSendEmailCode     = "Send Email Code"
	NameEmailAuthNewUser  = "Email Auth - New User"
	NameEmailAuthExisting = "Email Auth - Existing User"
	NameWalletAuth        = "Wallet Auth"
	NameGuestAuth         = "Guest Auth"
	NameLogout            = "Logout"
)

// AuthService drives the authentication test scenarios.
type AuthService struct {
	client *client.Client
	log    log.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(c *client.Client, logger log.Logger) *AuthService {
	return &AuthService{client: c, log: logger.New("service", "auth")}
}

// SendEmailCode requests a verification code. Passes iff the call returns
// HTTP success.
func (s *AuthService) SendEmailCode(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameSendEmailCode
	resp, err := s.client.Post(ctx, "/auth/send-email-code", &client.RequestOptions{
		Body: map[string]string{"email": existingTestEmail},
	})
	if err != nil {
		return transportFail(name, types.CategoryAuthentication, err), nil
	}
	if !resp.OK() {
		return types.Fail(name, types.CategoryAuthentication,
			fmt.Sprintf("send-email-code returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeAuthFailed, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(details(resp, http.MethodPost, "/auth/send-email-code")), nil
	}
	return types.Pass(name, types.CategoryAuthentication, "verification code accepted").
		WithDetails(details(resp, http.MethodPost, "/auth/send-email-code")), nil
}

// EmailAuthNewUser authenticates a brand-new email identity. Passes iff the
// response carries a token, a non-empty profile list and isNewUser == true.
// On success the run context adopts the new session.
func (s *AuthService) EmailAuthNewUser(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	return s.emailAuth(ctx, rc, NameEmailAuthNewUser, newTestEmail(), true)
}

// EmailAuthExistingUser authenticates the pre-provisioned identity and
// expects isNewUser == false.
func (s *AuthService) EmailAuthExistingUser(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	return s.emailAuth(ctx, rc, NameEmailAuthExisting, existingTestEmail, false)
}

func (s *AuthService) emailAuth(ctx context.Context, rc *types.RunContext, name, email string, expectNewUser bool) (*types.TestResult, error) {
	resp, err := s.client.Post(ctx, "/auth/authenticate", &client.RequestOptions{
		Body: map[string]string{
			"strategy":         "email",
			"email":            email,
			"verificationCode": testVerificationCode,
		},
	})
	if err != nil {
		return transportFail(name, types.CategoryAuthentication, err), nil
	}
	dets := details(resp, http.MethodPost, "/auth/authenticate")
	if !resp.OK() {
		return types.Fail(name, types.CategoryAuthentication,
			fmt.Sprintf("authentication rejected with status %d", resp.StatusCode),
			types.NewTestError(types.CodeAuthFailed, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}

	var data authData
	env, err := parseEnvelope(resp, &data)
	if err != nil {
		return parseFail(name, types.CategoryAuthentication, err), nil
	}

	if data.AccessToken == "" {
		return types.Fail(name, types.CategoryAuthentication, "response carried no access token",
			types.NewTestError(types.CodeValidationError, "missing access token")).WithDetails(dets), nil
	}
	if len(data.Profiles) == 0 {
		return types.Fail(name, types.CategoryAuthentication, "response carried no profiles",
			types.NewTestError(types.CodeNoProfile, "empty profile list")).WithDetails(dets), nil
	}
	if data.IsNewUser == nil || *data.IsNewUser != expectNewUser {
		return types.Fail(name, types.CategoryAuthentication,
			fmt.Sprintf("isNewUser mismatch: want %v, got %v", expectNewUser, data.IsNewUser),
			types.NewTestError(types.CodeValidationError, "isNewUser flag mismatch")).WithDetails(dets), nil
	}
	if !env.succeeded() {
		return types.Fail(name, types.CategoryAuthentication, "server reported failure: "+env.errorText(),
			types.NewTestError(types.CodeAuthFailed, env.errorText())).WithDetails(dets), nil
	}

	adoptSession(rc, "email", &data)
	dets.AccessToken = data.AccessToken
	dets.RefreshToken = data.RefreshToken
	dets.AccountID = rc.AccountID
	dets.SessionID = data.SessionID
	s.log.Info("authenticated", "strategy", "email", "newUser", expectNewUser, "profiles", len(data.Profiles))

	return types.Pass(name, types.CategoryAuthentication,
		fmt.Sprintf("authenticated with %d profile(s)", len(data.Profiles))).WithDetails(dets), nil
}

// WalletAuth authenticates with the canned wallet signature. Passes iff a
// token is returned.
func (s *AuthService) WalletAuth(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameWalletAuth
	resp, err := s.client.Post(ctx, "/auth/authenticate", &client.RequestOptions{
		Body: map[string]string{
			"strategy":      "wallet",
			"walletAddress": testWalletAddress,
			"signature":     testWalletSignature,
		},
	})
	if err != nil {
		return transportFail(name, types.CategoryAuthentication, err), nil
	}
	dets := details(resp, http.MethodPost, "/auth/authenticate")
	if !resp.OK() {
		return types.Fail(name, types.CategoryAuthentication,
			fmt.Sprintf("wallet authentication rejected with status %d", resp.StatusCode),
			types.NewTestError(types.CodeAuthFailed, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}

	var data authData
	if _, err := parseEnvelope(resp, &data); err != nil {
		return parseFail(name, types.CategoryAuthentication, err), nil
	}
	if data.AccessToken == "" {
		return types.Fail(name, types.CategoryAuthentication, "response carried no access token",
			types.NewTestError(types.CodeValidationError, "missing access token")).WithDetails(dets), nil
	}
	dets.AccessToken = data.AccessToken
	return types.Pass(name, types.CategoryAuthentication, "wallet authentication accepted").WithDetails(dets), nil
}

// GuestAuth authenticates a guest session. Passes iff a token is returned.
func (s *AuthService) GuestAuth(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameGuestAuth
	data, resp, err := s.guestSession(ctx)
	if err != nil {
		return transportFail(name, types.CategoryAuthentication, err), nil
	}
	dets := details(resp, http.MethodPost, "/auth/authenticate")
	if !resp.OK() {
		return types.Fail(name, types.CategoryAuthentication,
			fmt.Sprintf("guest authentication rejected with status %d", resp.StatusCode),
			types.NewTestError(types.CodeAuthFailed, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}
	if data == nil || data.AccessToken == "" {
		return types.Fail(name, types.CategoryAuthentication, "guest session carried no access token",
			types.NewTestError(types.CodeValidationError, "missing access token")).WithDetails(dets), nil
	}
	dets.AccessToken = data.AccessToken
	return types.Pass(name, types.CategoryAuthentication, "guest authentication accepted").WithDetails(dets), nil
}

// Logout opens a throwaway guest session and logs it out, so the main run
// session survives. The revoked token is stashed for the blacklist test.
func (s *AuthService) Logout(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameLogout
	data, _, err := s.guestSession(ctx)
	if err != nil {
		return transportFail(name, types.CategoryAuthentication, err), nil
	}
	if data == nil || data.AccessToken == "" {
		return types.Fail(name, types.CategoryAuthentication, "could not open a session to log out",
			types.NewTestError(types.CodeNoToken, "no access token for logout")), nil
	}

	resp, err := s.client.Post(ctx, "/auth/logout", &client.RequestOptions{
		Headers: client.BearerHeader(data.AccessToken),
	})
	if err != nil {
		return transportFail(name, types.CategoryAuthentication, err), nil
	}
	dets := details(resp, http.MethodPost, "/auth/logout")
	if !resp.OK() {
		return types.Fail(name, types.CategoryAuthentication,
			fmt.Sprintf("logout returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}

	rc.RevokedToken = data.AccessToken
	return types.Pass(name, types.CategoryAuthentication, "session logged out").WithDetails(dets), nil
}

func (s *AuthService) guestSession(ctx context.Context) (*authData, *client.Response, error) {
	resp, err := s.client.Post(ctx, "/auth/authenticate", &client.RequestOptions{
		Body: map[string]string{"strategy": "guest"},
	})
	if err != nil {
		return nil, nil, err
	}
	if !resp.OK() {
		return nil, resp, nil
	}
	var data authData
	if _, err := parseEnvelope(resp, &data); err != nil {
		return nil, resp, nil
	}
	return &data, resp, nil
}

// adoptSession installs a fresh authentication payload as the run's current
// test account. Only the in-flight test body calls this.
func adoptSession(rc *types.RunContext, accountType string, data *authData) {
	rc.AccountType = accountType
	rc.AccessToken = data.AccessToken
	rc.RefreshToken = data.RefreshToken
	rc.SessionID = data.SessionID
	if data.Account != nil {
		rc.AccountID = data.Account.ID
	}
	rc.Profiles = rc.Profiles[:0]
	for _, p := range data.Profiles {
		rc.Profiles = append(rc.Profiles, p.summary())
	}
}
