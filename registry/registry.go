// Package registry declares every test case the hub can run. Cases are
// grouped into categories and kept in declaration order; the order is
// significant because later cases read the tokens and profiles earlier
// cases leave in the run context.
package registry

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/intersend/interspace-test-hub/client"
	"github.com/intersend/interspace-test-hub/services"
	"github.com/intersend/interspace-test-hub/types"
)

// Config contains registry configuration.
type Config struct {
	Client *client.Client
	Log    log.Logger
}

// Registry holds the declared test cases.
type Registry struct {
	log   log.Logger
	cases []types.TestCase
}

// New builds the registry and its domain services. Case names are checked
// for uniqueness because results are keyed by name.
func New(cfg Config) (*Registry, error) {
	if cfg.Client == nil {
		return nil, errors.New("client is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}

	auth := services.NewAuthService(cfg.Client, cfg.Log)
	profile := services.NewProfileService(cfg.Client, cfg.Log)
	linking := services.NewLinkingService(cfg.Client, cfg.Log)
	token := services.NewTokenService(cfg.Client, cfg.Log)
	edge := services.NewEdgeCaseService(cfg.Client, cfg.Log)

	var cases []types.TestCase
	cases = append(cases, authenticationCases(auth)...)
	cases = append(cases, profileCases(profile)...)
	cases = append(cases, linkingCases(linking)...)
	cases = append(cases, tokenCases(token)...)
	cases = append(cases, edgeCases(edge)...)

	seen := make(map[string]struct{}, len(cases))
	for _, c := range cases {
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("duplicate test case name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	cfg.Log.Debug("registry loaded", "cases", len(cases))
	return &Registry{log: cfg.Log, cases: cases}, nil
}

// All returns every case in declaration order.
func (r *Registry) All() []types.TestCase {
	return append([]types.TestCase(nil), r.cases...)
}

// ByCategory returns the cases of one category, preserving order.
func (r *Registry) ByCategory(c types.Category) []types.TestCase {
	var out []types.TestCase
	for _, tc := range r.cases {
		if tc.Category == c {
			out = append(out, tc)
		}
	}
	return out
}

// Len returns the number of declared cases.
func (r *Registry) Len() int {
	return len(r.cases)
}

func authenticationCases(s *services.AuthService) []types.TestCase {
	return []types.TestCase{
		{
			Name:             services.NameSendEmailCode,
			Category:         types.CategoryAuthentication,
			Description:      "Request an email verification code",
			ExpectedDuration: 1 * time.Second,
			Run:              s.SendEmailCode,
		},
		{
			Name:             services.NameEmailAuthNewUser,
			Category:         types.CategoryAuthentication,
			Description:      "Authenticate a brand-new email identity and adopt its session",
			ExpectedDuration: 2 * time.Second,
			Run:              s.EmailAuthNewUser,
		},
		{
			Name:             services.NameEmailAuthExisting,
			Category:         types.CategoryAuthentication,
			Description:      "Authenticate the pre-provisioned email identity",
			ExpectedDuration: 2 * time.Second,
			Run:              s.EmailAuthExistingUser,
		},
		{
			Name:             services.NameWalletAuth,
			Category:         types.CategoryAuthentication,
			Description:      "Authenticate with the canned wallet signature",
			ExpectedDuration: 2 * time.Second,
			Run:              s.WalletAuth,
		},
		{
			Name:             services.NameGuestAuth,
			Category:         types.CategoryAuthentication,
			Description:      "Open a guest session",
			ExpectedDuration: 1 * time.Second,
			Run:              s.GuestAuth,
		},
		{
			Name:             services.NameLogout,
			Category:         types.CategoryAuthentication,
			Description:      "Log out a throwaway session and keep its token for the blacklist test",
			ExpectedDuration: 2 * time.Second,
			Run:              s.Logout,
		},
	}
}

func profileCases(s *services.ProfileService) []types.TestCase {
	return []types.TestCase{
		{
			Name:             services.NameAutomaticProfileCreation,
			Category:         types.CategoryProfile,
			Description:      "A new account is provisioned with at least one profile",
			RequiresAuth:     true,
			ExpectedDuration: 1 * time.Second,
			Run:              s.AutomaticProfileCreation,
		},
		{
			Name:             services.NameCreateProfile,
			Category:         types.CategoryProfile,
			Description:      "Create a second profile and round-trip its name",
			RequiresAuth:     true,
			ExpectedDuration: 2 * time.Second,
			Run:              s.CreateProfile,
		},
		{
			Name:             services.NameGetProfile,
			Category:         types.CategoryProfile,
			Description:      "Fetch the created profile and round-trip its fields",
			RequiresAuth:     true,
			ExpectedDuration: 1 * time.Second,
			Run:              s.GetProfile,
		},
		{
			Name:             services.NameUpdateProfile,
			Category:         types.CategoryProfile,
			Description:      "Rename the created profile and round-trip the new name",
			RequiresAuth:     true,
			ExpectedDuration: 1 * time.Second,
			Run:              s.UpdateProfile,
		},
		{
			Name:             services.NameSwitchProfile,
			Category:         types.CategoryProfile,
			Description:      "Activate the created profile",
			RequiresAuth:     true,
			ExpectedDuration: 1 * time.Second,
			Run:              s.SwitchProfile,
		},
		{
			Name:             services.NameDeleteProfile,
			Category:         types.CategoryProfile,
			Description:      "Delete the created profile while another remains",
			RequiresAuth:     true,
			ExpectedDuration: 1 * time.Second,
			Run:              s.DeleteProfile,
		},
		{
			Name:             services.NameDeleteLastProfile,
			Category:         types.CategoryProfile,
			Description:      "Deleting the sole remaining profile must be rejected",
			RequiresAuth:     true,
			ExpectedDuration: 2 * time.Second,
			Run:              s.DeleteLastProfile,
		},
	}
}

func linkingCases(s *services.LinkingService) []types.TestCase {
	return []types.TestCase{
		{
			Name:             services.NameLinkWalletAccount,
			Category:         types.CategoryAccountLinking,
			Description:      "Link the canned test wallet to the current account",
			RequiresAuth:     true,
			ExpectedDuration: 2 * time.Second,
			Run:              s.LinkWallet,
		},
		{
			Name:             services.NameListLinkedAccounts,
			Category:         types.CategoryAccountLinking,
			Description:      "The linked wallet shows up in the account list",
			RequiresAuth:     true,
			ExpectedDuration: 1 * time.Second,
			Run:              s.ListLinked,
		},
		{
			Name:             services.NameUnlinkAccount,
			Category:         types.CategoryAccountLinking,
			Description:      "Unlink the wallet linked earlier in the run",
			RequiresAuth:     true,
			ExpectedDuration: 1 * time.Second,
			Run:              s.Unlink,
		},
	}
}

func tokenCases(s *services.TokenService) []types.TestCase {
	return []types.TestCase{
		{
			Name:             services.NameTokenRefresh,
			Category:         types.CategoryTokenManagement,
			Description:      "Rotate the token pair using the captured refresh token",
			RequiresAuth:     true,
			ExpectedDuration: 1 * time.Second,
			Run:              s.Refresh,
		},
		{
			Name:             services.NameTokenValidation,
			Category:         types.CategoryTokenManagement,
			Description:      "A protected endpoint accepts the current token",
			RequiresAuth:     true,
			ExpectedDuration: 1 * time.Second,
			Run:              s.Validate,
		},
		{
			Name:             services.NameExpiredTokenRejected,
			Category:         types.CategoryTokenManagement,
			Description:      "A long-expired token is rejected with exactly 401",
			ExpectedDuration: 1 * time.Second,
			Run:              s.ExpiredRejected,
		},
		{
			Name:             services.NameRevokedTokenRejected,
			Category:         types.CategoryTokenManagement,
			Description:      "The token invalidated by logout is rejected with exactly 401",
			ExpectedDuration: 1 * time.Second,
			Run:              s.RevokedRejected,
		},
	}
}

func edgeCases(s *services.EdgeCaseService) []types.TestCase {
	return []types.TestCase{
		{
			Name:             services.NameMalformedJSON,
			Category:         types.CategoryEdgeCases,
			Description:      "A syntactically broken body is rejected with 400",
			ExpectedDuration: 1 * time.Second,
			Run:              s.MalformedJSON,
		},
		{
			Name:             services.NameMissingAuthHeader,
			Category:         types.CategoryEdgeCases,
			Description:      "A protected endpoint rejects missing credentials with 401",
			ExpectedDuration: 1 * time.Second,
			Run:              s.MissingAuthHeader,
		},
		{
			Name:             services.NameInvalidRefreshToken,
			Category:         types.CategoryEdgeCases,
			Description:      "A garbage refresh token is rejected",
			ExpectedDuration: 1 * time.Second,
			Run:              s.InvalidRefreshToken,
		},
		{
			Name:             services.NameRateLimitProbe,
			Category:         types.CategoryEdgeCases,
			Description:      "Bounded burst looking for 429 responses",
			ExpectedDuration: 5 * time.Second,
			Run:              s.RateLimitProbe,
		},
	}
}
