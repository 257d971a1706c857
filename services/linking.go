package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/log"

	"github.com/intersend/interspace-test-hub/client"
	"github.com/intersend/interspace-test-hub/types"
)

// Test case names owned by the linking service.
const (
	NameLinkWalletAccount  = "Link Wallet Account"
	NameListLinkedAccounts = "List Linked Accounts"
	NameUnlinkAccount      = "Unlink Account"
)

// LinkingService drives the account-linking test scenarios.
type LinkingService struct {
	client *client.Client
	log    log.Logger

	// linkedID carries the account created by LinkWallet to UnlinkAccount.
	// The service is run-scoped, so this is single-writer like RunContext.
	linkedID string
}

// NewLinkingService creates a LinkingService.
func NewLinkingService(c *client.Client, logger log.Logger) *LinkingService {
	return &LinkingService{client: c, log: logger.New("service", "linking")}
}

// LinkWallet links the canned test wallet to the current account.
func (s *LinkingService) LinkWallet(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameLinkWalletAccount
	if !rc.HasToken() {
		return types.Fail(name, types.CategoryAccountLinking,
			"no access token available from an earlier authentication test",
			types.NewTestError(types.CodeNoToken, "missing access token")), nil
	}

	resp, err := s.client.Post(ctx, "/accounts/link", &client.RequestOptions{
		Headers: client.BearerHeader(rc.AccessToken),
		Body: map[string]string{
			"type":          "wallet",
			"walletAddress": testWalletAddress,
			"signature":     testWalletSignature,
		},
	})
	if err != nil {
		return transportFail(name, types.CategoryAccountLinking, err), nil
	}
	dets := details(resp, http.MethodPost, "/accounts/link")
	if !resp.OK() {
		return types.Fail(name, types.CategoryAccountLinking,
			fmt.Sprintf("account link returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}

	var linked linkedAccountDTO
	if _, perr := parseEnvelope(resp, &linked); perr != nil {
		return parseFail(name, types.CategoryAccountLinking, perr), nil
	}
	if linked.ID == "" {
		return types.Fail(name, types.CategoryAccountLinking, "linked account has no id",
			types.NewTestError(types.CodeValidationError, "missing linked account id")).WithDetails(dets), nil
	}
	if linked.WalletAddress != testWalletAddress {
		return types.Fail(name, types.CategoryAccountLinking,
			fmt.Sprintf("wallet address did not round-trip: want %s, got %s", testWalletAddress, linked.WalletAddress),
			types.NewTestError(types.CodeValidationError, "wallet address mismatch")).WithDetails(dets), nil
	}

	s.linkedID = linked.ID
	dets.AccountID = linked.ID
	return types.Pass(name, types.CategoryAccountLinking, "wallet account linked").WithDetails(dets), nil
}

// ListLinked asserts the linked-account list contains the wallet linked by
// the previous test.
func (s *LinkingService) ListLinked(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameListLinkedAccounts
	if !rc.HasToken() {
		return types.Fail(name, types.CategoryAccountLinking,
			"no access token available from an earlier authentication test",
			types.NewTestError(types.CodeNoToken, "missing access token")), nil
	}

	resp, err := s.client.Get(ctx, "/accounts", &client.RequestOptions{Headers: client.BearerHeader(rc.AccessToken)})
	if err != nil {
		return transportFail(name, types.CategoryAccountLinking, err), nil
	}
	dets := details(resp, http.MethodGet, "/accounts")
	if !resp.OK() {
		return types.Fail(name, types.CategoryAccountLinking,
			fmt.Sprintf("account list returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}

	var accounts []linkedAccountDTO
	if _, perr := parseEnvelope(resp, &accounts); perr != nil {
		return parseFail(name, types.CategoryAccountLinking, perr), nil
	}
	if s.linkedID != "" {
		found := false
		for _, a := range accounts {
			if a.ID == s.linkedID {
				found = true
				break
			}
		}
		if !found {
			return types.Fail(name, types.CategoryAccountLinking,
				"previously linked wallet account is missing from the list",
				types.NewTestError(types.CodeValidationError, "linked account not listed")).WithDetails(dets), nil
		}
	} else if len(accounts) == 0 {
		return types.Fail(name, types.CategoryAccountLinking, "account list is empty",
			types.NewTestError(types.CodeValidationError, "no linked accounts")).WithDetails(dets), nil
	}

	return types.Pass(name, types.CategoryAccountLinking,
		fmt.Sprintf("account list has %d linked account(s)", len(accounts))).WithDetails(dets), nil
}

// Unlink removes the wallet account linked earlier in the run.
func (s *LinkingService) Unlink(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameUnlinkAccount
	if !rc.HasToken() {
		return types.Fail(name, types.CategoryAccountLinking,
			"no access token available from an earlier authentication test",
			types.NewTestError(types.CodeNoToken, "missing access token")), nil
	}
	if s.linkedID == "" {
		return types.Fail(name, types.CategoryAccountLinking,
			"no linked account available from an earlier link test",
			types.NewTestError(types.CodeValidationError, "missing linked account id")), nil
	}

	endpoint := "/accounts/" + s.linkedID
	resp, err := s.client.Delete(ctx, endpoint, &client.RequestOptions{Headers: client.BearerHeader(rc.AccessToken)})
	if err != nil {
		return transportFail(name, types.CategoryAccountLinking, err), nil
	}
	dets := details(resp, http.MethodDelete, endpoint)
	if !resp.OK() {
		return types.Fail(name, types.CategoryAccountLinking,
			fmt.Sprintf("account unlink returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}

	dets.AccountID = s.linkedID
	s.linkedID = ""
	return types.Pass(name, types.CategoryAccountLinking, "wallet account unlinked").WithDetails(dets), nil
}
