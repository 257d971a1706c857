package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/log"

	"github.com/intersend/interspace-test-hub/client"
	"github.com/intersend/interspace-test-hub/types"
)

// Test case names owned by the profile service.
const (
	NameAutomaticProfileCreation = "Automatic Profile Creation"
	NameCreateProfile            = "Create Profile"
	NameGetProfile               = "Get Profile"
	NameUpdateProfile            = "Update Profile"
	NameSwitchProfile            = "Switch Profile"
	NameDeleteProfile            = "Delete Profile"
	NameDeleteLastProfile        = "Delete Last Profile"
)

// MsgDeleteLastProfilePrevented is the message reported when the server
// correctly rejects deleting the sole remaining profile.
const MsgDeleteLastProfilePrevented = "Correctly prevented deletion of last profile"

// ProfileService drives the profile CRUD test scenarios.
type ProfileService struct {
	client *client.Client
	log    log.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(c *client.Client, logger log.Logger) *ProfileService {
	return &ProfileService{client: c, log: logger.New("service", "profile")}
}

// noToken is the shared precondition failure for profile scenarios.
func noToken(name string) *types.TestResult {
	return types.Fail(name, types.CategoryProfile, "no access token available from an earlier authentication test",
		types.NewTestError(types.CodeNoToken, "missing access token"))
}

// fetchProfiles lists the account's profiles with the current token.
func (s *ProfileService) fetchProfiles(ctx context.Context, token string) ([]profileDTO, *client.Response, error) {
	resp, err := s.client.Get(ctx, "/profiles", &client.RequestOptions{Headers: client.BearerHeader(token)})
	if err != nil {
		return nil, nil, err
	}
	if !resp.OK() {
		return nil, resp, nil
	}
	var profiles []profileDTO
	if _, perr := parseEnvelope(resp, &profiles); perr != nil {
		return nil, resp, perr
	}
	return profiles, resp, nil
}

// AutomaticProfileCreation verifies that authentication provisioned at
// least one profile. Requires the token captured by an earlier auth test.
func (s *ProfileService) AutomaticProfileCreation(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameAutomaticProfileCreation
	if !rc.HasToken() {
		return noToken(name), nil
	}

	profiles, resp, err := s.fetchProfiles(ctx, rc.AccessToken)
	if err != nil {
		return callFail(name, types.CategoryProfile, err), nil
	}
	if resp != nil && !resp.OK() {
		return types.Fail(name, types.CategoryProfile,
			fmt.Sprintf("profile list returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(details(resp, http.MethodGet, "/profiles")), nil
	}
	if len(profiles) == 0 {
		return types.Fail(name, types.CategoryProfile, "no profile was provisioned for the new account",
			types.NewTestError(types.CodeNoProfile, "empty profile list")), nil
	}

	rc.Profiles = rc.Profiles[:0]
	for _, p := range profiles {
		rc.Profiles = append(rc.Profiles, p.summary())
	}
	dets := details(resp, http.MethodGet, "/profiles")
	dets.ProfileID = profiles[0].ID
	return types.Pass(name, types.CategoryProfile,
		fmt.Sprintf("account has %d profile(s)", len(profiles))).WithDetails(dets), nil
}

// CreateProfile creates a second profile and asserts the name round-trips.
func (s *ProfileService) CreateProfile(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameCreateProfile
	if !rc.HasToken() {
		return noToken(name), nil
	}

	const profileName = "Test Hub Trading"
	resp, err := s.client.Post(ctx, "/profiles", &client.RequestOptions{
		Headers: client.BearerHeader(rc.AccessToken),
		Body:    map[string]string{"name": profileName},
	})
	if err != nil {
		return transportFail(name, types.CategoryProfile, err), nil
	}
	dets := details(resp, http.MethodPost, "/profiles")
	if !resp.OK() {
		return types.Fail(name, types.CategoryProfile,
			fmt.Sprintf("profile creation returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}

	var created profileDTO
	if _, perr := parseEnvelope(resp, &created); perr != nil {
		return parseFail(name, types.CategoryProfile, perr), nil
	}
	if created.ID == "" {
		return types.Fail(name, types.CategoryProfile, "created profile has no id",
			types.NewTestError(types.CodeValidationError, "missing profile id")).WithDetails(dets), nil
	}
	if created.Name != profileName {
		return types.Fail(name, types.CategoryProfile,
			fmt.Sprintf("profile name did not round-trip: want %q, got %q", profileName, created.Name),
			types.NewTestError(types.CodeValidationError, "name mismatch")).WithDetails(dets), nil
	}

	rc.Profiles = append(rc.Profiles, created.summary())
	dets.ProfileID = created.ID
	return types.Pass(name, types.CategoryProfile, "profile created").WithDetails(dets), nil
}

// GetProfile fetches the most recently created profile and asserts identity
// fields and session wallet presence round-trip.
func (s *ProfileService) GetProfile(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameGetProfile
	if !rc.HasToken() {
		return noToken(name), nil
	}
	if len(rc.Profiles) == 0 {
		return types.Fail(name, types.CategoryProfile, "no known profile to fetch",
			types.NewTestError(types.CodeNoProfile, "no profile captured by earlier tests")), nil
	}

	want := rc.Profiles[len(rc.Profiles)-1]
	endpoint := "/profiles/" + want.ID
	resp, err := s.client.Get(ctx, endpoint, &client.RequestOptions{Headers: client.BearerHeader(rc.AccessToken)})
	if err != nil {
		return transportFail(name, types.CategoryProfile, err), nil
	}
	dets := details(resp, http.MethodGet, endpoint)
	if !resp.OK() {
		return types.Fail(name, types.CategoryProfile,
			fmt.Sprintf("profile fetch returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}

	var got profileDTO
	if _, perr := parseEnvelope(resp, &got); perr != nil {
		return parseFail(name, types.CategoryProfile, perr), nil
	}
	if got.ID != want.ID || got.Name != want.Name {
		return types.Fail(name, types.CategoryProfile,
			fmt.Sprintf("profile identity mismatch: want %s/%q, got %s/%q", want.ID, want.Name, got.ID, got.Name),
			types.NewTestError(types.CodeValidationError, "identity mismatch")).WithDetails(dets), nil
	}
	if got.WalletAddress == "" {
		return types.Fail(name, types.CategoryProfile, "profile has no session wallet address",
			types.NewTestError(types.CodeValidationError, "missing session wallet address")).WithDetails(dets), nil
	}
	if got.LinkedAccountsCount < 0 || got.AppsCount < 0 || got.FoldersCount < 0 {
		return types.Fail(name, types.CategoryProfile, "profile membership counts are negative",
			types.NewTestError(types.CodeValidationError, "invalid membership counts")).WithDetails(dets), nil
	}

	dets.ProfileID = got.ID
	return types.Pass(name, types.CategoryProfile, "profile fields round-tripped").WithDetails(dets), nil
}

// UpdateProfile renames the most recently created profile and asserts the
// new name round-trips.
func (s *ProfileService) UpdateProfile(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameUpdateProfile
	if !rc.HasToken() {
		return noToken(name), nil
	}
	if len(rc.Profiles) == 0 {
		return types.Fail(name, types.CategoryProfile, "no known profile to update",
			types.NewTestError(types.CodeNoProfile, "no profile captured by earlier tests")), nil
	}

	target := rc.Profiles[len(rc.Profiles)-1]
	const newName = "Test Hub Trading (renamed)"
	endpoint := "/profiles/" + target.ID
	resp, err := s.client.Put(ctx, endpoint, &client.RequestOptions{
		Headers: client.BearerHeader(rc.AccessToken),
		Body:    map[string]string{"name": newName},
	})
	if err != nil {
		return transportFail(name, types.CategoryProfile, err), nil
	}
	dets := details(resp, http.MethodPut, endpoint)
	if !resp.OK() {
		return types.Fail(name, types.CategoryProfile,
			fmt.Sprintf("profile update returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}

	var updated profileDTO
	if _, perr := parseEnvelope(resp, &updated); perr != nil {
		return parseFail(name, types.CategoryProfile, perr), nil
	}
	if updated.Name != newName {
		return types.Fail(name, types.CategoryProfile,
			fmt.Sprintf("updated name did not round-trip: want %q, got %q", newName, updated.Name),
			types.NewTestError(types.CodeValidationError, "name mismatch")).WithDetails(dets), nil
	}

	rc.Profiles[len(rc.Profiles)-1].Name = newName
	dets.ProfileID = target.ID
	return types.Pass(name, types.CategoryProfile, "profile updated").WithDetails(dets), nil
}

// SwitchProfile activates the profile created earlier in the run and
// asserts the active flag moved.
func (s *ProfileService) SwitchProfile(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameSwitchProfile
	if !rc.HasToken() {
		return noToken(name), nil
	}
	if len(rc.Profiles) < 2 {
		return types.Fail(name, types.CategoryProfile, "need a second profile from an earlier test to switch to",
			types.NewTestError(types.CodeNoProfile, "fewer than two profiles available")), nil
	}

	target := rc.Profiles[len(rc.Profiles)-1]
	endpoint := "/auth/switch-profile/" + target.ID
	resp, err := s.client.Post(ctx, endpoint, &client.RequestOptions{Headers: client.BearerHeader(rc.AccessToken)})
	if err != nil {
		return transportFail(name, types.CategoryProfile, err), nil
	}
	dets := details(resp, http.MethodPost, endpoint)
	if !resp.OK() {
		return types.Fail(name, types.CategoryProfile,
			fmt.Sprintf("profile switch returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}

	var active profileDTO
	if _, perr := parseEnvelope(resp, &active); perr != nil {
		return parseFail(name, types.CategoryProfile, perr), nil
	}
	if active.ID != target.ID || !active.IsActive {
		return types.Fail(name, types.CategoryProfile,
			fmt.Sprintf("switch did not activate profile %s", target.ID),
			types.NewTestError(types.CodeValidationError, "active flag did not move")).WithDetails(dets), nil
	}

	for i := range rc.Profiles {
		rc.Profiles[i].IsActive = rc.Profiles[i].ID == target.ID
	}
	dets.ProfileID = target.ID
	return types.Pass(name, types.CategoryProfile, "switched to profile "+target.ID).WithDetails(dets), nil
}

// DeleteProfile removes the profile created by the run while at least one
// other profile remains.
func (s *ProfileService) DeleteProfile(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameDeleteProfile
	if !rc.HasToken() {
		return noToken(name), nil
	}
	if len(rc.Profiles) < 2 {
		return types.Fail(name, types.CategoryProfile, "refusing to delete: only one profile is known",
			types.NewTestError(types.CodeNoProfile, "fewer than two profiles available")), nil
	}

	target := rc.Profiles[len(rc.Profiles)-1]
	endpoint := "/profiles/" + target.ID
	resp, err := s.client.Delete(ctx, endpoint, &client.RequestOptions{Headers: client.BearerHeader(rc.AccessToken)})
	if err != nil {
		return transportFail(name, types.CategoryProfile, err), nil
	}
	dets := details(resp, http.MethodDelete, endpoint)
	if !resp.OK() {
		return types.Fail(name, types.CategoryProfile,
			fmt.Sprintf("profile deletion returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(dets), nil
	}

	rc.Profiles = rc.Profiles[:len(rc.Profiles)-1]
	if _, ok := rc.ActiveProfile(); !ok && len(rc.Profiles) > 0 {
		rc.Profiles[0].IsActive = true
	}
	dets.ProfileID = target.ID
	return types.Pass(name, types.CategoryProfile, "profile deleted").WithDetails(dets), nil
}

// DeleteLastProfile attempts to delete the sole remaining profile. The
// server must reject it; an accepted deletion fails the test.
func (s *ProfileService) DeleteLastProfile(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
	const name = NameDeleteLastProfile
	if !rc.HasToken() {
		return noToken(name), nil
	}

	profiles, resp, err := s.fetchProfiles(ctx, rc.AccessToken)
	if err != nil {
		return callFail(name, types.CategoryProfile, err), nil
	}
	if resp != nil && !resp.OK() {
		return types.Fail(name, types.CategoryProfile,
			fmt.Sprintf("profile list returned status %d", resp.StatusCode),
			types.NewTestError(types.CodeUnexpectedStatus, fmt.Sprintf("unexpected status %d", resp.StatusCode)),
		).WithDetails(details(resp, http.MethodGet, "/profiles")), nil
	}
	if len(profiles) != 1 {
		return types.Fail(name, types.CategoryProfile,
			fmt.Sprintf("precondition not met: expected exactly one profile, found %d", len(profiles)),
			types.NewTestError(types.CodeValidationError, "expected exactly one remaining profile")), nil
	}

	endpoint := "/profiles/" + profiles[0].ID
	resp, err = s.client.Delete(ctx, endpoint, &client.RequestOptions{Headers: client.BearerHeader(rc.AccessToken)})
	if err != nil {
		return transportFail(name, types.CategoryProfile, err), nil
	}
	dets := details(resp, http.MethodDelete, endpoint)
	dets.ProfileID = profiles[0].ID
	if resp.OK() {
		return types.Fail(name, types.CategoryProfile, "server deleted the last profile",
			types.NewTestError(types.CodeDeleteNotPrevented, "deletion of last profile was not prevented"),
		).WithDetails(dets), nil
	}

	return types.Pass(name, types.CategoryProfile, MsgDeleteLastProfilePrevented).WithDetails(dets), nil
}
