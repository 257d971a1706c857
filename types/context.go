package types

// ProfileSummary is the slice of a profile the hub tracks between tests.
type ProfileSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsActive      bool   `json:"isActive"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

// RunContext is the only mutable state shared across test bodies: the
// rolling "current test account" populated by authentication tests and read
// by later ones. The runner hands the mutable pointer to exactly one
// in-flight body at a time, so no locking is needed.
type RunContext struct {
	AccountID    string
	AccountType  string
	AccessToken  string
	RefreshToken string
	SessionID    string
	Profiles     []ProfileSummary

	// RevokedToken is an access token invalidated by a logout test, kept so
	// the blacklist rejection test can probe it.
	RevokedToken string
}

// HasToken reports whether an access token is available. Readers must treat
// its absence as a precondition failure (NO_TOKEN), never block or skip.
func (rc *RunContext) HasToken() bool {
	return rc != nil && rc.AccessToken != ""
}

// HasRefreshToken reports whether a refresh token is available.
func (rc *RunContext) HasRefreshToken() bool {
	return rc != nil && rc.RefreshToken != ""
}

// ActiveProfile returns the currently active profile, if any.
func (rc *RunContext) ActiveProfile() (ProfileSummary, bool) {
	for _, p := range rc.Profiles {
		if p.IsActive {
			return p, true
		}
	}
	return ProfileSummary{}, false
}

// Snapshot returns a read-only copy. Completed and future test bodies get
// the copy, never the live pointer.
func (rc *RunContext) Snapshot() RunContext {
	cp := *rc
	cp.Profiles = append([]ProfileSummary(nil), rc.Profiles...)
	return cp
}
