package services

import (
	"fmt"

	"github.com/google/uuid"
)

// Test fixtures for the authentication flows. The dev and staging
// deployments accept the static verification code and the canned wallet
// signature for allow-listed test identities; production rejects them,
// which the edge-case tests rely on.
const (
	testVerificationCode = "123456"

	testWalletAddress   = "0x742d35cc6634c0532925a3b844bc454e4438f44e"
	testWalletSignature = "0xdeadbeef000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000001b"

	expiredAccessToken = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJ0ZXN0aHViIiwiZXhwIjoxNTE2MjM5MDIyfQ.expired"
)

// newTestEmail returns a unique address so the new-user flow really sees a
// new user on every run.
func newTestEmail() string {
	return fmt.Sprintf("testhub+%s@interspace.app", uuid.NewString()[:8])
}

// existingTestEmail is a fixed identity pre-provisioned in every
// environment for the existing-user flow.
const existingTestEmail = "testhub-existing@interspace.app"
