package registry

import (
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intersend/interspace-test-hub/client"
	"github.com/intersend/interspace-test-hub/types"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	c, err := client.New(client.Config{BaseURL: "https://api.example.com"})
	require.NoError(t, err)
	r, err := New(Config{Client: c, Log: log.Root()})
	require.NoError(t, err)
	return r
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestCaseCountsPerCategory(t *testing.T) {
	r := newRegistry(t)

	want := map[types.Category]int{
		types.CategoryAuthentication:  6,
		types.CategoryProfile:         7,
		types.CategoryAccountLinking:  3,
		types.CategoryTokenManagement: 4,
		types.CategoryEdgeCases:       4,
	}
	total := 0
	for cat, n := range want {
		assert.Len(t, r.ByCategory(cat), n, "category %s", cat)
		total += n
	}
	assert.Equal(t, total, r.Len())
}

func TestCaseNamesUnique(t *testing.T) {
	r := newRegistry(t)

	seen := make(map[string]struct{})
	for _, tc := range r.All() {
		_, dup := seen[tc.Name]
		require.False(t, dup, "duplicate case name %q", tc.Name)
		seen[tc.Name] = struct{}{}
	}
}

func TestCasesAreComplete(t *testing.T) {
	for _, tc := range newRegistry(t).All() {
		assert.NotEmpty(t, tc.Name)
		assert.NotEmpty(t, tc.Description, "case %s", tc.Name)
		assert.NotNil(t, tc.Run, "case %s", tc.Name)
		assert.Greater(t, tc.ExpectedDuration.Seconds(), 0.0, "case %s", tc.Name)
	}
}

func TestDeclarationOrderFollowsCategories(t *testing.T) {
	// Later cases read state earlier cases leave behind, so category order
	// must match the canonical category list.
	r := newRegistry(t)

	rank := make(map[types.Category]int, len(types.Categories))
	for i, c := range types.Categories {
		rank[c] = i
	}

	last := -1
	for _, tc := range r.All() {
		cur, ok := rank[tc.Category]
		require.True(t, ok, "case %s has unknown category %s", tc.Name, tc.Category)
		require.GreaterOrEqual(t, cur, last, "case %s is out of category order", tc.Name)
		last = cur
	}
}

func TestAllReturnsCopy(t *testing.T) {
	r := newRegistry(t)

	cases := r.All()
	cases[0].Name = "mutated"
	assert.NotEqual(t, "mutated", r.All()[0].Name)
}
