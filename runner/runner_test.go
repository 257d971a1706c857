package runner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intersend/interspace-test-hub/types"
)

// fakeSource is an in-memory CaseSource for runner tests.
type fakeSource struct {
	cases []types.TestCase
}

func (f *fakeSource) All() []types.TestCase {
	return append([]types.TestCase(nil), f.cases...)
}

func (f *fakeSource) ByCategory(c types.Category) []types.TestCase {
	var out []types.TestCase
	for _, tc := range f.cases {
		if tc.Category == c {
			out = append(out, tc)
		}
	}
	return out
}

func passCase(name string, category types.Category) types.TestCase {
	return types.TestCase{
		Name:     name,
		Category: category,
		Run: func(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
			return types.Pass(name, category, "ok"), nil
		},
	}
}

func newRunner(t *testing.T, src CaseSource) *Runner {
	t.Helper()
	r, err := New(Config{
		Registry: src,
		Log:      log.Root(),
		Progress: NewNoOpProgressIndicator(),
	})
	require.NoError(t, err)
	return r
}

func TestNewRequiresRegistry(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestRunAllPreservesOrder(t *testing.T) {
	src := &fakeSource{cases: []types.TestCase{
		passCase("first", types.CategoryAuthentication),
		passCase("second", types.CategoryAuthentication),
		passCase("third", types.CategoryProfile),
	}}
	r := newRunner(t, src)

	results, err := r.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Name)
	assert.Equal(t, "second", results[1].Name)
	assert.Equal(t, "third", results[2].Name)
	for _, res := range results {
		assert.True(t, res.Success)
	}
	assert.Equal(t, StateCompleted, r.State())
	assert.Empty(t, r.CurrentTest())
}

func TestFailureIsolation(t *testing.T) {
	// One body errors, one panics, one returns nil; every other case must
	// still execute and each failure must carry EXECUTION_ERROR.
	src := &fakeSource{cases: []types.TestCase{
		passCase("ok-1", types.CategoryAuthentication),
		{
			Name:     "errors",
			Category: types.CategoryAuthentication,
			Run: func(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
				return nil, errors.New("body blew up")
			},
		},
		{
			Name:     "panics",
			Category: types.CategoryProfile,
			Run: func(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
				panic("boom")
			},
		},
		{
			Name:     "nil result",
			Category: types.CategoryProfile,
			Run: func(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
				return nil, nil
			},
		},
		passCase("ok-2", types.CategoryEdgeCases),
	}}
	r := newRunner(t, src)

	results, err := r.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.True(t, results[0].Success)
	assert.True(t, results[4].Success)

	for _, i := range []int{1, 2, 3} {
		res := results[i]
		assert.False(t, res.Success, "case %s", res.Name)
		require.NotNil(t, res.Error, "case %s", res.Name)
		assert.Equal(t, types.CodeExecutionError, res.Error.Code, "case %s", res.Name)
	}
	assert.Contains(t, results[2].Message, "panicked")
}

func TestElapsedIsWallClock(t *testing.T) {
	sleeper := types.TestCase{
		Name:     "sleeper",
		Category: types.CategoryEdgeCases,
		Run: func(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
			time.Sleep(20 * time.Millisecond)
			return types.Pass("sleeper", types.CategoryEdgeCases, "ok"), nil
		},
	}
	src := &fakeSource{cases: []types.TestCase{
		sleeper,
		passCase("instant", types.CategoryEdgeCases),
	}}
	r := newRunner(t, src)

	assert.Zero(t, r.Elapsed())

	results, err := r.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	var sum float64
	for _, res := range results {
		sum += res.Duration
	}
	assert.GreaterOrEqual(t, r.Elapsed(), 20*time.Millisecond)
	assert.GreaterOrEqual(t, r.Elapsed().Seconds(), sum)
}

func TestRunnerOwnsResultIdentity(t *testing.T) {
	src := &fakeSource{cases: []types.TestCase{
		{
			Name:     "canonical name",
			Category: types.CategoryProfile,
			Run: func(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
				// A body reporting the wrong identity is corrected.
				return types.Pass("some other name", types.CategoryEdgeCases, "ok"), nil
			},
		},
	}}
	r := newRunner(t, src)

	results, err := r.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "canonical name", results[0].Name)
	assert.Equal(t, types.CategoryProfile, results[0].Category)
}

func TestRunContextChainsAcrossCases(t *testing.T) {
	src := &fakeSource{cases: []types.TestCase{
		{
			Name:     "login",
			Category: types.CategoryAuthentication,
			Run: func(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
				rc.AccessToken = "tok-from-login"
				return types.Pass("login", types.CategoryAuthentication, "ok"), nil
			},
		},
		{
			Name:     "needs token",
			Category: types.CategoryProfile,
			Run: func(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
				if !rc.HasToken() {
					return types.Fail("needs token", types.CategoryProfile, "no token",
						types.NewTestError(types.CodeNoToken, "missing access token")), nil
				}
				return types.Pass("needs token", types.CategoryProfile, "got "+rc.AccessToken), nil
			},
		},
	}}
	r := newRunner(t, src)

	results, err := r.RunAll(context.Background())
	require.NoError(t, err)
	assert.True(t, results[1].Success)
	assert.Equal(t, "got tok-from-login", results[1].Message)
	assert.Equal(t, "tok-from-login", r.Context().AccessToken)
}

func TestRunContextResetBetweenRuns(t *testing.T) {
	calls := 0
	src := &fakeSource{cases: []types.TestCase{
		{
			Name:     "writer",
			Category: types.CategoryAuthentication,
			Run: func(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
				calls++
				if rc.HasToken() {
					return types.Fail("writer", types.CategoryAuthentication, "stale token leaked into new run",
						types.NewTestError(types.CodeValidationError, "stale state")), nil
				}
				rc.AccessToken = "tok"
				return types.Pass("writer", types.CategoryAuthentication, "ok"), nil
			},
		},
	}}
	r := newRunner(t, src)

	for i := 0; i < 2; i++ {
		results, err := r.RunAll(context.Background())
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.True(t, results[0].Success, "run %d", i)
	}
	assert.Equal(t, 2, calls)
}

func TestRunCategory(t *testing.T) {
	src := &fakeSource{cases: []types.TestCase{
		passCase("auth-1", types.CategoryAuthentication),
		passCase("profile-1", types.CategoryProfile),
		passCase("auth-2", types.CategoryAuthentication),
	}}
	r := newRunner(t, src)

	results, err := r.RunCategory(context.Background(), types.CategoryAuthentication)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "auth-1", results[0].Name)
	assert.Equal(t, "auth-2", results[1].Name)
}

func TestRunCategoryEmpty(t *testing.T) {
	r := newRunner(t, &fakeSource{cases: []types.TestCase{passCase("auth-1", types.CategoryAuthentication)}})

	_, err := r.RunCategory(context.Background(), types.CategoryEdgeCases)
	require.Error(t, err)
}

// recordingProgress captures the progress callbacks for assertions.
type recordingProgress struct {
	mu       sync.Mutex
	started  []string
	etas     []time.Duration
	finished int
}

func (p *recordingProgress) Start(total int) {}

func (p *recordingProgress) StartTest(name string, completed, total int, progress float64, eta time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = append(p.started, name)
	p.etas = append(p.etas, eta)
}

func (p *recordingProgress) CompleteTest(name string, status types.TestStatus, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished++
}

func (p *recordingProgress) Complete(passed, failed int, duration time.Duration) {}

func TestProgressCallbacks(t *testing.T) {
	slow := types.TestCase{
		Name:             "slow",
		Category:         types.CategoryAuthentication,
		ExpectedDuration: 2 * time.Second,
		Run: func(ctx context.Context, rc *types.RunContext) (*types.TestResult, error) {
			time.Sleep(10 * time.Millisecond)
			return types.Pass("slow", types.CategoryAuthentication, "ok"), nil
		},
	}
	fast := passCase("fast", types.CategoryAuthentication)
	fast.ExpectedDuration = 1 * time.Second

	progress := &recordingProgress{}
	r, err := New(Config{
		Registry: &fakeSource{cases: []types.TestCase{slow, fast}},
		Log:      log.Root(),
		Progress: progress,
	})
	require.NoError(t, err)

	_, err = r.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"slow", "fast"}, progress.started)
	assert.Equal(t, 2, progress.finished)

	// Before anything completed the ETA is the sum of the declared hints;
	// afterwards it comes from the observed average.
	require.Len(t, progress.etas, 2)
	assert.Equal(t, 3*time.Second, progress.etas[0])
	assert.Less(t, progress.etas[1], time.Second)
}

func TestEstimate(t *testing.T) {
	r := newRunner(t, &fakeSource{})

	cases := []types.TestCase{
		{ExpectedDuration: time.Second},
		{ExpectedDuration: 2 * time.Second},
		{ExpectedDuration: time.Second},
	}

	assert.Equal(t, 4*time.Second, r.estimate(cases, 0, 0))
	assert.Equal(t, 2*time.Second, r.estimate(cases, 1, time.Second))
	assert.Equal(t, time.Second, r.estimate(cases, 2, 2*time.Second))
}
