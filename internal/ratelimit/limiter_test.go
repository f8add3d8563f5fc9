package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forvaidya/icomment/internal/kv"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (failingStore) Put(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

func testConfig() Config {
	return Config{
		Window:        time.Minute,
		Grace:         30 * time.Second,
		Authenticated: ClassLimits{Read: 10, Write: 3},
		Anonymous:     ClassLimits{Read: 5, Write: 0},
	}
}

func frozen(l *Limiter, at time.Time) *time.Time {
	now := at
	l.now = func() time.Time { return now }
	return &now
}

func TestCheckDeniesAboveLimit(t *testing.T) {
	ctx := context.Background()
	l := New(kv.NewMemory(), testConfig(), nil)
	frozen(l, time.Date(2024, 3, 1, 12, 0, 10, 0, time.UTC))

	for i := 0; i < 3; i++ {
		res := l.Check(ctx, "u1", ActionWrite, true)
		assert.True(t, res.Allowed, "call %d should be admitted", i+1)
		assert.Equal(t, 3-i, res.Remaining)
	}

	res := l.Check(ctx, "u1", ActionWrite, true)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestCheckNewWindowAdmitsAgain(t *testing.T) {
	ctx := context.Background()
	l := New(kv.NewMemory(), testConfig(), nil)
	now := frozen(l, time.Date(2024, 3, 1, 12, 0, 55, 0, time.UTC))

	for i := 0; i < 3; i++ {
		require.True(t, l.Check(ctx, "u1", ActionWrite, true).Allowed)
	}
	require.False(t, l.Check(ctx, "u1", ActionWrite, true).Allowed)

	// Cross the minute boundary into the next window.
	*now = now.Add(10 * time.Second)

	res := l.Check(ctx, "u1", ActionWrite, true)
	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Remaining)
}

func TestCheckResetTimeIsWindowEnd(t *testing.T) {
	ctx := context.Background()
	l := New(kv.NewMemory(), testConfig(), nil)
	frozen(l, time.Date(2024, 3, 1, 12, 0, 42, 0, time.UTC))

	res := l.Check(ctx, "u1", ActionRead, true)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 1, 0, 0, time.UTC), res.ResetAt)
}

func TestCheckIsolatesIdentitiesAndActions(t *testing.T) {
	ctx := context.Background()
	l := New(kv.NewMemory(), testConfig(), nil)
	frozen(l, time.Date(2024, 3, 1, 12, 0, 10, 0, time.UTC))

	for i := 0; i < 3; i++ {
		require.True(t, l.Check(ctx, "u1", ActionWrite, true).Allowed)
	}
	require.False(t, l.Check(ctx, "u1", ActionWrite, true).Allowed)

	assert.True(t, l.Check(ctx, "u2", ActionWrite, true).Allowed)
	assert.True(t, l.Check(ctx, "u1", ActionRead, true).Allowed)
}

func TestAnonymousWriteAlwaysDenied(t *testing.T) {
	ctx := context.Background()
	l := New(kv.NewMemory(), testConfig(), nil)
	frozen(l, time.Date(2024, 3, 1, 12, 0, 10, 0, time.UTC))

	for i := 0; i < 5; i++ {
		res := l.Check(ctx, "203.0.113.9", ActionWrite, false)
		assert.False(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
	}
}

func TestAnonymousWriteDeniedEvenWhenStoreIsDown(t *testing.T) {
	// A zero-limit cell never consults the store, so fail-open cannot
	// override an always-deny configuration.
	l := New(failingStore{}, testConfig(), nil)

	res := l.Check(context.Background(), "203.0.113.9", ActionWrite, false)
	assert.False(t, res.Allowed)
}

func TestFailOpenOnStoreErrors(t *testing.T) {
	ctx := context.Background()
	l := New(failingStore{}, testConfig(), nil)

	for i := 0; i < 20; i++ {
		res := l.Check(ctx, "u1", ActionWrite, true)
		assert.True(t, res.Allowed, "fail-open must admit call %d", i+1)
	}
}

func TestCheckManyIsIndependentPerAction(t *testing.T) {
	ctx := context.Background()
	l := New(kv.NewMemory(), testConfig(), nil)
	frozen(l, time.Date(2024, 3, 1, 12, 0, 10, 0, time.UTC))

	results := l.CheckMany(ctx, "203.0.113.9", []Action{ActionRead, ActionWrite}, false)

	require.Len(t, results, 2)
	assert.True(t, results[ActionRead].Allowed)
	assert.False(t, results[ActionWrite].Allowed)
}

func TestResetClearsCurrentWindow(t *testing.T) {
	ctx := context.Background()
	l := New(kv.NewMemory(), testConfig(), nil)
	frozen(l, time.Date(2024, 3, 1, 12, 0, 10, 0, time.UTC))

	for i := 0; i < 3; i++ {
		require.True(t, l.Check(ctx, "u1", ActionWrite, true).Allowed)
	}
	require.False(t, l.Check(ctx, "u1", ActionWrite, true).Allowed)

	require.NoError(t, l.Reset(ctx, "u1", ActionWrite))

	assert.True(t, l.Check(ctx, "u1", ActionWrite, true).Allowed)
}

func TestMangledCounterTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	l := New(store, testConfig(), nil)
	now := frozen(l, time.Date(2024, 3, 1, 12, 0, 10, 0, time.UTC))

	key := counterKey("u1", ActionWrite, now.Truncate(time.Minute))
	require.NoError(t, store.Put(ctx, key, "not-a-number", time.Minute))

	res := l.Check(ctx, "u1", ActionWrite, true)
	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Remaining)
}
