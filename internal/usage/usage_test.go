package usage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlyremote-engine/internal/store"
)

var start = time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func setup(t *testing.T) (*Gate, *store.DB, *clock) {
	t.Helper()
	d, err := store.OpenAndMigrate(context.Background(), filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	c := &clock{t: start}
	d.Now = c.Now
	g := NewGate(d, DefaultLimits())
	g.now = c.Now
	return g, d, c
}

func TestFreeLimit(t *testing.T) {
	g, d, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, d.EnsureProfile(ctx, "u1"))

	for i := 0; i < 3; i++ {
		st, err := g.Check(ctx, "u1", ResumeScan)
		require.NoError(t, err)
		assert.Equal(t, Status{Allowed: true, Limit: 3, Count: i}, st)
		require.NoError(t, g.Increment(ctx, "u1", ResumeScan))
	}

	st, err := g.Check(ctx, "u1", ResumeScan)
	require.NoError(t, err)
	assert.Equal(t, Status{Allowed: false, Limit: 3, Count: 3}, st)

	// Cover letters are counted separately.
	st, err = g.Check(ctx, "u1", CoverLetter)
	require.NoError(t, err)
	assert.True(t, st.Allowed)
	assert.Zero(t, st.Count)
}

func TestResetWindow(t *testing.T) {
	g, d, c := setup(t)
	ctx := context.Background()
	require.NoError(t, d.EnsureProfile(ctx, "u1"))
	for i := 0; i < 3; i++ {
		require.NoError(t, g.Increment(ctx, "u1", CoverLetter))
	}

	c.t = start.Add(30*24*time.Hour - time.Second)
	st, err := g.Check(ctx, "u1", CoverLetter)
	require.NoError(t, err)
	assert.False(t, st.Allowed)

	c.t = start.Add(30 * 24 * time.Hour)
	st, err = g.Check(ctx, "u1", CoverLetter)
	require.NoError(t, err)
	assert.Equal(t, Status{Allowed: true, Limit: 3, Count: 0}, st)

	p, err := d.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, p.CoverLettersCount)
	assert.Equal(t, c.t, p.ResetAt())
}

func TestMissingResetDateResets(t *testing.T) {
	g, d, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, d.EnsureProfile(ctx, "u1"))
	_, err := d.Pool.Exec(`UPDATE profiles SET usage_reset_date = NULL, resume_scans_count = 5 WHERE id = 'u1';`)
	require.NoError(t, err)

	st, err := g.Check(ctx, "u1", ResumeScan)
	require.NoError(t, err)
	assert.Equal(t, Status{Allowed: true, Limit: 3, Count: 0}, st)
}

func TestProIsUnlimited(t *testing.T) {
	g, d, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, d.SetTier(ctx, "pro", "pro"))
	require.NoError(t, d.EnsureProfile(ctx, "premium"))
	_, err := d.Pool.Exec(`UPDATE profiles SET is_premium = 1, resume_scans_count = 99 WHERE id = 'premium';`)
	require.NoError(t, err)

	for _, id := range []string{"pro", "premium"} {
		st, err := g.Check(ctx, id, ResumeScan)
		require.NoError(t, err)
		assert.Equal(t, Status{Allowed: true, Limit: Unlimited, Count: 0}, st, id)
	}
}

func TestErrors(t *testing.T) {
	g, _, _ := setup(t)
	ctx := context.Background()

	_, err := g.Check(ctx, "ghost", ResumeScan)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.ErrorIs(t, g.Increment(ctx, "ghost", ResumeScan), ErrProfileNotFound)

	_, err = g.Check(ctx, "ghost", Kind("tweets"))
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = ParseKind("cover_letter")
	assert.NoError(t, err)
	_, err = ParseKind("")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
