package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	TierFree = "free"
	TierPro  = "pro"

	CounterResumeScans = "resume_scans_count"
	CounterCoverLetter = "cover_letters_count"
)

type Profile struct {
	ID                string  `db:"id" json:"id"`
	SubscriptionTier  string  `db:"subscription_tier" json:"subscription_tier"`
	IsPremium         bool    `db:"is_premium" json:"is_premium"`
	ResumeScansCount  int     `db:"resume_scans_count" json:"resume_scans_count"`
	CoverLettersCount int     `db:"cover_letters_count" json:"cover_letters_count"`
	UsageResetDate    *string `db:"usage_reset_date" json:"usage_reset_date"`
	CreatedAt         string  `db:"created_at" json:"created_at"`
}

// ResetAt parses UsageResetDate. A missing or unreadable date is the zero
// time, which always counts as due for a reset.
func (p Profile) ResetAt() time.Time {
	if p.UsageResetDate == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, *p.UsageResetDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d *DB) GetProfile(ctx context.Context, id string) (Profile, error) {
	var p Profile
	err := d.Pool.GetContext(ctx, &p, `
SELECT id, subscription_tier, is_premium, resume_scans_count, cover_letters_count, usage_reset_date, created_at
FROM profiles WHERE id = ?;`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("profile %q: %w", id, ErrNotFound)
	}
	return p, err
}

// EnsureProfile creates a free profile for id if none exists.
func (d *DB) EnsureProfile(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("profile id is empty")
	}
	now := d.now().Format(time.RFC3339Nano)
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO profiles(id, subscription_tier, usage_reset_date, created_at)
VALUES(?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING;`, id, TierFree, now, now)
	return err
}

// SetTier upserts the profile with tier; is_premium follows tier == pro.
func (d *DB) SetTier(ctx context.Context, id, tier string) error {
	if err := d.EnsureProfile(ctx, id); err != nil {
		return err
	}
	tier = strings.ToLower(strings.TrimSpace(tier))
	_, err := d.Pool.ExecContext(ctx, `
UPDATE profiles SET subscription_tier = ?, is_premium = ? WHERE id = ?;`,
		tier, tier == TierPro, id)
	return err
}

// ResetUsage zeroes both counters and stamps the reset date.
func (d *DB) ResetUsage(ctx context.Context, id string, at time.Time) error {
	res, err := d.Pool.ExecContext(ctx, `
UPDATE profiles
SET resume_scans_count = 0, cover_letters_count = 0, usage_reset_date = ?
WHERE id = ?;`, at.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return err
	}
	return affected(res, id)
}

// IncrementUsage bumps one counter in a single statement so concurrent
// requests can't lose an update.
func (d *DB) IncrementUsage(ctx context.Context, id, counter string) error {
	if counter != CounterResumeScans && counter != CounterCoverLetter {
		return fmt.Errorf("unknown usage counter %q", counter)
	}
	res, err := d.Pool.ExecContext(ctx,
		fmt.Sprintf(`UPDATE profiles SET %[1]s = %[1]s + 1 WHERE id = ?;`, counter), id)
	if err != nil {
		return err
	}
	return affected(res, id)
}

func affected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("profile %q: %w", id, ErrNotFound)
	}
	return nil
}
