// Package usage enforces the free-tier allowance on AI features.
package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"onlyremote-engine/internal/store"
)

type Kind string

const (
	ResumeScan  Kind = "resume_scan"
	CoverLetter Kind = "cover_letter"

	// Unlimited is the Limit reported to paying users.
	Unlimited = -1
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUnknownKind     = errors.New("unknown usage kind")
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case ResumeScan, CoverLetter:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) counter() (string, error) {
	switch k {
	case ResumeScan:
		return store.CounterResumeScans, nil
	case CoverLetter:
		return store.CounterCoverLetter, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

type Limits struct {
	ResumeScans  int
	CoverLetters int
	// ResetAfter is how long after the last reset the counters start over.
	ResetAfter time.Duration
}

func DefaultLimits() Limits {
	return Limits{ResumeScans: 3, CoverLetters: 3, ResetAfter: 30 * 24 * time.Hour}
}

func (l Limits) For(k Kind) int {
	if k == ResumeScan {
		return l.ResumeScans
	}
	return l.CoverLetters
}

type Status struct {
	Allowed bool `json:"allowed"`
	Limit   int  `json:"limit"`
	Count   int  `json:"count"`
}

// Store is the slice of *store.DB the gate needs.
type Store interface {
	GetProfile(ctx context.Context, id string) (store.Profile, error)
	ResetUsage(ctx context.Context, id string, at time.Time) error
	IncrementUsage(ctx context.Context, id, counter string) error
}

type Gate struct {
	store  Store
	limits Limits
	now    func() time.Time
}

func NewGate(s Store, limits Limits) *Gate {
	return &Gate{store: s, limits: limits, now: time.Now}
}

// Check reports whether userID may use kind once more. A free profile whose
// last reset is ResetAfter or more in the past is reset first.
func (g *Gate) Check(ctx context.Context, userID string, kind Kind) (Status, error) {
	if _, err := kind.counter(); err != nil {
		return Status{}, err
	}
	p, err := g.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return Status{}, fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
	}
	if err != nil {
		return Status{}, fmt.Errorf("load profile: %w", err)
	}

	if p.SubscriptionTier == store.TierPro || p.IsPremium {
		return Status{Allowed: true, Limit: Unlimited, Count: 0}, nil
	}

	limit := g.limits.For(kind)
	now := g.now()
	if now.Sub(p.ResetAt()) >= g.limits.ResetAfter {
		if err := g.store.ResetUsage(ctx, userID, now); err != nil {
			return Status{}, fmt.Errorf("reset usage: %w", err)
		}
		return Status{Allowed: limit > 0, Limit: limit, Count: 0}, nil
	}

	count := p.ResumeScansCount
	if kind == CoverLetter {
		count = p.CoverLettersCount
	}
	return Status{Allowed: count < limit, Limit: limit, Count: count}, nil
}

// Increment records one use. Callers Check first; Increment itself never
// refuses.
func (g *Gate) Increment(ctx context.Context, userID string, kind Kind) error {
	col, err := kind.counter()
	if err != nil {
		return err
	}
	err = g.store.IncrementUsage(ctx, userID, col)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
	}
	return err
}
