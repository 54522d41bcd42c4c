package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/snapdish/backend/internal/model"
	"github.com/snapdish/backend/internal/store"
)

// CooldownKind selects which last-action timestamp a cooldown check reads.
type CooldownKind string

const (
	CooldownAnalyze CooldownKind = "analyze"
	CooldownRegen   CooldownKind = "regen"
)

// CooldownResult reports the outcome of a cooldown check.
type CooldownResult struct {
	Blocked           bool
	RetryAfterSeconds int64
}

// FreeUseResult reports the outcome of consuming one weekly free use.
type FreeUseResult struct {
	Limited      bool
	UsedThisWeek int
	UnlockAtMs   int64
}

// QuotaTracker owns per-device entitlement state: premium flag, weekly free
// counter and cooldown timestamps. The in-memory map is authoritative; every
// mutation is written through to the store before the request completes.
type QuotaTracker struct {
	mu    sync.Mutex
	users map[string]*model.UserRecord
	store store.Store
	now   func() time.Time
}

// NewQuotaTracker loads all user records from the store.
func NewQuotaTracker(ctx context.Context, st store.Store) (*QuotaTracker, error) {
	users, err := st.LoadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load user records: %w", err)
	}
	return &QuotaTracker{
		users: users,
		store: st,
		now:   time.Now,
	}, nil
}

// WeekStart returns the start of the tracked week containing now: the most
// recent Monday at midnight in now's location.
func WeekStart(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	daysSinceMonday := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -daysSinceMonday)
}

// normalizeWeek resets a stale record to the current week. Returns true when
// the record was mutated. Pure with respect to the supplied clock value, so
// rollover is testable without wall-clock time.
func normalizeWeek(user *model.UserRecord, now time.Time) bool {
	weekStartMs := WeekStart(now).UnixMilli()
	if user.WeekStartMs == weekStartMs {
		return false
	}
	user.WeekStartMs = weekStartMs
	user.FreeUsedThisWeek = 0
	user.LastAnalyzeMs = 0
	user.LastRegenMs = 0
	return true
}

// ResolveUser returns the record for the device, creating it with defaults on
// first reference and lazily rolling it over when the tracked week is stale.
// Records are never deleted. A storage error is fatal for the request.
func (t *QuotaTracker) ResolveUser(ctx context.Context, deviceID string) (*model.UserRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	user, ok := t.users[deviceID]
	if !ok {
		user = &model.UserRecord{
			DeviceID:    deviceID,
			WeekStartMs: WeekStart(now).UnixMilli(),
		}
		t.users[deviceID] = user
		if err := t.store.SaveUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if normalizeWeek(user, now) {
		if err := t.store.SaveUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// CheckCooldown enforces a minimum gap between successive actions of the
// given kind. Passing the check advances the timestamp and persists the
// record; a blocked check must never advance it, or a user's lockout would
// silently extend.
func (t *QuotaTracker) CheckCooldown(ctx context.Context, user *model.UserRecord, kind CooldownKind, window time.Duration) (CooldownResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	nowMs := t.now().UnixMilli()
	var last int64
	switch kind {
	case CooldownRegen:
		last = user.LastRegenMs
	default:
		last = user.LastAnalyzeMs
	}

	elapsedMs := nowMs - last
	if elapsedMs < window.Milliseconds() {
		retry := int64(window.Seconds()) - elapsedMs/1000
		if retry < 1 {
			retry = 1
		}
		return CooldownResult{Blocked: true, RetryAfterSeconds: retry}, nil
	}

	switch kind {
	case CooldownRegen:
		user.LastRegenMs = nowMs
	default:
		user.LastAnalyzeMs = nowMs
	}
	if err := t.store.SaveUser(ctx, user); err != nil {
		return CooldownResult{}, err
	}
	return CooldownResult{}, nil
}

// ConsumeFreeUse spends one weekly free use. Premium users always pass
// without mutation: the weekly cap and the cooldowns are independent axes.
func (t *QuotaTracker) ConsumeFreeUse(ctx context.Context, user *model.UserRecord, limit int) (FreeUseResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if user.IsPremium {
		return FreeUseResult{}, nil
	}

	if user.FreeUsedThisWeek >= limit {
		return FreeUseResult{
			Limited:      true,
			UsedThisWeek: user.FreeUsedThisWeek,
			UnlockAtMs:   user.WeekStartMs + 7*24*time.Hour.Milliseconds(),
		}, nil
	}

	user.FreeUsedThisWeek++
	if err := t.store.SaveUser(ctx, user); err != nil {
		return FreeUseResult{}, err
	}
	return FreeUseResult{UsedThisWeek: user.FreeUsedThisWeek}, nil
}

// SetPremium forces a device's premium flag. Used by the debug override.
func (t *QuotaTracker) SetPremium(ctx context.Context, deviceID string, premium bool) (*model.UserRecord, error) {
	user, err := t.ResolveUser(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	user.IsPremium = premium
	if err := t.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
