package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snapdish/backend/internal/model"
	"github.com/snapdish/backend/internal/store"
)

// ScanRegistry owns scan records: one per analyzed photo, mutable on
// regeneration, evicted after a retention horizon.
type ScanRegistry struct {
	mu    sync.Mutex
	scans map[string]*model.Scan
	store store.Store
	now   func() time.Time
}

// NewScanRegistry loads all scans from the store.
func NewScanRegistry(ctx context.Context, st store.Store) (*ScanRegistry, error) {
	scans, err := st.LoadScans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load scans: %w", err)
	}
	return &ScanRegistry{
		scans: scans,
		store: st,
		now:   time.Now,
	}, nil
}

// Create allocates a fresh scan for the device and persists it.
func (r *ScanRegistry) Create(ctx context.Context, deviceID string, prefs model.Preferences, imageBase64 string) (*model.Scan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scan := &model.Scan{
		ID:          uuid.New().String(),
		DeviceID:    deviceID,
		CreatedMs:   r.now().UnixMilli(),
		Preferences: prefs,
		ImageBase64: imageBase64,
	}
	r.scans[scan.ID] = scan
	if err := r.store.SaveScan(ctx, scan); err != nil {
		return nil, err
	}
	return scan, nil
}

// Get looks up a scan by id.
func (r *ScanRegistry) Get(id string) (*model.Scan, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scan, ok := r.scans[id]
	return scan, ok
}

// Authorize reports whether the device owns the scan. Every scan has exactly
// one owning device and only the owner may mutate it.
func (r *ScanRegistry) Authorize(scan *model.Scan, deviceID string) bool {
	return scan != nil && scan.DeviceID == deviceID
}

// ApplyRegenUpdate merges a partial preference update into the scan. Only
// fields that are present and correctly typed in the raw body are applied;
// absent or mistyped fields leave the stored value unchanged.
func (r *ScanRegistry) ApplyRegenUpdate(ctx context.Context, scan *model.Scan, partial map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := partial["mealType"].(string); ok {
		scan.Preferences.MealType = v
	}
	if v, ok := partial["extraIngredientsText"].(string); ok {
		scan.Preferences.ExtraIngredientsText = v
	}
	if v, ok := partial["timeLimit"].(string); ok {
		scan.Preferences.TimeLimit = v
	}
	if v, ok := partial["difficulty"].(string); ok {
		scan.Preferences.Difficulty = v
	}
	if v, ok := asStringSlice(partial["nutritionGoals"]); ok {
		scan.Preferences.NutritionGoals = v
	}
	if v, ok := asStringSlice(partial["equipment"]); ok {
		scan.Preferences.Equipment = v
	}

	scan.UpdatedMs = r.now().UnixMilli()
	return r.store.SaveScan(ctx, scan)
}

// BumpRegenCount increments the regeneration counter for free-tier owners;
// premium regenerations are unmetered.
func (r *ScanRegistry) BumpRegenCount(ctx context.Context, scan *model.Scan, isPremium bool) error {
	if isPremium {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	scan.RegenCount++
	return r.store.SaveScan(ctx, scan)
}

// SweepExpired removes every scan whose createdMs is missing or older than
// the retention horizon. A request already holding a scan pointer obtained
// before the sweep may still complete against it. Returns the eviction count.
func (r *ScanRegistry) SweepExpired(ctx context.Context, retentionDays int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().UnixMilli() - int64(retentionDays)*24*time.Hour.Milliseconds()
	evicted := 0
	for id, scan := range r.scans {
		if scan.CreatedMs != 0 && scan.CreatedMs >= cutoff {
			continue
		}
		delete(r.scans, id)
		if err := r.store.DeleteScan(ctx, id); err != nil {
			log.Printf("[ScanRegistry] Failed to delete expired scan %s: %v", id, err)
		}
		evicted++
	}
	return evicted
}

// asStringSlice converts a decoded JSON array into a string slice, rejecting
// arrays with any non-string element.
func asStringSlice(v interface{}) (model.StringArray, bool) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make(model.StringArray, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
