package store

import (
	"context"

	"github.com/snapdish/backend/internal/model"
)

// Store is the durability contract for the two persisted maps: user records
// keyed by device identifier and scans keyed by scan identifier. The
// in-memory maps held by the services remain authoritative; a failed save
// must never corrupt a copy already being served.
type Store interface {
	LoadUsers(ctx context.Context) (map[string]*model.UserRecord, error)
	LoadScans(ctx context.Context) (map[string]*model.Scan, error)
	SaveUser(ctx context.Context, user *model.UserRecord) error
	SaveScan(ctx context.Context, scan *model.Scan) error
	DeleteScan(ctx context.Context, id string) error
}
