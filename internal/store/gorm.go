package store

import (
	"context"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/snapdish/backend/internal/model"
)

// GormStore persists the two maps through GORM, backed by sqlite in
// development and postgres in production.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm opens a GORM connection for the given driver ("sqlite" or
// "postgres") and DSN.
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	log.Printf("[Store] Connected to %s database", driver)
	return db, nil
}

// NewGormStore migrates the schema and wraps the connection as a Store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&model.UserRecord{}, &model.Scan{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &GormStore{db: db}, nil
}

// LoadUsers reads every user record into a map keyed by device id.
func (g *GormStore) LoadUsers(ctx context.Context) (map[string]*model.UserRecord, error) {
	var users []model.UserRecord
	if err := g.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load user records: %w", err)
	}

	out := make(map[string]*model.UserRecord, len(users))
	for i := range users {
		out[users[i].DeviceID] = &users[i]
	}
	return out, nil
}

// LoadScans reads every scan into a map keyed by scan id.
func (g *GormStore) LoadScans(ctx context.Context) (map[string]*model.Scan, error) {
	var scans []model.Scan
	if err := g.db.WithContext(ctx).Find(&scans).Error; err != nil {
		return nil, fmt.Errorf("failed to load scans: %w", err)
	}

	out := make(map[string]*model.Scan, len(scans))
	for i := range scans {
		out[scans[i].ID] = &scans[i]
	}
	return out, nil
}

// SaveUser upserts a user record by primary key.
func (g *GormStore) SaveUser(ctx context.Context, user *model.UserRecord) error {
	if err := g.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to save user record: %w", err)
	}
	return nil
}

// SaveScan upserts a scan by primary key.
func (g *GormStore) SaveScan(ctx context.Context, scan *model.Scan) error {
	if err := g.db.WithContext(ctx).Save(scan).Error; err != nil {
		return fmt.Errorf("failed to save scan: %w", err)
	}
	return nil
}

// DeleteScan removes a scan row; unknown ids are a no-op.
func (g *GormStore) DeleteScan(ctx context.Context, id string) error {
	if err := g.db.WithContext(ctx).Delete(&model.Scan{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	return nil
}
