package model

// UserRecord tracks a device's entitlement and quota window. Devices are
// identified by an opaque caller-supplied string, not a verified identity.
type UserRecord struct {
	DeviceID         string `gorm:"primaryKey;size:128" json:"deviceId"`
	IsPremium        bool   `json:"isPremium"`
	WeekStartMs      int64  `json:"weekStartMs"`
	FreeUsedThisWeek int    `json:"freeUsedThisWeek"`
	LastAnalyzeMs    int64  `json:"lastAnalyzeMs"`
	LastRegenMs      int64  `json:"lastRegenMs"`
}

// TableName specifies the table name for UserRecord.
func (UserRecord) TableName() string {
	return "user_records"
}
