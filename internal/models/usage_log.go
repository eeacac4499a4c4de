package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageLogEntry is an append-only record of one successful LLM call.
// Quota windows are computed by date-range aggregation over these rows;
// entries are never mutated or deleted.
type UsageLogEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_usage_user_created" json:"user_id"`
	Endpoint  string    `gorm:"size:100;not null" json:"endpoint"`
	CreatedAt time.Time `gorm:"index:idx_usage_user_created" json:"created_at"`
}
