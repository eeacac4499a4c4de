package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homecuistot/backend/internal/models"
)

// UsageService enforces the per-user daily quota on LLM-backed
// endpoints and records one usage-log row per successful call.
type UsageService struct {
	db         *gorm.DB
	dailyLimit int
	adminIDs   map[string]struct{}
}

// NewUsageService creates a UsageService. Users listed in adminIDs
// bypass the quota unconditionally.
func NewUsageService(db *gorm.DB, dailyLimit int, adminIDs []string) *UsageService {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &UsageService{
		db:         db,
		dailyLimit: dailyLimit,
		adminIDs:   admins,
	}
}

// IsAdmin reports whether the user bypasses the quota and may call
// admin-only routes.
func (s *UsageService) IsAdmin(userID uuid.UUID) bool {
	_, ok := s.adminIDs[userID.String()]
	return ok
}

// CheckUsageLimit counts the user's usage-log rows since the start of
// the current UTC day and fails with ErrQuotaExceeded at the limit.
// The check fails closed: if the count query itself fails the call is
// not permitted. That bias is deliberate, not incidental propagation.
func (s *UsageService) CheckUsageLimit(ctx context.Context, userID uuid.UUID) error {
	if s.IsAdmin(userID) {
		return nil
	}

	dayStart := startOfUTCDay(time.Now())
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.UsageLogEntry{}).
		Where("user_id = ? AND created_at >= ?", userID, dayStart).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("%w: usage count failed: %v", ErrStorage, err)
	}

	if count >= int64(s.dailyLimit) {
		return fmt.Errorf("%w: %d calls today", ErrQuotaExceeded, count)
	}
	return nil
}

// LogUsage appends one usage-log row. Callers invoke it only after a
// successful LLM call so retried-but-failed calls never consume quota.
func (s *UsageService) LogUsage(ctx context.Context, userID uuid.UUID, endpoint string) error {
	entry := models.UsageLogEntry{
		ID:       uuid.New(),
		UserID:   userID,
		Endpoint: endpoint,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("%w: usage log insert failed: %v", ErrStorage, err)
	}
	return nil
}

func startOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
