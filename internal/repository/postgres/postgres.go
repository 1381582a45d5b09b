package postgres

import (
	"ShortLinks-Backend/internal/domain"
	"ShortLinks-Backend/internal/repository"
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage implements the Storage interface for PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates a new PostgreSQL storage instance
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- Link Registry Methods ---

// SaveShortLink persists a new short link
func (s *PostgresStorage) SaveShortLink(ctx context.Context, link *domain.ShortLink) error {
	var existing domain.ShortLink
	err := s.db.WithContext(ctx).Where("code = ?", link.Code).First(&existing).Error
	if err == nil {
		return repository.ErrCodeExists
	}
	if err != gorm.ErrRecordNotFound {
		s.log.Error("failed to check code existence", zap.String("code", link.Code), zap.Error(err))
		return fmt.Errorf("failed to check code: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		s.log.Error("failed to save short link", zap.String("code", link.Code), zap.Error(err))
		return fmt.Errorf("failed to save short link: %w", err)
	}

	s.log.Info("saved new short link", zap.String("code", link.Code), zap.String("url", link.URL))
	return nil
}

// FindShortLink fetches a short link by exact code, regardless of the
// active flag. Callers decide what an inactive link means.
func (s *PostgresStorage) FindShortLink(ctx context.Context, code string) (*domain.ShortLink, error) {
	var link domain.ShortLink

	err := s.db.WithContext(ctx).Where("code = ?", code).First(&link).Error
	if err == gorm.ErrRecordNotFound {
		return nil, repository.ErrCodeNotFound
	}
	if err != nil {
		s.log.Error("failed to find short link", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to find short link: %w", err)
	}

	return &link, nil
}

// ListShortLinks returns all short links, newest first
func (s *PostgresStorage) ListShortLinks(ctx context.Context) ([]*domain.ShortLink, error) {
	var links []*domain.ShortLink

	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&links).Error
	if err != nil {
		s.log.Error("failed to list short links", zap.Error(err))
		return nil, fmt.Errorf("failed to list short links: %w", err)
	}

	return links, nil
}

// CodeExists reports whether a code is already taken
func (s *PostgresStorage) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.ShortLink{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check code existence", zap.String("code", code), zap.Error(err))
		return false, fmt.Errorf("failed to check code: %w", err)
	}

	return count > 0, nil
}

// SetLinkActive flips the active flag. The row is retained either way;
// an inactive link is simply not redirectable.
func (s *PostgresStorage) SetLinkActive(ctx context.Context, code string, active bool) error {
	result := s.db.WithContext(ctx).Model(&domain.ShortLink{}).Where("code = ?", code).Update("is_active", active)
	if result.Error != nil {
		s.log.Error("failed to update active flag", zap.String("code", code), zap.Error(result.Error))
		return fmt.Errorf("failed to update active flag: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrCodeNotFound
	}

	s.log.Info("updated link active flag", zap.String("code", code), zap.Bool("active", active))
	return nil
}

// --- Click Recording Methods ---

// IncrementClickCount bumps the click counter by exactly one, as a single
// atomic database operation (no read-modify-write).
func (s *PostgresStorage) IncrementClickCount(ctx context.Context, code string) error {
	result := s.db.WithContext(ctx).Model(&domain.ShortLink{}).
		Where("code = ?", code).
		Update("click_count", gorm.Expr("click_count + 1"))
	if result.Error != nil {
		s.log.Error("failed to increment click count", zap.String("code", code), zap.Error(result.Error))
		return fmt.Errorf("failed to increment click count: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrCodeNotFound
	}

	return nil
}

// InsertClickRecord appends one click detail row
func (s *PostgresStorage) InsertClickRecord(ctx context.Context, click *domain.LinkClick) error {
	if err := s.db.WithContext(ctx).Create(click).Error; err != nil {
		s.log.Error("failed to insert click record", zap.Int64("link_id", click.LinkID), zap.Error(err))
		return fmt.Errorf("failed to insert click record: %w", err)
	}

	return nil
}

// --- Analytics Read Methods ---

// CountClicks returns the number of recorded click rows for a link
func (s *PostgresStorage) CountClicks(ctx context.Context, linkID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.LinkClick{}).Where("link_id = ?", linkID).Count(&count).Error
	if err != nil {
		s.log.Error("failed to count clicks", zap.Int64("link_id", linkID), zap.Error(err))
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}

	return count, nil
}

// GetClicksByDevice returns click counts grouped by device type for a link
func (s *PostgresStorage) GetClicksByDevice(ctx context.Context, linkID int64) (map[string]int64, error) {
	var results []struct {
		DeviceType string `gorm:"column:device_type"`
		Count      int64  `gorm:"column:count"`
	}

	err := s.db.WithContext(ctx).
		Model(&domain.LinkClick{}).
		Select("COALESCE(device_type, 'unknown') as device_type, count(*) as count").
		Where("link_id = ?", linkID).
		Group("device_type").
		Find(&results).Error

	if err != nil {
		s.log.Error("failed to get clicks by device", zap.Int64("link_id", linkID), zap.Error(err))
		return nil, fmt.Errorf("failed to get clicks by device: %w", err)
	}

	clicksByDevice := make(map[string]int64)
	for _, result := range results {
		clicksByDevice[result.DeviceType] = result.Count
	}

	return clicksByDevice, nil
}
