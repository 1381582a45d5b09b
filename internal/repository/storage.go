package repository

import (
	"ShortLinks-Backend/internal/domain"
	"context"
	"errors"
)

var (
	ErrCodeNotFound = errors.New("short code not found")
	ErrCodeExists   = errors.New("short code already exists")
)

type Storage interface {
	// Link registry methods
	SaveShortLink(ctx context.Context, link *domain.ShortLink) error
	FindShortLink(ctx context.Context, code string) (*domain.ShortLink, error)
	ListShortLinks(ctx context.Context) ([]*domain.ShortLink, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	SetLinkActive(ctx context.Context, code string, active bool) error

	// Click recording methods (best-effort callers, see internal/recorder)
	IncrementClickCount(ctx context.Context, code string) error
	InsertClickRecord(ctx context.Context, click *domain.LinkClick) error

	// Analytics read methods
	CountClicks(ctx context.Context, linkID int64) (int64, error)
	GetClicksByDevice(ctx context.Context, linkID int64) (map[string]int64, error)
}
