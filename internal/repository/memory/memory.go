package memory

import (
	"ShortLinks-Backend/internal/domain"
	"ShortLinks-Backend/internal/repository"
	"context"
	"sort"
	"sync"
	"time"
)

// MemStorage is a mutex-guarded in-memory Storage implementation used by
// tests and local development.
type MemStorage struct {
	mu           sync.RWMutex
	links        map[string]*domain.ShortLink
	clicks       []*domain.LinkClick
	linkCounter  int64
	clickCounter int64
}

func New() *MemStorage {
	return &MemStorage{
		links: make(map[string]*domain.ShortLink),
	}
}

// --- Link Registry Methods ---

func (s *MemStorage) SaveShortLink(_ context.Context, link *domain.ShortLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[link.Code]; exists {
		return repository.ErrCodeExists
	}

	s.linkCounter++
	link.ID = s.linkCounter
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}
	stored := *link
	s.links[link.Code] = &stored
	return nil
}

func (s *MemStorage) FindShortLink(_ context.Context, code string) (*domain.ShortLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[code]
	if !ok {
		return nil, repository.ErrCodeNotFound
	}

	// Copy so callers never observe concurrent counter updates mid-read.
	out := *link
	return &out, nil
}

func (s *MemStorage) ListShortLinks(_ context.Context) ([]*domain.ShortLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := make([]*domain.ShortLink, 0, len(s.links))
	for _, link := range s.links {
		out := *link
		links = append(links, &out)
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	return links, nil
}

func (s *MemStorage) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.links[code]
	return ok, nil
}

func (s *MemStorage) SetLinkActive(_ context.Context, code string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[code]
	if !ok {
		return repository.ErrCodeNotFound
	}
	link.IsActive = active
	return nil
}

// --- Click Recording Methods ---

func (s *MemStorage) IncrementClickCount(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[code]
	if !ok {
		return repository.ErrCodeNotFound
	}
	link.ClickCount++
	return nil
}

func (s *MemStorage) InsertClickRecord(_ context.Context, click *domain.LinkClick) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clickCounter++
	click.ID = s.clickCounter
	stored := *click
	s.clicks = append(s.clicks, &stored)
	return nil
}

// --- Analytics Read Methods ---

func (s *MemStorage) CountClicks(_ context.Context, linkID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, click := range s.clicks {
		if click.LinkID == linkID {
			count++
		}
	}
	return count, nil
}

func (s *MemStorage) GetClicksByDevice(_ context.Context, linkID int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clicksByDevice := make(map[string]int64)
	for _, click := range s.clicks {
		if click.LinkID == linkID {
			clicksByDevice[click.GetDeviceType()]++
		}
	}
	return clicksByDevice, nil
}
