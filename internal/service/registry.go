package service

import (
	"ShortLinks-Backend/internal/config"
	"ShortLinks-Backend/internal/domain"
	"ShortLinks-Backend/internal/repository"
	"ShortLinks-Backend/pkg/random"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const maxGenerateAttempts = 5

var (
	ErrInvalidURL  = errors.New("destination url must be absolute http(s)")
	ErrInvalidCode = errors.New("code must be 1-64 lowercase letters, digits or hyphens")

	codePattern = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)
)

// RegistryService owns short link creation: custom codes are validated and
// lowercased, generated codes retry on collision.
type RegistryService struct {
	storage repository.Storage
	config  *config.Redirect
}

func NewRegistry(storage repository.Storage, cfg *config.Redirect) *RegistryService {
	return &RegistryService{
		storage: storage,
		config:  cfg,
	}
}

// Register creates a new short link. customCode may be empty, in which
// case a random code is generated.
func (s *RegistryService) Register(ctx context.Context, destination string, customCode string) (*domain.ShortLink, error) {
	if err := validateDestination(destination); err != nil {
		return nil, err
	}

	var code string
	if customCode != "" {
		code = strings.ToLower(strings.TrimSpace(customCode))
		if !codePattern.MatchString(code) {
			return nil, ErrInvalidCode
		}
		exists, err := s.storage.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check code existence: %w", err)
		}
		if exists {
			return nil, repository.ErrCodeExists
		}
	} else {
		var err error
		for i := 0; i < maxGenerateAttempts; i++ {
			code, err = random.NewCode(s.config.CodeLength)
			if err != nil {
				return nil, fmt.Errorf("failed to generate code: %w", err)
			}
			exists, err := s.storage.CodeExists(ctx, code)
			if err != nil {
				return nil, fmt.Errorf("failed to check code existence: %w", err)
			}
			if !exists {
				break
			}
		}
	}

	link := &domain.ShortLink{
		Code:     code,
		URL:      destination,
		IsActive: true,
	}

	if err := s.storage.SaveShortLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to save short link: %w", err)
	}

	return link, nil
}

// ShortURL composes the public short URL for a code.
func (s *RegistryService) ShortURL(code string) string {
	return strings.TrimSuffix(s.config.BaseURL, "/") + "/go/" + code
}

func validateDestination(destination string) error {
	u, err := url.Parse(destination)
	if err != nil {
		return ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
