package resolver

import (
	"ShortLinks-Backend/internal/domain"
	"ShortLinks-Backend/internal/repository"
	"ShortLinks-Backend/internal/repository/memory"
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingStorage errors on every lookup; other Storage methods are never
// reached by the resolver.
type failingStorage struct {
	repository.Storage
}

func (failingStorage) FindShortLink(context.Context, string) (*domain.ShortLink, error) {
	return nil, errors.New("storage unavailable")
}

func seedStorage(t *testing.T) *memory.MemStorage {
	t.Helper()
	storage := memory.New()

	links := []*domain.ShortLink{
		{Code: "johnatlanta", URL: "https://taxgeniuspro.tax/start-filing/form?ref=TGP-123456", IsActive: true},
		{Code: "plain", URL: "https://taxgeniuspro.tax/start-filing", IsActive: true},
		{Code: "paused", URL: "https://taxgeniuspro.tax/courses", IsActive: false},
		{Code: "broken", URL: "/relative/path", IsActive: true},
	}
	for _, link := range links {
		require.NoError(t, storage.SaveShortLink(context.Background(), link))
	}

	return storage
}

func TestResolver_Resolve(t *testing.T) {
	res := New(seedStorage(t), "/", zap.NewNop())
	ctx := context.Background()

	t.Run("active link without incoming params", func(t *testing.T) {
		r := res.Resolve(ctx, "plain", nil)
		assert.Equal(t, OutcomeResolved, r.Outcome)
		assert.Equal(t, "https://taxgeniuspro.tax/start-filing", r.Destination)
		require.NotNil(t, r.Link)
		assert.Equal(t, "plain", r.Link.Code)
	})

	t.Run("incoming params merge into destination", func(t *testing.T) {
		r := res.Resolve(ctx, "johnatlanta", url.Values{"utm_source": {"instagram"}})
		assert.Equal(t, OutcomeResolved, r.Outcome)
		assert.Equal(t, "https://taxgeniuspro.tax/start-filing/form?ref=TGP-123456&utm_source=instagram", r.Destination)
	})

	t.Run("destination-defined keys win over incoming ones", func(t *testing.T) {
		r := res.Resolve(ctx, "johnatlanta", url.Values{"ref": {"TGP-999999"}, "utm_source": {"tiktok"}})
		assert.Equal(t, OutcomeResolved, r.Outcome)

		dest, err := url.Parse(r.Destination)
		require.NoError(t, err)
		assert.Equal(t, "TGP-123456", dest.Query().Get("ref"))
		assert.Equal(t, "tiktok", dest.Query().Get("utm_source"))
	})

	t.Run("codes are case-insensitive", func(t *testing.T) {
		r := res.Resolve(ctx, "JohnAtlanta", nil)
		assert.Equal(t, OutcomeResolved, r.Outcome)
	})

	t.Run("unknown code", func(t *testing.T) {
		r := res.Resolve(ctx, "deadlink", nil)
		assert.Equal(t, OutcomeNotFound, r.Outcome)
		assert.Equal(t, "/?error=link-not-found", r.Destination)
		assert.Nil(t, r.Link)
	})

	t.Run("empty code", func(t *testing.T) {
		r := res.Resolve(ctx, "  ", nil)
		assert.Equal(t, OutcomeNotFound, r.Outcome)
		assert.Equal(t, "/?error=link-not-found", r.Destination)
	})

	t.Run("inactive link", func(t *testing.T) {
		r := res.Resolve(ctx, "paused", nil)
		assert.Equal(t, OutcomeInactive, r.Outcome)
		assert.Equal(t, "/?error=link-inactive", r.Destination)
	})

	t.Run("non-absolute stored url", func(t *testing.T) {
		r := res.Resolve(ctx, "broken", nil)
		assert.Equal(t, OutcomeFailed, r.Outcome)
		assert.Equal(t, "/?error=redirect-failed", r.Destination)
	})
}

func TestResolver_LookupFailure(t *testing.T) {
	res := New(failingStorage{}, "/", zap.NewNop())

	r := res.Resolve(context.Background(), "johnatlanta", nil)
	assert.Equal(t, OutcomeFailed, r.Outcome)
	assert.Equal(t, "/?error=redirect-failed", r.Destination)
}

func TestResolver_SiteRootWithHost(t *testing.T) {
	res := New(memory.New(), "https://taxgeniuspro.tax", zap.NewNop())

	r := res.Resolve(context.Background(), "missing", nil)
	assert.Equal(t, "https://taxgeniuspro.tax?error=link-not-found", r.Destination)
}

func TestComposeDestination_MultiValuedParams(t *testing.T) {
	dest, err := composeDestination("https://example.com/landing", url.Values{"tag": {"a", "b"}})
	require.NoError(t, err)

	parsed, err := url.Parse(dest)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, parsed.Query()["tag"])
}
