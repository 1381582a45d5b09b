// Package resolver turns a raw short code into a destination URL. It never
// returns an error: every failure path maps to a fallback destination on
// the site root carrying an error query marker, so the caller always has
// somewhere to redirect to.
package resolver

import (
	"ShortLinks-Backend/internal/domain"
	"ShortLinks-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Error markers carried on the fallback destination's query string.
const (
	MarkerNotFound = "link-not-found"
	MarkerInactive = "link-inactive"
	MarkerFailed   = "redirect-failed"
)

// Outcome classifies how a resolution ended.
type Outcome int

const (
	OutcomeResolved Outcome = iota
	OutcomeNotFound
	OutcomeInactive
	OutcomeFailed
)

// Resolution is the result of resolving one short code. Destination is
// always set. Link is set only for OutcomeResolved.
type Resolution struct {
	Destination string
	Link        *domain.ShortLink
	Outcome     Outcome
}

// Resolver looks up short codes and composes destination URLs.
type Resolver struct {
	storage  repository.Storage
	siteRoot *url.URL
	log      *zap.Logger
}

// New creates a resolver. siteRoot is where unresolvable clicks land; an
// unparseable value falls back to "/".
func New(storage repository.Storage, siteRoot string, log *zap.Logger) *Resolver {
	root, err := url.Parse(siteRoot)
	if err != nil || siteRoot == "" {
		if err != nil {
			log.Warn("invalid site root, falling back to /", zap.String("site_root", siteRoot), zap.Error(err))
		}
		root = &url.URL{Path: "/"}
	}

	return &Resolver{
		storage:  storage,
		siteRoot: root,
		log:      log,
	}
}

// Resolve maps a raw code and the incoming request query to a destination.
// Codes are case-insensitive: the raw path segment is lowercased before
// lookup. Incoming query parameters are merged into the destination only
// for keys the destination does not already define.
func (r *Resolver) Resolve(ctx context.Context, rawCode string, incoming url.Values) Resolution {
	code := strings.ToLower(strings.TrimSpace(rawCode))
	if code == "" {
		return r.fallback(MarkerNotFound, OutcomeNotFound)
	}

	link, err := r.storage.FindShortLink(ctx, code)
	if errors.Is(err, repository.ErrCodeNotFound) {
		r.log.Debug("short code not found", zap.String("code", code))
		return r.fallback(MarkerNotFound, OutcomeNotFound)
	}
	if err != nil {
		r.log.Error("short link lookup failed", zap.String("code", code), zap.Error(err))
		return r.fallback(MarkerFailed, OutcomeFailed)
	}

	if !link.IsActive {
		r.log.Debug("short link is inactive", zap.String("code", code))
		return r.fallback(MarkerInactive, OutcomeInactive)
	}

	destination, err := composeDestination(link.URL, incoming)
	if err != nil {
		r.log.Error("failed to compose destination",
			zap.String("code", code),
			zap.String("url", link.URL),
			zap.Error(err))
		return r.fallback(MarkerFailed, OutcomeFailed)
	}

	return Resolution{
		Destination: destination,
		Link:        link,
		Outcome:     OutcomeResolved,
	}
}

// fallback builds the site-root destination with an error marker.
func (r *Resolver) fallback(marker string, outcome Outcome) Resolution {
	dest := *r.siteRoot
	q := dest.Query()
	q.Set("error", marker)
	dest.RawQuery = q.Encode()

	return Resolution{
		Destination: dest.String(),
		Outcome:     outcome,
	}
}

// composeDestination merges incoming query parameters into the stored URL.
// Keys already defined on the destination win over incoming ones.
func composeDestination(stored string, incoming url.Values) (string, error) {
	dest, err := url.Parse(stored)
	if err != nil {
		return "", fmt.Errorf("stored url is not parseable: %w", err)
	}
	if dest.Scheme == "" || dest.Host == "" {
		return "", fmt.Errorf("stored url %q is not absolute", stored)
	}

	q := dest.Query()
	for key, values := range incoming {
		if _, defined := q[key]; defined {
			continue
		}
		for _, v := range values {
			q.Add(key, v)
		}
	}
	dest.RawQuery = q.Encode()

	return dest.String(), nil
}
