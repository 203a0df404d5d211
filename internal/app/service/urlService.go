package service

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/skrylnikov/cutly/internal/storage"
	"github.com/skrylnikov/cutly/internal/worker"
)

// maxAllocAttempts bounds the collision retry loop. With a 64-symbol
// alphabet at length >= 4 a collision is already near-impossible, but the
// bound keeps allocation terminating under any store state.
const maxAllocAttempts = 5

// LinkService allocates and resolves short links. Click recording is
// dispatched to a background worker and never blocks resolution.
type LinkService struct {
	repository Storage
	generator  *ShortIDGenerator
	logger     *zap.Logger
	baseURL    string
	clicks     chan<- storage.Click
}

func NewLink(ctx context.Context, repo Storage, generator *ShortIDGenerator, logger *zap.Logger, baseURL string) *LinkService {
	w := worker.NewClickWorker(logger, repo)

	s := &LinkService{
		repository: repo,
		generator:  generator,
		logger:     logger,
		baseURL:    baseURL,
		clicks:     w.GetInChannel(),
	}

	go w.Run(ctx)

	return s
}

// BaseURL returns the public base used to build absolute short URLs.
func (s *LinkService) BaseURL() string {
	return s.baseURL
}

func (s *LinkService) PingContext(ctx context.Context) error {
	return s.repository.PingContext(ctx)
}

// CreateOrReuse returns the existing link for (url, owner) or allocates a
// fresh one. Idempotent per normalized URL and owner; an empty ownerID is
// anonymous and only ever matches anonymous records.
func (s *LinkService) CreateOrReuse(ctx context.Context, originalURL string, length int, ownerID string) (*storage.ShortLink, error) {
	normalized := NormalizeURL(originalURL)
	if !IsValidURL(normalized) {
		return nil, ErrInvalidURL
	}

	if length < MinShortIDLength || length > MaxShortIDLength {
		return nil, ErrInvalidLength
	}

	existing, err := s.repository.FindByOriginal(ctx, normalized, ownerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		shortID, err := s.generator.Generate(length)
		if err != nil {
			return nil, err
		}

		_, err = s.repository.FindByShort(ctx, shortID)
		if err == nil {
			s.logger.Info("short id collision, retrying", zap.String("shortID", shortID), zap.Int("attempt", attempt+1))
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}

		record, err := s.repository.Insert(ctx, storage.ShortLink{
			Original: normalized,
			ShortID:  shortID,
			Length:   length,
			OwnerID:  ownerID,
		})
		if errors.Is(err, storage.ErrShortIDTaken) {
			// Lost the insert race; same as a pre-insert collision.
			s.logger.Info("short id taken on insert, retrying", zap.String("shortID", shortID), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}

		return record, nil
	}

	return nil, ErrAllocationExhausted
}

// Resolve looks up the destination for a short id. Pure lookup; the caller
// owns the click side effect.
func (s *LinkService) Resolve(ctx context.Context, shortID string) (*storage.ShortLink, error) {
	record, err := s.repository.FindByShort(ctx, shortID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

// RecordClick hands a click to the background worker without blocking. When
// the queue is full the event is dropped; analytics never degrade redirects.
func (s *LinkService) RecordClick(click storage.Click) {
	select {
	case s.clicks <- click:
	default:
		s.logger.Warn("click queue full, dropping event", zap.String("shortLinkID", click.ShortLinkID))
	}
}

// schemePrefix matches an explicit scheme at the start of the input.
var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// NormalizeURL trims the input and prepends https:// when no explicit scheme
// is present. Inputs that already carry a scheme are left untouched, so a
// non-http(s) scheme survives to fail validation instead of being buried
// inside a fabricated https URL.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if schemePrefix.MatchString(trimmed) {
		return trimmed
	}
	return "https://" + trimmed
}

// IsValidURL reports whether the string parses as an absolute http(s) URL
// with a host.
func IsValidURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
