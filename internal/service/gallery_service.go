package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
	"github.com/noah-isme/fotoowl-gallery-api/internal/observability"
)

const maxGalleryPerPage = 30

// ImageSearcher fetches gallery pages from the photo search collaborator. live
// is false when the page is a placeholder.
type ImageSearcher interface {
	FetchByMood(ctx context.Context, mood string, page, perPage int) (result models.GalleryPage, live bool)
}

// GalleryService lists gallery images for a mood.
type GalleryService interface {
	List(ctx context.Context, mood string, page, perPage int) (models.GalleryPage, error)
}

type galleryService struct {
	searcher       ImageSearcher
	cache          *redis.Client
	ttl            time.Duration
	defaultPerPage int
	logger         zerolog.Logger
}

// NewGalleryService constructs the gallery service. A nil cache disables caching.
func NewGalleryService(searcher ImageSearcher, cache *redis.Client, ttl time.Duration, defaultPerPage int, logger zerolog.Logger) GalleryService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if defaultPerPage <= 0 {
		defaultPerPage = 12
	}
	return &galleryService{
		searcher:       searcher,
		cache:          cache,
		ttl:            ttl,
		defaultPerPage: defaultPerPage,
		logger:         logger.With().Str("component", "gallery_service").Logger(),
	}
}

func (s *galleryService) List(ctx context.Context, mood string, page, perPage int) (models.GalleryPage, error) {
	start := time.Now()
	defer func() {
		observability.GalleryLatency().Observe(time.Since(start).Seconds())
	}()

	if mood == "" {
		mood = "all"
	}
	if !models.ValidMood(mood) {
		observability.GalleryRequests().WithLabelValues("invalid").Inc()
		return models.GalleryPage{}, fmt.Errorf("%w: mood %q", ErrInvalidPreference, mood)
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = s.defaultPerPage
	}
	if perPage > maxGalleryPerPage {
		perPage = maxGalleryPerPage
	}

	cacheKey := s.cacheKey(mood, page, perPage)
	if cacheKey != "" {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var result models.GalleryPage
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				observability.GalleryRequests().WithLabelValues("hit").Inc()
				return result, nil
			}
		}
	}

	result, live := s.searcher.FetchByMood(ctx, mood, page, perPage)
	if !live {
		observability.GalleryRequests().WithLabelValues("fallback").Inc()
		return result, nil
	}

	if cacheKey != "" {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write gallery cache")
			}
		}
	}

	observability.GalleryRequests().WithLabelValues("miss").Inc()
	return result, nil
}

func (s *galleryService) cacheKey(mood string, page, perPage int) string {
	if s.cache == nil {
		return ""
	}
	return fmt.Sprintf("gallery:v1:%s:%d:%d", mood, page, perPage)
}
