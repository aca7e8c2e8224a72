// Package unsplash is a small client for the Unsplash photo search API with a
// placeholder fallback for when the API is unreachable.
package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
)

// DefaultBaseURL is the public Unsplash API endpoint.
const DefaultBaseURL = "https://api.unsplash.com"

const (
	defaultPerPage = 12
	mockTotal      = 1000
	mockTotalPages = 84
)

var moodQueries = map[string]string{
	"all":      "photography",
	"nature":   "nature landscape",
	"urban":    "city architecture",
	"people":   "people portrait",
	"abstract": "abstract art",
	"minimal":  "minimal clean",
	"vibrant":  "colorful vibrant",
}

// QueryForMood maps a mood filter to a search query. Unknown moods search
// for general photography.
func QueryForMood(mood string) string {
	if query, ok := moodQueries[mood]; ok {
		return query
	}
	return moodQueries["all"]
}

// Client searches photos. A failed request degrades to a page of placeholder
// images so the gallery keeps rendering.
type Client struct {
	http      *http.Client
	baseURL   string
	accessKey string
	logger    zerolog.Logger
	now       func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// New constructs a client authenticated with accessKey.
func New(accessKey string, logger zerolog.Logger, opts ...Option) *Client {
	client := &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		baseURL:   DefaultBaseURL,
		accessKey: accessKey,
		logger:    logger.With().Str("component", "unsplash_client").Logger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type searchResponse struct {
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
	Results    []searchResult `json:"results"`
}

type searchResult struct {
	ID             string `json:"id"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Color          string `json:"color"`
	AltDescription string `json:"alt_description"`
	URLs           struct {
		Regular string `json:"regular"`
		Small   string `json:"small"`
	} `json:"urls"`
	Links struct {
		Download string `json:"download"`
	} `json:"links"`
	User struct {
		Name  string `json:"name"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"user"`
}

// FetchByMood returns one page of landscape photos for the mood. The boolean
// reports whether the page came from the API rather than the fallback.
func (c *Client) FetchByMood(ctx context.Context, mood string, page, perPage int) (models.GalleryPage, bool) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	result, err := c.search(ctx, mood, page, perPage)
	if err != nil {
		c.logger.Warn().Err(err).Str("mood", mood).Int("page", page).Msg("photo search failed, serving placeholder images")
		return c.mockPage(mood, page, perPage), false
	}
	return result, true
}

func (c *Client) search(ctx context.Context, mood string, page, perPage int) (models.GalleryPage, error) {
	params := url.Values{}
	params.Set("query", QueryForMood(mood))
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("orientation", "landscape")
	params.Set("order_by", "relevant")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return models.GalleryPage{}, err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.GalleryPage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.GalleryPage{}, fmt.Errorf("unsplash search returned status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.GalleryPage{}, fmt.Errorf("decode unsplash response: %w", err)
	}
	if payload.Results == nil {
		return models.GalleryPage{}, errors.New("unsplash response has no results")
	}

	images := make([]models.GalleryImage, 0, len(payload.Results))
	for _, item := range payload.Results {
		alt := item.AltDescription
		if alt == "" {
			alt = "Gallery image"
		}
		images = append(images, models.GalleryImage{
			ID:          item.ID,
			URL:         item.URLs.Regular,
			Thumb:       item.URLs.Small,
			Alt:         alt,
			Author:      item.User.Name,
			AuthorURL:   item.User.Links.HTML,
			DownloadURL: item.Links.Download,
			Mood:        mood,
			Width:       item.Width,
			Height:      item.Height,
			Color:       item.Color,
		})
	}

	return models.GalleryPage{Images: images, Total: payload.Total, TotalPages: payload.TotalPages}, nil
}

func (c *Client) mockPage(mood string, page, perPage int) models.GalleryPage {
	stamp := c.now().UnixMilli()
	images := make([]models.GalleryImage, 0, perPage)
	for i := 0; i < perPage; i++ {
		seed := page*perPage + i
		images = append(images, models.GalleryImage{
			ID:          fmt.Sprintf("mock-%d-%d", page, i),
			URL:         fmt.Sprintf("https://picsum.photos/800/600?random=%d&t=%d", seed, stamp),
			Thumb:       fmt.Sprintf("https://picsum.photos/400/300?random=%d&t=%d", seed, stamp),
			Alt:         fmt.Sprintf("Beautiful %s image %d", mood, i+1),
			Author:      fmt.Sprintf("Photographer %d", i+1),
			AuthorURL:   "https://unsplash.com",
			DownloadURL: fmt.Sprintf("https://picsum.photos/800/600?random=%d", seed),
			Mood:        mood,
			Width:       800,
			Height:      600,
			Color:       fmt.Sprintf("#%06x", rand.IntN(0xFFFFFF+1)),
		})
	}
	return models.GalleryPage{Images: images, Total: mockTotal, TotalPages: mockTotalPages}
}
