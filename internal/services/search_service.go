package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stayloop/hotel-booking-backend/internal/cache"
	"github.com/stayloop/hotel-booking-backend/internal/models"
	"github.com/stayloop/hotel-booking-backend/pkg/validator"
)

// HotelSearcher is the repository surface the search service needs
type HotelSearcher interface {
	Search(filters *models.SearchFilters) ([]models.HotelSummary, error)
}

// SearchService normalizes raw query parameters, consults the cache and
// falls through to the search repository on a miss.
type SearchService struct {
	repo   HotelSearcher
	cache  *cache.Cache
	logger *logrus.Logger
}

// NewSearchService creates a new search service
func NewSearchService(repo HotelSearcher, c *cache.Cache, logger *logrus.Logger) *SearchService {
	return &SearchService{
		repo:   repo,
		cache:  c,
		logger: logger,
	}
}

// RawSearchParams are the untrusted query string values
type RawSearchParams struct {
	Location string
	CheckIn  string
	CheckOut string
	Guests   string
	Rooms    string
	PriceMin string
	PriceMax string
	Rating   string
}

// ParseFilters validates and normalizes raw search parameters. Dates must
// come as a pair; numeric filters are optional.
func (s *SearchService) ParseFilters(params RawSearchParams) (*models.SearchFilters, error) {
	filters := &models.SearchFilters{
		Location: strings.TrimSpace(params.Location),
		MinRooms: 1,
	}

	if (params.CheckIn == "") != (params.CheckOut == "") {
		return nil, errors.New("check_in and check_out must be provided together")
	}
	if params.CheckIn != "" {
		checkIn, checkOut, err := validator.ParseDateRange(params.CheckIn, params.CheckOut)
		if err != nil {
			return nil, err
		}
		filters.CheckIn = &checkIn
		filters.CheckOut = &checkOut
	}

	if params.Guests != "" {
		guests, err := strconv.Atoi(params.Guests)
		if err != nil || guests < 1 {
			return nil, errors.New("guests must be a positive number")
		}
		filters.Guests = guests
	}

	if params.Rooms != "" {
		rooms, err := strconv.Atoi(params.Rooms)
		if err != nil || rooms < 1 {
			return nil, errors.New("rooms must be a positive number")
		}
		filters.MinRooms = rooms
	}

	if params.PriceMin != "" {
		min, err := strconv.ParseFloat(params.PriceMin, 64)
		if err != nil || min < 0 {
			return nil, errors.New("price_min must be a non-negative number")
		}
		filters.PriceMin = &min
	}

	if params.PriceMax != "" {
		max, err := strconv.ParseFloat(params.PriceMax, 64)
		if err != nil || max < 0 {
			return nil, errors.New("price_max must be a non-negative number")
		}
		filters.PriceMax = &max
	}

	if filters.PriceMin != nil && filters.PriceMax != nil && *filters.PriceMin > *filters.PriceMax {
		return nil, errors.New("price_min cannot exceed price_max")
	}

	if params.Rating != "" {
		rating, err := strconv.ParseFloat(params.Rating, 64)
		if err != nil || rating < 0 || rating > 5 {
			return nil, errors.New("rating must be between 0 and 5")
		}
		filters.Rating = &rating
	}

	return filters, nil
}

// Search returns hotels matching the filters, reading through the cache.
// Cache failures degrade to a direct repository query.
func (s *SearchService) Search(ctx context.Context, filters *models.SearchFilters) (*models.SearchResponse, error) {
	key := filters.CacheKey()

	cached := &models.SearchResponse{}
	err := s.cache.Get(ctx, key, cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WithError(err).Warn("Search cache read failed")
	}

	start := time.Now()
	hotels, err := s.repo.Search(filters)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"location": filters.Location,
		"results":  len(hotels),
		"took_ms":  time.Since(start).Milliseconds(),
	}).Debug("Hotel search executed")

	response := &models.SearchResponse{
		Hotels: hotels,
		Total:  len(hotels),
	}

	if err := s.cache.Set(ctx, key, response); err != nil {
		s.logger.WithError(err).Warn("Search cache write failed")
	}

	return response, nil
}
