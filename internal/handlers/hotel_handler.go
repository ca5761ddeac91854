package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayloop/hotel-booking-backend/internal/database"
	"github.com/stayloop/hotel-booking-backend/internal/middleware"
	"github.com/stayloop/hotel-booking-backend/internal/models"
	"github.com/stayloop/hotel-booking-backend/internal/services"
)

// HotelHandler handles public hotel browsing and reviews
type HotelHandler struct {
	searchService    *services.SearchService
	hotelRepository  *database.HotelRepository
	reviewRepository *database.ReviewRepository
	logger           *logrus.Logger
}

// NewHotelHandler creates a new hotel handler
func NewHotelHandler(
	searchService *services.SearchService,
	hotelRepository *database.HotelRepository,
	reviewRepository *database.ReviewRepository,
	logger *logrus.Logger,
) *HotelHandler {
	return &HotelHandler{
		searchService:    searchService,
		hotelRepository:  hotelRepository,
		reviewRepository: reviewRepository,
		logger:           logger,
	}
}

// Search handles GET /api/v1/hotels/search
func (h *HotelHandler) Search(c *gin.Context) {
	params := services.RawSearchParams{
		Location: c.Query("location"),
		CheckIn:  c.Query("check_in"),
		CheckOut: c.Query("check_out"),
		Guests:   c.Query("guests"),
		Rooms:    c.Query("rooms"),
		PriceMin: c.Query("price_min"),
		PriceMax: c.Query("price_max"),
		Rating:   c.Query("rating"),
	}

	filters, err := h.searchService.ParseFilters(params)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_filters",
			Message: err.Error(),
		})
		return
	}

	response, err := h.searchService.Search(c.Request.Context(), filters)
	if err != nil {
		h.logger.WithError(err).Error("Hotel search failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Search failed",
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListHotels handles GET /api/v1/hotels
func (h *HotelHandler) ListHotels(c *gin.Context) {
	hotels, err := h.hotelRepository.ListAll()
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hotels": hotels,
		"total":  len(hotels),
	})
}

// GetHotel handles GET /api/v1/hotels/:id
func (h *HotelHandler) GetHotel(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.hotelRepository.GetDetail(hotelID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotel": detail})
}

// ListReviews handles GET /api/v1/hotels/:id/reviews
func (h *HotelHandler) ListReviews(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewRepository.ListByHotel(hotelID, 10)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// CreateReview handles POST /api/v1/hotels/:id/reviews
func (h *HotelHandler) CreateReview(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	hotelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	review, err := h.reviewRepository.Create(hotelID, userCtx.UserID, &req)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"hotel_id": hotelID,
		"user_id":  userCtx.UserID,
		"rating":   req.Rating,
	}).Info("Review posted")

	c.JSON(http.StatusCreated, gin.H{"review": review})
}
