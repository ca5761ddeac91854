package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/stayloop/hotel-booking-backend/internal/config"
	"github.com/stayloop/hotel-booking-backend/internal/database"
	"github.com/stayloop/hotel-booking-backend/internal/middleware"
	"github.com/stayloop/hotel-booking-backend/internal/models"
	"github.com/stayloop/hotel-booking-backend/internal/services"
	"github.com/stayloop/hotel-booking-backend/pkg/jwt"
	"github.com/stayloop/hotel-booking-backend/pkg/validator"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	jwtService        *jwt.Service
	inputValidator    *validator.InputValidator
	rateLimitService  *services.RateLimitService
	userRepository    *database.UserRepository
	sessionRepository *database.SessionRepository
	config            *config.Config
	logger            *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	jwtService *jwt.Service,
	inputValidator *validator.InputValidator,
	rateLimitService *services.RateLimitService,
	userRepository *database.UserRepository,
	sessionRepository *database.SessionRepository,
	cfg *config.Config,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		jwtService:        jwtService,
		inputValidator:    inputValidator,
		rateLimitService:  rateLimitService,
		userRepository:    userRepository,
		sessionRepository: sessionRepository,
		config:            cfg,
		logger:            logger,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	email, err := h.inputValidator.ValidateEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_email",
			Message: err.Error(),
		})
		return
	}

	if err := h.inputValidator.ValidatePassword(req.Password, req.ConfirmPassword); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_password",
			Message: err.Error(),
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.config.Security.BcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create account",
		})
		return
	}

	user, err := h.userRepository.Create(req.FullName, email, string(hash))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"user":    user,
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	email, err := h.inputValidator.ValidateEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_email",
			Message: err.Error(),
		})
		return
	}

	clientIP := c.ClientIP()

	if err := h.rateLimitService.CheckLoginRateLimit(email, clientIP); err != nil {
		var rateLimitErr *services.RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate_limited",
				Message: rateLimitErr.Message,
			})
			return
		}
		h.logger.WithError(err).Error("Rate limit check failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Login failed",
		})
		return
	}

	user, err := h.userRepository.GetByEmail(email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// unknown emails count as failed attempts too
			h.rateLimitService.RecordFailedLogin(email, clientIP)
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid email or password",
			})
			return
		}
		respondStoreError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.rateLimitService.RecordFailedLogin(email, clientIP)
		h.logger.WithFields(logrus.Fields{
			"email": email,
			"ip":    clientIP,
		}).Warn("Failed login attempt")
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
		})
		return
	}

	if err := h.rateLimitService.ClearAttempts(email); err != nil {
		h.logger.WithError(err).Warn("Failed to clear login attempts")
	}

	pair, err := h.issueTokens(user, clientIP, c.Request.UserAgent())
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue tokens")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Login failed",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"ip":      clientIP,
	}).Info("User logged in")

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"tokens":  pair,
	})
}

// Refresh handles POST /api/v1/auth/refresh. The refresh token is rotated:
// the old one stops working as soon as the new pair is issued.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired refresh token",
		})
		return
	}

	session, err := h.sessionRepository.FindActiveByToken(req.RefreshToken)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Session not found or revoked",
			})
			return
		}
		respondStoreError(c, err)
		return
	}

	user, err := h.userRepository.GetByID(claims.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate access token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Token refresh failed",
		})
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate refresh token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Token refresh failed",
		})
		return
	}

	if err := h.sessionRepository.Rotate(session.ID, refreshToken); err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tokens": models.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int64(h.jwtService.AccessTokenExpiry().Seconds()),
		},
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.sessionRepository.RevokeByToken(req.RefreshToken); err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile handles GET /api/v1/users/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	user, err := h.userRepository.GetByID(userCtx.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile handles PUT /api/v1/users/me. Name and password can change
// independently; a password change requires the current password.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if req.FullName != nil {
		if *req.FullName == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "full_name cannot be empty",
			})
			return
		}
		if err := h.userRepository.UpdateFullName(userCtx.UserID, *req.FullName); err != nil {
			respondStoreError(c, err)
			return
		}
	}

	if req.NewPassword != nil {
		if req.CurrentPassword == nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "current_password is required to change password",
			})
			return
		}

		user, err := h.userRepository.GetByID(userCtx.UserID)
		if err != nil {
			respondStoreError(c, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*req.CurrentPassword)); err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Current password is incorrect",
			})
			return
		}

		if err := h.inputValidator.ValidatePassword(*req.NewPassword, *req.NewPassword); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_password",
				Message: err.Error(),
			})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(*req.NewPassword), h.config.Security.BcryptCost)
		if err != nil {
			h.logger.WithError(err).Error("Failed to hash password")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to update password",
			})
			return
		}

		if err := h.userRepository.UpdatePassword(userCtx.UserID, string(hash)); err != nil {
			respondStoreError(c, err)
			return
		}

		// password changed, force other devices to log in again
		if err := h.sessionRepository.RevokeAllForUser(userCtx.UserID); err != nil {
			h.logger.WithError(err).Warn("Failed to revoke sessions after password change")
		}
	}

	user, err := h.userRepository.GetByID(userCtx.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    user,
	})
}

// issueTokens generates a token pair and records the login session
func (h *AuthHandler) issueTokens(user *models.User, clientIP, userAgent string) (*models.TokenPair, error) {
	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if _, err := h.sessionRepository.Create(user.ID, refreshToken, clientIP, userAgent); err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(h.jwtService.AccessTokenExpiry().Seconds()),
	}, nil
}
