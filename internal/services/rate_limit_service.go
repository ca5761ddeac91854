package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/stayloop/hotel-booking-backend/internal/database"
)

// RateLimitService throttles failed login attempts per email and per IP
type RateLimitService struct {
	db     database.DB
	config RateLimitConfig
}

// NewRateLimitService creates a new rate limit service. Zero config fields
// fall back to the defaults.
func NewRateLimitService(db database.DB, config RateLimitConfig) *RateLimitService {
	defaults := DefaultRateLimitConfig()
	if config.MaxEmailAttempts <= 0 {
		config.MaxEmailAttempts = defaults.MaxEmailAttempts
	}
	if config.EmailWindow <= 0 {
		config.EmailWindow = defaults.EmailWindow
	}
	if config.MaxIPAttempts <= 0 {
		config.MaxIPAttempts = defaults.MaxIPAttempts
	}
	if config.IPWindow <= 0 {
		config.IPWindow = defaults.IPWindow
	}
	return &RateLimitService{db: db, config: config}
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxEmailAttempts int           // Max failed logins per email
	EmailWindow      time.Duration // Time window for email rate limit
	MaxIPAttempts    int           // Max failed logins per IP
	IPWindow         time.Duration // Time window for IP rate limit
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxEmailAttempts: 5,
		EmailWindow:      15 * time.Minute,
		MaxIPAttempts:    20,
		IPWindow:         1 * time.Hour,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "email" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// CheckLoginRateLimit checks whether an email or IP has exceeded the failed
// login limits. Successful logins are not counted.
func (s *RateLimitService) CheckLoginRateLimit(email, ip string) error {
	config := s.config

	if email != "" {
		count, lastAttempt, err := s.getAttemptCount(email, "email", config.EmailWindow)
		if err != nil {
			return fmt.Errorf("failed to check email rate limit: %w", err)
		}

		if count >= config.MaxEmailAttempts {
			retryAfter := lastAttempt.Add(config.EmailWindow)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed login attempts for this account. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "email",
			}
		}
	}

	if ip != "" {
		count, lastAttempt, err := s.getAttemptCount(ip, "ip", config.IPWindow)
		if err != nil {
			return fmt.Errorf("failed to check IP rate limit: %w", err)
		}

		if count >= config.MaxIPAttempts {
			retryAfter := lastAttempt.Add(config.IPWindow)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed login attempts from this address. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "ip",
			}
		}
	}

	return nil
}

// getAttemptCount gets the number of failed attempts within the time window
func (s *RateLimitService) getAttemptCount(identifier, identifierType string, window time.Duration) (int, time.Time, error) {
	windowStart := time.Now().Add(-window)

	query := `
		SELECT COUNT(*), COALESCE(MAX(created_at), NOW())
		FROM login_rate_limits
		WHERE identifier = $1
		  AND identifier_type = $2
		  AND created_at > $3
	`

	var count int
	var lastAttempt time.Time

	err := s.db.QueryRow(query, identifier, identifierType, windowStart).Scan(&count, &lastAttempt)
	if err != nil && err != sql.ErrNoRows {
		return 0, time.Time{}, err
	}

	return count, lastAttempt, nil
}

// RecordFailedLogin records a failed login for rate limiting
func (s *RateLimitService) RecordFailedLogin(email, ip string) error {
	if email != "" {
		if err := s.recordAttempt(email, "email"); err != nil {
			return fmt.Errorf("failed to record email attempt: %w", err)
		}
	}

	if ip != "" {
		if err := s.recordAttempt(ip, "ip"); err != nil {
			return fmt.Errorf("failed to record IP attempt: %w", err)
		}
	}

	return nil
}

func (s *RateLimitService) recordAttempt(identifier, identifierType string) error {
	query := `
		INSERT INTO login_rate_limits (identifier, identifier_type, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := s.db.Exec(query, identifier, identifierType)
	return err
}

// ClearAttempts wipes the failure history for an email after a successful
// login so a correct password resets the counter.
func (s *RateLimitService) ClearAttempts(email string) error {
	query := `
		DELETE FROM login_rate_limits
		WHERE identifier = $1 AND identifier_type = 'email'
	`

	_, err := s.db.Exec(query, email)
	if err != nil {
		return fmt.Errorf("failed to clear attempts: %w", err)
	}
	return nil
}

// CleanupExpiredRateLimits removes rate limit records older than the longest
// window. Run periodically from the server loop.
func (s *RateLimitService) CleanupExpiredRateLimits() (int64, error) {
	maxWindow := s.config.IPWindow
	if s.config.EmailWindow > maxWindow {
		maxWindow = s.config.EmailWindow
	}

	cutoffTime := time.Now().Add(-maxWindow)

	result, err := s.db.Exec(`DELETE FROM login_rate_limits WHERE created_at < $1`, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup rate limits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
