package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mssola/user_agent"
	"github.com/stayloop/hotel-booking-backend/internal/models"
)

// SessionRepository handles login session records and the refresh tokens
// bound to them. Tokens are stored hashed; the raw token never touches the
// database.
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// HashToken returns the hex SHA-256 of a refresh token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Create records a new login session with parsed device information
func (r *SessionRepository) Create(userID int64, refreshToken, ipAddress, userAgent string) (*models.UserSession, error) {
	ua := user_agent.New(userAgent)
	browser, _ := ua.Browser()

	session := &models.UserSession{
		ID:     uuid.New(),
		UserID: userID,
		Mobile: ua.Mobile(),
	}
	if ipAddress != "" {
		session.IPAddress.Valid = true
		session.IPAddress.String = ipAddress
	}
	if userAgent != "" {
		session.UserAgent.Valid = true
		session.UserAgent.String = userAgent
	}
	if browser != "" {
		session.Browser.Valid = true
		session.Browser.String = browser
	}
	if os := ua.OS(); os != "" {
		session.OS.Valid = true
		session.OS.String = os
	}

	query := `
		INSERT INTO user_sessions (
			id, user_id, refresh_token_hash, ip_address, user_agent,
			browser, os, mobile
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, last_activity_at
	`

	err := r.db.QueryRow(
		query,
		session.ID, session.UserID, HashToken(refreshToken),
		session.IPAddress, session.UserAgent,
		session.Browser, session.OS, session.Mobile,
	).Scan(&session.CreatedAt, &session.LastActivityAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// FindActiveByToken looks up the non-revoked session holding the given
// refresh token.
func (r *SessionRepository) FindActiveByToken(refreshToken string) (*models.UserSession, error) {
	query := `
		SELECT id, user_id, ip_address, user_agent, browser, os, mobile,
		       created_at, last_activity_at, revoked
		FROM user_sessions
		WHERE refresh_token_hash = $1 AND revoked = FALSE
	`

	session := &models.UserSession{}
	err := r.db.QueryRow(query, HashToken(refreshToken)).Scan(
		&session.ID, &session.UserID, &session.IPAddress, &session.UserAgent,
		&session.Browser, &session.OS, &session.Mobile,
		&session.CreatedAt, &session.LastActivityAt, &session.Revoked,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	return session, nil
}

// Rotate swaps the session's refresh token for a new one and bumps activity
func (r *SessionRepository) Rotate(sessionID uuid.UUID, newRefreshToken string) error {
	query := `
		UPDATE user_sessions
		SET refresh_token_hash = $2, last_activity_at = NOW()
		WHERE id = $1 AND revoked = FALSE
	`

	result, err := r.db.Exec(query, sessionID, HashToken(newRefreshToken))
	if err != nil {
		return fmt.Errorf("failed to rotate session token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// RevokeByToken revokes the session holding the given refresh token
func (r *SessionRepository) RevokeByToken(refreshToken string) error {
	query := `
		UPDATE user_sessions
		SET revoked = TRUE, last_activity_at = NOW()
		WHERE refresh_token_hash = $1 AND revoked = FALSE
	`

	_, err := r.db.Exec(query, HashToken(refreshToken))
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every active session of a user
func (r *SessionRepository) RevokeAllForUser(userID int64) error {
	query := `
		UPDATE user_sessions
		SET revoked = TRUE, last_activity_at = NOW()
		WHERE user_id = $1 AND revoked = FALSE
	`

	_, err := r.db.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}
