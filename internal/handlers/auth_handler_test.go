package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stayloop/hotel-booking-backend/internal/config"
	"github.com/stayloop/hotel-booking-backend/internal/database"
	"github.com/stayloop/hotel-booking-backend/internal/services"
	"github.com/stayloop/hotel-booking-backend/pkg/jwt"
	"github.com/stayloop/hotel-booking-backend/pkg/validator"
)

func logrusTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := &database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}

	cfg := &config.Config{}
	cfg.Security.BcryptCost = bcrypt.MinCost
	cfg.Security.MinPasswordLength = 8

	jwtService := jwt.NewService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	handler := NewAuthHandler(
		jwtService,
		validator.NewInputValidator(cfg.Security.MinPasswordLength),
		services.NewRateLimitService(wrapped, services.DefaultRateLimitConfig()),
		database.NewUserRepository(wrapped),
		database.NewSessionRepository(wrapped),
		cfg,
		logrusTestLogger(),
	)

	return handler, mock
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		handler, mock := newTestAuthHandler(t)
		router := gin.New()
		router.POST("/register", handler.Register)

		now := time.Now()
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("Jane Doe", "jane@example.com", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "full_name", "email", "password_hash", "is_admin",
				"created_at", "updated_at",
			}).AddRow(int64(1), "Jane Doe", "jane@example.com", "$2a$04$hash", false, now, now))

		w := postJSON(router, "/register", gin.H{
			"full_name":        "Jane Doe",
			"email":            "Jane@Example.com",
			"password":         "supersecret",
			"confirm_password": "supersecret",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "jane@example.com")
		assert.NotContains(t, w.Body.String(), "password_hash")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid Email", func(t *testing.T) {
		handler, _ := newTestAuthHandler(t)
		router := gin.New()
		router.POST("/register", handler.Register)

		w := postJSON(router, "/register", gin.H{
			"full_name":        "Jane Doe",
			"email":            "not-an-email",
			"password":         "supersecret",
			"confirm_password": "supersecret",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_email")
	})

	t.Run("Short Password", func(t *testing.T) {
		handler, _ := newTestAuthHandler(t)
		router := gin.New()
		router.POST("/register", handler.Register)

		w := postJSON(router, "/register", gin.H{
			"full_name":        "Jane Doe",
			"email":            "jane@example.com",
			"password":         "short",
			"confirm_password": "short",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_password")
	})

	t.Run("Password Mismatch", func(t *testing.T) {
		handler, _ := newTestAuthHandler(t)
		router := gin.New()
		router.POST("/register", handler.Register)

		w := postJSON(router, "/register", gin.H{
			"full_name":        "Jane Doe",
			"email":            "jane@example.com",
			"password":         "supersecret",
			"confirm_password": "supersecret2",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_password")
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		handler, mock := newTestAuthHandler(t)
		router := gin.New()
		router.POST("/register", handler.Register)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("Jane Doe", "jane@example.com", sqlmock.AnyArg()).
			WillReturnError(&pq.Error{Code: "23505"})

		w := postJSON(router, "/register", gin.H{
			"full_name":        "Jane Doe",
			"email":            "jane@example.com",
			"password":         "supersecret",
			"confirm_password": "supersecret",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "email_exists")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userColumns := []string{
		"id", "full_name", "email", "password_hash", "is_admin",
		"created_at", "updated_at",
	}

	t.Run("Wrong Password", func(t *testing.T) {
		handler, mock := newTestAuthHandler(t)
		router := gin.New()
		router.POST("/login", handler.Login)

		hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
		require.NoError(t, err)
		now := time.Now()

		// rate limit windows for email and ip are both clear
		mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE`).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(0, now))
		mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE`).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(0, now))
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("jane@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(int64(1), "Jane Doe", "jane@example.com", string(hash), false, now, now))
		// failed attempt recorded for email and ip
		mock.ExpectExec(`INSERT INTO login_rate_limits`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO login_rate_limits`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		w := postJSON(router, "/login", gin.H{
			"email":    "jane@example.com",
			"password": "wrong-password",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_credentials")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rate Limited", func(t *testing.T) {
		handler, mock := newTestAuthHandler(t)
		router := gin.New()
		router.POST("/login", handler.Login)

		mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE`).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(5, time.Now()))

		w := postJSON(router, "/login", gin.H{
			"email":    "jane@example.com",
			"password": "whatever-password",
		})

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "rate_limited")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success", func(t *testing.T) {
		handler, mock := newTestAuthHandler(t)
		router := gin.New()
		router.POST("/login", handler.Login)

		hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
		require.NoError(t, err)
		now := time.Now()

		mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE`).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(0, now))
		mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE`).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(0, now))
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("jane@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(int64(1), "Jane Doe", "jane@example.com", string(hash), false, now, now))
		mock.ExpectExec(`DELETE FROM login_rate_limits`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`INSERT INTO user_sessions`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "last_activity_at"}).
				AddRow(now, now))

		w := postJSON(router, "/login", gin.H{
			"email":    "jane@example.com",
			"password": "correct-password",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "access_token")
		assert.Contains(t, w.Body.String(), "refresh_token")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
