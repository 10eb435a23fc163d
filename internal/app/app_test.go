package app_test

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"socios/internal/app"
	"socios/internal/config"
	"socios/internal/models"
	"socios/internal/storage"
	"socios/pkg/rabbitmq"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// MockEventPublisher stands in for the RabbitMQ client.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(event rabbitmq.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := app.OpenDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:?_foreign_keys=on"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the private in-memory database alive across queries.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, app.Migrate(db))
	return db
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	_, err := app.OpenDatabase(config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	for _, table := range []interface{}{&models.User{}, &models.Member{}, &models.Document{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
}

func TestHealthAndMetrics(t *testing.T) {
	db := openTestDB(t)
	registry := prometheus.NewRegistry()
	events := new(MockEventPublisher)
	events.On("PublishEvent", mock.MatchedBy(func(e rabbitmq.Event) bool {
		return e.Type == rabbitmq.EventMemberRegistered && !e.At.IsZero()
	})).Return(nil).Once()

	server := app.New(config.Config{
		JWTSecret:      "test_jwt_secret",
		TokenTTL:       time.Hour,
		UploadMaxBytes: 1 << 20,
		LoginRate:      config.RateConfig{Requests: 10, Window: time.Minute},
	}, app.Deps{
		DB:       db,
		Blobs:    storage.NewLocalStore(afero.NewMemMapFs(), "static"),
		Events:   events,
		Registry: registry,
	})

	resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, true, health["events"])

	post := func(path, token, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := server.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp = post("/api/v1/auth/register", "", `{"username":"ana","email":"ana@example.com","password":"secret1","confirm_password":"secret1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = post("/api/v1/auth/login", "", `{"email":"ana@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	resp.Body.Close()

	resp = post("/api/v1/members", login["token"], `{
		"given_name":"Ana","paternal_surname":"López","maternal_surname":"Pérez",
		"rfc":"LOPA800101AB1","curp":"LOPA800101MDFRRN09","birth_date":"1980-01-01",
		"address":"Calle 1","email":"socia@example.com","marital_status":"divorciado"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = server.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "socios_members_registered_total 1")

	events.AssertExpectations(t)
}

func TestRoutesOutsideMembersAreNotAuthenticated(t *testing.T) {
	server := app.New(config.Config{
		JWTSecret:      "test_jwt_secret",
		TokenTTL:       time.Hour,
		UploadMaxBytes: 1 << 20,
		LoginRate:      config.RateConfig{Requests: 10, Window: time.Minute},
	}, app.Deps{
		DB:       openTestDB(t),
		Blobs:    storage.NewLocalStore(afero.NewMemMapFs(), "static"),
		Registry: prometheus.NewRegistry(),
	})

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/auth/nope", http.StatusNotFound},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/v1/members", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/members/some-id/status", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		resp, err := server.Test(httptest.NewRequest(tt.method, tt.path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tt.status, resp.StatusCode, "%s %s", tt.method, tt.path)
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	server := app.New(config.Config{
		JWTSecret:      "test_jwt_secret",
		TokenTTL:       time.Hour,
		UploadMaxBytes: 1 << 20,
		LoginRate:      config.RateConfig{Requests: 2, Window: time.Hour},
	}, app.Deps{
		DB:       openTestDB(t),
		Blobs:    storage.NewLocalStore(afero.NewMemMapFs(), "static"),
		Registry: prometheus.NewRegistry(),
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"nobody@example.com","password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := server.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}
