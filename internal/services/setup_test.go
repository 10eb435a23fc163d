package services_test

import (
	"fmt"
	"testing"
	"time"

	"socios/internal/metrics"
	"socios/internal/models"
	"socios/internal/repositories"
	"socios/internal/services"
	"socios/internal/storage"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// env bundles services backed by an in-memory database and filesystem.
type env struct {
	db        *gorm.DB
	fs        afero.Fs
	store     *storage.LocalStore
	metrics   *metrics.Metrics
	members   *services.MemberService
	documents *services.DocumentService
	exports   *services.ExportService
	owner     *models.User
	stranger  *models.User
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Member{}, &models.Document{}))

	users := repositories.NewGORMUserRepository(db)
	memberRepo := repositories.NewGORMMemberRepository(db)
	docRepo := repositories.NewGORMDocumentRepository(db)

	fs := afero.NewMemMapFs()
	store := storage.NewLocalStore(fs, "static")
	m := metrics.New(prometheus.NewRegistry())

	e := &env{
		db:        db,
		fs:        fs,
		store:     store,
		metrics:   m,
		members:   services.NewMemberService(memberRepo, docRepo, store, nil, m),
		documents: services.NewDocumentService(memberRepo, docRepo, store, nil, m),
		exports:   services.NewExportService(memberRepo, m),
		owner:     &models.User{Username: "owner", Email: "owner@example.com", Password: "hash"},
		stranger:  &models.User{Username: "stranger", Email: "stranger@example.com", Password: "hash"},
	}
	require.NoError(t, users.Create(e.owner))
	require.NoError(t, users.Create(e.stranger))
	return e
}

func ptr(s string) *string { return &s }

func memberInput(email string, status models.MaritalStatus) services.MemberInput {
	return services.MemberInput{
		GivenName:       "Ana",
		PaternalSurname: "López",
		MaternalSurname: "Pérez",
		RFC:             "LOPA800101AB1",
		CURP:            "LOPA800101MDFRRN09",
		BirthDate:       time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		Address:         "Calle 1, Ciudad",
		Email:           email,
		MaritalStatus:   status,
	}
}
