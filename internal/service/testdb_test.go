package service

import (
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/milanhq/milan/internal/lifecycle"
	"github.com/milanhq/milan/internal/models"
	"github.com/milanhq/milan/pkg/database"
)

// newTestDB opens a per-test in-memory sqlite database with the production
// schema, including the partial unique index over settled registrations.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database keeps all pooled connections on the
	// same store while isolating tests from each other.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createHost(t *testing.T, db *gorm.DB, admin bool) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Name:     "Test Host",
		IsAdmin:  admin,
		APIToken: uuid.NewString(),
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

type eventOpts struct {
	status   lifecycle.Status
	capacity int
	price    int64
	date     time.Time
}

func createEvent(t *testing.T, db *gorm.DB, host *models.Profile, title string, opts eventOpts) *models.Event {
	t.Helper()

	if opts.capacity == 0 {
		opts.capacity = 10
	}
	if opts.status == "" {
		opts.status = lifecycle.StatusPublished
	}
	if opts.date.IsZero() {
		opts.date = time.Now().Add(72 * time.Hour)
	}

	now := time.Now().UTC()
	event := &models.Event{
		ID:             uuid.New(),
		Title:          title,
		Description:    "a community event",
		Mode:           models.ModeOnline,
		MeetingLink:    "https://meet.example.com/" + title,
		MaxCapacity:    opts.capacity,
		Price:          opts.price,
		Status:         opts.status,
		HostID:         host.ID,
		EventDate:      opts.date,
		SubmittedAt:    now,
		ReviewDeadline: now.Add(7 * 24 * time.Hour),
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func reloadEvent(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Event {
	t.Helper()
	var event models.Event
	require.NoError(t, db.First(&event, "id = ?", id).Error)
	return &event
}

func reloadRegistration(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Registration {
	t.Helper()
	var reg models.Registration
	require.NoError(t, db.First(&reg, "id = ?", id).Error)
	return &reg
}
