package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sunroad/backend/internal/domain/artist"
	"github.com/sunroad/backend/internal/domain/shared"
)

// newMockArtistRepository creates a GormArtistRepository with a mocked SQL connection
func newMockArtistRepository(t *testing.T) (*GormArtistRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormArtistRepository(gormDB), mock, mockDB
}

func TestGormArtistRepository_FindByHandle(t *testing.T) {
	t.Run("finds artist and lowercases handle", func(t *testing.T) {
		repo, mock, mockDB := newMockArtistRepository(t)
		defer mockDB.Close()

		artistID := uuid.New()
		authUserID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows([]string{"id", "auth_user_id", "handle", "display_name", "plan", "contact_enabled", "created_at", "updated_at"}).
			AddRow(artistID, authUserID, "luna", "Luna Waves", "standard", true, now, now)

		mock.ExpectQuery(`SELECT \* FROM "artists" WHERE handle = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("luna", 1).
			WillReturnRows(rows)

		found, err := repo.FindByHandle(context.Background(), "Luna")

		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, artistID, found.ID)
		assert.Equal(t, artist.PlanStandard, found.Plan)
		assert.True(t, found.ContactEnabled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for unknown handle", func(t *testing.T) {
		repo, mock, mockDB := newMockArtistRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "artists" WHERE handle = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("nobody", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		found, err := repo.FindByHandle(context.Background(), "nobody")

		assert.Nil(t, found)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormArtistRepository_FindByStripeCustomerID(t *testing.T) {
	t.Run("rejects empty customer id", func(t *testing.T) {
		repo, _, mockDB := newMockArtistRepository(t)
		defer mockDB.Close()

		found, err := repo.FindByStripeCustomerID(context.Background(), "")

		assert.Nil(t, found)
		assert.Error(t, err)
	})

	t.Run("finds artist by customer id", func(t *testing.T) {
		repo, mock, mockDB := newMockArtistRepository(t)
		defer mockDB.Close()

		artistID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows([]string{"id", "auth_user_id", "handle", "display_name", "plan", "contact_enabled", "stripe_customer_id", "created_at", "updated_at"}).
			AddRow(artistID, uuid.New(), "luna", "Luna Waves", "pro", true, "cus_123", now, now)

		mock.ExpectQuery(`SELECT \* FROM "artists" WHERE stripe_customer_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("cus_123", 1).
			WillReturnRows(rows)

		found, err := repo.FindByStripeCustomerID(context.Background(), "cus_123")

		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "cus_123", found.StripeCustomerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormArtistRepository_UpdatePlan(t *testing.T) {
	t.Run("updates existing artist", func(t *testing.T) {
		repo, mock, mockDB := newMockArtistRepository(t)
		defer mockDB.Close()

		artistID := uuid.New()

		mock.ExpectExec(`UPDATE "artists" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdatePlan(context.Background(), artistID, artist.PlanPro)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when nothing updated", func(t *testing.T) {
		repo, mock, mockDB := newMockArtistRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "artists" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePlan(context.Background(), uuid.New(), artist.PlanFree)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
