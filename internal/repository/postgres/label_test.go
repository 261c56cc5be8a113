package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/repository/postgres"
)

var labelCols = []string{"id", "event_id", "name", "priority", "requires_primary_unit", "open_registration"}

func TestLabelRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLabelRepository(db)
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO labels").
			WithArgs("guest", "evt-1", "Guest", 2, true, true).
			WillReturnResult(sqlmock.NewResult(0, 1))
		err := repo.Create(ctx, &domain.Label{ID: "guest", EventID: "evt-1", Name: "Guest", Priority: 2, RequiresPrimaryUnit: true, OpenRegistration: true})
		assert.NoError(t, err)
	})

	t.Run("GetByID", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM labels WHERE id = \\$1").
			WithArgs("vip").
			WillReturnRows(sqlmock.NewRows(labelCols).AddRow("vip", "evt-1", "VIP", 1, true, false))

		l, err := repo.GetByID(ctx, "vip")
		require.NoError(t, err)
		assert.True(t, l.RequiresPrimaryUnit)
		assert.False(t, l.OpenRegistration)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM labels WHERE id = \\$1").
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
