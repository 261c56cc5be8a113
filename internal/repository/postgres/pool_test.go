package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/repository/postgres"
)

var poolCols = []string{"id", "event_id", "name", "kind", "is_primary", "blocked", "confirmed",
	"negotiated_rate_cents", "valid_from", "valid_to", "updated_at"}

func TestPoolRepository_CreateSecondPrimary(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPoolRepository(db)
	mock.ExpectExec("INSERT INTO resource_pools").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "resource_pools_primary_idx"})

	err = repo.Create(context.Background(), &domain.ResourcePool{ID: "pool-2", EventID: "evt-1", Kind: domain.PoolKindRooms, IsPrimary: true, Blocked: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "resource_pools_primary_idx")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolRepository_GetPrimary(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPoolRepository(db)
	ctx := context.Background()

	t.Run("Locked", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM resource_pools WHERE event_id = \\$1 AND is_primary (.+) FOR UPDATE").
			WithArgs("evt-1").
			WillReturnRows(sqlmock.NewRows(poolCols).AddRow("pool-1", "evt-1", "Hotel", "rooms", true, 20, 12, 15000, nil, nil, time.Now()))

		p, err := repo.GetPrimary(ctx, "evt-1", true)
		require.NoError(t, err)
		assert.Equal(t, 8, p.Available())
		assert.Equal(t, domain.PoolKindRooms, p.Kind)
	})

	t.Run("None configured", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM resource_pools WHERE event_id = \\$1 AND is_primary").
			WithArgs("evt-2").
			WillReturnRows(sqlmock.NewRows(poolCols))

		_, err := repo.GetPrimary(ctx, "evt-2", false)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolRepository_Waitlist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPoolRepository(db)
	ctx := context.Background()
	joined := time.Now()

	t.Run("ListOrdered", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM waitlist_entries WHERE pool_id = \\$1 ORDER BY priority, joined_at, seq").
			WithArgs("pool-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "pool_id", "guest_id", "priority", "requested_seats", "joined_at", "seq"}).
				AddRow("w1", "pool-1", "g1", 1, 2, joined, 4).
				AddRow("w2", "pool-1", "g2", 2, 1, joined, 3))

		entries, err := repo.ListWaitlist(ctx, "pool-1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "g1", entries[0].GuestID)
		assert.Equal(t, int64(4), entries[0].Seq)
	})

	t.Run("Add", func(t *testing.T) {
		e := &domain.WaitlistEntry{ID: "w3", PoolID: "pool-1", GuestID: "g3", Priority: 1, RequestedSeats: 2, JoinedAt: joined}
		mock.ExpectQuery("INSERT INTO waitlist_entries (.+) RETURNING seq").
			WithArgs("w3", "pool-1", "g3", 1, 2, joined).
			WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(7))
		require.NoError(t, repo.AddWaitlistEntry(ctx, e))
		assert.Equal(t, int64(7), e.Seq)
	})

	t.Run("RemoveMissing", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM waitlist_entries").
			WithArgs("pool-1", "g9").
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.RemoveWaitlistEntry(ctx, "pool-1", "g9"), domain.ErrNotFound)
	})
}

func TestTransactor_WithinTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	tx := postgres.NewTransactor(db)
	pools := postgres.NewPoolRepository(db)
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM resource_pools WHERE id = \\$1 FOR UPDATE").
			WithArgs("pool-1").
			WillReturnRows(sqlmock.NewRows(poolCols).AddRow("pool-1", "evt-1", "Hotel", "rooms", true, 5, 5, 0, nil, nil, time.Now()))
		mock.ExpectExec("UPDATE resource_pools SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			p, err := pools.GetForUpdate(ctx, "pool-1")
			if err != nil {
				return err
			}
			p.Blocked = 8
			return pools.Update(ctx, p)
		})
		assert.NoError(t, err)
	})

	t.Run("Rollback on error", func(t *testing.T) {
		boom := errors.New("decision failed")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := tx.WithinTx(ctx, func(ctx context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Nested joins outer", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			return tx.WithinTx(ctx, func(ctx context.Context) error { return nil })
		})
		assert.NoError(t, err)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
