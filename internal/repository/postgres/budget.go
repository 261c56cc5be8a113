package postgres

import (
	"context"
	"database/sql"
	"errors"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/repository"
)

type budgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) repository.BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) SetAllowance(ctx context.Context, a *domain.BudgetAllowance) error {
	query := `INSERT INTO budget_allowances (event_id, label_id, allowance_cents) VALUES ($1, $2, $3)
	          ON CONFLICT (event_id, label_id) DO UPDATE SET allowance_cents = EXCLUDED.allowance_cents`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, a.EventID, a.LabelID, a.AllowanceCents)
	return err
}

func (r *budgetRepository) GetAllowance(ctx context.Context, eventID, labelID string) (*domain.BudgetAllowance, error) {
	a := &domain.BudgetAllowance{EventID: eventID, LabelID: labelID}
	query := `SELECT allowance_cents FROM budget_allowances WHERE event_id = $1 AND label_id = $2`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, eventID, labelID).Scan(&a.AllowanceCents)
	if errors.Is(err, sql.ErrNoRows) {
		return a, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
