package postgres

import (
	"context"
	"database/sql"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/repository"
)

type labelRepository struct {
	db *sql.DB
}

func NewLabelRepository(db *sql.DB) repository.LabelRepository {
	return &labelRepository{db: db}
}

func (r *labelRepository) Create(ctx context.Context, l *domain.Label) error {
	query := `INSERT INTO labels (id, event_id, name, priority, requires_primary_unit, open_registration) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, l.ID, l.EventID, l.Name, l.Priority, l.RequiresPrimaryUnit, l.OpenRegistration)
	return err
}

func (r *labelRepository) GetByID(ctx context.Context, id string) (*domain.Label, error) {
	l := &domain.Label{}
	query := `SELECT id, event_id, name, priority, requires_primary_unit, open_registration FROM labels WHERE id = $1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&l.ID, &l.EventID, &l.Name, &l.Priority, &l.RequiresPrimaryUnit, &l.OpenRegistration)
	if err != nil {
		return nil, notFound(err, "label", id)
	}
	return l, nil
}

func (r *labelRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Label, error) {
	query := `SELECT id, event_id, name, priority, requires_primary_unit, open_registration FROM labels WHERE event_id = $1 ORDER BY priority, name`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []domain.Label
	for rows.Next() {
		var l domain.Label
		if err := rows.Scan(&l.ID, &l.EventID, &l.Name, &l.Priority, &l.RequiresPrimaryUnit, &l.OpenRegistration); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}
