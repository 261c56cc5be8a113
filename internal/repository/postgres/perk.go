package postgres

import (
	"context"
	"database/sql"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/repository"
)

type perkRepository struct {
	db *sql.DB
}

func NewPerkRepository(db *sql.DB) repository.PerkRepository {
	return &perkRepository{db: db}
}

func (r *perkRepository) Create(ctx context.Context, p *domain.Perk) error {
	query := `INSERT INTO perks (id, event_id, name, pricing_type, unit_cost_cents) VALUES ($1, $2, $3, $4, $5)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, p.ID, p.EventID, p.Name, p.PricingType, p.UnitCostCents)
	return err
}

func (r *perkRepository) GetByID(ctx context.Context, id string) (*domain.Perk, error) {
	p := &domain.Perk{}
	query := `SELECT id, event_id, name, pricing_type, unit_cost_cents FROM perks WHERE id = $1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&p.ID, &p.EventID, &p.Name, &p.PricingType, &p.UnitCostCents)
	if err != nil {
		return nil, notFound(err, "perk", id)
	}
	return p, nil
}

func (r *perkRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Perk, error) {
	query := `SELECT id, event_id, name, pricing_type, unit_cost_cents FROM perks WHERE event_id = $1 ORDER BY name`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perks []domain.Perk
	for rows.Next() {
		var p domain.Perk
		if err := rows.Scan(&p.ID, &p.EventID, &p.Name, &p.PricingType, &p.UnitCostCents); err != nil {
			return nil, err
		}
		perks = append(perks, p)
	}
	return perks, rows.Err()
}

func (r *perkRepository) SetLabelPerk(ctx context.Context, lp *domain.LabelPerk) error {
	query := `INSERT INTO label_perks (label_id, perk_id, expense_handled_by_client) VALUES ($1, $2, $3)
	          ON CONFLICT (label_id, perk_id) DO UPDATE SET expense_handled_by_client = EXCLUDED.expense_handled_by_client`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, lp.LabelID, lp.PerkID, lp.ExpenseHandledByClient)
	return err
}

func (r *perkRepository) GetLabelPerk(ctx context.Context, labelID, perkID string) (*domain.LabelPerk, error) {
	lp := &domain.LabelPerk{}
	query := `SELECT label_id, perk_id, expense_handled_by_client FROM label_perks WHERE label_id = $1 AND perk_id = $2`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, labelID, perkID).Scan(&lp.LabelID, &lp.PerkID, &lp.ExpenseHandledByClient)
	if err != nil {
		return nil, notFound(err, "perk mapping", labelID+"/"+perkID)
	}
	return lp, nil
}
