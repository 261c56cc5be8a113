package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/repository"
)

type agentRepository struct {
	db *sql.DB
}

func NewAgentRepository(db *sql.DB) repository.AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) Create(ctx context.Context, a *domain.Agent) error {
	query := `INSERT INTO agents (id, email, name, password_hash, event_ids, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	a.CreatedAt = time.Now().UTC()
	_, err := conn(ctx, r.db).ExecContext(ctx, query, a.ID, a.Email, a.Name, a.PasswordHash, pq.Array(a.EventIDs), a.CreatedAt)
	return err
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	query := `SELECT id, email, name, password_hash, event_ids, created_at FROM agents WHERE id = $1`
	return r.get(ctx, query, id)
}

func (r *agentRepository) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	query := `SELECT id, email, name, password_hash, event_ids, created_at FROM agents WHERE LOWER(email) = LOWER($1)`
	return r.get(ctx, query, email)
}

func (r *agentRepository) get(ctx context.Context, query string, key string) (*domain.Agent, error) {
	a := &domain.Agent{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, key).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, pq.Array(&a.EventIDs), &a.CreatedAt)
	if err != nil {
		return nil, notFound(err, "agent", key)
	}
	return a, nil
}

func (r *agentRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Agent, error) {
	query := `SELECT id, email, name, password_hash, event_ids, created_at FROM agents WHERE $1 = ANY(event_ids) ORDER BY email`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		var a domain.Agent
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, pq.Array(&a.EventIDs), &a.CreatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
