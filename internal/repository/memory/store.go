// Package memory is an in-process implementation of the repository interfaces.
// Row locks taken by ForUpdate reads are held until the enclosing transaction
// ends, and a failed transaction is undone, so services behave as they do on
// PostgreSQL.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/engine"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

type Store struct {
	mu   sync.RWMutex
	rows *engine.KeyLocker

	events        map[string]domain.Event
	labels        map[string]domain.Label
	guests        map[string]domain.Guest
	pools         map[string]domain.ResourcePool
	waitlist      map[string]domain.WaitlistEntry // pool/guest
	perks         map[string]domain.Perk
	labelPerks    map[string]domain.LabelPerk // label/perk
	allowances    map[string]domain.BudgetAllowance
	requests      map[string]domain.GuestRequest
	sessions      map[string]domain.ItinerarySession
	registrations map[string]domain.ItineraryRegistration // guest/session
	agents        map[string]domain.Agent
	notifications map[string]domain.Notification
	effects       map[string]domain.Effect

	waitlistSeq atomic.Int64
}

func NewStore() *Store {
	return &Store{
		rows:          engine.NewKeyLocker(),
		events:        make(map[string]domain.Event),
		labels:        make(map[string]domain.Label),
		guests:        make(map[string]domain.Guest),
		pools:         make(map[string]domain.ResourcePool),
		waitlist:      make(map[string]domain.WaitlistEntry),
		perks:         make(map[string]domain.Perk),
		labelPerks:    make(map[string]domain.LabelPerk),
		allowances:    make(map[string]domain.BudgetAllowance),
		requests:      make(map[string]domain.GuestRequest),
		sessions:      make(map[string]domain.ItinerarySession),
		registrations: make(map[string]domain.ItineraryRegistration),
		agents:        make(map[string]domain.Agent),
		notifications: make(map[string]domain.Notification),
		effects:       make(map[string]domain.Effect),
	}
}

func (s *Store) Transactor() repository.Transactor { return s }
func (s *Store) Events() repository.EventRepository { return eventRepo{s} }
func (s *Store) Labels() repository.LabelRepository { return labelRepo{s} }
func (s *Store) Guests() repository.GuestRepository { return guestRepo{s} }
func (s *Store) Pools() repository.PoolRepository { return poolRepo{s} }
func (s *Store) Perks() repository.PerkRepository { return perkRepo{s} }
func (s *Store) Budgets() repository.BudgetRepository { return budgetRepo{s} }
func (s *Store) Requests() repository.RequestRepository { return requestRepo{s} }
func (s *Store) Itinerary() repository.ItineraryRepository { return itineraryRepo{s} }
func (s *Store) Agents() repository.AgentRepository { return agentRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }
func (s *Store) Effects() repository.EffectRepository { return effectRepo{s} }

type txKey struct{}

type tx struct {
	held map[string]func()
	undo []func()
}

func txFrom(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

// WithinTx joins an enclosing transaction when ctx already carries one.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	t := &tx{held: make(map[string]func())}
	err := fn(context.WithValue(ctx, txKey{}, t))
	if err != nil {
		s.mu.Lock()
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
		s.mu.Unlock()
		logger.Debug("Memory transaction rolled back", "undone", len(t.undo), "error", err)
	}
	for _, unlock := range t.held {
		unlock()
	}
	return err
}

// lockRow takes the row lock for key until the transaction in ctx ends.
// Outside a transaction it is a no-op.
func (s *Store) lockRow(ctx context.Context, key string) {
	t := txFrom(ctx)
	if t == nil {
		return
	}
	if _, ok := t.held[key]; ok {
		return
	}
	t.held[key] = s.rows.Lock(key)
}

// put stores v under key and records how to undo it.
func put[T any](ctx context.Context, s *Store, m map[string]T, key string, v T) {
	s.mu.Lock()
	prev, existed := m[key]
	m[key] = v
	s.mu.Unlock()
	if t := txFrom(ctx); t != nil {
		t.undo = append(t.undo, func() {
			if existed {
				m[key] = prev
			} else {
				delete(m, key)
			}
		})
	}
}

// insert is put that refuses an existing key.
func insert[T any](ctx context.Context, s *Store, m map[string]T, key string, v T) bool {
	s.mu.Lock()
	if _, ok := m[key]; ok {
		s.mu.Unlock()
		return false
	}
	m[key] = v
	s.mu.Unlock()
	if t := txFrom(ctx); t != nil {
		t.undo = append(t.undo, func() { delete(m, key) })
	}
	return true
}

func remove[T any](ctx context.Context, s *Store, m map[string]T, key string) bool {
	s.mu.Lock()
	prev, ok := m[key]
	if ok {
		delete(m, key)
	}
	s.mu.Unlock()
	if ok {
		if t := txFrom(ctx); t != nil {
			t.undo = append(t.undo, func() { m[key] = prev })
		}
	}
	return ok
}

func get[T any](s *Store, m map[string]T, key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := m[key]
	return v, ok
}

func filter[T any](s *Store, m map[string]T, keep func(T) bool, less func(a, b T) int) []T {
	s.mu.RLock()
	var out []T
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(out, less)
	return out
}

func pairKey(a, b string) string {
	return a + "/" + b
}

func byString(a, b string) int {
	return cmp.Compare(a, b)
}
