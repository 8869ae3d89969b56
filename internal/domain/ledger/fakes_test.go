package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/id"
	"metalstock/internal/core/types"
	"metalstock/internal/domain/audit"
)

// memStore is an in-memory positions+movements store with snapshot rollback.
type memStore struct {
	mu        sync.Mutex
	positions map[id.ID]Position
	movements map[id.ID]Movement
	audit     []audit.Entry

	// lookupBarrier, when set, holds the first lookups until all of them arrived.
	lookupBarrier *sync.WaitGroup
	lookupsLeft   int

	// duplicateOnce makes the next InsertIfAbsent fail with a unique violation
	// after a concurrent transaction committed the same key.
	duplicateOnce bool

	// committed holds rows written by other transactions. A rollback keeps them.
	committed map[id.ID]Position

	failApplyDelta error
}

func newMemStore() *memStore {
	return &memStore{
		positions: make(map[id.ID]Position),
		movements: make(map[id.ID]Movement),
	}
}

type snapshot struct {
	positions map[id.ID]Position
	movements map[id.ID]Movement
	audit     int
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		positions: make(map[id.ID]Position, len(s.positions)),
		movements: make(map[id.ID]Movement, len(s.movements)),
		audit:     len(s.audit),
	}
	for k, v := range s.positions {
		snap.positions[k] = v
	}
	for k, v := range s.movements {
		snap.movements[k] = v
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = snap.positions
	for k, v := range s.committed {
		s.positions[k] = v
	}
	s.movements = snap.movements
	s.audit = s.audit[:snap.audit]
}

func (s *memStore) positionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.positions)
}

func (s *memStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

func (s *memStore) balance(positionID id.ID) types.Weight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions[positionID].Balance
}

// signedSum recomputes the balance from movements.
func (s *memStore) signedSum(positionID id.ID) types.Weight {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum types.Weight
	for _, m := range s.movements {
		if m.PositionID == positionID {
			sum += m.Delta()
		}
	}
	return sum
}

// --- tx ---

type txKey struct{}

type memTxManager struct {
	store *memStore
}

func (m *memTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	return m.run(context.WithValue(ctx, txKey{}, true), fn)
}

func (m *memTxManager) RunInSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(context.WithValue(ctx, txKey{}, true), fn)
}

func (m *memTxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// --- positions ---

type memPositions struct{ store *memStore }

func (r *memPositions) FindByKey(_ context.Context, key Key) (*Position, error) {
	s := r.store
	s.mu.Lock()
	barrier := s.lookupBarrier
	if barrier != nil && s.lookupsLeft > 0 {
		s.lookupsLeft--
		s.mu.Unlock()
		barrier.Done()
		barrier.Wait()
		s.mu.Lock()
	}
	defer s.mu.Unlock()

	for _, p := range s.positions {
		if p.Key() == key {
			found := p
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound("position", key.Size)
}

func (r *memPositions) InsertIfAbsent(_ context.Context, p *Position) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.positions {
		if existing.Key() == p.Key() {
			return false, nil
		}
	}
	if s.duplicateOnce {
		s.duplicateOnce = false
		winner := *p
		winner.ID = id.New()
		if s.committed == nil {
			s.committed = make(map[id.ID]Position)
		}
		s.committed[winner.ID] = winner
		s.positions[winner.ID] = winner
		return false, apperror.NewDuplicate("position", "key", p.Size)
	}
	s.positions[p.ID] = *p
	return true, nil
}

func (r *memPositions) GetByID(_ context.Context, positionID id.ID) (*Position, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[positionID]
	if !ok {
		return nil, apperror.NewNotFound("position", positionID.String())
	}
	return &p, nil
}

func (r *memPositions) ApplyDelta(_ context.Context, positionID id.ID, delta types.Weight) (*Position, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failApplyDelta != nil {
		return nil, s.failApplyDelta
	}
	p, ok := s.positions[positionID]
	if !ok {
		return nil, apperror.NewNotFound("position", positionID.String())
	}
	p.Balance += delta
	p.UpdatedAt = time.Now().UTC()
	s.positions[positionID] = p
	return &p, nil
}

func (r *memPositions) List(_ context.Context, filter PositionFilter) ([]PositionView, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []PositionView
	for _, p := range s.positions {
		if filter.Ownership != nil && p.Ownership != *filter.Ownership {
			continue
		}
		out = append(out, PositionView{Position: p})
	}
	return out, nil
}

// --- movements ---

type memMovements struct{ store *memStore }

func (r *memMovements) Create(_ context.Context, m *Movement) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements[m.ID] = *m
	return nil
}

func (r *memMovements) GetForUpdate(_ context.Context, movementID id.ID) (*Movement, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movements[movementID]
	if !ok {
		return nil, apperror.NewNotFound("movement", movementID.String())
	}
	return &m, nil
}

func (r *memMovements) Update(_ context.Context, m *Movement) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements[m.ID] = *m
	return nil
}

func (r *memMovements) Delete(_ context.Context, movementID id.ID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.movements, movementID)
	return nil
}

func (r *memMovements) List(_ context.Context, filter MovementFilter) ([]MovementView, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []MovementView
	for _, m := range s.movements {
		if filter.PositionID != nil && m.PositionID != *filter.PositionID {
			continue
		}
		out = append(out, MovementView{Movement: m})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MovementDate.After(out[j].MovementDate)
	})
	return out, nil
}

// --- audit ---

type memRecorder struct{ store *memStore }

func (r *memRecorder) Record(_ context.Context, e audit.Entry) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
	return nil
}

func (s *memStore) auditFor(table string, action audit.Action) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.audit {
		if e.TableName == table && e.Action == action {
			n++
		}
	}
	return n
}

// --- metrics ---

type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (m *countingMetrics) PositionResolved(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[outcome]++
}

func (m *countingMetrics) MovementRecorded(string) {}
func (m *countingMetrics) MovementReversed(string) {}

func (m *countingMetrics) count(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[outcome]
}

// --- wiring ---

type fixture struct {
	store    *memStore
	metrics  *countingMetrics
	resolver *Resolver
	service  *Service
}

func newFixture() *fixture {
	store := newMemStore()
	txm := &memTxManager{store: store}
	positions := &memPositions{store: store}
	recorder := &memRecorder{store: store}
	metrics := &countingMetrics{}
	resolver := NewResolver(positions, txm, recorder, WithResolverMetrics(metrics))
	return &fixture{
		store:    store,
		metrics:  metrics,
		resolver: resolver,
		service: NewService(ServiceConfig{
			Positions: positions,
			Movements: &memMovements{store: store},
			Resolver:  resolver,
			TxManager: txm,
			Recorder:  recorder,
			Metrics:   metrics,
		}),
	}
}
