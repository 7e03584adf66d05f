package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/topupshop/internal/domain/errors"
	"github.com/polkiloo/topupshop/internal/domain/model"
	"github.com/polkiloo/topupshop/internal/domain/repository"
)

type entryKey struct {
	reference string
	kind      model.EntryKind
}

// MemoryStore keeps the whole domain in memory with the same guarantees the
// PostgreSQL storage gives: status compare-and-set, the refund credit applied
// together with its transition and a unique (reference, kind) ledger key.
type MemoryStore struct {
	mu sync.Mutex

	users     map[int64]*model.User
	items     map[model.SKU]model.CatalogItem
	orders    map[string]*model.Order
	topups    map[int64]*model.Topup
	entries   []model.LedgerEntry
	entryKeys map[entryKey]struct{}
	nextUser  int64
	nextTopup int64
	nextEntry int64
	now       func() time.Time

	// CreditErr, when set, is consulted before every credit and may fail it.
	CreditErr func(userID int64, reference string, kind model.EntryKind) error
	// OrderCreateErr fails every order insert.
	OrderCreateErr error
	// BeforeApply runs outside the lock right before a transition is attempted.
	BeforeApply func(t model.Transition)
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[int64]*model.User),
		items:     make(map[model.SKU]model.CatalogItem),
		orders:    make(map[string]*model.Order),
		topups:    make(map[int64]*model.Topup),
		entryKeys: make(map[entryKey]struct{}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.Factory = (*MemoryStore)(nil)

func (s *MemoryStore) Users() repository.UserRepository { return memUsers{s} }
func (s *MemoryStore) Ledger() repository.LedgerRepository { return memLedger{s} }
func (s *MemoryStore) Catalog() repository.CatalogRepository { return memCatalog{s} }
func (s *MemoryStore) Orders() repository.OrderRepository { return memOrders{s} }
func (s *MemoryStore) Topups() repository.TopupRepository { return memTopups{s} }

// AddUser seeds a customer with the given opening balance.
func (s *MemoryStore) AddUser(name string, balance int64) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	u := &model.User{ID: s.nextUser, Name: name, Email: name + "@example.com", Balance: balance, Role: model.RoleUser, CreatedAt: s.now()}
	s.users[u.ID] = u
	copied := *u
	return &copied
}

// SetRole changes the role of a seeded user.
func (s *MemoryStore) SetRole(userID int64, role model.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.Role = role
	}
}

// AddItem seeds a catalogue entry.
func (s *MemoryStore) AddItem(item model.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[model.SKU{ProductCode: item.ProductCode, ItemRef: item.ItemRef}] = item
}

// Balance returns the stored balance of a user.
func (s *MemoryStore) Balance(userID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		return u.Balance
	}
	return 0
}

// LedgerEntries returns a copy of every entry in insertion order.
func (s *MemoryStore) LedgerEntries() []model.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.LedgerEntry(nil), s.entries...)
}

// AllOrders returns a copy of every stored order.
func (s *MemoryStore) AllOrders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// PutOrder stores an order bypassing validation.
func (s *MemoryStore) PutOrder(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = s.now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}
	s.orders[order.ID] = &order
}

// moveLocked changes the balance and records a ledger entry. Callers hold s.mu.
func (s *MemoryStore) moveLocked(userID, delta int64, reference string, kind model.EntryKind) (*model.LedgerEntry, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	key := entryKey{reference: reference, kind: kind}
	if _, dup := s.entryKeys[key]; dup {
		return nil, domainErrors.ErrAlreadyProcessed
	}
	if delta > 0 && s.CreditErr != nil {
		if err := s.CreditErr(userID, reference, kind); err != nil {
			return nil, err
		}
	}
	u.Balance += delta
	s.nextEntry++
	entry := model.LedgerEntry{
		ID:           s.nextEntry,
		UserID:       userID,
		Reference:    reference,
		Kind:         kind,
		Amount:       delta,
		BalanceAfter: u.Balance,
		CreatedAt:    s.now(),
	}
	s.entries = append(s.entries, entry)
	s.entryKeys[key] = struct{}{}
	return &entry, nil
}

type memUsers struct{ s *MemoryStore }

func (r memUsers) Create(_ context.Context, name, email, passwordHash string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	r.s.nextUser++
	u := &model.User{ID: r.s.nextUser, Name: name, Email: email, PasswordHash: passwordHash, Role: model.RoleUser, CreatedAt: r.s.now()}
	r.s.users[u.ID] = u
	copied := *u
	return &copied, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r memUsers) SetBanned(_ context.Context, id int64, banned bool, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	u.Banned = banned
	u.BanReason = reason
	return nil
}

type memLedger struct{ s *MemoryStore }

func (r memLedger) Summary(_ context.Context, userID int64) (*model.BalanceSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	summary := &model.BalanceSummary{Current: u.Balance}
	for _, e := range r.s.entries {
		if e.UserID != userID || e.Kind == model.EntryKindTopup {
			continue
		}
		summary.Spent -= e.Amount
	}
	return summary, nil
}

func (r memLedger) Debit(_ context.Context, userID, amount int64, reference string) (*model.LedgerEntry, error) {
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if u.Balance < amount {
		return nil, domainErrors.NewInsufficientFunds(amount, u.Balance)
	}
	return r.s.moveLocked(userID, -amount, reference, model.EntryKindOrderDebit)
}

func (r memLedger) Credit(_ context.Context, userID, amount int64, reference string, kind model.EntryKind) (*model.LedgerEntry, error) {
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.moveLocked(userID, amount, reference, kind)
}

func (r memLedger) Entries(_ context.Context, userID int64, limit int) ([]model.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []model.LedgerEntry
	for i := len(r.s.entries) - 1; i >= 0; i-- {
		if r.s.entries[i].UserID == userID {
			result = append(result, r.s.entries[i])
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

type memCatalog struct{ s *MemoryStore }

func (r memCatalog) GetItem(_ context.Context, productCode, itemRef string) (*model.CatalogItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[model.SKU{ProductCode: productCode, ItemRef: itemRef}]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &item, nil
}

type memOrders struct{ s *MemoryStore }

func (r memOrders) Create(_ context.Context, order *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.OrderCreateErr != nil {
		return r.s.OrderCreateErr
	}
	if _, exists := r.s.orders[order.ID]; exists {
		return domainErrors.ErrAlreadyExists
	}
	for _, o := range r.s.orders {
		if order.ExternalID != "" && o.ExternalID == order.ExternalID {
			return domainErrors.ErrAlreadyExists
		}
	}
	now := r.s.now()
	order.CreatedAt, order.UpdatedAt = now, now
	stored := *order
	stored.User = nil
	r.s.orders[order.ID] = &stored
	return nil
}

func (r memOrders) GetByID(_ context.Context, id string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (r memOrders) GetByExternalID(_ context.Context, externalID string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.ExternalID == externalID {
			copied := *o
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memOrders) ListByUser(_ context.Context, userID int64) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []model.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r memOrders) ListNonTerminal(_ context.Context, limit int) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []model.Order
	for _, o := range r.s.orders {
		if !o.Status.IsTerminal() {
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].UpdatedAt.Before(result[j].UpdatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r memOrders) ApplyTransition(_ context.Context, t model.Transition) (*model.Order, bool, error) {
	if r.s.BeforeApply != nil {
		r.s.BeforeApply(t)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[t.OrderID]
	if !ok || o.Status != t.From {
		return nil, false, nil
	}
	if t.Refund() {
		if _, err := r.s.moveLocked(o.UserID, o.Amount, o.ID, model.EntryKindRefund); err != nil {
			return nil, false, err
		}
	}
	o.Status = t.To
	o.Remark = model.AppendRemark(o.Remark, t.Remark)
	o.UpdatedAt = r.s.now()
	copied := *o
	return &copied, true, nil
}

type memTopups struct{ s *MemoryStore }

func (r memTopups) Create(_ context.Context, topup *model.Topup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextTopup++
	now := r.s.now()
	topup.ID = r.s.nextTopup
	topup.CreatedAt, topup.UpdatedAt = now, now
	stored := *topup
	r.s.topups[topup.ID] = &stored
	return nil
}

func (r memTopups) GetByID(_ context.Context, id int64) (*model.Topup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.topups[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r memTopups) ListByUser(_ context.Context, userID int64) ([]model.Topup, error) {
	return r.filter(func(t *model.Topup) bool { return t.UserID == userID }), nil
}

func (r memTopups) ListByStatus(_ context.Context, status model.TopupStatus) ([]model.Topup, error) {
	return r.filter(func(t *model.Topup) bool { return t.Status == status }), nil
}

func (r memTopups) filter(keep func(*model.Topup) bool) []model.Topup {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []model.Topup
	for _, t := range r.s.topups {
		if keep(t) {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r memTopups) Resolve(_ context.Context, id int64, to model.TopupStatus, note string) (*model.Topup, error) {
	if to != model.TopupStatusApproved && to != model.TopupStatusRejected {
		return nil, domainErrors.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.topups[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if t.Status != model.TopupStatusPending {
		return nil, domainErrors.ErrAlreadyProcessed
	}
	if to == model.TopupStatusApproved {
		if _, err := r.s.moveLocked(t.UserID, t.Amount, t.Reference(), model.EntryKindTopup); err != nil {
			return nil, err
		}
	}
	t.Status = to
	t.AdminNote = note
	t.UpdatedAt = r.s.now()
	copied := *t
	return &copied, nil
}
