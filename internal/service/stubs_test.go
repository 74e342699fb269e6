package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"messpos/internal/cart"
	"messpos/internal/model"
	"messpos/internal/repository"
	"messpos/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubCounterRepo struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
	calls    int
}

func newStubCounterRepo() *stubCounterRepo {
	return &stubCounterRepo{counters: make(map[string]int64)}
}

func (r *stubCounterRepo) Increment(_ context.Context, dateKey string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	r.counters[dateKey]++
	return r.counters[dateKey], nil
}

var _ repository.BillCounterRepository = (*stubCounterRepo)(nil)

// stubCartStore keeps carts in memory.
type stubCartStore struct {
	carts  map[string]*cart.Cart
	locked map[string]string // terminal -> token
	locks  int
}

func newStubCartStore() *stubCartStore {
	return &stubCartStore{carts: make(map[string]*cart.Cart), locked: make(map[string]string)}
}

func (s *stubCartStore) Load(_ context.Context, terminalID string) (*cart.Cart, error) {
	if c, ok := s.carts[terminalID]; ok {
		cp := *c
		cp.Lines = append([]cart.Line{}, c.Lines...)
		return &cp, nil
	}
	return cart.New(terminalID), nil
}

func (s *stubCartStore) Save(_ context.Context, c *cart.Cart) error {
	cp := *c
	cp.Lines = append([]cart.Line{}, c.Lines...)
	s.carts[c.TerminalID] = &cp
	return nil
}

func (s *stubCartStore) Delete(_ context.Context, terminalID string) error {
	delete(s.carts, terminalID)
	return nil
}

func (s *stubCartStore) Lock(_ context.Context, terminalID string, _ time.Duration) (string, bool, error) {
	if _, held := s.locked[terminalID]; held {
		return "", false, nil
	}
	s.locks++
	token := uuid.NewString()
	s.locked[terminalID] = token
	return token, true, nil
}

func (s *stubCartStore) Unlock(_ context.Context, terminalID, token string) error {
	if s.locked[terminalID] != token {
		return cart.ErrLockLost
	}
	delete(s.locked, terminalID)
	return nil
}

var _ cart.Store = (*stubCartStore)(nil)

type stubMenuRepo struct {
	items    map[int]*model.MenuItem
	upserted []model.MenuItem
}

func newStubMenuRepo(items ...model.MenuItem) *stubMenuRepo {
	r := &stubMenuRepo{items: make(map[int]*model.MenuItem)}
	for i := range items {
		it := items[i]
		r.items[it.ID] = &it
	}
	return r
}

func (r *stubMenuRepo) List(_ context.Context) ([]model.MenuItem, error) {
	out := make([]model.MenuItem, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubMenuRepo) FindByID(_ context.Context, id int) (*model.MenuItem, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return it, nil
}

func (r *stubMenuRepo) Upsert(_ context.Context, items []model.MenuItem) error {
	r.upserted = append(r.upserted, items...)
	for i := range items {
		it := items[i]
		r.items[it.ID] = &it
	}
	return nil
}

func (r *stubMenuRepo) SetActive(_ context.Context, id int, active bool) error {
	it, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	it.Active = active
	return nil
}

var _ repository.MenuRepository = (*stubMenuRepo)(nil)

// stubOrderRepo enforces the unique bill number like the real table.
type stubOrderRepo struct {
	orders    []*model.Order
	createErr error
	lastQuery repository.OrderQuery
}

func (r *stubOrderRepo) Create(_ context.Context, _ *gorm.DB, o *model.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, x := range r.orders {
		if x.BillNo == o.BillNo {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	r.orders = append(r.orders, o)
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) FindByBillNo(_ context.Context, billNo string) (*model.Order, error) {
	for _, o := range r.orders {
		if o.BillNo == billNo {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// List applies the query bounds and returns newest first.
func (r *stubOrderRepo) List(_ context.Context, q repository.OrderQuery) ([]model.Order, int64, error) {
	r.lastQuery = q
	var out []model.Order
	for _, o := range r.orders {
		if q.Start != nil && o.CompletedAt.Before(*q.Start) {
			continue
		}
		if q.End != nil && !o.CompletedAt.Before(*q.End) {
			continue
		}
		if q.Session != nil && o.Session != *q.Session {
			continue
		}
		if q.TerminalID != "" && o.TerminalID != q.TerminalID {
			continue
		}
		out = append(out, *o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

type stubReceiptRepo struct {
	byOrder map[uuid.UUID]*model.Receipt
}

func newStubReceiptRepo() *stubReceiptRepo {
	return &stubReceiptRepo{byOrder: make(map[uuid.UUID]*model.Receipt)}
}

func (r *stubReceiptRepo) Create(_ context.Context, _ *gorm.DB, rc *model.Receipt) error {
	r.byOrder[rc.OrderID] = rc
	return nil
}

func (r *stubReceiptRepo) FindByOrderID(_ context.Context, id uuid.UUID) (*model.Receipt, error) {
	rc, ok := r.byOrder[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rc, nil
}

func (r *stubReceiptRepo) Update(_ context.Context, rc *model.Receipt) error {
	r.byOrder[rc.OrderID] = rc
	return nil
}

func (r *stubReceiptRepo) ListPendingRetries(context.Context, time.Time, int) ([]model.Receipt, error) {
	return nil, nil
}

var _ repository.ReceiptRepository = (*stubReceiptRepo)(nil)

type recordingDispatcher struct {
	receipts []worker.ReceiptJobPayload
	notifies []worker.NotifyJobPayload
}

func (d *recordingDispatcher) EnqueueReceipt(_ context.Context, p worker.ReceiptJobPayload) error {
	d.receipts = append(d.receipts, p)
	return nil
}

func (d *recordingDispatcher) EnqueueNotify(_ context.Context, p worker.NotifyJobPayload) error {
	d.notifies = append(d.notifies, p)
	return nil
}

var _ JobDispatcher = (*recordingDispatcher)(nil)

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active || includeInactive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = active
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)
