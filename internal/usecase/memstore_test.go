package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

// memStore is an in-memory ledger store. Units of work run one at a time and
// see a private copy of the state that replaces the shared state on commit.
type memStore struct {
	mu    sync.Mutex
	state memState

	commitErr error
}

type memState struct {
	clients      map[int64]*domain.Client
	accounts     map[string]*domain.Account
	transactions []*domain.Transaction
	nextClientID int64
	nextTxID     int64
}

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			clients:      make(map[int64]*domain.Client),
			accounts:     make(map[string]*domain.Account),
			nextClientID: 1,
			nextTxID:     1,
		},
	}
}

func (s memState) clone() memState {
	c := memState{
		clients:      make(map[int64]*domain.Client, len(s.clients)),
		accounts:     make(map[string]*domain.Account, len(s.accounts)),
		transactions: make([]*domain.Transaction, len(s.transactions)),
		nextClientID: s.nextClientID,
		nextTxID:     s.nextTxID,
	}
	for id, cl := range s.clients {
		cp := *cl
		c.clients[id] = &cp
	}
	for n, a := range s.accounts {
		cp := *a
		c.accounts[n] = &cp
	}
	copy(c.transactions, s.transactions)

	return c
}

func (s *memStore) Begin(_ context.Context, mode usecase.AccessMode) (usecase.UnitOfWork, error) {
	s.mu.Lock()
	return &memUnit{store: s, mode: mode, state: s.state.clone()}, nil
}

// seed adds a client with the given accounts outside of any unit of work.
func (s *memStore) seed(clientID int64, name string, balances map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.clients[clientID] = &domain.Client{ID: clientID, Name: name}
	if clientID >= s.state.nextClientID {
		s.state.nextClientID = clientID + 1
	}
	for number, b := range balances {
		balance := decimal.RequireFromString(b)
		s.state.accounts[number] = &domain.Account{
			Number:         number,
			ClientID:       clientID,
			Balance:        balance,
			OpeningBalance: balance,
		}
	}
}

func (s *memStore) balance(number string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.state.accounts[number]
	if !ok {
		return decimal.Zero
	}
	return a.Balance
}

func (s *memStore) transactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.state.transactions)
}

type memUnit struct {
	store *memStore
	mode  usecase.AccessMode
	state memState
	done  bool
}

func (u *memUnit) Commit(context.Context) error {
	if u.done {
		return errors.New("unit already finished")
	}
	u.done = true
	defer u.store.mu.Unlock()

	if u.store.commitErr != nil {
		return u.store.commitErr
	}
	if u.mode == usecase.ReadWrite {
		u.store.state = u.state
	}

	return nil
}

func (u *memUnit) Rollback(context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	u.store.mu.Unlock()

	return nil
}

func unitState(uow usecase.UnitOfWork) *memState {
	return &uow.(*memUnit).state
}

type memClientRepo struct{}

func (memClientRepo) Create(_ context.Context, uow usecase.UnitOfWork, client *domain.Client) error {
	st := unitState(uow)
	if client.ID == 0 {
		client.ID = st.nextClientID
	}
	if _, ok := st.clients[client.ID]; ok {
		return domain.ErrConstraintViolation
	}
	if client.ID >= st.nextClientID {
		st.nextClientID = client.ID + 1
	}
	cp := *client
	st.clients[client.ID] = &cp

	return nil
}

func (memClientRepo) GetByID(_ context.Context, uow usecase.UnitOfWork, id int64) (*domain.Client, error) {
	c, ok := unitState(uow).clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

func (memClientRepo) List(_ context.Context, uow usecase.UnitOfWork) ([]*domain.Client, error) {
	st := unitState(uow)
	out := make([]*domain.Client, 0, len(st.clients))
	for _, c := range st.clients {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (memClientRepo) Delete(_ context.Context, uow usecase.UnitOfWork, id int64) error {
	st := unitState(uow)
	for _, a := range st.accounts {
		if a.ClientID == id {
			return domain.ErrConstraintViolation
		}
	}
	delete(st.clients, id)

	return nil
}

type memAccountRepo struct {
	updateErr error
}

func (memAccountRepo) Create(_ context.Context, uow usecase.UnitOfWork, account *domain.Account) error {
	st := unitState(uow)
	if _, ok := st.accounts[account.Number]; ok {
		return domain.ErrConstraintViolation
	}
	if _, ok := st.clients[account.ClientID]; !ok {
		return domain.ErrConstraintViolation
	}
	cp := *account
	st.accounts[account.Number] = &cp

	return nil
}

func (memAccountRepo) GetByNumber(_ context.Context, uow usecase.UnitOfWork, number string) (*domain.Account, error) {
	a, ok := unitState(uow).accounts[number]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (memAccountRepo) GetByNumbersForUpdate(_ context.Context, uow usecase.UnitOfWork, numbers []string) ([]*domain.Account, error) {
	st := unitState(uow)
	out := make([]*domain.Account, 0, len(numbers))
	for _, n := range numbers {
		if a, ok := st.accounts[n]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}

	return out, nil
}

func (r memAccountRepo) UpdateBalance(_ context.Context, uow usecase.UnitOfWork, number string, balance decimal.Decimal, updatedAt time.Time) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	a, ok := unitState(uow).accounts[number]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if balance.IsNegative() {
		return domain.ErrConstraintViolation
	}
	a.Balance = balance
	a.UpdatedAt = updatedAt

	return nil
}

func (memAccountRepo) List(_ context.Context, uow usecase.UnitOfWork) ([]*domain.Account, error) {
	st := unitState(uow)
	out := make([]*domain.Account, 0, len(st.accounts))
	for _, a := range st.accounts {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })

	return out, nil
}

func (r memAccountRepo) ListByClient(ctx context.Context, uow usecase.UnitOfWork, clientID int64) ([]*domain.Account, error) {
	all, _ := r.List(ctx, uow)
	out := make([]*domain.Account, 0)
	for _, a := range all {
		if a.ClientID == clientID {
			out = append(out, a)
		}
	}

	return out, nil
}

func (memAccountRepo) DeleteByClient(_ context.Context, uow usecase.UnitOfWork, clientID int64) error {
	st := unitState(uow)
	for n, a := range st.accounts {
		if a.ClientID == clientID {
			delete(st.accounts, n)
		}
	}

	return nil
}

type memTransactionRepo struct{}

func (memTransactionRepo) Create(_ context.Context, uow usecase.UnitOfWork, tx *domain.Transaction) error {
	st := unitState(uow)
	tx.ID = st.nextTxID
	tx.CreatedAt = time.Now().UTC()
	st.nextTxID++
	cp := *tx
	st.transactions = append(st.transactions, &cp)

	return nil
}

func (memTransactionRepo) List(_ context.Context, uow usecase.UnitOfWork, filter usecase.TransactionFilter) ([]*domain.Transaction, error) {
	st := unitState(uow)
	out := make([]*domain.Transaction, 0)
	for i := len(st.transactions) - 1; i >= 0; i-- {
		tx := st.transactions[i]
		if filter.AccountNumber != "" && !tx.Involves(filter.AccountNumber) {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}

	if filter.Offset >= len(out) {
		return []*domain.Transaction{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}

	return out, nil
}

type memLedgerRepo struct{}

func (memLedgerRepo) Totals(_ context.Context, uow usecase.UnitOfWork) (usecase.LedgerTotals, error) {
	st := unitState(uow)
	totals := usecase.LedgerTotals{Balance: decimal.Zero, Opening: decimal.Zero, NetTransfers: decimal.Zero}
	for _, a := range st.accounts {
		totals.Balance = totals.Balance.Add(a.Balance)
		totals.Opening = totals.Opening.Add(a.OpeningBalance)
	}
	for _, tx := range st.transactions {
		if _, ok := st.accounts[tx.ToAccount]; ok {
			totals.NetTransfers = totals.NetTransfers.Add(tx.Amount)
		}
		if _, ok := st.accounts[tx.FromAccount]; ok {
			totals.NetTransfers = totals.NetTransfers.Sub(tx.Amount)
		}
	}

	return totals, nil
}

func (memLedgerRepo) Turnover(_ context.Context, uow usecase.UnitOfWork, number string) (usecase.AccountTurnover, error) {
	t := usecase.AccountTurnover{Debits: decimal.Zero, Credits: decimal.Zero}
	for _, tx := range unitState(uow).transactions {
		if tx.FromAccount == number {
			t.Debits = t.Debits.Add(tx.Amount)
		}
		if tx.ToAccount == number {
			t.Credits = t.Credits.Add(tx.Amount)
		}
	}

	return t, nil
}

type seqIDGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return "ref-" + decimal.NewFromInt(int64(g.n)).String()
}

func newMemPosting(store *memStore, opts ...usecase.PostingOption) *usecase.PostingUseCase {
	return usecase.NewPostingUseCase(store, memAccountRepo{}, memTransactionRepo{}, &seqIDGenerator{}, opts...)
}
