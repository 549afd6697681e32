// Package memory provides an in-process store satisfying both repository
// contracts. It backs tests and local development; atomicity comes from
// per-account mutexes acquired in ascending id order, mirroring the
// deterministic lock ordering the postgres store gets from FOR UPDATE.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/api-sage/wallet-ledger-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-ledger-engine/internal/domain"
)

type Store struct {
	stateMu  sync.RWMutex
	accounts map[string]domain.Account
	entries  []domain.LedgerEntry

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *Store) accountLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	if _, ok := s.locks[id]; !ok {
		s.locks[id] = &sync.Mutex{}
	}
	return s.locks[id]
}

func (s *Store) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	now := time.Now()
	account.Version = 1
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[account.ID] = account
	return account, nil
}

func (s *Store) GetByID(_ context.Context, id string) (domain.Account, error) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

func (s *Store) TopBalances(_ context.Context, limit int) ([]domain.Account, error) {
	s.stateMu.RLock()
	accounts := make([]domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	s.stateMu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool {
		cmp := accounts[i].Balance.Cmp(accounts[j].Balance)
		if cmp != 0 {
			return cmp > 0
		}
		return accounts[i].ID < accounts[j].ID
	})

	if limit > 0 && limit < len(accounts) {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

func (s *Store) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, referenceID string, description *string) (domain.Account, domain.LedgerEntry, error) {
	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	account, err := s.GetByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, domain.LedgerEntry{}, err
	}

	before := account.Balance
	account.Balance = before.Add(amount)
	entry := s.completedEntry(accountID, nil, domain.EntryKindDeposit, amount, before, account.Balance, referenceID, description)
	s.commit(account, entry)
	return s.snapshot(accountID), entry, nil
}

func (s *Store) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, referenceID string, description *string) (domain.Account, domain.LedgerEntry, error) {
	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	account, err := s.GetByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, domain.LedgerEntry{}, err
	}
	if account.Balance.LessThan(amount) {
		return domain.Account{}, domain.LedgerEntry{}, domain.ErrInsufficientFunds
	}

	before := account.Balance
	account.Balance = before.Sub(amount)
	entry := s.completedEntry(accountID, nil, domain.EntryKindWithdraw, amount, before, account.Balance, referenceID, description)
	s.commit(account, entry)
	return s.snapshot(accountID), entry, nil
}

func (s *Store) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, referenceID string, description *string) (domain.TransferResult, error) {
	if fromID == toID {
		return domain.TransferResult{}, domain.ErrSameAccountTransfer
	}

	lockOrder := []string{fromID, toID}
	sort.Strings(lockOrder)
	for _, id := range lockOrder {
		lock := s.accountLock(id)
		lock.Lock()
		defer lock.Unlock()
	}

	from, err := s.GetByID(ctx, fromID)
	if err != nil {
		return domain.TransferResult{}, err
	}
	to, err := s.GetByID(ctx, toID)
	if err != nil {
		return domain.TransferResult{}, err
	}
	if from.Balance.LessThan(amount) {
		return domain.TransferResult{}, domain.ErrInsufficientFunds
	}

	fromBefore := from.Balance
	toBefore := to.Balance
	from.Balance = fromBefore.Sub(amount)
	to.Balance = toBefore.Add(amount)

	outEntry := s.completedEntry(fromID, &toID, domain.EntryKindTransferOut, amount, fromBefore, from.Balance, referenceID, description)
	inEntry := s.completedEntry(toID, &fromID, domain.EntryKindTransferIn, amount, toBefore, to.Balance, referenceID, description)

	// Both sides land under one lock so no reader sees the debit without the
	// credit.
	s.stateMu.Lock()
	now := time.Now()
	from.Version++
	from.UpdatedAt = now
	to.Version++
	to.UpdatedAt = now
	s.accounts[fromID] = from
	s.accounts[toID] = to
	s.entries = append(s.entries, outEntry, inEntry)
	s.stateMu.Unlock()

	return domain.TransferResult{
		ReferenceID: referenceID,
		FromAccount: s.snapshot(fromID),
		ToAccount:   s.snapshot(toID),
		Entries:     []domain.LedgerEntry{outEntry, inEntry},
	}, nil
}

func (s *Store) ListEntries(_ context.Context, filter repo_interfaces.EntryFilter, page, limit int) ([]domain.LedgerEntry, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	s.stateMu.RLock()
	matched := make([]domain.LedgerEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		if filter.AccountID != "" && entry.AccountID != filter.AccountID {
			continue
		}
		if filter.Kind != "" && entry.Kind != filter.Kind {
			continue
		}
		matched = append(matched, entry)
	}
	s.stateMu.RUnlock()

	// Newest first, matching the postgres ordering.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *Store) Recent(_ context.Context, window int) ([]domain.LedgerEntry, error) {
	if window < 1 {
		window = 100
	}

	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	completed := make([]domain.LedgerEntry, 0, window)
	for i := len(s.entries) - 1; i >= 0 && len(completed) < window; i-- {
		if s.entries[i].Status == domain.EntryStatusCompleted {
			completed = append(completed, s.entries[i])
		}
	}
	return completed, nil
}

func (s *Store) completedEntry(accountID string, counterpartyID *string, kind domain.EntryKind, amount, before, after decimal.Decimal, referenceID string, description *string) domain.LedgerEntry {
	return domain.LedgerEntry{
		TxID:           uuid.NewString(),
		AccountID:      accountID,
		CounterpartyID: counterpartyID,
		Kind:           kind,
		Amount:         amount,
		BalanceBefore:  before,
		BalanceAfter:   after,
		Status:         domain.EntryStatusCompleted,
		ReferenceID:    referenceID,
		Description:    description,
		CreatedAt:      time.Now(),
	}
}

func (s *Store) commit(account domain.Account, entry domain.LedgerEntry) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	account.Version++
	account.UpdatedAt = time.Now()
	s.accounts[account.ID] = account
	s.entries = append(s.entries, entry)
}

func (s *Store) snapshot(id string) domain.Account {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.accounts[id]
}
