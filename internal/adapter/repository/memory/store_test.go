package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/api-sage/wallet-ledger-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-ledger-engine/internal/domain"
)

func seedAccount(t *testing.T, store *Store, id string, balance int64) {
	t.Helper()
	_, err := store.Create(context.Background(), domain.Account{
		ID:       id,
		Owner:    id,
		Currency: "USD",
		Balance:  decimal.NewFromInt(balance),
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", id, err)
	}
}

func TestConcurrentDepositsAccumulate(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedAccount(t, store, "a", 0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref := fmt.Sprintf("ref-%d", i)
			if _, _, err := store.Deposit(ctx, "a", decimal.NewFromInt(1), ref, nil); err != nil {
				t.Errorf("deposit %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	account, err := store.GetByID(ctx, "a")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance 100, got %s", account.Balance)
	}
}

func TestTransferWritesPairedEntries(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedAccount(t, store, "a", 100)
	seedAccount(t, store, "b", 0)

	result, err := store.Transfer(ctx, "a", "b", decimal.NewFromInt(40), "ref-1", nil)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}

	out, in := result.Entries[0], result.Entries[1]
	if out.Kind != domain.EntryKindTransferOut || in.Kind != domain.EntryKindTransferIn {
		t.Fatalf("unexpected entry kinds: %s, %s", out.Kind, in.Kind)
	}
	if out.ReferenceID != in.ReferenceID {
		t.Fatal("paired entries must share a referenceId")
	}
	if out.CounterpartyID == nil || *out.CounterpartyID != "b" {
		t.Fatalf("unexpected out counterparty: %v", out.CounterpartyID)
	}
	if !out.BalanceBefore.Equal(decimal.NewFromInt(100)) || !out.BalanceAfter.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected out balances: %s -> %s", out.BalanceBefore, out.BalanceAfter)
	}
}

func TestTransferInsufficientFundsTouchesNothing(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedAccount(t, store, "a", 10)
	seedAccount(t, store, "b", 0)

	_, err := store.Transfer(ctx, "a", "b", decimal.NewFromInt(40), "ref-1", nil)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	a, _ := store.GetByID(ctx, "a")
	b, _ := store.GetByID(ctx, "b")
	if !a.Balance.Equal(decimal.NewFromInt(10)) || !b.Balance.IsZero() {
		t.Fatalf("failed transfer must not move funds: %s, %s", a.Balance, b.Balance)
	}
	if entries, _ := store.Recent(ctx, 10); len(entries) != 0 {
		t.Fatalf("failed transfer must not write entries, got %d", len(entries))
	}
}

func TestReadersNeverSeeHalfOfATransfer(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedAccount(t, store, "a", 1000)
	seedAccount(t, store, "b", 1000)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			from, to := "a", "b"
			if i%2 == 1 {
				from, to = "b", "a"
			}
			store.Transfer(ctx, from, to, decimal.NewFromInt(7), fmt.Sprintf("ref-%d", i), nil)
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
		}
		accounts, err := store.TopBalances(ctx, 0)
		if err != nil {
			t.Fatalf("top balances: %v", err)
		}
		total := decimal.Zero
		for _, account := range accounts {
			total = total.Add(account.Balance)
		}
		if !total.Equal(decimal.NewFromInt(2000)) {
			t.Fatalf("reader observed a half-committed transfer, total %s", total)
		}
	}
}

func TestListEntriesFiltersAndPaginates(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedAccount(t, store, "a", 0)
	seedAccount(t, store, "b", 0)

	for i := 0; i < 5; i++ {
		store.Deposit(ctx, "a", decimal.NewFromInt(1), fmt.Sprintf("ref-a-%d", i), nil)
	}
	store.Deposit(ctx, "b", decimal.NewFromInt(1), "ref-b", nil)

	entries, total, err := store.ListEntries(ctx, repo_interfaces.EntryFilter{AccountID: "a"}, 1, 3)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if total != 5 || len(entries) != 3 {
		t.Fatalf("expected total 5 page of 3, got total %d len %d", total, len(entries))
	}

	entries, total, err = store.ListEntries(ctx, repo_interfaces.EntryFilter{AccountID: "a"}, 2, 3)
	if err != nil {
		t.Fatalf("list entries page 2: %v", err)
	}
	if total != 5 || len(entries) != 2 {
		t.Fatalf("expected remainder of 2, got total %d len %d", total, len(entries))
	}

	entries, total, err = store.ListEntries(ctx, repo_interfaces.EntryFilter{AccountID: "a", Kind: domain.EntryKindWithdraw}, 1, 10)
	if err != nil {
		t.Fatalf("list entries by kind: %v", err)
	}
	if total != 0 || len(entries) != 0 {
		t.Fatalf("expected no withdrawals, got total %d len %d", total, len(entries))
	}
}

func TestRecentReturnsNewestFirstWithinWindow(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedAccount(t, store, "a", 0)

	for i := 0; i < 5; i++ {
		store.Deposit(ctx, "a", decimal.NewFromInt(int64(i+1)), fmt.Sprintf("ref-%d", i), nil)
	}

	entries, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected window of 3, got %d", len(entries))
	}
	if !entries[0].Amount.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected newest entry first, got amount %s", entries[0].Amount)
	}
}
