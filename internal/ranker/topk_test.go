package ranker

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func entryOf(id string, balance int64) Entry {
	return Entry{AccountID: id, Balance: decimal.NewFromInt(balance)}
}

func TestOfferKeepsLargestK(t *testing.T) {
	rank := New(3)
	for i := int64(1); i <= 10; i++ {
		rank.Offer(fmt.Sprintf("acct-%02d", i), decimal.NewFromInt(i*100))
	}

	top := rank.Top(3)
	want := []string{"acct-10", "acct-09", "acct-08"}
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	for i, id := range want {
		if top[i].AccountID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, top[i].AccountID)
		}
	}
}

func TestOfferUpdatesRankedAccountInPlace(t *testing.T) {
	rank := New(3)
	rank.Offer("a", decimal.NewFromInt(300))
	rank.Offer("b", decimal.NewFromInt(200))
	rank.Offer("c", decimal.NewFromInt(100))

	// A ranked account whose balance drops must be corrected, not ignored.
	rank.Offer("a", decimal.NewFromInt(50))

	top := rank.Top(3)
	if top[0].AccountID != "b" || top[2].AccountID != "a" {
		t.Fatalf("unexpected order after update: %+v", top)
	}
}

func TestSmallerCandidateDoesNotDisplace(t *testing.T) {
	rank := New(2)
	rank.Offer("a", decimal.NewFromInt(300))
	rank.Offer("b", decimal.NewFromInt(200))
	rank.Offer("c", decimal.NewFromInt(100))

	top := rank.Top(2)
	for _, entry := range top {
		if entry.AccountID == "c" {
			t.Fatal("candidate below the heap minimum should not enter the window")
		}
	}
}

func TestTieBreakByAccountIDAscending(t *testing.T) {
	rank := New(2)
	rank.Offer("b", decimal.NewFromInt(100))
	rank.Offer("a", decimal.NewFromInt(100))
	rank.Offer("c", decimal.NewFromInt(100))

	top := rank.Top(2)
	if top[0].AccountID != "a" || top[1].AccountID != "b" {
		t.Fatalf("expected [a b] on tie, got %+v", top)
	}
}

func TestResetReplacesWindow(t *testing.T) {
	rank := New(2)
	rank.Offer("old", decimal.NewFromInt(999))

	rank.Reset([]Entry{entryOf("x", 10), entryOf("y", 20), entryOf("z", 30)})

	top := rank.Top(2)
	if top[0].AccountID != "z" || top[1].AccountID != "y" {
		t.Fatalf("expected [z y] after reset, got %+v", top)
	}
	if rank.Age() < 0 {
		t.Fatal("expected a finite age after reset")
	}
}
