// Package ranker maintains the K largest account balances with a bounded
// min-heap: the heap root is the smallest ranked balance, so a candidate
// either beats the root and replaces it or is ignored, keeping every update
// O(log K) without full sorts.
package ranker

import (
	"container/heap"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type Entry struct {
	AccountID string
	Balance   decimal.Decimal
}

type entryHeap struct {
	entries []Entry
	index   map[string]int
}

func (h *entryHeap) Len() int { return len(h.entries) }

func (h *entryHeap) Less(i, j int) bool {
	cmp := h.entries[i].Balance.Cmp(h.entries[j].Balance)
	if cmp != 0 {
		return cmp < 0
	}
	// Larger ids sit closer to the root so the ascending-id tie-break wins on
	// replacement.
	return h.entries[i].AccountID > h.entries[j].AccountID
}

func (h *entryHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.index[h.entries[i].AccountID] = i
	h.index[h.entries[j].AccountID] = j
}

func (h *entryHeap) Push(x any) {
	entry := x.(Entry)
	h.index[entry.AccountID] = len(h.entries)
	h.entries = append(h.entries, entry)
}

func (h *entryHeap) Pop() any {
	last := len(h.entries) - 1
	entry := h.entries[last]
	h.entries = h.entries[:last]
	delete(h.index, entry.AccountID)
	return entry
}

type TopK struct {
	mu        sync.Mutex
	k         int
	heap      entryHeap
	rebuiltAt time.Time
	now       func() time.Time
}

func New(k int) *TopK {
	if k <= 0 {
		k = 1
	}
	return &TopK{
		k:    k,
		heap: entryHeap{index: make(map[string]int)},
		now:  time.Now,
	}
}

// Offer re-evaluates one account against the current window. An account
// already ranked is updated in place, even when its balance dropped, so the
// window always reflects the latest committed balance it has seen.
func (t *TopK) Offer(accountID string, balance decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.heap.index[accountID]; ok {
		t.heap.entries[i].Balance = balance
		heap.Fix(&t.heap, i)
		return
	}

	candidate := Entry{AccountID: accountID, Balance: balance}
	if t.heap.Len() < t.k {
		heap.Push(&t.heap, candidate)
		return
	}

	min := t.heap.entries[0]
	cmp := balance.Cmp(min.Balance)
	if cmp < 0 || (cmp == 0 && accountID > min.AccountID) {
		return
	}
	heap.Pop(&t.heap)
	heap.Push(&t.heap, candidate)
}

// Reset replaces the window with authoritative entries, e.g. after a store
// rebuild.
func (t *TopK) Reset(entries []Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.heap = entryHeap{index: make(map[string]int)}
	for _, entry := range entries {
		if t.heap.Len() < t.k {
			heap.Push(&t.heap, entry)
			continue
		}
		min := t.heap.entries[0]
		cmp := entry.Balance.Cmp(min.Balance)
		if cmp > 0 || (cmp == 0 && entry.AccountID < min.AccountID) {
			heap.Pop(&t.heap)
			heap.Push(&t.heap, entry)
		}
	}
	t.rebuiltAt = t.now()
}

// Top returns up to n ranked entries, balance descending, account id
// ascending on ties.
func (t *TopK) Top(n int) []Entry {
	t.mu.Lock()
	entries := make([]Entry, len(t.heap.entries))
	copy(entries, t.heap.entries)
	t.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		cmp := entries[i].Balance.Cmp(entries[j].Balance)
		if cmp != 0 {
			return cmp > 0
		}
		return entries[i].AccountID < entries[j].AccountID
	})

	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

func (t *TopK) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.heap.Len()
}

// Age reports how long ago the window was last rebuilt from the store.
func (t *TopK) Age() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rebuiltAt.IsZero() {
		return time.Duration(1<<62 - 1)
	}
	return t.now().Sub(t.rebuiltAt)
}
