// Package graph builds a weighted directed payment graph from recent ledger
// entries and answers single-source shortest-path queries over it.
package graph

import (
	"container/heap"

	"github.com/shopspring/decimal"

	"github.com/api-sage/wallet-ledger-engine/internal/domain"
)

type Graph struct {
	adjacency map[string]map[string]decimal.Decimal
}

func New() *Graph {
	return &Graph{adjacency: make(map[string]map[string]decimal.Decimal)}
}

func (g *Graph) AddNode(id string) {
	if _, ok := g.adjacency[id]; !ok {
		g.adjacency[id] = make(map[string]decimal.Decimal)
	}
}

// AddEdge sets the weight of from→to. Repeated edges overwrite, last write
// wins.
func (g *Graph) AddEdge(from, to string, weight decimal.Decimal) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from][to] = weight
}

func (g *Graph) NodeCount() int { return len(g.adjacency) }

func (g *Graph) EdgeCount() int {
	count := 0
	for _, neighbors := range g.adjacency {
		count += len(neighbors)
	}
	return count
}

// Build derives a graph from ledger entries ordered oldest to newest, so a
// later transfer between the same pair overwrites the edge weight. Only the
// transfer_out side contributes an edge; the paired transfer_in would add the
// same information reversed.
func Build(entries []domain.LedgerEntry) *Graph {
	g := New()
	for _, entry := range entries {
		if entry.Kind != domain.EntryKindTransferOut || entry.CounterpartyID == nil {
			continue
		}
		g.AddEdge(entry.AccountID, *entry.CounterpartyID, entry.Amount)
	}
	return g
}

type Path struct {
	Distance decimal.Decimal
	Nodes    []string
}

type queueItem struct {
	id       string
	distance decimal.Decimal
	index    int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].distance.Cmp(pq[j].distance) < 0
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	last := len(old) - 1
	item := old[last]
	old[last] = nil
	*pq = old[:last]
	return item
}

// ShortestPath runs Dijkstra from start with a binary-heap priority queue,
// O((V+E) log V). The second return is false when dest is unreachable or
// either node is absent from the graph.
func (g *Graph) ShortestPath(start, dest string) (Path, bool) {
	if _, ok := g.adjacency[start]; !ok {
		return Path{}, false
	}
	if _, ok := g.adjacency[dest]; !ok {
		return Path{}, false
	}

	distances := map[string]decimal.Decimal{start: decimal.Zero}
	previous := make(map[string]string)

	pq := priorityQueue{}
	heap.Init(&pq)
	heap.Push(&pq, &queueItem{id: start, distance: decimal.Zero})

	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*queueItem)

		// Stale queue entry, a shorter route was already settled.
		if best, ok := distances[current.id]; ok && current.distance.Cmp(best) > 0 {
			continue
		}
		if current.id == dest {
			break
		}

		for neighbor, weight := range g.adjacency[current.id] {
			candidate := current.distance.Add(weight)
			if best, ok := distances[neighbor]; ok && candidate.Cmp(best) >= 0 {
				continue
			}
			distances[neighbor] = candidate
			previous[neighbor] = current.id
			heap.Push(&pq, &queueItem{id: neighbor, distance: candidate})
		}
	}

	distance, ok := distances[dest]
	if !ok {
		return Path{}, false
	}

	nodes := []string{dest}
	for node := dest; node != start; {
		node = previous[node]
		nodes = append(nodes, node)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	return Path{Distance: distance, Nodes: nodes}, true
}
