package hexmap

import (
	"container/heap"
	"math"
)

// FindPath runs A* from start to goal (hex ids or holding names) for the
// given movement kind, excluding the avoid list. It returns the path from
// start to goal inclusive and the parallel per-hex terrain costs.
//
// An unreachable goal is not an error: both slices are nil. Repeated
// calls with identical inputs return an identical path.
func (g *Grid) FindPath(kind MoveKind, start, goal string, avoid []string) ([]string, []float64, error) {
	startHex, err := g.Resolve(start)
	if err != nil {
		return nil, nil, err
	}
	goalHex, err := g.Resolve(goal)
	if err != nil {
		return nil, nil, err
	}

	avoidSet := g.AvoidSet(avoid)
	path := g.aStar(kind, startHex.ID, goalHex.ID, avoidSet)
	if path == nil {
		return nil, nil, nil
	}

	costs := make([]float64, len(path))
	for i, id := range path {
		costs[i] = Cost(kind, g.hexes[id])
	}
	return path, costs, nil
}

// aStar is classic A* over the grid with a Euclidean heuristic on
// (column index, row). Tie-breaking is by heap insertion order, which
// keeps the result stable for a fixed map and avoid set.
func (g *Grid) aStar(kind MoveKind, start, goal string, avoid map[string]bool) []string {
	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, &node{id: start, f: heuristic(start, goal)})

	cameFrom := make(map[string]string)
	gScore := map[string]float64{start: 0}

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if current.id == goal {
			return reconstruct(cameFrom, current.id)
		}

		for _, neighbor := range g.Neighbors(kind, current.id, avoid) {
			tentative := gScore[current.id] + Cost(kind, g.hexes[neighbor])
			if best, seen := gScore[neighbor]; !seen || tentative < best {
				cameFrom[neighbor] = current.id
				gScore[neighbor] = tentative
				heap.Push(open, &node{id: neighbor, f: tentative + heuristic(neighbor, goal)})
			}
		}
	}
	return nil
}

func reconstruct(cameFrom map[string]string, current string) []string {
	path := []string{current}
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		current = prev
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// heuristic is straight-line distance between two hexes. Not hex-grid
// exact, but admissible for grids of this size.
func heuristic(a, b string) float64 {
	ax, ay, err := ToCoordinates(a)
	if err != nil {
		return 0
	}
	bx, by, err := ToCoordinates(b)
	if err != nil {
		return 0
	}
	dx := float64(bx - ax)
	dy := float64(by - ay)
	return math.Sqrt(dx*dx + dy*dy)
}

// node is an open-set entry. seq orders equal f-scores by insertion.
type node struct {
	id  string
	f   float64
	seq int
}

type nodeHeap struct {
	nodes []*node
	next  int
}

func (h *nodeHeap) Len() int { return len(h.nodes) }

func (h *nodeHeap) Less(i, j int) bool {
	if h.nodes[i].f != h.nodes[j].f {
		return h.nodes[i].f < h.nodes[j].f
	}
	return h.nodes[i].seq < h.nodes[j].seq
}

func (h *nodeHeap) Swap(i, j int) { h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i] }

func (h *nodeHeap) Push(x any) {
	n := x.(*node)
	n.seq = h.next
	h.next++
	h.nodes = append(h.nodes, n)
}

func (h *nodeHeap) Pop() any {
	old := h.nodes
	n := old[len(old)-1]
	h.nodes = old[:len(old)-1]
	return n
}
