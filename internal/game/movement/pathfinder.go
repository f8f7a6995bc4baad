package movement

import (
	"math"

	"github.com/zyedidia/generic/heap"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// diagonalTieBreak makes an orthogonal route win over a diagonal one of equal nominal cost.
const diagonalTieBreak = 0.001

// Costs supplies per-tile terrain data to the pathfinder.
type Costs interface {
	Walkable(x, z int) bool
	MovementModifier(x, z int) int
}

// Pathfinder finds lowest-cost routes over a graph and caches the last result.
// It is not safe for concurrent use.
type Pathfinder struct {
	graph *grid.Graph
	costs Costs
	path  []grid.Point
}

// NewPathfinder creates a Pathfinder over graph using costs for entry weights.
//
// Precondition: graph and costs must be non-nil; graph must already be connected.
func NewPathfinder(graph *grid.Graph, costs Costs) *Pathfinder {
	return &Pathfinder{graph: graph, costs: costs}
}

// FindPath computes and caches the path from source to target.
// See the package-level FindPath for semantics.
func (p *Pathfinder) FindPath(sourceX, sourceZ, targetX, targetZ int) []grid.Point {
	p.path = FindPath(p.graph, p.costs, sourceX, sourceZ, targetX, targetZ)
	return p.path
}

// FindPathBetween is FindPath for Points.
func (p *Pathfinder) FindPathBetween(from, to grid.Point) []grid.Point {
	return p.FindPath(from.X, from.Z, to.X, to.Z)
}

// GeneratedPath returns the cached path of the last FindPath call.
func (p *Pathfinder) GeneratedPath() []grid.Point {
	return p.path
}

// At returns the i-th cell of the cached path.
func (p *Pathfinder) At(i int) (grid.Point, bool) {
	if i < 0 || i >= len(p.path) {
		return grid.Point{}, false
	}
	return p.path[i], true
}

// Clear drops the cached path. Safe to call before any path was generated.
func (p *Pathfinder) Clear() {
	p.path = p.path[:0]
}

// Trim removes cells from the tail of the cached path until keep reports true
// for the last cell. The source cell is never removed.
//
// Postcondition: len(GeneratedPath()) >= 1 when it was >= 1 before.
func (p *Pathfinder) Trim(keep func(grid.Point) bool) []grid.Point {
	for len(p.path) > 1 && !keep(p.path[len(p.path)-1]) {
		p.path = p.path[:len(p.path)-1]
	}
	return p.path
}

type frontierEntry struct {
	cell *grid.Cell
	dist float64
	seq  int
}

// FindPath runs Dijkstra from (sourceX, sourceZ) to (targetX, targetZ).
//
// The weight of moving from U to neighbour V is (entryCost(V)+1) * |UV| where
// entryCost is +Inf for unwalkable V (the edge is never relaxed), otherwise
// |MovementModifier(V)| plus diagonalTieBreak for diagonal steps.
//
// Postcondition: returns the cells from source to target inclusive; a single
// element when source == target; empty when either end is off the board or the
// target is unreachable.
func FindPath(graph *grid.Graph, costs Costs, sourceX, sourceZ, targetX, targetZ int) []grid.Point {
	source := graph.At(sourceX, sourceZ)
	target := graph.At(targetX, targetZ)
	if source == nil || target == nil {
		return []grid.Point{}
	}
	if source == target {
		return []grid.Point{source.Point()}
	}

	dist := make(map[*grid.Cell]float64, graph.Width()*graph.Height())
	prev := make(map[*grid.Cell]*grid.Cell)
	visited := make(map[*grid.Cell]bool)
	graph.Each(func(c *grid.Cell) {
		dist[c] = math.Inf(1)
	})
	dist[source] = 0

	seq := 0
	frontier := heap.New(func(a, b frontierEntry) bool {
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		return a.seq < b.seq
	})
	frontier.Push(frontierEntry{cell: source, dist: 0, seq: seq})

	for frontier.Size() > 0 {
		entry, _ := frontier.Pop()
		u := entry.cell
		if visited[u] || entry.dist > dist[u] {
			continue
		}
		if u == target {
			break
		}
		visited[u] = true

		for _, v := range u.Neighbors {
			cost := entryCost(costs, u, v)
			if math.IsInf(cost, 1) {
				continue
			}
			alt := dist[u] + (cost+1)*u.DistanceTo(v)
			if alt < dist[v] {
				dist[v] = alt
				prev[v] = u
				seq++
				frontier.Push(frontierEntry{cell: v, dist: alt, seq: seq})
			}
		}
	}

	if _, ok := prev[target]; !ok {
		return []grid.Point{}
	}

	var reversed []grid.Point
	for cur := target; cur != nil; cur = prev[cur] {
		reversed = append(reversed, cur.Point())
	}
	path := make([]grid.Point, len(reversed))
	for i, pt := range reversed {
		path[len(reversed)-1-i] = pt
	}
	return path
}

func entryCost(costs Costs, from, to *grid.Cell) float64 {
	if !costs.Walkable(to.X, to.Z) {
		return math.Inf(1)
	}
	cost := math.Abs(float64(costs.MovementModifier(to.X, to.Z)))
	if from.IsDiagonalTo(to) {
		cost += diagonalTieBreak
	}
	return cost
}
