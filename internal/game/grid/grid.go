// Package grid builds the cell adjacency graph that movement and pathfinding walk over.
package grid

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidSize is returned by Build when either dimension is not positive.
var ErrInvalidSize = errors.New("grid: width and height must be > 0")

// Point is an integer grid coordinate. Z is the second map axis.
type Point struct {
	X int
	Z int
}

// String returns "(x,z)".
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Z)
}

// ManhattanTo returns |dx| + |dz| between p and q.
func (p Point) ManhattanTo(q Point) int {
	return abs(p.X-q.X) + abs(p.Z-q.Z)
}

// Cell is one node of the graph.
//
// Invariant: after exactly one Connect call, Neighbors is symmetric.
type Cell struct {
	X         int
	Z         int
	Neighbors []*Cell
}

// Point returns the cell's coordinate.
func (c *Cell) Point() Point { return Point{X: c.X, Z: c.Z} }

// DistanceTo returns the Euclidean distance between c and n, or 0 when n is nil.
func (c *Cell) DistanceTo(n *Cell) float64 {
	if n == nil {
		return 0
	}
	dx := float64(c.X - n.X)
	dz := float64(c.Z - n.Z)
	return math.Sqrt(dx*dx + dz*dz)
}

// IsDiagonalTo reports whether n differs from c on both axes.
func (c *Cell) IsDiagonalTo(n *Cell) bool {
	return c.X != n.X && c.Z != n.Z
}

// Connectivity selects how cells are linked.
type Connectivity int

const (
	FourWay Connectivity = iota
	EightWay
)

// String returns "four" or "eight".
func (c Connectivity) String() string {
	switch c {
	case FourWay:
		return "four"
	case EightWay:
		return "eight"
	default:
		return "unknown"
	}
}

// ParseConnectivity maps "four"/"eight" (case-insensitive) to a Connectivity.
func ParseConnectivity(s string) (Connectivity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "four", "4":
		return FourWay, nil
	case "eight", "8":
		return EightWay, nil
	default:
		return FourWay, fmt.Errorf("grid: unknown connectivity %q", s)
	}
}

// Graph owns every Cell of a width×height board.
type Graph struct {
	width  int
	height int
	cells  [][]*Cell
}

// Build allocates a width×height graph with coordinates set and no links.
//
// Precondition: width > 0 and height > 0.
// Postcondition: Returns a graph whose cells have empty neighbour lists, or ErrInvalidSize.
func Build(width, height int) (*Graph, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w (got %dx%d)", ErrInvalidSize, width, height)
	}
	cells := make([][]*Cell, width)
	for x := 0; x < width; x++ {
		cells[x] = make([]*Cell, height)
		for z := 0; z < height; z++ {
			cells[x][z] = &Cell{X: x, Z: z}
		}
	}
	return &Graph{width: width, height: height, cells: cells}, nil
}

// Width returns the number of columns.
func (g *Graph) Width() int { return g.width }

// Height returns the number of rows.
func (g *Graph) Height() int { return g.height }

// Contains reports whether p lies on the board.
func (g *Graph) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.width && p.Z >= 0 && p.Z < g.height
}

// At returns the cell at (x, z), or nil when out of bounds.
func (g *Graph) At(x, z int) *Cell {
	if !g.Contains(Point{X: x, Z: z}) {
		return nil
	}
	return g.cells[x][z]
}

// Each calls fn for every cell in column-major order.
func (g *Graph) Each(fn func(*Cell)) {
	for x := 0; x < g.width; x++ {
		for z := 0; z < g.height; z++ {
			fn(g.cells[x][z])
		}
	}
}

// Connect links cells with the given connectivity.
func (g *Graph) Connect(c Connectivity) {
	if c == EightWay {
		g.ConnectEightWay()
		return
	}
	g.ConnectFourWay()
}

// ConnectFourWay links every cell to its in-bounds N/E/S/W neighbours.
// Calling it more than once duplicates neighbour entries.
func (g *Graph) ConnectFourWay() {
	for x := 0; x < g.width; x++ {
		for z := 0; z < g.height; z++ {
			c := g.cells[x][z]
			if x > 0 {
				c.Neighbors = append(c.Neighbors, g.cells[x-1][z])
			}
			if x < g.width-1 {
				c.Neighbors = append(c.Neighbors, g.cells[x+1][z])
			}
			if z > 0 {
				c.Neighbors = append(c.Neighbors, g.cells[x][z-1])
			}
			if z < g.height-1 {
				c.Neighbors = append(c.Neighbors, g.cells[x][z+1])
			}
		}
	}
}

// ConnectEightWay links every cell to its in-bounds orthogonal and diagonal neighbours.
// Calling it more than once duplicates neighbour entries.
func (g *Graph) ConnectEightWay() {
	for x := 0; x < g.width; x++ {
		for z := 0; z < g.height; z++ {
			c := g.cells[x][z]
			if x > 0 {
				c.Neighbors = append(c.Neighbors, g.cells[x-1][z])
				if z > 0 {
					c.Neighbors = append(c.Neighbors, g.cells[x-1][z-1])
				}
				if z < g.height-1 {
					c.Neighbors = append(c.Neighbors, g.cells[x-1][z+1])
				}
			}
			if x < g.width-1 {
				c.Neighbors = append(c.Neighbors, g.cells[x+1][z])
				if z > 0 {
					c.Neighbors = append(c.Neighbors, g.cells[x+1][z-1])
				}
				if z < g.height-1 {
					c.Neighbors = append(c.Neighbors, g.cells[x+1][z+1])
				}
			}
			if z > 0 {
				c.Neighbors = append(c.Neighbors, g.cells[x][z-1])
			}
			if z < g.height-1 {
				c.Neighbors = append(c.Neighbors, g.cells[x][z+1])
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
