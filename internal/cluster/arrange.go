package cluster

import (
	"math"
	"math/rand"
)

// Ratio is a preferred columns:rows aspect with a selection weight
type Ratio struct {
	Cols   float64
	Rows   float64
	Weight float64
}

// DefaultRatio is used when no aspect variety is wanted
var DefaultRatio = Ratio{Cols: 2, Rows: 1, Weight: 1}

// DefaultRatios is the weighted table used for varied layouts
var DefaultRatios = []Ratio{
	{Cols: 2, Rows: 1, Weight: 4},
	{Cols: 3, Rows: 2, Weight: 3},
	{Cols: 1, Rows: 1, Weight: 2},
	{Cols: 3, Rows: 1, Weight: 1},
	{Cols: 1, Rows: 2, Weight: 1},
}

// Cell is a grid coordinate, row 0 at the top
type Cell struct {
	Col int `json:"col" yaml:"col"`
	Row int `json:"row" yaml:"row"`
}

// Arrangement places n items on a cols x rows grid
type Arrangement struct {
	Cols  int    `json:"cols" yaml:"cols"`
	Rows  int    `json:"rows" yaml:"rows"`
	Cells []Cell `json:"cells" yaml:"cells"`
}

// Arrange lays out n items row-major for the given aspect ratio
func Arrange(n int, ratio Ratio) Arrangement {
	if n <= 0 {
		return Arrangement{}
	}
	if ratio.Cols <= 0 || ratio.Rows <= 0 {
		ratio = DefaultRatio
	}

	cols := int(math.Ceil(math.Sqrt(float64(n) * ratio.Cols / ratio.Rows)))
	if cols < 1 {
		cols = 1
	}
	if cols > n {
		cols = n
	}
	rows := (n + cols - 1) / cols

	cells := make([]Cell, n)
	for i := range cells {
		cells[i] = Cell{Col: i % cols, Row: i / cols}
	}

	return Arrangement{Cols: cols, Rows: rows, Cells: cells}
}

// PickRatio draws a ratio from table proportionally to its weight.
// An empty or weightless table yields DefaultRatio.
func PickRatio(rng *rand.Rand, table []Ratio) Ratio {
	total := 0.0
	for _, r := range table {
		if r.Weight > 0 {
			total += r.Weight
		}
	}
	if total <= 0 {
		return DefaultRatio
	}

	pick := rng.Float64() * total
	for _, r := range table {
		if r.Weight <= 0 {
			continue
		}
		if pick < r.Weight {
			return r
		}
		pick -= r.Weight
	}

	return table[len(table)-1]
}
