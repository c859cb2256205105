// ueg.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

// Package ueg holds the state point, the wave-vector grid and the
// closed-form building blocks of the dielectric schemes: the chemical
// potential, the ideal Lindhard density response on the Matsubara grid,
// the Hartree-Fock and dielectric static structure factors, the
// local-field closures and the bridge functions.
package ueg

import (
	"math"

	"goueg/pkg/uegerr"

	"golang.org/x/exp/slices"
)

// Lambda is (4/(9 pi))^(1/3).
var Lambda = math.Pow(4.0/(9.0*math.Pi), 1.0/3.0)

// StatePoint fixes one thermodynamic state. Mu is the unique root of
// the normalization condition once Theta is set.
type StatePoint struct {
	Rs    float64
	Theta float64
	Mu    float64
}

// Grid is the cell-centered wave-vector grid x[i] = (i+1/2) dx.
type Grid struct {
	Dx   float64
	Xmax float64
	X    []float64
}

// NewGrid builds the grid with N = floor(xmax/dx) points.
func NewGrid(dx, xmax float64) (Grid, error) {
	if dx <= 0 {
		return Grid{}, uegerr.Inputf("dx", "must be larger than zero, got %g", dx)
	}
	if xmax <= dx {
		return Grid{}, uegerr.Inputf("xmax", "must be larger than dx, got %g", xmax)
	}
	n := int(math.Floor(xmax / dx))
	g := Grid{Dx: dx, Xmax: xmax, X: make([]float64, n)}
	g.X[0] = dx / 2.0
	for i := 1; i < n; i++ {
		g.X[i] = g.X[i-1] + dx
	}
	return g, nil
}

// N is the number of grid points.
func (g Grid) N() int { return len(g.X) }

// Last is the largest grid node.
func (g Grid) Last() float64 { return g.X[len(g.X)-1] }

// Contains reports whether x falls inside the tabulated range.
func (g Grid) Contains(x float64) bool {
	return x >= g.X[0] && x <= g.Last()
}

// NearestIndex returns the index of the grid node closest to x.
func (g Grid) NearestIndex(x float64) int {
	i, _ := slices.BinarySearch(g.X, x)
	if i <= 0 {
		return 0
	}
	if i >= len(g.X) {
		return len(g.X) - 1
	}
	if x-g.X[i-1] <= g.X[i]-x {
		return i - 1
	}
	return i
}

// midpointSum applies the cell-centered midpoint rule shared by the
// outer iteration and the inner quadratures, so identical endpoints
// cancel the discretization bias: dx * sum over the first N-1 nodes.
func midpointSum(g Grid, f func(j int) float64) float64 {
	s := 0.0
	for j := 0; j < g.N()-1; j++ {
		s += f(j)
	}
	return s * g.Dx
}
