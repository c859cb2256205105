// idr.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

package ueg

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// PhiXL is the normalized ideal Lindhard density integrand for
// Matsubara index l >= 1 at wave-vector x.
func PhiXL(y, x float64, l int, theta, mu float64) float64 {
	if x <= 0 {
		return 0
	}
	y2 := y * y
	x2 := x * x
	txy := 2 * x * y
	tplT := 2 * math.Pi * float64(l) * theta
	tplT2 := tplT * tplT
	return 1.0 / (2 * x) * y / (math.Exp(y2/theta-mu) + 1.0) *
		math.Log(((x2+txy)*(x2+txy)+tplT2)/((x2-txy)*(x2-txy)+tplT2))
}

// PhiX0 is the l = 0 integrand, with its x = 2y and x = 0 limits.
func PhiX0(y, x float64, theta, mu float64) float64 {
	y2 := y * y
	x2 := x * x
	xy := x * y
	if x > 0 {
		den := math.Exp(y2/theta-mu) + math.Exp(-y2/theta+mu) + 2.0
		switch {
		case x < 2*y:
			return 1.0 / (theta * x) * ((y2-x2/4.0)*math.Log((2*y+x)/(2*y-x)) + xy) * y / den
		case x > 2*y:
			return 1.0 / (theta * x) * ((y2-x2/4.0)*math.Log((2*y+x)/(x-2*y)) + xy) * y / den
		default:
			return 1.0 / theta * y2 / den
		}
	}
	return 2.0 / theta * y2 / (math.Exp(y2/theta-mu) + math.Exp(-y2/theta+mu) + 2.0)
}

// ComputeIdr tabulates phi(x, l) for l = 0..nl-1 on the grid with the
// shared midpoint rule. Rows are wave-vectors, columns Matsubara
// indices; the matrix is immutable once built for a given state point.
// The Matsubara columns are independent, so they are distributed over
// goroutines with disjoint writes.
func ComputeIdr(g Grid, nl int, sp StatePoint) *mat.Dense {
	nx := g.N()
	phi := mat.NewDense(nx, nl, nil)
	var wg sync.WaitGroup
	for l := 0; l < nl; l++ {
		wg.Add(1)
		go func(l int) {
			defer wg.Done()
			for i := 0; i < nx; i++ {
				x := g.X[i]
				var v float64
				if l == 0 {
					v = midpointSum(g, func(j int) float64 {
						return PhiX0(g.X[j], x, sp.Theta, sp.Mu)
					})
				} else {
					v = midpointSum(g, func(j int) float64 {
						return PhiXL(g.X[j], x, l, sp.Theta, sp.Mu)
					})
				}
				phi.Set(i, l, v)
			}
		}(l)
	}
	wg.Wait()
	return phi
}
