// interp.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

// Package numerics provides the numerical kernel shared by the solvers:
// cubic-spline interpolation, doubly-adaptive quadrature, oscillatory
// quadrature for sine transforms, bracketed root solvers and a dense
// rank-3 container with the row-major layout used by the persistence
// formats.
package numerics

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Interp1D is a natural cubic spline evaluator. Evaluation outside the
// fitted abscissa range clamps to the nearest endpoint.
type Interp1D struct {
	spline interp.NaturalCubic
	xMin   float64
	xMax   float64
}

// NewInterp1D fits a natural cubic spline through (xs, ys). The xs must
// be strictly increasing and len(xs) == len(ys) >= 2.
func NewInterp1D(xs, ys []float64) (*Interp1D, error) {
	it := &Interp1D{}
	if err := it.Reset(xs, ys); err != nil {
		return nil, err
	}
	return it, nil
}

// Reset refits the spline in place, reusing the evaluator.
func (it *Interp1D) Reset(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("interp1D: length mismatch %d != %d", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return fmt.Errorf("interp1D: need at least 2 points, got %d", len(xs))
	}
	if err := it.spline.Fit(xs, ys); err != nil {
		return fmt.Errorf("interp1D: %w", err)
	}
	it.xMin = xs[0]
	it.xMax = xs[len(xs)-1]
	return nil
}

// Eval evaluates the spline at x, clamped to the fitted range.
func (it *Interp1D) Eval(x float64) float64 {
	if x < it.xMin {
		x = it.xMin
	} else if x > it.xMax {
		x = it.xMax
	}
	return it.spline.Predict(x)
}

// Interp2D is a product natural cubic spline over a rectangular grid.
// The zs are row-major: zs[i*len(ys)+j] = f(xs[i], ys[j]).
type Interp2D struct {
	xs   []float64
	rows []*Interp1D
	col  []float64
}

// NewInterp2D fits row splines along ys for every xs entry.
func NewInterp2D(xs, ys, zs []float64) (*Interp2D, error) {
	nx, ny := len(xs), len(ys)
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("interp2D: grid too small (%d x %d)", nx, ny)
	}
	if len(zs) != nx*ny {
		return nil, fmt.Errorf("interp2D: want %d values, got %d", nx*ny, len(zs))
	}
	it := &Interp2D{
		xs:   append([]float64(nil), xs...),
		rows: make([]*Interp1D, nx),
		col:  make([]float64, nx),
	}
	for i := 0; i < nx; i++ {
		row, err := NewInterp1D(ys, zs[i*ny:(i+1)*ny])
		if err != nil {
			return nil, err
		}
		it.rows[i] = row
	}
	return it, nil
}

// Eval evaluates the surface at (x, y), clamped to the grid in both
// directions.
func (it *Interp2D) Eval(x, y float64) (float64, error) {
	for i, row := range it.rows {
		it.col[i] = row.Eval(y)
	}
	var colSp Interp1D
	if err := colSp.Reset(it.xs, it.col); err != nil {
		return 0, err
	}
	return colSp.Eval(x), nil
}
