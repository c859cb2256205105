// roots.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

package numerics

import (
	"math"

	"goueg/pkg/uegerr"
)

// Bisect finds a root of f on [lo, hi] by interval bisection. The signs
// of f at the endpoints must differ. Convergence is on the interval
// width relative to the endpoint magnitudes, with relErr also acting as
// an absolute floor.
func Bisect(f func(float64) float64, lo, hi, relErr float64, maxIter int) (float64, error) {
	flo, fhi := f(lo), f(hi)
	if math.IsNaN(flo) || math.IsNaN(fhi) {
		return 0, uegerr.ErrNaNEncountered
	}
	if flo*fhi > 0 {
		return 0, uegerr.ErrRootNotBracketed
	}
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	mid := 0.5 * (lo + hi)
	for iter := 0; iter < maxIter; iter++ {
		mid = 0.5 * (lo + hi)
		fm := f(mid)
		if math.IsNaN(fm) {
			return 0, uegerr.ErrNaNEncountered
		}
		if fm == 0 {
			return mid, nil
		}
		if flo*fm < 0 {
			hi = mid
		} else {
			lo, flo = mid, fm
		}
		if math.Abs(hi-lo) <= relErr*math.Max(math.Abs(lo), math.Abs(hi))+relErr {
			return 0.5 * (lo + hi), nil
		}
	}
	return mid, uegerr.ErrNotConverged
}

// Brent finds a root of f on [lo, hi] with the Brent-Dekker scheme. The
// signs of f at the endpoints must differ.
func Brent(f func(float64) float64, lo, hi, relErr float64, maxIter int) (float64, error) {
	a, b := lo, hi
	fa, fb := f(a), f(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return 0, uegerr.ErrNaNEncountered
	}
	if fa*fb > 0 {
		return 0, uegerr.ErrRootNotBracketed
	}
	c, fc := a, fa
	d := b - a
	e := d
	for iter := 0; iter < maxIter; iter++ {
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol := 2*math.SmallestNonzeroFloat64*math.Abs(b) + 0.5*relErr*math.Abs(b)
		m := 0.5 * (c - b)
		if math.Abs(m) <= tol || fb == 0 {
			return b, nil
		}
		if math.Abs(e) < tol || math.Abs(fa) <= math.Abs(fb) {
			d, e = m, m
		} else {
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * m * s
				q = 1 - s
			} else {
				qq := fa / fc
				r := fb / fc
				p = s * (2*m*qq*(qq-r) - (b-a)*(r-1))
				q = (qq - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}
			if 2*p < math.Min(3*m*q-math.Abs(tol*q), math.Abs(e*q)) {
				e, d = d, p/q
			} else {
				d, e = m, m
			}
		}
		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else if m > 0 {
			b += tol
		} else {
			b -= tol
		}
		fb = f(b)
		if math.IsNaN(fb) {
			return 0, uegerr.ErrNaNEncountered
		}
		if (fb > 0) == (fc > 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
	}
	return b, uegerr.ErrNotConverged
}

// Secant finds a root of f starting from x0, x1 without requiring a
// bracket.
func Secant(f func(float64) float64, x0, x1, relErr float64, maxIter int) (float64, error) {
	f0, f1 := f(x0), f(x1)
	if math.IsNaN(f0) || math.IsNaN(f1) {
		return 0, uegerr.ErrNaNEncountered
	}
	for iter := 0; iter < maxIter; iter++ {
		if f1 == f0 {
			return x1, uegerr.ErrQuadratureDiverged
		}
		x2 := x1 - f1*(x1-x0)/(f1-f0)
		if math.IsNaN(x2) || math.IsInf(x2, 0) {
			return 0, uegerr.ErrNaNEncountered
		}
		if math.Abs(x2-x1) <= relErr*math.Max(1, math.Abs(x2)) {
			return x2, nil
		}
		x0, f0 = x1, f1
		x1 = x2
		f1 = f(x1)
		if math.IsNaN(f1) {
			return 0, uegerr.ErrNaNEncountered
		}
	}
	return x1, uegerr.ErrNotConverged
}
