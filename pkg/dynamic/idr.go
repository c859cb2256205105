// idr.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

// Package dynamic computes the real-frequency structural properties:
// the ideal density response phi(x, w), the auxiliary density response
// of the quantum schemes and the dynamic structure factor S(x, w).
package dynamic

import (
	"math"

	"goueg/pkg/numerics"
	"goueg/pkg/ueg"
)

// idrReIntegrand is the real part integrand of the ideal density
// response at positive frequency, the analytic continuation of the
// Matsubara form.
func idrReIntegrand(y, x, w, theta, mu float64) float64 {
	if x <= 0 {
		return 0
	}
	y2 := y * y
	x2 := x * x
	txy := 2 * x * y
	f1 := (x2 + txy) * (x2 + txy)
	f2 := (x2 - txy) * (x2 - txy)
	num := math.Abs(f1 - w*w)
	den := math.Abs(f2 - w*w)
	if num == 0 || den == 0 {
		return 0
	}
	return 1.0 / (2 * x) * y / (math.Exp(y2/theta-mu) + 1.0) * math.Log(num/den)
}

// IdrRe evaluates the real part of phi(x, w) by adaptive quadrature;
// the zero-frequency form is the static integrand.
func IdrRe(x, w float64, sp ueg.StatePoint, yMax, relErr float64) (float64, error) {
	if x == 0 {
		return 0, nil
	}
	var f func(float64) float64
	if w == 0 {
		f = func(y float64) float64 { return ueg.PhiX0(y, x, sp.Theta, sp.Mu) }
	} else {
		f = func(y float64) float64 { return idrReIntegrand(y, x, w, sp.Theta, sp.Mu) }
	}
	res, err := numerics.Adaptive(f, 0, yMax, relErr)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// IdrIm is the closed-form imaginary part of phi(x, w):
//
//	(pi Theta / 4x) log[(1 + e^(mu - ym^2/Theta)) / (1 + e^(mu - yp^2/Theta))]
//
// with ym = w/(2x) - x/2 and yp = w/(2x) + x/2. It vanishes at w = 0
// and at x = 0.
func IdrIm(x, w float64, sp ueg.StatePoint) float64 {
	if x == 0 || w == 0 {
		return 0
	}
	ym := w/(2*x) - x/2
	yp := w/(2*x) + x/2
	num := 1 + math.Exp(sp.Mu-ym*ym/sp.Theta)
	den := 1 + math.Exp(sp.Mu-yp*yp/sp.Theta)
	return math.Pi * sp.Theta / (4 * x) * math.Log(num/den)
}

// IdrColumn tabulates phi(x, w_j) over the frequency grid.
func IdrColumn(ws []float64, x float64, sp ueg.StatePoint, yMax, relErr float64) (re, im []float64, err error) {
	re = make([]float64, len(ws))
	im = make([]float64, len(ws))
	for j, w := range ws {
		re[j], err = IdrRe(x, w, sp, yMax, relErr)
		if err != nil {
			return nil, nil, err
		}
		im[j] = IdrIm(x, w, sp)
	}
	return re, im, nil
}

// FrequencyGrid builds w_j = j dW for j = 0..nW-1, nW = floor(Wmax/dW).
func FrequencyGrid(dW, wMax float64) []float64 {
	n := int(math.Floor(wMax / dW))
	ws := make([]float64, n)
	for j := range ws {
		ws[j] = float64(j) * dW
	}
	return ws
}
