// fourier.go -- This file is part of goueg.
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

const fourierMaxPeriods = 2000

// FourierSine evaluates the half-infinite oscillatory integral
//
//	int_0^inf f(q) sin(q r) dq
//
// by summing adaptive integrals over half periods [k pi/r, (k+1) pi/r]
// until two consecutive contributions fall below the requested relative
// error. f must decay at infinity.
func FourierSine(f func(float64) float64, r, relErr float64) (QuadResult, error) {
	var res QuadResult
	if r <= 0 {
		return res, uegerr.Inputf("r", "Fourier sine transform requires r > 0, got %g", r)
	}
	if relErr <= 0 {
		relErr = 1e-10
	}
	h := math.Pi / r
	g := func(q float64) float64 { return f(q) * math.Sin(q*r) }
	sum := 0.0
	errEst := 0.0
	small := 0
	for k := 0; k < fourierMaxPeriods; k++ {
		part, err := Adaptive(g, float64(k)*h, float64(k+1)*h, relErr)
		if err != nil {
			return res, err
		}
		sum += part.Value
		errEst += part.ErrEst
		res.Panels += part.Panels
		if math.Abs(part.Value) <= relErr*math.Abs(sum)+1e-300 {
			small++
			if small >= 2 {
				res.Value = sum
				res.ErrEst = errEst
				return res, nil
			}
		} else {
			small = 0
		}
	}
	return res, uegerr.ErrQuadratureDiverged
}
