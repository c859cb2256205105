// dsf.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

package dynamic

import (
	"math"

	"goueg/pkg/ueg"
)

// Dsf evaluates the dynamic structure factor at the target wave-vector
// from the tabulated density responses:
//
//	S(x,w) = Im[eps-related combination] / [pi (1 - e^(-w/Theta)) |eps|^2]
//
// with eps = 1 + f [(1-b) phi - psi] and f = 4 lambda rs / (pi x^2).
// At w = 0 the analytic limit is used; at x = 0 the result is zero for
// every frequency. Classical schemes enter with psi = G phi and b = 0.
func Dsf(ws, phiRe, phiIm, psiRe, psiIm []float64, x, bf float64, sp ueg.StatePoint) []float64 {
	out := make([]float64, len(ws))
	if x == 0 {
		return out
	}
	ff1 := 4.0 * ueg.Lambda * sp.Rs / (math.Pi * x * x)
	for j, w := range ws {
		var numer, denom float64
		if w == 0 {
			ff2 := sp.Theta / (4.0 * x)
			numer = (1.0-ff1*psiRe[j])/(math.Exp(x*x/(4.0*sp.Theta)-sp.Mu)+1.0) -
				3.0/(4.0*x)*ff1*phiRe[j]*psiIm[j]
			numer *= ff2
			denomRe := 1.0 + ff1*((1.0-bf)*phiRe[j]-psiRe[j])
			denom = denomRe * denomRe
		} else {
			ff2 := 1.0 / (1.0 - math.Exp(-w/sp.Theta))
			numer = phiIm[j] + ff1*(phiRe[j]*psiIm[j]-phiIm[j]*psiRe[j])
			numer *= ff2 / math.Pi
			denomRe := 1.0 + ff1*((1.0-bf)*phiRe[j]-psiRe[j])
			denomIm := ff1 * ((1.0-bf)*phiIm[j] - psiIm[j])
			denom = denomRe*denomRe + denomIm*denomIm
		}
		out[j] = numer / denom
	}
	return out
}
