// ssf.go -- This file is part of goueg.
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

	"gonum.org/v1/gonum/mat"
)

// SsfHFIntegrand is the Hartree-Fock structure factor integrand, with
// the x = 0 limit form.
func SsfHFIntegrand(y, x float64, theta, mu float64) float64 {
	y2 := y * y
	if x > 0 {
		ypx := y + x
		ymx := y - x
		return -3.0 * theta / (4.0 * x) * y / (math.Exp(y2/theta-mu) + 1.0) *
			math.Log((1+math.Exp(mu-ymx*ymx/theta))/(1+math.Exp(mu-ypx*ypx/theta)))
	}
	return -3.0 / 2.0 * y2 / (1.0 + math.Cosh(y2/theta-mu))
}

// ComputeSsfHF tabulates S_HF on the grid.
func ComputeSsfHF(g Grid, sp StatePoint) []float64 {
	out := make([]float64, g.N())
	for i := range out {
		x := g.X[i]
		out[i] = 1.0 + midpointSum(g, func(j int) float64 {
			return SsfHFIntegrand(g.X[j], x, sp.Theta, sp.Mu)
		})
	}
	return out
}

// LocalField supplies the local-field correction entering the
// dielectric structure factor, per wave-vector index and Matsubara
// index. Classical closures are l-independent; the quantum auxiliary
// response is not.
type LocalField func(i, l int) float64

// StaticLocalField lifts a static G(x) array to a LocalField.
func StaticLocalField(gg []float64) LocalField {
	return func(i, l int) float64 { return gg[i] }
}

// ComputeSsf fills dst with the dielectric static structure factor
//
//	S(x) = S_HF(x) - (3/2) Theta f sum_l w_l (1-G_l) phi_l^2 /
//	       [pi lambda x^2 + f (1-G_l) phi_l]
//
// with lambda = (4/(9 pi))^(1/3), f = 4 lambda^2 rs, w_0 = 1 and
// w_l = 2 for l > 0. S(0) = 0; rs = 0 degenerates to S_HF.
func ComputeSsf(dst, ssfHF []float64, lf LocalField, phi *mat.Dense, g Grid, sp StatePoint) {
	nx := g.N()
	_, nl := phi.Dims()
	piLambda := math.Pi * Lambda
	ff := 4 * Lambda * Lambda * sp.Rs
	pre := 3.0 * sp.Theta * ff / 2.0
	for i := 0; i < nx; i++ {
		x := g.X[i]
		if x <= 0 {
			dst[i] = 0
			continue
		}
		if sp.Rs == 0 {
			dst[i] = ssfHF[i]
			continue
		}
		x2 := x * x
		bb := 0.0
		for l := 0; l < nl; l++ {
			phil := phi.At(i, l)
			oneMinusG := 1.0 - lf(i, l)
			t := oneMinusG * phil * phil / (piLambda*x2 + ff*oneMinusG*phil)
			if l > 0 {
				t *= 2.0
			}
			bb += t
		}
		dst[i] = ssfHF[i] - pre*bb
	}
}

// InternalEnergy is the exchange part of the internal energy per
// particle, int (S-1) dx / (pi lambda rs).
func InternalEnergy(ssf []float64, g Grid, rs float64) float64 {
	ie := midpointSum(g, func(j int) float64 { return ssf[j] - 1.0 })
	return ie / (math.Pi * rs * Lambda)
}

// FreeEnergyIntegrand is rs * u(rs), finite also at rs = 0.
func FreeEnergyIntegrand(ssf []float64, g Grid) float64 {
	ie := midpointSum(g, func(j int) float64 { return ssf[j] - 1.0 })
	return ie / (math.Pi * Lambda)
}
