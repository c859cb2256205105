// slfc.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

package ueg

import "math"

// slfcKernelFactor is the angular kernel of the static local-field
// closure multiplied by an arbitrary state factor: for x != y
//
//	-(3/4) y^2 F (1 + (x^2-y^2)/(2xy) log|(x+y)/(x-y)|)
//
// and the analytic x = y limit y^2 F.
func slfcKernelFactor(y, x, factor float64) float64 {
	if x <= 0 || y <= 0 {
		return 0
	}
	y2 := y * y
	x2 := x * x
	switch {
	case x > y:
		return -3.0 / 4.0 * y2 * factor *
			(1 + (x2-y2)/(2*x*y)*math.Log((x+y)/(x-y)))
	case x < y:
		return -3.0 / 4.0 * y2 * factor *
			(1 + (x2-y2)/(2*x*y)*math.Log((x+y)/(y-x)))
	default:
		return y2 * factor
	}
}

// SlfcKernel is the closure integrand with the state factor S(y)-1.
func SlfcKernel(y, x, ssf float64) float64 {
	return slfcKernelFactor(y, x, ssf-1.0)
}

// ComputeSlfc fills dst with the static local-field correction
// G(x) = int slfc(y, x, S(y)) dy over the shared midpoint rule.
func ComputeSlfc(dst, ssf []float64, g Grid) {
	for i := range dst {
		x := g.X[i]
		dst[i] = midpointSum(g, func(j int) float64 {
			return SlfcKernel(g.X[j], x, ssf[j])
		})
	}
}

// ComputeSlfcIet fills dst with the bridge-corrected closure. The state
// factor S(y)-1 is replaced by
//
//	S(y) (1 - b(y)) - 1 - G(y) (S(y) - 1)
//
// which reduces to the plain closure for b = 0, G = 0 and decays as
// -b(y) at large y. gPrev is the previous iterate of the local field.
func ComputeSlfcIet(dst, ssf, gPrev, bf []float64, g Grid) {
	for i := range dst {
		x := g.X[i]
		dst[i] = midpointSum(g, func(j int) float64 {
			f := ssf[j]*(1.0-bf[j]) - 1.0 - gPrev[j]*(ssf[j]-1.0)
			return slfcKernelFactor(g.X[j], x, f)
		})
	}
}

// esaActivationSharpness and esaActivationCenter shape the crossover of
// the effective static closure between its exact limits.
const (
	esaActivationSharpness = 2.0
	esaActivationCenter    = 2.0
)

// OnTopPairCorrelation evaluates g(r=0) from a structure factor via
// g(0) = 1 + (3/2) int x^2 (S(x)-1) dx.
func OnTopPairCorrelation(ssf []float64, g Grid) float64 {
	return 1.0 + 1.5*midpointSum(g, func(j int) float64 {
		return g.X[j] * g.X[j] * (ssf[j] - 1.0)
	})
}

// ComputeEsa fills dst with the effective static closure: a smooth
// blend from the vanishing long-wavelength limit to the exact
// short-wavelength limit 1 - g(0), with g(0) taken at the Hartree-Fock
// level. It is evaluated in a single pass; no fixed point is run.
func ComputeEsa(dst, ssfHF []float64, g Grid) {
	g0 := OnTopPairCorrelation(ssfHF, g)
	for i := range dst {
		a := 0.5 * (1.0 + math.Tanh(esaActivationSharpness*(g.X[i]-esaActivationCenter)))
		dst[i] = a * (1.0 - g0)
	}
}
