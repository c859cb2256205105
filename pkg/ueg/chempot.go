// chempot.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

package ueg

import (
	"errors"
	"fmt"
	"math"

	"goueg/pkg/numerics"
	"goueg/pkg/uegerr"
)

const (
	chempotRelErr  = 1e-10
	chempotMaxIter = 100
)

// fermiDiracHalf evaluates the complete Fermi-Dirac integral F_1/2(mu)
// after the substitution t = u^2, which removes the square-root
// endpoint and leaves a smooth decaying integrand.
func fermiDiracHalf(mu float64) (float64, error) {
	uMax := math.Sqrt(math.Max(0, mu) + 45.0)
	f := func(u float64) float64 {
		return u * u / (math.Exp(u*u-mu) + 1.0)
	}
	res, err := numerics.Adaptive(f, 0, uMax, 1e-12)
	if err != nil {
		return 0, err
	}
	return 2.0 * res.Value / math.Gamma(1.5), nil
}

// NormalizationResidual is Gamma(3/2) F_1/2(mu) - (2/3) Theta^(-3/2).
func NormalizationResidual(mu, theta float64) (float64, error) {
	fd, err := fermiDiracHalf(mu)
	if err != nil {
		return 0, err
	}
	return math.Gamma(1.5)*fd - 2.0/(3.0*math.Pow(theta, 1.5)), nil
}

// ChemicalPotential solves the normalization condition on [lo, hi] by
// bisection with relative tolerance 1e-10 and at most 100 iterations.
func ChemicalPotential(theta, lo, hi float64) (float64, error) {
	if theta <= 0 {
		return 0, uegerr.Inputf("theta", "the chemical potential requires theta > 0, got %g", theta)
	}
	var quadErr error
	f := func(mu float64) float64 {
		r, err := NormalizationResidual(mu, theta)
		if err != nil {
			quadErr = err
			return math.NaN()
		}
		return r
	}
	mu, err := numerics.Bisect(f, lo, hi, chempotRelErr, chempotMaxIter)
	if quadErr != nil {
		return 0, quadErr
	}
	if err != nil {
		if errors.Is(err, uegerr.ErrRootNotBracketed) {
			return 0, fmt.Errorf("chemical potential on [%g, %g]: %w", lo, hi, uegerr.ErrChempotBracketFailed)
		}
		return 0, err
	}
	return mu, nil
}
