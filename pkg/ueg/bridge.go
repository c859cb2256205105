// bridge.go -- This file is part of goueg.
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

	"goueg/pkg/numerics"
	"goueg/pkg/scheme"
)

// CouplingGamma maps the quantum state point (rs, Theta) to the
// classical coupling parameter used by the bridge parametrizations.
func CouplingGamma(rs, theta float64, m scheme.Mapping) float64 {
	l2 := 2.0 * Lambda * Lambda * rs
	switch m {
	case scheme.MapSqrt:
		return l2 / math.Sqrt(theta*(1.0+theta))
	case scheme.MapLinear:
		return l2 / (1.0 + theta)
	default:
		return l2 / theta
	}
}

// bridgeCouplingFloor: below this coupling the tabulated bridge is
// indistinguishable from zero and the parametrization coefficients
// leave their fitted range.
const bridgeCouplingFloor = 1.0

// bridgeIOIReal is the analytic real-space parametrization of the
// one-component-plasma bridge function, b(s) with s = r/a.
func bridgeIOIReal(s, gamma float64) float64 {
	lg := math.Log(gamma)
	b0 := 0.258 - 0.0612*lg + 0.0123*lg*lg - 1.0/gamma
	b1 := 0.0269 + 0.0318*lg + 0.00814*lg*lg
	c1 := 0.498 - 0.280*lg + 0.0294*lg*lg
	c2 := -0.412 + 0.219*lg - 0.0251*lg*lg
	c3 := 0.0988 - 0.0534*lg + 0.00682*lg*lg
	s2 := s * s
	s4 := s2 * s2
	return gamma * (-b0 + c1*s4 + c2*s4*s2 + c3*s4*s4) * math.Exp(-b1/b0*s2)
}

// ComputeBridge tabulates the wave-vector-space bridge function on the
// grid. The real-space parametrization is carried to wave-vector space
// by the sine transform
//
//	b(x) = (3 lambda / x) int_0^inf ds s b(s) sin(s x / lambda).
//
// HNC uses the identically zero bridge. The LCT selector shares the
// IOI evaluator (see the design notes).
func ComputeBridge(dst []float64, g Grid, rs, theta float64,
	kind scheme.Bridge, m scheme.Mapping, relErr float64) error {

	for i := range dst {
		dst[i] = 0
	}
	if kind == scheme.BridgeNone || kind == scheme.BridgeHNC {
		return nil
	}
	gamma := CouplingGamma(rs, theta, m)
	if gamma < bridgeCouplingFloor {
		return nil
	}
	for i := range dst {
		x := g.X[i]
		res, err := numerics.FourierSine(func(s float64) float64 {
			return s * bridgeIOIReal(s, gamma)
		}, x/Lambda, relErr)
		if err != nil {
			return err
		}
		dst[i] = 3.0 * Lambda / x * res.Value
	}
	return nil
}

// BridgeAt evaluates the bridge function at a single wave-vector.
func BridgeAt(x, rs, theta float64, kind scheme.Bridge, m scheme.Mapping, relErr float64) (float64, error) {
	if kind == scheme.BridgeNone || kind == scheme.BridgeHNC {
		return 0, nil
	}
	gamma := CouplingGamma(rs, theta, m)
	if gamma < bridgeCouplingFloor {
		return 0, nil
	}
	res, err := numerics.FourierSine(func(s float64) float64 {
		return s * bridgeIOIReal(s, gamma)
	}, x/Lambda, relErr)
	if err != nil {
		return 0, err
	}
	return 3.0 * Lambda / x * res.Value, nil
}
