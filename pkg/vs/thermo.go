// thermo.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

package vs

import (
	"math"

	"goueg/pkg/clog"
	"goueg/pkg/input"
	"goueg/pkg/numerics"
	"goueg/pkg/store"
	"goueg/pkg/ueg"
	"goueg/pkg/uegerr"

	"gonum.org/v1/gonum/integrate"
)

// Thermo tabulates the free-energy integrand rsu(rs') = rs' u(rs')
// over the coupling grid, one row per degeneracy stencil value.
type Thermo struct {
	RsGrid []float64
	Rsu    [3][]float64
	kt     int // index of the target coupling

	// Stencil solutions at the target node, kept for the sum-rule data
	// and for output.
	CProp *StructProp
	QProp *QStructProp
}

// buildRsGrid spans 0 .. rs+drs in steps of drs. The target coupling
// snaps to the nearest node.
func buildRsGrid(rs, drs float64) ([]float64, int) {
	n := int(math.Floor(rs/drs+0.5)) + 2
	if n < 4 {
		n = 4
	}
	grid := make([]float64, n)
	for k := range grid {
		grid[k] = float64(k) * drs
	}
	kt := int(math.Floor(rs/drs + 0.5))
	if kt < 1 {
		kt = 1
	}
	if kt > n-2 {
		kt = n - 2
	}
	return grid, kt
}

// ComputeTable solves the structural stencil at every coupling grid
// node with the current alpha and records the free-energy integrand
// for the three degeneracy values. Quantum toggles the auxiliary
// response solver.
func ComputeTable(in *input.Input, log *clog.Logger, alpha float64, quantum bool) (*Thermo, error) {
	grid, kt := buildRsGrid(in.Rs, in.VsDrs)
	th := &Thermo{RsGrid: grid, kt: kt}
	for t := 0; t < 3; t++ {
		th.Rsu[t] = make([]float64, len(grid))
	}
	for k, rsk := range grid {
		if quantum {
			p, err := NewQStructProp(in, log, rsk, in.Theta, alpha)
			if err != nil {
				return nil, err
			}
			if err := p.Iterate(); err != nil {
				return nil, err
			}
			for t := 0; t < 3; t++ {
				b := p.solvers[3*t+1].Base
				th.Rsu[t][k] = ueg.FreeEnergyIntegrand(b.Ssf, b.Grid)
			}
			if k == kt {
				th.QProp = p
			}
		} else {
			p, err := NewStructProp(in, log, rsk, in.Theta, alpha)
			if err != nil {
				return nil, err
			}
			if err := p.Iterate(); err != nil {
				return nil, err
			}
			for t := 0; t < 3; t++ {
				s := p.solvers[3*t+1]
				th.Rsu[t][k] = ueg.FreeEnergyIntegrand(s.Ssf, s.Grid)
			}
			if k == kt {
				th.CProp = p
			}
		}
		log.Info.Printf("thermodynamic table: rs = %.4f done (%d/%d)", rsk, k+1, len(grid))
	}
	return th, nil
}

// LoadTable reads an externally supplied table; it is trusted apart
// from requiring enough nodes around the target coupling.
func LoadTable(path string, rs float64) (*Thermo, error) {
	grid, rsu, err := store.ReadThermoTable(path)
	if err != nil {
		return nil, err
	}
	th := &Thermo{RsGrid: grid, Rsu: rsu}
	kt := 0
	best := math.Inf(1)
	for k, r := range grid {
		if d := math.Abs(r - rs); d < best {
			best = d
			kt = k
		}
	}
	if kt < 1 || kt > len(grid)-2 {
		return nil, uegerr.ErrCacheTruncated
	}
	th.kt = kt
	return th, nil
}

// Save writes the table in the text wire format.
func (th *Thermo) Save(path string) error {
	return store.WriteThermoTable(path, th.RsGrid, th.Rsu)
}

// fxc is the exchange-correlation free energy per particle at grid
// node k of degeneracy row t, by coupling-constant integration of the
// tabulated integrand.
func (th *Thermo) fxc(t, k int) float64 {
	rs := th.RsGrid[k]
	if rs == 0 {
		return 0
	}
	return integrate.Trapezoidal(th.RsGrid[:k+1], th.Rsu[t][:k+1]) / (rs * rs)
}

// Data carries the scaled free-energy and internal-energy derivatives
// entering the sum-rule residual. The rs derivatives are scaled by rs,
// the Theta derivatives by Theta, matching the variational formula.
type Data struct {
	Uint, Uintr, Uintt float64
	Fxcr, Fxcrr        float64
	Fxct, Fxctt, Fxcrt float64
	Q, Qr, Qt          float64 // quantum replacement of Uint
}

// Derivatives assembles the finite-difference data at the target
// state point.
func (th *Thermo) Derivatives(rs, theta, drs, dt float64) Data {
	kt := th.kt
	var d Data
	u := func(t, k int) float64 { return th.Rsu[t][k] / th.RsGrid[k] }
	d.Uint = u(1, kt)
	d.Uintr = rs * (u(1, kt+1) - u(1, kt-1)) / (2 * drs)
	fc := th.fxc(1, kt)
	fp := th.fxc(1, kt+1)
	fm := th.fxc(1, kt-1)
	d.Fxcr = rs * (fp - fm) / (2 * drs)
	d.Fxcrr = rs * rs * (fp - 2*fc + fm) / (drs * drs)
	if theta > 0 {
		d.Uintt = theta * (th.Rsu[2][kt] - th.Rsu[0][kt]) / (rs * 2 * dt)
		ftp := th.fxc(2, kt)
		ftm := th.fxc(0, kt)
		d.Fxct = theta * (ftp - ftm) / (2 * dt)
		d.Fxctt = theta * theta * (ftp - 2*fc + ftm) / (dt * dt)
		d.Fxcrt = rs * theta *
			(th.fxc(2, kt+1) - th.fxc(2, kt-1) - th.fxc(0, kt+1) + th.fxc(0, kt-1)) /
			(4 * drs * dt)
	}
	return d
}

// Alpha evaluates the sum-rule value of the free parameter from the
// assembled data. The quantum flag swaps the internal energy for the
// auxiliary-response adder.
func Alpha(d Data, theta float64, quantum bool) float64 {
	base := d.Uint
	baseR := d.Uintr
	baseT := d.Uintt
	if quantum {
		base, baseR, baseT = d.Q, d.Qr, d.Qt
	}
	numer := base - (1.0/6.0)*d.Fxcrr + (1.0/3.0)*d.Fxcr
	denom := base + (1.0/3.0)*baseR
	if theta > 0 {
		numer += -(2.0/3.0)*d.Fxctt - (2.0/3.0)*d.Fxcrt + (1.0/3.0)*d.Fxct
		denom += (2.0 / 3.0) * baseT
	}
	return numer / denom
}

// QAdder is the auxiliary-response counterpart of the internal energy
// in the quantum sum rule:
//
//	Q = 12/(pi lambda) * N / D
//	N = int dw w (S(w)-1) int dq q n(q) (q/w^3) (q/w log|(w+2q)/(w-2q)| - 1)
//	D = int dy 1/(exp(y^2/Theta - mu) + 1)
func QAdder(ssf []float64, g ueg.Grid, sp ueg.StatePoint, relErr float64) (float64, error) {
	den, err := numerics.Adaptive(func(y float64) float64 {
		return 1.0 / (math.Exp(y*y/sp.Theta-sp.Mu) + 1.0)
	}, g.X[0], g.Last(), relErr)
	if err != nil {
		return 0, err
	}
	ssfSp, err := numerics.NewInterp1D(g.X, ssf)
	if err != nil {
		return 0, err
	}
	num, err := numerics.Nested(
		func(w float64) float64 { return w * (ssfSp.Eval(w) - 1.0) },
		func(w, q float64) float64 {
			if q == 0 || w == 0 {
				return 0
			}
			w2 := w * w
			logarg := (w + 2*q) / (w - 2*q)
			if logarg < 0 {
				logarg = -logarg
			}
			return q / (math.Exp(q*q/sp.Theta-sp.Mu) + 1.0) * q / (w2 * w) *
				(q/w*math.Log(logarg) - 1.0)
		},
		g.X[0], g.Last(),
		func(float64) float64 { return g.X[0] },
		func(float64) float64 { return g.Last() },
		relErr)
	if err != nil {
		return 0, err
	}
	return 12.0 / (math.Pi * ueg.Lambda) * num.Value / den.Value, nil
}
