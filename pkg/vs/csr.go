// csr.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

// Package vs solves the variational schemes: the compressibility sum
// rule couples a 3 x 3 stencil of state points in (rs, Theta) through
// derivative terms in the local field, and an outer loop adjusts the
// free parameter alpha until the sum rule holds.
package vs

import (
	"math"

	"goueg/pkg/clog"
	"goueg/pkg/input"
	"goueg/pkg/qstls"
	"goueg/pkg/scheme"
	"goueg/pkg/stls"
	"goueg/pkg/uegerr"

	"gonum.org/v1/gonum/mat"
)

// Stencil indices: idx = 3*t + r with t, r in {down, center, up}.
const (
	idxCenter  = 4
	idxRsDown  = 3
	idxRsUp    = 5
	idxThDown  = 1
	idxThUp    = 7
	stencilLen = 9
)

func stencilPoints(rs, theta, drs, dt float64) (rss, ths [stencilLen]float64) {
	rsv := [3]float64{math.Max(rs-drs, 0), rs, rs + drs}
	thv := [3]float64{theta - dt, theta, theta + dt}
	for t := 0; t < 3; t++ {
		for r := 0; r < 3; r++ {
			rss[3*t+r] = rsv[r]
			ths[3*t+r] = thv[t]
		}
	}
	return rss, ths
}

// One-sided and centered three-point stencils; the step sits in the
// caller's prefactor.
func derivForward(f0, f1, f2 float64) float64 { return (-3*f0 + 4*f1 - f2) / 2 }

func derivCentered(fp, fm float64) float64 { return (fp - fm) / 2 }

func derivBackward(f0, f1, f2 float64) float64 { return (3*f0 - 4*f1 + f2) / 2 }

// xDeriv evaluates the wave-vector derivative stencil of row at i.
func xDeriv(row []float64, i int) float64 {
	switch {
	case i == 0:
		return derivForward(row[0], row[1], row[2])
	case i == len(row)-1:
		return derivBackward(row[i], row[i-1], row[i-2])
	default:
		return derivCentered(row[i+1], row[i-1])
	}
}

// stateDeriv evaluates the stencil along rs or Theta for slot k in
// {0, 1, 2}, given the three values of that coordinate line.
func stateDeriv(k int, f [3]float64) float64 {
	switch k {
	case 0:
		return derivForward(f[0], f[1], f[2])
	case 2:
		return derivBackward(f[2], f[1], f[0])
	default:
		return derivCentered(f[2], f[0])
	}
}

// StructProp couples nine classical solvers through the variational
// local field
//
//	G = G_closure - (alpha/6) x dG/dx - (alpha rs/6) dG/drs
//	    - (alpha Theta/3) dG/dTheta.
type StructProp struct {
	In    *input.Input
	Log   *clog.Logger
	Alpha float64

	solvers [stencilLen]*stls.Solver
	lfc     [stencilLen][]float64

	Converged bool
	Residual  float64
}

// NewStructProp initializes the stencil around (rs, theta).
func NewStructProp(in *input.Input, log *clog.Logger, rs, theta, alpha float64) (*StructProp, error) {
	if theta > 0 && theta-in.VsDt <= 0 {
		return nil, uegerr.Inputf("vs-dt", "degeneracy stencil reaches below zero (theta=%g, dt=%g)", theta, in.VsDt)
	}
	p := &StructProp{In: in, Log: log, Alpha: alpha}
	rss, ths := stencilPoints(rs, theta, in.VsDrs, in.VsDt)
	for k := 0; k < stencilLen; k++ {
		s := stls.New(in, scheme.STLS, log)
		if err := s.InitStatePoint(rss[k], ths[k]); err != nil {
			return nil, err
		}
		p.solvers[k] = s
		p.lfc[k] = make([]float64, s.Grid.N())
	}
	return p, nil
}

// Center is the solver at the target state point.
func (p *StructProp) Center() *stls.Solver { return p.solvers[idxCenter] }

// lineRs gathers the rs-coordinate line through slot (t, r) at node i.
func (p *StructProp) lineRs(t, i int) [3]float64 {
	return [3]float64{p.lfc[3*t][i], p.lfc[3*t+1][i], p.lfc[3*t+2][i]}
}

func (p *StructProp) lineTh(r, i int) [3]float64 {
	return [3]float64{p.lfc[r][i], p.lfc[3+r][i], p.lfc[6+r][i]}
}

// Iterate runs the coupled damped fixed point. All nine points advance
// in lockstep; the residual is taken at the center.
func (p *StructProp) Iterate() error {
	for _, s := range p.solvers {
		s.InitialGuess()
	}
	in := p.In
	iterErr := 1.0
	iter := 0
	for iter < in.NIter && iterErr > in.ErrMin {
		for k, s := range p.solvers {
			s.StepSlfc()
			copy(p.lfc[k], s.SlfcNew)
		}
		p.applyCSR()
		for k, s := range p.solvers {
			res, err := s.MixAndResidual(in.AMix)
			if err != nil {
				return err
			}
			if k == idxCenter {
				iterErr = res
			}
			s.ComputeSsf()
		}
		iter++
	}
	p.Residual = iterErr
	p.Converged = iterErr <= in.ErrMin
	if !p.Converged {
		p.Log.Warning.Printf("structural stencil: residual %.5e after %d iterations", iterErr, iter)
	}
	return nil
}

func (p *StructProp) applyCSR() {
	in := p.In
	for t := 0; t < 3; t++ {
		for r := 0; r < 3; r++ {
			k := 3*t + r
			s := p.solvers[k]
			rsPt := s.SP.Rs
			thPt := s.SP.Theta
			aDx := p.Alpha / (6.0 * in.Dx)
			aDrs := p.Alpha * rsPt / (6.0 * in.VsDrs)
			aDt := p.Alpha * thPt / (3.0 * in.VsDt)
			row := p.lfc[k]
			for i := range row {
				v := row[i]
				v -= aDx * s.Grid.X[i] * xDeriv(row, i)
				if rsPt > 0 {
					v -= aDrs * stateDeriv(r, p.lineRs(t, i))
				}
				if thPt > 0 {
					v -= aDt * stateDeriv(t, p.lineTh(r, i))
				}
				s.SlfcNew[i] = v
			}
		}
	}
}

// QStructProp is the quantum counterpart: nine auxiliary-response
// solvers coupled through the same derivative terms applied per
// Matsubara channel, with the extra alpha/3 term of the quantum scheme
// and the degeneracy derivative disabled.
type QStructProp struct {
	In    *input.Input
	Log   *clog.Logger
	Alpha float64

	solvers [stencilLen]*qstls.Solver
	lfc     [stencilLen]*mat.Dense

	Converged bool
	Residual  float64
}

// NewQStructProp initializes the quantum stencil around (rs, theta).
func NewQStructProp(in *input.Input, log *clog.Logger, rs, theta, alpha float64) (*QStructProp, error) {
	if theta > 0 && theta-in.VsDt <= 0 {
		return nil, uegerr.Inputf("vs-dt", "degeneracy stencil reaches below zero (theta=%g, dt=%g)", theta, in.VsDt)
	}
	p := &QStructProp{In: in, Log: log, Alpha: alpha}
	rss, ths := stencilPoints(rs, theta, in.VsDrs, in.VsDt)
	for k := 0; k < stencilLen; k++ {
		s := qstls.New(in, scheme.QSTLS, log)
		if err := s.InitAt(rss[k], ths[k]); err != nil {
			return nil, err
		}
		p.solvers[k] = s
		p.lfc[k] = mat.NewDense(s.Base.Grid.N(), in.NL, nil)
	}
	return p, nil
}

// Center is the solver at the target state point.
func (p *QStructProp) Center() *qstls.Solver { return p.solvers[idxCenter] }

// Iterate runs the coupled damped fixed point on the auxiliary
// responses.
func (p *QStructProp) Iterate() error {
	in := p.In
	for _, s := range p.solvers {
		s.Psi.Zero()
		s.ComputeSsf()
	}
	iterErr := 1.0
	iter := 0
	for iter < in.NIter && iterErr > in.ErrMin {
		for k, s := range p.solvers {
			if err := s.StepAdr(); err != nil {
				return err
			}
			p.lfc[k].Copy(s.PsiNew())
		}
		p.applyCSR()
		for k, s := range p.solvers {
			res, err := s.MixPsi()
			if err != nil {
				return err
			}
			if k == idxCenter {
				iterErr = res
			}
			s.ComputeSsf()
		}
		iter++
	}
	p.Residual = iterErr
	p.Converged = iterErr <= in.ErrMin
	if !p.Converged {
		p.Log.Warning.Printf("quantum structural stencil: residual %.5e after %d iterations", iterErr, iter)
	}
	return nil
}

func (p *QStructProp) applyCSR() {
	in := p.In
	for t := 0; t < 3; t++ {
		for r := 0; r < 3; r++ {
			k := 3*t + r
			s := p.solvers[k]
			g := s.Base.Grid
			rsPt := s.Base.SP.Rs
			aDx := p.Alpha / (6.0 * in.Dx)
			aDrs := p.Alpha * rsPt / (6.0 * in.VsDrs)
			cur := p.lfc[k]
			nx, nl := cur.Dims()
			row := make([]float64, nx)
			for l := 0; l < nl; l++ {
				for i := 0; i < nx; i++ {
					row[i] = cur.At(i, l)
				}
				for i := 0; i < nx; i++ {
					v := row[i]
					v -= aDx * g.X[i] * xDeriv(row, i)
					if rsPt > 0 {
						line := [3]float64{
							p.lfc[3*t].At(i, l),
							p.lfc[3*t+1].At(i, l),
							p.lfc[3*t+2].At(i, l),
						}
						v -= aDrs * stateDeriv(r, line)
					}
					v += p.Alpha / 3.0 * row[i]
					s.PsiNew().Set(i, l, v)
				}
			}
		}
	}
}
