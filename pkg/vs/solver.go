// solver.go -- This file is part of goueg.
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
	"goueg/pkg/scheme"
	"goueg/pkg/store"
	"goueg/pkg/ueg"
	"goueg/pkg/uegerr"
)

// alphaMaxIter bounds the outer loop; the structural iterations keep
// their own budget.
const alphaMaxIter = 50

// Solver runs the outer loop on the free parameter alpha. Each pass
// rebuilds the thermodynamic table with the current alpha, evaluates
// the sum-rule alpha and damps towards it.
type Solver struct {
	In      *input.Input
	Theory  scheme.Theory
	Log     *clog.Logger
	Quantum bool

	Alpha    float64
	Residual float64
	Thermo   *Thermo

	// Converged target solution.
	Grid ueg.Grid
	SP   ueg.StatePoint
	Ssf  []float64
	Slfc []float64
	UInt float64
}

// New prepares a variational solver.
func New(in *input.Input, theory scheme.Theory, log *clog.Logger) *Solver {
	return &Solver{In: in, Theory: theory, Log: log, Quantum: theory.Describe().Quantum}
}

// Solve drives the alpha loop, leaving the structural solution at the
// target state point in place.
func (s *Solver) Solve() error {
	in := s.In
	if in.Rs <= 0 {
		return uegerr.Inputf("rs", "the variational schemes require rs > 0")
	}
	s.Alpha = in.VsAlpha

	if in.VsSolveCsr == 0 {
		return s.finalSolve()
	}

	external := in.VsThermoFile != input.NoFile && in.VsThermoFile != ""
	if external {
		th, err := LoadTable(in.VsThermoFile, in.Rs)
		if err != nil {
			return err
		}
		s.Thermo = th
	}

	maxIter := in.NIter
	if maxIter > alphaMaxIter {
		maxIter = alphaMaxIter
	}
	iter := 0
	err := 1.0
	for iter < maxIter && err > in.VsErrMin {
		if !external {
			th, terr := ComputeTable(in, s.Log, s.Alpha, s.Quantum)
			if terr != nil {
				return terr
			}
			s.Thermo = th
		}
		d := s.Thermo.Derivatives(in.Rs, in.Theta, in.VsDrs, in.VsDt)
		if s.Quantum {
			if qerr := s.fillQData(&d); qerr != nil {
				return qerr
			}
		}
		alphaNew := Alpha(d, in.Theta, s.Quantum)
		if math.IsNaN(alphaNew) || math.IsInf(alphaNew, 0) {
			return uegerr.ErrNaNEncountered
		}
		err = math.Abs(alphaNew-s.Alpha) / math.Max(math.Abs(s.Alpha), 1e-12)
		s.Alpha = in.VsAMix*alphaNew + (1-in.VsAMix)*s.Alpha
		iter++
		s.Log.Info.Printf("alpha iteration %d: alpha = %.5e, residual = %.5e", iter, s.Alpha, err)
		if external {
			// A trusted table fixes the residual: one evaluation suffices.
			break
		}
	}
	s.Residual = err
	if err > in.VsErrMin && !external {
		s.Log.Warning.Printf("alpha loop: residual %.5e after %d iterations", err, iter)
	}
	if ferr := s.finalSolve(); ferr != nil {
		return ferr
	}
	if !external && s.Thermo != nil {
		if werr := s.Thermo.Save(store.ThermoTablePath(in.Rs, in.Theta)); werr != nil {
			return werr
		}
	}
	return nil
}

// fillQData evaluates the auxiliary-response adder and its stencil
// derivatives from the target structural solutions.
func (s *Solver) fillQData(d *Data) error {
	in := s.In
	p := s.Thermo.QProp
	if p == nil {
		var err error
		p, err = NewQStructProp(in, s.Log, in.Rs, in.Theta, s.Alpha)
		if err != nil {
			return err
		}
		if err := p.Iterate(); err != nil {
			return err
		}
		s.Thermo.QProp = p
	}
	qAt := func(idx int) (float64, error) {
		b := p.solvers[idx].Base
		return QAdder(b.Ssf, b.Grid, b.SP, in.IntErr)
	}
	qc, err := qAt(idxCenter)
	if err != nil {
		return err
	}
	qrUp, err := qAt(idxRsUp)
	if err != nil {
		return err
	}
	qrDown, err := qAt(idxRsDown)
	if err != nil {
		return err
	}
	d.Q = qc / in.Rs
	d.Qr = (qrUp-qrDown)/(2.0*in.VsDrs) - d.Q
	if in.Theta > 0 {
		qtUp, err := qAt(idxThUp)
		if err != nil {
			return err
		}
		qtDown, err := qAt(idxThDown)
		if err != nil {
			return err
		}
		d.Qt = in.Theta * (qtUp/in.Rs - qtDown/in.Rs) / (2.0 * in.VsDt)
	}
	return nil
}

// finalSolve runs the structural stencil at the target state point
// with the converged alpha and publishes the center solution.
func (s *Solver) finalSolve() error {
	in := s.In
	if s.Quantum {
		p, err := NewQStructProp(in, s.Log, in.Rs, in.Theta, s.Alpha)
		if err != nil {
			return err
		}
		if err := p.Iterate(); err != nil {
			return err
		}
		b := p.Center().Base
		s.Grid = b.Grid
		s.SP = b.SP
		s.Ssf = b.Ssf
		s.Slfc = b.Slfc
		for i := range s.Slfc {
			s.Slfc[i] = p.Center().LocalField()(i, 0)
		}
		s.UInt = b.InternalEnergy()
		return nil
	}
	p, err := NewStructProp(in, s.Log, in.Rs, in.Theta, s.Alpha)
	if err != nil {
		return err
	}
	if err := p.Iterate(); err != nil {
		return err
	}
	c := p.Center()
	s.Grid = c.Grid
	s.SP = c.SP
	s.Ssf = c.Ssf
	s.Slfc = c.Slfc
	s.UInt = c.InternalEnergy()
	return nil
}
