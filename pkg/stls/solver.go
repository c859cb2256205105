// solver.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

// Package stls solves the classical dielectric schemes (RPA, ESA, STLS
// and the bridge-corrected STLS-IET family) by damped Picard iteration
// over the static structure factor and the local-field correction.
package stls

import (
	"fmt"
	"math"
	"time"

	"goueg/pkg/clog"
	"goueg/pkg/input"
	"goueg/pkg/scheme"
	"goueg/pkg/store"
	"goueg/pkg/ueg"
	"goueg/pkg/uegerr"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// State tracks the driver life cycle.
type State int

const (
	NotStarted State = iota
	Iterating
	Converged
	MaxIterReached
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case MaxIterReached:
		return "max iterations reached"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Diagnostics collects the per-run driver telemetry.
type Diagnostics struct {
	State      State
	Iterations int
	Residual   float64
	Elapsed    time.Duration
}

// Solver holds the borrowed views and the working arrays of one static
// solve. The orchestrator owns the result arrays; the solver writes
// them index-disjoint.
type Solver struct {
	In     *input.Input
	Theory scheme.Theory
	Log    *clog.Logger

	Grid  ueg.Grid
	SP    ueg.StatePoint
	Phi   *mat.Dense
	SsfHF []float64

	Ssf     []float64
	Slfc    []float64
	SlfcNew []float64
	Bridge  []float64

	Diag Diagnostics
}

// New prepares a solver without touching the heavy state. Call Init
// before Solve.
func New(in *input.Input, theory scheme.Theory, log *clog.Logger) *Solver {
	return &Solver{In: in, Theory: theory, Log: log}
}

// Init builds the grid, the chemical potential, the ideal density
// response and the Hartree-Fock structure factor, or loads them from
// the restart file when one is given.
func (s *Solver) Init() error {
	desc := s.Theory.Describe()
	if s.In.StlsGuessFile != input.NoFile && s.In.StlsGuessFile != "" {
		if err := s.initFromRestart(); err != nil {
			return err
		}
	} else {
		if err := s.InitStatePoint(s.In.Rs, s.In.Theta); err != nil {
			return err
		}
	}
	nx := s.Grid.N()
	s.Ssf = make([]float64, nx)
	s.Slfc = make([]float64, nx)
	s.SlfcNew = make([]float64, nx)
	s.Bridge = make([]float64, nx)
	if desc.Closure == scheme.ClosureIET {
		mapping, err := scheme.ParseMapping(s.In.IetMapping)
		if err != nil {
			return err
		}
		if err := ueg.ComputeBridge(s.Bridge, s.Grid, s.SP.Rs, s.SP.Theta,
			desc.Bridge, mapping, s.In.IntErr); err != nil {
			return err
		}
	}
	return nil
}

// InitStatePoint rebuilds the state-dependent arrays for (rs, theta)
// on the configured grid. Used directly by the thermodynamic stencil
// solvers, which sweep state points on a shared grid.
func (s *Solver) InitStatePoint(rs, theta float64) error {
	g, err := ueg.NewGrid(s.In.Dx, s.In.Xmax)
	if err != nil {
		return err
	}
	s.Grid = g
	mu, err := ueg.ChemicalPotential(theta, s.In.MuLo, s.In.MuHi)
	if err != nil {
		return err
	}
	s.SP = ueg.StatePoint{Rs: rs, Theta: theta, Mu: mu}
	s.Log.Info.Printf("chemical potential: %.8f", mu)
	s.Phi = ueg.ComputeIdr(s.Grid, s.In.NL, s.SP)
	s.SsfHF = ueg.ComputeSsfHF(s.Grid, s.SP)
	nx := s.Grid.N()
	s.Ssf = make([]float64, nx)
	s.Slfc = make([]float64, nx)
	s.SlfcNew = make([]float64, nx)
	if s.Bridge == nil {
		s.Bridge = make([]float64, nx)
	}
	return nil
}

func (s *Solver) initFromRestart() error {
	rec, phi, ssfHF, err := store.ReadRestart(s.In.StlsGuessFile)
	if err != nil {
		return err
	}
	s.In.Theta = rec.Theta
	s.In.Dx = rec.Dx
	s.In.Xmax = rec.Xmax
	s.In.NL = rec.NL
	g, err := ueg.NewGrid(rec.Dx, rec.Xmax)
	if err != nil {
		return err
	}
	s.Grid = g
	mu, err := ueg.ChemicalPotential(rec.Theta, s.In.MuLo, s.In.MuHi)
	if err != nil {
		return err
	}
	s.SP = ueg.StatePoint{Rs: s.In.Rs, Theta: rec.Theta, Mu: mu}
	s.Phi = phi
	s.SsfHF = ssfHF
	s.Log.Info.Printf("restart loaded from %s", s.In.StlsGuessFile)
	return nil
}

// InitialGuess seeds the iteration: G = 0, G_new = 1 and the structure
// factor evaluated from G = 0.
func (s *Solver) InitialGuess() {
	for i := range s.Slfc {
		s.Slfc[i] = 0
		s.SlfcNew[i] = 1
	}
	s.ComputeSsf()
}

// ComputeSsf refreshes S from the current local field.
func (s *Solver) ComputeSsf() {
	ueg.ComputeSsf(s.Ssf, s.SsfHF, ueg.StaticLocalField(s.Slfc), s.Phi, s.Grid, s.SP)
}

// StepSlfc refreshes SlfcNew from the current structure factor under
// the selected closure.
func (s *Solver) StepSlfc() {
	switch s.Theory.Describe().Closure {
	case scheme.ClosureIET:
		ueg.ComputeSlfcIet(s.SlfcNew, s.Ssf, s.Slfc, s.Bridge, s.Grid)
	default:
		ueg.ComputeSlfc(s.SlfcNew, s.Ssf, s.Grid)
	}
}

// MixAndResidual damps SlfcNew into Slfc and returns the l2 residual
// of the unmixed update. A non-finite iterate reports a failure.
func (s *Solver) MixAndResidual(aMix float64) (float64, error) {
	for i := range s.SlfcNew {
		if math.IsNaN(s.SlfcNew[i]) || math.IsInf(s.SlfcNew[i], 0) {
			return 0, uegerr.ErrNaNEncountered
		}
	}
	res := floats.Distance(s.SlfcNew, s.Slfc, 2)
	for i := range s.Slfc {
		s.Slfc[i] = aMix*s.SlfcNew[i] + (1-aMix)*s.Slfc[i]
	}
	return res, nil
}

// Solve runs the scheme to completion. RPA and ESA need a single pass;
// the iterative closures run the damped Picard loop until the residual
// drops below ErrMin or NIter is exhausted. A residual above threshold
// at exhaustion leaves state MaxIterReached and is not an error here:
// partial results remain valid for output.
func (s *Solver) Solve() error {
	start := time.Now()
	defer func() { s.Diag.Elapsed = time.Since(start) }()

	switch s.Theory.Describe().Closure {
	case scheme.ClosureNone:
		for i := range s.Slfc {
			s.Slfc[i] = 0
		}
		s.ComputeSsf()
		s.Diag.State = Converged
		return nil
	case scheme.ClosureESA:
		ueg.ComputeEsa(s.Slfc, s.SsfHF, s.Grid)
		s.ComputeSsf()
		s.Diag.State = Converged
		return nil
	}

	s.InitialGuess()
	iterErr := 1.0
	iter := 0
	s.Diag.State = Iterating
	for iter < s.In.NIter && iterErr > s.In.ErrMin {
		tic := time.Now()
		s.StepSlfc()
		res, err := s.MixAndResidual(s.In.AMix)
		if err != nil {
			s.Diag.State = Failed
			return fmt.Errorf("iteration %d: %w", iter+1, err)
		}
		iterErr = res
		iter++
		s.ComputeSsf()
		s.Log.Info.Printf("--- iteration %d ---", iter)
		s.Log.Info.Printf("Elapsed time: %f seconds", time.Since(tic).Seconds())
		s.Log.Info.Printf("Residual error: %.5e", iterErr)
	}
	s.Diag.Iterations = iter
	s.Diag.Residual = iterErr
	if iterErr > s.In.ErrMin {
		s.Diag.State = MaxIterReached
		s.Log.Warning.Printf("no convergence after %d iterations, residual %.5e", iter, iterErr)
	} else {
		s.Diag.State = Converged
	}
	return nil
}

// InternalEnergy of the converged solution.
func (s *Solver) InternalEnergy() float64 {
	return ueg.InternalEnergy(s.Ssf, s.Grid, s.SP.Rs)
}
