// run.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

// Package run is the orchestrator: it owns the result arrays, selects
// the pipeline from (theory, mode), wires the solver components and
// writes the output files.
package run

import (
	"fmt"

	"goueg/pkg/clog"
	"goueg/pkg/dynamic"
	"goueg/pkg/input"
	"goueg/pkg/numerics"
	"goueg/pkg/qstls"
	"goueg/pkg/scheme"
	"goueg/pkg/stls"
	"goueg/pkg/store"
	"goueg/pkg/ueg"
	"goueg/pkg/uegerr"
	"goueg/pkg/vs"
)

// Result carries the converged static solution of any pipeline.
type Result struct {
	Xs   []float64
	Ssf  []float64
	Slfc []float64
	UInt float64
	Diag stls.Diagnostics

	grid ueg.Grid
	sp   ueg.StatePoint
	bf   []float64
}

// Run executes one invocation end to end.
func Run(in *input.Input, log *clog.Logger) error {
	if err := in.Check(); err != nil {
		return err
	}
	theory, err := scheme.ParseTheory(in.Theory)
	if err != nil {
		return err
	}
	mode, err := scheme.ParseMode(in.Mode)
	if err != nil {
		return err
	}
	switch mode {
	case scheme.ModeGuess:
		// The text reader this mode depends on never existed upstream.
		return fmt.Errorf("mode guess: %w", uegerr.ErrUnimplemented)
	case scheme.ModeDynamic:
		return runDynamic(in, theory, log)
	default:
		res, err := runStatic(in, theory, log)
		if err != nil {
			return err
		}
		return writeStatic(in, theory, log, res)
	}
}

func runVS(in *input.Input, theory scheme.Theory, log *clog.Logger) (*Result, error) {
	s := vs.New(in, theory, log)
	if err := s.Solve(); err != nil {
		return nil, err
	}
	log.Output.Printf("Free parameter alpha: %.5e (residual %.5e)", s.Alpha, s.Residual)
	diag := stls.Diagnostics{State: stls.Converged, Residual: s.Residual}
	if s.In.VsSolveCsr == 1 && s.Residual > in.VsErrMin {
		diag.State = stls.MaxIterReached
	}
	return &Result{
		Xs: s.Grid.X, Ssf: s.Ssf, Slfc: s.Slfc,
		UInt: s.UInt, Diag: diag,
		grid: s.Grid, sp: s.SP, bf: make([]float64, s.Grid.N()),
	}, nil
}

func runStatic(in *input.Input, theory scheme.Theory, log *clog.Logger) (*Result, error) {
	desc := theory.Describe()
	switch {
	case desc.UsesCSR:
		return runVS(in, theory, log)
	case desc.Quantum:
		s := qstls.New(in, theory, log)
		if err := s.Init(); err != nil {
			return nil, err
		}
		if err := s.Solve(); err != nil {
			return nil, err
		}
		b := s.Base
		return &Result{
			Xs: b.Grid.X, Ssf: b.Ssf, Slfc: b.Slfc,
			UInt: b.InternalEnergy(), Diag: b.Diag,
			grid: b.Grid, sp: b.SP, bf: b.Bridge,
		}, nil
	default:
		s := stls.New(in, theory, log)
		if err := s.Init(); err != nil {
			return nil, err
		}
		if err := s.Solve(); err != nil {
			return nil, err
		}
		if in.StlsGuessFile == input.NoFile || in.StlsGuessFile == "" {
			if err := store.WriteRestart(store.RestartPath, in, s.Phi, s.SsfHF); err != nil {
				return nil, err
			}
		}
		return &Result{
			Xs: s.Grid.X, Ssf: s.Ssf, Slfc: s.Slfc,
			UInt: s.InternalEnergy(), Diag: s.Diag,
			grid: s.Grid, sp: s.SP, bf: s.Bridge,
		}, nil
	}
}

func writeStatic(in *input.Input, theory scheme.Theory, log *clog.Logger, res *Result) error {
	if err := store.WriteXY(store.SsfPath(theory.String()), res.Xs, res.Ssf); err != nil {
		return err
	}
	if err := store.WriteXY(store.SlfcPath(theory.String()), res.Xs, res.Slfc); err != nil {
		return err
	}
	if in.Rs > 0 {
		log.Output.Printf("Internal energy: %f", res.UInt)
	}
	log.Output.Printf("Solver state: %s (iterations: %d, residual: %.5e)",
		res.Diag.State, res.Diag.Iterations, res.Diag.Residual)
	return nil
}

func runDynamic(in *input.Input, theory scheme.Theory, log *clog.Logger) error {
	if in.Theta == 0 {
		return uegerr.Inputf("theta", "ground state dynamic properties are not implemented")
	}
	res, err := runStatic(in, theory, log)
	if err != nil {
		return err
	}
	desc := theory.Describe()
	x := in.DynXTarget
	ws := dynamic.FrequencyGrid(in.DynDW, in.DynWmax)

	var sdyn []float64
	if desc.Quantum {
		e := dynamic.NewEngine(in, log, res.grid, res.sp, res.Ssf, res.bf)
		cache := store.DynAdrPath(res.sp.Rs, res.sp.Theta, theory.String())
		if err := e.Compute(cache); err != nil {
			return err
		}
		phiRe, phiIm, psiRe, psiIm, err := e.TargetColumns(x)
		if err != nil {
			return err
		}
		mapping, err := scheme.ParseMapping(in.IetMapping)
		if err != nil {
			return err
		}
		bfx, err := ueg.BridgeAt(x, res.sp.Rs, res.sp.Theta, desc.Bridge, mapping, in.IntErr)
		if err != nil {
			return err
		}
		sdyn = dynamic.Dsf(ws, phiRe, phiIm, psiRe, psiIm, x, bfx, res.sp)
	} else {
		phiRe, phiIm, err := dynamic.IdrColumn(ws, x, res.sp, res.grid.Xmax, in.IntErr)
		if err != nil {
			return err
		}
		gsp, err := numerics.NewInterp1D(res.Xs, res.Slfc)
		if err != nil {
			return err
		}
		gx := gsp.Eval(x)
		psiRe := make([]float64, len(ws))
		psiIm := make([]float64, len(ws))
		for j := range ws {
			psiRe[j] = gx * phiRe[j]
			psiIm[j] = gx * phiIm[j]
		}
		sdyn = dynamic.Dsf(ws, phiRe, phiIm, psiRe, psiIm, x, 0, res.sp)
	}
	return store.WriteXY(store.DsfPath(res.sp.Rs, res.sp.Theta, theory.String()), ws, sdyn)
}
