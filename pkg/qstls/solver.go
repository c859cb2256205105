// solver.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

package qstls

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"goueg/pkg/clog"
	"goueg/pkg/input"
	"goueg/pkg/numerics"
	"goueg/pkg/scheme"
	"goueg/pkg/stls"
	"goueg/pkg/ueg"
	"goueg/pkg/uegerr"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const ietInnerMaxIter = 50

// Solver runs the quantum schemes. It reuses the classical solver for
// the state-independent setup and replaces the local field by the
// auxiliary density response psi(x, l).
type Solver struct {
	Base *stls.Solver

	Psi    *mat.Dense
	psiNew *mat.Dense
	Fixed  *numerics.Cube

	factor []float64
}

// New prepares a quantum solver.
func New(in *input.Input, theory scheme.Theory, log *clog.Logger) *Solver {
	return &Solver{Base: stls.New(in, theory, log)}
}

// Init builds the shared state and the bridge term for the IET
// variants.
func (s *Solver) Init() error {
	b := s.Base
	if b.In.QstlsGuessFile != input.NoFile && b.In.QstlsGuessFile != "" {
		b.In.StlsGuessFile = b.In.QstlsGuessFile
	}
	if err := b.Init(); err != nil {
		return err
	}
	desc := b.Theory.Describe()
	if desc.Closure == scheme.ClosureQIET {
		mapping, err := scheme.ParseMapping(b.In.IetMapping)
		if err != nil {
			return err
		}
		if err := ueg.ComputeBridge(b.Bridge, b.Grid, b.SP.Rs, b.SP.Theta,
			desc.Bridge, mapping, b.In.IntErr); err != nil {
			return err
		}
	}
	nx := b.Grid.N()
	s.Psi = mat.NewDense(nx, b.In.NL, nil)
	s.psiNew = mat.NewDense(nx, b.In.NL, nil)
	s.factor = make([]float64, nx)
	return nil
}

// InitAt prepares the solver at an off-input state point, used by the
// thermodynamic stencil sweeps.
func (s *Solver) InitAt(rs, theta float64) error {
	b := s.Base
	if err := b.InitStatePoint(rs, theta); err != nil {
		return err
	}
	nx := b.Grid.N()
	s.Psi = mat.NewDense(nx, b.In.NL, nil)
	s.psiNew = mat.NewDense(nx, b.In.NL, nil)
	s.factor = make([]float64, nx)
	// Stencil points always key their kernel by their own degeneracy;
	// an explicit fixed file can only describe the central state point.
	return s.ensureKernelAt(DefaultKernelPath(b.SP.Theta, b.In.NL), false)
}

// LocalField exposes G_l = psi_l / phi_l.
func (s *Solver) LocalField() ueg.LocalField {
	return func(i, l int) float64 {
		phil := s.Base.Phi.At(i, l)
		if phil == 0 {
			return 0
		}
		return s.Psi.At(i, l) / phil
	}
}

// EnsureFixedKernel loads the cached kernel when a file is given or
// still present from an earlier run, and computes and stores it
// otherwise.
func (s *Solver) EnsureFixedKernel() error {
	b := s.Base
	path := b.In.QstlsFixedFile
	if b.Theory.Describe().Closure == scheme.ClosureQIET {
		path = b.In.QstlsIetFixedFile
	}
	explicit := path != input.NoFile && path != ""
	if !explicit {
		path = DefaultKernelPath(b.SP.Theta, b.In.NL)
	}
	return s.ensureKernelAt(path, explicit)
}

func (s *Solver) ensureKernelAt(path string, explicit bool) error {
	b := s.Base
	if _, err := os.Stat(path); err == nil {
		cube, err := ReadKernel(path, b.Grid, b.In.NL, b.SP.Theta)
		if err == nil {
			s.Fixed = cube
			b.Log.Info.Printf("fixed kernel loaded from %s", path)
			return nil
		}
		if explicit || !errors.Is(err, uegerr.ErrCacheIncompatible) {
			return err
		}
		b.Log.Warning.Printf("discarding stale kernel cache %s", path)
	} else if explicit {
		cube, rerr := ReadKernel(path, b.Grid, b.In.NL, b.SP.Theta)
		if rerr != nil {
			return rerr
		}
		s.Fixed = cube
		return nil
	}
	b.Log.Info.Printf("computing fixed auxiliary response kernel")
	cube, err := ComputeFixedKernel(b.Grid, b.In.NL, b.SP, b.In.IntErr, b.In.NThreads)
	if err != nil {
		return err
	}
	s.Fixed = cube
	return WriteKernel(path, cube, b.Grid, b.In.NL, b.SP.Theta)
}

// PsiNew exposes the unmixed update, used by the thermodynamic
// stencil coupling.
func (s *Solver) PsiNew() *mat.Dense { return s.psiNew }

// ComputeSsf refreshes S from the current auxiliary response.
func (s *Solver) ComputeSsf() {
	b := s.Base
	ueg.ComputeSsf(b.Ssf, b.SsfHF, s.LocalField(), b.Phi, b.Grid, b.SP)
}

// StepAdr refreshes psiNew from the current structure factor. The
// bridge-corrected variant iterates an inner Picard on psi alone, with
// the structure factor held fixed.
func (s *Solver) StepAdr() error {
	b := s.Base
	if b.Theory.Describe().Closure != scheme.ClosureQIET {
		for j := range s.factor {
			s.factor[j] = b.Grid.X[j] * (b.Ssf[j] - 1.0)
		}
		return ComputeAdr(s.psiNew, s.factor, s.Fixed, b.Grid, b.In.IntErr)
	}
	inner := mat.DenseCopyOf(s.Psi)
	tmp := mat.NewDense(b.Grid.N(), b.In.NL, nil)
	for it := 0; it < ietInnerMaxIter; it++ {
		for j := range s.factor {
			psiPhi := 0.0
			if phil := b.Phi.At(j, 0); phil != 0 {
				psiPhi = inner.At(j, 0) / phil
			}
			s.factor[j] = b.Grid.X[j] *
				(b.Ssf[j]*(1.0-b.Bridge[j]) - 1.0 - psiPhi*(b.Ssf[j]-1.0))
		}
		if err := ComputeAdr(tmp, s.factor, s.Fixed, b.Grid, b.In.IntErr); err != nil {
			return err
		}
		res := floats.Distance(tmp.RawMatrix().Data, inner.RawMatrix().Data, 2)
		inner.Copy(tmp)
		if res <= b.In.ErrMin {
			break
		}
	}
	s.psiNew.Copy(inner)
	return nil
}

// MixPsi damps psiNew into Psi; the residual is the l2 norm of the
// l = 0 column difference.
func (s *Solver) MixPsi() (float64, error) {
	b := s.Base
	nx, nl := s.Psi.Dims()
	res := 0.0
	for i := 0; i < nx; i++ {
		d := s.Psi.At(i, 0) - s.psiNew.At(i, 0)
		res += d * d
		for l := 0; l < nl; l++ {
			v := s.psiNew.At(i, l)
			if math.IsNaN(v) {
				return 0, uegerr.ErrNaNEncountered
			}
			s.Psi.Set(i, l, b.In.AMix*v+(1-b.In.AMix)*s.Psi.At(i, l))
		}
	}
	return math.Sqrt(res), nil
}

// Solve runs the coupled fixed point on (psi, S).
func (s *Solver) Solve() error {
	b := s.Base
	start := time.Now()
	defer func() { b.Diag.Elapsed = time.Since(start) }()

	if err := s.EnsureFixedKernel(); err != nil {
		return err
	}
	s.Psi.Zero()
	for i := range b.Slfc {
		b.Slfc[i] = 0
	}
	ueg.ComputeSsf(b.Ssf, b.SsfHF, s.LocalField(), b.Phi, b.Grid, b.SP)

	iterErr := 1.0
	iter := 0
	b.Diag.State = stls.Iterating
	for iter < b.In.NIter && iterErr > b.In.ErrMin {
		tic := time.Now()
		if err := s.StepAdr(); err != nil {
			b.Diag.State = stls.Failed
			return fmt.Errorf("iteration %d: %w", iter+1, err)
		}
		res, err := s.MixPsi()
		if err != nil {
			b.Diag.State = stls.Failed
			return fmt.Errorf("iteration %d: %w", iter+1, err)
		}
		iterErr = res
		iter++
		ueg.ComputeSsf(b.Ssf, b.SsfHF, s.LocalField(), b.Phi, b.Grid, b.SP)
		b.Log.Info.Printf("--- iteration %d ---", iter)
		b.Log.Info.Printf("Elapsed time: %f seconds", time.Since(tic).Seconds())
		b.Log.Info.Printf("Residual error: %.5e", iterErr)
	}
	b.Diag.Iterations = iter
	b.Diag.Residual = iterErr
	if iterErr > b.In.ErrMin {
		b.Diag.State = stls.MaxIterReached
		b.Log.Warning.Printf("no convergence after %d iterations, residual %.5e", iter, iterErr)
	} else {
		b.Diag.State = stls.Converged
	}
	// Static local field for output, from the l = 0 channel.
	for i := range b.Slfc {
		b.Slfc[i] = s.LocalField()(i, 0)
	}
	return nil
}
