// adriet.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

package dynamic

import (
	"fmt"
	"math"

	"goueg/pkg/clog"
	"goueg/pkg/input"
	"goueg/pkg/numerics"
	"goueg/pkg/ueg"
	"goueg/pkg/uegerr"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Engine computes the frequency-dependent auxiliary density response of
// the quantum schemes over the full (wave-vector, frequency) grid, with
// the bridge-corrected self-consistency of the IET family. Only the
// partially dynamic path exists: the real component iterates, the
// imaginary component follows once.
type Engine struct {
	In  *input.Input
	Log *clog.Logger

	Grid ueg.Grid
	SP   ueg.StatePoint
	WS   []float64
	Ssf  []float64
	Bf   []float64

	PhiRe, PhiIm *mat.Dense
	PsiRe, PsiIm *mat.Dense

	fixed *numerics.Cube
}

// NewEngine wires an engine over borrowed static results.
func NewEngine(in *input.Input, log *clog.Logger, g ueg.Grid, sp ueg.StatePoint, ssf, bf []float64) *Engine {
	ws := FrequencyGrid(in.DynDW, in.DynWmax)
	nx := g.N()
	nW := len(ws)
	return &Engine{
		In: in, Log: log, Grid: g, SP: sp, WS: ws, Ssf: ssf, Bf: bf,
		PhiRe: mat.NewDense(nx, nW, nil),
		PhiIm: mat.NewDense(nx, nW, nil),
		PsiRe: mat.NewDense(nx, nW, nil),
		PsiIm: mat.NewDense(nx, nW, nil),
	}
}

// Compute fills the four response surfaces, from the cache file when
// one is given and by the nested-quadrature iteration otherwise, then
// stores them for restart.
func (e *Engine) Compute(cachePath string) error {
	if e.SP.Theta == 0 {
		return uegerr.Inputf("theta", "ground state dynamic properties are not implemented")
	}
	if e.In.DynAdrFile != input.NoFile && e.In.DynAdrFile != "" {
		if err := e.ReadFixed(e.In.DynAdrFile); err != nil {
			return err
		}
		e.Log.Info.Printf("density responses loaded from %s", e.In.DynAdrFile)
	} else {
		if err := e.computeIdrGrid(); err != nil {
			return err
		}
		if err := e.computeAdr(); err != nil {
			return err
		}
	}
	return e.WriteFixed(cachePath)
}

// TargetColumns interpolates the four surfaces to the target
// wave-vector over every frequency.
func (e *Engine) TargetColumns(xTarget float64) (phiRe, phiIm, psiRe, psiIm []float64, err error) {
	nW := len(e.WS)
	cols := make([][]float64, 4)
	for c, m := range []*mat.Dense{e.PhiRe, e.PhiIm, e.PsiRe, e.PsiIm} {
		surf, err := numerics.NewInterp2D(e.Grid.X, e.WS, m.RawMatrix().Data)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		col := make([]float64, nW)
		for j := 0; j < nW; j++ {
			col[j], err = surf.Eval(xTarget, e.WS[j])
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
		cols[c] = col
	}
	return cols[0], cols[1], cols[2], cols[3], nil
}

func (e *Engine) computeIdrGrid() error {
	var eg errgroup.Group
	eg.SetLimit(e.In.NThreads)
	yMax := e.Grid.Xmax
	for i := 0; i < e.Grid.N(); i++ {
		i := i
		eg.Go(func() error {
			re, im, err := IdrColumn(e.WS, e.Grid.X[i], e.SP, yMax, e.In.IntErr)
			if err != nil {
				return err
			}
			for j := range e.WS {
				e.PhiRe.Set(i, j, re[j])
				e.PhiIm.Set(i, j, im[j])
			}
			return nil
		})
	}
	return eg.Wait()
}

// level1Factor is the self-consistency factor of the level-1 integral,
// shared by the real and imaginary components. It reads only the
// converged static structure factor, the bridge term and the l = 0
// column of the running psi estimate.
func (e *Engine) level1Factor() []float64 {
	nx := e.Grid.N()
	f := make([]float64, nx)
	for i := 1; i < nx; i++ {
		psiPhi := 0.0
		if phir := e.PhiRe.At(i, 0); phir != 0 {
			psiPhi = e.PsiRe.At(i, 0) / phir
		}
		f[i] = e.Ssf[i]*(1.0-e.Bf[i]) - psiPhi*(e.Ssf[i]-1.0)
	}
	return f
}

func (e *Engine) computeAdr() error {
	nx := e.Grid.N()
	nW := len(e.WS)
	e.fixed = numerics.NewCube(nx, nW, nx)
	e.fixed.Fill(math.Inf(1))
	e.PsiRe.Zero()
	psiNew := mat.NewDense(nx, nW, nil)

	iterErr := 1.0
	iter := 0
	for iter < e.In.NIter && iterErr > e.In.ErrMin {
		if err := e.level1Pass(psiNew, false); err != nil {
			return fmt.Errorf("auxiliary response iteration %d: %w", iter+1, err)
		}
		iterErr = 0.0
		for i := 0; i < nx; i++ {
			d := e.PsiRe.At(i, 0) - psiNew.At(i, 0)
			iterErr += d * d
		}
		iterErr = math.Sqrt(iterErr)
		iter++
		for i := 0; i < nx; i++ {
			for j := 0; j < nW; j++ {
				e.PsiRe.Set(i, j, e.In.AMix*psiNew.At(i, j)+(1-e.In.AMix)*e.PsiRe.At(i, j))
			}
		}
		e.Log.Info.Printf("auxiliary response iteration %d, residual %.5e", iter, iterErr)
	}
	if iterErr > e.In.ErrMin {
		e.Log.Warning.Printf("auxiliary response: no convergence after %d iterations, residual %.5e", iter, iterErr)
	}
	return e.level1Pass(e.PsiIm, true)
}

// level1Pass fills dst(i, j) with the outermost wave-vector integral.
// Rows are distributed over workers; every worker owns its splines and
// workspaces and only touches the fixed tensor rows of its own
// wave-vector index.
func (e *Engine) level1Pass(dst *mat.Dense, imaginary bool) error {
	nx := e.Grid.N()
	f1 := e.level1Factor()
	f1sp, err := numerics.NewInterp1D(e.Grid.X, f1)
	if err != nil {
		return err
	}
	ssfSp, err := numerics.NewInterp1D(e.Grid.X, e.Ssf)
	if err != nil {
		return err
	}
	var eg errgroup.Group
	eg.SetLimit(e.In.NThreads)
	for i := 0; i < nx; i++ {
		i := i
		eg.Go(func() error {
			lev2 := make([]float64, nx)
			for j := range e.WS {
				var err error
				if imaginary {
					err = e.level2Im(lev2, e.WS[j], e.Grid.X[i], ssfSp)
				} else {
					row := e.fixed.Row(i, j)
					if math.IsInf(row[0], 1) {
						if err = e.level2Re(row, e.WS[j], e.Grid.X[i], ssfSp); err != nil {
							return err
						}
					}
					copy(lev2, row)
				}
				if err != nil {
					return err
				}
				f2sp, err := numerics.NewInterp1D(e.Grid.X, lev2)
				if err != nil {
					return err
				}
				res, err := numerics.Adaptive(func(w float64) float64 {
					if w == 0 {
						return 0
					}
					return f1sp.Eval(w) * f2sp.Eval(w) / w
				}, e.Grid.X[0], e.Grid.Last(), e.In.IntErr)
				if err != nil {
					return err
				}
				dst.Set(i, j, res.Value)
			}
			return nil
		})
	}
	return eg.Wait()
}

// level2Re fills out[k] with the middle integral over u for every grid
// node w_k, at frequency W and wave-vector x.
func (e *Engine) level2Re(out []float64, W, x float64, ssfSp *numerics.Interp1D) error {
	nx := e.Grid.N()
	wMax := e.Grid.X[nx-2]
	lev3 := make([]float64, nx)
	for k := 0; k < nx; k++ {
		w := e.Grid.X[k]
		uMin := math.Abs(w - x)
		uMax := math.Min(w+x, wMax)
		for m := 0; m < nx; m++ {
			v, err := e.level3Re(W, x, w, e.Grid.X[m])
			if err != nil {
				return err
			}
			lev3[m] = v
		}
		lev3Sp, err := numerics.NewInterp1D(e.Grid.X, lev3)
		if err != nil {
			return err
		}
		res, err := numerics.Adaptive(func(u float64) float64 {
			return u * (ssfSp.Eval(u) - 1.0) * lev3Sp.Eval(u)
		}, uMin, uMax, e.In.IntErr)
		if err != nil {
			return err
		}
		out[k] = res.Value
	}
	return nil
}

// level3Re is the innermost momentum integral of the real component.
func (e *Engine) level3Re(W, x, w, u float64) (float64, error) {
	theta, mu := e.SP.Theta, e.SP.Mu
	var f func(q float64) float64
	if W == 0 {
		f = func(q float64) float64 {
			if x == 0 || q == 0 {
				return 0
			}
			x2 := x * x
			tt := x2 + w*w - u*u
			logarg := (tt + 4.0*x*q) / (tt - 4.0*x*q)
			if logarg < 0 {
				logarg = -logarg
			}
			q2 := q * q
			// At tt = +-4xq the logarithm diverges where its prefactor
			// vanishes; the product tends to zero there.
			logTerm := 0.0
			if logarg != 0 && !math.IsInf(logarg, 0) {
				logTerm = (q2 - tt*tt/(16.0*x2)) * math.Log(logarg)
			}
			return -(3.0 / (4.0 * theta)) *
				q / (math.Exp(q2/theta-mu) + math.Exp(-q2/theta+mu) + 2.0) *
				(logTerm + (q/x)*tt/2.0)
		}
	} else {
		f = func(q float64) float64 {
			x2 := x * x
			f1 := x2 + w*w - u*u + 4.0*x*q
			f2 := x2 + w*w - u*u - 4.0*x*q
			num := f1*f1 - 4.0*W*W
			den := f2*f2 - 4.0*W*W
			if num == 0 || den == 0 {
				return 0
			}
			logarg := num / den
			if logarg < 0 {
				logarg = -logarg
			}
			q2 := q * q
			return -(3.0 / 8.0) * q / (math.Exp(q2/theta-mu) + 1.0) * math.Log(logarg)
		}
	}
	res, err := numerics.Adaptive(f, e.Grid.X[0], e.Grid.Last(), e.In.IntErr)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// level2Im fills out[k] with the middle integral of the imaginary
// component, whose zero-frequency form is analytic in u.
func (e *Engine) level2Im(out []float64, W, x float64, ssfSp *numerics.Interp1D) error {
	nx := e.Grid.N()
	wMax := e.Grid.X[nx-2]
	theta, mu := e.SP.Theta, e.SP.Mu
	lev3 := make([]float64, nx)
	for k := 0; k < nx; k++ {
		w := e.Grid.X[k]
		uMin := math.Abs(w - x)
		uMax := math.Min(w+x, wMax)
		var integrand func(u float64) float64
		if W == 0 {
			integrand = func(u float64) float64 {
				if x == 0 {
					return 0
				}
				tt := x*x + w*w - u*u
				return 0.5 * u * (ssfSp.Eval(u) - 1.0) * tt /
					(math.Exp(tt*tt/(16.0*theta*x*x)-mu) + 1.0)
			}
		} else {
			for m := 0; m < nx; m++ {
				v, err := e.level3Im(W, x, w, e.Grid.X[m])
				if err != nil {
					return err
				}
				lev3[m] = v
			}
			lev3Sp, err := numerics.NewInterp1D(e.Grid.X, lev3)
			if err != nil {
				return err
			}
			integrand = func(u float64) float64 {
				return u * (ssfSp.Eval(u) - 1.0) * lev3Sp.Eval(u)
			}
		}
		res, err := numerics.Adaptive(integrand, uMin, uMax, e.In.IntErr)
		if err != nil {
			return err
		}
		out[k] = res.Value
	}
	return nil
}

// level3Im is the innermost momentum integral of the imaginary
// component; the angular constraints reduce it to step functions.
func (e *Engine) level3Im(W, x, w, u float64) (float64, error) {
	theta, mu := e.SP.Theta, e.SP.Mu
	tt := (x*x + w*w - u*u) / 2.0
	att := math.Abs(tt)
	qMin := math.Abs(W-att) / (2.0 * x)
	qMax := (W + att) / (2.0 * x)
	hh1 := (tt + W) / (2.0 * x)
	hh2 := (tt - W) / (2.0 * x)
	hh12 := hh1 * hh1
	hh22 := hh2 * hh2
	f := func(q float64) float64 {
		q2 := q * q
		out := 0
		if q2 > hh12 {
			out++
		}
		if q2 > hh22 {
			out--
		}
		return 3.0 * math.Pi / 8.0 * float64(out) * q / (math.Exp(q2/theta-mu) + 1.0)
	}
	res, err := numerics.Adaptive(f, qMin, qMax, e.In.IntErr)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}
