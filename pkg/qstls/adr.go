// adr.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

// Package qstls computes the static auxiliary density response psi(x,l)
// of the quantum schemes. The kernel that does not depend on the
// structure factor is the dominant cost: it is computed once per
// (Theta, grid, nl), kept as a rank-3 tensor and cached on disk.
package qstls

import (
	"math"

	"goueg/pkg/numerics"
	"goueg/pkg/ueg"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// kernelQ is the momentum-distribution factor of the fixed kernel.
func kernelQ(q float64, l int, theta, mu float64) float64 {
	q2 := q * q
	if l == 0 {
		return q / (math.Exp(q2/theta-mu) + math.Exp(-q2/theta+mu) + 2.0)
	}
	return q / (math.Exp(q2/theta-mu) + 1.0)
}

// kernelAngle is the angular factor of the fixed kernel at Matsubara
// index l, wave-vector x and convolution variable u.
func kernelAngle(q, x, u float64, l int, theta float64) float64 {
	if x == 0 || q == 0 {
		return 0
	}
	x2 := x * x
	tt := 2*x2 - u*u
	if l == 0 {
		f1 := tt + 4.0*x*q
		f2 := tt - 4.0*x*q
		if f2 == 0 {
			return 0
		}
		logarg := f1 / f2
		if logarg < 0 {
			logarg = -logarg
		}
		return -(3.0 / (4.0 * theta)) *
			((q*q-tt*tt/(16.0*x2))*math.Log(logarg) + (q/x)*tt/2.0)
	}
	tplT := 2.0 * math.Pi * float64(l) * theta
	tplT2 := 4.0 * tplT * tplT
	f1 := tt + 4.0*x*q
	f2 := tt - 4.0*x*q
	return -(3.0 / 8.0) * math.Log((f1*f1+tplT2)/(f2*f2+tplT2))
}

// FixedKernelEntry integrates the q factor against the angular factor
// for one (x, l, u) triple.
func FixedKernelEntry(x, u float64, l int, sp ueg.StatePoint, qMin, qMax, relErr float64) (float64, error) {
	f := func(q float64) float64 {
		w := kernelQ(q, l, sp.Theta, sp.Mu)
		if w == 0 {
			return 0
		}
		if l == 0 {
			return w * kernelAngle(q, x, u, 0, sp.Theta)
		}
		return w * kernelAngle(q, x, u, l, sp.Theta)
	}
	res, err := numerics.Adaptive(f, qMin, qMax, relErr)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// ComputeFixedKernel fills the (nx, nl, nx) tensor fixed(i, l, j),
// where j runs over the convolution grid. The outer wave-vector loop
// is distributed over workers; each worker owns its scratch and writes
// disjoint rows. Slots start at +Inf and are either fully populated or
// untouched.
func ComputeFixedKernel(g ueg.Grid, nl int, sp ueg.StatePoint, relErr float64, workers int) (*numerics.Cube, error) {
	nx := g.N()
	cube := numerics.NewCube(nx, nl, nx)
	cube.Fill(math.Inf(1))
	qMin := g.X[0]
	qMax := g.Last()
	var eg errgroup.Group
	eg.SetLimit(workers)
	for i := 0; i < nx; i++ {
		i := i
		eg.Go(func() error {
			x := g.X[i]
			for l := 0; l < nl; l++ {
				row := cube.Row(i, l)
				for j := 0; j < nx; j++ {
					v, err := FixedKernelEntry(x, g.X[j], l, sp, qMin, qMax, relErr)
					if err != nil {
						return err
					}
					row[j] = v
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return cube, nil
}

// ComputeAdr convolves the state factor against the fixed kernel:
//
//	psi(x, l) = int du factor(u) fixed(x, l; u)
//
// over u in [x_0, min(2x, x_{N-2})]. The plain scheme uses
// factor(u) = u (S(u) - 1); the bridge-corrected scheme passes its
// self-consistent factor instead.
func ComputeAdr(psi *mat.Dense, factor []float64, fixed *numerics.Cube, g ueg.Grid, relErr float64) error {
	nx, nl := psi.Dims()
	fsp, err := numerics.NewInterp1D(g.X, factor)
	if err != nil {
		return err
	}
	uCap := g.X[nx-2]
	for i := 0; i < nx; i++ {
		uMax := math.Min(2.0*g.X[i], uCap)
		for l := 0; l < nl; l++ {
			ksp, err := numerics.NewInterp1D(g.X, fixed.Row(i, l))
			if err != nil {
				return err
			}
			res, err := numerics.Adaptive(func(u float64) float64 {
				return fsp.Eval(u) * ksp.Eval(u)
			}, g.X[0], uMax, relErr)
			if err != nil {
				return err
			}
			psi.Set(i, l, res.Value)
		}
	}
	return nil
}
