// qstls_test.go -- This file is part of goueg.
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
	"math"
	"os"
	"path/filepath"
	"testing"

	"goueg/pkg/clog"
	"goueg/pkg/input"
	"goueg/pkg/numerics"
	"goueg/pkg/scheme"
	"goueg/pkg/ueg"
	"goueg/pkg/uegerr"
)

func tinyInput() input.Input {
	in := input.Default()
	in.Dx = 0.5
	in.Xmax = 4
	in.NL = 2
	in.NIter = 5
	in.ErrMin = 1e-4
	in.AMix = 0.5
	in.IntErr = 1e-3
	return in
}

func tinySetup(t *testing.T) (ueg.Grid, ueg.StatePoint) {
	t.Helper()
	g, err := ueg.NewGrid(0.5, 4)
	if err != nil {
		t.Fatal(err)
	}
	mu, err := ueg.ChemicalPotential(1.0, -10, 10)
	if err != nil {
		t.Fatal(err)
	}
	return g, ueg.StatePoint{Rs: 1.0, Theta: 1.0, Mu: mu}
}

func TestFixedKernelFiniteAndPopulated(t *testing.T) {
	g, sp := tinySetup(t)
	cube, err := ComputeFixedKernel(g, 2, sp, 1e-3, 2)
	if err != nil {
		t.Fatal(err)
	}
	nx, nl, nz := cube.Dims()
	if nx != g.N() || nl != 2 || nz != g.N() {
		t.Fatalf("unexpected shape %dx%dx%d", nx, nl, nz)
	}
	for i := 0; i < nx; i++ {
		for l := 0; l < nl; l++ {
			for j := 0; j < nz; j++ {
				v := cube.At(i, l, j)
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("kernel not populated at (%d,%d,%d): %v", i, l, j, v)
				}
			}
		}
	}
}

func TestKernelCacheRoundTrip(t *testing.T) {
	g, sp := tinySetup(t)
	cube, err := ComputeFixedKernel(g, 2, sp, 1e-3, 1)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "kernel.bin")
	if err := WriteKernel(path, cube, g, 2, sp.Theta); err != nil {
		t.Fatal(err)
	}
	got, err := ReadKernel(path, g, 2, sp.Theta)
	if err != nil {
		t.Fatal(err)
	}
	a, b := cube.Raw(), got.Raw()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("kernel not bit-exact at %d", i)
		}
	}
}

func TestKernelCacheIncompatible(t *testing.T) {
	g, sp := tinySetup(t)
	cube := numerics.NewCube(g.N(), 2, g.N())
	path := filepath.Join(t.TempDir(), "kernel.bin")
	if err := WriteKernel(path, cube, g, 2, sp.Theta); err != nil {
		t.Fatal(err)
	}
	// A one percent grid change must be rejected.
	g2, err := ueg.NewGrid(g.Dx*1.01, g.Xmax)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ReadKernel(path, g2, 2, sp.Theta); !errors.Is(err, uegerr.ErrCacheIncompatible) {
		t.Fatalf("want incompatibility, got %v", err)
	}
	if _, err := ReadKernel(path, g, 3, sp.Theta); !errors.Is(err, uegerr.ErrCacheIncompatible) {
		t.Fatalf("nl mismatch: want incompatibility, got %v", err)
	}
}

func TestKernelCacheTruncated(t *testing.T) {
	g, sp := tinySetup(t)
	cube := numerics.NewCube(g.N(), 2, g.N())
	path := filepath.Join(t.TempDir(), "kernel.bin")
	if err := WriteKernel(path, cube, g, 2, sp.Theta); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(path)
	if err := os.WriteFile(path, raw[:len(raw)-16], 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadKernel(path, g, 2, sp.Theta); !errors.Is(err, uegerr.ErrCacheTruncated) {
		t.Fatalf("want truncation, got %v", err)
	}
	if err := os.WriteFile(path, append(raw, 0, 0, 0, 0), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadKernel(path, g, 2, sp.Theta); !errors.Is(err, uegerr.ErrCacheTruncated) {
		t.Fatalf("trailing data: want truncation, got %v", err)
	}
}

func TestSolverSmoke(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	in := tinyInput()
	in.Theory = "QSTLS"
	s := New(&in, scheme.QSTLS, clog.Discard())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Solve(); err != nil {
		t.Fatal(err)
	}
	b := s.Base
	for i, v := range b.Ssf {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("S not finite at %d", i)
		}
		if v < -0.5 || v > 2.5 {
			t.Fatalf("S out of range at %d: %v", i, v)
		}
	}
	// The kernel cache must now exist and a second solver must load it.
	if _, err := os.Stat(DefaultKernelPath(b.SP.Theta, in.NL)); err != nil {
		t.Fatalf("kernel cache missing: %v", err)
	}
	s2 := New(&in, scheme.QSTLS, clog.Discard())
	if err := s2.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s2.EnsureFixedKernel(); err != nil {
		t.Fatal(err)
	}
	a, c := s.Fixed.Raw(), s2.Fixed.Raw()
	for i := range a {
		if a[i] != c[i] {
			t.Fatalf("cached kernel differs at %d", i)
		}
	}
}

func TestZeroCouplingMatchesHF(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	in := tinyInput()
	in.Rs = 0
	in.Theory = "QSTLS"
	s := New(&in, scheme.QSTLS, clog.Discard())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Solve(); err != nil {
		t.Fatal(err)
	}
	b := s.Base
	for i := range b.Ssf {
		if math.Abs(b.Ssf[i]-b.SsfHF[i]) > 1e-10 {
			t.Fatalf("rs=0: S != S_HF at %d", i)
		}
	}
}
