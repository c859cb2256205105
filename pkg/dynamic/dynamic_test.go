// dynamic_test.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------
package dynamic

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"goueg/pkg/clog"
	"goueg/pkg/input"
	"goueg/pkg/ueg"
	"goueg/pkg/uegerr"
)

func tinyEngine(t *testing.T) *Engine {
	t.Helper()
	in := input.Default()
	in.Dx = 0.5
	in.Xmax = 3
	in.NL = 2
	in.DynDW = 1.0
	in.DynWmax = 3.0
	in.NIter = 2
	in.ErrMin = 1e-4
	in.AMix = 0.5
	in.IntErr = 1e-3
	g, err := ueg.NewGrid(in.Dx, in.Xmax)
	if err != nil {
		t.Fatal(err)
	}
	mu, err := ueg.ChemicalPotential(in.Theta, -10, 10)
	if err != nil {
		t.Fatal(err)
	}
	sp := ueg.StatePoint{Rs: in.Rs, Theta: in.Theta, Mu: mu}
	ssf := make([]float64, g.N())
	bf := make([]float64, g.N())
	for i := range ssf {
		// A plausible monotone structure factor.
		ssf[i] = 1.0 - math.Exp(-g.X[i])
	}
	return NewEngine(&in, clog.Discard(), g, sp, ssf, bf)
}

func TestFrequencyGrid(t *testing.T) {
	ws := FrequencyGrid(0.1, 20)
	if len(ws) != 200 {
		t.Fatalf("len = %d, want 200", len(ws))
	}
	if ws[0] != 0 {
		t.Fatalf("ws[0] = %v, want 0", ws[0])
	}
	if math.Abs(ws[1]-0.1) > 1e-15 {
		t.Fatalf("ws[1] = %v", ws[1])
	}
}

func TestIdrImClosedForm(t *testing.T) {
	mu, err := ueg.ChemicalPotential(1.0, -10, 10)
	if err != nil {
		t.Fatal(err)
	}
	sp := ueg.StatePoint{Rs: 1, Theta: 1, Mu: mu}
	if v := IdrIm(1.0, 0, sp); v != 0 {
		t.Fatalf("Im phi at w=0 must vanish, got %v", v)
	}
	if v := IdrIm(0, 1.0, sp); v != 0 {
		t.Fatalf("Im phi at x=0 must vanish, got %v", v)
	}
	if v := IdrIm(1.0, 1.0, sp); v <= 0 {
		t.Fatalf("Im phi must be positive at w>0, got %v", v)
	}
}

func TestIdrRePositiveAtZeroFrequency(t *testing.T) {
	mu, err := ueg.ChemicalPotential(1.0, -10, 10)
	if err != nil {
		t.Fatal(err)
	}
	sp := ueg.StatePoint{Rs: 1, Theta: 1, Mu: mu}
	got, err := IdrRe(1.0, 0, sp, 10, 1e-8)
	if err != nil {
		t.Fatal(err)
	}
	if got <= 0 {
		t.Fatalf("static limit must be positive, got %v", got)
	}
}

func TestDsfZeroWaveVector(t *testing.T) {
	sp := ueg.StatePoint{Rs: 1, Theta: 1, Mu: 0}
	ws := []float64{0, 1, 2}
	one := []float64{1, 1, 1}
	out := Dsf(ws, one, one, one, one, 0, 0, sp)
	for j, v := range out {
		if v != 0 {
			t.Fatalf("S(0, w) must vanish, got %v at %d", v, j)
		}
	}
}

func TestEngineComputeAndCacheRoundTrip(t *testing.T) {
	e := tinyEngine(t)
	path := filepath.Join(t.TempDir(), "adr.bin")
	if err := e.Compute(path); err != nil {
		t.Fatal(err)
	}
	for _, m := range []interface{ At(int, int) float64 }{e.PhiRe, e.PhiIm, e.PsiRe, e.PsiIm} {
		for i := 0; i < e.Grid.N(); i++ {
			for j := 0; j < len(e.WS); j++ {
				if math.IsNaN(m.At(i, j)) || math.IsInf(m.At(i, j), 0) {
					t.Fatalf("response not finite at (%d,%d)", i, j)
				}
			}
		}
	}

	// A second engine restarted from the cache reproduces the surfaces.
	e2 := tinyEngine(t)
	e2.In.DynAdrFile = path
	path2 := filepath.Join(t.TempDir(), "adr2.bin")
	if err := e2.Compute(path2); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < e.Grid.N(); i++ {
		for j := 0; j < len(e.WS); j++ {
			if e.PsiRe.At(i, j) != e2.PsiRe.At(i, j) {
				t.Fatalf("psi_re differs at (%d,%d)", i, j)
			}
			if e.PhiIm.At(i, j) != e2.PhiIm.At(i, j) {
				t.Fatalf("phi_im differs at (%d,%d)", i, j)
			}
		}
	}

	// Targets interpolate without error and stay finite.
	a, b, c, d, err := e.TargetColumns(1.0)
	if err != nil {
		t.Fatal(err)
	}
	for j := range e.WS {
		for _, col := range [][]float64{a, b, c, d} {
			if math.IsNaN(col[j]) {
				t.Fatalf("target column NaN at %d", j)
			}
		}
	}
}

func TestEngineCacheIncompatible(t *testing.T) {
	e := tinyEngine(t)
	path := filepath.Join(t.TempDir(), "adr.bin")
	if err := e.WriteFixed(path); err != nil {
		t.Fatal(err)
	}
	e2 := tinyEngine(t)
	e2.Grid.Dx *= 1.01
	if err := e2.ReadFixed(path); !errors.Is(err, uegerr.ErrCacheIncompatible) {
		t.Fatalf("want incompatibility, got %v", err)
	}
	e3 := tinyEngine(t)
	e3.SP.Rs += 0.5
	if err := e3.ReadFixed(path); !errors.Is(err, uegerr.ErrCacheIncompatible) {
		t.Fatalf("state point: want incompatibility, got %v", err)
	}
}

func TestEngineCacheTruncated(t *testing.T) {
	e := tinyEngine(t)
	path := filepath.Join(t.TempDir(), "adr.bin")
	if err := e.WriteFixed(path); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(path)
	if err := os.WriteFile(path, raw[:len(raw)-8], 0644); err != nil {
		t.Fatal(err)
	}
	if err := tinyEngine(t).ReadFixed(path); !errors.Is(err, uegerr.ErrCacheTruncated) {
		t.Fatalf("want truncation, got %v", err)
	}
	if err := os.WriteFile(path, append(raw, 1, 2, 3, 4), 0644); err != nil {
		t.Fatal(err)
	}
	if err := tinyEngine(t).ReadFixed(path); !errors.Is(err, uegerr.ErrCacheTruncated) {
		t.Fatalf("trailing data: want truncation, got %v", err)
	}
}

func TestEngineRefusesGroundState(t *testing.T) {
	e := tinyEngine(t)
	e.SP.Theta = 0
	err := e.Compute(filepath.Join(t.TempDir(), "adr.bin"))
	if !errors.Is(err, uegerr.ErrInputInvalid) {
		t.Fatalf("want input error, got %v", err)
	}
}
