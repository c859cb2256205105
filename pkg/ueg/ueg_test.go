// ueg_test.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------
package ueg

import (
	"errors"
	"math"
	"testing"

	"goueg/pkg/scheme"
	"goueg/pkg/uegerr"
)

func testStatePoint(t *testing.T, rs, theta float64) StatePoint {
	t.Helper()
	mu, err := ChemicalPotential(theta, -10, 10)
	if err != nil {
		t.Fatal(err)
	}
	return StatePoint{Rs: rs, Theta: theta, Mu: mu}
}

func TestGrid(t *testing.T) {
	g, err := NewGrid(0.1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if g.N() != 200 {
		t.Fatalf("N = %d, want 200", g.N())
	}
	if math.Abs(g.X[0]-0.05) > 1e-15 {
		t.Fatalf("x[0] = %v, want dx/2", g.X[0])
	}
	for i := 1; i < g.N(); i++ {
		if math.Abs(g.X[i]-g.X[i-1]-0.1) > 1e-12 {
			t.Fatalf("uneven spacing at %d", i)
		}
	}
}

func TestGridInvalid(t *testing.T) {
	if _, err := NewGrid(0, 10); !errors.Is(err, uegerr.ErrInputInvalid) {
		t.Fatalf("dx=0: got %v", err)
	}
	if _, err := NewGrid(1, 0.5); !errors.Is(err, uegerr.ErrInputInvalid) {
		t.Fatalf("xmax<dx: got %v", err)
	}
}

func TestChemicalPotentialResidual(t *testing.T) {
	for _, theta := range []float64{0.5, 1.0, 2.0} {
		mu, err := ChemicalPotential(theta, -10, 10)
		if err != nil {
			t.Fatal(err)
		}
		res, err := NormalizationResidual(mu, theta)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(res) > 1e-8 {
			t.Fatalf("theta=%v: residual %v", theta, res)
		}
	}
}

func TestChemicalPotentialValue(t *testing.T) {
	mu, err := ChemicalPotential(1.0, -10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if mu < -0.15 || mu > 0.05 {
		t.Fatalf("mu = %v out of the expected neighborhood", mu)
	}
}

func TestChemicalPotentialBracketFailure(t *testing.T) {
	_, err := ChemicalPotential(1.0, 5, 10)
	if !errors.Is(err, uegerr.ErrChempotBracketFailed) {
		t.Fatalf("want bracket failure, got %v", err)
	}
}

func TestIdrPositivityAndDecay(t *testing.T) {
	g, _ := NewGrid(0.2, 10)
	sp := testStatePoint(t, 1.0, 1.0)
	nl := 16
	phi := ComputeIdr(g, nl, sp)
	for _, i := range []int{0, g.N() / 2, g.N() - 1} {
		if phi.At(i, 0) <= 0 {
			t.Fatalf("phi(x=%v, 0) = %v, want > 0", g.X[i], phi.At(i, 0))
		}
	}
	i := g.N() / 4
	if phi.At(i, nl-1) >= phi.At(i, 1) {
		t.Fatalf("phi not decaying in l: %v vs %v", phi.At(i, nl-1), phi.At(i, 1))
	}
	if math.Abs(phi.At(i, nl-1)) > 0.2*math.Abs(phi.At(i, 0)) {
		t.Fatalf("phi(l max) too large: %v vs %v", phi.At(i, nl-1), phi.At(i, 0))
	}
}

func TestSsfHFLargeWaveVector(t *testing.T) {
	theta := 1.0
	g, _ := NewGrid(0.1, 20)
	sp := testStatePoint(t, 1.0, theta)
	shf := ComputeSsfHF(g, sp)
	i := g.NearestIndex(10 * math.Sqrt(theta))
	if math.Abs(shf[i]-1.0) > 1e-3 {
		t.Fatalf("S_HF(10 sqrt(theta)) = %v, want 1 within 1e-3", shf[i])
	}
}

func TestSsfDegeneratesToHFAtZeroCoupling(t *testing.T) {
	g, _ := NewGrid(0.2, 10)
	sp := testStatePoint(t, 0.0, 1.0)
	phi := ComputeIdr(g, 8, sp)
	shf := ComputeSsfHF(g, sp)
	ssf := make([]float64, g.N())
	gg := make([]float64, g.N())
	ComputeSsf(ssf, shf, StaticLocalField(gg), phi, g, sp)
	for i := range ssf {
		if math.Abs(ssf[i]-shf[i]) > 1e-10 {
			t.Fatalf("rs=0: S != S_HF at %d: %v vs %v", i, ssf[i], shf[i])
		}
	}
}

func TestSsfLargeWaveVectorLimit(t *testing.T) {
	g, _ := NewGrid(0.1, 20)
	sp := testStatePoint(t, 1.0, 1.0)
	phi := ComputeIdr(g, 64, sp)
	shf := ComputeSsfHF(g, sp)
	ssf := make([]float64, g.N())
	gg := make([]float64, g.N())
	ComputeSsf(ssf, shf, StaticLocalField(gg), phi, g, sp)
	if math.Abs(ssf[g.N()-1]-1.0) > 1e-2 {
		t.Fatalf("S(xmax) = %v, want close to 1", ssf[g.N()-1])
	}
}

func TestSlfcKernelDiagonal(t *testing.T) {
	// The diagonal carries its own analytic value y^2 (S-1).
	x := 1.3
	s := 0.5
	if got, want := SlfcKernel(x, x, s), x*x*(s-1.0); math.Abs(got-want) > 1e-14 {
		t.Fatalf("diagonal kernel = %v, want %v", got, want)
	}
	// Off the diagonal the logarithmic branch applies and stays finite.
	if v := SlfcKernel(1.0, 2.0, 0.5); math.IsNaN(v) || math.IsInf(v, 0) {
		t.Fatalf("kernel not finite off the diagonal: %v", v)
	}
	if SlfcKernel(0, 1.0, 0.5) != 0 || SlfcKernel(1.0, 0, 0.5) != 0 {
		t.Fatal("kernel must vanish on the axes")
	}
}

func TestBridgeHNCZero(t *testing.T) {
	g, _ := NewGrid(0.5, 5)
	bf := make([]float64, g.N())
	if err := ComputeBridge(bf, g, 10, 1, scheme.BridgeHNC, scheme.MapStandard, 1e-6); err != nil {
		t.Fatal(err)
	}
	for _, v := range bf {
		if v != 0 {
			t.Fatal("HNC bridge must vanish")
		}
	}
}

func TestBridgeIOIFiniteAndDecaying(t *testing.T) {
	g, _ := NewGrid(0.5, 10)
	bf := make([]float64, g.N())
	if err := ComputeBridge(bf, g, 20, 1, scheme.BridgeIOI, scheme.MapStandard, 1e-6); err != nil {
		t.Fatal(err)
	}
	for i, v := range bf {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("bridge not finite at %d", i)
		}
	}
	if math.Abs(bf[g.N()-1]) > math.Abs(bf[0]) {
		t.Fatalf("bridge does not decay: %v vs %v", bf[g.N()-1], bf[0])
	}
}

func TestBridgeWeakCouplingVanishes(t *testing.T) {
	g, _ := NewGrid(0.5, 5)
	bf := make([]float64, g.N())
	if err := ComputeBridge(bf, g, 0, 1, scheme.BridgeIOI, scheme.MapStandard, 1e-6); err != nil {
		t.Fatal(err)
	}
	for _, v := range bf {
		if v != 0 {
			t.Fatal("bridge must vanish at rs = 0")
		}
	}
}

func TestCouplingGammaMappings(t *testing.T) {
	rs, theta := 2.0, 0.5
	std := CouplingGamma(rs, theta, scheme.MapStandard)
	sq := CouplingGamma(rs, theta, scheme.MapSqrt)
	lin := CouplingGamma(rs, theta, scheme.MapLinear)
	if std <= 0 || sq <= 0 || lin <= 0 {
		t.Fatal("mappings must be positive")
	}
	if std == sq || std == lin || sq == lin {
		t.Fatal("mappings must differ away from their matching points")
	}
}

func TestEsaBounds(t *testing.T) {
	g, _ := NewGrid(0.1, 20)
	sp := testStatePoint(t, 1.0, 1.0)
	shf := ComputeSsfHF(g, sp)
	gg := make([]float64, g.N())
	ComputeEsa(gg, shf, g)
	if math.Abs(gg[0]) > 0.1 {
		t.Fatalf("ESA local field must vanish at small x, got %v", gg[0])
	}
	last := gg[g.N()-1]
	if last <= 0 || last > 1.5 {
		t.Fatalf("ESA large-x limit out of range: %v", last)
	}
}

func TestInternalEnergySign(t *testing.T) {
	g, _ := NewGrid(0.1, 20)
	sp := testStatePoint(t, 1.0, 1.0)
	phi := ComputeIdr(g, 64, sp)
	shf := ComputeSsfHF(g, sp)
	ssf := make([]float64, g.N())
	gg := make([]float64, g.N())
	ComputeSsf(ssf, shf, StaticLocalField(gg), phi, g, sp)
	u := InternalEnergy(ssf, g, sp.Rs)
	if u >= 0 {
		t.Fatalf("exchange energy must be negative, got %v", u)
	}
	if u < -1 {
		t.Fatalf("exchange energy unphysically large: %v", u)
	}
}
