// numerics_test.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------
package numerics

import (
	"errors"
	"math"
	"testing"

	"goueg/pkg/uegerr"
)

func TestAdaptiveSmooth(t *testing.T) {
	cases := []struct {
		name string
		f    func(float64) float64
		a, b float64
		want float64
	}{
		{"quadratic", func(x float64) float64 { return x * x }, 0, 1, 1.0 / 3.0},
		{"cosine", math.Cos, 0, math.Pi / 2, 1.0},
		{"gaussian", func(x float64) float64 { return math.Exp(-x * x) }, 0, 8, math.Sqrt(math.Pi) / 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := Adaptive(c.f, c.a, c.b, 1e-10)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(res.Value-c.want) > 1e-8 {
				t.Fatalf("got %v, want %v", res.Value, c.want)
			}
		})
	}
}

func TestAdaptiveEndpointSingularity(t *testing.T) {
	res, err := Adaptive(func(x float64) float64 { return 1 / math.Sqrt(x) }, 0, 1, 1e-8)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Value-2.0) > 1e-5 {
		t.Fatalf("got %v, want 2", res.Value)
	}
}

func TestAdaptiveReversedLimits(t *testing.T) {
	res, err := Adaptive(func(x float64) float64 { return x }, 1, 0, 1e-10)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Value+0.5) > 1e-10 {
		t.Fatalf("got %v, want -0.5", res.Value)
	}
}

func TestAdaptiveNaN(t *testing.T) {
	_, err := Adaptive(func(x float64) float64 { return math.NaN() }, 0, 1, 1e-8)
	if !errors.Is(err, uegerr.ErrNaNEncountered) {
		t.Fatalf("want NaN error, got %v", err)
	}
}

func TestNested(t *testing.T) {
	// int_0^1 dx x int_0^x dy y = int_0^1 x^3/2 dx = 1/8.
	res, err := Nested(
		func(x float64) float64 { return x },
		func(x, y float64) float64 { return y },
		0, 1,
		func(float64) float64 { return 0 },
		func(x float64) float64 { return x },
		1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Value-0.125) > 1e-7 {
		t.Fatalf("got %v, want 0.125", res.Value)
	}
}

func TestFourierSine(t *testing.T) {
	// int_0^inf e^(-q) sin(q r) dq = r / (1 + r^2).
	for _, r := range []float64{0.5, 1.0, 3.0} {
		res, err := FourierSine(func(q float64) float64 { return math.Exp(-q) }, r, 1e-9)
		if err != nil {
			t.Fatal(err)
		}
		want := r / (1 + r*r)
		if math.Abs(res.Value-want) > 1e-7 {
			t.Fatalf("r=%v: got %v, want %v", r, res.Value, want)
		}
	}
}

func TestRootSolvers(t *testing.T) {
	f := func(x float64) float64 { return x*x - 2 }
	for _, solve := range []func() (float64, error){
		func() (float64, error) { return Bisect(f, 0, 2, 1e-12, 200) },
		func() (float64, error) { return Brent(f, 0, 2, 1e-12, 200) },
		func() (float64, error) { return Secant(f, 1, 2, 1e-12, 200) },
	} {
		x, err := solve()
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(x-math.Sqrt2) > 1e-8 {
			t.Fatalf("got %v, want sqrt(2)", x)
		}
	}
}

func TestRootNotBracketed(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	if _, err := Bisect(f, -1, 1, 1e-10, 100); !errors.Is(err, uegerr.ErrRootNotBracketed) {
		t.Fatalf("bisect: want bracket error, got %v", err)
	}
	if _, err := Brent(f, -1, 1, 1e-10, 100); !errors.Is(err, uegerr.ErrRootNotBracketed) {
		t.Fatalf("brent: want bracket error, got %v", err)
	}
}

func TestInterp1D(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2*x + 1
	}
	sp, err := NewInterp1D(xs, ys)
	if err != nil {
		t.Fatal(err)
	}
	if v := sp.Eval(2.5); math.Abs(v-6.0) > 1e-10 {
		t.Fatalf("interior: got %v, want 6", v)
	}
	// Clamped beyond the range.
	if v := sp.Eval(10); math.Abs(v-9.0) > 1e-10 {
		t.Fatalf("clamp high: got %v, want 9", v)
	}
	if v := sp.Eval(-3); math.Abs(v-1.0) > 1e-10 {
		t.Fatalf("clamp low: got %v, want 1", v)
	}
}

func TestInterp2D(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{0, 1, 2, 3}
	zs := make([]float64, len(xs)*len(ys))
	for i, x := range xs {
		for j, y := range ys {
			zs[i*len(ys)+j] = x + 2*y
		}
	}
	sp, err := NewInterp2D(xs, ys, zs)
	if err != nil {
		t.Fatal(err)
	}
	v, err := sp.Eval(1.5, 2.5)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(v-6.5) > 1e-9 {
		t.Fatalf("got %v, want 6.5", v)
	}
}

func TestCubeLayout(t *testing.T) {
	c := NewCube(2, 3, 4)
	v := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 4; k++ {
				c.Set(i, j, k, v)
				v++
			}
		}
	}
	raw := c.Raw()
	for idx, want := range raw {
		if want != float64(idx) {
			t.Fatalf("layout mismatch at %d: %v", idx, want)
		}
	}
	row := c.Row(1, 2)
	if len(row) != 4 || row[0] != c.At(1, 2, 0) {
		t.Fatal("row view mismatch")
	}
}
