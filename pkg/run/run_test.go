// run_test.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------
package run

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"testing"

	"goueg/pkg/clog"
	"goueg/pkg/input"
	"goueg/pkg/store"
	"goueg/pkg/uegerr"
)

func inTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })
}

func tinyStatic() input.Input {
	in := input.Default()
	in.Dx = 0.5
	in.Xmax = 4
	in.NL = 4
	in.NIter = 200
	in.ErrMin = 1e-4
	in.AMix = 0.5
	in.IntErr = 1e-3
	return in
}

func TestStaticRPAWritesOutputsAndRestart(t *testing.T) {
	inTempDir(t)
	in := tinyStatic()
	in.Theory = "RPA"
	if err := Run(&in, clog.Discard()); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"ssf_RPA.dat", "slfc_RPA.dat", store.RestartPath} {
		if _, err := os.Stat(f); err != nil {
			t.Fatalf("missing %s: %v", f, err)
		}
	}
	first, err := os.ReadFile("ssf_RPA.dat")
	if err != nil {
		t.Fatal(err)
	}

	// Restarting from the binary blob reproduces the result bit-exactly.
	in2 := tinyStatic()
	in2.Theory = "RPA"
	in2.StlsGuessFile = store.RestartPath
	if err := Run(&in2, clog.Discard()); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile("ssf_RPA.dat")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("restarted run differs from the original")
	}
}

func TestStaticSTLSWritesTheoryNamedFiles(t *testing.T) {
	inTempDir(t)
	in := tinyStatic()
	in.Theory = "STLS"
	if err := Run(&in, clog.Discard()); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"ssf_STLS.dat", "slfc_STLS.dat"} {
		if _, err := os.Stat(f); err != nil {
			t.Fatalf("missing %s: %v", f, err)
		}
	}
}

func TestGuessModeUnimplemented(t *testing.T) {
	inTempDir(t)
	in := tinyStatic()
	in.Mode = "guess"
	err := Run(&in, clog.Discard())
	if !errors.Is(err, uegerr.ErrUnimplemented) {
		t.Fatalf("want unimplemented, got %v", err)
	}
}

func TestDynamicRefusesGroundState(t *testing.T) {
	inTempDir(t)
	in := tinyStatic()
	in.Mode = "dynamic"
	in.Theta = 0
	err := Run(&in, clog.Discard())
	if !errors.Is(err, uegerr.ErrInputInvalid) {
		t.Fatalf("want input error, got %v", err)
	}
}

func TestDynamicRPA(t *testing.T) {
	inTempDir(t)
	in := tinyStatic()
	in.Theory = "RPA"
	in.Mode = "dynamic"
	in.DynDW = 0.5
	in.DynWmax = 2
	in.DynXTarget = 1.0
	if err := Run(&in, clog.Discard()); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(store.DsfPath(in.Rs, in.Theta, "RPA"))
	if err != nil {
		t.Fatal(err)
	}
	lines := bytes.Split(bytes.TrimSpace(raw), []byte("\n"))
	if len(lines) != in.NW() {
		t.Fatalf("unexpected number of frequency rows")
	}
	// The zero-frequency value follows the analytic limit and must be
	// strictly positive at a finite wave-vector.
	var w0, s0 float64
	if _, err := fmt.Sscanf(string(lines[0]), "%e %e", &w0, &s0); err != nil {
		t.Fatal(err)
	}
	if w0 != 0 || s0 <= 0 {
		t.Fatalf("S(x, 0) = %v at w = %v, want positive at zero frequency", s0, w0)
	}
}

func TestDynamicQstlsRestartScenario(t *testing.T) {
	inTempDir(t)
	base := tinyStatic()
	base.Theory = "QSTLS-HNC"
	base.Mode = "dynamic"
	base.NL = 2
	base.NIter = 3
	base.DynDW = 1.0
	base.DynWmax = 3
	base.DynXTarget = 1.0

	in1 := base
	if err := Run(&in1, clog.Discard()); err != nil {
		t.Fatal(err)
	}
	cache := store.DynAdrPath(base.Rs, base.Theta, "QSTLS-HNC")
	if _, err := os.Stat(cache); err != nil {
		t.Fatalf("missing cache %s: %v", cache, err)
	}
	first, err := os.ReadFile(store.DsfPath(base.Rs, base.Theta, "QSTLS-HNC"))
	if err != nil {
		t.Fatal(err)
	}

	in2 := base
	in2.DynAdrFile = cache
	if err := Run(&in2, clog.Discard()); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(store.DsfPath(base.Rs, base.Theta, "QSTLS-HNC"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("cached rerun differs from the original")
	}

	// A one percent grid change must be rejected against the old cache.
	in3 := base
	in3.Dx *= 1.01
	in3.DynAdrFile = cache
	err = Run(&in3, clog.Discard())
	if !errors.Is(err, uegerr.ErrCacheIncompatible) {
		t.Fatalf("want cache incompatibility, got %v", err)
	}
}
