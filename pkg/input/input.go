// input.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

// Package input defines the record shared by every entry point, its
// defaults and validation, the YAML config surface and the packed
// binary codec used inside restart files.
package input

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"goueg/pkg/scheme"
	"goueg/pkg/uegerr"

	"gopkg.in/yaml.v3"
)

// NoFile marks an unset file option.
const NoFile = "NO_FILE"

// Input is the full input record. Zero values are not meaningful;
// construct with Default and override.
type Input struct {
	Theory string `yaml:"theory"`
	Mode   string `yaml:"mode"`

	Theta float64 `yaml:"theta"`
	Rs    float64 `yaml:"rs"`
	Mu    float64 `yaml:"-"` // root of the normalization condition
	MuLo  float64 `yaml:"muLo"`
	MuHi  float64 `yaml:"muHi"`

	Dx   float64 `yaml:"dx"`
	Xmax float64 `yaml:"xmax"`
	NL   int     `yaml:"nl"`

	NIter    int     `yaml:"iter"`
	ErrMin   float64 `yaml:"minErr"`
	AMix     float64 `yaml:"mix"`
	NThreads int     `yaml:"threads"`

	IetMapping    string `yaml:"ietMapping"`
	StlsGuessFile string `yaml:"stlsGuessFile"`

	QstlsGuessFile    string `yaml:"qstlsGuessFile"`
	QstlsFixedFile    string `yaml:"qstlsFixedFile"`
	QstlsIetFixedFile string `yaml:"qstlsIetFixedFile"`
	QstlsIetStatic    int    `yaml:"qstlsIetStatic"`

	VsDrs        float64 `yaml:"vsDrs"`
	VsDt         float64 `yaml:"vsDt"`
	VsAlpha      float64 `yaml:"vsAlpha"`
	VsErrMin     float64 `yaml:"vsMinErr"`
	VsAMix       float64 `yaml:"vsMix"`
	VsSolveCsr   int     `yaml:"vsSolveCsr"`
	VsThermoFile string  `yaml:"vsThermoFile"`

	DynDW      float64 `yaml:"dynDw"`
	DynWmax    float64 `yaml:"dynWmax"`
	DynXTarget float64 `yaml:"dynXtarget"`
	DynAdrFile string  `yaml:"dynAdrFile"`

	GuessFile1 string `yaml:"guessFile1"`
	GuessFile2 string `yaml:"guessFile2"`

	IntErr float64 `yaml:"intErr"` // relative accuracy of the adaptive quadratures
}

// Default returns the record with the documented default values.
func Default() Input {
	return Input{
		Theory:            "STLS",
		Mode:              "static",
		Theta:             1.0,
		Rs:                1.0,
		MuLo:              -10,
		MuHi:              10,
		Dx:                0.1,
		Xmax:              20,
		NL:                128,
		NIter:             1000,
		ErrMin:            1e-5,
		AMix:              0.1,
		NThreads:          1,
		IetMapping:        "standard",
		StlsGuessFile:     NoFile,
		QstlsGuessFile:    NoFile,
		QstlsFixedFile:    NoFile,
		QstlsIetFixedFile: NoFile,
		QstlsIetStatic:    0,
		VsDrs:             0.01,
		VsDt:              0.01,
		VsAlpha:           0.5,
		VsErrMin:          1e-3,
		VsAMix:            1.0,
		VsSolveCsr:        1,
		VsThermoFile:      NoFile,
		DynDW:             0.1,
		DynWmax:           20.0,
		DynXTarget:        1.0,
		DynAdrFile:        NoFile,
		GuessFile1:        NoFile,
		GuessFile2:        NoFile,
		IntErr:            1e-5,
	}
}

// Nx is the number of wave-vector grid points.
func (in *Input) Nx() int { return int(math.Floor(in.Xmax / in.Dx)) }

// NW is the number of frequency grid points.
func (in *Input) NW() int { return int(math.Floor(in.DynWmax / in.DynDW)) }

// Check validates every field, reporting the first violation with its
// field name.
func (in *Input) Check() error {
	if _, err := scheme.ParseTheory(in.Theory); err != nil {
		return err
	}
	if _, err := scheme.ParseMode(in.Mode); err != nil {
		return err
	}
	if _, err := scheme.ParseMapping(in.IetMapping); err != nil {
		return err
	}
	if in.Dx <= 0 {
		return uegerr.Inputf("dx", "the wave-vector grid resolution must be larger than zero")
	}
	if in.Xmax <= 0 {
		return uegerr.Inputf("xmax", "the wave-vector grid cutoff must be larger than zero")
	}
	if in.Xmax <= in.Dx {
		return uegerr.Inputf("xmax", "the wave-vector grid cutoff must be larger than the resolution")
	}
	if in.NIter < 0 {
		return uegerr.Inputf("iter", "the number of iterations must be non-negative")
	}
	if in.ErrMin <= 0 {
		return uegerr.Inputf("min-err", "the minimum error for convergence must be larger than zero")
	}
	if in.AMix <= 0 || in.AMix > 1 {
		return uegerr.Inputf("mix", "the mixing parameter must be in (0, 1]")
	}
	if in.NL <= 0 {
		return uegerr.Inputf("nl", "the number of Matsubara frequencies must be larger than zero")
	}
	if in.NThreads <= 0 {
		return uegerr.Inputf("threads", "the number of threads must be larger than zero")
	}
	if in.Rs < 0 {
		return uegerr.Inputf("rs", "the coupling parameter must be non-negative")
	}
	if in.Theta < 0 {
		return uegerr.Inputf("theta", "the degeneracy parameter must be non-negative")
	}
	if in.MuHi <= in.MuLo {
		return uegerr.Inputf("mu-guess", "the chemical potential bracket is empty")
	}
	if in.QstlsIetStatic != 0 && in.QstlsIetStatic != 1 {
		return uegerr.Inputf("qstls-iet-static", "must be 0 or 1")
	}
	if in.VsDrs <= 0 {
		return uegerr.Inputf("vs-drs", "the coupling grid resolution must be larger than zero")
	}
	if in.VsDt <= 0 {
		return uegerr.Inputf("vs-dt", "the degeneracy grid resolution must be larger than zero")
	}
	if in.VsAlpha <= 0 {
		return uegerr.Inputf("vs-alpha", "the free parameter must be larger than zero")
	}
	if in.VsErrMin <= 0 {
		return uegerr.Inputf("vs-min-err", "the minimum error for convergence must be larger than zero")
	}
	if in.VsAMix <= 0 {
		return uegerr.Inputf("vs-mix", "the mixing parameter must be larger than zero")
	}
	if in.VsSolveCsr != 0 && in.VsSolveCsr != 1 {
		return uegerr.Inputf("vs-solve-csr", "must be 0 or 1")
	}
	if in.DynDW <= 0 {
		return uegerr.Inputf("dyn-dw", "the frequency grid resolution must be larger than zero")
	}
	if in.DynWmax <= 0 {
		return uegerr.Inputf("dyn-wmax", "the frequency grid cutoff must be larger than zero")
	}
	if in.DynXTarget <= 0 {
		return uegerr.Inputf("dyn-xtarget", "the target wave-vector must be larger than zero")
	}
	if in.IntErr <= 0 {
		return uegerr.Inputf("int-err", "the quadrature accuracy must be larger than zero")
	}
	return nil
}

// Load reads the record from a YAML file on top of the defaults and
// validates it.
func Load(path string) (Input, error) {
	in := Default()
	f, err := os.Open(path)
	if err != nil {
		return in, fmt.Errorf("input: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(bufio.NewReader(f))
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("input: decode %s: %w", path, err)
	}
	if err := in.Check(); err != nil {
		return in, err
	}
	return in, nil
}

// Print writes the record through the given printf-style function, one
// field per line.
func (in *Input) Print(pf func(format string, v ...any)) {
	pf("------ Input parameters -------------")
	pf("Theory: %s", in.Theory)
	pf("Mode: %s", in.Mode)
	pf("Quantum degeneracy parameter: %f", in.Theta)
	pf("Quantum coupling parameter: %f", in.Rs)
	pf("Wave-vector resolution: %f", in.Dx)
	pf("Wave-vector cutoff: %f", in.Xmax)
	pf("Number of Matsubara frequencies: %d", in.NL)
	pf("Maximum number of iterations: %d", in.NIter)
	pf("Error for convergence: %.5e", in.ErrMin)
	pf("Mixing parameter: %f", in.AMix)
	pf("Chemical potential (low and high bound): %f %f", in.MuLo, in.MuHi)
	pf("Number of threads: %d", in.NThreads)
	pf("IET mapping: %s", in.IetMapping)
	pf("File for initial guess (STLS): %s", in.StlsGuessFile)
	pf("File for initial guess (qSTLS): %s", in.QstlsGuessFile)
	pf("File for fixed component (qSTLS): %s", in.QstlsFixedFile)
	pf("File for fixed component (qSTLS-IET): %s", in.QstlsIetFixedFile)
	pf("Static approximation (qSTLS-IET): %d", in.QstlsIetStatic)
	pf("Coupling parameter resolution (VS): %f", in.VsDrs)
	pf("Degeneracy parameter resolution (VS): %f", in.VsDt)
	pf("Free parameter (VS): %f", in.VsAlpha)
	pf("File for thermodynamic integration (VS): %s", in.VsThermoFile)
	pf("Error for convergence (VS): %f", in.VsErrMin)
	pf("Mixing parameter (VS): %f", in.VsAMix)
	pf("Enforce CSR (VS): %d", in.VsSolveCsr)
	pf("Frequency resolution (dynamic): %f", in.DynDW)
	pf("Frequency cutoff (dynamic): %f", in.DynWmax)
	pf("Target wave-vector (dynamic): %f", in.DynXTarget)
	pf("-------------------------------------")
}
