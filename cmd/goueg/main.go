// main.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"goueg/pkg/clog"
	"goueg/pkg/input"
	"goueg/pkg/run"
	"goueg/pkg/uegerr"
)

func parsePair(s string, lo, hi *float64) error {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return fmt.Errorf("expected two comma-separated values, got %q", s)
	}
	v0, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return err
	}
	v1, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return err
	}
	*lo, *hi = v0, v1
	return nil
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, "goueg:", err)
		os.Exit(1)
	}
}

func realMain() error {
	in := input.Default()
	var configPath string
	var muGuess, guessFiles string
	var debugInput bool

	fs := flag.NewFlagSet("goueg", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "YAML file with the input record, applied before the other options")
	fs.Float64Var(&in.Theta, "Theta", in.Theta, "quantum degeneracy parameter")
	fs.Float64Var(&in.Rs, "rs", in.Rs, "quantum coupling parameter")
	fs.Float64Var(&in.Xmax, "xmax", in.Xmax, "cutoff for wave-vector grid")
	fs.Float64Var(&in.Dx, "dx", in.Dx, "resolution for wave-vector grid")
	fs.IntVar(&in.NL, "nl", in.NL, "number of Matsubara frequencies")
	fs.IntVar(&in.NIter, "iter", in.NIter, "maximum number of iterations")
	fs.Float64Var(&in.ErrMin, "min-err", in.ErrMin, "minimum error for convergence in the iterations")
	fs.Float64Var(&in.AMix, "mix", in.AMix, "mixing parameter for iterative solution")
	fs.StringVar(&muGuess, "mu-guess", "", "initial bracket for the chemical potential, \"lo,hi\"")
	fs.StringVar(&in.StlsGuessFile, "stls-guess", in.StlsGuessFile, "restart file for the stls and stls-iet schemes")
	fs.StringVar(&in.QstlsGuessFile, "qstls-guess", in.QstlsGuessFile, "restart file for the qstls and qstls-iet schemes")
	fs.StringVar(&in.QstlsFixedFile, "qstls-fix", in.QstlsFixedFile, "fixed kernel file for the qstls scheme")
	fs.StringVar(&in.QstlsIetFixedFile, "qstls-iet-fix", in.QstlsIetFixedFile, "fixed kernel file for the qstls-iet scheme")
	fs.IntVar(&in.QstlsIetStatic, "qstls-iet-static", in.QstlsIetStatic, "static approximation for the qstls-iet auxiliary response (0 or 1)")
	fs.StringVar(&in.Theory, "theory", in.Theory, "scheme to be solved")
	fs.IntVar(&in.NThreads, "omp", in.NThreads, "number of worker threads")
	fs.BoolVar(&debugInput, "debug-input", false, "print the input record")
	fs.StringVar(&in.Mode, "mode", in.Mode, "working mode (static, dynamic, guess)")
	fs.StringVar(&guessFiles, "guess-files", "", "two text files used to build binary restart files, \"f1,f2\"")
	fs.StringVar(&in.IetMapping, "iet-mapping", in.IetMapping, "state point mapping for the iet schemes (standard, sqrt, linear)")
	fs.Float64Var(&in.VsDrs, "vs-drs", in.VsDrs, "coupling grid resolution for the vs schemes")
	fs.Float64Var(&in.VsDt, "vs-dt", in.VsDt, "degeneracy grid resolution for the vs schemes")
	fs.Float64Var(&in.VsAlpha, "vs-alpha", in.VsAlpha, "initial guess for the vs free parameter")
	fs.StringVar(&in.VsThermoFile, "vs-thermo-file", in.VsThermoFile, "thermodynamic integration table for the vs schemes")
	fs.Float64Var(&in.VsErrMin, "vs-min-err", in.VsErrMin, "minimum error for convergence of the vs free parameter")
	fs.Float64Var(&in.VsAMix, "vs-mix", in.VsAMix, "mixing parameter for the vs free parameter")
	fs.IntVar(&in.VsSolveCsr, "vs-solve-csr", in.VsSolveCsr, "enforce the compressibility sum rule (0 or 1)")
	fs.Float64Var(&in.DynDW, "dyn-dw", in.DynDW, "frequency grid resolution for the dynamic properties")
	fs.Float64Var(&in.DynWmax, "dyn-wmax", in.DynWmax, "frequency grid cutoff for the dynamic properties")
	fs.Float64Var(&in.DynXTarget, "dyn-xtarget", in.DynXTarget, "wave-vector for the dynamic properties")
	fs.StringVar(&in.DynAdrFile, "dyn-adr", in.DynAdrFile, "density response restart file for the dynamic qstls schemes")
	fs.Float64Var(&in.IntErr, "int-err", in.IntErr, "relative accuracy of the adaptive quadratures")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected positional arguments: %v", fs.Args())
	}

	if configPath != "" {
		loaded, err := input.Load(configPath)
		if err != nil {
			return err
		}
		in = loaded
		// Flags given alongside the config win.
		if err := fs.Parse(os.Args[1:]); err != nil {
			return err
		}
	}
	if muGuess != "" {
		if err := parsePair(muGuess, &in.MuLo, &in.MuHi); err != nil {
			return fmt.Errorf("%w: mu-guess: %v", uegerr.ErrInputInvalid, err)
		}
	}
	if guessFiles != "" {
		parts := strings.Split(guessFiles, ",")
		if len(parts) != 2 {
			return fmt.Errorf("%w: guess-files: expected two comma-separated names", uegerr.ErrInputInvalid)
		}
		in.GuessFile1, in.GuessFile2 = parts[0], parts[1]
	}

	runtime.GOMAXPROCS(in.NThreads)
	log := clog.New(os.Stdout)
	if debugInput {
		in.Print(func(format string, v ...any) { log.Output.Printf(format, v...) })
	}

	log.Output.Println("------ Parameters used in the solution -------------")
	log.Output.Printf("Quantum degeneracy parameter: %f", in.Theta)
	log.Output.Printf("Quantum coupling parameter: %f", in.Rs)
	log.Output.Printf("Chemical potential (low and high bound): %f %f", in.MuLo, in.MuHi)
	log.Output.Printf("Wave-vector cutoff: %f", in.Xmax)
	log.Output.Printf("Wave-vector resolution: %f", in.Dx)
	log.Output.Printf("Number of Matsubara frequencies: %d", in.NL)
	log.Output.Printf("Maximum number of iterations: %d", in.NIter)
	log.Output.Printf("Error for convergence: %.5e", in.ErrMin)
	log.Output.Println("----------------------------------------------------")

	if err := run.Run(&in, log); err != nil {
		if errors.Is(err, uegerr.ErrNotConverged) {
			log.Warning.Println(err)
			return nil
		}
		return err
	}
	return nil
}
