// store.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

// Package store implements the wire formats: text result files, the
// binary restart blob for the static schemes and the thermodynamic
// integration table. The binary layouts are little-endian and packed;
// they are contracts shared with the cache readers.
package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"goueg/pkg/input"
	"goueg/pkg/uegerr"

	"gonum.org/v1/gonum/mat"
)

// WriteXY writes one "x value" pair per line in %.8e format.
func WriteXY(path string, xs, ys []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for i := range xs {
		fmt.Fprintf(w, "%.8e %.8e\n", xs[i], ys[i])
	}
	return w.Flush()
}

// SsfPath and SlfcPath name the static result files for a theory.
func SsfPath(theory string) string { return fmt.Sprintf("ssf_%s.dat", theory) }

func SlfcPath(theory string) string { return fmt.Sprintf("slfc_%s.dat", theory) }

// DsfPath names the dynamic structure factor file.
func DsfPath(rs, theta float64, theory string) string {
	return fmt.Sprintf("dsf_rs%.3f_theta%.3f_%s.dat", rs, theta, theory)
}

// DynAdrPath names the dynamic density-response cache file.
func DynAdrPath(rs, theta float64, theory string) string {
	return fmt.Sprintf("dynamic_adr_rs%.3f_theta%.3f_%s.bin", rs, theta, theory)
}

// ThermoTablePath names the thermodynamic integration table.
func ThermoTablePath(rs, theta float64) string {
	return fmt.Sprintf("thermo_int_rs%.3f_theta%.3f.dat", rs, theta)
}

// RestartPath is the default name of the static restart blob.
const RestartPath = "dens_response.bin"

// WriteRestart serializes the input record followed by phi (row-major,
// wave-vector major) and S_HF as packed little-endian doubles.
func WriteRestart(path string, in *input.Input, phi *mat.Dense, ssfHF []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := in.WriteRecord(w); err != nil {
		return err
	}
	nx, nl := phi.Dims()
	for i := 0; i < nx; i++ {
		if err := binary.Write(w, binary.LittleEndian, phi.RawRowView(i)[:nl]); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, ssfHF); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return w.Flush()
}

// ReadRestart loads a blob written by WriteRestart. The embedded record
// supplies the grid and state point; the caller recomputes the
// chemical potential as the original does.
func ReadRestart(path string) (input.Input, *mat.Dense, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return input.Input{}, nil, nil, fmt.Errorf("store: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	in, err := input.ReadRecord(r)
	if err != nil {
		return in, nil, nil, err
	}
	nx, nl := in.Nx(), in.NL
	if nx <= 0 || nl <= 0 {
		return in, nil, nil, uegerr.ErrCacheTruncated
	}
	data := make([]float64, nx*nl)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return in, nil, nil, fmt.Errorf("restart phi: %w", uegerr.ErrCacheTruncated)
	}
	phi := mat.NewDense(nx, nl, data)
	ssfHF := make([]float64, nx)
	if err := binary.Read(r, binary.LittleEndian, ssfHF); err != nil {
		return in, nil, nil, fmt.Errorf("restart ssfHF: %w", uegerr.ErrCacheTruncated)
	}
	if err := requireEOF(r); err != nil {
		return in, nil, nil, err
	}
	return in, phi, ssfHF, nil
}

func requireEOF(r io.Reader) error {
	var b [1]byte
	if n, err := r.Read(b[:]); n != 0 || err != io.EOF {
		return uegerr.ErrCacheTruncated
	}
	return nil
}

// WriteThermoTable stores the free-energy integrand table as text:
// one line per coupling grid node, "rs rsu(theta-dt) rsu(theta) rsu(theta+dt)".
func WriteThermoTable(path string, rsGrid []float64, rsu [3][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for k := range rsGrid {
		fmt.Fprintf(w, "%.8e %.8e %.8e %.8e\n", rsGrid[k], rsu[0][k], rsu[1][k], rsu[2][k])
	}
	return w.Flush()
}

// ReadThermoTable loads a table written by WriteThermoTable. The table
// is trusted: no consistency check against the current input beyond
// basic shape.
func ReadThermoTable(path string) ([]float64, [3][]float64, error) {
	var rsu [3][]float64
	f, err := os.Open(path)
	if err != nil {
		return nil, rsu, fmt.Errorf("store: %w", err)
	}
	defer f.Close()
	var rsGrid []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, rsu, uegerr.ErrCacheTruncated
		}
		vals := make([]float64, 4)
		for i, fld := range fields {
			v, err := strconv.ParseFloat(fld, 64)
			if err != nil {
				return nil, rsu, uegerr.ErrCacheTruncated
			}
			vals[i] = v
		}
		rsGrid = append(rsGrid, vals[0])
		for t := 0; t < 3; t++ {
			rsu[t] = append(rsu[t], vals[t+1])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, rsu, fmt.Errorf("store: %w", err)
	}
	if len(rsGrid) < 3 {
		return nil, rsu, uegerr.ErrCacheTruncated
	}
	return rsGrid, rsu, nil
}
