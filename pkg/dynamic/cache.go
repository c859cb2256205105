// cache.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

package dynamic

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"goueg/pkg/uegerr"

	"gonum.org/v1/gonum/mat"
)

// headerTol tolerates endian and format round trips of the header
// floats; bitwise equality is the intent.
const headerTol = 1e-15

// WriteFixed stores the four response surfaces with their identifying
// header: nx (int32), dx, xmax (doubles), nW (int32), dW, Wmax, Theta,
// rs (doubles), then phi_re, phi_im, psi_re, psi_im as packed
// little-endian doubles, wave-vector major.
func (e *Engine) WriteFixed(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dynamic cache: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, int32(e.Grid.N())); err != nil {
		return err
	}
	for _, v := range []float64{e.Grid.Dx, e.Grid.Xmax} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(e.WS))); err != nil {
		return err
	}
	for _, v := range []float64{e.In.DynDW, e.In.DynWmax, e.SP.Theta, e.SP.Rs} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, m := range []*mat.Dense{e.PhiRe, e.PhiIm, e.PsiRe, e.PsiIm} {
		if err := binary.Write(w, binary.LittleEndian, m.RawMatrix().Data); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadFixed loads the response surfaces written by WriteFixed. Every
// header field must match the current input to within 1e-15; the file
// must end exactly after the last array.
func (e *Engine) ReadFixed(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dynamic cache: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var nxF, nWF int32
	var dxF, xmaxF, dWF, wmaxF, thetaF, rsF float64
	if err := binary.Read(r, binary.LittleEndian, &nxF); err != nil {
		return uegerr.ErrCacheTruncated
	}
	for _, p := range []*float64{&dxF, &xmaxF} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return uegerr.ErrCacheTruncated
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &nWF); err != nil {
		return uegerr.ErrCacheTruncated
	}
	for _, p := range []*float64{&dWF, &wmaxF, &thetaF, &rsF} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return uegerr.ErrCacheTruncated
		}
	}
	if int(nxF) != e.Grid.N() ||
		math.Abs(dxF-e.Grid.Dx) > headerTol ||
		math.Abs(xmaxF-e.Grid.Xmax) > headerTol {
		return fmt.Errorf("wave-vector grid in %s: %w", path, uegerr.ErrCacheIncompatible)
	}
	if int(nWF) != len(e.WS) ||
		math.Abs(dWF-e.In.DynDW) > headerTol ||
		math.Abs(wmaxF-e.In.DynWmax) > headerTol {
		return fmt.Errorf("frequency grid in %s: %w", path, uegerr.ErrCacheIncompatible)
	}
	if math.Abs(thetaF-e.SP.Theta) > headerTol || math.Abs(rsF-e.SP.Rs) > headerTol {
		return fmt.Errorf("state point in %s: %w", path, uegerr.ErrCacheIncompatible)
	}
	for _, m := range []*mat.Dense{e.PhiRe, e.PhiIm, e.PsiRe, e.PsiIm} {
		if err := binary.Read(r, binary.LittleEndian, m.RawMatrix().Data); err != nil {
			return fmt.Errorf("dynamic cache %s: %w", path, uegerr.ErrCacheTruncated)
		}
	}
	var b [1]byte
	if n, err := r.Read(b[:]); n != 0 || err != io.EOF {
		return fmt.Errorf("dynamic cache %s: %w", path, uegerr.ErrCacheTruncated)
	}
	return nil
}
