// cache.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

package qstls

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"goueg/pkg/numerics"
	"goueg/pkg/ueg"
	"goueg/pkg/uegerr"
)

// headerTol tolerates format round trips of header floats; bitwise
// equality is the intent.
const headerTol = 1e-15

// DefaultKernelPath names the cache of the static fixed kernel.
func DefaultKernelPath(theta float64, nl int) string {
	return fmt.Sprintf("adr_fixed_theta%.3f_matsubara%d.bin", theta, nl)
}

// WriteKernel stores the fixed kernel with its identifying header:
// nx (int32), dx, xmax (doubles), nl (int32), Theta (double), then the
// tensor in layout order.
func WriteKernel(path string, cube *numerics.Cube, g ueg.Grid, nl int, theta float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("kernel cache: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, int32(g.N())); err != nil {
		return err
	}
	for _, v := range []float64{g.Dx, g.Xmax} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, int32(nl)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, theta); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, cube.Raw()); err != nil {
		return err
	}
	return w.Flush()
}

// ReadKernel loads a kernel cache and verifies its header against the
// current input. Every mismatch is fatal; the file must end exactly
// after the tensor.
func ReadKernel(path string, g ueg.Grid, nl int, theta float64) (*numerics.Cube, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("kernel cache: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	var nxF, nlF int32
	var dxF, xmaxF, thetaF float64
	if err := binary.Read(r, binary.LittleEndian, &nxF); err != nil {
		return nil, uegerr.ErrCacheTruncated
	}
	if err := binary.Read(r, binary.LittleEndian, &dxF); err != nil {
		return nil, uegerr.ErrCacheTruncated
	}
	if err := binary.Read(r, binary.LittleEndian, &xmaxF); err != nil {
		return nil, uegerr.ErrCacheTruncated
	}
	if err := binary.Read(r, binary.LittleEndian, &nlF); err != nil {
		return nil, uegerr.ErrCacheTruncated
	}
	if err := binary.Read(r, binary.LittleEndian, &thetaF); err != nil {
		return nil, uegerr.ErrCacheTruncated
	}
	if int(nxF) != g.N() || int(nlF) != nl ||
		math.Abs(dxF-g.Dx) > headerTol ||
		math.Abs(xmaxF-g.Xmax) > headerTol ||
		math.Abs(thetaF-theta) > headerTol {
		return nil, fmt.Errorf("kernel cache %s: %w", path, uegerr.ErrCacheIncompatible)
	}
	cube := numerics.NewCube(g.N(), nl, g.N())
	if err := binary.Read(r, binary.LittleEndian, cube.Raw()); err != nil {
		return nil, fmt.Errorf("kernel cache %s: %w", path, uegerr.ErrCacheTruncated)
	}
	var b [1]byte
	if n, err := r.Read(b[:]); n != 0 || err != io.EOF {
		return nil, fmt.Errorf("kernel cache %s: %w", path, uegerr.ErrCacheTruncated)
	}
	return cube, nil
}
