// cube.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

package numerics

import "fmt"

// Cube is a dense rank-3 array with row-major layout: the last index is
// the fastest. The layout is part of the on-disk contract for the fixed
// kernel caches, so it must not change.
type Cube struct {
	nx, ny, nz int
	data       []float64
}

// NewCube allocates an nx by ny by nz cube.
func NewCube(nx, ny, nz int) *Cube {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		panic(fmt.Sprintf("cube: invalid shape %dx%dx%d", nx, ny, nz))
	}
	return &Cube{nx: nx, ny: ny, nz: nz, data: make([]float64, nx*ny*nz)}
}

// Dims returns the cube shape.
func (c *Cube) Dims() (nx, ny, nz int) { return c.nx, c.ny, c.nz }

// At returns element (i, j, k).
func (c *Cube) At(i, j, k int) float64 { return c.data[(i*c.ny+j)*c.nz+k] }

// Set assigns element (i, j, k).
func (c *Cube) Set(i, j, k int, v float64) { c.data[(i*c.ny+j)*c.nz+k] = v }

// Row returns the (i, j) slice along the last index. The slice aliases
// the cube storage.
func (c *Cube) Row(i, j int) []float64 {
	off := (i*c.ny + j) * c.nz
	return c.data[off : off+c.nz]
}

// Raw exposes the backing storage in layout order for serialization.
func (c *Cube) Raw() []float64 { return c.data }

// Fill assigns v to every element.
func (c *Cube) Fill(v float64) {
	for i := range c.data {
		c.data[i] = v
	}
}
