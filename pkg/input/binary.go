// binary.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

package input

import (
	"encoding/binary"
	"fmt"
	"io"

	"goueg/pkg/uegerr"
)

// The packed layout is a wire contract: little-endian, no padding,
// fields in the exact order of WriteRecord below. Strings are an int32
// byte length followed by the raw bytes. Do not reorder.

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader, s *string) error {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	if n < 0 || n > 1<<20 {
		return uegerr.ErrCacheTruncated
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	*s = string(buf)
	return nil
}

// WriteRecord serializes the full record in the packed layout.
func (in *Input) WriteRecord(w io.Writer) error {
	strs := []string{
		in.Theory, in.Mode, in.IetMapping,
		in.StlsGuessFile, in.QstlsGuessFile, in.QstlsFixedFile,
		in.QstlsIetFixedFile, in.VsThermoFile, in.DynAdrFile,
		in.GuessFile1, in.GuessFile2,
	}
	for _, s := range strs {
		if err := writeString(w, s); err != nil {
			return fmt.Errorf("input record: %w", err)
		}
	}
	nums := []float64{
		in.Theta, in.Rs, in.Mu, in.MuLo, in.MuHi,
		in.Dx, in.Xmax, in.ErrMin, in.AMix,
		in.VsDrs, in.VsDt, in.VsAlpha, in.VsErrMin, in.VsAMix,
		in.DynDW, in.DynWmax, in.DynXTarget, in.IntErr,
	}
	if err := binary.Write(w, binary.LittleEndian, nums); err != nil {
		return fmt.Errorf("input record: %w", err)
	}
	ints := []int32{
		int32(in.NL), int32(in.NIter), int32(in.NThreads),
		int32(in.QstlsIetStatic), int32(in.VsSolveCsr),
	}
	if err := binary.Write(w, binary.LittleEndian, ints); err != nil {
		return fmt.Errorf("input record: %w", err)
	}
	return nil
}

// ReadRecord deserializes a record written by WriteRecord.
func ReadRecord(r io.Reader) (Input, error) {
	var in Input
	strs := []*string{
		&in.Theory, &in.Mode, &in.IetMapping,
		&in.StlsGuessFile, &in.QstlsGuessFile, &in.QstlsFixedFile,
		&in.QstlsIetFixedFile, &in.VsThermoFile, &in.DynAdrFile,
		&in.GuessFile1, &in.GuessFile2,
	}
	for _, s := range strs {
		if err := readString(r, s); err != nil {
			return in, fmt.Errorf("input record: %w", uegerr.ErrCacheTruncated)
		}
	}
	nums := make([]float64, 18)
	if err := binary.Read(r, binary.LittleEndian, nums); err != nil {
		return in, fmt.Errorf("input record: %w", uegerr.ErrCacheTruncated)
	}
	in.Theta, in.Rs, in.Mu, in.MuLo, in.MuHi = nums[0], nums[1], nums[2], nums[3], nums[4]
	in.Dx, in.Xmax, in.ErrMin, in.AMix = nums[5], nums[6], nums[7], nums[8]
	in.VsDrs, in.VsDt, in.VsAlpha, in.VsErrMin, in.VsAMix = nums[9], nums[10], nums[11], nums[12], nums[13]
	in.DynDW, in.DynWmax, in.DynXTarget, in.IntErr = nums[14], nums[15], nums[16], nums[17]
	ints := make([]int32, 5)
	if err := binary.Read(r, binary.LittleEndian, ints); err != nil {
		return in, fmt.Errorf("input record: %w", uegerr.ErrCacheTruncated)
	}
	in.NL, in.NIter, in.NThreads = int(ints[0]), int(ints[1]), int(ints[2])
	in.QstlsIetStatic, in.VsSolveCsr = int(ints[3]), int(ints[4])
	return in, nil
}
